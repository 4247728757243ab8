package product

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// sizePattern matches a size token in a product title and declares how to
// normalize a per-item price against it.
type sizePattern struct {
	re         *regexp.Regexp
	unit       string
	multiplier float64
}

// Ordered: first matching pattern wins. Volume/mass/fluid-ounce prices are
// normalized per 100 units, pound prices per single pound.
var sizePatterns = []sizePattern{
	{regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*ml\b`), "100 ml", 100},
	{regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*millilit(?:er|re)s?\b`), "100 ml", 100},
	{regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*g\b`), "100 grams", 100},
	{regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*grams?\b`), "100 grams", 100},
	{regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*oz\b`), "100 oz", 100},
	{regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*ounces?\b`), "100 oz", 100},
	{regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*fl\.?\s*oz\b`), "100 fl oz", 100},
	{regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*pounds?\b`), "pound", 1},
	{regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*lbs?\b`), "pound", 1},
}

// unitRescale maps a non-canonical unit synonym reported by the extractor to
// its 100-unit canonical form. Canonical labels ("100 ml", ...) are absent on
// purpose: re-normalizing an already-normalized record is a no-op.
var unitRescale = map[string]struct {
	unit       string
	multiplier float64
}{
	"g":           {"100 grams", 100},
	"gram":        {"100 grams", 100},
	"grams":       {"100 grams", 100},
	"ml":          {"100 ml", 100},
	"milliliter":  {"100 ml", 100},
	"milliliters": {"100 ml", 100},
	"millilitre":  {"100 ml", 100},
	"millilitres": {"100 ml", 100},
	"oz":          {"100 oz", 100},
	"ounce":       {"100 oz", 100},
	"ounces":      {"100 oz", 100},
	"fl oz":       {"100 fl oz", 100},
}

// isPlaceholderUnit reports whether the extractor left the unit unset
func isPlaceholderUnit(unit string) bool {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "n/a", "unit":
		return true
	}
	return false
}

// Normalize returns rec with its unit price normalized to the 100-unit basis.
// When the record carries no usable unit, the title is scanned for a size
// token and the unit price derived from the item price. Normalization is
// idempotent and never synthesizes a unit price for a record the extractor
// explicitly marked unit-less.
func Normalize(rec Record) Record {
	if isPlaceholderUnit(rec.Unit) {
		rec.Unit = ""
		if rec.PriceValue > 0 {
			if unit, value, ok := unitPriceFromTitle(rec.Title, rec.PriceValue); ok {
				rec.Unit = unit
				rec.PricePerUnitValue = value
				rec.PricePerUnit = formatUnitPrice(value)
			}
		}
	} else if rescale, ok := unitRescale[strings.ToLower(strings.TrimSpace(rec.Unit))]; ok {
		if rec.PricePerUnitValue > 0 {
			rec.Unit = rescale.unit
			rec.PricePerUnitValue *= rescale.multiplier
			rec.PricePerUnit = formatUnitPrice(rec.PricePerUnitValue)
		}
	}

	// Cleared unit data contract: no unit, no unit price.
	if rec.Unit == "" {
		rec.PricePerUnit = ""
		rec.PricePerUnitValue = 0
	}

	return rec
}

// NormalizeAll normalizes a copy of records, leaving the input untouched
func NormalizeAll(records []Record) []Record {
	out := CloneRecords(records)
	for i := range out {
		out[i] = Normalize(out[i])
	}
	return out
}

// unitPriceFromTitle scans title for the first matching size token and
// computes the price normalized per the pattern's basis.
func unitPriceFromTitle(title string, priceValue float64) (unit string, value float64, ok bool) {
	for _, p := range sizePatterns {
		match := p.re.FindStringSubmatch(title)
		if match == nil {
			continue
		}
		size, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", "."), 64)
		if err != nil || size <= 0 {
			continue
		}
		return p.unit, priceValue / size * p.multiplier, true
	}
	return "", 0, false
}

func formatUnitPrice(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
