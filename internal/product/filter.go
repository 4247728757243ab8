package product

import (
	"sort"
	"strings"
)

// Sort keys accepted by Sort
const (
	SortByPrice        = "price"
	SortByPricePerUnit = "price_per_unit"
)

// Filter narrows records by exclude terms, include terms and minimum rating,
// in that order. It operates on a copy and never mutates the input.
//
// Exclude terms drop a record when any term appears in the lowercased title.
// Include terms all have to be satisfied; a term carrying a '*' is a prefix
// match of length >= 2 against whitespace-delimited title words (shorter
// prefixes are ignored as no-ops). Records without a rating are never dropped
// by the minimum-rating filter.
func Filter(records []Record, excludeText, includeText string, minRating float64) []Record {
	out := CloneRecords(records)

	if terms := strings.Fields(strings.ToLower(excludeText)); len(terms) > 0 {
		out = keep(out, func(r Record) bool {
			title := strings.ToLower(r.Title)
			for _, term := range terms {
				if strings.Contains(title, term) {
					return false
				}
			}
			return true
		})
	}

	if terms := strings.Fields(strings.ToLower(includeText)); len(terms) > 0 {
		out = keep(out, func(r Record) bool {
			title := strings.ToLower(r.Title)
			for _, term := range terms {
				if !matchesIncludeTerm(title, term) {
					return false
				}
			}
			return true
		})
	}

	if minRating > 0 {
		out = keep(out, func(r Record) bool {
			return r.RatingNumber <= 0 || r.RatingNumber >= minRating
		})
	}

	return out
}

// matchesIncludeTerm reports whether a lowercased title satisfies one term
func matchesIncludeTerm(title, term string) bool {
	if strings.Contains(term, "*") {
		prefix := strings.ReplaceAll(term, "*", "")
		if len(prefix) < 2 {
			// Too short to be meaningful, treat as a no-op
			return true
		}
		for _, word := range strings.Fields(title) {
			if strings.HasPrefix(word, prefix) {
				return true
			}
		}
		return false
	}
	return strings.Contains(title, term)
}

func keep(records []Record, pred func(Record) bool) []Record {
	out := records[:0]
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders a copy of records by the requested key.
//
// "price" sorts ascending by the parsed price, unparseable prices sorting
// first as zero. "price_per_unit" restricts to records carrying a unit and a
// positive normalized unit price and sorts those ascending; when no record
// qualifies it falls back to the price sort over the full input. Any other
// key preserves the original order.
func Sort(records []Record, sortBy string) []Record {
	switch sortBy {
	case SortByPrice:
		out := CloneRecords(records)
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].PriceValue < out[j].PriceValue
		})
		return out

	case SortByPricePerUnit:
		var out []Record
		for _, r := range records {
			if r.Unit != "" && r.PricePerUnitValue > 0 {
				out = append(out, r)
			}
		}
		if len(out) == 0 {
			return Sort(records, SortByPrice)
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].PricePerUnitValue < out[j].PricePerUnitValue
		})
		return out

	default:
		return CloneRecords(records)
	}
}
