package extractor

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/khaihong/primates-shoppers-sub001/internal/product"
)

// defaultSampleSize bounds the records returned in diagnostics mode
const defaultSampleSize = 10

// Options controls one extraction run
type Options struct {
	// Diagnostics enables per-field tracing and bounds the returned records
	Diagnostics bool
	// SampleSize overrides the diagnostics record bound (default 10)
	SampleSize int
	// StatusCode is the HTTP status the fetch layer observed, 0 when unknown
	StatusCode int
}

// Result is the outcome of one extraction run
type Result struct {
	Records     []product.Record
	Report      SelectorReport
	Blocked     bool
	Diagnostics *Diagnostics
}

// Engine turns raw result-page markup into product records using a
// country-specific selector configuration
type Engine struct{}

// NewEngine creates a new extraction engine
func NewEngine() *Engine {
	return &Engine{}
}

// Extract parses markup and extracts product records. Malformed fragments
// are tolerated: a bad candidate node is skipped and counted, never fatal to
// the batch. A total parse failure (empty or non-markup input) yields an
// empty record set with the error counted in the report, which callers treat
// as a valid no-results outcome.
func (e *Engine) Extract(markup string, cfg *CountryConfig, opts Options) *Result {
	res := &Result{
		Report: SelectorReport{PrimaryCounts: make(map[string]int)},
	}
	if opts.Diagnostics {
		res.Diagnostics = &Diagnostics{}
	}

	if strings.TrimSpace(markup) == "" {
		res.Report.addError("empty markup")
		return res
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		res.Report.addError(fmt.Sprintf("markup parse failure: %v", err))
		return res
	}

	res.Blocked = DetectBlocking(doc, markup, opts.StatusCode)

	nodes := e.selectProductNodes(doc, cfg, &res.Report)

	// Per-node extraction runs in parallel; slots keep page order.
	type slot struct {
		rec    *product.Record
		trace  RecordTrace
		errMsg string
	}
	slots := make([]slot, len(nodes))

	var wg sync.WaitGroup
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, node *goquery.Selection) {
			defer wg.Done()
			rec, trace, errMsg := e.extractNode(node, cfg, opts.Diagnostics)
			slots[i] = slot{rec: rec, trace: trace, errMsg: errMsg}
		}(i, node)
	}
	wg.Wait()

	for _, s := range slots {
		if s.errMsg != "" {
			res.Report.addError(s.errMsg)
		}
		if res.Diagnostics != nil && s.trace != nil {
			// Dropped records still count toward diagnostics
			res.Diagnostics.Traces = append(res.Diagnostics.Traces, s.trace)
		}
		if s.rec != nil {
			res.Records = append(res.Records, *s.rec)
		}
	}

	if opts.Diagnostics {
		limit := opts.SampleSize
		if limit <= 0 {
			limit = defaultSampleSize
		}
		if len(res.Records) > limit {
			res.Records = res.Records[:limit]
		}
		if len(res.Diagnostics.Traces) > limit {
			res.Diagnostics.Traces = res.Diagnostics.Traces[:limit]
		}
	}

	return res
}

// selectProductNodes picks the product-node selector with the most matches.
// Ties go to the first declared selector; alternatives are consulted only
// when no primary matched anything.
func (e *Engine) selectProductNodes(doc *goquery.Document, cfg *CountryConfig, report *SelectorReport) []*goquery.Selection {
	best, bestCount, selected := pickSelector(doc, cfg.Selectors.ProductList, report.PrimaryCounts)
	if bestCount == 0 && len(cfg.Selectors.ProductListAlt) > 0 {
		report.AlternativeCounts = make(map[string]int)
		best, bestCount, selected = pickSelector(doc, cfg.Selectors.ProductListAlt, report.AlternativeCounts)
	}
	report.SelectedSelector = selected
	if bestCount == 0 {
		return nil
	}

	nodes := make([]*goquery.Selection, 0, bestCount)
	best.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, s)
	})
	return nodes
}

func pickSelector(doc *goquery.Document, selectors []string, counts map[string]int) (*goquery.Selection, int, string) {
	var best *goquery.Selection
	bestCount := 0
	selected := ""
	for _, sel := range selectors {
		matches := doc.Find(sel)
		counts[sel] = matches.Length()
		if matches.Length() > bestCount {
			best = matches
			bestCount = matches.Length()
			selected = sel
		}
	}
	return best, bestCount, selected
}

// extractNode extracts one product record from a candidate node. A node
// without a title after exhausting all title strategies is dropped.
func (e *Engine) extractNode(s *goquery.Selection, cfg *CountryConfig, wantTrace bool) (*product.Record, RecordTrace, string) {
	var trace RecordTrace
	if wantTrace {
		trace = make(RecordTrace)
	}
	sel := &cfg.Selectors

	title, titleMethod := applyChain(s, sel.Title, "title", trace)
	if title == "" {
		return nil, trace, "product node matched but no title strategy succeeded"
	}

	rec := &product.Record{
		Title:                 title,
		TitleExtractionMethod: titleMethod,
	}

	rec.Brand, rec.BrandExtractionMethod = applyChain(s, sel.Brand, "brand", trace)

	link, _ := applyChain(s, sel.Link, "link", trace)
	rec.Link = resolveURL(cfg.BaseURL, link)

	image, _ := applyChain(s, sel.Image, "image", trace)
	rec.Image = resolveURL(cfg.BaseURL, image)

	rec.Price, _ = applyChain(s, sel.Price, "price", trace)
	rec.PriceValue = parsePriceValue(rec.Price)

	rawUnitPrice, _ := applyChain(s, sel.UnitPrice, "unit_price", trace)
	rec.PricePerUnit, rec.PricePerUnitValue, rec.Unit = parseUnitPrice(rawUnitPrice)

	rec.Rating, _ = applyChain(s, sel.Rating, "rating", trace)
	rec.RatingNumber = parseRatingNumber(rec.Rating)

	ratingCount, _ := applyChain(s, sel.RatingCount, "rating_count", trace)
	rec.RatingCount = parseRatingCount(ratingCount)

	ratingLink, _ := applyChain(s, sel.RatingLink, "rating_link", trace)
	rec.RatingLink = resolveURL(cfg.BaseURL, ratingLink)

	rec.DeliveryTime, rec.DeliveryExtractionMethod = applyChain(s, sel.Delivery, "delivery", trace)

	return rec, trace, ""
}

// applyChain evaluates strategies in order and accepts the first non-empty
// result. Attempted strategies are traced up to and including the winner.
func applyChain(s *goquery.Selection, chain FieldChain, field string, trace RecordTrace) (string, string) {
	for _, strat := range chain {
		value := strings.TrimSpace(strat.Extract(s))
		if trace != nil {
			trace[field+"/"+strat.Name] = value
		}
		if value != "" {
			return value, strat.Name
		}
	}
	return "", ""
}

func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

var numberPattern = regexp.MustCompile(`[0-9][0-9.,]*`)

// parsePriceValue parses the numeric value out of a display price.
// Unparseable prices yield 0.
func parsePriceValue(display string) float64 {
	match := numberPattern.FindString(display)
	if match == "" {
		return 0
	}
	match = strings.Trim(match, ".,")
	lastComma := strings.LastIndex(match, ",")
	lastDot := strings.LastIndex(match, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		// "1.234,56" - comma is the decimal separator
		match = strings.ReplaceAll(match, ".", "")
		match = strings.ReplaceAll(match, ",", ".")
	case lastComma >= 0 && lastDot >= 0:
		// "1,234.56" - comma is a thousands separator
		match = strings.ReplaceAll(match, ",", "")
	case lastComma >= 0:
		if parts := strings.Split(match, ","); len(parts) == 2 && len(parts[1]) <= 2 {
			// "12,99" - comma is the decimal separator
			match = parts[0] + "." + parts[1]
		} else {
			match = strings.ReplaceAll(match, ",", "")
		}
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}

// parseUnitPrice splits a secondary price like "$2.00/100 ml" or
// "(€0,50/100g)" into display price, numeric value and unit token. A page
// without a secondary price leaves the record explicitly unit-less.
func parseUnitPrice(raw string) (display string, value float64, unit string) {
	raw = strings.Trim(strings.TrimSpace(raw), "()")
	if raw == "" || !strings.Contains(raw, "/") {
		return "", 0, ""
	}
	parts := strings.SplitN(raw, "/", 2)
	display = strings.TrimSpace(parts[0])
	value = parsePriceValue(display)
	unit = strings.TrimSpace(parts[1])
	if value == 0 || unit == "" {
		return "", 0, ""
	}
	// Bare unit tokens are lowercased so the normalizer's synonym table can
	// rescale them; sized units like "100 ml" pass through untouched.
	if !strings.ContainsAny(unit, "0123456789") {
		unit = strings.ToLower(unit)
	}
	return display, value, unit
}

var ratingPattern = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)?`)

// parseRatingNumber parses the star value out of texts like
// "4.5 out of 5 stars" or "4,5 von 5 Sternen"
func parseRatingNumber(rating string) float64 {
	match := ratingPattern.FindString(rating)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", "."), 64)
	if err != nil {
		return 0
	}
	return value
}

var countDigitsPattern = regexp.MustCompile(`[0-9.,]+`)

func parseRatingCount(text string) int {
	match := countDigitsPattern.FindString(text)
	if match == "" {
		return 0
	}
	match = strings.NewReplacer(",", "", ".", "").Replace(match)
	count, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return count
}
