package extractor

import "github.com/PuerkitoBio/goquery"

// FieldStrategy is one named way of extracting a field from a candidate
// product node. Strategies are evaluated in order with early accept on the
// first non-empty result; the winning strategy's name becomes the record's
// extraction method tag.
type FieldStrategy struct {
	Name    string
	Extract func(s *goquery.Selection) string
}

// FieldChain is an ordered list of fallback strategies for one field
type FieldChain []FieldStrategy

// Selectors contains the product-node selectors and per-field strategy
// chains for one marketplace
type Selectors struct {
	// ProductList selectors locate candidate product nodes. Primaries are
	// tried first; the one with the most matches wins (ties go to the first
	// declared). Alternatives are consulted only when every primary matches
	// nothing.
	ProductList    []string
	ProductListAlt []string

	Title       FieldChain
	Brand       FieldChain
	Link        FieldChain
	Image       FieldChain
	Price       FieldChain
	UnitPrice   FieldChain
	Rating      FieldChain
	RatingCount FieldChain
	RatingLink  FieldChain
	Delivery    FieldChain
}

// CountryConfig is the selector configuration for one marketplace country
type CountryConfig struct {
	Country   string
	BaseURL   string
	Selectors Selectors
}

// errorSampleLimit bounds the markup error samples kept in a report
const errorSampleLimit = 5

// SelectorReport describes one extraction run for tuning tooling
type SelectorReport struct {
	PrimaryCounts     map[string]int `json:"primary_counts"`
	AlternativeCounts map[string]int `json:"alternative_counts,omitempty"`
	SelectedSelector  string         `json:"selected_selector"`
	XMLErrorCount     int            `json:"xml_error_count"`
	XMLErrorSamples   []string       `json:"xml_error_samples,omitempty"`
}

func (r *SelectorReport) addError(msg string) {
	r.XMLErrorCount++
	if len(r.XMLErrorSamples) < errorSampleLimit {
		r.XMLErrorSamples = append(r.XMLErrorSamples, msg)
	}
}

// RecordTrace maps "<field>/<strategy>" to the raw value that strategy
// extracted for one candidate node
type RecordTrace map[string]string

// Diagnostics carries per-record field traces. Populated only when
// requested; the hot search path never pays for it.
type Diagnostics struct {
	Traces []RecordTrace `json:"traces"`
}
