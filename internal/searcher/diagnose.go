package searcher

import (
	"context"
	"os"
	"strings"

	"github.com/khaihong/primates-shoppers-sub001/internal/extractor"
	"github.com/khaihong/primates-shoppers-sub001/internal/product"
	"github.com/khaihong/primates-shoppers-sub001/pkg/errors"
)

// DiagnoseSource is the markup source for a diagnostic run: exactly one of
// RawHTML, FilePath or URL should be set.
type DiagnoseSource struct {
	RawHTML  string `json:"raw_html,omitempty"`
	FilePath string `json:"file,omitempty"`
	URL      string `json:"url,omitempty"`
}

// DiagnoseResult is the output of the extraction-tuning entry point. Records
// are a bounded sample, never the full production set.
type DiagnoseResult struct {
	Records     []product.Record       `json:"records"`
	Report      extractor.SelectorReport `json:"selector_report"`
	Blocked     bool                   `json:"blocked"`
	Diagnostics *extractor.Diagnostics `json:"per_field_trace,omitempty"`
}

// Diagnose runs the extraction engine with per-field tracing over markup
// from a file, a URL or a raw string. It never reads or writes the base
// result cache.
func (s *Searcher) Diagnose(ctx context.Context, src DiagnoseSource, country string) (*DiagnoseResult, error) {
	countryCfg, err := extractor.ForCountry(country)
	if err != nil {
		return nil, err
	}

	markup, statusCode, err := s.loadSource(ctx, src, countryCfg.Country)
	if err != nil {
		return nil, err
	}

	res := s.engine.Extract(markup, countryCfg, extractor.Options{
		Diagnostics: true,
		SampleSize:  s.cfg.DiagnosticsSampleSize,
		StatusCode:  statusCode,
	})

	records := res.Records
	if records == nil {
		records = []product.Record{}
	}
	return &DiagnoseResult{
		Records:     records,
		Report:      res.Report,
		Blocked:     res.Blocked,
		Diagnostics: res.Diagnostics,
	}, nil
}

func (s *Searcher) loadSource(ctx context.Context, src DiagnoseSource, country string) (string, int, error) {
	switch {
	case strings.TrimSpace(src.RawHTML) != "":
		return src.RawHTML, 0, nil

	case src.FilePath != "":
		data, err := os.ReadFile(src.FilePath)
		if err != nil {
			return "", 0, errors.NewValidation("cannot read markup file: " + err.Error())
		}
		return string(data), 0, nil

	case src.URL != "":
		fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
		page, err := s.fetchPage(fetchCtx, src.URL)
		if err != nil {
			return "", 0, errors.NewNetwork(country, "diagnostic fetch failed", err)
		}
		return string(page.Body), page.StatusCode, nil

	default:
		return "", 0, errors.NewValidation("a markup source (raw_html, file or url) is required")
	}
}
