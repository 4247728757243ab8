package searcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/khaihong/primates-shoppers-sub001/config"
	"github.com/khaihong/primates-shoppers-sub001/helpers"
	"github.com/khaihong/primates-shoppers-sub001/internal/extractor"
	"github.com/khaihong/primates-shoppers-sub001/internal/product"
	"github.com/khaihong/primates-shoppers-sub001/logger"
	"github.com/khaihong/primates-shoppers-sub001/pkg/errors"
	"github.com/khaihong/primates-shoppers-sub001/services/cache"
)

// Request is one search invocation
type Request struct {
	Query        string  `json:"query"`
	Exclude      string  `json:"exclude"`
	Include      string  `json:"include"`
	MinRating    float64 `json:"min_rating"`
	SortBy       string  `json:"sort_by"`
	Country      string  `json:"country"`
	FilterCached bool    `json:"filter_cached"`
}

// Result is the outcome of a search. BaseItemsCount is always the pre-filter
// cardinality of the resolved base set, letting the caller report
// "N of M products match". NoCachedResults marks a cached-only request
// against a key that was never fetched; it is a normal outcome, not an error.
type Result struct {
	Items           []product.Record `json:"items"`
	BaseItemsCount  int              `json:"base_items_count"`
	NoCachedResults bool             `json:"no_cached_results,omitempty"`
}

// Searcher glues the base result cache, the extraction engine and the
// filter/sort layer together
type Searcher struct {
	cfg    config.Config
	cache  *ResultCache
	engine *extractor.Engine

	// fetchPage is swappable in tests
	fetchPage func(ctx context.Context, url string) (*helpers.FetchResult, error)
}

// New creates a searcher. backing may be nil to run the base result cache
// purely in memory.
func New(cfg config.Config, backing cache.CacheService) *Searcher {
	return &Searcher{
		cfg:       cfg,
		cache:     NewResultCache(cfg.CacheTTL, backing),
		engine:    extractor.NewEngine(),
		fetchPage: helpers.FetchPage,
	}
}

// Search resolves the base result set for (query, country) - cached or
// freshly fetched - then normalizes unit prices and applies the filters and
// sort to a snapshot.
func (s *Searcher) Search(ctx context.Context, req Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errors.NewValidation("query is required")
	}
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	countryCfg, err := extractor.ForCountry(country)
	if err != nil {
		return nil, err
	}

	if req.FilterCached {
		records, baseCount, ok := s.cache.Lookup(query, country)
		if !ok {
			return &Result{Items: []product.Record{}, NoCachedResults: true}, nil
		}
		return s.finish(records, baseCount, req), nil
	}

	records, baseCount, err := s.cache.Resolve(ctx, query, country, s.fetchAndExtract(countryCfg))
	if err != nil {
		return nil, err
	}
	return s.finish(records, baseCount, req), nil
}

// finish applies the unit normalizer, then the filters, then the sort
func (s *Searcher) finish(records []product.Record, baseCount int, req Request) *Result {
	items := product.NormalizeAll(records)
	items = product.Filter(items, req.Exclude, req.Include, req.MinRating)
	items = product.Sort(items, req.SortBy)
	if items == nil {
		items = []product.Record{}
	}
	return &Result{Items: items, BaseItemsCount: baseCount}
}

// fetchAndExtract builds the FetchFunc for one country configuration. The
// fetch carries its own timeout so a waiter's cancellation never poisons the
// shared in-flight call.
func (s *Searcher) fetchAndExtract(countryCfg *extractor.CountryConfig) FetchFunc {
	return func(_ context.Context, query, country string) ([]product.Record, error) {
		template, ok := s.cfg.SearchURLs[country]
		if !ok {
			return nil, errors.NewConfiguration(country, "no search URL configured for country")
		}
		searchURL := fmt.Sprintf(template, url.QueryEscape(query))

		fetchCtx, cancel := context.WithTimeout(context.Background(), s.cfg.FetchTimeout)
		defer cancel()

		page, err := s.fetchPage(fetchCtx, searchURL)
		if err != nil {
			return nil, errors.NewNetwork(country, "result page fetch failed", err)
		}

		res := s.engine.Extract(string(page.Body), countryCfg, extractor.Options{StatusCode: page.StatusCode})
		if res.Blocked {
			return nil, errors.NewBlocked(country, "result page served an anti-bot challenge")
		}

		logger.Debug("extracted %d records for %q (%s) via %q, %d markup errors",
			len(res.Records), query, country, res.Report.SelectedSelector, res.Report.XMLErrorCount)
		return res.Records, nil
	}
}

// Invalidate drops the cached base set for (query, country)
func (s *Searcher) Invalidate(query, country string) {
	s.cache.Invalidate(query, country)
}

// CacheStats reports the base result cache contents
func (s *Searcher) CacheStats() []EntryStats {
	return s.cache.Stats()
}
