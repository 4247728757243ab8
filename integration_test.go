package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khaihong/primates-shoppers-sub001/config"
	"github.com/khaihong/primates-shoppers-sub001/internal/searcher"
	"github.com/khaihong/primates-shoppers-sub001/services/cache"
)

// This is a result page in the shape the extraction engine is configured for
const testResultHTML = `<!DOCTYPE html>
<html>
<body>
	<div class="s-main-slot s-result-list">
		<div data-component-type="s-search-result" data-asin="B001">
			<img class="s-image" src="/img/1.jpg" alt="Thumbnail" />
			<h2><a href="/dp/B001"><span>Brand X Shampoo 250 ml</span></a></h2>
			<span class="a-price"><span class="a-offscreen">$5.00</span></span>
			<span class="a-icon-alt">4.5 out of 5 stars</span>
			<span class="a-size-base s-underline-text">1,234</span>
		</div>
		<div data-component-type="s-search-result" data-asin="B002">
			<h2><a href="/dp/B002"><span>Organic Conditioner 500 ml</span></a></h2>
			<span class="a-price"><span class="a-offscreen">$8.00</span></span>
			<span class="a-icon-alt">3.9 out of 5 stars</span>
		</div>
		<div data-component-type="s-search-result" data-asin="B003">
			<h2><a href="/dp/B003"><span>Hair Brush</span></a></h2>
			<span class="a-price"><span class="a-offscreen">$3.50</span></span>
		</div>
	</div>
</body>
</html>`

func newIntegrationSearcher(t *testing.T, fetches *int32) *searcher.Searcher {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fetches != nil {
			atomic.AddInt32(fetches, 1)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(testResultHTML))
	}))
	t.Cleanup(server.Close)

	cfg := config.LoadConfig()
	cfg.SearchURLs["US"] = server.URL + "/s?k=%s"
	require.NoError(t, cfg.Validate())

	return searcher.New(cfg, cache.NewMemoryService())
}

func TestSearchEndToEnd(t *testing.T) {
	var fetches int32
	svc := newIntegrationSearcher(t, &fetches)

	res, err := svc.Search(context.Background(), searcher.Request{
		Query:   "shampoo",
		Country: "US",
		SortBy:  "price",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.BaseItemsCount)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "Hair Brush", res.Items[0].Title, "price sort is ascending")

	shampoo := res.Items[1]
	assert.Equal(t, "Brand X Shampoo 250 ml", shampoo.Title)
	assert.Equal(t, "100 ml", shampoo.Unit)
	assert.Equal(t, "2.00", shampoo.PricePerUnit)
	assert.InDelta(t, 4.5, shampoo.RatingNumber, 0.001)
	assert.Equal(t, 1234, shampoo.RatingCount)

	// Re-filtering the cached base set narrows it without another fetch
	refiltered, err := svc.Search(context.Background(), searcher.Request{
		Query:        "shampoo",
		Country:      "US",
		Exclude:      "organic",
		MinRating:    4.0,
		FilterCached: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
	assert.Equal(t, 3, refiltered.BaseItemsCount)
	assert.Len(t, refiltered.Items, 2)
}

func TestSearchEndToEndSingleFlight(t *testing.T) {
	var fetches int32
	svc := newIntegrationSearcher(t, &fetches)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Search(context.Background(), searcher.Request{Query: "shampoo", Country: "US"})
			assert.NoError(t, err)
			assert.Equal(t, 3, res.BaseItemsCount)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches), "concurrent identical searches must share one fetch")
}

func TestSearchEndToEndUnitPriceSort(t *testing.T) {
	svc := newIntegrationSearcher(t, nil)

	res, err := svc.Search(context.Background(), searcher.Request{
		Query:   "shampoo",
		Country: "US",
		SortBy:  "price_per_unit",
	})
	require.NoError(t, err)

	// Only records with a derived unit price participate in the ranking
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Organic Conditioner 500 ml", res.Items[0].Title)
	assert.Equal(t, "Brand X Shampoo 250 ml", res.Items[1].Title)
	assert.Equal(t, 3, res.BaseItemsCount)
}
