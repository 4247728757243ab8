package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultPageHTML = `<!DOCTYPE html>
<html>
<body>
<div class="s-main-slot s-result-list">
	<div data-component-type="s-search-result" data-asin="B001">
		<img class="s-image" src="/img/shampoo.jpg" alt="Brand X Shampoo 250 ml" />
		<h2><a href="/dp/B001"><span>Brand X Shampoo 250 ml</span></a></h2>
		<h5 class="s-line-clamp-1"><span>Brand X</span></h5>
		<span class="a-price"><span class="a-offscreen">$5.00</span></span>
		<span class="a-price a-text-price"><span class="a-offscreen">$7.00</span></span>
		<span class="a-size-base a-color-secondary">($2.00/100 ml)</span>
		<span class="a-icon-alt">4.5 out of 5 stars</span>
		<span class="a-size-base s-underline-text">1,234</span>
		<a href="/dp/B001#customerReviews">reviews</a>
		<div data-cy="delivery-recipe"><span class="a-color-base a-text-bold">Tomorrow, Jan 5</span></div>
	</div>
	<div data-component-type="s-search-result" data-asin="B002">
		<h2><a href="/dp/B002"><span>Dark Chocolate Bar</span></a></h2>
		<span class="a-price"><span class="a-price-whole">12</span><span class="a-price-fraction">99</span></span>
	</div>
	<div data-component-type="s-search-result" data-asin="B003">
		<span class="a-price"><span class="a-offscreen">$9.99</span></span>
	</div>
</div>
</body>
</html>`

func usConfig(t *testing.T) *CountryConfig {
	cfg, err := ForCountry("us")
	require.NoError(t, err)
	return cfg
}

func TestExtractResultPage(t *testing.T) {
	engine := NewEngine()
	res := engine.Extract(resultPageHTML, usConfig(t), Options{StatusCode: 200})

	require.Len(t, res.Records, 2, "titleless node must be dropped")
	assert.False(t, res.Blocked)

	first := res.Records[0]
	assert.Equal(t, "Brand X Shampoo 250 ml", first.Title)
	assert.Equal(t, "title-h2-span", first.TitleExtractionMethod)
	assert.Equal(t, "Brand X", first.Brand)
	assert.Equal(t, "brand-h5", first.BrandExtractionMethod)
	assert.Equal(t, "https://www.amazon.com/dp/B001", first.Link)
	assert.Equal(t, "https://www.amazon.com/img/shampoo.jpg", first.Image)
	assert.Equal(t, "$5.00", first.Price)
	assert.InDelta(t, 5.00, first.PriceValue, 0.001)
	assert.Equal(t, "100 ml", first.Unit)
	assert.Equal(t, "$2.00", first.PricePerUnit)
	assert.InDelta(t, 2.00, first.PricePerUnitValue, 0.001)
	assert.Equal(t, "4.5 out of 5 stars", first.Rating)
	assert.InDelta(t, 4.5, first.RatingNumber, 0.001)
	assert.Equal(t, 1234, first.RatingCount)
	assert.Equal(t, "https://www.amazon.com/dp/B001#customerReviews", first.RatingLink)
	assert.Equal(t, "Tomorrow, Jan 5", first.DeliveryTime)
	assert.Equal(t, "delivery-recipe-bold", first.DeliveryExtractionMethod)

	second := res.Records[1]
	assert.Equal(t, "Dark Chocolate Bar", second.Title)
	assert.Equal(t, "12.99", second.Price)
	assert.InDelta(t, 12.99, second.PriceValue, 0.001)
	// No secondary price means explicitly unit-less
	assert.Empty(t, second.Unit)
	assert.Empty(t, second.PricePerUnit)
	assert.Zero(t, second.PricePerUnitValue)

	// The titleless node contributes to the error count, not to the batch
	assert.Equal(t, 1, res.Report.XMLErrorCount)
	require.Len(t, res.Report.XMLErrorSamples, 1)
	assert.Contains(t, res.Report.XMLErrorSamples[0], "no title strategy succeeded")
}

func TestExtractSelectorTieBreak(t *testing.T) {
	// Both primary selectors match all three nodes; the first declared wins
	engine := NewEngine()
	res := engine.Extract(resultPageHTML, usConfig(t), Options{})

	cfg := usConfig(t)
	assert.Equal(t, cfg.Selectors.ProductList[0], res.Report.SelectedSelector)
	assert.Equal(t, 3, res.Report.PrimaryCounts[cfg.Selectors.ProductList[0]])
	assert.Nil(t, res.Report.AlternativeCounts, "alternatives are consulted only when primaries fail")
}

func TestExtractAlternativeFallback(t *testing.T) {
	html := `<html><body>
	<div class="sg-col-inner"><div class="s-card-container">
		<h2><a href="/dp/B010"><span>Fallback Product</span></a></h2>
		<span class="a-price"><span class="a-offscreen">$3.00</span></span>
	</div></div>
	</body></html>`

	engine := NewEngine()
	res := engine.Extract(html, usConfig(t), Options{})

	require.Len(t, res.Records, 1)
	assert.Equal(t, "Fallback Product", res.Records[0].Title)
	assert.Equal(t, "div.sg-col-inner div.s-card-container", res.Report.SelectedSelector)
	assert.NotNil(t, res.Report.AlternativeCounts)
	for _, count := range res.Report.PrimaryCounts {
		assert.Zero(t, count)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	engine := NewEngine()
	for _, markup := range []string{"", "   \n\t  "} {
		res := engine.Extract(markup, usConfig(t), Options{})
		assert.Empty(t, res.Records)
		assert.False(t, res.Blocked)
		assert.Equal(t, 1, res.Report.XMLErrorCount)
	}
}

func TestExtractDiagnostics(t *testing.T) {
	engine := NewEngine()
	res := engine.Extract(resultPageHTML, usConfig(t), Options{Diagnostics: true, SampleSize: 1})

	// Records are truncated to the sample size in diagnostics mode
	require.Len(t, res.Records, 1)
	require.NotNil(t, res.Diagnostics)
	require.Len(t, res.Diagnostics.Traces, 1)
	assert.Equal(t, "Brand X Shampoo 250 ml", res.Diagnostics.Traces[0]["title/title-h2-span"])
}

func TestExtractDiagnosticsCountsDroppedRecords(t *testing.T) {
	engine := NewEngine()
	res := engine.Extract(resultPageHTML, usConfig(t), Options{Diagnostics: true, SampleSize: 10})

	require.Len(t, res.Records, 2)
	// The dropped titleless node still appears in the traces
	assert.Len(t, res.Diagnostics.Traces, 3)
}

func TestExtractNoDiagnosticsByDefault(t *testing.T) {
	engine := NewEngine()
	res := engine.Extract(resultPageHTML, usConfig(t), Options{})
	assert.Nil(t, res.Diagnostics)
}

func TestParsePriceValue(t *testing.T) {
	tests := []struct {
		display string
		want    float64
	}{
		{"$5.00", 5.00},
		{"$1,234.56", 1234.56},
		{"12,99 €", 12.99},
		{"1.234,56 €", 1234.56},
		{"£0.50", 0.50},
		{"", 0},
		{"N/A", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, parsePriceValue(tt.display), 0.001, "display %q", tt.display)
	}
}

func TestParseUnitPrice(t *testing.T) {
	display, value, unit := parseUnitPrice("($2.00/100 ml)")
	assert.Equal(t, "$2.00", display)
	assert.InDelta(t, 2.00, value, 0.001)
	assert.Equal(t, "100 ml", unit)

	// Bare unit tokens are lowercased for the normalizer's synonym table
	display, value, unit = parseUnitPrice("$0.31/Fl Oz")
	assert.Equal(t, "$0.31", display)
	assert.InDelta(t, 0.31, value, 0.001)
	assert.Equal(t, "fl oz", unit)

	// Without a separator there is no unit price
	display, value, unit = parseUnitPrice("$2.00")
	assert.Empty(t, display)
	assert.Zero(t, value)
	assert.Empty(t, unit)
}

func TestForCountry(t *testing.T) {
	for _, code := range []string{"US", "uk", " ca ", "DE"} {
		cfg, err := ForCountry(code)
		assert.NoError(t, err, "country %q", code)
		assert.NotEmpty(t, cfg.BaseURL)
	}

	_, err := ForCountry("XX")
	assert.Error(t, err)
}
