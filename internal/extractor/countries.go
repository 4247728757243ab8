package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/khaihong/primates-shoppers-sub001/pkg/errors"
)

// textStrategy extracts the trimmed text of the first match
func textStrategy(name, selector string) FieldStrategy {
	return FieldStrategy{
		Name: name,
		Extract: func(s *goquery.Selection) string {
			return s.Find(selector).First().Text()
		},
	}
}

// attrStrategy extracts an attribute of the first match
func attrStrategy(name, selector, attr string) FieldStrategy {
	return FieldStrategy{
		Name: name,
		Extract: func(s *goquery.Selection) string {
			value, _ := s.Find(selector).First().Attr(attr)
			return value
		},
	}
}

// splitPriceStrategy combines the whole and fraction parts Amazon renders as
// separate spans into one display price
func splitPriceStrategy(name, wholeSelector, fractionSelector string) FieldStrategy {
	return FieldStrategy{
		Name: name,
		Extract: func(s *goquery.Selection) string {
			whole := strings.TrimSpace(s.Find(wholeSelector).First().Text())
			if whole == "" {
				return ""
			}
			whole = strings.TrimRight(whole, ".,")
			fraction := strings.TrimSpace(s.Find(fractionSelector).First().Text())
			if fraction == "" {
				return whole
			}
			return whole + "." + fraction
		},
	}
}

// unitPriceTextStrategy picks the secondary-price row text that carries a
// "per unit" price, e.g. "($2.00/100 ml)"
func unitPriceTextStrategy(name, selector string) FieldStrategy {
	return FieldStrategy{
		Name: name,
		Extract: func(s *goquery.Selection) string {
			result := ""
			s.Find(selector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
				text := strings.TrimSpace(row.Text())
				if strings.Contains(text, "/") {
					result = text
					return false
				}
				return true
			})
			return result
		},
	}
}

// amazonSelectors is the selector configuration shared by the Amazon
// marketplaces. Selector strings are data: tune them per country here when a
// marketplace drifts.
func amazonSelectors() Selectors {
	return Selectors{
		ProductList: []string{
			"div.s-main-slot div[data-component-type='s-search-result']",
			"div.s-result-list div[data-asin]:not([data-asin=''])",
		},
		ProductListAlt: []string{
			"div.sg-col-inner div.s-card-container",
			"div[data-cel-widget^='search_result_']",
		},
		Title: FieldChain{
			textStrategy("title-h2-span", "h2 a span"),
			textStrategy("title-color-base", "span.a-size-medium.a-color-base.a-text-normal"),
			textStrategy("title-base-plus", "span.a-size-base-plus.a-color-base.a-text-normal"),
			textStrategy("title-h2-text", "h2"),
			attrStrategy("title-image-alt", "img.s-image", "alt"),
		},
		Brand: FieldChain{
			textStrategy("brand-h5", "h5.s-line-clamp-1 span"),
			textStrategy("brand-mini-row", "div[data-cy='title-recipe'] .a-row.a-color-secondary span.a-size-base"),
		},
		Link: FieldChain{
			attrStrategy("link-h2-anchor", "h2 a", "href"),
			attrStrategy("link-no-outline", "a.a-link-normal.s-no-outline", "href"),
		},
		Image: FieldChain{
			attrStrategy("image-s-image", "img.s-image", "src"),
		},
		Price: FieldChain{
			textStrategy("price-offscreen", "span.a-price:not(.a-text-price) > span.a-offscreen"),
			splitPriceStrategy("price-whole-fraction", "span.a-price-whole", "span.a-price-fraction"),
		},
		UnitPrice: FieldChain{
			unitPriceTextStrategy("unit-price-secondary", "span.a-price.a-text-price + span.a-size-base.a-color-secondary, span.a-size-base.a-color-secondary"),
		},
		Rating: FieldChain{
			textStrategy("rating-icon-alt", "span.a-icon-alt"),
			attrStrategy("rating-aria-label", "i[data-cy='reviews-ratings-slot']", "aria-label"),
		},
		RatingCount: FieldChain{
			textStrategy("rating-count-underline", "span.a-size-base.s-underline-text"),
			attrStrategy("rating-count-aria", "div[data-cy='reviews-block'] a", "aria-label"),
		},
		RatingLink: FieldChain{
			attrStrategy("rating-link-reviews", "a[href*='#customerReviews']", "href"),
		},
		Delivery: FieldChain{
			textStrategy("delivery-recipe-bold", "div[data-cy='delivery-recipe'] span.a-color-base.a-text-bold"),
			attrStrategy("delivery-aria-label", "div[data-cy='delivery-recipe'] span[aria-label]", "aria-label"),
		},
	}
}

// countryConfigs holds the supported marketplaces keyed by ISO-3166 alpha-2
// country code
var countryConfigs = map[string]*CountryConfig{
	"US": {Country: "US", BaseURL: "https://www.amazon.com", Selectors: amazonSelectors()},
	"UK": {Country: "UK", BaseURL: "https://www.amazon.co.uk", Selectors: amazonSelectors()},
	"CA": {Country: "CA", BaseURL: "https://www.amazon.ca", Selectors: amazonSelectors()},
	"DE": {Country: "DE", BaseURL: "https://www.amazon.de", Selectors: amazonSelectors()},
}

// ForCountry returns the selector configuration for a country code
func ForCountry(code string) (*CountryConfig, error) {
	cfg, ok := countryConfigs[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, errors.NewConfiguration(code, "no selector configuration for country")
	}
	return cfg, nil
}

// Countries lists the supported country codes
func Countries() []string {
	codes := make([]string, 0, len(countryConfigs))
	for code := range countryConfigs {
		codes = append(codes, code)
	}
	return codes
}
