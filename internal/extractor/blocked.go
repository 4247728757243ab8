package extractor

import (
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Markers that only appear on anti-bot challenge pages
var captchaSelectors = []string{
	"form[action*='validateCaptcha']",
	"#captchacharacters",
	"input[name='amzn-captcha']",
}

var challengePhrases = []string{
	"enter the characters you see below",
	"type the characters you see in this image",
	"robot check",
}

// Phrases that indicate an automated-traffic interstitial; on their own they
// can appear in legal boilerplate, so they only count when the page also
// lacks every expected result container.
var automatedTrafficPhrases = []string{
	"automated access",
	"automatisierte zugriffe",
}

var resultContainerSelectors = "div.s-main-slot, div.s-result-list, div[data-component-type='s-search-result']"

// DetectBlocking classifies a fetched page as an anti-bot challenge rather
// than a result page. It is pure: identical input always yields the same
// verdict. A blocked verdict is independent of how many products were
// extracted: a page can hold zero products without being blocked, or carry
// decoy products while blocked.
func DetectBlocking(doc *goquery.Document, raw string, statusCode int) bool {
	switch statusCode {
	case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	}

	if doc != nil {
		for _, sel := range captchaSelectors {
			if doc.Find(sel).Length() > 0 {
				return true
			}
		}
	}

	lower := strings.ToLower(raw)
	for _, phrase := range challengePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	if doc != nil && doc.Find(resultContainerSelectors).Length() == 0 {
		for _, phrase := range automatedTrafficPhrases {
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}

	return false
}
