package auth

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractFormToken pulls the one-time form-submission token out of a
// login page. The primary location is the hidden authenticity_token
// input; some page revisions only carry the csrf-token meta tag.
// Returns "" when neither is present.
func extractFormToken(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if v, ok := doc.Find(`input[name="authenticity_token"]`).Attr("value"); ok && v != "" {
		return v
	}
	if v, ok := doc.Find(`meta[name="csrf-token"]`).Attr("content"); ok && v != "" {
		return v
	}
	return ""
}

// pageTitle extracts the <title> text for diagnostics.
func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").Text())
}
