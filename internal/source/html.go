package source

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText strips markup from a feed description and collapses whitespace.
// Input that fails to parse is returned unchanged.
func HTMLToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	var parts []string
	doc.Find("body").Contents().Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
