package confluence

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
)

// titleFolder performs Unicode case folding for title comparison.
// Folding rather than lowercasing handles titles in languages where
// ToLower is not a stable comparison key.
var titleFolder = cases.Fold()

// NormalizeTitle converts a page title into its comparison form:
// URL-decoded, '+' treated as space, whitespace collapsed to single
// spaces, trimmed, and case-folded. Two URLs reference the same page
// by title exactly when their normalized titles are equal.
func NormalizeTitle(s string) string {
	if s == "" {
		return ""
	}
	if unescaped, err := url.QueryUnescape(s); err == nil {
		s = unescaped
	}
	s = strings.ReplaceAll(s, "+", " ")
	s = strings.Join(strings.Fields(s), " ")
	return titleFolder.String(s)
}
