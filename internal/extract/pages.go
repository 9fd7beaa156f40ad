package extract

import (
	"regexp"
	"strings"
)

// Page separators look like "=== PAGE 2 ===" on their own line. The marker
// itself is stripped; matching is case-insensitive.
var rePageMarker = regexp.MustCompile(`(?i)===\s*page\b.*?===(?:\r?\n)`)

// SplitPages breaks multi-page document text into per-page segments,
// dropping the separator markers and any page that is blank. Text without
// markers comes back as a single page.
func SplitPages(text string) []string {
	segments := rePageMarker.Split(text, -1)
	pages := make([]string, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		pages = append(pages, seg)
	}
	return pages
}
