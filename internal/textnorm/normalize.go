// Package textnorm strips known noise out of OCR text before field
// extraction. Bills routinely carry headers, contact blocks and registration
// footers that pollute downstream regex matching.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {3,}`)
	reMultiBlank = regexp.MustCompile(`\n\s*\n`)
)

// noisePatterns match contact details and registration noise that commonly
// pollute OCR output. Matched spans are removed wholesale.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)address[:;\s]*[^\n]+`),
	regexp.MustCompile(`(?i)phone[:;\s]*[\d\s\-\+\(\)]+`),
	regexp.MustCompile(`(?i)email[:;\s]*[^\s@]+@[^\s@]+\.[^\s@]+`),
	regexp.MustCompile(`(?i)patient id[:;\s]*[^\n]+`),
	regexp.MustCompile(`(?i)registration[:;\s]*[^\n]+`),
	regexp.MustCompile(`(?i)pin code[:;\s]*\d+`),
	regexp.MustCompile(`(?i)city[:;\s]*[^\n]+state[:;\s]*[^\n]+`),
}

// Clean removes noise spans and collapses whitespace. Conservative: keeps
// line breaks, since medicine extraction is line-oriented.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	for _, re := range noisePatterns {
		s = re.ReplaceAllString(s, "")
	}
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(s)
}
