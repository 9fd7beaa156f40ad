// Package allocate splits an aggregate bill total into medicine, test and
// consultation buckets when no itemized breakdown exists.
package allocate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/medreview/claims-reconciler/constants"
)

// Split is the categorized amount breakdown. Amounts are rounded to two
// decimal places and never sum to more than the observed total.
type Split struct {
	Medicine     float64 `json:"medicine_amount"`
	Test         float64 `json:"test_amount"`
	Consultation float64 `json:"consultation_amount"`
}

// Total returns the sum of the three buckets.
func (s Split) Total() float64 {
	return s.Medicine + s.Test + s.Consultation
}

// Proportional splits total using the presence-based weight table:
// both medicines and tests 50/30/20, medicines only 70/0/30, tests only
// 0/60/40, neither 0/0/100.
func Proportional(total float64, hasMedicines, hasTests bool) Split {
	if total <= 0 {
		return Split{}
	}
	var s Split
	switch {
	case hasMedicines && hasTests:
		s = Split{Medicine: total * 0.5, Test: total * 0.3, Consultation: total * 0.2}
	case hasMedicines:
		s = Split{Medicine: total * 0.7, Consultation: total * 0.3}
	case hasTests:
		s = Split{Test: total * 0.6, Consultation: total * 0.4}
	default:
		s = Split{Consultation: total}
	}
	return s.round()
}

// categoryKeywords anchor same-line currency amounts to a coverage bucket.
var categoryKeywords = map[constants.ExpenseCategory][]string{
	constants.CategoryMedicine:     {"medicine", "drug", "tablet", "capsule", "syrup", "injection"},
	constants.CategoryTest:         {"test", "scan", "report", "analysis", "examination"},
	constants.CategoryConsultation: {"consultation", "doctor", "visit", "checkup"},
}

var reKeywordAmount = regexp.MustCompile(`(?i)(?:rs\.?|₹|inr)\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`)

// FromText allocates by summing currency amounts that appear after category
// keywords in the bill text. When no keyword-anchored amount is found it
// falls back to Proportional. If the keyword sums exceed the observed total,
// all three buckets are rescaled proportionally so their sum equals total.
func FromText(text string, total float64, hasMedicines, hasTests bool) Split {
	if total <= 0 {
		return Split{}
	}
	lower := strings.ToLower(text)

	s := Split{
		Medicine:     keywordAmountSum(lower, categoryKeywords[constants.CategoryMedicine]),
		Test:         keywordAmountSum(lower, categoryKeywords[constants.CategoryTest]),
		Consultation: keywordAmountSum(lower, categoryKeywords[constants.CategoryConsultation]),
	}
	if s.Total() == 0 {
		return Proportional(total, hasMedicines, hasTests)
	}
	if sum := s.Total(); sum > total {
		factor := total / sum
		s.Medicine *= factor
		s.Test *= factor
		s.Consultation *= factor
	}
	return s.round()
}

// keywordAmountSum sums every currency amount that follows one of the
// keywords on the same stretch of text.
func keywordAmountSum(lower string, keywords []string) float64 {
	sum := 0.0
	for _, kw := range keywords {
		idx := 0
		for {
			pos := strings.Index(lower[idx:], kw)
			if pos < 0 {
				break
			}
			start := idx + pos + len(kw)
			// look for a currency amount in the remainder of the line
			rest := lower[start:]
			if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
				rest = rest[:nl]
			}
			if m := reKeywordAmount.FindStringSubmatch(rest); m != nil {
				sum += parseAmount(m[1])
			}
			idx = start
		}
	}
	return sum
}

// parseAmount parses a currency amount, skipping malformed tokens silently.
func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// round rounds each bucket to two decimal places, only at the very end.
func (s Split) round() Split {
	return Split{
		Medicine:     round2(s.Medicine),
		Test:         round2(s.Test),
		Consultation: round2(s.Consultation),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
