// Package extract pulls structured claim fields out of normalized bill and
// prescription text using ordered regex rule lists.
package extract

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/medreview/claims-reconciler/internal/medicine"
)

// Fields is the structured result of one extraction pass. Unmatched fields
// stay at their zero value.
type Fields struct {
	PatientName      string             `json:"patient_name,omitempty"`
	DoctorName       string             `json:"doctor_name,omitempty"`
	HospitalName     string             `json:"hospital_name,omitempty"`
	BillNo           string             `json:"bill_no,omitempty"`
	ServiceDate      string             `json:"service_date,omitempty"`
	Amounts          []float64          `json:"amounts"`
	Total            float64            `json:"total_amount"`
	MedicineMentions []medicine.Mention `json:"medicine_mentions"`
	TestMentions     []string           `json:"test_mentions"`
}

// DefaultMaxMentions caps the medicine and test lists per extraction.
const DefaultMaxMentions = 10

// Scalar fields use first-win rule lists: the first pattern that matches
// settles the field and later patterns are not evaluated.
var (
	patientPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:patient name|name of patient|patient)[:\- \t]*([A-Za-z][A-Za-z .,]{2,50})`),
		regexp.MustCompile(`(?i)\b(?:mr|mrs|ms)\.?[ \t]+([A-Za-z][A-Za-z .]{2,40})`),
	}

	billNoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:bill no|invoice no|receipt no|bill#|ref|reference)[:\s]*([A-Za-z0-9/-]+)`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)(\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{2,4})`),
		regexp.MustCompile(`(?i)((?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2},?\s+\d{2,4})`),
	}

	doctorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bdr\.?[ \t]+([A-Za-z][A-Za-z .]{2,40})`),
		regexp.MustCompile(`(?i)(?:doctor|physician)[:; \t]*([A-Za-z][A-Za-z .]{2,40})`),
	}

	hospitalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:hospital|clinic|medical center|nursing home)[:; \t]*([A-Za-z][A-Za-z .]{2,50})`),
		regexp.MustCompile(`(?i)([A-Za-z][A-Za-z ]+(?:hospital|clinic|medical|healthcare))`),
	}
)

// Test names accumulate across every pattern before dedupe.
var testPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(blood test|x-ray|mri|ct scan|ultrasound|ecg|ekg|urine test)\b`),
	regexp.MustCompile(`(?i)\b(complete blood count|cbc|liver function|kidney function|thyroid)\b`),
	regexp.MustCompile(`(?i)\b(sugar test|diabetes test|cholesterol|hemoglobin|hba1c)\b`),
	regexp.MustCompile(`(?i)\b(chest x-ray|abdominal ultrasound|cardiac echo)\b`),
}

var (
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:rs\.?|₹|inr)\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:rs\.?|₹|inr)`),
		regexp.MustCompile(`(?i)(?:total|amount|bill|grand total)[:\s=]*(?:rs\.?|₹)?\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	}

	reExplicitTotal = regexp.MustCompile(`(?i)(?:total|grand total|bill amount|final amount)[:\s]*(?:rs\.?|₹)?\s*(\d+(?:,\d{3})*(?:\.\d{2})?)`)
)

const (
	minPlausibleAmount = 1
	maxPlausibleAmount = 1000000
)

// Extractor applies the rule lists to normalized text. Stateless after
// construction and safe for concurrent use.
type Extractor struct {
	normalizer  *medicine.Normalizer
	maxMentions int
	logger      *slog.Logger
}

// NewExtractor builds an Extractor. maxMentions <= 0 selects
// DefaultMaxMentions.
func NewExtractor(normalizer *medicine.Normalizer, maxMentions int, logger *slog.Logger) *Extractor {
	if maxMentions <= 0 {
		maxMentions = DefaultMaxMentions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{normalizer: normalizer, maxMentions: maxMentions, logger: logger}
}

// Extract parses one document's normalized text. It never fails; fields
// without a matching pattern are left empty.
func (e *Extractor) Extract(text string) Fields {
	f := Fields{
		PatientName:  titleWords(firstMatch(patientPatterns, text)),
		DoctorName:   titleWords(firstMatch(doctorPatterns, text)),
		HospitalName: titleWords(firstMatch(hospitalPatterns, text)),
		BillNo:       firstMatch(billNoPatterns, text),
		ServiceDate:  firstMatch(datePatterns, text),
		Amounts:      extractAmounts(text),
		TestMentions: e.extractTests(text),
	}
	f.Total = resolveTotal(f.Amounts, text)

	mentions := e.normalizer.ExtractMentions(text)
	if len(mentions) > e.maxMentions {
		mentions = mentions[:e.maxMentions]
	}
	f.MedicineMentions = mentions

	e.logger.Debug("extracted fields",
		"medicines", len(f.MedicineMentions),
		"tests", len(f.TestMentions),
		"amounts", len(f.Amounts),
		"total", f.Total)
	return f
}

// firstMatch returns the first capture of the first pattern that matches.
func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// extractTests accumulates matches from every test pattern, dedupes them
// case-insensitively in first-seen order and caps the list.
func (e *Extractor) extractTests(text string) []string {
	var tests []string
	seen := make(map[string]struct{})
	for _, re := range testPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := titleWords(strings.TrimSpace(m[1]))
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			tests = append(tests, name)
		}
	}
	if len(tests) > e.maxMentions {
		tests = tests[:e.maxMentions]
	}
	return tests
}

// extractAmounts collects every plausible monetary value, deduplicated and
// sorted ascending. Malformed tokens are skipped.
func extractAmounts(text string) []float64 {
	seen := make(map[float64]struct{})
	var amounts []float64
	for _, re := range amountPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err != nil {
				continue
			}
			if v < minPlausibleAmount || v > maxPlausibleAmount {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			amounts = append(amounts, v)
		}
	}
	sort.Float64s(amounts)
	return amounts
}

// resolveTotal prefers an explicitly labelled total and otherwise falls back
// to the largest extracted amount.
func resolveTotal(amounts []float64, text string) float64 {
	if m := reExplicitTotal.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
			return v
		}
	}
	if len(amounts) == 0 {
		return 0
	}
	return amounts[len(amounts)-1]
}

func titleWords(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	for i, w := range fields {
		fields[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(fields, " ")
}
