package medicine

import (
	"regexp"
	"strings"
)

// Mention is one billed or prescribed medicine as extracted from a document
// line. Immutable once produced.
type Mention struct {
	Name              string   `json:"name"`
	GenericName       string   `json:"generic_name"`
	OriginalText      string   `json:"original_text"`
	Confidence        float64  `json:"confidence"`
	HasDosageForm     bool     `json:"has_dosage_form"`
	HasDosageQuantity bool     `json:"has_dosage_quantity"`
	Reasons           []string `json:"extraction_reasons,omitempty"`
}

// Confidence signal weights. A line qualifies as a medicine mention once the
// summed signals reach MinConfidence.
const (
	knownNameWeight      = 0.5
	dosageFormWeight     = 0.3
	dosageQuantityWeight = 0.2

	// MinConfidence is the default acceptance threshold for a mention.
	MinConfidence = 0.3
)

var (
	reDosage = regexp.MustCompile(`(?i)\d+\s*(?:mg|ml|mcg|g|iu|units|gm|cc)\b`)

	// price/quantity tokens removed before signal checks
	rePrice    = regexp.MustCompile(`(?i)(?:rs\.?|₹|inr)?\s*\d+(?:,\d+)*(?:\.\d+)?`)
	rePackQty  = regexp.MustCompile(`(?i)\d+\s*(?:strips?|boxes?|bottles?|pcs?|pieces?|nos?|quantity)`)
	reBareUnit = regexp.MustCompile(`(?i)\b(?:mg|ml|mcg|iu|units|gm|cc)\b`)
	reNonWord  = regexp.MustCompile(`[^\w\s.\-+]`)
	reSqueezed = regexp.MustCompile(`\s+`)
)

// Normalizer turns raw text lines into scored medicine mentions using the
// injected catalog.
type Normalizer struct {
	catalog       *Catalog
	minConfidence float64
	formRes       []*regexp.Regexp
}

func NewNormalizer(catalog *Catalog, minConfidence float64) *Normalizer {
	if minConfidence <= 0 {
		minConfidence = MinConfidence
	}
	n := &Normalizer{catalog: catalog, minConfidence: minConfidence}
	for _, form := range catalog.Forms() {
		n.formRes = append(n.formRes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(form)+`\b`))
	}
	return n
}

// Normalize scores a single line. ok is false when the line does not reach
// the acceptance threshold or yields no usable name.
func (n *Normalizer) Normalize(line string) (Mention, bool) {
	original := strings.TrimSpace(line)
	if original == "" {
		return Mention{}, false
	}
	clean := cleanForExtraction(original)

	known := n.catalog.FindKnown(clean)
	hasForm := n.catalog.HasForm(clean)
	hasDosage := reDosage.MatchString(original)

	confidence := 0.0
	var reasons []string
	if known != "" {
		confidence += knownNameWeight
		reasons = append(reasons, "known medicine")
	}
	if hasForm {
		confidence += dosageFormWeight
		reasons = append(reasons, "has form indicator")
	}
	if hasDosage {
		confidence += dosageQuantityWeight
		reasons = append(reasons, "has dosage")
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < n.minConfidence {
		return Mention{}, false
	}

	name := titleCase(known)
	if known == "" {
		name = n.isolateName(clean)
	}
	if name == "" {
		return Mention{}, false
	}

	return Mention{
		Name:              name,
		GenericName:       n.catalog.Generic(name),
		OriginalText:      original,
		Confidence:        confidence,
		HasDosageForm:     hasForm,
		HasDosageQuantity: hasDosage,
		Reasons:           reasons,
	}, true
}

// ExtractMentions scans text line by line and returns accepted mentions,
// deduplicated case-insensitively by name (first occurrence wins).
func (n *Normalizer) ExtractMentions(text string) []Mention {
	var mentions []Mention
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		m, ok := n.Normalize(line)
		if !ok {
			continue
		}
		key := strings.ToLower(m.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		mentions = append(mentions, m)
	}
	return mentions
}

// isolateName derives a mention name from a cleaned line that carried no
// known medicine, by removing form keywords and dosage tokens.
func (n *Normalizer) isolateName(clean string) string {
	s := clean
	for _, re := range n.formRes {
		s = re.ReplaceAllString(s, "")
	}
	s = reDosage.ReplaceAllString(s, "")
	s = reBareUnit.ReplaceAllString(s, "")
	s = reSqueezed.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return titleCase(s)
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	if s == "" {
		return ""
	}
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// cleanForExtraction lowercases a line and removes price, pack-quantity and
// stray punctuation tokens so the signal checks see only the drug text.
func cleanForExtraction(line string) string {
	s := rePrice.ReplaceAllString(line, "")
	s = rePackQty.ReplaceAllString(s, "")
	s = reNonWord.ReplaceAllString(s, " ")
	s = reSqueezed.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
