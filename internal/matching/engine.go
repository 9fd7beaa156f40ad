// Package matching pairs billed medicines against prescribed medicines and
// classifies each bill line for admissibility.
package matching

import (
	"fmt"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/medreview/claims-reconciler/constants"
	"github.com/medreview/claims-reconciler/internal/medicine"
)

// Thresholds holds the similarity cut-offs for the decision ladder.
type Thresholds struct {
	Exact    float64 // >= Exact            -> exact
	High     float64 // >= High             -> high_confidence
	Moderate float64 // >= Moderate < High  -> moderate_confidence
}

// DefaultThresholds returns the production cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{Exact: 0.95, High: 0.80, Moderate: 0.60}
}

// Result is the classification of one bill medicine. Immutable once produced.
type Result struct {
	BillMedicine      medicine.Mention    `json:"bill_medicine"`
	PrescriptionMatch *medicine.Mention   `json:"matched_prescription_medicine,omitempty"`
	Similarity        float64             `json:"similarity"`
	MatchType         constants.MatchType `json:"match_type"`
	IsAdmissible      bool                `json:"is_admissible"`
	Reason            string              `json:"reason"`
	ReviewRecommended bool                `json:"review_recommended"`
}

// Stats summarizes one comparison run.
type Stats struct {
	TotalBillMedicines int     `json:"total_bill_medicines"`
	TotalPrescribed    int     `json:"total_prescribed_medicines"`
	AdmissibleCount    int     `json:"admissible_count"`
	NonAdmissibleCount int     `json:"non_admissible_count"`
	NotPurchasedCount  int     `json:"medicines_not_purchased"`
	ComplianceScore    float64 `json:"compliance_score"` // percent of bill medicines admissible
}

// Comparison is the full output of Engine.Compare.
type Comparison struct {
	Matches                []Result           `json:"matches"`
	Admissible             []medicine.Mention `json:"admissible_medicines"`
	NonAdmissible          []medicine.Mention `json:"non_admissible_medicines"`
	PrescribedNotPurchased []medicine.Mention `json:"prescribed_but_not_purchased"`
	Stats                  Stats              `json:"statistics"`
}

// Engine matches bill mentions against prescription mentions using a tiered
// similarity ladder. Stateless and safe for concurrent use.
type Engine struct {
	catalog    *Catalog
	thresholds Thresholds
}

// Catalog is the slice of the medicine catalog the engine needs.
type Catalog = medicine.Catalog

func NewEngine(catalog *Catalog, thresholds Thresholds) *Engine {
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	return &Engine{catalog: catalog, thresholds: thresholds}
}

var lvParams = levenshtein.NewParams()

// Similarity combines character-level edit similarity with token-set Jaccard
// overlap (salt combinations like "ibuprofen+paracetamol" match on parts) and
// takes the maximum of the two. Always in [0,1].
func Similarity(name1, name2 string) float64 {
	a := strings.ToLower(strings.TrimSpace(name1))
	b := strings.ToLower(strings.TrimSpace(name2))
	if a == "" || b == "" {
		return 0
	}

	editSim := levenshtein.Similarity(a, b, lvParams)

	parts1 := splitParts(a)
	parts2 := splitParts(b)
	union := make(map[string]struct{}, len(parts1)+len(parts2))
	for p := range parts1 {
		union[p] = struct{}{}
	}
	for p := range parts2 {
		union[p] = struct{}{}
	}
	shared := 0
	for p := range parts1 {
		if _, ok := parts2[p]; ok {
			shared++
		}
	}
	jaccard := 0.0
	if len(union) > 0 {
		jaccard = float64(shared) / float64(len(union))
	}

	sim := editSim
	if jaccard > sim {
		sim = jaccard
	}
	return clamp01(sim)
}

// Compare classifies every bill mention against the prescription set.
// allowOTC is the policy's OTC allowance. Prescription mentions consumed by
// the similarity tiers are paired one-to-one; the first bill mention claiming
// a prescription entry wins, in extraction order.
func (e *Engine) Compare(billMentions, prescriptionMentions []medicine.Mention, allowOTC bool) Comparison {
	out := Comparison{
		Matches:       make([]Result, 0, len(billMentions)),
		Admissible:    make([]medicine.Mention, 0, len(billMentions)),
		NonAdmissible: make([]medicine.Mention, 0),
	}
	consumed := make(map[int]bool, len(prescriptionMentions))

	for _, bill := range billMentions {
		bestSim, bestIdx := e.bestCandidate(bill, prescriptionMentions, consumed)

		var res Result
		switch {
		case bestIdx >= 0 && bestSim >= e.thresholds.Exact:
			consumed[bestIdx] = true
			res = e.matched(bill, prescriptionMentions[bestIdx], bestSim, constants.MatchExact)
		case bestIdx >= 0 && bestSim >= e.thresholds.High:
			consumed[bestIdx] = true
			res = e.matched(bill, prescriptionMentions[bestIdx], bestSim, constants.MatchHighConfidence)
		case bestIdx >= 0 && bestSim >= e.thresholds.Moderate:
			consumed[bestIdx] = true
			res = e.matched(bill, prescriptionMentions[bestIdx], bestSim, constants.MatchModerateConfidence)
		case allowOTC && e.isOTC(bill):
			res = Result{
				BillMedicine: bill,
				Similarity:   bestSim,
				MatchType:    constants.MatchOTC,
				IsAdmissible: true,
				Reason:       "OTC medicine allowed under policy",
			}
		case e.isExcluded(bill):
			res = Result{
				BillMedicine: bill,
				Similarity:   bestSim,
				MatchType:    constants.MatchExcluded,
				IsAdmissible: false,
				Reason:       "Non-reimbursable item (cosmetic/lifestyle)",
			}
		default:
			res = Result{
				BillMedicine: bill,
				Similarity:   bestSim,
				MatchType:    constants.MatchNoMatch,
				IsAdmissible: false,
				Reason:       "Not found in prescription",
			}
		}

		out.Matches = append(out.Matches, res)
		if res.IsAdmissible {
			out.Admissible = append(out.Admissible, bill)
		} else {
			out.NonAdmissible = append(out.NonAdmissible, bill)
		}
	}

	for idx, rx := range prescriptionMentions {
		if !consumed[idx] {
			out.PrescribedNotPurchased = append(out.PrescribedNotPurchased, rx)
		}
	}

	total := len(billMentions)
	out.Stats = Stats{
		TotalBillMedicines: total,
		TotalPrescribed:    len(prescriptionMentions),
		AdmissibleCount:    len(out.Admissible),
		NonAdmissibleCount: len(out.NonAdmissible),
		NotPurchasedCount:  len(out.PrescribedNotPurchased),
	}
	out.Stats.ComplianceScore = float64(out.Stats.AdmissibleCount) / float64(max(total, 1)) * 100
	return out
}

// bestCandidate returns the best-scoring unconsumed prescription mention for
// a bill mention. Ties keep the earliest prescription entry.
func (e *Engine) bestCandidate(bill medicine.Mention, rx []medicine.Mention, consumed map[int]bool) (float64, int) {
	bestSim, bestIdx := 0.0, -1
	billName := compareName(bill)
	for idx, candidate := range rx {
		if consumed[idx] {
			continue
		}
		sim := Similarity(billName, compareName(candidate))
		if sim > bestSim {
			bestSim, bestIdx = sim, idx
		}
	}
	return bestSim, bestIdx
}

func (e *Engine) matched(bill, rx medicine.Mention, sim float64, mt constants.MatchType) Result {
	reason := "Matched with prescription"
	if mt == constants.MatchModerateConfidence {
		reason = fmt.Sprintf("Fuzzy match with %q (similarity: %.2f, review recommended)", rx.Name, sim)
	}
	rxCopy := rx
	return Result{
		BillMedicine:      bill,
		PrescriptionMatch: &rxCopy,
		Similarity:        sim,
		MatchType:         mt,
		IsAdmissible:      mt.Admissible(),
		Reason:            reason,
		ReviewRecommended: mt.NeedsReview(),
	}
}

func (e *Engine) isOTC(m medicine.Mention) bool {
	return e.catalog.IsOTC(m.Name) || e.catalog.IsOTC(m.GenericName)
}

func (e *Engine) isExcluded(m medicine.Mention) bool {
	return e.catalog.IsExcluded(m.Name) || e.catalog.IsExcluded(m.GenericName)
}

// compareName prefers the resolved generic form so brand/generic pairs match.
func compareName(m medicine.Mention) string {
	if m.GenericName != "" {
		return m.GenericName
	}
	return m.Name
}

func splitParts(s string) map[string]struct{} {
	parts := make(map[string]struct{})
	for _, p := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ' ' || r == ','
	}) {
		if p != "" {
			parts[p] = struct{}{}
		}
	}
	return parts
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
