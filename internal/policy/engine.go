package policy

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/medreview/claims-reconciler/constants"
	"github.com/medreview/claims-reconciler/internal/allocate"
	"github.com/medreview/claims-reconciler/internal/matching"
	"github.com/medreview/claims-reconciler/internal/medicine"
)

// Summary is the computed reimbursement breakdown for a single claim.
type Summary struct {
	TotalBillAmount             float64 `json:"total_bill_amount"`
	AdmissibleMedicineAmount    float64 `json:"admissible_medicine_amount"`
	NonAdmissibleMedicineAmount float64 `json:"non_admissible_medicine_amount"`
	TestAmount                  float64 `json:"test_amount"`
	ConsultationAmount          float64 `json:"consultation_amount"`
	MedicineReimbursement       float64 `json:"medicine_reimbursement"`
	TestReimbursement           float64 `json:"test_reimbursement"`
	ConsultationReimbursement   float64 `json:"consultation_reimbursement"`
	TotalReimbursement          float64 `json:"total_reimbursement"`
	PolicyMaxLimit              float64 `json:"policy_max_limit"`
	ReimbursementCapped         bool    `json:"reimbursement_capped"`
	ReimbursementPercentage     float64 `json:"reimbursement_percentage"`
	PolicyApplied               string  `json:"policy_applied"`
}

// Assessment bundles the summary with the advisory output for the claim.
type Assessment struct {
	Summary         Summary  `json:"reimbursement_summary"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// Engine computes reimbursement under a named policy. Stateless after
// construction and safe for concurrent use.
type Engine struct {
	table   *Table
	catalog *medicine.Catalog
	logger  *slog.Logger
}

// NewEngine builds an Engine over the given policy table and catalog.
func NewEngine(table *Table, catalog *medicine.Catalog, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{table: table, catalog: catalog, logger: logger}
}

// Resolve returns the policy for name, falling back to the default policy
// when the name is unknown.
func (e *Engine) Resolve(name constants.PolicyName) Policy {
	if p, ok := e.table.Lookup(name); ok {
		return p
	}
	e.logger.Warn("unknown policy name, using default",
		"policy", string(name),
		"default", string(e.table.DefaultName()))
	return e.table.Default()
}

// Compute applies the named policy to the allocated amounts and the medicine
// comparison. The total reimbursement never exceeds the policy cap.
func (e *Engine) Compute(amounts allocate.Split, cmp matching.Comparison, name constants.PolicyName) Assessment {
	p := e.Resolve(name)

	admissibleRatio := float64(cmp.Stats.AdmissibleCount) / float64(max(cmp.Stats.TotalBillMedicines, 1))

	admissibleMedicine := amounts.Medicine * admissibleRatio
	medicineReimb := admissibleMedicine * (p.MedicineCoveragePct / 100)
	testReimb := amounts.Test * (p.TestCoveragePct / 100)
	consultationReimb := amounts.Consultation * (p.ConsultationCoveragePct / 100)

	total := medicineReimb + testReimb + consultationReimb
	capped := total > p.MaxClaimAmount
	if capped {
		total = p.MaxClaimAmount
	}

	totalBill := amounts.Total()
	pct := 0.0
	if totalBill > 0 {
		pct = total / totalBill * 100
	}

	s := Summary{
		TotalBillAmount:             round2(totalBill),
		AdmissibleMedicineAmount:    round2(admissibleMedicine),
		NonAdmissibleMedicineAmount: round2(amounts.Medicine * (1 - admissibleRatio)),
		TestAmount:                  round2(amounts.Test),
		ConsultationAmount:          round2(amounts.Consultation),
		MedicineReimbursement:       round2(medicineReimb),
		TestReimbursement:           round2(testReimb),
		ConsultationReimbursement:   round2(consultationReimb),
		TotalReimbursement:          round2(total),
		PolicyMaxLimit:              p.MaxClaimAmount,
		ReimbursementCapped:         capped,
		ReimbursementPercentage:     round2(pct),
		PolicyApplied:               p.Name,
	}

	return Assessment{
		Summary:         s,
		Warnings:        e.warnings(cmp, s),
		Recommendations: e.recommendations(cmp, p),
	}
}

// warnings evaluates each warning rule independently; any subset may fire.
func (e *Engine) warnings(cmp matching.Comparison, s Summary) []string {
	var out []string

	if cmp.Stats.ComplianceScore < 50 {
		out = append(out, fmt.Sprintf(
			"Low compliance score (%.1f%%). Many items in bill are not found in prescription.",
			cmp.Stats.ComplianceScore))
	}
	if s.NonAdmissibleMedicineAmount > 5000 {
		out = append(out, fmt.Sprintf(
			"High non-admissible amount: ₹%.2f. These medicines will not be reimbursed.",
			s.NonAdmissibleMedicineAmount))
	}
	if s.ReimbursementCapped {
		out = append(out, fmt.Sprintf(
			"Reimbursement capped at policy limit of ₹%.2f", s.PolicyMaxLimit))
	}
	if n := cmp.Stats.NotPurchasedCount; n > 0 {
		out = append(out, fmt.Sprintf(
			"%d prescribed medicine(s) not found in bill. Patient may not have purchased all prescribed medicines.", n))
	}
	if n := cmp.Stats.NonAdmissibleCount; n > 5 {
		out = append(out, fmt.Sprintf(
			"%d non-admissible items found. Consider reviewing prescription compliance.", n))
	}
	return out
}

func (e *Engine) recommendations(cmp matching.Comparison, p Policy) []string {
	var out []string

	switch score := cmp.Stats.ComplianceScore; {
	case score >= 90:
		out = append(out, "High compliance with prescription. Recommend automatic approval.")
	case score >= 70:
		out = append(out, "Good compliance with prescription. Standard processing recommended.")
	default:
		out = append(out, "Low compliance with prescription. Manual review recommended.")
	}

	if !p.AllowsOTCMedicines {
		for _, m := range cmp.NonAdmissible {
			if e.catalog.IsOTC(m.GenericName) || e.catalog.IsOTC(m.Name) {
				out = append(out, "OTC medicines found but not covered under current policy. Consider upgrading to Premium policy for OTC coverage.")
				break
			}
		}
	}

	if cmp.Stats.NotPurchasedCount > 0 {
		out = append(out, "Some prescribed medicines not purchased. Verify with patient if additional bills are pending.")
	}

	moderate := 0
	for _, r := range cmp.Matches {
		if r.MatchType == constants.MatchModerateConfidence {
			moderate++
		}
	}
	if moderate > 0 {
		out = append(out, fmt.Sprintf(
			"%d medicine(s) matched with moderate confidence. Manual verification recommended for these items.", moderate))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
