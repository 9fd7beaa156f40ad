package policy

import "fmt"

// Description is the human-readable view of one policy.
type Description struct {
	Name                     string `json:"name"`
	MedicineCoverage         string `json:"medicine_coverage"`
	TestCoverage             string `json:"test_coverage"`
	ConsultationCoverage     string `json:"consultation_coverage"`
	MaxClaimAmount           string `json:"max_claim_amount"`
	RequiresPrescription     bool   `json:"requires_prescription"`
	AllowsOTC                bool   `json:"allows_otc"`
	PrescriptionValidityDays int    `json:"prescription_validity_days"`
}

// Listing enumerates every available policy plus the catalog lists that
// influence eligibility.
type Listing struct {
	Policies                  map[string]Description `json:"policies"`
	DefaultPolicy             string                 `json:"default_policy"`
	OTCMedicines              []string               `json:"otc_medicines_list"`
	NonReimbursableCategories []string               `json:"non_reimbursable_categories"`
}

// ListPolicies describes all available policies.
func (e *Engine) ListPolicies() Listing {
	descs := make(map[string]Description, len(e.table.policies))
	for _, name := range e.table.Names() {
		p := e.table.policies[name]
		descs[string(name)] = Description{
			Name:                     p.Name,
			MedicineCoverage:         fmt.Sprintf("%g%%", p.MedicineCoveragePct),
			TestCoverage:             fmt.Sprintf("%g%%", p.TestCoveragePct),
			ConsultationCoverage:     fmt.Sprintf("%g%%", p.ConsultationCoveragePct),
			MaxClaimAmount:           fmt.Sprintf("₹%.2f", p.MaxClaimAmount),
			RequiresPrescription:     p.RequiresPrescription,
			AllowsOTC:                p.AllowsOTCMedicines,
			PrescriptionValidityDays: p.MaxDaysFromPrescription,
		}
	}
	return Listing{
		Policies:                  descs,
		DefaultPolicy:             string(e.table.DefaultName()),
		OTCMedicines:              e.catalog.OTCList(),
		NonReimbursableCategories: e.catalog.ExcludedCategories(),
	}
}
