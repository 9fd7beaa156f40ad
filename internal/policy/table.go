// Package policy holds the static reimbursement policy table and the engine
// that turns a medicine comparison plus allocated amounts into a capped
// reimbursement summary with warnings and recommendations.
package policy

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/medreview/claims-reconciler/constants"
	"github.com/medreview/claims-reconciler/internal/medicine"
)

//go:embed policies.json
var defaultPolicies []byte

// Policy defines coverage rules and limits for one named plan.
type Policy struct {
	Name                    string  `json:"name"`
	MedicineCoveragePct     float64 `json:"medicine_coverage_percent"`
	TestCoveragePct         float64 `json:"test_coverage_percent"`
	ConsultationCoveragePct float64 `json:"consultation_coverage_percent"`
	MaxClaimAmount          float64 `json:"max_claim_amount"`
	RequiresPrescription    bool    `json:"requires_prescription"`
	AllowsOTCMedicines      bool    `json:"allows_otc_medicines"`
	MaxDaysFromPrescription int     `json:"max_days_from_prescription"`
}

type tableFile struct {
	DefaultPolicy string            `json:"default_policy"`
	Policies      map[string]Policy `json:"policies"`
}

// Table is the immutable set of named policies. Safe for concurrent readers.
type Table struct {
	policies map[constants.PolicyName]Policy
	def      constants.PolicyName
}

// LoadDefaultTable parses the embedded policy table.
func LoadDefaultTable() (*Table, error) {
	return NewTable(defaultPolicies)
}

// NewTable validates raw JSON against the table schema and builds a Table.
func NewTable(raw []byte) (*Table, error) {
	if err := medicine.ValidateJSONAgainstSchema(tableSchema(), raw); err != nil {
		return nil, fmt.Errorf("policy table: %w", err)
	}
	var f tableFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("policy table: %w", err)
	}
	t := &Table{
		policies: make(map[constants.PolicyName]Policy, len(f.Policies)),
		def:      constants.NormalizePolicyName(f.DefaultPolicy),
	}
	for name, p := range f.Policies {
		t.policies[constants.NormalizePolicyName(name)] = p
	}
	if _, ok := t.policies[t.def]; !ok {
		return nil, fmt.Errorf("policy table: default policy %q not defined", f.DefaultPolicy)
	}
	return t, nil
}

// Lookup returns the policy for name and whether it was found.
func (t *Table) Lookup(name constants.PolicyName) (Policy, bool) {
	p, ok := t.policies[name]
	return p, ok
}

// Default returns the fallback policy.
func (t *Table) Default() Policy {
	return t.policies[t.def]
}

// DefaultName returns the name of the fallback policy.
func (t *Table) DefaultName() constants.PolicyName {
	return t.def
}

// Names returns all policy names in sorted order.
func (t *Table) Names() []constants.PolicyName {
	names := make([]constants.PolicyName, 0, len(t.policies))
	for name := range t.policies {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func tableSchema() map[string]any {
	policySchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":                          map[string]any{"type": "string", "minLength": 1},
			"medicine_coverage_percent":     map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"test_coverage_percent":         map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"consultation_coverage_percent": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
			"max_claim_amount":              map[string]any{"type": "number", "minimum": 0},
			"requires_prescription":         map[string]any{"type": "boolean"},
			"allows_otc_medicines":          map[string]any{"type": "boolean"},
			"max_days_from_prescription":    map[string]any{"type": "integer", "minimum": 1},
		},
		"required": []any{
			"name",
			"medicine_coverage_percent",
			"test_coverage_percent",
			"consultation_coverage_percent",
			"max_claim_amount",
			"allows_otc_medicines",
		},
		"additionalProperties": false,
	}
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"default_policy": map[string]any{"type": "string", "minLength": 1},
			"policies": map[string]any{
				"type":                 "object",
				"minProperties":        1,
				"additionalProperties": policySchema,
			},
		},
		"required":             []any{"default_policy", "policies"},
		"additionalProperties": false,
	}
}
