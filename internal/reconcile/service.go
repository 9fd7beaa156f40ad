// Package reconcile wires the extraction, matching, allocation and policy
// stages into the claim analysis pipeline exposed to callers.
package reconcile

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/medreview/claims-reconciler/constants"
	"github.com/medreview/claims-reconciler/internal/allocate"
	"github.com/medreview/claims-reconciler/internal/common"
	"github.com/medreview/claims-reconciler/internal/extract"
	"github.com/medreview/claims-reconciler/internal/matching"
	"github.com/medreview/claims-reconciler/internal/medicine"
	"github.com/medreview/claims-reconciler/internal/policy"
	"github.com/medreview/claims-reconciler/internal/textnorm"
)

// Service runs the claims reconciliation pipeline. All stages are stateless;
// one Service may serve concurrent callers.
type Service struct {
	interpreter extract.Interpreter
	matcher     *matching.Engine
	policies    *policy.Engine
	cfg         common.PipelineConfig
	logger      *slog.Logger
}

// NewService builds the pipeline from the embedded catalog and policy table.
func NewService(cfg common.PipelineConfig, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	catalog, err := medicine.LoadDefaultCatalog()
	if err != nil {
		return nil, common.WrapError(err, "loading medicine catalog")
	}
	table, err := policy.LoadDefaultTable()
	if err != nil {
		return nil, common.WrapError(err, "loading policy table")
	}

	normalizer := medicine.NewNormalizer(catalog, cfg.MinConfidence)
	extractor := extract.NewExtractor(normalizer, cfg.MaxMentions, logger)

	return &Service{
		interpreter: extract.Select(extract.NewHeuristicInterpreter(extractor)),
		matcher:     matching.NewEngine(catalog, matching.DefaultThresholds()),
		policies:    policy.NewEngine(table, catalog, logger),
		cfg:         cfg,
		logger:      logger,
	}, nil
}

// ParseFields normalizes one document's text and extracts structured fields.
func (s *Service) ParseFields(text string) extract.Fields {
	f, err := s.interpreter.Interpret(textnorm.Clean(text))
	if err != nil {
		// interpreters are best effort; fall back to empty fields
		s.logger.Warn("interpreter failed", "interpreter", s.interpreter.Name(), "error", err)
		return extract.Fields{}
	}
	return f
}

// ParsePages splits multi-page text on page markers and parses each
// non-empty page separately.
func (s *Service) ParsePages(text string) []extract.Fields {
	pages := extract.SplitPages(text)
	fields := make([]extract.Fields, 0, len(pages))
	for _, page := range pages {
		fields = append(fields, s.ParseFields(page))
	}
	return fields
}

// CompareMedicines matches bill mentions against prescription mentions under
// the named policy's OTC rule.
func (s *Service) CompareMedicines(bill, prescription []medicine.Mention, policyName string) matching.Comparison {
	p := s.policies.Resolve(s.policyName(policyName))
	return s.matcher.Compare(bill, prescription, p.AllowsOTCMedicines)
}

// ComputeReimbursement applies the named policy to allocated amounts and a
// comparison result.
func (s *Service) ComputeReimbursement(amounts allocate.Split, cmp matching.Comparison, policyName string) policy.Assessment {
	return s.policies.Compute(amounts, cmp, s.policyName(policyName))
}

// ListPolicies describes the available reimbursement policies.
func (s *Service) ListPolicies() policy.Listing {
	return s.policies.ListPolicies()
}

// Analysis is the full result of reconciling one bill against one
// prescription.
type Analysis struct {
	ID           string              `json:"analysis_id"`
	Bill         extract.Fields      `json:"bill"`
	Prescription extract.Fields      `json:"prescription"`
	Comparison   matching.Comparison `json:"medicine_comparison"`
	Amounts      allocate.Split      `json:"allocated_amounts"`
	Assessment   policy.Assessment   `json:"assessment"`
}

// Analyze runs the whole pipeline: parse both documents, match medicines,
// allocate the bill total across categories and compute the reimbursement.
func (s *Service) Analyze(billText, prescriptionText, policyName string) (*Analysis, error) {
	if strings.TrimSpace(billText) == "" {
		return nil, common.NewAppError("EMPTY_BILL", "bill text is empty", common.ErrInvalidInput)
	}

	cleanBill := textnorm.Clean(billText)
	bill := s.ParseFields(cleanBill)
	prescription := s.ParseFields(prescriptionText)

	name := s.policyName(policyName)
	p := s.policies.Resolve(name)

	cmp := s.matcher.Compare(bill.MedicineMentions, prescription.MedicineMentions, p.AllowsOTCMedicines)

	amounts := allocate.FromText(cleanBill, bill.Total,
		len(bill.MedicineMentions) > 0, len(bill.TestMentions) > 0)

	assessment := s.policies.Compute(amounts, cmp, name)

	a := &Analysis{
		ID:           uuid.NewString(),
		Bill:         bill,
		Prescription: prescription,
		Comparison:   cmp,
		Amounts:      amounts,
		Assessment:   assessment,
	}
	if cmp.Stats.ComplianceScore < s.cfg.ReviewThreshold {
		s.logger.Warn("compliance below review threshold",
			"analysis_id", a.ID,
			"compliance_score", cmp.Stats.ComplianceScore,
			"threshold", s.cfg.ReviewThreshold)
	}
	s.logger.Info("claim analyzed",
		"analysis_id", a.ID,
		"policy", assessment.Summary.PolicyApplied,
		"compliance_score", cmp.Stats.ComplianceScore,
		"total_reimbursement", assessment.Summary.TotalReimbursement,
		"capped", assessment.Summary.ReimbursementCapped)
	return a, nil
}

func (s *Service) policyName(name string) constants.PolicyName {
	if strings.TrimSpace(name) == "" {
		return constants.NormalizePolicyName(s.cfg.DefaultPolicy)
	}
	return constants.NormalizePolicyName(name)
}
