package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/medreview/claims-reconciler/constants"
	"github.com/medreview/claims-reconciler/internal/common"
	"github.com/medreview/claims-reconciler/internal/matching"
	"github.com/medreview/claims-reconciler/internal/medicine"
	"github.com/medreview/claims-reconciler/internal/policy"
	"github.com/medreview/claims-reconciler/internal/reconcile"
)

func sampleAnalysis() *reconcile.Analysis {
	rx := medicine.Mention{Name: "Paracetamol", GenericName: "paracetamol"}
	return &reconcile.Analysis{
		ID: "test-analysis",
		Comparison: matching.Comparison{
			Matches: []matching.Result{
				{
					BillMedicine:      medicine.Mention{Name: "Paracetamol", GenericName: "paracetamol"},
					PrescriptionMatch: &rx,
					Similarity:        1,
					MatchType:         constants.MatchExact,
					IsAdmissible:      true,
					Reason:            "Matched with prescription",
				},
				{
					BillMedicine: medicine.Mention{Name: "Fairness", GenericName: "fairness"},
					MatchType:    constants.MatchExcluded,
					Reason:       "Non-reimbursable item (cosmetic/lifestyle)",
				},
			},
			Stats: matching.Stats{TotalBillMedicines: 2, AdmissibleCount: 1, NonAdmissibleCount: 1, ComplianceScore: 50},
		},
		Assessment: policy.Assessment{
			Summary: policy.Summary{
				TotalBillAmount:    1000,
				TotalReimbursement: 400,
				PolicyApplied:      "Standard",
			},
			Warnings: []string{"Low compliance score (50.0%). Many items in bill are not found in prescription."},
		},
	}
}

func TestExportAnalysisXLSX(t *testing.T) {
	s := NewService(common.ExportConfig{}, nil)

	b, err := s.ExportAnalysisXLSX(sampleAnalysis())
	require.NoError(t, err)
	require.NotEmpty(t, b)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	const sheet = "Reconciliation"
	cell := func(ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Bill Medicine", cell("A1"))
	assert.Equal(t, "Paracetamol", cell("A2"))
	assert.Equal(t, "exact", cell("E2"))
	assert.Equal(t, "Fairness", cell("A3"))
	assert.Equal(t, "excluded", cell("E3"))
	// summary block starts after a blank row
	assert.Equal(t, "Policy Applied", cell("A5"))
	assert.Equal(t, "Standard", cell("B5"))
}

func TestExportAnalysisXLSX_CustomSheetName(t *testing.T) {
	s := NewService(common.ExportConfig{SheetName: "Claims"}, nil)

	b, err := s.ExportAnalysisXLSX(sampleAnalysis())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	v, err := f.GetCellValue("Claims", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Bill Medicine", v)
}
