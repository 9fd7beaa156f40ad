package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medreview/claims-reconciler/internal/medicine"
)

func newTestExtractor(t *testing.T, maxMentions int) *Extractor {
	t.Helper()
	catalog, err := medicine.LoadDefaultCatalog()
	require.NoError(t, err)
	normalizer := medicine.NewNormalizer(catalog, 0)
	return NewExtractor(normalizer, maxMentions, nil)
}

const sampleBill = `Patient Name: John Mathew
Bill No: INV-2024/88
Date: 12/03/2024
Dr. Anil Mehta, Apollo Hospital
Tab Paracetamol 500mg Rs. 30.00
Blood Test Rs. 500
Total: 1200`

func TestExtract_Fields(t *testing.T) {
	e := newTestExtractor(t, 0)

	f := e.Extract(sampleBill)

	assert.Equal(t, "John Mathew", f.PatientName)
	assert.Equal(t, "INV-2024/88", f.BillNo)
	assert.Equal(t, "12/03/2024", f.ServiceDate)
	assert.Equal(t, "Anil Mehta", f.DoctorName)
	assert.Equal(t, "Apollo Hospital", f.HospitalName)
	assert.Equal(t, []float64{30, 500, 1200}, f.Amounts)
	assert.Equal(t, 1200.0, f.Total)
	assert.Equal(t, []string{"Blood Test"}, f.TestMentions)
	require.Len(t, f.MedicineMentions, 1)
	assert.Equal(t, "paracetamol", f.MedicineMentions[0].GenericName)
}

func TestExtract_HonorificFallbackForPatient(t *testing.T) {
	e := newTestExtractor(t, 0)

	f := e.Extract("Mr. Ramesh Kumar, Age 45\nConsultation Rs. 300")

	assert.Equal(t, "Ramesh Kumar", f.PatientName)
}

func TestExtract_MissingFieldsStayEmpty(t *testing.T) {
	e := newTestExtractor(t, 0)

	f := e.Extract("nothing useful here")

	assert.Empty(t, f.PatientName)
	assert.Empty(t, f.BillNo)
	assert.Empty(t, f.Amounts)
	assert.Zero(t, f.Total)
	assert.Empty(t, f.MedicineMentions)
}

func TestExtract_TextualDateFallback(t *testing.T) {
	e := newTestExtractor(t, 0)

	f := e.Extract("Consultation on 5 March 2024")

	assert.Equal(t, "5 March 2024", f.ServiceDate)
}

func TestExtractAmounts_RangeDedupeSort(t *testing.T) {
	amounts := extractAmounts("Rs. 500 paid, amount: 100, 250 Rs., Rs. 500, Rs. 5000000")

	assert.Equal(t, []float64{100, 250, 500}, amounts)
}

func TestResolveTotal_FallsBackToMax(t *testing.T) {
	e := newTestExtractor(t, 0)

	f := e.Extract("Medicine Rs. 300\nConsultation Rs. 700")

	assert.Equal(t, 700.0, f.Total)
}

func TestExtract_MentionCap(t *testing.T) {
	e := newTestExtractor(t, 2)

	f := e.Extract("Tab Paracetamol 500mg\nTab Metformin 850mg\nCap Omeprazole 20mg")

	assert.Len(t, f.MedicineMentions, 2)
}

func TestSplitPages(t *testing.T) {
	pages := SplitPages("=== PAGE 1 ===\nfirst bill\n=== PAGE 2 ===\nsecond bill\n")
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "first bill")
	assert.Contains(t, pages[1], "second bill")

	assert.Len(t, SplitPages("single bill, no markers"), 1)
	assert.Len(t, SplitPages("=== PAGE 1 ===\n\n=== PAGE 2 ===\ncontent\n"), 1)
	assert.Empty(t, SplitPages("   \n"))
}

type downInterpreter struct{}

func (downInterpreter) Name() string    { return "remote" }
func (downInterpreter) Available() bool { return false }

func (downInterpreter) Interpret(string) (Fields, error) { return Fields{}, nil }

func TestSelect_SkipsUnavailable(t *testing.T) {
	e := newTestExtractor(t, 0)
	h := NewHeuristicInterpreter(e)

	chosen := Select(downInterpreter{}, h)

	require.NotNil(t, chosen)
	assert.Equal(t, "heuristic", chosen.Name())
}
