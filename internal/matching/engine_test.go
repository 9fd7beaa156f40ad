package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medreview/claims-reconciler/constants"
	"github.com/medreview/claims-reconciler/internal/medicine"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cat, err := medicine.LoadDefaultCatalog()
	require.NoError(t, err)
	return NewEngine(cat, DefaultThresholds())
}

func mention(name string) medicine.Mention {
	return medicine.Mention{Name: name, GenericName: name, Confidence: 1}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name1, name2 string
		min, max     float64
	}{
		{"paracetamol", "paracetamol", 1.0, 1.0},
		{"paracetamol", "Paracetamol", 1.0, 1.0},
		{"azithromycine", "azithromycin", 0.80, 1.0},
		{"ibuprofen+paracetamol", "paracetamol", 0.5, 0.75},
		{"paracetamol", "metformin", 0.0, 0.5},
		{"", "paracetamol", 0.0, 0.0},
	}
	for _, tt := range tests {
		sim := Similarity(tt.name1, tt.name2)
		assert.GreaterOrEqual(t, sim, tt.min, "%s vs %s", tt.name1, tt.name2)
		assert.LessOrEqual(t, sim, tt.max, "%s vs %s", tt.name1, tt.name2)
		assert.GreaterOrEqual(t, sim, 0.0)
		assert.LessOrEqual(t, sim, 1.0)
	}
}

func TestCompare_ExactMatch(t *testing.T) {
	e := testEngine(t)

	bill := []medicine.Mention{{Name: "Paracetamol", GenericName: "paracetamol", OriginalText: "Paracetamol 500mg"}}
	rx := []medicine.Mention{mention("paracetamol")}

	cmp := e.Compare(bill, rx, false)
	require.Len(t, cmp.Matches, 1)
	assert.Equal(t, constants.MatchExact, cmp.Matches[0].MatchType)
	assert.True(t, cmp.Matches[0].IsAdmissible)
	assert.InDelta(t, 1.0, cmp.Matches[0].Similarity, 1e-9)
	require.NotNil(t, cmp.Matches[0].PrescriptionMatch)
	assert.Equal(t, 100.0, cmp.Stats.ComplianceScore)
}

func TestCompare_BrandMatchesGeneric(t *testing.T) {
	e := testEngine(t)

	bill := []medicine.Mention{{Name: "Crocin", GenericName: "paracetamol"}}
	rx := []medicine.Mention{mention("paracetamol")}

	cmp := e.Compare(bill, rx, false)
	require.Len(t, cmp.Matches, 1)
	assert.Equal(t, constants.MatchExact, cmp.Matches[0].MatchType)
}

func TestCompare_TypoStillAdmissible(t *testing.T) {
	e := testEngine(t)

	bill := []medicine.Mention{mention("Azithromycine")}
	rx := []medicine.Mention{mention("Azithromycin")}

	cmp := e.Compare(bill, rx, false)
	require.Len(t, cmp.Matches, 1)
	assert.True(t, cmp.Matches[0].IsAdmissible)
	assert.True(t, cmp.Matches[0].Similarity >= 0.80)
}

func TestCompare_ModerateBandFlagsReview(t *testing.T) {
	e := testEngine(t)

	bill := []medicine.Mention{mention("Paracetamole Forte")}
	rx := []medicine.Mention{mention("paracetamol")}

	cmp := e.Compare(bill, rx, false)
	require.Len(t, cmp.Matches, 1)
	res := cmp.Matches[0]
	assert.Equal(t, constants.MatchModerateConfidence, res.MatchType)
	assert.True(t, res.IsAdmissible)
	assert.True(t, res.ReviewRecommended)
	assert.GreaterOrEqual(t, res.Similarity, 0.60)
	assert.Less(t, res.Similarity, 0.80)
}

func TestCompare_OTCGatedByPolicy(t *testing.T) {
	e := testEngine(t)

	bill := []medicine.Mention{mention("Paracetamol")}

	// OTC-allowing policy admits it without a prescription
	cmp := e.Compare(bill, nil, true)
	require.Len(t, cmp.Matches, 1)
	assert.Equal(t, constants.MatchOTC, cmp.Matches[0].MatchType)
	assert.True(t, cmp.Matches[0].IsAdmissible)

	// but a disallowing policy lets it fall through to no_match
	cmp = e.Compare(bill, nil, false)
	require.Len(t, cmp.Matches, 1)
	assert.Equal(t, constants.MatchNoMatch, cmp.Matches[0].MatchType)
	assert.False(t, cmp.Matches[0].IsAdmissible)
}

func TestCompare_ExcludedItem(t *testing.T) {
	e := testEngine(t)

	bill := []medicine.Mention{mention("Fairness Cream")}
	cmp := e.Compare(bill, nil, true)

	require.Len(t, cmp.Matches, 1)
	assert.Equal(t, constants.MatchExcluded, cmp.Matches[0].MatchType)
	assert.False(t, cmp.Matches[0].IsAdmissible)
}

func TestCompare_OneToOneConsumption(t *testing.T) {
	e := testEngine(t)

	// two identical bill lines, one prescription entry: only the first pairs
	bill := []medicine.Mention{mention("metformin"), mention("metformin")}
	rx := []medicine.Mention{mention("metformin")}

	cmp := e.Compare(bill, rx, false)
	require.Len(t, cmp.Matches, 2)
	assert.Equal(t, constants.MatchExact, cmp.Matches[0].MatchType)
	assert.Equal(t, constants.MatchNoMatch, cmp.Matches[1].MatchType)
}

func TestCompare_PrescribedNotPurchased(t *testing.T) {
	e := testEngine(t)

	bill := []medicine.Mention{mention("metformin")}
	rx := []medicine.Mention{mention("metformin"), mention("atorvastatin")}

	cmp := e.Compare(bill, rx, false)
	require.Len(t, cmp.PrescribedNotPurchased, 1)
	assert.Equal(t, "atorvastatin", cmp.PrescribedNotPurchased[0].Name)
	assert.Equal(t, 1, cmp.Stats.NotPurchasedCount)
}

func TestCompare_CountsPartition(t *testing.T) {
	e := testEngine(t)

	bill := []medicine.Mention{
		mention("metformin"),
		mention("Fairness Cream"),
		mention("unknowndrug"),
		mention("Paracetamol"),
	}
	rx := []medicine.Mention{mention("metformin")}

	cmp := e.Compare(bill, rx, false)
	assert.Equal(t, len(bill), cmp.Stats.AdmissibleCount+cmp.Stats.NonAdmissibleCount)
	assert.Equal(t, len(cmp.Matches), len(bill))
	for _, r := range cmp.Matches {
		assert.GreaterOrEqual(t, r.Similarity, 0.0)
		assert.LessOrEqual(t, r.Similarity, 1.0)
	}
}

func TestCompare_EmptyBill(t *testing.T) {
	e := testEngine(t)

	cmp := e.Compare(nil, []medicine.Mention{mention("metformin")}, false)
	assert.Empty(t, cmp.Matches)
	assert.Equal(t, 0.0, cmp.Stats.ComplianceScore)
	assert.Len(t, cmp.PrescribedNotPurchased, 1)
}
