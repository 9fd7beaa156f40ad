package allocate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProportional_WeightTable(t *testing.T) {
	tests := []struct {
		name         string
		hasMedicines bool
		hasTests     bool
		want         Split
	}{
		{"both", true, true, Split{Medicine: 500, Test: 300, Consultation: 200}},
		{"medicines only", true, false, Split{Medicine: 700, Test: 0, Consultation: 300}},
		{"tests only", false, true, Split{Medicine: 0, Test: 600, Consultation: 400}},
		{"neither", false, false, Split{Medicine: 0, Test: 0, Consultation: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Proportional(1000, tt.hasMedicines, tt.hasTests)
			assert.Equal(t, tt.want, got)
			assert.InDelta(t, 1000, got.Total(), 0.01)
		})
	}
}

func TestProportional_ZeroTotal(t *testing.T) {
	assert.Equal(t, Split{}, Proportional(0, true, true))
	assert.Equal(t, Split{}, Proportional(-50, true, false))
}

func TestFromText_KeywordAnchoredAmounts(t *testing.T) {
	text := "Medicine charges Rs. 600\nTest charges Rs. 300\nConsultation fee Rs. 100"
	got := FromText(text, 1000, true, true)

	assert.Equal(t, Split{Medicine: 600, Test: 300, Consultation: 100}, got)
}

func TestFromText_RescalesOverflow(t *testing.T) {
	// keyword amounts sum to 2000 against an observed total of 1000
	text := "Medicine Rs. 1000\nTest Rs. 600\nConsultation Rs. 400"
	got := FromText(text, 1000, true, true)

	assert.InDelta(t, 1000, got.Total(), 0.01)
	assert.InDelta(t, 500, got.Medicine, 0.01)
	assert.InDelta(t, 300, got.Test, 0.01)
	assert.InDelta(t, 200, got.Consultation, 0.01)
}

func TestFromText_FallsBackToProportional(t *testing.T) {
	got := FromText("no currency markers here", 1000, true, false)
	assert.Equal(t, Split{Medicine: 700, Consultation: 300}, got)
}

func TestFromText_NeverExceedsTotal(t *testing.T) {
	texts := []string{
		"Medicine Rs. 999999\nTest Rs. 999999",
		"Medicine Rs. 10\nConsultation Rs. 5",
		"",
	}
	for _, text := range texts {
		got := FromText(text, 500, true, true)
		assert.LessOrEqual(t, got.Total(), 500.0+0.01, "text=%q", text)
	}
}
