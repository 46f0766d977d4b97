package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamwise/churn/internal/domain/valueobject"
)

func TestChurnLabel(t *testing.T) {
	assert.Equal(t, 0, valueobject.LabelStay.Int())
	assert.Equal(t, 1, valueobject.LabelChurn.Int())
	assert.Equal(t, "STAY", valueobject.LabelStay.String())
	assert.Equal(t, "CHURN", valueobject.LabelChurn.String())
	assert.Equal(t, "Likely to Stay", valueobject.LabelStay.Headline())
	assert.Equal(t, "Likely to Churn", valueobject.LabelChurn.Headline())
	assert.True(t, valueobject.LabelChurn.IsChurn())
	assert.False(t, valueobject.LabelStay.IsChurn())
}

func TestLabelFromInt(t *testing.T) {
	l, err := valueobject.LabelFromInt(1)
	require.NoError(t, err)
	assert.True(t, l.Equal(valueobject.LabelChurn))

	_, err = valueobject.LabelFromInt(2)
	require.Error(t, err)
}

func TestLabelFromString(t *testing.T) {
	l, err := valueobject.LabelFromString("STAY")
	require.NoError(t, err)
	assert.True(t, l.Equal(valueobject.LabelStay))

	_, err = valueobject.LabelFromString("stay")
	require.Error(t, err)
}

func TestRiskBandFromProbability(t *testing.T) {
	tests := []struct {
		p        float64
		expected valueobject.RiskBand
	}{
		{0, valueobject.RiskBandLow},
		{0.349, valueobject.RiskBandLow},
		{0.35, valueobject.RiskBandMedium},
		{0.60, valueobject.RiskBandHigh},
		{0.79, valueobject.RiskBandHigh},
		{0.80, valueobject.RiskBandCritical},
		{1, valueobject.RiskBandCritical},
	}

	for _, tt := range tests {
		assert.True(t, tt.expected.Equal(valueobject.RiskBandFromProbability(tt.p)), "p=%v", tt.p)
	}
}

func TestRiskBandFromString(t *testing.T) {
	for _, s := range []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"} {
		b, err := valueobject.RiskBandFromString(s)
		require.NoError(t, err)
		assert.Equal(t, s, b.String())
	}
	_, err := valueobject.RiskBandFromString("")
	require.Error(t, err)
	assert.True(t, valueobject.RiskBand{}.IsZero())
}
