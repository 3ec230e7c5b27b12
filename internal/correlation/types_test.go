package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jahboukie/sentiment-as-a-service/internal/errors"
)

func TestClassifyStrengthBoundaries(t *testing.T) {
	cases := []struct {
		r    float64
		want Strength
	}{
		{1.0, StrengthStrong},
		{0.7, StrengthStrong},
		{0.6999, StrengthModerate},
		{0.5, StrengthModerate},
		{0.4999, StrengthWeak},
		{0.3, StrengthWeak},
		{0.2999, StrengthNegligible},
		{0.0, StrengthNegligible},
		{-0.3, StrengthWeak},
		{-0.7, StrengthStrong},
		{-1.0, StrengthStrong},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyStrength(tc.r), "r=%g", tc.r)
	}
}

func TestParseType(t *testing.T) {
	for _, analysisType := range Types() {
		parsed, err := ParseType(string(analysisType))
		require.NoError(t, err)
		assert.Equal(t, analysisType, parsed)
	}

	_, err := ParseType("numerology")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeInvalidConfiguration))
}

func TestAssessPower(t *testing.T) {
	assert.Equal(t, "low", assessPower(10))
	assert.Equal(t, "adequate", assessPower(30))
	assert.Equal(t, "high", assessPower(100))
}
