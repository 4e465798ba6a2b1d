package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveResponseStyle(t *testing.T) {
	detail := &ContactPersona{
		Traits:            []CompanyTrait{CompanyDetailOriented, CompanyAnalytical},
		FinancialLiteracy: 0.8,
		YearsInCompany:    20,
	}
	style, err := DeriveResponseStyle(detail)
	require.NoError(t, err)
	assert.Equal(t, 1.0, style.Detail, "detail saturates for analytical detail-oriented contacts")
	assert.Less(t, style.Speed, 0.5)

	impulsive := &ContactPersona{Traits: []CompanyTrait{CompanyImpulsive}}
	fast, err := DeriveResponseStyle(impulsive)
	require.NoError(t, err)
	assert.Greater(t, fast.Speed, style.Speed)

	for _, dim := range []float64{style.Formality, style.Detail, style.Speed, style.Cooperation} {
		assert.GreaterOrEqual(t, dim, 0.0)
		assert.LessOrEqual(t, dim, 1.0)
	}
}

func TestDeriveResponseStyleUnknownTrait(t *testing.T) {
	c := &ContactPersona{Traits: []CompanyTrait{"mercurial"}}
	_, err := DeriveResponseStyle(c)
	assert.Error(t, err)
}

func TestDeriveResponseStyleNilContact(t *testing.T) {
	_, err := DeriveResponseStyle(nil)
	assert.Error(t, err)
}
