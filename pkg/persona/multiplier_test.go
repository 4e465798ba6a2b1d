package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSales() *SalesPersona {
	return &SalesPersona{
		ID:               "rep-1",
		Name:             "Sato Kenji",
		ExperienceLevel:  ExperienceSenior,
		Traits:           []SalesTrait{TraitProfessional, TraitKnowledgeable},
		StressTolerance:  0.8,
		Adaptability:     0.7,
		ProductKnowledge: 0.9,
	}
}

func TestDeriveMultiplierDeterministic(t *testing.T) {
	p := validSales()
	first, err := DeriveMultiplier(p)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		again, err := DeriveMultiplier(p)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDeriveMultiplierRange(t *testing.T) {
	cases := []struct {
		name string
		p    *SalesPersona
	}{
		{"weakest", &SalesPersona{
			ExperienceLevel: ExperienceJunior,
			Traits:          []SalesTrait{TraitInexperienced, TraitImpatient, TraitCautious},
		}},
		{"strongest", &SalesPersona{
			ExperienceLevel:  ExperienceVeteran,
			Traits:           []SalesTrait{TraitProfessional, TraitKnowledgeable, TraitAggressive},
			StressTolerance:  1,
			Adaptability:     1,
			ProductKnowledge: 1,
		}},
		{"typical", validSales()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := DeriveMultiplier(tc.p)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, m, 0.0)
			assert.LessOrEqual(t, m, MaxMultiplier)
		})
	}
}

func TestDeriveMultiplierKnownValue(t *testing.T) {
	// Base 0.5, veteran 1.2, all numeric traits at 1.0 blend to 1.0 each.
	p := &SalesPersona{
		ExperienceLevel:  ExperienceVeteran,
		StressTolerance:  1,
		Adaptability:     1,
		ProductKnowledge: 1,
	}
	m, err := DeriveMultiplier(p)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, m, 1e-12)
}

func TestDeriveMultiplierErrors(t *testing.T) {
	t.Run("nil persona", func(t *testing.T) {
		_, err := DeriveMultiplier(nil)
		assert.Error(t, err)
	})
	t.Run("unknown tier", func(t *testing.T) {
		p := validSales()
		p.ExperienceLevel = "apprentice"
		_, err := DeriveMultiplier(p)
		assert.Error(t, err)
	})
	t.Run("unknown trait", func(t *testing.T) {
		p := validSales()
		p.Traits = append(p.Traits, SalesTrait("charming"))
		_, err := DeriveMultiplier(p)
		assert.Error(t, err)
	})
	t.Run("out of range stress", func(t *testing.T) {
		p := validSales()
		p.StressTolerance = 1.5
		_, err := DeriveMultiplier(p)
		assert.Error(t, err)
	})
}

func TestStageProgression(t *testing.T) {
	order := []Stage{
		StageInitial,
		StageInformationGathering,
		StageDetailedReview,
		StageFinalEvaluation,
		StageDecisionMaking,
	}
	for i, s := range order {
		assert.Equal(t, i, s.Index())
		next, err := s.Next()
		require.NoError(t, err)
		if i < len(order)-1 {
			assert.Equal(t, order[i+1], next)
		} else {
			assert.Equal(t, s, next, "final stage holds")
		}
	}

	_, err := Stage("haggling").Next()
	assert.Error(t, err)
}

func TestResponseTypeRankMonotonic(t *testing.T) {
	ordered := []ResponseType{
		ResponseRejection, ResponseNeutral, ResponseQuestion, ResponsePositive, ResponseAcceptance,
	}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank())
	}
	assert.True(t, ResponsePositive.Favorable())
	assert.True(t, ResponseAcceptance.Favorable())
	assert.False(t, ResponseQuestion.Favorable())
}

func TestCompanyCloneIsDeep(t *testing.T) {
	company := &CompanyPersona{
		ID:               "c-1",
		Traits:           []CompanyTrait{CompanyCooperative},
		InterestProducts: DefaultInterest(),
		Contact: &ContactPersona{
			Name:   "Tanaka",
			Traits: []CompanyTrait{CompanyAnalytical},
		},
	}
	clone := company.Clone()
	clone.InterestProducts[ProductLoan] = 0.9
	clone.Contact.Name = "changed"
	clone.Traits[0] = CompanySkeptical

	assert.Equal(t, 0.5, company.InterestProducts[ProductLoan])
	assert.Equal(t, "Tanaka", company.Contact.Name)
	assert.Equal(t, CompanyCooperative, company.Traits[0])
}
