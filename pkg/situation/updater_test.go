package situation

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankops/salessim/pkg/config"
	"github.com/bankops/salessim/pkg/persona"
)

func testCompany(traits ...persona.CompanyTrait) *persona.CompanyPersona {
	return &persona.CompanyPersona{
		ID:               "c-1",
		Name:             "Hoshino Foods",
		AnnualRevenue:    500,
		EmployeeCount:    80,
		Traits:           traits,
		InterestProducts: persona.DefaultInterest(),
		FundingNeed:      persona.FundingNeed{Description: "working capital"},
	}
}

func testContact(traits ...persona.CompanyTrait) *persona.ContactPersona {
	return &persona.ContactPersona{
		Name:            "Mori",
		Traits:          traits,
		StressTolerance: 0.6,
		Adaptability:    0.5,
	}
}

func TestAdvanceBoundedForAnySeed(t *testing.T) {
	cfg := config.DefaultConfig()
	u := NewUpdater(cfg)
	interval := cfg.Simulation.VisitIntervalDays

	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		company := testCompany(persona.CompanyImpulsive)
		contact := testContact(persona.CompanyImpulsive)

		update, err := u.Advance(company, contact, interval, nil, rng)
		require.NoError(t, err)

		// Impulsive widens revenue volatility to 7.5%.
		assert.LessOrEqual(t, math.Abs(update.RevenueChange), 0.075+1e-9)
		assert.Greater(t, update.Company.AnnualRevenue, 0.0)
		assert.GreaterOrEqual(t, update.Company.EmployeeCount, 1)

		for product, interest := range update.Company.InterestProducts {
			assert.GreaterOrEqual(t, interest, 0.0, product)
			assert.LessOrEqual(t, interest, 1.0, product)
		}
		assert.GreaterOrEqual(t, update.Contact.StressTolerance, 0.0)
		assert.LessOrEqual(t, update.Contact.StressTolerance, 1.0)
		assert.GreaterOrEqual(t, update.Contact.Adaptability, 0.0)
		assert.LessOrEqual(t, update.Contact.Adaptability, 1.0)
	}
}

func TestAdvanceDeterministicPerSeed(t *testing.T) {
	cfg := config.DefaultConfig()
	u := NewUpdater(cfg)

	run := func() *Update {
		rng := rand.New(rand.NewSource(7))
		update, err := u.Advance(testCompany(), testContact(), 30, nil, rng)
		require.NoError(t, err)
		return update
	}

	first, err := json.Marshal(run())
	require.NoError(t, err)
	second, err := json.Marshal(run())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAdvanceDoesNotMutateInputs(t *testing.T) {
	cfg := config.DefaultConfig()
	u := NewUpdater(cfg)

	company := testCompany()
	contact := testContact()
	companyBefore, _ := json.Marshal(company)
	contactBefore, _ := json.Marshal(contact)

	_, err := u.Advance(company, contact, 30, nil, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	companyAfter, _ := json.Marshal(company)
	contactAfter, _ := json.Marshal(contact)
	assert.Equal(t, companyBefore, companyAfter)
	assert.Equal(t, contactBefore, contactAfter)
}

func TestEscalationForcesReroll(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Situation.UrgencyEscalationProb = 1.0
	u := NewUpdater(cfg)

	update, err := u.Advance(testCompany(), testContact(), 30, nil, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.True(t, update.UrgencyEscalated)
	assert.True(t, update.InterestRerolled, "escalation must co-occur with an interest re-roll")
	assert.True(t, update.Company.FundingNeed.Urgent)
}

func TestNoEscalationWhenAlreadyUrgent(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Situation.UrgencyEscalationProb = 1.0
	u := NewUpdater(cfg)

	company := testCompany()
	company.FundingNeed.Urgent = true

	update, err := u.Advance(company, testContact(), 30, nil, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.False(t, update.UrgencyEscalated)
	assert.False(t, update.InterestRerolled)
}

func TestOutcomeShiftsInterest(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Situation.InterestDrift = 0 // isolate the outcome shift
	cfg.Situation.UrgencyEscalationProb = 0
	u := NewUpdater(cfg)

	company := testCompany()
	company.InterestProducts[persona.ProductLoan] = 0.5

	good := &LastOutcome{Product: persona.ProductLoan, Classification: persona.ResponsePositive}
	update, err := u.Advance(company, testContact(), 30, good, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Greater(t, update.Company.InterestProducts[persona.ProductLoan], 0.5)

	bad := &LastOutcome{Product: persona.ProductLoan, Classification: persona.ResponseRejection}
	update, err = u.Advance(company, testContact(), 30, bad, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Less(t, update.Company.InterestProducts[persona.ProductLoan], 0.5)
}

func TestZeroElapsedMeansNoBusinessDrift(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Situation.UrgencyEscalationProb = 1.0 // scaled by elapsed, so still inert
	u := NewUpdater(cfg)

	company := testCompany()
	update, err := u.Advance(company, testContact(), 0, nil, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	assert.Equal(t, company.AnnualRevenue, update.Company.AnnualRevenue)
	assert.Equal(t, company.EmployeeCount, update.Company.EmployeeCount)
	assert.False(t, update.UrgencyEscalated)
}

func TestAdvanceValidation(t *testing.T) {
	cfg := config.DefaultConfig()
	u := NewUpdater(cfg)
	rng := rand.New(rand.NewSource(1))

	cases := []struct {
		name    string
		company *persona.CompanyPersona
		contact *persona.ContactPersona
		elapsed int
	}{
		{"nil company", nil, testContact(), 30},
		{"nil contact", testCompany(), nil, 30},
		{"negative elapsed", testCompany(), testContact(), -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := u.Advance(tc.company, tc.contact, tc.elapsed, nil, rng)
			require.Error(t, err)
			var uerr *UpdateError
			assert.ErrorAs(t, err, &uerr)
		})
	}

	t.Run("out of range interest", func(t *testing.T) {
		company := testCompany()
		company.InterestProducts[persona.ProductLoan] = 1.4
		_, err := u.Advance(company, testContact(), 30, nil, rng)
		assert.Error(t, err)
	})

	t.Run("nil rng", func(t *testing.T) {
		_, err := u.Advance(testCompany(), testContact(), 30, nil, nil)
		assert.Error(t, err)
	})
}
