package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankops/salessim/pkg/config"
	"github.com/bankops/salessim/pkg/persona"
)

func testCompany() *persona.CompanyPersona {
	return &persona.CompanyPersona{
		ID:                "c-1",
		Name:              "Yamato Precision",
		Industry:          "manufacturing",
		EmployeeCount:     120,
		AnnualRevenue:     1000,
		RiskTolerance:     1,
		FinancialLiteracy: 1,
		InterestProducts:  persona.DefaultInterest(),
		FundingNeed:       persona.FundingNeed{Description: "equipment renewal"},
	}
}

func testContact() *persona.ContactPersona {
	return &persona.ContactPersona{
		Name:            "Tanaka",
		Position:        "CFO",
		RiskTolerance:   0.5,
		StressTolerance: 0.5,
		Adaptability:    0.5,
	}
}

func strongProposal() *Proposal {
	return &Proposal{
		ProductType: persona.ProductLoan,
		Description: "equipment loan",
		Amount:      100,
		Benefits:    []string{"low rate", "fast approval", "flexible terms"},
		Cost:        CostInfo{Total: 5}, // 0.5% of revenue
		Support:     SupportDetails{Dedicated: true, Online: true, AroundTheClock: true},
		TrackRecord: []CaseRecord{
			{Industry: "manufacturing", Success: true},
			{Industry: "retail", Success: true},
		},
	}
}

func TestEvaluateCompositeIsWeightedSum(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg)

	result, err := engine.Evaluate(strongProposal(), testCompany(), testContact(), 1.0)
	require.NoError(t, err)

	w := cfg.Scoring.Weights
	expected := 100 * (w.Cost*result.Scores[CriterionCost] +
		w.Risk*result.Scores[CriterionRisk] +
		w.Benefit*result.Scores[CriterionBenefit] +
		w.Feasibility*result.Scores[CriterionFeasibility] +
		w.Support*result.Scores[CriterionSupport] +
		w.TrackRecord*result.Scores[CriterionTrackRecord])
	assert.InDelta(t, expected, result.Composite, 1e-9)

	for _, crit := range AllCriteria() {
		s := result.Scores[crit]
		assert.GreaterOrEqual(t, s, 0.0, crit)
		assert.LessOrEqual(t, s, 1.0, crit)
	}
}

func TestEvaluateSubScores(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scoring.PersonaBiasWeight = 0 // isolate the deterministic scores
	engine := NewEngine(cfg)

	t.Run("cost bands", func(t *testing.T) {
		company := testCompany()

		cheap := strongProposal()
		cheap.Cost.Total = 5 // 0.5% -> +0.3
		res, err := engine.Evaluate(cheap, company, testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.8, res.Scores[CriterionCost], 1e-9)

		mid := strongProposal()
		mid.Cost.Total = 30 // 3% -> +0.1
		res, err = engine.Evaluate(mid, company, testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.6, res.Scores[CriterionCost], 1e-9)

		dear := strongProposal()
		dear.Cost.Total = 100 // 10% -> -0.2
		res, err = engine.Evaluate(dear, company, testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.3, res.Scores[CriterionCost], 1e-9)
	})

	t.Run("risk counts", func(t *testing.T) {
		company := testCompany()

		none := strongProposal()
		res, err := engine.Evaluate(none, company, testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.8, res.Scores[CriterionRisk], 1e-9)

		few := strongProposal()
		few.Risks = []string{"rate risk", "refinance risk"}
		res, err = engine.Evaluate(few, company, testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.6, res.Scores[CriterionRisk], 1e-9)

		many := strongProposal()
		many.Risks = []string{"a", "b", "c", "d"}
		res, err = engine.Evaluate(many, company, testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.1, res.Scores[CriterionRisk], 1e-9)
	})

	t.Run("feasibility ratios", func(t *testing.T) {
		company := testCompany()

		heavy := strongProposal()
		heavy.Amount = 600 // 60% of revenue
		res, err := engine.Evaluate(heavy, company, testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.4, res.Scores[CriterionFeasibility], 1e-9)

		medium := strongProposal()
		medium.Amount = 400 // 40%
		res, err = engine.Evaluate(medium, company, testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.6, res.Scores[CriterionFeasibility], 1e-9)

		light := strongProposal()
		light.Amount = 100 // 10%
		res, err = engine.Evaluate(light, company, testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.7, res.Scores[CriterionFeasibility], 1e-9)
	})

	t.Run("support checklist", func(t *testing.T) {
		full := strongProposal()
		res, err := engine.Evaluate(full, testCompany(), testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.9, res.Scores[CriterionSupport], 1e-9)

		bare := strongProposal()
		bare.Support = SupportDetails{}
		res, err = engine.Evaluate(bare, testCompany(), testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, res.Scores[CriterionSupport], 1e-9)
	})

	t.Run("track record", func(t *testing.T) {
		p := strongProposal() // 2/2 success, industry match
		res, err := engine.Evaluate(p, testCompany(), testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, res.Scores[CriterionTrackRecord], 1e-9)

		miss := strongProposal()
		miss.TrackRecord = []CaseRecord{{Industry: "retail", Success: false}}
		res, err = engine.Evaluate(miss, testCompany(), testContact(), 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, res.Scores[CriterionTrackRecord], 1e-9)
	})
}

func TestEvaluateToleranceDamping(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scoring.PersonaBiasWeight = 0
	engine := NewEngine(cfg)

	company := testCompany()
	company.RiskTolerance = 0 // halves cost and risk scores

	res, err := engine.Evaluate(strongProposal(), company, testContact(), 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, res.Scores[CriterionCost], 1e-9)
	assert.InDelta(t, 0.4, res.Scores[CriterionRisk], 1e-9)
}

func TestEvaluatePersonaBias(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scoring.PersonaBiasWeight = 0.3
	engine := NewEngine(cfg)

	low, err := engine.Evaluate(strongProposal(), testCompany(), testContact(), 0.2)
	require.NoError(t, err)
	high, err := engine.Evaluate(strongProposal(), testCompany(), testContact(), 1.2)
	require.NoError(t, err)

	assert.Greater(t, high.Scores[CriterionBenefit], low.Scores[CriterionBenefit])
	assert.Greater(t, high.Composite, low.Composite)
	// Bias never touches the purely deterministic factors.
	assert.Equal(t, low.Scores[CriterionCost], high.Scores[CriterionCost])
	assert.Equal(t, low.Scores[CriterionFeasibility], high.Scores[CriterionFeasibility])
}

func TestEvaluateClassificationMonotonic(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg)

	weak := &Proposal{
		ProductType: persona.ProductLoan,
		Amount:      600,
		Cost:        CostInfo{Total: 200},
		Risks:       []string{"a", "b", "c", "d", "e"},
	}
	strong := strongProposal()

	company := testCompany()
	weakRes, err := engine.Evaluate(weak, company, testContact(), 1.0)
	require.NoError(t, err)
	strongRes, err := engine.Evaluate(strong, company, testContact(), 1.0)
	require.NoError(t, err)

	assert.Greater(t, strongRes.Composite, weakRes.Composite)
	assert.GreaterOrEqual(t, strongRes.Classification.Rank(), weakRes.Classification.Rank())
}

func TestEvaluateConcerns(t *testing.T) {
	cfg := config.DefaultConfig()
	engine := NewEngine(cfg)

	weak := &Proposal{
		ProductType: persona.ProductLoan,
		Risks:       []string{"a", "b", "c", "d"},
		Cost:        CostInfo{Total: 200},
	}
	res, err := engine.Evaluate(weak, testCompany(), testContact(), 1.0)
	require.NoError(t, err)

	require.NotEmpty(t, res.Concerns)
	for _, c := range res.Concerns {
		assert.Less(t, res.Scores[c.Criterion], cfg.Scoring.ConcernCutoff)
		assert.InDelta(t, 1-res.Scores[c.Criterion], c.Severity, 1e-9)
	}
}

func TestEvaluateInputErrors(t *testing.T) {
	engine := NewEngine(config.DefaultConfig())

	cases := []struct {
		name     string
		proposal *Proposal
		company  *persona.CompanyPersona
		contact  *persona.ContactPersona
		mult     float64
	}{
		{"nil proposal", nil, testCompany(), testContact(), 1},
		{"nil company", strongProposal(), nil, testContact(), 1},
		{"nil contact", strongProposal(), testCompany(), nil, 1},
		{"unknown product", &Proposal{ProductType: "bond"}, testCompany(), testContact(), 1},
		{"negative amount", &Proposal{ProductType: persona.ProductLoan, Amount: -1}, testCompany(), testContact(), 1},
		{"multiplier too high", strongProposal(), testCompany(), testContact(), 1.3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Evaluate(tc.proposal, tc.company, tc.contact, tc.mult)
			require.Error(t, err)
			var ierr *InputError
			assert.ErrorAs(t, err, &ierr)
		})
	}

	t.Run("negative revenue", func(t *testing.T) {
		company := testCompany()
		company.AnnualRevenue = -10
		_, err := engine.Evaluate(strongProposal(), company, testContact(), 1)
		assert.Error(t, err)
	})
}
