package evaluation

import (
	"fmt"
	"time"

	"github.com/bankops/salessim/pkg/config"
	"github.com/bankops/salessim/pkg/persona"
)

// Criterion names one of the six evaluation factors.
type Criterion string

const (
	CriterionCost        Criterion = "cost"
	CriterionRisk        Criterion = "risk"
	CriterionBenefit     Criterion = "benefit"
	CriterionFeasibility Criterion = "feasibility"
	CriterionSupport     Criterion = "support"
	CriterionTrackRecord Criterion = "track_record"
)

// AllCriteria returns the six criteria in stable order.
func AllCriteria() []Criterion {
	return []Criterion{
		CriterionCost,
		CriterionRisk,
		CriterionBenefit,
		CriterionFeasibility,
		CriterionSupport,
		CriterionTrackRecord,
	}
}

// Sub-score shaping constants. Weights live in configuration; these shape the
// raw factor curves and mirror the evaluation threshold table.
const (
	costRatioVeryLow   = 0.01 // below 1% of annual revenue
	costRatioLow       = 0.05 // below 5% of annual revenue
	costBonusVeryLow   = 0.3
	costBonusLow       = 0.1
	costPenaltyHigh    = 0.2
	riskBonusNone      = 0.3
	riskBonusFew       = 0.1
	riskPenaltyPerItem = 0.1
	benefitPerItem     = 0.1
	unmetNeedPenalty   = 0.1
	feasibilityBase    = 0.7
	amountRatioHigh    = 0.5
	amountRatioMedium  = 0.3
	amountPenaltyHigh  = 0.3
	amountPenaltyMed   = 0.1
	supportDedicated   = 0.2
	supportOnline      = 0.1
	supportAroundClock = 0.1
	trackSuccessFactor = 0.3
	trackIndustryBonus = 0.2
)

// InputError reports out-of-domain input to the scoring engine. The caller
// must correct the input upstream; retrying with the same input cannot
// succeed.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("evaluation: %s: %s", e.Field, e.Reason)
}

// Concern flags a factor that scored below the configured cutoff. Severity is
// the inverse of the sub-score.
type Concern struct {
	Criterion Criterion `json:"criterion"`
	Severity  float64   `json:"severity"`
}

// Result is the immutable outcome of evaluating one proposal. Sub-scores are
// in [0,1]; Composite is the weighted sum scaled to 0-100.
type Result struct {
	Scores         map[Criterion]float64 `json:"scores"`
	Composite      float64               `json:"composite"`
	Classification persona.ResponseType  `json:"classification"`
	Concerns       []Concern             `json:"concerns,omitempty"`
	EvaluatedAt    time.Time             `json:"evaluated_at"`
}

// Engine scores proposals against company and contact context. Stateless; a
// single engine is safe to share across pairings.
type Engine struct {
	cfg *config.Config
}

// NewEngine returns an engine bound to a validated configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Evaluate scores one proposal along the six factors, blends in the sales
// persona multiplier, and classifies the composite. salesMultiplier comes
// from persona.DeriveMultiplier.
func (e *Engine) Evaluate(
	p *Proposal,
	company *persona.CompanyPersona,
	contact *persona.ContactPersona,
	salesMultiplier float64,
) (*Result, error) {
	if err := e.validateInput(p, company, contact, salesMultiplier); err != nil {
		return nil, err
	}

	scores := map[Criterion]float64{
		CriterionCost:        e.scoreCost(p, company),
		CriterionRisk:        e.scoreRisk(p, company),
		CriterionBenefit:     e.scoreBenefit(p, company),
		CriterionFeasibility: e.scoreFeasibility(p, company),
		CriterionSupport:     e.scoreSupport(p),
		CriterionTrackRecord: e.scoreTrackRecord(p, company),
	}

	// The persona multiplier biases the factors the sales side can actually
	// influence in the room; it never overrides the deterministic scoring.
	bias := e.cfg.Scoring.PersonaBiasWeight
	for _, crit := range []Criterion{CriterionBenefit, CriterionTrackRecord} {
		s := scores[crit]
		scores[crit] = clamp01((1-bias)*s + bias*s*salesMultiplier)
	}

	w := e.cfg.Scoring.Weights
	composite := 100 * (w.Cost*scores[CriterionCost] +
		w.Risk*scores[CriterionRisk] +
		w.Benefit*scores[CriterionBenefit] +
		w.Feasibility*scores[CriterionFeasibility] +
		w.Support*scores[CriterionSupport] +
		w.TrackRecord*scores[CriterionTrackRecord])

	var concerns []Concern
	for _, crit := range AllCriteria() {
		if scores[crit] < e.cfg.Scoring.ConcernCutoff {
			concerns = append(concerns, Concern{Criterion: crit, Severity: 1 - scores[crit]})
		}
	}

	return &Result{
		Scores:         scores,
		Composite:      composite,
		Classification: e.cfg.ClassifyResponse(composite),
		Concerns:       concerns,
		EvaluatedAt:    time.Now().UTC(),
	}, nil
}

func (e *Engine) validateInput(
	p *Proposal,
	company *persona.CompanyPersona,
	contact *persona.ContactPersona,
	salesMultiplier float64,
) error {
	if p == nil {
		return &InputError{"proposal", "must not be nil"}
	}
	if !p.ProductType.Valid() {
		return &InputError{"proposal.product_type", fmt.Sprintf("unknown product type %q", p.ProductType)}
	}
	if p.Amount < 0 {
		return &InputError{"proposal.amount", "must not be negative"}
	}
	if p.Cost.Total < 0 {
		return &InputError{"proposal.cost_information.total_cost", "must not be negative"}
	}
	if company == nil {
		return &InputError{"company", "must not be nil"}
	}
	if company.AnnualRevenue <= 0 {
		return &InputError{"company.annual_revenue", "must be positive"}
	}
	if company.EmployeeCount <= 0 {
		return &InputError{"company.employee_count", "must be positive"}
	}
	if company.RiskTolerance < 0 || company.RiskTolerance > 1 {
		return &InputError{"company.risk_tolerance", "must be in [0,1]"}
	}
	if company.FinancialLiteracy < 0 || company.FinancialLiteracy > 1 {
		return &InputError{"company.financial_literacy", "must be in [0,1]"}
	}
	if contact == nil {
		return &InputError{"contact", "must not be nil"}
	}
	if salesMultiplier < 0 || salesMultiplier > persona.MaxMultiplier {
		return &InputError{"sales_multiplier", fmt.Sprintf("must be in [0,%.1f]", persona.MaxMultiplier)}
	}
	return nil
}

// scoreCost penalizes proposals priced high relative to annual revenue, with
// the penalty dampened by the company's risk tolerance.
func (e *Engine) scoreCost(p *Proposal, company *persona.CompanyPersona) float64 {
	score := 0.5
	if p.Cost.Total > 0 {
		ratio := p.Cost.Total / company.AnnualRevenue
		switch {
		case ratio < costRatioVeryLow:
			score += costBonusVeryLow
		case ratio < costRatioLow:
			score += costBonusLow
		default:
			score -= costPenaltyHigh
		}
	}
	score *= 0.5 + 0.5*company.RiskTolerance
	return clamp01(score)
}

// scoreRisk counts identified risk factors, dampened by risk tolerance.
func (e *Engine) scoreRisk(p *Proposal, company *persona.CompanyPersona) float64 {
	score := 0.5
	switch n := len(p.Risks); {
	case n == 0:
		score += riskBonusNone
	case n <= 2:
		score += riskBonusFew
	default:
		score -= riskPenaltyPerItem * float64(n)
	}
	score *= 0.5 + 0.5*company.RiskTolerance
	return clamp01(score)
}

// scoreBenefit rewards enumerated concrete benefits; an urgent funding need
// with nothing offered against it reduces the score. Financial literacy
// raises how much of the benefit lands.
func (e *Engine) scoreBenefit(p *Proposal, company *persona.CompanyPersona) float64 {
	score := 0.5 + benefitPerItem*float64(len(p.Benefits))
	if company.FundingNeed.Urgent && len(p.Benefits) == 0 {
		score -= unmetNeedPenalty
	}
	score *= 0.5 + 0.5*company.FinancialLiteracy
	return clamp01(score)
}

// scoreFeasibility penalizes commitment sizes out of proportion to the
// company's scale.
func (e *Engine) scoreFeasibility(p *Proposal, company *persona.CompanyPersona) float64 {
	score := feasibilityBase
	if p.Amount > 0 {
		ratio := p.Amount / company.AnnualRevenue
		switch {
		case ratio > amountRatioHigh:
			score -= amountPenaltyHigh
		case ratio > amountRatioMedium:
			score -= amountPenaltyMed
		}
	}
	return clamp01(score)
}

// scoreSupport walks the fixed support checklist.
func (e *Engine) scoreSupport(p *Proposal) float64 {
	score := 0.5
	if p.Support.Dedicated {
		score += supportDedicated
	}
	if p.Support.Online {
		score += supportOnline
	}
	if p.Support.AroundTheClock {
		score += supportAroundClock
	}
	return clamp01(score)
}

// scoreTrackRecord rewards prior success cases, with a bonus when any case
// comes from the company's own industry.
func (e *Engine) scoreTrackRecord(p *Proposal, company *persona.CompanyPersona) float64 {
	score := 0.5
	if len(p.TrackRecord) == 0 {
		return score
	}
	successes := 0
	industryMatch := false
	for _, rec := range p.TrackRecord {
		if rec.Success {
			successes++
		}
		if rec.Industry == company.Industry {
			industryMatch = true
		}
	}
	score += trackSuccessFactor * float64(successes) / float64(len(p.TrackRecord))
	if industryMatch {
		score += trackIndustryBonus
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
