package situation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/bankops/salessim/pkg/config"
	"github.com/bankops/salessim/pkg/persona"
)

// UpdateError reports invalid input to the situation updater: negative
// elapsed time or an attribute already outside its valid range.
type UpdateError struct {
	Field  string
	Reason string
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("situation: %s: %s", e.Field, e.Reason)
}

// LastOutcome tells the updater how the previous round went for a product, so
// interest can drift toward or away from it.
type LastOutcome struct {
	Product        persona.ProductType
	Classification persona.ResponseType
}

// Update is the result of advancing a company/contact pair by one interval.
// Company and Contact are fresh snapshots; the inputs are never mutated.
type Update struct {
	Company *persona.CompanyPersona
	Contact *persona.ContactPersona

	RevenueChange    float64
	EmployeeChange   float64
	UrgencyEscalated bool
	InterestRerolled bool
	LargeChange      bool
}

// Updater applies bounded, seedable drift to company and contact attributes
// between rounds. Stateless; randomness comes from the caller's generator so
// parallel pairings never share a stream.
type Updater struct {
	cfg *config.Config
}

// NewUpdater returns an updater bound to a validated configuration.
func NewUpdater(cfg *config.Config) *Updater {
	return &Updater{cfg: cfg}
}

// Advance drifts the company and contact forward by elapsedDays. All deltas
// are multiplicative on the current value and clamped to the attribute's
// valid range. The volatility scales with elapsed time relative to the
// configured visit interval.
func (u *Updater) Advance(
	company *persona.CompanyPersona,
	contact *persona.ContactPersona,
	elapsedDays int,
	last *LastOutcome,
	rng *rand.Rand,
) (*Update, error) {
	if err := u.validate(company, contact, elapsedDays); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, &UpdateError{"rng", "must not be nil"}
	}

	scale := float64(elapsedDays) / float64(u.cfg.Simulation.VisitIntervalDays)
	s := u.cfg.Situation

	next := company.Clone()
	nextContact := contact.Clone()
	out := &Update{Company: next, Contact: nextContact}

	volatility := u.traitVolatility(company, s.RevenueVolatility) * scale
	out.RevenueChange = uniform(rng, volatility)
	next.AnnualRevenue = company.AnnualRevenue * (1 + out.RevenueChange)

	empVolatility := u.traitVolatility(company, s.EmployeeVolatility) * scale
	out.EmployeeChange = uniform(rng, empVolatility)
	next.EmployeeCount = int(float64(company.EmployeeCount) * (1 + out.EmployeeChange))
	if next.EmployeeCount < 1 {
		next.EmployeeCount = 1
	}

	// Funding urgency escalates stochastically; an escalation always forces
	// an interest re-roll in the same call.
	if !company.FundingNeed.Urgent && rng.Float64() < s.UrgencyEscalationProb*scale {
		next.FundingNeed.Urgent = true
		out.UrgencyEscalated = true
	}

	u.driftInterest(next, company, last, out, rng)

	out.LargeChange = math.Abs(out.RevenueChange) > s.LargeChangeThreshold ||
		math.Abs(out.EmployeeChange) > s.LargeChangeThreshold

	u.driftContact(nextContact, contact, out, rng)

	return out, nil
}

func (u *Updater) validate(company *persona.CompanyPersona, contact *persona.ContactPersona, elapsedDays int) error {
	if company == nil {
		return &UpdateError{"company", "must not be nil"}
	}
	if contact == nil {
		return &UpdateError{"contact", "must not be nil"}
	}
	if elapsedDays < 0 {
		return &UpdateError{"elapsed_days", "must not be negative"}
	}
	if company.AnnualRevenue <= 0 {
		return &UpdateError{"company.annual_revenue", "must be positive"}
	}
	if company.EmployeeCount <= 0 {
		return &UpdateError{"company.employee_count", "must be positive"}
	}
	for product, interest := range company.InterestProducts {
		if interest < 0 || interest > 1 {
			return &UpdateError{
				Field:  fmt.Sprintf("company.interest_products.%s", product),
				Reason: "must be in [0,1]",
			}
		}
	}
	if contact.StressTolerance < 0 || contact.StressTolerance > 1 {
		return &UpdateError{"contact.stress_tolerance", "must be in [0,1]"}
	}
	if contact.Adaptability < 0 || contact.Adaptability > 1 {
		return &UpdateError{"contact.adaptability", "must be in [0,1]"}
	}
	return nil
}

// traitVolatility widens or narrows a base volatility per company traits.
func (u *Updater) traitVolatility(company *persona.CompanyPersona, base float64) float64 {
	v := base
	if company.HasTrait(persona.CompanyImpulsive) {
		v *= 1.5
	}
	if company.HasTrait(persona.CompanyCautious) {
		v *= 0.7
	}
	return v
}

func (u *Updater) driftInterest(
	next, company *persona.CompanyPersona,
	last *LastOutcome,
	out *Update,
	rng *rand.Rand,
) {
	s := u.cfg.Situation
	drift := s.InterestDrift
	if company.HasTrait(persona.CompanyImpulsive) {
		drift *= 1.5
	}
	if company.HasTrait(persona.CompanyCautious) {
		drift *= 0.7
	}
	if company.HasTrait(persona.CompanyAnalytical) {
		drift *= 0.8
	}

	for _, product := range persona.AllProductTypes() {
		value, ok := company.InterestProducts[product]
		if !ok {
			continue
		}
		value += uniform(rng, drift)

		if last != nil && last.Product == product {
			switch {
			case last.Classification.Favorable():
				// Pull toward full interest after a good round.
				value += s.OutcomeInterestShift * (1 - value)
			case last.Classification == persona.ResponseRejection:
				value -= s.OutcomeInterestShift * value
			}
		}
		next.InterestProducts[product] = clamp01(value)
	}

	if out.UrgencyEscalated {
		// Urgency changes what the company cares about; re-roll on top of
		// the regular drift.
		for _, product := range persona.AllProductTypes() {
			value, ok := next.InterestProducts[product]
			if !ok {
				continue
			}
			next.InterestProducts[product] = clamp01(value + uniform(rng, s.InterestDrift))
		}
		out.InterestRerolled = true
	}
}

func (u *Updater) driftContact(nextContact, contact *persona.ContactPersona, out *Update, rng *rand.Rand) {
	s := u.cfg.Situation

	stressChange := uniform(rng, s.StressDrift)
	if out.RevenueChange < 0 {
		stressChange += s.RevenueDeclineStress
	}
	if out.UrgencyEscalated {
		stressChange += s.UrgencyStress
	}
	if contact.HasTrait(persona.CompanyImpulsive) {
		stressChange *= 1.2
	}
	if contact.HasTrait(persona.CompanyCautious) {
		stressChange *= 0.8
	}
	nextContact.StressTolerance = clamp01(contact.StressTolerance - stressChange)

	adaptChange := uniform(rng, s.AdaptabilityDrift)
	if out.LargeChange {
		adaptChange += s.LargeChangeAdaptBonus
	}
	if contact.HasTrait(persona.CompanyAnalytical) {
		adaptChange *= 1.1
	}
	if contact.HasTrait(persona.CompanyImpulsive) {
		adaptChange *= 0.9
	}
	nextContact.Adaptability = clamp01(contact.Adaptability + adaptChange)
}

// uniform draws from [-bound, bound].
func uniform(rng *rand.Rand, bound float64) float64 {
	return (rng.Float64()*2 - 1) * bound
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
