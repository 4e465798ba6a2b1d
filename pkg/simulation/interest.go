package simulation

import (
	"strings"

	"github.com/bankops/salessim/pkg/config"
	"github.com/bankops/salessim/pkg/persona"
)

// InterestAnalyzer scores how receptive a company is to one sales message.
// The score is deterministic: base product interest plus keyword hits plus
// trait adjustments, on a 0-100 scale.
type InterestAnalyzer struct {
	cfg *config.Config
}

// NewInterestAnalyzer returns an analyzer bound to a validated configuration.
func NewInterestAnalyzer(cfg *config.Config) *InterestAnalyzer {
	return &InterestAnalyzer{cfg: cfg}
}

// Score rates one sales message pitched at the given product.
func (a *InterestAnalyzer) Score(
	message string,
	product persona.ProductType,
	company *persona.CompanyPersona,
) (float64, persona.InterestLevel) {
	score := company.InterestProducts[product] * 100

	lowered := strings.ToLower(message)
	kw := a.cfg.Keywords
	for _, word := range kw.Positive {
		score += float64(strings.Count(lowered, strings.ToLower(word))) * kw.PositiveWeight
	}
	for _, word := range kw.Negative {
		score += float64(strings.Count(lowered, strings.ToLower(word))) * kw.NegativeWeight
	}

	for trait, adjustment := range a.cfg.Thresholds.TraitAdjustments {
		if company.HasTrait(trait) {
			score += adjustment
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, a.cfg.InterestLevel(score)
}
