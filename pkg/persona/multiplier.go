package persona

import "fmt"

// Base success rate before tier and trait adjustment.
const baseSuccessRate = 0.5

// MaxMultiplier caps the derived success-rate multiplier.
const MaxMultiplier = 1.2

var experienceMultipliers = map[ExperienceLevel]float64{
	ExperienceJunior:  0.7,
	ExperienceMiddle:  0.85,
	ExperienceSenior:  1.0,
	ExperienceVeteran: 1.2,
}

var traitMultipliers = map[SalesTrait]float64{
	TraitAggressive:    1.1,
	TraitCautious:      0.9,
	TraitFriendly:      1.05,
	TraitProfessional:  1.15,
	TraitInexperienced: 0.8,
	TraitKnowledgeable: 1.1,
	TraitImpatient:     0.9,
	TraitPatient:       1.05,
}

// DeriveMultiplier computes the success-rate multiplier for a sales persona
// from its experience tier and trait set, attenuated by stress tolerance,
// adaptability, and product knowledge. The result is deterministic for
// identical input and lies in [0, MaxMultiplier]. Unknown tiers or traits are
// an error, never a silent default.
func DeriveMultiplier(p *SalesPersona) (float64, error) {
	if p == nil {
		return 0, fmt.Errorf("derive multiplier: nil persona")
	}
	tier, ok := experienceMultipliers[p.ExperienceLevel]
	if !ok {
		return 0, fmt.Errorf("derive multiplier: unknown experience level %q", p.ExperienceLevel)
	}
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"stress_tolerance", p.StressTolerance},
		{"adaptability", p.Adaptability},
		{"product_knowledge", p.ProductKnowledge},
	} {
		if field.value < 0 || field.value > 1 {
			return 0, fmt.Errorf("derive multiplier: %s %.3f outside [0,1]", field.name, field.value)
		}
	}

	rate := baseSuccessRate * tier
	for _, trait := range p.Traits {
		mult, ok := traitMultipliers[trait]
		if !ok {
			return 0, fmt.Errorf("derive multiplier: unknown sales trait %q", trait)
		}
		rate *= mult
	}

	// Attenuation bottoms out at 0.3, never at zero.
	rate *= 0.3 + 0.7*p.StressTolerance
	rate *= 0.3 + 0.7*p.Adaptability
	rate *= 0.3 + 0.7*p.ProductKnowledge

	if rate < 0 {
		return 0, nil
	}
	if rate > MaxMultiplier {
		return MaxMultiplier, nil
	}
	return rate, nil
}

// ResponseStyle captures how a contact person tends to answer mail. All
// dimensions are in [0,1].
type ResponseStyle struct {
	Formality   float64 `json:"formality"`
	Detail      float64 `json:"detail"`
	Speed       float64 `json:"speed"`
	Cooperation float64 `json:"cooperation"`
}

// DeriveResponseStyle folds the contact's traits and numeric attributes into
// a response style. Deterministic; unknown traits are an error.
func DeriveResponseStyle(c *ContactPersona) (ResponseStyle, error) {
	style := ResponseStyle{Formality: 0.5, Detail: 0.5, Speed: 0.5, Cooperation: 0.5}
	if c == nil {
		return style, fmt.Errorf("derive response style: nil contact")
	}
	for _, trait := range c.Traits {
		switch trait {
		case CompanyAuthoritative:
			style.Formality += 0.2
			style.Cooperation -= 0.1
		case CompanyCooperative:
			style.Cooperation += 0.2
			style.Speed += 0.1
		case CompanySkeptical:
			style.Detail += 0.2
			style.Speed -= 0.1
		case CompanyTrusting:
			style.Cooperation += 0.2
			style.Speed += 0.1
		case CompanyDetailOriented:
			style.Detail += 0.3
			style.Speed -= 0.2
		case CompanyBigPicture:
			style.Detail -= 0.2
			style.Speed += 0.1
		case CompanyImpulsive:
			style.Speed += 0.3
			style.Detail -= 0.2
		case CompanyAnalytical:
			style.Detail += 0.3
			style.Speed -= 0.2
		case CompanyCautious:
			style.Speed -= 0.2
			style.Detail += 0.1
		default:
			return ResponseStyle{}, fmt.Errorf("derive response style: unknown company trait %q", trait)
		}
	}

	style.Formality += 0.1 * float64(c.YearsInCompany) / 10
	style.Detail += 0.2 * c.FinancialLiteracy
	style.Speed += 0.2 * c.Adaptability
	style.Cooperation += 0.2 * c.StressTolerance

	style.Formality = clamp01(style.Formality)
	style.Detail = clamp01(style.Detail)
	style.Speed = clamp01(style.Speed)
	style.Cooperation = clamp01(style.Cooperation)
	return style, nil
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
