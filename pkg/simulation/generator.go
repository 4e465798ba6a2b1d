package simulation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bankops/salessim/pkg/config"
	"github.com/bankops/salessim/pkg/logging"
	"github.com/bankops/salessim/pkg/model"
	"github.com/bankops/salessim/pkg/persona"
)

// Generator creates sales and company personas through the text model and
// normalizes the results so downstream engines never see out-of-domain values.
type Generator struct {
	cfg    *config.Config
	client *model.Client
	logger *logging.Logger
}

// NewGenerator returns a generator bound to a model client.
func NewGenerator(cfg *config.Config, client *model.Client, logger *logging.Logger) *Generator {
	return &Generator{cfg: cfg, client: client, logger: logger}
}

// SalesPersonas generates n sales representatives.
func (g *Generator) SalesPersonas(ctx context.Context, n int) ([]*persona.SalesPersona, error) {
	out := make([]*persona.SalesPersona, 0, n)
	for i := 0; i < n; i++ {
		messages := []model.Message{{
			Role:    model.RoleUser,
			Content: salesGenerationPrompt(g.cfg.Bank, i),
		}}
		p, err := model.Structured[persona.SalesPersona](ctx, g.client, messages, salesPersonaSchema)
		if err != nil {
			return nil, fmt.Errorf("generating sales persona %d: %w", i+1, err)
		}
		if err := normalizeSales(p); err != nil {
			return nil, fmt.Errorf("sales persona %d: %w", i+1, err)
		}
		g.logger.Info(logging.CategoryPersona, "sales_persona_generated", p.Name, map[string]any{
			"id":         p.ID,
			"experience": p.ExperienceLevel,
		})
		out = append(out, p)
	}
	return out, nil
}

// CompanyPersonas generates n counterparty companies.
func (g *Generator) CompanyPersonas(ctx context.Context, n int) ([]*persona.CompanyPersona, error) {
	out := make([]*persona.CompanyPersona, 0, n)
	for i := 0; i < n; i++ {
		messages := []model.Message{{
			Role:    model.RoleUser,
			Content: companyGenerationPrompt(i),
		}}
		p, err := model.Structured[persona.CompanyPersona](ctx, g.client, messages, companyPersonaSchema)
		if err != nil {
			return nil, fmt.Errorf("generating company persona %d: %w", i+1, err)
		}
		if err := normalizeCompany(p); err != nil {
			return nil, fmt.Errorf("company persona %d: %w", i+1, err)
		}
		g.logger.Info(logging.CategoryPersona, "company_persona_generated", p.Name, map[string]any{
			"id":       p.ID,
			"industry": p.Industry,
		})
		out = append(out, p)
	}
	return out, nil
}

// normalizeSales backfills the ID, clamps numeric traits, and rejects personas
// the multiplier model cannot score.
func normalizeSales(p *persona.SalesPersona) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if !p.ExperienceLevel.Valid() {
		p.ExperienceLevel = persona.ExperienceMiddle
	}
	traits := p.Traits[:0]
	for _, t := range p.Traits {
		if t.Valid() {
			traits = append(traits, t)
		}
	}
	p.Traits = traits
	p.StressTolerance = clampFraction(p.StressTolerance)
	p.Adaptability = clampFraction(p.Adaptability)
	p.ProductKnowledge = clampFraction(p.ProductKnowledge)

	// A derivation failure here means the persona is unusable, not that the
	// simulation should guess.
	if _, err := persona.DeriveMultiplier(p); err != nil {
		return err
	}
	return nil
}

// normalizeCompany backfills IDs, the interest table, and the contact person.
func normalizeCompany(p *persona.CompanyPersona) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.AnnualRevenue <= 0 {
		return fmt.Errorf("annual revenue must be positive, got %.2f", p.AnnualRevenue)
	}
	if p.EmployeeCount <= 0 {
		p.EmployeeCount = 1
	}

	traits := p.Traits[:0]
	for _, t := range p.Traits {
		if t.Valid() {
			traits = append(traits, t)
		}
	}
	p.Traits = traits
	p.RiskTolerance = clampFraction(p.RiskTolerance)
	p.FinancialLiteracy = clampFraction(p.FinancialLiteracy)

	interest := persona.DefaultInterest()
	for product, value := range p.InterestProducts {
		if product.Valid() {
			interest[product] = clampFraction(value)
		}
	}
	p.InterestProducts = interest

	if p.Contact == nil {
		p.Contact = &persona.ContactPersona{
			Name:            p.Name + " finance contact",
			Position:        "Finance Manager",
			RiskTolerance:   p.RiskTolerance,
			StressTolerance: 0.5,
			Adaptability:    0.5,
		}
	}
	contactTraits := p.Contact.Traits[:0]
	for _, t := range p.Contact.Traits {
		if t.Valid() {
			contactTraits = append(contactTraits, t)
		}
	}
	p.Contact.Traits = contactTraits
	p.Contact.RiskTolerance = clampFraction(p.Contact.RiskTolerance)
	p.Contact.FinancialLiteracy = clampFraction(p.Contact.FinancialLiteracy)
	p.Contact.StressTolerance = clampFraction(p.Contact.StressTolerance)
	p.Contact.Adaptability = clampFraction(p.Contact.Adaptability)
	return nil
}

func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
