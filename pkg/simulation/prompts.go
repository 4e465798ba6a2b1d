package simulation

import (
	"fmt"
	"strings"

	"github.com/bankops/salessim/pkg/config"
	"github.com/bankops/salessim/pkg/persona"
)

const salesPersonaSchema = `{
  "name": "string, Japanese full name",
  "age": 32,
  "area": "string, sales territory",
  "experience_level": "one of: junior, middle, senior, veteran",
  "personality_traits": ["two or three of: aggressive, cautious, friendly, professional, inexperienced, knowledgeable, impatient, patient"],
  "achievements": ["string"],
  "specialties": ["string"],
  "characteristics": ["string"],
  "communication_style": "string",
  "stress_tolerance": 0.7,
  "adaptability": 0.6,
  "product_knowledge": 0.8
}`

const companyPersonaSchema = `{
  "name": "string, company name",
  "location": "string",
  "industry": "string",
  "business_description": "string",
  "employee_count": 120,
  "annual_revenue": 850.0,
  "funding_need": {"description": "string", "urgent": false},
  "future_plans": "string",
  "banking_relationships": "string",
  "personality_traits": ["two or three of: authoritative, cooperative, skeptical, trusting, detail_oriented, big_picture, impulsive, analytical, cautious"],
  "decision_making_style": "string",
  "risk_tolerance": 0.5,
  "financial_literacy": 0.6,
  "interest_products": {"loan": 0.6, "investment": 0.4, "deposit": 0.5, "insurance": 0.3, "other": 0.5},
  "contact_person": {
    "name": "string",
    "position": "string",
    "age": 45,
    "years_in_company": 12,
    "personality_traits": ["same trait vocabulary as the company"],
    "decision_making_style": "string",
    "risk_tolerance": 0.5,
    "financial_literacy": 0.6,
    "communication_style": "string",
    "stress_tolerance": 0.7,
    "adaptability": 0.5
  }
}`

const proposalSchema = `{
  "product_type": "one of: loan, investment, deposit, insurance, other",
  "description": "string, one-line summary of the offer",
  "amount": 100.0,
  "benefits": ["string"],
  "risks": ["string"],
  "cost_information": {"total_cost": 5.0, "payment_terms": "string"},
  "support_details": {"dedicated_support": true, "online_support": true, "around_the_clock_support": false},
  "track_record": [{"industry": "string", "success": true}]
}`

func salesGenerationPrompt(bank config.BankMetadata, index int) string {
	return fmt.Sprintf(
		"Create a fictional corporate sales representative #%d working for %s (%s, %s). "+
			"Give them a realistic background, territory, and personality. "+
			"All monetary-adjacent numeric fields are fractions in [0,1].",
		index+1, bank.Name, bank.Branch, bank.Location,
	)
}

func companyGenerationPrompt(index int) string {
	return fmt.Sprintf(
		"Create a fictional Japanese small-to-mid-size company #%d that a bank sales "+
			"representative might visit. Annual revenue is in millions of yen. "+
			"Include a contact person who handles finance. "+
			"interest_products values and all tolerance fields are fractions in [0,1].",
		index+1,
	)
}

func salesMailPrompt(
	bank config.BankMetadata,
	rep *persona.SalesPersona,
	company *persona.CompanyPersona,
	visit, turn int,
) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a %s sales representative at %s (%s).\n",
		rep.Name, rep.ExperienceLevel, bank.Name, bank.Branch)
	fmt.Fprintf(&b, "Your personality traits: %s. Communication style: %s.\n",
		joinSalesTraits(rep.Traits), rep.CommunicationStyle)
	fmt.Fprintf(&b, "Available services: %s.\n", bank.Services)
	fmt.Fprintf(&b, "You are writing to %s (%s, %s). Funding need: %s.\n",
		company.Name, company.Industry, company.Location, company.FundingNeed.Description)
	fmt.Fprintf(&b, "This is visit %d, message %d. ", visit+1, turn+1)
	b.WriteString("Write a concise business email in English proposing one concrete financial product, " +
		"including amount, costs, benefits, risks, and support. Email body only.")
	return b.String()
}

func customerReplyPrompt(
	company *persona.CompanyPersona,
	classification persona.ResponseType,
	level persona.InterestLevel,
) string {
	contact := company.Contact
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s at %s (%s).\n",
		contact.Name, contact.Position, company.Name, company.Industry)
	fmt.Fprintf(&b, "Your personality traits: %s. Decision style: %s.\n",
		joinCompanyTraits(contact.Traits), contact.DecisionMakingStyle)
	fmt.Fprintf(&b, "Your current stance toward this proposal is %q with %s interest.\n",
		classification, level)
	if style, err := persona.DeriveResponseStyle(contact); err == nil {
		fmt.Fprintf(&b, "Writing style on a 0-1 scale: formality %.1f, detail %.1f, speed %.1f, cooperation %.1f.\n",
			style.Formality, style.Detail, style.Speed, style.Cooperation)
	}
	b.WriteString("Reply to the sales email above in character, consistent with that stance. " +
		"Write a short business email in English. Email body only.")
	return b.String()
}

func joinSalesTraits(traits []persona.SalesTrait) string {
	parts := make([]string, len(traits))
	for i, t := range traits {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func joinCompanyTraits(traits []persona.CompanyTrait) string {
	parts := make([]string, len(traits))
	for i, t := range traits {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
