package persona

// SalesPersona describes one bank sales representative. Identity fields are
// fixed at generation time; only the numeric traits move between rounds, and
// only through the situation updater.
type SalesPersona struct {
	ID                 string          `json:"id" yaml:"id"`
	Name               string          `json:"name" yaml:"name"`
	Age                int             `json:"age" yaml:"age"`
	Area               string          `json:"area" yaml:"area"`
	ExperienceLevel    ExperienceLevel `json:"experience_level" yaml:"experience_level"`
	Traits             []SalesTrait    `json:"personality_traits" yaml:"personality_traits"`
	Achievements       []string        `json:"achievements,omitempty" yaml:"achievements,omitempty"`
	Specialties        []string        `json:"specialties,omitempty" yaml:"specialties,omitempty"`
	Characteristics    []string        `json:"characteristics,omitempty" yaml:"characteristics,omitempty"`
	CommunicationStyle string          `json:"communication_style" yaml:"communication_style"`
	StressTolerance    float64         `json:"stress_tolerance" yaml:"stress_tolerance"`
	Adaptability       float64         `json:"adaptability" yaml:"adaptability"`
	ProductKnowledge   float64         `json:"product_knowledge" yaml:"product_knowledge"`
}

// ContactPersona is the person at the counterparty company who answers the
// sales representative's mail.
type ContactPersona struct {
	Name                string         `json:"name" yaml:"name"`
	Position            string         `json:"position" yaml:"position"`
	Age                 int            `json:"age" yaml:"age"`
	YearsInCompany      int            `json:"years_in_company" yaml:"years_in_company"`
	Traits              []CompanyTrait `json:"personality_traits" yaml:"personality_traits"`
	DecisionMakingStyle string         `json:"decision_making_style" yaml:"decision_making_style"`
	RiskTolerance       float64        `json:"risk_tolerance" yaml:"risk_tolerance"`
	FinancialLiteracy   float64        `json:"financial_literacy" yaml:"financial_literacy"`
	CommunicationStyle  string         `json:"communication_style" yaml:"communication_style"`
	StressTolerance     float64        `json:"stress_tolerance" yaml:"stress_tolerance"`
	Adaptability        float64        `json:"adaptability" yaml:"adaptability"`
}

// HasTrait reports whether the contact carries the given trait.
func (c *ContactPersona) HasTrait(t CompanyTrait) bool {
	for _, trait := range c.Traits {
		if trait == t {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the contact persona.
func (c *ContactPersona) Clone() *ContactPersona {
	if c == nil {
		return nil
	}
	out := *c
	out.Traits = append([]CompanyTrait(nil), c.Traits...)
	return &out
}

// FundingNeed describes the company's current financing requirement.
type FundingNeed struct {
	Description string `json:"description" yaml:"description"`
	Urgent      bool   `json:"urgent" yaml:"urgent"`
}

// CompanyPersona describes one counterparty company, including the contact
// person the conversation runs through. Revenue is annual revenue in millions
// of yen.
type CompanyPersona struct {
	ID                   string                  `json:"id" yaml:"id"`
	Name                 string                  `json:"name" yaml:"name"`
	Location             string                  `json:"location" yaml:"location"`
	Industry             string                  `json:"industry" yaml:"industry"`
	BusinessDescription  string                  `json:"business_description" yaml:"business_description"`
	EmployeeCount        int                     `json:"employee_count" yaml:"employee_count"`
	AnnualRevenue        float64                 `json:"annual_revenue" yaml:"annual_revenue"`
	FundingNeed          FundingNeed             `json:"funding_need" yaml:"funding_need"`
	FuturePlans          string                  `json:"future_plans,omitempty" yaml:"future_plans,omitempty"`
	BankingRelationships string                  `json:"banking_relationships,omitempty" yaml:"banking_relationships,omitempty"`
	Traits               []CompanyTrait          `json:"personality_traits" yaml:"personality_traits"`
	DecisionMakingStyle  string                  `json:"decision_making_style" yaml:"decision_making_style"`
	RiskTolerance        float64                 `json:"risk_tolerance" yaml:"risk_tolerance"`
	FinancialLiteracy    float64                 `json:"financial_literacy" yaml:"financial_literacy"`
	InterestProducts     map[ProductType]float64 `json:"interest_products" yaml:"interest_products"`
	Contact              *ContactPersona         `json:"contact_person,omitempty" yaml:"contact_person,omitempty"`
}

// HasTrait reports whether the company carries the given trait.
func (c *CompanyPersona) HasTrait(t CompanyTrait) bool {
	for _, trait := range c.Traits {
		if trait == t {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the company persona.
func (c *CompanyPersona) Clone() *CompanyPersona {
	if c == nil {
		return nil
	}
	out := *c
	out.Traits = append([]CompanyTrait(nil), c.Traits...)
	out.InterestProducts = make(map[ProductType]float64, len(c.InterestProducts))
	for k, v := range c.InterestProducts {
		out.InterestProducts[k] = v
	}
	out.Contact = c.Contact.Clone()
	return &out
}

// DefaultInterest seeds a neutral interest table covering every product type.
func DefaultInterest() map[ProductType]float64 {
	interest := make(map[ProductType]float64, len(AllProductTypes()))
	for _, p := range AllProductTypes() {
		interest[p] = 0.5
	}
	return interest
}
