package evaluation

import "github.com/bankops/salessim/pkg/persona"

// CostInfo carries the priced side of a proposal. Total is in the same unit
// as company annual revenue (millions of yen).
type CostInfo struct {
	Total        float64 `json:"total_cost"`
	PaymentTerms string  `json:"payment_terms,omitempty"`
}

// SupportDetails is the support-offer checklist evaluated by the support
// factor.
type SupportDetails struct {
	Dedicated      bool `json:"dedicated_support"`
	Online         bool `json:"online_support"`
	AroundTheClock bool `json:"around_the_clock_support"`
}

// CaseRecord is one prior engagement cited as track record.
type CaseRecord struct {
	Industry string `json:"industry"`
	Success  bool   `json:"success"`
}

// Proposal is the structured pitch extracted from one sales message. Amount
// is the principal or commitment size used for the feasibility check, in the
// same unit as company annual revenue.
type Proposal struct {
	ProductType persona.ProductType `json:"product_type"`
	Description string              `json:"description"`
	Amount      float64             `json:"amount"`
	Benefits    []string            `json:"benefits"`
	Risks       []string            `json:"risks"`
	Cost        CostInfo            `json:"cost_information"`
	Support     SupportDetails      `json:"support_details"`
	TrackRecord []CaseRecord        `json:"track_record"`
}
