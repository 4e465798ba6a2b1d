package negotiation

import (
	"github.com/bankops/salessim/pkg/persona"
)

// RoundOutcome is one round's scored result as kept in the record history.
type RoundOutcome struct {
	Round          int                  `json:"round"`
	Product        persona.ProductType  `json:"product"`
	Composite      float64              `json:"composite"`
	Classification persona.ResponseType `json:"classification"`
	Stage          persona.Stage        `json:"stage"`
}

// Record tracks one pairing's negotiation across rounds. The stage only
// advances or holds; once the status turns Success or Failed the record is
// immutable.
type Record struct {
	Stage    persona.Stage         `json:"stage"`
	Status   persona.SalesStatus   `json:"status"`
	Round    int                   `json:"round"`
	History  []RoundOutcome        `json:"history"`
	Proposed []persona.ProductType `json:"proposed_products"`
	// MatchedProduct is set only at the moment Success is recorded.
	MatchedProduct *persona.ProductType `json:"matched_product,omitempty"`
}

// NewRecord starts a fresh negotiation at round zero.
func NewRecord() *Record {
	return &Record{
		Stage:  persona.StageInitial,
		Status: persona.StatusInitial,
	}
}

// Terminal reports whether the record can no longer change.
func (r *Record) Terminal() bool {
	return r.Status.Terminal()
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.History = append([]RoundOutcome(nil), r.History...)
	out.Proposed = append([]persona.ProductType(nil), r.Proposed...)
	if r.MatchedProduct != nil {
		matched := *r.MatchedProduct
		out.MatchedProduct = &matched
	}
	return &out
}

func (r *Record) hasProposed(p persona.ProductType) bool {
	for _, proposed := range r.Proposed {
		if proposed == p {
			return true
		}
	}
	return false
}

// bestProposedProduct picks the proposed product the company is most
// interested in. Ties resolve in the canonical product order so the choice is
// deterministic.
func (r *Record) bestProposedProduct(interest map[persona.ProductType]float64) persona.ProductType {
	best := persona.ProductOther
	bestScore := -1.0
	for _, p := range persona.AllProductTypes() {
		if !r.hasProposed(p) {
			continue
		}
		if score := interest[p]; score > bestScore {
			best = p
			bestScore = score
		}
	}
	return best
}

// LastOutcome returns the most recent round outcome, or nil before round one.
func (r *Record) LastOutcome() *RoundOutcome {
	if len(r.History) == 0 {
		return nil
	}
	return &r.History[len(r.History)-1]
}
