package negotiation

import (
	"errors"

	"github.com/bankops/salessim/pkg/config"
	"github.com/bankops/salessim/pkg/evaluation"
	"github.com/bankops/salessim/pkg/persona"
)

// ErrTerminalRecord signals an attempt to advance a record whose status is
// already Success or Failed. The record returned alongside it is the terminal
// record, unchanged.
var ErrTerminalRecord = errors.New("negotiation: record is terminal")

// StateMachine owns the five-stage negotiation progression and the overall
// outcome status. Stateless; all state lives in the Record.
type StateMachine struct {
	cfg *config.Config
}

// NewStateMachine returns a machine bound to a validated configuration.
func NewStateMachine(cfg *config.Config) *StateMachine {
	return &StateMachine{cfg: cfg}
}

// Advance consumes one round's evaluation result and returns the successor
// record. The input record is never mutated. Rules:
//
//   - the stage advances exactly one step on Positive or Acceptance and holds
//     otherwise; it never regresses
//   - Failed: composite at or below the failure threshold, at any stage, or
//     the attempt budget exhausted without success
//   - Success: composite at or above min_success_score while at the
//     decision-making stage (checked after any stage advance)
//   - otherwise Pending when the composite sits between the two thresholds,
//     InProgress when it clears the success threshold early
//
// A terminal record is returned unchanged together with ErrTerminalRecord.
func (m *StateMachine) Advance(
	rec *Record,
	result *evaluation.Result,
	product persona.ProductType,
	interest map[persona.ProductType]float64,
) (*Record, error) {
	if rec == nil {
		return nil, errors.New("negotiation: nil record")
	}
	if rec.Terminal() {
		return rec, ErrTerminalRecord
	}
	if result == nil {
		return rec, errors.New("negotiation: nil evaluation result")
	}

	next := rec.Clone()
	next.Round++

	if product.Valid() && !next.hasProposed(product) {
		next.Proposed = append(next.Proposed, product)
	}

	if result.Classification.Favorable() && next.Stage != persona.StageDecisionMaking {
		stage, err := next.Stage.Next()
		if err != nil {
			return rec, err
		}
		next.Stage = stage
	}

	scoring := m.cfg.Scoring
	switch {
	case result.Composite <= scoring.FailureScore:
		next.Status = persona.StatusFailed
	case result.Composite >= scoring.MinSuccessScore && next.Stage == persona.StageDecisionMaking:
		next.Status = persona.StatusSuccess
		matched := next.bestProposedProduct(interest)
		next.MatchedProduct = &matched
	case next.Round >= m.cfg.Simulation.MaxAttemptsPerVisit*m.cfg.Simulation.NumVisits:
		// Total attempt budget exhausted without closing.
		next.Status = persona.StatusFailed
	case result.Composite >= scoring.MinSuccessScore:
		// Score clears the bar but the stage hasn't; keep working.
		next.Status = persona.StatusInProgress
	default:
		next.Status = persona.StatusPending
	}

	next.History = append(next.History, RoundOutcome{
		Round:          next.Round,
		Product:        product,
		Composite:      result.Composite,
		Classification: result.Classification,
		Stage:          next.Stage,
	})

	return next, nil
}
