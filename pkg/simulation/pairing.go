package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/bankops/salessim/pkg/evaluation"
	"github.com/bankops/salessim/pkg/logging"
	"github.com/bankops/salessim/pkg/model"
	"github.com/bankops/salessim/pkg/negotiation"
	"github.com/bankops/salessim/pkg/persona"
	"github.com/bankops/salessim/pkg/situation"
	"github.com/bankops/salessim/pkg/storage"
	"github.com/bankops/salessim/pkg/telemetry"
)

// runPairing drives one sales/company pairing through the full visit loop.
// The returned result always carries whatever history accumulated before any
// failure; the error is also recorded on the result so one broken pairing
// never aborts the run.
func (r *Runner) runPairing(
	ctx context.Context,
	pairingID string,
	rep *persona.SalesPersona,
	companyOrig *persona.CompanyPersona,
	rng *rand.Rand,
	plog *logging.PairingLogger,
) *PairingResult {
	// Each pairing drifts its own snapshot; a company visited by two
	// representatives evolves independently per pairing.
	company := companyOrig.Clone()
	contact := company.Contact

	result := &PairingResult{
		PairingID: pairingID,
		Sales:     rep,
		Company:   company,
		Record:    negotiation.NewRecord(),
	}

	if err := r.visitLoop(ctx, result, rep, company, contact, rng, plog); err != nil {
		result.Error = err.Error()
		plog.Error(logging.CategorySimulation, "pairing_failed", err.Error(), map[string]any{
			"sales_id":   rep.ID,
			"company_id": company.ID,
			"rounds":     result.Record.Round,
		})
	}

	result.Company = company
	telemetry.RecordPairing(string(result.Record.Status))
	return result
}

func (r *Runner) visitLoop(
	ctx context.Context,
	result *PairingResult,
	rep *persona.SalesPersona,
	company *persona.CompanyPersona,
	contact *persona.ContactPersona,
	rng *rand.Rand,
	plog *logging.PairingLogger,
) error {
	multiplier, err := persona.DeriveMultiplier(rep)
	if err != nil {
		return fmt.Errorf("deriving sales multiplier: %w", err)
	}

	sim := r.cfg.Simulation
	exchanges := sim.MaxAttemptsPerVisit
	if half := sim.TurnsPerVisit / 2; half > 0 && half < exchanges {
		exchanges = half
	}

	// Conversation history grouped by visit so the retention window can drop
	// whole visits at once.
	var history [][]model.Message

	for visit := 0; visit < sim.NumVisits && !result.Record.Terminal(); visit++ {
		if visit > 0 {
			if err := r.driftBetweenVisits(result, company, contact, rng, plog); err != nil {
				return err
			}
			// The drift returns fresh snapshots; rebind so later rounds and
			// the final result see the drifted state.
			company = result.Company
			contact = company.Contact
		}

		var visitMsgs []model.Message
		for attempt := 0; attempt < exchanges && !result.Record.Terminal(); attempt++ {
			convo := r.conversationWindow(history, visitMsgs)
			round, err := r.runRound(ctx, result, rep, company, contact, multiplier, visit, convo, plog)
			if err != nil {
				return err
			}
			visitMsgs = append(visitMsgs,
				model.Message{Role: model.RoleUser, Content: "Sales email:\n" + round.SalesMessage},
				model.Message{Role: model.RoleUser, Content: "Customer reply:\n" + round.CustomerReply},
			)
		}
		history = append(history, visitMsgs)
	}
	return nil
}

// driftBetweenVisits applies one interval of situation drift and swaps the
// drifted snapshots into the result.
func (r *Runner) driftBetweenVisits(
	result *PairingResult,
	company *persona.CompanyPersona,
	contact *persona.ContactPersona,
	rng *rand.Rand,
	plog *logging.PairingLogger,
) error {
	var last *situation.LastOutcome
	if outcome := result.Record.LastOutcome(); outcome != nil {
		last = &situation.LastOutcome{
			Product:        outcome.Product,
			Classification: outcome.Classification,
		}
	}

	update, err := r.updater.Advance(company, contact, r.cfg.Simulation.VisitIntervalDays, last, rng)
	if err != nil {
		return fmt.Errorf("updating situation: %w", err)
	}
	update.Company.Contact = update.Contact
	result.Company = update.Company

	if update.UrgencyEscalated {
		telemetry.RecordUrgencyEscalation()
	}
	plog.Info(logging.CategorySituation, "situation_updated", "", map[string]any{
		"revenue_change":    update.RevenueChange,
		"employee_change":   update.EmployeeChange,
		"urgency_escalated": update.UrgencyEscalated,
		"interest_rerolled": update.InterestRerolled,
		"large_change":      update.LargeChange,
	})
	return nil
}

// runRound executes one email exchange: sales mail, proposal extraction,
// deterministic evaluation, state machine advance, customer reply.
func (r *Runner) runRound(
	ctx context.Context,
	result *PairingResult,
	rep *persona.SalesPersona,
	company *persona.CompanyPersona,
	contact *persona.ContactPersona,
	multiplier float64,
	visit int,
	conversation []model.Message,
	plog *logging.PairingLogger,
) (*RoundLog, error) {
	mail, err := r.timedChat(ctx, append(conversation, model.Message{
		Role:    model.RoleUser,
		Content: salesMailPrompt(r.cfg.Bank, rep, company, visit, len(conversation)),
	}))
	if err != nil {
		return nil, fmt.Errorf("generating sales mail: %w", err)
	}

	proposal, err := model.Structured[evaluation.Proposal](ctx, r.client, []model.Message{
		{Role: model.RoleUser, Content: "Extract the financial proposal from this sales email:\n\n" + mail},
	}, proposalSchema)
	if err != nil {
		return nil, fmt.Errorf("extracting proposal: %w", err)
	}

	evalResult, err := r.engine.Evaluate(proposal, company, contact, multiplier)
	if err != nil {
		return nil, fmt.Errorf("evaluating proposal: %w", err)
	}
	telemetry.RecordEvaluation(string(evalResult.Classification), evalResult.Composite)

	next, err := r.machine.Advance(result.Record, evalResult, proposal.ProductType, company.InterestProducts)
	if err != nil && !errors.Is(err, negotiation.ErrTerminalRecord) {
		return nil, fmt.Errorf("advancing negotiation: %w", err)
	}
	result.Record = next
	telemetry.RecordRound()

	interestScore, interestLevel := r.analyzer.Score(mail, proposal.ProductType, company)

	reply, err := r.timedChat(ctx, append(conversation, model.Message{
		Role:    model.RoleUser,
		Content: "Sales email:\n" + mail + "\n\n" + customerReplyPrompt(company, evalResult.Classification, interestLevel),
	}))
	if err != nil {
		return nil, fmt.Errorf("generating customer reply: %w", err)
	}

	round := &RoundLog{
		Visit:         visit,
		Round:         next.Round,
		Product:       proposal.ProductType,
		SalesMessage:  mail,
		CustomerReply: reply,
		InterestScore: interestScore,
		InterestLevel: interestLevel,
		Result:        evalResult,
		Stage:         next.Stage,
		Status:        next.Status,
	}
	result.Rounds = append(result.Rounds, *round)

	if err := r.persistRound(ctx, result.PairingID, round); err != nil {
		// Persistence trouble shouldn't kill the pairing mid-conversation.
		plog.Warn(logging.CategoryStorage, "round_persist_failed", err.Error(), nil)
	}

	plog.Info(logging.CategoryNegotiation, "round_completed", "", map[string]any{
		"visit":          visit + 1,
		"round":          next.Round,
		"product":        proposal.ProductType,
		"composite":      evalResult.Composite,
		"classification": evalResult.Classification,
		"stage":          next.Stage,
		"status":         next.Status,
	})
	return round, nil
}

// conversationWindow flattens the retained visits plus the current visit's
// messages into one prompt context.
func (r *Runner) conversationWindow(history [][]model.Message, current []model.Message) []model.Message {
	retain := r.cfg.Simulation.MemoryRetentionVisits
	start := 0
	if retain > 0 && len(history) > retain {
		start = len(history) - retain
	}

	var out []model.Message
	for _, visit := range history[start:] {
		out = append(out, visit...)
	}
	return append(out, current...)
}

func (r *Runner) timedChat(ctx context.Context, messages []model.Message) (string, error) {
	start := time.Now()
	text, err := r.client.Chat(ctx, messages)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	telemetry.RecordModelCall(outcome, time.Since(start))
	return text, err
}

func (r *Runner) persistRound(ctx context.Context, pairingID string, round *RoundLog) error {
	if r.store == nil {
		return nil
	}
	scores, err := json.Marshal(round.Result.Scores)
	if err != nil {
		return fmt.Errorf("marshaling scores: %w", err)
	}
	return r.store.SaveRound(ctx, &storage.Round{
		PairingID:      pairingID,
		Round:          round.Round,
		Product:        string(round.Product),
		Composite:      round.Result.Composite,
		Classification: string(round.Result.Classification),
		Stage:          string(round.Stage),
		InterestScore:  round.InterestScore,
		InterestLevel:  string(round.InterestLevel),
		SalesMessage:   round.SalesMessage,
		CustomerReply:  round.CustomerReply,
		ScoresJSON:     string(scores),
		CreatedAt:      round.Result.EvaluatedAt,
	})
}
