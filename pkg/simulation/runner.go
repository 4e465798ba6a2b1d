package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/bankops/salessim/pkg/config"
	"github.com/bankops/salessim/pkg/evaluation"
	"github.com/bankops/salessim/pkg/logging"
	"github.com/bankops/salessim/pkg/model"
	"github.com/bankops/salessim/pkg/negotiation"
	"github.com/bankops/salessim/pkg/persona"
	"github.com/bankops/salessim/pkg/situation"
	"github.com/bankops/salessim/pkg/storage"
)

// Runner owns one simulation run end to end: persona generation, assignment,
// the parallel pairing loop, and persistence.
type Runner struct {
	cfg      *config.Config
	client   *model.Client
	store    *storage.Store
	logger   *logging.Logger
	engine   *evaluation.Engine
	machine  *negotiation.StateMachine
	updater  *situation.Updater
	analyzer *InterestAnalyzer
}

// NewRunner wires the engines together. store may be nil to skip persistence.
func NewRunner(
	cfg *config.Config,
	client *model.Client,
	store *storage.Store,
	logger *logging.Logger,
) *Runner {
	return &Runner{
		cfg:      cfg,
		client:   client,
		store:    store,
		logger:   logger,
		engine:   evaluation.NewEngine(cfg),
		machine:  negotiation.NewStateMachine(cfg),
		updater:  situation.NewUpdater(cfg),
		analyzer: NewInterestAnalyzer(cfg),
	}
}

// NewRunID returns a sortable run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// Run executes a full simulation and returns its result. Pairings run in
// parallel up to the configured limit; a failed pairing keeps its partial
// history and never affects the others.
func (r *Runner) Run(ctx context.Context, runID string) (*RunResult, error) {
	sim := r.cfg.Simulation
	started := time.Now().UTC()

	if err := r.createRun(ctx, runID, started); err != nil {
		return nil, err
	}

	gen := NewGenerator(r.cfg, r.client, r.logger)
	sales, err := gen.SalesPersonas(ctx, sim.NumPersonas)
	if err != nil {
		return nil, fmt.Errorf("generating sales personas: %w", err)
	}
	companies, err := gen.CompanyPersonas(ctx, sim.NumPersonas)
	if err != nil {
		return nil, fmt.Errorf("generating company personas: %w", err)
	}

	assignRNG := rand.New(rand.NewSource(sim.Seed))
	assignments := AssignCompanies(sales, companies, assignRNG)

	type pairing struct {
		id      string
		sales   *persona.SalesPersona
		company *persona.CompanyPersona
	}
	var pairings []pairing
	for _, a := range assignments {
		for _, company := range a.Companies {
			pairings = append(pairings, pairing{
				id:      uuid.NewString(),
				sales:   a.Sales,
				company: company,
			})
		}
	}

	r.logger.Info(logging.CategorySimulation, "run_started", "", map[string]any{
		"run_id":   runID,
		"pairings": len(pairings),
		"seed":     sim.Seed,
	})

	results := make([]*PairingResult, len(pairings))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sim.MaxParallelPairings)
	for i, p := range pairings {
		i, p := i, p
		g.Go(func() error {
			// Per-pairing stream keeps drift deterministic regardless of
			// scheduling order.
			rng := rand.New(rand.NewSource(sim.Seed + int64(i+1)))
			plog := r.logger.Pairing(p.id)

			res := r.runPairing(gctx, p.id, p.sales, p.company, rng, plog)

			mu.Lock()
			results[i] = res
			mu.Unlock()

			if err := r.persistPairing(gctx, runID, res); err != nil {
				plog.Warn(logging.CategoryStorage, "pairing_persist_failed", err.Error(), nil)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	finished := time.Now().UTC()
	run := &RunResult{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: finished,
		Seed:       sim.Seed,
		Model:      r.cfg.Model.Name,
		Pairings:   results,
	}

	if r.store != nil {
		if err := r.store.FinishRun(ctx, runID, finished); err != nil {
			r.logger.Warn(logging.CategoryStorage, "run_finish_failed", err.Error(), nil)
		}
	}

	r.logger.Info(logging.CategorySimulation, "run_finished", "", map[string]any{
		"run_id":   runID,
		"duration": finished.Sub(started).String(),
	})
	return run, nil
}

func (r *Runner) createRun(ctx context.Context, runID string, started time.Time) error {
	if r.store == nil {
		return nil
	}
	cfgJSON, err := json.Marshal(r.cfg)
	if err != nil {
		return fmt.Errorf("marshaling config snapshot: %w", err)
	}
	if err := r.store.CreateRun(ctx, &storage.Run{
		ID:          runID,
		StartedAt:   started,
		Seed:        r.cfg.Simulation.Seed,
		Model:       r.cfg.Model.Name,
		NumPersonas: r.cfg.Simulation.NumPersonas,
		NumVisits:   r.cfg.Simulation.NumVisits,
		ConfigJSON:  string(cfgJSON),
	}); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

func (r *Runner) persistPairing(ctx context.Context, runID string, res *PairingResult) error {
	if r.store == nil {
		return nil
	}
	salesJSON, err := json.Marshal(res.Sales)
	if err != nil {
		return fmt.Errorf("marshaling sales persona: %w", err)
	}
	companyJSON, err := json.Marshal(res.Company)
	if err != nil {
		return fmt.Errorf("marshaling company persona: %w", err)
	}
	recordJSON, err := json.Marshal(res.Record)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	matched := ""
	if res.Record.MatchedProduct != nil {
		matched = string(*res.Record.MatchedProduct)
	}
	return r.store.SavePairing(ctx, &storage.Pairing{
		ID:             res.PairingID,
		RunID:          runID,
		SalesID:        res.Sales.ID,
		SalesName:      res.Sales.Name,
		CompanyID:      res.Company.ID,
		CompanyName:    res.Company.Name,
		Status:         string(res.Record.Status),
		Stage:          string(res.Record.Stage),
		MatchedProduct: matched,
		Rounds:         res.Record.Round,
		Error:          res.Error,
		SalesJSON:      string(salesJSON),
		CompanyJSON:    string(companyJSON),
		RecordJSON:     string(recordJSON),
	})
}
