package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// Run is one simulation run's header row.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Seed        int64
	Model       string
	NumPersonas int
	NumVisits   int
	ConfigJSON  string
}

// Pairing is the final state of one sales/company pairing.
type Pairing struct {
	ID             string
	RunID          string
	SalesID        string
	SalesName      string
	CompanyID      string
	CompanyName    string
	Status         string
	Stage          string
	MatchedProduct string
	Rounds         int
	Error          string
	SalesJSON      string
	CompanyJSON    string
	RecordJSON     string
}

// Round is one negotiation round as persisted.
type Round struct {
	PairingID      string
	Round          int
	Product        string
	Composite      float64
	Classification string
	Stage          string
	InterestScore  float64
	InterestLevel  string
	SalesMessage   string
	CustomerReply  string
	ScoresJSON     string
	CreatedAt      time.Time
}

// Store persists simulation results in SQLite.
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath, creating it and its schema as needed.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time, multiple readers with WAL.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection
func (s *Store) DB() *sql.DB {
	return s.db
}

// CreateRun inserts the run header at simulation start.
func (s *Store) CreateRun(ctx context.Context, run *Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, seed, model, num_personas, num_visits, config_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Seed, run.Model, run.NumPersonas, run.NumVisits, run.ConfigJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// FinishRun stamps the run's completion time.
func (s *Store) FinishRun(ctx context.Context, runID string, finishedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`, finishedAt, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRun fetches one run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, seed, model, num_personas, num_visits, config_json
		FROM runs WHERE id = ?`, runID)

	var run Run
	var finished sql.NullTime
	err := row.Scan(&run.ID, &run.StartedAt, &finished, &run.Seed, &run.Model,
		&run.NumPersonas, &run.NumVisits, &run.ConfigJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

// SavePairing upserts the final state of one pairing.
func (s *Store) SavePairing(ctx context.Context, p *Pairing) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pairings (id, run_id, sales_id, sales_name, company_id, company_name,
			status, stage, matched_product, rounds, error, sales_json, company_json, record_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			stage = excluded.stage,
			matched_product = excluded.matched_product,
			rounds = excluded.rounds,
			error = excluded.error,
			company_json = excluded.company_json,
			record_json = excluded.record_json`,
		p.ID, p.RunID, p.SalesID, p.SalesName, p.CompanyID, p.CompanyName,
		p.Status, p.Stage, nullable(p.MatchedProduct), p.Rounds, nullable(p.Error),
		p.SalesJSON, p.CompanyJSON, p.RecordJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save pairing: %w", err)
	}
	return nil
}

// SaveRound appends one round to a pairing's history.
func (s *Store) SaveRound(ctx context.Context, r *Round) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rounds (pairing_id, round, product, composite, classification, stage,
			interest_score, interest_level, sales_message, customer_reply, scores_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PairingID, r.Round, r.Product, r.Composite, r.Classification, r.Stage,
		r.InterestScore, r.InterestLevel, nullable(r.SalesMessage), nullable(r.CustomerReply),
		r.ScoresJSON, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}

// ListPairings returns every pairing of a run, stable by pairing ID.
func (s *Store) ListPairings(ctx context.Context, runID string) ([]*Pairing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, sales_id, sales_name, company_id, company_name,
			status, stage, matched_product, rounds, error, sales_json, company_json, record_json
		FROM pairings WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairings: %w", err)
	}
	defer rows.Close()

	var out []*Pairing
	for rows.Next() {
		var p Pairing
		var matched, pairErr sql.NullString
		if err := rows.Scan(&p.ID, &p.RunID, &p.SalesID, &p.SalesName, &p.CompanyID, &p.CompanyName,
			&p.Status, &p.Stage, &matched, &p.Rounds, &pairErr,
			&p.SalesJSON, &p.CompanyJSON, &p.RecordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan pairing: %w", err)
		}
		p.MatchedProduct = matched.String
		p.Error = pairErr.String
		out = append(out, &p)
	}
	return out, rows.Err()
}

// ListRounds returns a pairing's rounds in order.
func (s *Store) ListRounds(ctx context.Context, pairingID string) ([]*Round, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pairing_id, round, product, composite, classification, stage,
			interest_score, interest_level, sales_message, customer_reply, scores_json, created_at
		FROM rounds WHERE pairing_id = ? ORDER BY round`, pairingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	var out []*Round
	for rows.Next() {
		var r Round
		var msg, reply sql.NullString
		if err := rows.Scan(&r.PairingID, &r.Round, &r.Product, &r.Composite, &r.Classification,
			&r.Stage, &r.InterestScore, &r.InterestLevel, &msg, &reply,
			&r.ScoresJSON, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		r.SalesMessage = msg.String
		r.CustomerReply = reply.String
		out = append(out, &r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
