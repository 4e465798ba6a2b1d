package simulation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bankops/salessim/pkg/evaluation"
	"github.com/bankops/salessim/pkg/negotiation"
	"github.com/bankops/salessim/pkg/persona"
)

// RoundLog is one completed email exchange with its deterministic scoring.
type RoundLog struct {
	Visit         int                   `json:"visit"`
	Round         int                   `json:"round"`
	Product       persona.ProductType   `json:"product"`
	SalesMessage  string                `json:"sales_message"`
	CustomerReply string                `json:"customer_reply"`
	InterestScore float64               `json:"interest_score"`
	InterestLevel persona.InterestLevel `json:"interest_level"`
	Result        *evaluation.Result    `json:"evaluation"`
	Stage         persona.Stage         `json:"stage"`
	Status        persona.SalesStatus   `json:"status"`
}

// PairingResult is the complete outcome of one sales/company pairing. Company
// holds the final drifted snapshot, not the generated original.
type PairingResult struct {
	PairingID string                  `json:"pairing_id"`
	Sales     *persona.SalesPersona   `json:"sales_persona"`
	Company   *persona.CompanyPersona `json:"company_persona"`
	Record    *negotiation.Record     `json:"record"`
	Rounds    []RoundLog              `json:"rounds"`
	Error     string                  `json:"error,omitempty"`
}

// RunResult is the serialized output of one full simulation run.
type RunResult struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Seed       int64            `json:"seed"`
	Model      string           `json:"model"`
	Pairings   []*PairingResult `json:"pairings"`
}

// WriteJSON writes the run result to dir as <run_id>.json and returns the path.
func (r *RunResult) WriteJSON(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, r.RunID+".json")

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling run result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run result: %w", err)
	}
	return path, nil
}
