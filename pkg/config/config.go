package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bankops/salessim/pkg/persona"
)

// Weight-sum tolerance when validating scoring weights.
const weightTolerance = 1e-9

// Config is the complete, read-only simulation configuration. It is loaded
// once, validated, and passed explicitly into every core call; nothing in the
// core reads ambient state.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Model      ModelConfig      `yaml:"model"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Thresholds ThresholdConfig  `yaml:"thresholds"`
	Keywords   KeywordConfig    `yaml:"keywords"`
	Situation  SituationConfig  `yaml:"situation"`
	Bank       BankMetadata     `yaml:"bank"`
	Output     OutputConfig     `yaml:"output"`
}

// SimulationConfig sets run shape: how many personas, visits, and turns.
type SimulationConfig struct {
	NumPersonas           int   `yaml:"num_personas"`
	NumVisits             int   `yaml:"num_visits"`
	TurnsPerVisit         int   `yaml:"turns_per_visit"`
	VisitIntervalDays     int   `yaml:"visit_interval_days"`
	MaxAttemptsPerVisit   int   `yaml:"max_attempts_per_visit"`
	MemoryRetentionVisits int   `yaml:"memory_retention_visits"`
	Seed                  int64 `yaml:"seed"`
	MaxParallelPairings   int   `yaml:"max_parallel_pairings"`
}

// ModelConfig configures the external text-generation collaborator. The core
// never reads these; they pass through to the model client.
type ModelConfig struct {
	Name        string  `yaml:"name"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
}

// ScoringWeights are the six evaluation factor weights. They must sum to 1.0.
type ScoringWeights struct {
	Cost        float64 `yaml:"cost"`
	Risk        float64 `yaml:"risk"`
	Benefit     float64 `yaml:"benefit"`
	Feasibility float64 `yaml:"feasibility"`
	Support     float64 `yaml:"support"`
	TrackRecord float64 `yaml:"track_record"`
}

// Sum returns the total of all six weights.
func (w ScoringWeights) Sum() float64 {
	return w.Cost + w.Risk + w.Benefit + w.Feasibility + w.Support + w.TrackRecord
}

// ScoringConfig tunes the evaluation engine. Composite scores are on a 0-100
// scale; sub-scores and cutoffs on [0,1].
type ScoringConfig struct {
	Weights ScoringWeights `yaml:"weights"`
	// PersonaBiasWeight blends the sales persona multiplier into the benefit
	// and track-record sub-scores: s' = (1-w)*s + w*s*multiplier.
	PersonaBiasWeight float64 `yaml:"persona_bias_weight"`
	// ConcernCutoff flags any sub-score below it as a concern.
	ConcernCutoff float64 `yaml:"concern_cutoff"`
	// MinSuccessScore is the composite at or above which a round at the
	// decision-making stage closes the deal.
	MinSuccessScore float64 `yaml:"min_success_score"`
	// FailureScore is the composite at or below which the negotiation fails
	// outright, at any stage.
	FailureScore float64 `yaml:"failure_score"`
}

// ResponseThresholds is the classification ladder, read top-down.
type ResponseThresholds struct {
	Acceptance float64 `yaml:"acceptance"`
	Positive   float64 `yaml:"positive"`
	Question   float64 `yaml:"question"`
	Neutral    float64 `yaml:"neutral"`
}

// InterestThresholds bucket a 0-100 interest score into levels.
type InterestThresholds struct {
	VeryHigh float64 `yaml:"very_high"`
	High     float64 `yaml:"high"`
	Moderate float64 `yaml:"moderate"`
	Low      float64 `yaml:"low"`
}

// ThresholdConfig groups the classification tables.
type ThresholdConfig struct {
	Response ResponseThresholds `yaml:"response"`
	Interest InterestThresholds `yaml:"interest"`
	// TraitAdjustments shift the effective interest score per company trait
	// (cooperative raises it, skeptical lowers it).
	TraitAdjustments map[persona.CompanyTrait]float64 `yaml:"trait_adjustments"`
}

// KeywordConfig drives keyword-based interest analysis of message text.
type KeywordConfig struct {
	Positive       []string `yaml:"positive"`
	Negative       []string `yaml:"negative"`
	PositiveWeight float64  `yaml:"positive_weight"`
	NegativeWeight float64  `yaml:"negative_weight"`
}

// SituationConfig bounds the round-over-round drift of company and contact
// attributes. All values are fractions of the current value.
type SituationConfig struct {
	RevenueVolatility     float64 `yaml:"revenue_volatility"`
	EmployeeVolatility    float64 `yaml:"employee_volatility"`
	InterestDrift         float64 `yaml:"interest_drift"`
	StressDrift           float64 `yaml:"stress_drift"`
	AdaptabilityDrift     float64 `yaml:"adaptability_drift"`
	LargeChangeThreshold  float64 `yaml:"large_change_threshold"`
	UrgencyEscalationProb float64 `yaml:"urgency_escalation_prob"`
	OutcomeInterestShift  float64 `yaml:"outcome_interest_shift"`
	RevenueDeclineStress  float64 `yaml:"revenue_decline_stress"`
	UrgencyStress         float64 `yaml:"urgency_stress"`
	LargeChangeAdaptBonus float64 `yaml:"large_change_adapt_bonus"`
}

// BankMetadata describes the bank the sales side represents; it only feeds
// prompt text.
type BankMetadata struct {
	Name     string `yaml:"name"`
	Branch   string `yaml:"branch"`
	Location string `yaml:"location"`
	Services string `yaml:"services"`
}

// OutputConfig controls where results land.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	DBPath string `yaml:"db_path"`
	LogDir string `yaml:"log_dir"`
}

// ValidationError reports a configuration value that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			NumPersonas:           3,
			NumVisits:             3,
			TurnsPerVisit:         8,
			VisitIntervalDays:     30,
			MaxAttemptsPerVisit:   4,
			MemoryRetentionVisits: 2,
			Seed:                  1,
			MaxParallelPairings:   4,
		},
		Model: ModelConfig{
			Name:        "gpt-4.1-mini",
			Temperature: 0.7,
			MaxTokens:   3000,
			APIKeyEnv:   "OPENAI_API_KEY",
		},
		Scoring: ScoringConfig{
			Weights: ScoringWeights{
				Cost:        0.20,
				Risk:        0.20,
				Benefit:     0.20,
				Feasibility: 0.15,
				Support:     0.10,
				TrackRecord: 0.15,
			},
			PersonaBiasWeight: 0.3,
			ConcernCutoff:     0.6,
			MinSuccessScore:   70,
			FailureScore:      40,
		},
		Thresholds: ThresholdConfig{
			Response: ResponseThresholds{
				Acceptance: 80,
				Positive:   60,
				Question:   40,
				Neutral:    20,
			},
			Interest: InterestThresholds{
				VeryHigh: 80,
				High:     60,
				Moderate: 40,
				Low:      20,
			},
			TraitAdjustments: map[persona.CompanyTrait]float64{
				persona.CompanyCooperative: 5.0,
				persona.CompanySkeptical:   -5.0,
			},
		},
		Keywords: KeywordConfig{
			Positive: []string{
				"consider", "interested", "details", "proposal",
				"understood", "thank you", "looking forward", "positive",
			},
			Negative: []string{
				"no thank you", "pass", "another bank", "budget",
				"timing", "difficult", "under review", "on hold",
			},
			PositiveWeight: 5.0,
			NegativeWeight: -5.0,
		},
		Situation: SituationConfig{
			RevenueVolatility:     0.05,
			EmployeeVolatility:    0.02,
			InterestDrift:         0.10,
			StressDrift:           0.05,
			AdaptabilityDrift:     0.03,
			LargeChangeThreshold:  0.10,
			UrgencyEscalationProb: 0.15,
			OutcomeInterestShift:  0.10,
			RevenueDeclineStress:  0.10,
			UrgencyStress:         0.15,
			LargeChangeAdaptBonus: 0.05,
		},
		Bank: BankMetadata{
			Name:     "Risona Bank",
			Branch:   "Head Office Sales Department",
			Location: "Chiyoda, Tokyo",
			Services: "mortgages, investment trusts, deposit services, syndicated loans, M&A matching",
		},
		Output: OutputConfig{
			Dir:    "data/output",
			DBPath: "data/salessim.db",
			LogDir: "data/logs",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result. An empty
// path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every invariant the core depends on. It runs at load time
// so the engines can assume a well-formed configuration.
func (c *Config) Validate() error {
	if c.Simulation.NumPersonas <= 0 {
		return &ValidationError{"simulation.num_personas", "must be positive"}
	}
	if c.Simulation.NumVisits <= 0 {
		return &ValidationError{"simulation.num_visits", "must be positive"}
	}
	if c.Simulation.TurnsPerVisit <= 0 {
		return &ValidationError{"simulation.turns_per_visit", "must be positive"}
	}
	if c.Simulation.VisitIntervalDays <= 0 {
		return &ValidationError{"simulation.visit_interval_days", "must be positive"}
	}
	if c.Simulation.MaxAttemptsPerVisit <= 0 {
		return &ValidationError{"simulation.max_attempts_per_visit", "must be positive"}
	}
	if c.Simulation.MaxParallelPairings <= 0 {
		return &ValidationError{"simulation.max_parallel_pairings", "must be positive"}
	}

	w := c.Scoring.Weights
	for _, weight := range []struct {
		name  string
		value float64
	}{
		{"cost", w.Cost}, {"risk", w.Risk}, {"benefit", w.Benefit},
		{"feasibility", w.Feasibility}, {"support", w.Support}, {"track_record", w.TrackRecord},
	} {
		if weight.value < 0 {
			return &ValidationError{"scoring.weights." + weight.name, "must not be negative"}
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return &ValidationError{"scoring.weights", fmt.Sprintf("must sum to 1.0, got %.6f", w.Sum())}
	}
	if c.Scoring.PersonaBiasWeight < 0 || c.Scoring.PersonaBiasWeight > 1 {
		return &ValidationError{"scoring.persona_bias_weight", "must be in [0,1]"}
	}
	if c.Scoring.ConcernCutoff < 0 || c.Scoring.ConcernCutoff > 1 {
		return &ValidationError{"scoring.concern_cutoff", "must be in [0,1]"}
	}
	if c.Scoring.MinSuccessScore < 0 || c.Scoring.MinSuccessScore > 100 {
		return &ValidationError{"scoring.min_success_score", "must be in [0,100]"}
	}
	if c.Scoring.FailureScore < 0 || c.Scoring.FailureScore > 100 {
		return &ValidationError{"scoring.failure_score", "must be in [0,100]"}
	}
	if c.Scoring.FailureScore >= c.Scoring.MinSuccessScore {
		return &ValidationError{"scoring.failure_score", "must be below min_success_score"}
	}

	r := c.Thresholds.Response
	ladder := []struct {
		name  string
		value float64
	}{
		{"acceptance", r.Acceptance}, {"positive", r.Positive},
		{"question", r.Question}, {"neutral", r.Neutral},
	}
	for i, step := range ladder {
		if step.value < 0 || step.value > 100 {
			return &ValidationError{"thresholds.response." + step.name, "must be in [0,100]"}
		}
		if i > 0 && step.value >= ladder[i-1].value {
			return &ValidationError{"thresholds.response." + step.name, "ladder must be strictly descending"}
		}
	}

	in := c.Thresholds.Interest
	interestLadder := []struct {
		name  string
		value float64
	}{
		{"very_high", in.VeryHigh}, {"high", in.High},
		{"moderate", in.Moderate}, {"low", in.Low},
	}
	for i, step := range interestLadder {
		if step.value < 0 || step.value > 100 {
			return &ValidationError{"thresholds.interest." + step.name, "must be in [0,100]"}
		}
		if i > 0 && step.value >= interestLadder[i-1].value {
			return &ValidationError{"thresholds.interest." + step.name, "ladder must be strictly descending"}
		}
	}
	for trait := range c.Thresholds.TraitAdjustments {
		if !trait.Valid() {
			return &ValidationError{"thresholds.trait_adjustments", fmt.Sprintf("unknown trait %q", trait)}
		}
	}

	s := c.Situation
	for _, frac := range []struct {
		name  string
		value float64
	}{
		{"revenue_volatility", s.RevenueVolatility},
		{"employee_volatility", s.EmployeeVolatility},
		{"interest_drift", s.InterestDrift},
		{"stress_drift", s.StressDrift},
		{"adaptability_drift", s.AdaptabilityDrift},
		{"large_change_threshold", s.LargeChangeThreshold},
		{"urgency_escalation_prob", s.UrgencyEscalationProb},
		{"outcome_interest_shift", s.OutcomeInterestShift},
		{"revenue_decline_stress", s.RevenueDeclineStress},
		{"urgency_stress", s.UrgencyStress},
		{"large_change_adapt_bonus", s.LargeChangeAdaptBonus},
	} {
		if frac.value < 0 || frac.value > 1 {
			return &ValidationError{"situation." + frac.name, "must be in [0,1]"}
		}
	}

	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return &ValidationError{"model.temperature", "must be in [0,2]"}
	}
	if c.Model.MaxTokens <= 0 {
		return &ValidationError{"model.max_tokens", "must be positive"}
	}

	return nil
}

// InterestLevel buckets a 0-100 interest score using the configured table.
func (c *Config) InterestLevel(score float64) persona.InterestLevel {
	t := c.Thresholds.Interest
	switch {
	case score >= t.VeryHigh:
		return persona.InterestVeryHigh
	case score >= t.High:
		return persona.InterestHigh
	case score >= t.Moderate:
		return persona.InterestModerate
	case score >= t.Low:
		return persona.InterestLow
	default:
		return persona.InterestVeryLow
	}
}

// ClassifyResponse reads the response ladder top-down against a 0-100 score;
// the first threshold at or below the score wins.
func (c *Config) ClassifyResponse(score float64) persona.ResponseType {
	t := c.Thresholds.Response
	switch {
	case score >= t.Acceptance:
		return persona.ResponseAcceptance
	case score >= t.Positive:
		return persona.ResponsePositive
	case score >= t.Question:
		return persona.ResponseQuestion
	case score >= t.Neutral:
		return persona.ResponseNeutral
	default:
		return persona.ResponseRejection
	}
}
