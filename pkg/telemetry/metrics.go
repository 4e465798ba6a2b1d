package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricEvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salessim",
		Name:      "evaluations_total",
		Help:      "Number of proposal evaluations by response classification.",
	}, []string{"classification"})
	metricCompositeScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "salessim",
		Name:      "composite_score",
		Help:      "Distribution of composite evaluation scores on the 0-100 scale.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})
	metricRoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "salessim",
		Name:      "negotiation_rounds_total",
		Help:      "Number of negotiation rounds advanced across all pairings.",
	})
	metricPairingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salessim",
		Name:      "pairings_total",
		Help:      "Number of completed pairings by final sales status.",
	}, []string{"status"})
	metricModelCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "salessim",
		Name:      "model_calls_total",
		Help:      "Number of model completion calls by outcome.",
	}, []string{"outcome"})
	metricModelCallDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "salessim",
		Name:      "model_call_duration_seconds",
		Help:      "Latency of model completion calls.",
		Buckets:   prometheus.DefBuckets,
	})
	metricUrgencyEscalations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "salessim",
		Name:      "urgency_escalations_total",
		Help:      "Number of funding need urgency escalations during drift.",
	})
)

// RecordEvaluation records one scored proposal.
func RecordEvaluation(classification string, composite float64) {
	metricEvaluationsTotal.WithLabelValues(classification).Inc()
	metricCompositeScore.Observe(composite)
}

// RecordRound records one advanced negotiation round.
func RecordRound() {
	metricRoundsTotal.Inc()
}

// RecordPairing records a pairing's final status.
func RecordPairing(status string) {
	metricPairingsTotal.WithLabelValues(status).Inc()
}

// RecordModelCall records one completion call and its latency.
func RecordModelCall(outcome string, duration time.Duration) {
	metricModelCallsTotal.WithLabelValues(outcome).Inc()
	metricModelCallDuration.Observe(duration.Seconds())
}

// RecordUrgencyEscalation records one funding urgency escalation.
func RecordUrgencyEscalation() {
	metricUrgencyEscalations.Inc()
}
