// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess    = "success"
	OutcomeError      = "error"
	OutcomeDegenerate = "degenerate"
	OutcomeCached     = "cached"
)

var (
	GenerationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legalease_generation_attempts_total",
			Help: "Generation requests sent to the model backend",
		},
		[]string{"model", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "legalease_generation_duration_seconds",
			Help:    "Duration of one generation request",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"model"},
	)

	TranslationCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legalease_translation_calls_total",
			Help: "Translation requests by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	QueriesAnswered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "legalease_queries_answered_total",
			Help: "Questions answered end to end",
		},
	)

	VerdictWinners = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legalease_verdict_winner_total",
			Help: "Verdict winner per answered question",
		},
		[]string{"winner"},
	)

	ReliabilityScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "legalease_reliability_score",
			Help:    "Similarity between the two answers, in percent",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "legalease_active_sessions",
			Help: "Sessions currently held by the HTTP server",
		},
	)
)
