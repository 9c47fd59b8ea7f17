package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_assessments_total",
			Help: "Total number of credit assessments by outcome",
		},
		[]string{"outcome", "mode"},
	)

	AssessmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "credit_assessment_duration_seconds",
			Help:    "Duration of a full assessment in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RiskScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "credit_risk_score",
			Help:    "Distribution of issued risk scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	ParseFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_parse_fallbacks_total",
			Help: "Documents replaced by sample data after a parse failure",
		},
		[]string{"kind"},
	)

	SyntheticData = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_synthetic_data_total",
			Help: "Assessments that used demo data for a connected source",
		},
		[]string{"kind"},
	)

	KeyRateRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_key_rate_refresh_total",
			Help: "Key rate refresh attempts by result",
		},
		[]string{"result"},
	)
)

// Outcome labels
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
)
