// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CallsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_risk_calls_processed_total",
		Help: "Calls processed end-to-end, by outcome.",
	}, []string{"outcome"})

	DegradedDimensions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_risk_degraded_dimensions_total",
		Help: "Signal dimensions that fell back to their neutral default.",
	}, []string{"dimension"})

	RiskScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voice_risk_score",
		Help:    "Distribution of computed risk scores.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)
