package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EnrichmentOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_enrichment_outcomes_total",
			Help: "Enrichment attempts by outcome kind",
		},
		[]string{"outcome"},
	)
	EnrichmentStepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_enrichment_step_failures_total",
			Help: "Failed enrichment steps by step name",
		},
		[]string{"step"},
	)
	GeneratorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "task_generator_duration_seconds",
			Help:    "Latency of generator calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"generator", "result"},
	)
)

func init() {
	prometheus.MustRegister(EnrichmentOutcomes)
	prometheus.MustRegister(EnrichmentStepFailures)
	prometheus.MustRegister(GeneratorLatency)
}
