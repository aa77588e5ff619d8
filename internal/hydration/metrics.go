package hydration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hydrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_hydrations_total",
			Help: "Full index hydrations by result.",
		},
		[]string{"result"},
	)

	hydrationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_hydration_duration_seconds",
			Help:    "Wall time of full index hydrations.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	skippedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_hydration_skipped_records_total",
			Help: "Source records skipped during hydration because they had no id.",
		},
		[]string{"kind"},
	)

	indexDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "search_index_documents",
			Help: "Documents in the index after the last hydration.",
		},
	)

	indexTokens = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "search_index_distinct_tokens",
			Help: "Posting buckets in the index after the last hydration.",
		},
	)
)
