package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Search and suggest requests by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	searchQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_query_duration_seconds",
			Help:    "Time spent answering search requests, including any lazy hydration.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	indexMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_index_mutations_total",
			Help: "Incremental index mutations by kind and operation.",
		},
		[]string{"kind", "operation"},
	)
)
