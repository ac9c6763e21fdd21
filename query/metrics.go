package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solcraft_queries_total",
		Help: "Query outcomes by name: cache hit, fetch-through miss, or error.",
	}, []string{"query", "outcome"})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solcraft_mutations_total",
		Help: "Mutation outcomes by name.",
	}, []string{"mutation", "outcome"})
)
