package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LLMRequests counts completion calls by purpose and result
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notecanvas_llm_requests_total",
		Help: "Total LLM completion calls by purpose and result",
	}, []string{"purpose", "result"})

	// LLMDuration tracks completion latency
	LLMDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notecanvas_llm_request_duration_seconds",
		Help:    "LLM completion duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2min
	}, []string{"purpose"})

	// JSONRepairs counts structured calls that needed the repair prompt
	JSONRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notecanvas_llm_json_repairs_total",
		Help: "Structured completions that needed a repair attempt, by outcome",
	}, []string{"outcome"})

	// StoreMutations counts graph store mutations by operation
	StoreMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notecanvas_store_mutations_total",
		Help: "Total graph store mutations by operation",
	}, []string{"operation"})

	// PersistErrors counts failed writes by collection
	PersistErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notecanvas_persist_errors_total",
		Help: "Failed persistence writes by collection",
	}, []string{"collection"})

	// WebsocketClients is the number of connected push clients
	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notecanvas_websocket_clients",
		Help: "Connected websocket clients",
	})
)

func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
