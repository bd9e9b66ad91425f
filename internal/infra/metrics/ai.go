package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		llmCallLatencyMs,
		llmFailures,
		embeddingFailures,
	)
}

var (
	llmCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_calls_latency_ms",
			Help:    "LLM call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
		},
		[]string{"provider", "success"},
	)

	llmFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_failures_total",
			Help: "Classified LLM failures per provider and cause.",
		},
		[]string{"provider", "cause"},
	)

	embeddingFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_failures_total",
			Help: "Embedding calls that failed and degraded the turn.",
		},
	)
)

func ObserveLLMCall(provider string, latencyMs int64, success bool) {
	llmCallLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncLLMFailure(provider, cause string) {
	llmFailures.WithLabelValues(norm(provider), norm(cause)).Inc()
}

func IncEmbeddingFailure() {
	embeddingFailures.Inc()
}
