package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		retrievedItems,
		retrievalFailures,
	)
}

var (
	retrievedItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrieval_items_total",
			Help: "Items surfaced by semantic retrieval per kind.",
		},
		[]string{"kind"},
	)

	retrievalFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrieval_failures_total",
			Help: "Retrieval calls that failed and degraded per kind.",
		},
		[]string{"kind"},
	)
)

func AddRetrievedItems(kind string, n int) {
	retrievedItems.WithLabelValues(norm(kind)).Add(float64(n))
}

func IncRetrievalFailure(kind string) {
	retrievalFailures.WithLabelValues(norm(kind)).Inc()
}
