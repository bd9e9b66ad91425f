package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		chatRequests,
		activeSessions,
		sessionsReaped,
		interactionLogFailures,
	)
}

var (
	chatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Chat endpoint requests per action and HTTP status.",
		},
		[]string{"action", "status"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_active_sessions",
			Help: "Sessions currently held in the in-process store.",
		},
	)

	sessionsReaped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_reaped_total",
			Help: "Idle sessions removed by the reaper.",
		},
	)

	interactionLogFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_interaction_log_failures_total",
			Help: "Best-effort interaction log writes that failed.",
		},
	)
)

func ObserveChatRequest(action string, status int) {
	chatRequests.WithLabelValues(norm(action), strconv.Itoa(status)).Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

func IncSessionsReaped(n int) {
	sessionsReaped.Add(float64(n))
}

func IncInteractionLogFailure() {
	interactionLogFailures.Inc()
}

func norm(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
