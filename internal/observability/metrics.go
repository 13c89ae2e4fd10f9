package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PersonMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pd",
		Name:      "person_mutations_total",
		Help:      "Person create/update/delete operations by outcome",
	}, []string{"op", "outcome"})

	FriendEdgeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pd",
		Name:      "friend_edge_ops_total",
		Help:      "Friend add/remove operations by outcome",
	}, []string{"op", "outcome"})

	SecondaryWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pd",
		Name:      "friend_secondary_write_failures_total",
		Help:      "Mirror-side friend writes that failed and left an asymmetric edge",
	}, []string{"op"})

	CascadeReferencesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pd",
		Name:      "cascade_references_removed_total",
		Help:      "Friend references scrubbed when a person was deleted",
	})

	RepairFixes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pd",
		Name:      "repair_fixes_total",
		Help:      "Friend graph repairs by kind",
	}, []string{"kind"})

	PictureOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pd",
		Name:      "picture_ops_total",
		Help:      "Picture storage operations by outcome",
	}, []string{"op", "outcome"})

	ListDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pd",
		Name:      "list_duration_seconds",
		Help:      "Duration of paginated person listings",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pd",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pd",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)

// Outcome labels an operation result for the counters above.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
