package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nodeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsdk",
		Subsystem: "node_client",
		Name:      "operations_total",
		Help:      "Count of node API operations.",
	}, []string{"operation", "network", "status"})
	nodeRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "walletsdk",
		Subsystem: "node_client",
		Name:      "operation_duration_seconds",
		Help:      "Duration of node API operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "network", "status"})
)

// Node tracks metrics for calls to a ledger node.
type Node struct {
	network string
}

// NewNode constructs a metrics collector for node calls on network.
func NewNode(network string) *Node {
	if network == "" {
		network = "unknown"
	}
	return &Node{network: network}
}

// Observe records a single node call outcome and duration.
func (m Node) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	nodeRequestsTotal.WithLabelValues(operation, m.network, status).Inc()
	nodeRequestDuration.WithLabelValues(operation, m.network, status).Observe(time.Since(started).Seconds())
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
