package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	signRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsdk",
		Subsystem: "signer",
		Name:      "requests_total",
		Help:      "Count of transaction signing requests.",
	}, []string{"signer", "status"})
	signRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "walletsdk",
		Subsystem: "signer",
		Name:      "request_duration_seconds",
		Help:      "Duration of transaction signing requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"signer", "status"})
	signedInputsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "walletsdk",
		Subsystem: "signer",
		Name:      "inputs_total",
		Help:      "Count of inputs in successfully signed transactions.",
	}, []string{"signer"})
)

// Signer tracks metrics for one signer backend ("mnemonic", "remote").
type Signer struct {
	kind string
}

func NewSigner(kind string) *Signer {
	if kind == "" {
		kind = "unknown"
	}
	return &Signer{kind: kind}
}

// ObserveSign records a signing request over inputs inputs.
func (m Signer) ObserveSign(err error, inputs int, started time.Time) {
	status := statusOf(err)
	signRequestsTotal.WithLabelValues(m.kind, status).Inc()
	signRequestDuration.WithLabelValues(m.kind, status).Observe(time.Since(started).Seconds())
	if err == nil {
		signedInputsTotal.WithLabelValues(m.kind).Add(float64(inputs))
	}
}
