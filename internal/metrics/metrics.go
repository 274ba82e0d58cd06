// Package metrics exposes Prometheus collectors for download activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
)

// Collector groups the download counters. A nil *Collector is valid and
// records nothing.
type Collector struct {
	fetches     *prometheus.CounterVec
	retries     prometheus.Counter
	streamBytes *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses a private registry.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Collector{
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hlsfetch_fetch_requests_total",
			Help: "Remote fetches by outcome",
		}, []string{"outcome"}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "hlsfetch_retries_total",
			Help: "Failed attempts that were retried",
		}),
		streamBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hlsfetch_stream_bytes_total",
			Help: "Bytes delivered by segment streams per track",
		}, []string{"track"}),
	}
}

// ObserveFetch counts one fetch with the given outcome.
func (c *Collector) ObserveFetch(outcome string) {
	if c == nil {
		return
	}
	c.fetches.WithLabelValues(outcome).Inc()
}

// ObserveRetry counts one retried attempt.
func (c *Collector) ObserveRetry() {
	if c == nil {
		return
	}
	c.retries.Inc()
}

// AddStreamBytes adds n streamed bytes for track ("audio", "video", "subtitle").
func (c *Collector) AddStreamBytes(track string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.streamBytes.WithLabelValues(track).Add(float64(n))
}
