package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the proxy's Prometheus collectors.
type Metrics struct {
	// ConnectionsTotal counts accepted client connections.
	ConnectionsTotal prometheus.Counter

	// ActiveConnections tracks connections currently being handled.
	ActiveConnections prometheus.Gauge

	// ResponsesTotal counts responses the proxy synthesizes itself
	// (tunnel confirmations and error pages), by status code.
	ResponsesTotal *prometheus.CounterVec

	// BytesRelayedTotal counts bytes moved through established sessions,
	// by direction.
	BytesRelayedTotal *prometheus.CounterVec

	// DialSeconds observes how long origin dials take.
	DialSeconds prometheus.Histogram
}

// NewMetrics registers the proxy collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConnectionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wicket",
			Subsystem: "proxy",
			Name:      "connections_total",
			Help:      "Client connections accepted.",
		}),
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "wicket",
			Subsystem: "proxy",
			Name:      "active_connections",
			Help:      "Client connections currently being handled.",
		}),
		ResponsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wicket",
			Subsystem: "proxy",
			Name:      "responses_total",
			Help:      "Responses written by the proxy itself, by status code.",
		}, []string{"code"}),
		BytesRelayedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wicket",
			Subsystem: "proxy",
			Name:      "bytes_relayed_total",
			Help:      "Bytes relayed through established sessions.",
		}, []string{"direction"}),
		DialSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wicket",
			Subsystem: "proxy",
			Name:      "dial_seconds",
			Help:      "Origin dial latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
