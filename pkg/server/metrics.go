package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the server-wide Prometheus instruments, registered on the
// default registry and exposed at /metrics.
var metrics = struct {
	sessionsActive prometheus.Gauge
	eventsTotal    prometheus.Counter
	patchesTotal   prometheus.Counter
	bytesSentTotal prometheus.Counter
}{
	sessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lumen",
		Subsystem: "server",
		Name:      "sessions_active",
		Help:      "Number of live WebSocket sessions.",
	}),
	eventsTotal: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lumen",
		Subsystem: "server",
		Name:      "events_total",
		Help:      "Total client events received.",
	}),
	patchesTotal: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lumen",
		Subsystem: "server",
		Name:      "patches_sent_total",
		Help:      "Total DOM patches streamed to clients.",
	}),
	bytesSentTotal: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lumen",
		Subsystem: "server",
		Name:      "bytes_sent_total",
		Help:      "Total bytes written to clients.",
	}),
}
