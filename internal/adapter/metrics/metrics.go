package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ViewerMetrics holds all Prometheus metrics for the log viewer.
type ViewerMetrics struct {
	DatagramsTotal  *prometheus.CounterVec
	BytesTotal      prometheus.Counter
	MalformedTotal  prometheus.Counter
	QueueDepth      prometheus.Gauge
	BufferedRecords prometheus.Gauge
	DrainedTotal    prometheus.Counter
	EvictedTotal    prometheus.Counter
	ExportsTotal    *prometheus.CounterVec
	ExportedRecords prometheus.Counter
}

// NewViewerMetrics initializes the metrics and registers them with reg.
func NewViewerMetrics(reg prometheus.Registerer) *ViewerMetrics {
	factory := promauto.With(reg)
	return &ViewerMetrics{
		DatagramsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "udp_logview",
			Subsystem: "receiver",
			Name:      "datagrams_total",
			Help:      "Total number of received datagrams by status.",
		}, []string{"status"}), // status: accepted, empty, read_error
		BytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "udp_logview",
			Subsystem: "receiver",
			Name:      "bytes_total",
			Help:      "Total number of datagram payload bytes read.",
		}),
		MalformedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "udp_logview",
			Subsystem: "receiver",
			Name:      "malformed_records_total",
			Help:      "Records whose bracketed prefix could not be fully parsed.",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "udp_logview",
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Records waiting in the handoff queue.",
		}),
		BufferedRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "udp_logview",
			Subsystem: "history",
			Name:      "records",
			Help:      "Records currently held in the history buffer.",
		}),
		DrainedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "udp_logview",
			Subsystem: "history",
			Name:      "drained_total",
			Help:      "Records moved from the handoff queue into the history buffer.",
		}),
		EvictedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "udp_logview",
			Subsystem: "history",
			Name:      "evicted_total",
			Help:      "Records removed from the history buffer by the size cap.",
		}),
		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "udp_logview",
			Subsystem: "export",
			Name:      "runs_total",
			Help:      "Export actions by sink and status.",
		}, []string{"sink", "status"}),
		ExportedRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "udp_logview",
			Subsystem: "export",
			Name:      "records_total",
			Help:      "Records written by export actions.",
		}),
	}
}
