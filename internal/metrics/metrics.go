package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. Each instance carries its own
// registry so tests can construct metrics freely.
type Metrics struct {
	Registry *prometheus.Registry

	SyncRuns          prometheus.Counter
	RecordsFetched    prometheus.Counter
	NotificationsSent prometheus.Counter
	DeliveryFailures  prometheus.Counter
	LatchFailures     prometheus.Counter
	EligibleRecords   prometheus.Gauge
	RunDuration       prometheus.Histogram
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		SyncRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "purchase_relay_sync_runs_total",
			Help: "Total number of sync runs started",
		}),
		RecordsFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "purchase_relay_records_fetched_total",
			Help: "Total number of records fetched from the store",
		}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "purchase_relay_notifications_sent_total",
			Help: "Total number of notifications delivered and latched",
		}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "purchase_relay_delivery_failures_total",
			Help: "Total number of failed notification deliveries",
		}),
		LatchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "purchase_relay_latch_failures_total",
			Help: "Deliveries whose notified flag could not be set afterwards (duplicate risk)",
		}),
		EligibleRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "purchase_relay_eligible_records",
			Help: "Number of eligible records seen in the last sync run",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "purchase_relay_run_duration_seconds",
			Help:    "Time spent per sync run",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
