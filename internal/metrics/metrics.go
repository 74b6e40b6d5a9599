package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry         *prometheus.Registry
	syncRuns         *prometheus.CounterVec // reconciliation cycles
	syncDuration     prometheus.Histogram   // time to reconcile
	providerRequests *prometheus.CounterVec // registrar api requests
	badgerRequests   *prometheus.CounterVec // badgerdb requests
	notifications    *prometheus.CounterVec // notifications created
	domainsTracked   *prometheus.GaugeVec   // known domains per provider
}

// Public interface for metrics operations
func (m *Metrics) IncSyncRun(provider string, success bool) {
	m.syncRuns.WithLabelValues(provider, boolToResult(success)).Inc()
}

func (m *Metrics) SetSyncDuration(duration time.Duration) {
	m.syncDuration.Observe(duration.Seconds())
}

func (m *Metrics) IncProviderRequest(provider, operation string, success bool) {
	if provider == "" {
		return
	}
	m.providerRequests.WithLabelValues(provider, operation, boolToResult(success)).Inc()
}

func (m *Metrics) IncBadgerRequest(operation string, success bool) {
	if !isValidOperation(operation) {
		return
	}
	m.badgerRequests.WithLabelValues(operation, boolToResult(success)).Inc()
}

func (m *Metrics) IncNotification(event string) {
	m.notifications.WithLabelValues(event).Inc()
}

func (m *Metrics) SetDomainsTracked(provider string, count int) {
	m.domainsTracked.WithLabelValues(provider).Set(float64(count))
}

// Validation helpers
func boolToResult(b bool) string {
	if b {
		return "success"
	}
	return "failure"
}

func isValidOperation(op string) bool {
	switch op {
	case "create", "read", "update", "delete":
		return true
	}
	return false
}

func New(register bool) *Metrics {
	registry := prometheus.NewRegistry()
	namespace := "domain_sync"

	m := &Metrics{
		registry: registry,

		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Total number of reconciliation cycles",
		}, []string{"provider", "status"}),

		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of reconciliation cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total registrar provider API requests",
		}, []string{"provider", "operation", "status"}),

		badgerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badgerdb_requests_total",
			Help:      "Total badgerdb requests",
		}, []string{"operation", "status"}),

		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total notifications created, by event kind",
		}, []string{"event"}),

		domainsTracked: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "domains_tracked_current",
			Help:      "Current known domains per provider",
		}, []string{"provider"}),
	}

	if register {
		registry.MustRegister(
			m.syncRuns,
			m.syncDuration,
			m.providerRequests,
			m.badgerRequests,
			m.notifications,
			m.domainsTracked,
		)
	}
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
