// Package metrics exposes Prometheus collectors for the CRM.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "charger_crm"

// Metrics groups the collectors recorded by the HTTP layer and the services
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	statusChanges   *prometheus.CounterVec
	policyDenials   *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	snapshotVersion *prometheus.GaugeVec
	adviceRequests  *prometheus.CounterVec
	backups         *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Customer status transitions by target status.",
		}, []string{"status"}),
		policyDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_denials_total",
			Help:      "Commands refused by the access policy, by capability.",
		}, []string{"capability"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_persist_failures_total",
			Help:      "Snapshot writes that failed, by collection slot.",
		}, []string{"slot"}),
		snapshotVersion: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_version",
			Help:      "In-memory version of each collection.",
		}, []string{"slot"}),
		adviceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advice_requests_total",
			Help:      "Technical advice requests by outcome.",
		}, []string{"outcome"}),
		backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Snapshot backup runs by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.requests,
		m.requestDuration,
		m.statusChanges,
		m.policyDenials,
		m.persistFailures,
		m.snapshotVersion,
		m.adviceRequests,
		m.backups,
	)
	return m
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) StatusChanged(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

func (m *Metrics) PolicyDenied(capability string) {
	if m == nil {
		return
	}
	m.policyDenials.WithLabelValues(capability).Inc()
}

func (m *Metrics) PersistFailed(slot string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(slot).Inc()
}

func (m *Metrics) CollectionVersion(slot string, version uint64) {
	if m == nil {
		return
	}
	m.snapshotVersion.WithLabelValues(slot).Set(float64(version))
}

// AdviceRequested records an advice outcome: "ok", "unavailable" or "disabled"
func (m *Metrics) AdviceRequested(outcome string) {
	if m == nil {
		return
	}
	m.adviceRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) BackupFinished(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.backups.WithLabelValues(outcome).Inc()
}
