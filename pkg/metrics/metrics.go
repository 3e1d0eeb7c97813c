package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kitir"

// Error kinds used for the kind label of TransportErrors.
const (
	KindTimeout = "timeout"
	KindAborted = "aborted"
	KindOther   = "other"
)

// Artifact sides used for the side label.
const (
	SideRequest  = "request"
	SideResponse = "response"
)

// Metrics holds the collectors for one or more REST clients.
type Metrics struct {
	registry *prometheus.Registry

	Transactions    *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	TransportErrors *prometheus.CounterVec
	LogFailures     *prometheus.CounterVec
	LogFiles        *prometheus.CounterVec
}

// New creates a Metrics value with a private registry.
func New() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		Transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Completed HTTP transactions",
		}, []string{"client", "method", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_duration_seconds",
			Help:      "HTTP transaction latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"client", "method"}),
		TransportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_errors_total",
			Help:      "Transport errors by kind and whether they were ignored",
		}, []string{"client", "kind", "ignored"}),
		LogFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_failures_total",
			Help:      "Transaction artifacts that could not be written",
		}, []string{"client", "side"}),
		LogFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_files_total",
			Help:      "Transaction artifacts written",
		}, []string{"client", "side"}),
	}
	r.MustRegister(m.Transactions, m.Duration, m.TransportErrors, m.LogFailures, m.LogFiles)
	return m
}

// Registry returns the registry holding all collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveTransaction records a completed call. Safe on a nil receiver.
func (m *Metrics) ObserveTransaction(client, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(client, method, strconv.Itoa(status)).Inc()
	m.Duration.WithLabelValues(client, method).Observe(elapsed.Seconds())
}

// ObserveTransportError records a transport failure. Safe on a nil receiver.
func (m *Metrics) ObserveTransportError(client, kind string, ignored bool) {
	if m == nil {
		return
	}
	m.TransportErrors.WithLabelValues(client, kind, strconv.FormatBool(ignored)).Inc()
}

// ObserveLogFile records a written artifact. Safe on a nil receiver.
func (m *Metrics) ObserveLogFile(client, side string) {
	if m == nil {
		return
	}
	m.LogFiles.WithLabelValues(client, side).Inc()
}

// ObserveLogFailure records an artifact that could not be written. Safe on a nil receiver.
func (m *Metrics) ObserveLogFailure(client, side string) {
	if m == nil {
		return
	}
	m.LogFailures.WithLabelValues(client, side).Inc()
}

// WriteTextfile writes all metrics in the Prometheus text format to path,
// suitable for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
