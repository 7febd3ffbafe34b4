// Package metrics exposes Prometheus metrics for the registry host.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ruteri/synbio-provenance-registry/interfaces"
	"github.com/ruteri/synbio-provenance-registry/registry"
)

// Outcome label values.
const (
	OutcomeOK              = "ok"
	OutcomeUnauthorized    = "unauthorized"
	OutcomeNotFound        = "not_found"
	OutcomeInvalidArgument = "invalid_argument"
	OutcomeError           = "error"
)

// MetricsServer owns a private Prometheus registry and the HTTP server exposing it.
// It implements interfaces.OperationObserver.
type MetricsServer struct {
	registry *prometheus.Registry
	server   *http.Server

	operations   *prometheus.CounterVec
	lastID       *prometheus.GaugeVec
	snapshots    *prometheus.CounterVec
	lastSnapshot prometheus.Gauge
}

var _ interfaces.OperationObserver = (*MetricsServer)(nil)

// New creates the metrics and, when listenAddr is not empty, an HTTP server serving them on /metrics.
func New(namespace, listenAddr string) (*MetricsServer, error) {
	m := &MetricsServer{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_operations_total",
			Help:      "State-changing registry calls by registry, operation and outcome.",
		}, []string{"registry", "operation", "outcome"}),
		lastID: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_last_allocated_id",
			Help:      "Most recently allocated record id per registry.",
		}, []string{"registry"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Snapshot store attempts by outcome.",
		}, []string{"outcome"}),
		lastSnapshot: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_last_success_timestamp_seconds",
			Help:      "Unix time of the last stored snapshot.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.operations,
		m.lastID,
		m.snapshots,
		m.lastSnapshot,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}

	if listenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		m.server = &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return m, nil
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *MetricsServer) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOperation counts the call and tracks newly allocated ids.
func (m *MetricsServer) ObserveOperation(op interfaces.Operation) {
	m.operations.WithLabelValues(string(op.Registry), op.Name, Outcome(op.Err)).Inc()

	if op.Err != nil {
		return
	}
	switch op.Name {
	case registry.OpRegisterSequence, registry.OpCreateDesign:
		if id, err := strconv.ParseUint(op.Subject, 10, 64); err == nil {
			m.lastID.WithLabelValues(string(op.Registry)).Set(float64(id))
		}
	}
}

// TrackAllocatedIDs sets the allocated id gauges from the current registry
// counters, for registries that did not start empty.
func (m *MetricsServer) TrackAllocatedIDs(regs *registry.Registries) {
	m.lastID.WithLabelValues(string(interfaces.SequenceRegistryName)).Set(float64(regs.Sequences.LastID()))
	m.lastID.WithLabelValues(string(interfaces.DesignRegistryName)).Set(float64(regs.Designs.LastID()))
}

// RecordSnapshot counts a snapshot store attempt.
func (m *MetricsServer) RecordSnapshot(err error) {
	m.snapshots.WithLabelValues(Outcome(err)).Inc()
	if err == nil {
		m.lastSnapshot.SetToCurrentTime()
	}
}

// ListenAndServe blocks serving metrics. It returns http.ErrServerClosed after Shutdown.
func (m *MetricsServer) ListenAndServe() error {
	if m.server == nil {
		return errors.New("metrics server has no listen address")
	}
	return m.server.ListenAndServe()
}

// Shutdown stops the HTTP server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

// Outcome maps an error onto an outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, interfaces.ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, interfaces.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, interfaces.ErrInvalidArgument):
		return OutcomeInvalidArgument
	default:
		return OutcomeError
	}
}
