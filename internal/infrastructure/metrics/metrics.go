// Package metrics expone los colectores Prometheus del servicio.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
)

// Resultados posibles de una operación.
const (
	OutcomeOK          = "ok"
	OutcomeClientError = "client_error"
	OutcomeConflict    = "conflict"
	OutcomeError       = "error"
)

// Metrics colectores de conciliación, ciclos y caché, sobre un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	RowsEmitted       *prometheus.CounterVec
	WarningsEmitted   *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
}

// New crea los colectores con el namespace dado y los registra.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operaciones del motor por tipo y resultado",
		},
		[]string{"operation", "outcome"},
	)
	m.OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duración de las operaciones del motor",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)
	m.RowsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliation_rows_total",
			Help:      "Filas emitidas por conciliaciones y proyecciones",
		},
		[]string{"operation"},
	)
	m.WarningsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_integrity_warnings_total",
			Help:      "Advertencias de integridad devueltas al llamador",
		},
		[]string{"operation"},
	)
	m.CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_lookups_total",
			Help:      "Consultas a la caché de reportes",
		},
		[]string{"result"},
	)

	registry.MustRegister(
		m.OperationsTotal,
		m.OperationDuration,
		m.RowsEmitted,
		m.WarningsEmitted,
		m.CacheLookups,
	)
	return m
}

// Outcome clasifica un error para la etiqueta outcome.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrConcurrentCloseConflict):
		return OutcomeConflict
	case domain.IsClientError(err), errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrForbidden):
		return OutcomeClientError
	default:
		return OutcomeError
	}
}

// ObserveReconcile registra una conciliación o proyección.
func (m *Metrics) ObserveReconcile(operation string, err error, elapsed time.Duration, rows, warnings int) {
	m.OperationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err == nil {
		m.RowsEmitted.WithLabelValues(operation).Add(float64(rows))
		m.WarningsEmitted.WithLabelValues(operation).Add(float64(warnings))
	}
}

// CacheLookup registra un acierto o fallo de la caché de reportes.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveCycleClose registra un intento de cierre de ciclo.
func (m *Metrics) ObserveCycleClose(err error, elapsed time.Duration) {
	m.OperationsTotal.WithLabelValues("close_cycle", Outcome(err)).Inc()
	m.OperationDuration.WithLabelValues("close_cycle").Observe(elapsed.Seconds())
}

// Registry devuelve el registry para tests o exportadores adicionales.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler devuelve el handler HTTP de /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
