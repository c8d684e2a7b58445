package metrics_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/infrastructure/metrics"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, metrics.OutcomeOK, metrics.Outcome(nil))
	assert.Equal(t, metrics.OutcomeConflict, metrics.Outcome(fmt.Errorf("cerrar: %w", domain.ErrConcurrentCloseConflict)))
	assert.Equal(t, metrics.OutcomeClientError, metrics.Outcome(&domain.IntervalError{Reason: "x"}))
	assert.Equal(t, metrics.OutcomeClientError, metrics.Outcome(domain.ErrNotFound))
	assert.Equal(t, metrics.OutcomeError, metrics.Outcome(errors.New("db caída")))
}

func TestObserve(t *testing.T) {
	m := metrics.New("test")

	m.ObserveReconcile("reconcile", nil, 20*time.Millisecond, 7, 2)
	m.ObserveReconcile("reconcile", domain.ErrInvalidInterval, time.Millisecond, 0, 0)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	m.ObserveCycleClose(domain.ErrConcurrentCloseConflict, time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.OperationsTotal.WithLabelValues("reconcile", metrics.OutcomeOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OperationsTotal.WithLabelValues("reconcile", metrics.OutcomeClientError)))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.RowsEmitted.WithLabelValues("reconcile")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.WarningsEmitted.WithLabelValues("reconcile")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OperationsTotal.WithLabelValues("close_cycle", metrics.OutcomeConflict)))
}
