// Package cache guarda resultados de conciliación ya calculados.
// Los conteos son inmutables pero los movimientos y el catálogo no: la clave incluye la huella
// de las lecturas del intervalo, así que cualquier cambio en ellas produce otra clave.
package cache

import (
	"context"
	"time"

	"github.com/jhoicas/hotel-inventario-api/internal/domain/reconciliation"
)

// ReportCache caché de resultados de conciliación.
type ReportCache interface {
	Get(ctx context.Context, key string) (*reconciliation.Result, bool, error)
	Set(ctx context.Context, key string, value *reconciliation.Result, ttl time.Duration) error
}

// NoopReportCache nunca guarda nada.
type NoopReportCache struct{}

func NewNoopReportCache() *NoopReportCache {
	return &NoopReportCache{}
}

func (c *NoopReportCache) Get(context.Context, string) (*reconciliation.Result, bool, error) {
	return nil, false, nil
}

func (c *NoopReportCache) Set(context.Context, string, *reconciliation.Result, time.Duration) error {
	return nil
}

// ReconcileKey clave de un resultado por hotel, par de conteos y huella de catálogo y movimientos.
func ReconcileKey(hotelID, startCountID, endCountID, fingerprint string) string {
	return "hotel-inventario:reconcile:" + hotelID + ":" + startCountID + ":" + endCountID + ":" + fingerprint
}
