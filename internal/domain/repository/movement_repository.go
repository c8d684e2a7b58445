package repository

import (
	"context"
	"time"

	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
)

// MovementRepository proyecciones de solo lectura sobre compras, entregas, traslados y reposiciones.
// Todos los métodos usan el intervalo (from, to].
type MovementRepository interface {
	ListPurchases(ctx context.Context, hotelID string, from, to time.Time) ([]entity.Purchase, error)
	// ListFulfilledDeliveries devuelve solo requisiciones con estado fulfilled.
	ListFulfilledDeliveries(ctx context.Context, hotelID string, from, to time.Time) ([]entity.Delivery, error)
	// ListTransfers devuelve traslados donde el hotel es origen o destino.
	ListTransfers(ctx context.Context, hotelID string, from, to time.Time) ([]entity.Transfer, error)
	ListRestocks(ctx context.Context, hotelID string, from, to time.Time) ([]entity.Restock, error)
}
