package repository

import (
	"context"

	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
)

// StockCountRepository define el puerto de persistencia de conteos físicos.
// Los conteos son de solo inserción.
type StockCountRepository interface {
	// GetByID devuelve el conteo con sus ítems, o nil si no existe.
	GetByID(ctx context.Context, countID string) (*entity.StockCount, error)
	// ListFinished lista los conteos terminados del hotel, del más reciente al más antiguo,
	// sin ítems (usar GetByID para el detalle).
	// sectorID nil = todos los alcances; puntero a "" = solo conteos de todo el hotel.
	ListFinished(ctx context.Context, hotelID string, sectorID *string) ([]entity.StockCount, error)
	Create(ctx context.Context, count *entity.StockCount) error
}
