package repository

import (
	"context"

	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
)

// SectorRepository define el puerto de lectura de sectores de un hotel.
type SectorRepository interface {
	ListByHotel(ctx context.Context, hotelID string) ([]entity.Sector, error)
}
