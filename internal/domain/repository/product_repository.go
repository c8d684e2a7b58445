package repository

import (
	"context"

	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo de productos (DIP).
type ProductRepository interface {
	// ListActiveByHotel devuelve el catálogo activo completo del hotel.
	ListActiveByHotel(ctx context.Context, hotelID string) ([]entity.Product, error)
}
