package repository

import (
	"context"

	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
)

// DiscountCycleRepository define el puerto de lectura del historial de ciclos de descuento.
type DiscountCycleRepository interface {
	// GetPriorBaseline devuelve las cantidades finales del último ciclo cerrado del hotel.
	// Si nunca se cerró un ciclo devuelve una línea base vacía (LastCycleID "").
	GetPriorBaseline(ctx context.Context, hotelID string) (*entity.CycleBaseline, error)
	// ListByHotel lista los ciclos del más reciente al más antiguo, sin desglose.
	ListByHotel(ctx context.Context, hotelID string, limit, offset int) ([]entity.DiscountCycle, error)
	// GetByID devuelve el ciclo con su desglose, o nil si no existe.
	GetByID(ctx context.Context, cycleID string) (*entity.DiscountCycle, error)
}

// CycleWriter opera dentro de la transacción de cierre de un hotel.
type CycleWriter interface {
	// LockHead bloquea la cabecera de ciclos del hotel y devuelve el ID del último ciclo cerrado.
	LockHead(ctx context.Context, hotelID string) (lastCycleID string, lastSequence int64, err error)
	// Commit inserta el ciclo con su desglose y avanza la línea base de cada producto.
	Commit(ctx context.Context, cycle *entity.DiscountCycle) error
}
