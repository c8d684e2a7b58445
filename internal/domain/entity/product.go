package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de un hotel.
// Es de solo lectura durante una conciliación; el stock no vive aquí sino en los conteos.
type Product struct {
	ID               string
	HotelID          string
	Name             string
	Category         string
	UnitValue        decimal.Decimal // valor unitario vigente (se usa al cerrar ciclos)
	IsPriority       bool            // "estrellado": solo agrupa en reportes ejecutivos
	Active           bool
	CycleTracked     bool            // participa en ciclos de descuento (ej. utensilios de cocina)
	BaselineQuantity decimal.Decimal // línea base de catálogo para el primer ciclo
	BaselineSetAt    time.Time       // momento del conteo que fijó BaselineQuantity
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
