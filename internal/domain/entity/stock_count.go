package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockCount es una fotografía inmutable de cantidades contadas.
// SectorID vacío = conteo de todo el hotel (bodega principal y sectores en sus ítems);
// si tiene sector, todos sus ítems pertenecen a ese sector.
// Una vez terminado nunca se modifica: las correcciones se hacen registrando otro conteo.
type StockCount struct {
	ID         string
	HotelID    string
	SectorID   string
	FinishedAt time.Time
	CreatedBy  string
	Items      []CountedItem
}

// CountedItem cantidad contada de un producto en una ubicación.
type CountedItem struct {
	ProductID string
	SectorID  string // vacío = bodega principal
	Quantity  decimal.Decimal
}

// IsHotelWide indica si el conteo cubre todas las ubicaciones del hotel.
func (c *StockCount) IsHotelWide() bool { return c.SectorID == MainWarehouse }
