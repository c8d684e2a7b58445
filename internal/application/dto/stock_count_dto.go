package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CountedItemRequest cantidad contada de un producto. SectorID vacío = bodega principal
// (en un conteo de sector, vacío = el sector del conteo). Quantity es obligatoria.
type CountedItemRequest struct {
	ProductID string              `json:"product_id" validate:"required"`
	SectorID  string              `json:"sector_id"`
	Quantity  decimal.NullDecimal `json:"quantity"`
}

// CreateStockCountRequest registra un conteo físico terminado.
type CreateStockCountRequest struct {
	SectorID string               `json:"sector_id"`
	Items    []CountedItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ListStockCountsRequest filtros del listado de conteos.
// Scope: "" = todos, "hotel" = solo conteos de todo el hotel, "sector" = los del SectorID dado.
type ListStockCountsRequest struct {
	Scope    string `query:"scope" validate:"omitempty,oneof=hotel sector"`
	SectorID string `query:"sector_id" validate:"required_if=Scope sector"`
}

// CountedItemResponse ítem de un conteo.
type CountedItemResponse struct {
	ProductID string          `json:"product_id"`
	SectorID  string          `json:"sector_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// StockCountResponse conteo terminado.
type StockCountResponse struct {
	ID         string                `json:"id"`
	HotelID    string                `json:"hotel_id"`
	SectorID   string                `json:"sector_id,omitempty"`
	FinishedAt time.Time             `json:"finished_at"`
	CreatedBy  string                `json:"created_by"`
	Items      []CountedItemResponse `json:"items,omitempty"`
}
