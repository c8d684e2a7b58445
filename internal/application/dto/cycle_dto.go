package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CycleCountRequest conteo de un producto controlado al cerrar el ciclo.
// Sin current_quantity el producto se reporta como faltante (envío incompleto).
type CycleCountRequest struct {
	ProductID           string              `json:"product_id" validate:"required"`
	CurrentQuantity     decimal.NullDecimal `json:"current_quantity"`
	GuestAttributedLoss decimal.Decimal     `json:"guest_attributed_loss"`
}

// CloseCycleRequest entrada para cerrar el ciclo de descuento del hotel.
type CloseCycleRequest struct {
	Counts []CycleCountRequest `json:"counts" validate:"required,min=1,dive"`
}

// DiscountCycleItemResponse desglose por producto de un ciclo.
type DiscountCycleItemResponse struct {
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name,omitempty"`
	PreviousCount    decimal.Decimal `json:"previous_count"`
	RestocksInPeriod decimal.Decimal `json:"restocks_in_period"`
	AttributedLoss   decimal.Decimal `json:"attributed_loss"`
	FinalCount       decimal.Decimal `json:"final_count"`
	ExpectedQuantity decimal.Decimal `json:"expected_quantity"`
	UnaccountedLoss  decimal.Decimal `json:"unaccounted_loss"`
	UnitValue        decimal.Decimal `json:"unit_value"`
	DiscountValue    decimal.Decimal `json:"discount_value"`
}

// DiscountCycleResponse ciclo cerrado.
type DiscountCycleResponse struct {
	ID                 string                      `json:"id"`
	HotelID            string                      `json:"hotel_id"`
	Sequence           int64                       `json:"sequence"`
	PreviousCycleID    string                      `json:"previous_cycle_id,omitempty"`
	ClosedAt           time.Time                   `json:"closed_at"`
	ClosedByUserID     string                      `json:"closed_by_user_id"`
	TotalDiscountValue decimal.Decimal             `json:"total_discount_value"`
	Items              []DiscountCycleItemResponse `json:"items,omitempty"`
}

// DiscountCycleListResponse página del historial de ciclos.
type DiscountCycleListResponse struct {
	Items []DiscountCycleResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
