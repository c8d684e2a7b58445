package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/reconciliation"
)

// SectorOutflowRequest salida de un sector ingresada a mano para el reporte.
type SectorOutflowRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	SectorID  string          `json:"sector_id" validate:"required"`
	Outflow   decimal.Decimal `json:"outflow"`
}

// ReconcileRequest entrada para conciliar dos conteos terminados.
type ReconcileRequest struct {
	StartCountID   string                 `json:"start_count_id" validate:"required"`
	EndCountID     string                 `json:"end_count_id" validate:"required"`
	SectorOutflows []SectorOutflowRequest `json:"sector_outflows" validate:"omitempty,dive"`
	GroupBy        string                 `json:"group_by" validate:"omitempty,oneof=category priority sector"`
}

// ReconcileLatestRequest concilia los dos últimos conteos de un alcance (reporte semanal).
type ReconcileLatestRequest struct {
	SectorID string `query:"sector_id"`
	GroupBy  string `query:"group_by" validate:"omitempty,oneof=category priority sector"`
}

// ReconciliationResponse resultado de una conciliación, con superposición y agrupación aplicadas.
type ReconciliationResponse struct {
	HotelID      string                        `json:"hotel_id"`
	StartCountID string                        `json:"start_count_id"`
	EndCountID   string                        `json:"end_count_id"`
	From         time.Time                     `json:"from"`
	To           time.Time                     `json:"to"`
	Locations    []entity.Location             `json:"locations"`
	Rows         []reconciliation.Row          `json:"rows"`
	Groups       []reconciliation.Group        `json:"groups,omitempty"`
	NetDelta     decimal.Decimal               `json:"net_delta"`
	Warnings     []domain.DataIntegrityWarning `json:"warnings"`
}

// CurrentStockResponse stock esperado derivado del último conteo de todo el hotel.
type CurrentStockResponse struct {
	HotelID     string                        `json:"hotel_id"`
	BaseCountID string                        `json:"base_count_id"`
	CountedAt   time.Time                     `json:"counted_at"`
	AsOf        time.Time                     `json:"as_of"`
	Levels      []reconciliation.StockLevel   `json:"levels"`
	Warnings    []domain.DataIntegrityWarning `json:"warnings"`
}
