package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento (proyecciones de solo lectura sobre tablas externas).
const (
	MovementPurchase = "purchase"
	MovementDelivery = "delivery"
	MovementTransfer = "transfer"
	MovementRestock  = "restock"
)

// Estados de una requisición entregada a un sector.
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusFulfilled = "fulfilled"
	DeliveryStatusCancelled = "cancelled"
)

// Purchase entrada de mercadería a la bodega principal.
type Purchase struct {
	ID         string          `db:"id"`
	HotelID    string          `db:"hotel_id"`
	ProductID  string          `db:"product_id"`
	Quantity   decimal.Decimal `db:"quantity"`
	OccurredAt time.Time       `db:"occurred_at"`
}

// Delivery salida de la bodega principal hacia un sector (requisición atendida).
// DeliveredProductID, si existe, reemplaza al solicitado como identidad afectada;
// ambos campos se conservan para auditoría.
type Delivery struct {
	ID                 string          `db:"id"`
	HotelID            string          `db:"hotel_id"`
	RequestedProductID string          `db:"requested_product_id"`
	DeliveredProductID *string         `db:"delivered_product_id"`
	Quantity           decimal.Decimal `db:"quantity"`
	SectorID           string          `db:"sector_id"`
	Status             string          `db:"status"`
	OccurredAt         time.Time       `db:"occurred_at"`
}

// AffectedProductID devuelve el producto que realmente se movió.
func (d Delivery) AffectedProductID() string {
	if d.DeliveredProductID != nil && *d.DeliveredProductID != "" {
		return *d.DeliveredProductID
	}
	return d.RequestedProductID
}

// IsSubstitution indica si la entrega se atendió con un producto distinto al solicitado.
func (d Delivery) IsSubstitution() bool {
	return d.AffectedProductID() != d.RequestedProductID
}

// Transfer traslado entre hoteles; se modela a nivel de hotel (bodega principal).
type Transfer struct {
	ID                 string          `db:"id"`
	ProductID          string          `db:"product_id"`
	Quantity           decimal.Decimal `db:"quantity"`
	SourceHotelID      string          `db:"source_hotel_id"`
	DestinationHotelID string          `db:"destination_hotel_id"`
	OccurredAt         time.Time       `db:"occurred_at"`
}

// Restock reposición valorizada de un producto controlado por ciclos de descuento.
type Restock struct {
	ID         string          `db:"id"`
	HotelID    string          `db:"hotel_id"`
	ProductID  string          `db:"product_id"`
	Quantity   decimal.Decimal `db:"quantity"`
	UnitValue  decimal.Decimal `db:"unit_value"`
	OccurredAt time.Time       `db:"occurred_at"`
}

// Movements agrupa los movimientos de un intervalo por tipo.
type Movements struct {
	Purchases  []Purchase
	Deliveries []Delivery
	Transfers  []Transfer
	Restocks   []Restock
}
