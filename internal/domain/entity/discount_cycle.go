package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountCycle registro histórico e inmutable de un cierre de ciclo de descuento.
// Solo se inserta; nunca se actualiza ni se elimina (es la pista de auditoría).
type DiscountCycle struct {
	ID                 string
	HotelID            string
	Sequence           int64 // correlativo por hotel, 1 para el primer ciclo
	PreviousCycleID    string
	ClosedAt           time.Time
	ClosedByUserID     string
	TotalDiscountValue decimal.Decimal
	Items              []DiscountCycleItem
}

// DiscountCycleItem desglose por producto de un ciclo cerrado.
type DiscountCycleItem struct {
	ProductID        string
	PreviousCount    decimal.Decimal
	RestocksInPeriod decimal.Decimal
	AttributedLoss   decimal.Decimal // pérdida atribuida a huéspedes (ingresada a mano)
	FinalCount       decimal.Decimal
	ExpectedQuantity decimal.Decimal
	UnaccountedLoss  decimal.Decimal // negativo = sobrante; se muestra pero no se cobra
	UnitValue        decimal.Decimal
	DiscountValue    decimal.Decimal
}

// CycleBaseline cantidades con las que arranca el próximo ciclo de un hotel.
// LastCycleID vacío = nunca se cerró un ciclo (se usa la línea base del catálogo).
type CycleBaseline struct {
	HotelID      string
	LastCycleID  string
	LastSequence int64
	LastClosedAt time.Time
	Quantities   map[string]decimal.Decimal
}
