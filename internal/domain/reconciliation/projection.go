package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
)

// StockLevel stock esperado derivado: último conteo + movimientos posteriores.
type StockLevel struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Location    entity.Location `json:"location"`
	LastCounted decimal.Decimal `json:"last_counted"`
	Inflow      decimal.Decimal `json:"inflow"`
	Outflow     decimal.Decimal `json:"outflow"`
	Expected    decimal.Decimal `json:"expected"`
	// OutflowPending: el consumo del sector no se conoce, Expected es un máximo.
	OutflowPending bool `json:"outflow_pending"`
}

// ProjectionInput datos para derivar el stock actual.
type ProjectionInput struct {
	HotelID   string
	Products  []entity.Product
	Sectors   []entity.Sector
	Base      *entity.StockCount
	Movements entity.Movements
	Until     time.Time
}

// Project deriva el stock actual sin leer ni escribir ningún campo mutable de "stock actual".
func Project(in ProjectionInput) ([]StockLevel, []domain.DataIntegrityWarning, error) {
	if in.Base == nil || in.Base.HotelID != in.HotelID {
		return nil, nil, &domain.IntervalError{HotelID: in.HotelID, Reason: "no hay conteo base del hotel"}
	}
	if in.Until.Before(in.Base.FinishedAt) {
		return nil, nil, &domain.IntervalError{HotelID: in.HotelID, StartCountID: in.Base.ID, Reason: "fecha de corte anterior al conteo base"}
	}
	sc, err := resolveScope(in.HotelID, in.Base, in.Sectors)
	if err != nil {
		return nil, nil, err
	}
	catalog := indexProducts(in.Products)

	l := newLedger()
	warnings := loadCount(l.initial, in.Base, catalog, sc)
	warnings = append(warnings, applyMovements(l, in.HotelID, in.Movements, catalog, sc, in.Base.FinishedAt, in.Until)...)

	levels := make([]StockLevel, 0)
	for _, r := range buildRows(l, in.Products, sc) {
		levels = append(levels, StockLevel{
			ProductID:      r.ProductID,
			ProductName:    r.ProductName,
			Location:       r.Location,
			LastCounted:    r.InitialStock,
			Inflow:         r.Inflow,
			Outflow:        r.Outflow,
			Expected:       r.ExpectedFinal,
			OutflowPending: r.OutflowPending,
		})
	}
	return levels, warnings, nil
}
