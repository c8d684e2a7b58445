// Package reconciliation implementa el motor de conciliación de inventario:
// stock inicial + entradas conocidas − salidas conocidas = stock esperado;
// esperado vs. contado = diferencia (faltante o sobrante sin explicar).
//
// Todo el paquete es puro: recibe datos ya cargados y no hace I/O.
package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
)

// Orígenes de una advertencia de integridad.
const (
	SourceCount    = "count"
	SourcePurchase = "purchase"
	SourceDelivery = "delivery"
	SourceTransfer = "transfer"
	SourceRestock  = "restock"
	SourceOverlay  = "overlay"
)

// Input datos ya cargados para conciliar un intervalo.
type Input struct {
	HotelID   string
	Products  []entity.Product // catálogo activo
	Sectors   []entity.Sector
	Start     *entity.StockCount
	End       *entity.StockCount
	Movements entity.Movements
}

// Row resultado por (producto, ubicación). Calculado, nunca persistido.
// Discrepancy > 0 es sobrante sin explicar; < 0 es faltante sin explicar.
type Row struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Category      string          `json:"category"`
	IsPriority    bool            `json:"is_priority"`
	Location      entity.Location `json:"location"`
	InitialStock  decimal.Decimal `json:"initial_stock"`
	Inflow        decimal.Decimal `json:"inflow"`
	Outflow       decimal.Decimal `json:"outflow"`
	ExpectedFinal decimal.Decimal `json:"expected_final"`
	ActualFinal   decimal.Decimal `json:"actual_final"`
	Discrepancy   decimal.Decimal `json:"discrepancy"`
	// OutflowPending: en sectores el consumo no se registra como movimiento;
	// lo aporta el llamador como superposición (ver ApplySectorOutflows).
	OutflowPending bool                  `json:"outflow_pending"`
	Overlay        *SectorOutflowOverlay `json:"overlay,omitempty"`
}

// EffectiveDiscrepancy devuelve la diferencia con la salida manual si existe.
func (r Row) EffectiveDiscrepancy() decimal.Decimal {
	if r.Overlay != nil {
		return r.Overlay.Discrepancy
	}
	return r.Discrepancy
}

// Result salida de Calculate.
type Result struct {
	Locations []entity.Location             `json:"locations"`
	Rows      []Row                         `json:"rows"`
	Warnings  []domain.DataIntegrityWarning `json:"warnings"`
}

type stockKey struct {
	productID string
	sectorID  string
}

// ledger acumula cantidades por (producto, ubicación) para un intervalo.
type ledger struct {
	initial map[stockKey]decimal.Decimal
	inflow  map[stockKey]decimal.Decimal
	outflow map[stockKey]decimal.Decimal
	actual  map[stockKey]decimal.Decimal
}

func newLedger() *ledger {
	return &ledger{
		initial: map[stockKey]decimal.Decimal{},
		inflow:  map[stockKey]decimal.Decimal{},
		outflow: map[stockKey]decimal.Decimal{},
		actual:  map[stockKey]decimal.Decimal{},
	}
}

func add(m map[stockKey]decimal.Decimal, k stockKey, q decimal.Decimal) {
	m[k] = m[k].Add(q)
}

// ValidateInterval verifica que dos conteos delimiten un intervalo válido para el hotel.
func ValidateInterval(hotelID string, start, end *entity.StockCount) error {
	ierr := func(reason string) error {
		e := &domain.IntervalError{HotelID: hotelID, Reason: reason}
		if start != nil {
			e.StartCountID = start.ID
		}
		if end != nil {
			e.EndCountID = end.ID
		}
		return e
	}
	if start == nil || end == nil {
		return ierr("se requieren dos conteos terminados")
	}
	if start.HotelID != hotelID || end.HotelID != hotelID {
		return ierr("el conteo no pertenece al hotel")
	}
	if start.FinishedAt.IsZero() || end.FinishedAt.IsZero() {
		return ierr("el conteo no está terminado")
	}
	if start.FinishedAt.After(end.FinishedAt) {
		return ierr("el conteo inicial es posterior al final")
	}
	if start.SectorID != end.SectorID {
		return ierr("los conteos tienen alcances distintos")
	}
	return nil
}

// Calculate concilia el intervalo (Start.FinishedAt, End.FinishedAt].
// Un par producto/ubicación ausente de un conteo vale 0, no "desconocido".
func Calculate(in Input) (*Result, error) {
	if err := ValidateInterval(in.HotelID, in.Start, in.End); err != nil {
		return nil, err
	}
	scope, err := resolveScope(in.HotelID, in.Start, in.Sectors)
	if err != nil {
		return nil, err
	}
	catalog := indexProducts(in.Products)
	from, to := in.Start.FinishedAt, in.End.FinishedAt

	l := newLedger()
	var warnings []domain.DataIntegrityWarning
	warnings = append(warnings, loadCount(l.initial, in.Start, catalog, scope)...)
	warnings = append(warnings, loadCount(l.actual, in.End, catalog, scope)...)
	warnings = append(warnings, applyMovements(l, in.HotelID, in.Movements, catalog, scope, from, to)...)

	return &Result{
		Locations: scope.locations,
		Rows:      buildRows(l, in.Products, scope),
		Warnings:  warnings,
	}, nil
}

// scope ubicaciones que cubre una conciliación.
type scope struct {
	locations []entity.Location
	bySector  map[string]entity.Location
	known     map[string]bool // todos los sectores del hotel
}

func (s scope) has(sectorID string) bool {
	_, ok := s.bySector[sectorID]
	return ok
}

func resolveScope(hotelID string, count *entity.StockCount, sectors []entity.Sector) (scope, error) {
	s := scope{bySector: map[string]entity.Location{}, known: map[string]bool{}}
	for _, sec := range sectors {
		s.known[sec.ID] = true
	}
	if count.IsHotelWide() {
		main := entity.MainLocation()
		s.locations = append(s.locations, main)
		s.bySector[main.SectorID] = main
		for _, sec := range sectors {
			loc := entity.SectorLocation(sec)
			s.locations = append(s.locations, loc)
			s.bySector[sec.ID] = loc
		}
		return s, nil
	}
	for _, sec := range sectors {
		if sec.ID == count.SectorID {
			loc := entity.SectorLocation(sec)
			s.locations = []entity.Location{loc}
			s.bySector[sec.ID] = loc
			return s, nil
		}
	}
	return s, &domain.IntervalError{
		HotelID:      hotelID,
		StartCountID: count.ID,
		Reason:       "el sector del conteo no pertenece al hotel",
	}
}

func indexProducts(products []entity.Product) map[string]entity.Product {
	m := make(map[string]entity.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

func loadCount(dst map[stockKey]decimal.Decimal, count *entity.StockCount, catalog map[string]entity.Product, sc scope) []domain.DataIntegrityWarning {
	var warnings []domain.DataIntegrityWarning
	for _, it := range count.Items {
		if _, ok := catalog[it.ProductID]; !ok {
			warnings = append(warnings, unknownProduct(it.ProductID, SourceCount, count.ID, count.FinishedAt))
			continue
		}
		if !sc.has(it.SectorID) {
			warnings = append(warnings, domain.DataIntegrityWarning{
				Code:        domain.WarningUnknownSector,
				ProductID:   it.ProductID,
				SectorID:    it.SectorID,
				Source:      SourceCount,
				ReferenceID: count.ID,
				OccurredAt:  count.FinishedAt,
				Message:     "ítem contado en una ubicación fuera del alcance del conteo",
			})
			continue
		}
		add(dst, stockKey{it.ProductID, it.SectorID}, it.Quantity)
	}
	return warnings
}

func inInterval(t, from, to time.Time) bool {
	return t.After(from) && !t.After(to)
}

func applyMovements(l *ledger, hotelID string, movs entity.Movements, catalog map[string]entity.Product, sc scope, from, to time.Time) []domain.DataIntegrityWarning {
	var warnings []domain.DataIntegrityWarning
	mainInScope := sc.has(entity.MainWarehouse)

	for _, p := range movs.Purchases {
		if !inInterval(p.OccurredAt, from, to) || !mainInScope {
			continue
		}
		if _, ok := catalog[p.ProductID]; !ok {
			warnings = append(warnings, unknownProduct(p.ProductID, SourcePurchase, p.ID, p.OccurredAt))
			continue
		}
		add(l.inflow, stockKey{p.ProductID, entity.MainWarehouse}, p.Quantity)
	}

	for _, d := range movs.Deliveries {
		if d.Status != entity.DeliveryStatusFulfilled || !inInterval(d.OccurredAt, from, to) {
			continue
		}
		productID := d.AffectedProductID()
		if _, ok := catalog[productID]; !ok {
			warnings = append(warnings, unknownProduct(productID, SourceDelivery, d.ID, d.OccurredAt))
			continue
		}
		if mainInScope {
			add(l.outflow, stockKey{productID, entity.MainWarehouse}, d.Quantity)
		}
		switch {
		case sc.has(d.SectorID):
			add(l.inflow, stockKey{productID, d.SectorID}, d.Quantity)
		case !sc.known[d.SectorID]:
			warnings = append(warnings, domain.DataIntegrityWarning{
				Code:        domain.WarningUnknownSector,
				ProductID:   productID,
				SectorID:    d.SectorID,
				Source:      SourceDelivery,
				ReferenceID: d.ID,
				OccurredAt:  d.OccurredAt,
				Message:     "entrega a un sector que no pertenece al hotel",
			})
		}
	}

	for _, t := range movs.Transfers {
		if !inInterval(t.OccurredAt, from, to) || !mainInScope {
			continue
		}
		if t.SourceHotelID != hotelID && t.DestinationHotelID != hotelID {
			continue
		}
		if _, ok := catalog[t.ProductID]; !ok {
			warnings = append(warnings, unknownProduct(t.ProductID, SourceTransfer, t.ID, t.OccurredAt))
			continue
		}
		k := stockKey{t.ProductID, entity.MainWarehouse}
		if t.SourceHotelID == hotelID {
			add(l.outflow, k, t.Quantity)
		}
		if t.DestinationHotelID == hotelID {
			add(l.inflow, k, t.Quantity)
		}
	}
	return warnings
}

func unknownProduct(productID, source, refID string, at time.Time) domain.DataIntegrityWarning {
	return domain.DataIntegrityWarning{
		Code:        domain.WarningUnknownProduct,
		ProductID:   productID,
		Source:      source,
		ReferenceID: refID,
		OccurredAt:  at,
		Message:     "el producto no está en el catálogo activo del hotel",
	}
}

// buildRows emite una fila por (producto, ubicación) con actividad o conteo distinto de cero.
func buildRows(l *ledger, products []entity.Product, sc scope) []Row {
	rows := make([]Row, 0)
	for _, loc := range sc.locations {
		for _, p := range products {
			k := stockKey{p.ID, loc.SectorID}
			initial, inflow, outflow, actual := l.initial[k], l.inflow[k], l.outflow[k], l.actual[k]
			if initial.IsZero() && inflow.IsZero() && outflow.IsZero() && actual.IsZero() {
				continue
			}
			expected := initial.Add(inflow).Sub(outflow)
			rows = append(rows, Row{
				ProductID:      p.ID,
				ProductName:    p.Name,
				Category:       p.Category,
				IsPriority:     p.IsPriority,
				Location:       loc,
				InitialStock:   initial,
				Inflow:         inflow,
				Outflow:        outflow,
				ExpectedFinal:  expected,
				ActualFinal:    actual,
				Discrepancy:    actual.Sub(expected),
				OutflowPending: !loc.IsMain(),
			})
		}
	}
	return rows
}
