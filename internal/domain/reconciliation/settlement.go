package reconciliation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
)

// moneyPlaces decimales de los valores monetarios de un ciclo.
const moneyPlaces = 2

// CycleEntry conteo enviado por producto al cerrar un ciclo.
// CurrentQuantity sin valor cuenta como producto no contado.
type CycleEntry struct {
	ProductID           string
	CurrentQuantity     decimal.NullDecimal
	GuestAttributedLoss decimal.Decimal
}

// SettlementInput datos ya cargados para liquidar un ciclo de descuento.
type SettlementInput struct {
	HotelID  string
	UserID   string
	ClosedAt time.Time
	Products []entity.Product // catálogo activo; solo cuentan los CycleTracked
	Baseline *entity.CycleBaseline
	Restocks []entity.Restock
	Entries  []CycleEntry
}

// SettleItem aplica la fórmula del ciclo a un producto:
// esperado = anterior + reposiciones; no explicado = esperado − huéspedes − actual;
// descuento = max(0, no explicado) × valor unitario.
func SettleItem(productID string, previous, restocks, guestLoss, current, unitValue decimal.Decimal) entity.DiscountCycleItem {
	expected := previous.Add(restocks)
	unaccounted := expected.Sub(guestLoss).Sub(current)
	billable := decimal.Max(decimal.Zero, unaccounted)
	return entity.DiscountCycleItem{
		ProductID:        productID,
		PreviousCount:    previous,
		RestocksInPeriod: restocks,
		AttributedLoss:   guestLoss,
		FinalCount:       current,
		ExpectedQuantity: expected,
		UnaccountedLoss:  unaccounted,
		UnitValue:        unitValue,
		DiscountValue:    billable.Mul(unitValue).Round(moneyPlaces),
	}
}

// Settle calcula el ciclo completo. Los sobrantes de un producto nunca compensan
// faltantes de otro. El ciclo devuelto no tiene ID ni secuencia: los asigna quien lo persiste.
func Settle(in SettlementInput) (*entity.DiscountCycle, error) {
	tracked := make([]entity.Product, 0, len(in.Products))
	trackedByID := make(map[string]entity.Product, len(in.Products))
	for _, p := range in.Products {
		if p.Active && p.CycleTracked {
			tracked = append(tracked, p)
			trackedByID[p.ID] = p
		}
	}

	entries := make(map[string]CycleEntry, len(in.Entries))
	var missing, negatives []string
	for _, e := range in.Entries {
		if _, ok := trackedByID[e.ProductID]; !ok {
			return nil, &domain.ValidationError{Field: "product_id", Message: "producto no controlado por ciclos: " + e.ProductID}
		}
		if _, dup := entries[e.ProductID]; dup {
			return nil, &domain.ValidationError{Field: "product_id", Message: "producto repetido: " + e.ProductID}
		}
		if e.GuestAttributedLoss.IsNegative() {
			return nil, &domain.ValidationError{Field: "guest_attributed_loss", Message: "no puede ser negativa: " + e.ProductID}
		}
		switch {
		case !e.CurrentQuantity.Valid:
			missing = append(missing, e.ProductID)
		case e.CurrentQuantity.Decimal.IsNegative():
			negatives = append(negatives, e.ProductID)
		}
		entries[e.ProductID] = e
	}
	for _, p := range tracked {
		if _, ok := entries[p.ID]; !ok {
			missing = append(missing, p.ID)
		}
	}
	if len(missing) > 0 || len(negatives) > 0 {
		sort.Strings(missing)
		sort.Strings(negatives)
		return nil, &domain.IncompleteSubmissionError{MissingProductIDs: missing, NegativeProductIDs: negatives}
	}

	var since time.Time
	baseline := map[string]decimal.Decimal{}
	if in.Baseline != nil {
		since = in.Baseline.LastClosedAt
		if in.Baseline.Quantities != nil {
			baseline = in.Baseline.Quantities
		}
	}
	restocks := map[string]decimal.Decimal{}
	for _, r := range in.Restocks {
		p, ok := trackedByID[r.ProductID]
		if !ok {
			continue
		}
		from := since
		// Sin línea base encadenada el anterior sale del catálogo: las reposiciones
		// previas a esa fijación ya están incluidas en BaselineQuantity.
		if _, chained := baseline[p.ID]; !chained && p.BaselineSetAt.After(from) {
			from = p.BaselineSetAt
		}
		if !inInterval(r.OccurredAt, from, in.ClosedAt) {
			continue
		}
		restocks[r.ProductID] = restocks[r.ProductID].Add(r.Quantity)
	}

	cycle := &entity.DiscountCycle{
		HotelID:            in.HotelID,
		ClosedAt:           in.ClosedAt,
		ClosedByUserID:     in.UserID,
		TotalDiscountValue: decimal.Zero,
		Items:              make([]entity.DiscountCycleItem, 0, len(tracked)),
	}
	for _, p := range tracked {
		previous, ok := baseline[p.ID]
		if !ok {
			previous = p.BaselineQuantity
		}
		e := entries[p.ID]
		item := SettleItem(p.ID, previous, restocks[p.ID], e.GuestAttributedLoss, e.CurrentQuantity.Decimal, p.UnitValue)
		cycle.Items = append(cycle.Items, item)
		cycle.TotalDiscountValue = cycle.TotalDiscountValue.Add(item.DiscountValue)
	}
	return cycle, nil
}
