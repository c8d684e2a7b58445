package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
)

// SectorOutflowEntry consumo de un sector ingresado a mano al momento del reporte.
type SectorOutflowEntry struct {
	ProductID string          `json:"product_id"`
	SectorID  string          `json:"sector_id"`
	Outflow   decimal.Decimal `json:"outflow"`
}

// SectorOutflowOverlay valores recalculados con la salida manual.
// Vive aparte de los campos calculados de Row, que no se tocan.
type SectorOutflowOverlay struct {
	Outflow       decimal.Decimal `json:"outflow"`
	ExpectedFinal decimal.Decimal `json:"expected_final"`
	Discrepancy   decimal.Decimal `json:"discrepancy"`
}

// ApplySectorOutflows devuelve una copia de rows con la salida manual de cada sector superpuesta.
// Entradas repetidas para la misma fila se suman; las que no corresponden a ninguna fila
// se informan como advertencia.
func ApplySectorOutflows(rows []Row, entries []SectorOutflowEntry) ([]Row, []domain.DataIntegrityWarning, error) {
	totals := make(map[stockKey]decimal.Decimal, len(entries))
	order := make([]stockKey, 0, len(entries))
	for _, e := range entries {
		if e.SectorID == "" {
			return nil, nil, &domain.ValidationError{Field: "sector_id", Message: "la salida de la bodega principal no se ingresa a mano"}
		}
		if e.Outflow.IsNegative() {
			return nil, nil, &domain.ValidationError{Field: "outflow", Message: "la salida no puede ser negativa"}
		}
		k := stockKey{e.ProductID, e.SectorID}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] = totals[k].Add(e.Outflow)
	}

	out := make([]Row, len(rows))
	copy(out, rows)
	matched := make(map[stockKey]bool, len(totals))
	for i := range out {
		r := &out[i]
		if r.Location.IsMain() {
			continue
		}
		k := stockKey{r.ProductID, r.Location.SectorID}
		outflow, ok := totals[k]
		if !ok {
			continue
		}
		matched[k] = true
		expected := r.InitialStock.Add(r.Inflow).Sub(outflow)
		r.Overlay = &SectorOutflowOverlay{
			Outflow:       outflow,
			ExpectedFinal: expected,
			Discrepancy:   r.ActualFinal.Sub(expected),
		}
	}

	var warnings []domain.DataIntegrityWarning
	for _, k := range order {
		if matched[k] {
			continue
		}
		warnings = append(warnings, domain.DataIntegrityWarning{
			Code:      domain.WarningUnknownRow,
			ProductID: k.productID,
			SectorID:  k.sectorID,
			Source:    SourceOverlay,
			Message:   "salida manual sin fila de conciliación para ese producto y sector",
		})
	}
	return out, warnings, nil
}
