package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
)

// Agrupaciones de reporte disponibles.
const (
	GroupingNone     = ""
	GroupingCategory = "category"
	GroupingPriority = "priority"
	GroupingSector   = "sector"
)

// Group agrupación de filas para mostrar. NetDelta es solo presentación.
type Group struct {
	Key      string          `json:"key"`
	Label    string          `json:"label"`
	Rows     []Row           `json:"rows"`
	NetDelta decimal.Decimal `json:"net_delta"`
}

// ValidateGrouping rechaza criterios de agrupación desconocidos.
func ValidateGrouping(grouping string) error {
	switch grouping {
	case GroupingNone, GroupingCategory, GroupingPriority, GroupingSector:
		return nil
	}
	return &domain.ValidationError{Field: "group_by", Message: "agrupación desconocida: " + grouping}
}

// GroupRows agrupa filas según el criterio pedido. GroupingNone devuelve nil.
func GroupRows(rows []Row, grouping string) ([]Group, error) {
	if err := ValidateGrouping(grouping); err != nil {
		return nil, err
	}
	switch grouping {
	case GroupingNone:
		return nil, nil
	case GroupingCategory:
		return groupBy(rows, func(r Row) (string, string) { return r.Category, r.Category }), nil
	case GroupingPriority:
		return groupBy(rows, func(r Row) (string, string) {
			if r.IsPriority {
				return "starred", "Estrellados"
			}
			return "regular", "Otros"
		}), nil
	case GroupingSector:
		return groupBy(rows, func(r Row) (string, string) {
			if r.Location.IsMain() {
				return "main", r.Location.Name
			}
			return r.Location.SectorID, r.Location.Name
		}), nil
	}
	return nil, nil
}

// groupBy conserva el orden de primera aparición de cada clave.
func groupBy(rows []Row, keyOf func(Row) (key, label string)) []Group {
	idx := map[string]int{}
	groups := make([]Group, 0)
	for _, r := range rows {
		key, label := keyOf(r)
		i, ok := idx[key]
		if !ok {
			i = len(groups)
			idx[key] = i
			groups = append(groups, Group{Key: key, Label: label})
		}
		groups[i].Rows = append(groups[i].Rows, r)
		groups[i].NetDelta = groups[i].NetDelta.Add(r.EffectiveDiscrepancy())
	}
	return groups
}

// NetDelta suma las diferencias efectivas de un conjunto de filas.
func NetDelta(rows []Row) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.EffectiveDiscrepancy())
	}
	return total
}
