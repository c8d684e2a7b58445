package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.SectorRepository  = (*SectorRepo)(nil)
)

// ProductRepo lectura del catálogo de productos (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

type productRow struct {
	ID               string          `db:"id"`
	HotelID          string          `db:"hotel_id"`
	Name             string          `db:"name"`
	Category         string          `db:"category"`
	UnitValue        decimal.Decimal `db:"unit_value"`
	IsPriority       bool            `db:"is_priority"`
	Active           bool            `db:"active"`
	CycleTracked     bool            `db:"cycle_tracked"`
	BaselineQuantity decimal.Decimal `db:"baseline_quantity"`
	BaselineSetAt    *time.Time      `db:"baseline_set_at"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

// ListActiveByHotel devuelve el catálogo activo del hotel ordenado por nombre.
func (r *ProductRepo) ListActiveByHotel(ctx context.Context, hotelID string) ([]entity.Product, error) {
	query, args, err := psql.
		Select("id", "hotel_id", "name", "category", "unit_value", "is_priority", "active",
			"cycle_tracked", "baseline_quantity", "baseline_set_at", "created_at", "updated_at").
		From("products").
		Where(squirrel.Eq{"hotel_id": hotelID, "active": true}).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build products query: %w", err)
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]entity.Product, 0, len(rows))
	for _, p := range rows {
		var baselineSetAt time.Time
		if p.BaselineSetAt != nil {
			baselineSetAt = p.BaselineSetAt.UTC()
		}
		out = append(out, entity.Product{
			ID:               p.ID,
			HotelID:          p.HotelID,
			Name:             p.Name,
			Category:         p.Category,
			UnitValue:        p.UnitValue,
			IsPriority:       p.IsPriority,
			Active:           p.Active,
			CycleTracked:     p.CycleTracked,
			BaselineQuantity: p.BaselineQuantity,
			BaselineSetAt:    baselineSetAt,
			CreatedAt:        p.CreatedAt,
			UpdatedAt:        p.UpdatedAt,
		})
	}
	return out, nil
}

// SectorRepo lectura de sectores del hotel.
type SectorRepo struct {
	q Querier
}

// NewSectorRepository construye el adaptador.
func NewSectorRepository(q Querier) *SectorRepo {
	return &SectorRepo{q: q}
}

type sectorRow struct {
	ID        string    `db:"id"`
	HotelID   string    `db:"hotel_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *SectorRepo) ListByHotel(ctx context.Context, hotelID string) ([]entity.Sector, error) {
	query, args, err := psql.
		Select("id", "hotel_id", "name", "created_at").
		From("sectors").
		Where(squirrel.Eq{"hotel_id": hotelID}).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sectors query: %w", err)
	}
	var rows []sectorRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	out := make([]entity.Sector, 0, len(rows))
	for _, s := range rows {
		out = append(out, entity.Sector{ID: s.ID, HotelID: s.HotelID, Name: s.Name, CreatedAt: s.CreatedAt})
	}
	return out, nil
}
