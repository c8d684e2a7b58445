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

var _ repository.DiscountCycleRepository = (*DiscountCycleRepo)(nil)

// DiscountCycleRepo lectura del historial de ciclos y de la línea base vigente.
type DiscountCycleRepo struct {
	q Querier
}

// NewDiscountCycleRepository construye el adaptador.
func NewDiscountCycleRepository(q Querier) *DiscountCycleRepo {
	return &DiscountCycleRepo{q: q}
}

type cycleRow struct {
	ID                 string          `db:"id"`
	HotelID            string          `db:"hotel_id"`
	Sequence           int64           `db:"sequence"`
	PreviousCycleID    *string         `db:"previous_cycle_id"`
	ClosedAt           time.Time       `db:"closed_at"`
	ClosedByUserID     string          `db:"closed_by_user_id"`
	TotalDiscountValue decimal.Decimal `db:"total_discount_value"`
}

func (c cycleRow) toEntity() entity.DiscountCycle {
	return entity.DiscountCycle{
		ID:                 c.ID,
		HotelID:            c.HotelID,
		Sequence:           c.Sequence,
		PreviousCycleID:    deref(c.PreviousCycleID),
		ClosedAt:           c.ClosedAt.UTC(),
		ClosedByUserID:     c.ClosedByUserID,
		TotalDiscountValue: c.TotalDiscountValue,
	}
}

type cycleItemRow struct {
	ProductID        string          `db:"product_id"`
	PreviousCount    decimal.Decimal `db:"previous_count"`
	RestocksInPeriod decimal.Decimal `db:"restocks_in_period"`
	AttributedLoss   decimal.Decimal `db:"attributed_loss"`
	FinalCount       decimal.Decimal `db:"final_count"`
	ExpectedQuantity decimal.Decimal `db:"expected_quantity"`
	UnaccountedLoss  decimal.Decimal `db:"unaccounted_loss"`
	UnitValue        decimal.Decimal `db:"unit_value"`
	DiscountValue    decimal.Decimal `db:"discount_value"`
}

var cycleColumns = []string{"id", "hotel_id", "sequence", "previous_cycle_id", "closed_at", "closed_by_user_id", "total_discount_value"}

var cycleItemColumns = []string{
	"product_id", "previous_count", "restocks_in_period", "attributed_loss", "final_count",
	"expected_quantity", "unaccounted_loss", "unit_value", "discount_value",
}

type headRow struct {
	LastCycleID  *string    `db:"last_cycle_id"`
	LastSequence int64      `db:"last_sequence"`
	LastClosedAt *time.Time `db:"last_closed_at"`
}

type baselineRow struct {
	ProductID string          `db:"product_id"`
	Quantity  decimal.Decimal `db:"quantity"`
}

func (r *DiscountCycleRepo) GetPriorBaseline(ctx context.Context, hotelID string) (*entity.CycleBaseline, error) {
	out := &entity.CycleBaseline{HotelID: hotelID, Quantities: map[string]decimal.Decimal{}}

	query, args, err := psql.Select("last_cycle_id", "last_sequence", "last_closed_at").
		From("discount_cycle_heads").
		Where(squirrel.Eq{"hotel_id": hotelID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build head query: %w", err)
	}
	var head headRow
	if err := pgxscan.Get(ctx, r.q, &head, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return out, nil
		}
		return nil, fmt.Errorf("get cycle head: %w", err)
	}
	out.LastCycleID = deref(head.LastCycleID)
	out.LastSequence = head.LastSequence
	if head.LastClosedAt != nil {
		out.LastClosedAt = head.LastClosedAt.UTC()
	}

	query, args, err = psql.Select("product_id", "quantity").
		From("discount_cycle_baselines").
		Where(squirrel.Eq{"hotel_id": hotelID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build baseline query: %w", err)
	}
	var rows []baselineRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get baselines: %w", err)
	}
	for _, b := range rows {
		out.Quantities[b.ProductID] = b.Quantity
	}
	return out, nil
}

func (r *DiscountCycleRepo) ListByHotel(ctx context.Context, hotelID string, limit, offset int) ([]entity.DiscountCycle, error) {
	query, args, err := psql.Select(cycleColumns...).
		From("discount_cycles").
		Where(squirrel.Eq{"hotel_id": hotelID}).
		OrderBy("sequence DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cycles query: %w", err)
	}
	var rows []cycleRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	out := make([]entity.DiscountCycle, 0, len(rows))
	for _, c := range rows {
		out = append(out, c.toEntity())
	}
	return out, nil
}

func (r *DiscountCycleRepo) GetByID(ctx context.Context, cycleID string) (*entity.DiscountCycle, error) {
	query, args, err := psql.Select(cycleColumns...).
		From("discount_cycles").
		Where(squirrel.Eq{"id": cycleID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cycle query: %w", err)
	}
	var row cycleRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cycle: %w", err)
	}

	query, args, err = psql.Select(cycleItemColumns...).
		From("discount_cycle_items").
		Where(squirrel.Eq{"cycle_id": cycleID}).
		OrderBy("product_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build cycle items query: %w", err)
	}
	var items []cycleItemRow
	if err := pgxscan.Select(ctx, r.q, &items, query, args...); err != nil {
		return nil, fmt.Errorf("get cycle items: %w", err)
	}

	c := row.toEntity()
	c.Items = make([]entity.DiscountCycleItem, 0, len(items))
	for _, it := range items {
		c.Items = append(c.Items, entity.DiscountCycleItem(it))
	}
	return &c, nil
}
