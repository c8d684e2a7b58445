package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/Masterminds/squirrel"

	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo proyecciones de solo lectura sobre las tablas de movimientos de otros módulos.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// interval filtra occurred_at en (from, to].
func interval(from, to time.Time) squirrel.And {
	return squirrel.And{
		squirrel.Gt{"occurred_at": from},
		squirrel.LtOrEq{"occurred_at": to},
	}
}

func selectInto[T any](ctx context.Context, q Querier, what string, b squirrel.SelectBuilder) ([]T, error) {
	query, args, err := b.OrderBy("occurred_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", what, err)
	}
	var out []T
	if err := pgxscan.Select(ctx, q, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	return out, nil
}

func (r *MovementRepo) ListPurchases(ctx context.Context, hotelID string, from, to time.Time) ([]entity.Purchase, error) {
	return selectInto[entity.Purchase](ctx, r.q, "purchases", psql.
		Select("id", "hotel_id", "product_id", "quantity", "occurred_at").
		From("purchases").
		Where(squirrel.Eq{"hotel_id": hotelID}).
		Where(interval(from, to)))
}

func (r *MovementRepo) ListFulfilledDeliveries(ctx context.Context, hotelID string, from, to time.Time) ([]entity.Delivery, error) {
	return selectInto[entity.Delivery](ctx, r.q, "deliveries", psql.
		Select("id", "hotel_id", "requested_product_id", "delivered_product_id", "quantity", "sector_id", "status", "occurred_at").
		From("deliveries").
		Where(squirrel.Eq{"hotel_id": hotelID, "status": entity.DeliveryStatusFulfilled}).
		Where(interval(from, to)))
}

func (r *MovementRepo) ListTransfers(ctx context.Context, hotelID string, from, to time.Time) ([]entity.Transfer, error) {
	return selectInto[entity.Transfer](ctx, r.q, "transfers", psql.
		Select("id", "product_id", "quantity", "source_hotel_id", "destination_hotel_id", "occurred_at").
		From("transfers").
		Where(squirrel.Or{
			squirrel.Eq{"source_hotel_id": hotelID},
			squirrel.Eq{"destination_hotel_id": hotelID},
		}).
		Where(interval(from, to)))
}

func (r *MovementRepo) ListRestocks(ctx context.Context, hotelID string, from, to time.Time) ([]entity.Restock, error) {
	return selectInto[entity.Restock](ctx, r.q, "restocks", psql.
		Select("id", "hotel_id", "product_id", "quantity", "unit_value", "occurred_at").
		From("restocks").
		Where(squirrel.Eq{"hotel_id": hotelID}).
		Where(interval(from, to)))
}
