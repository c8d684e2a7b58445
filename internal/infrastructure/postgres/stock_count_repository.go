package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/repository"
)

var _ repository.StockCountRepository = (*StockCountRepo)(nil)

// StockCountRepo conteos físicos. Create inserta cabecera e ítems en una transacción.
type StockCountRepo struct {
	pool *pgxpool.Pool
}

// NewStockCountRepository construye el adaptador.
func NewStockCountRepository(pool *pgxpool.Pool) *StockCountRepo {
	return &StockCountRepo{pool: pool}
}

type stockCountRow struct {
	ID         string    `db:"id"`
	HotelID    string    `db:"hotel_id"`
	SectorID   *string   `db:"sector_id"`
	FinishedAt time.Time `db:"finished_at"`
	CreatedBy  string    `db:"created_by"`
}

func (c stockCountRow) toEntity() entity.StockCount {
	return entity.StockCount{
		ID:         c.ID,
		HotelID:    c.HotelID,
		SectorID:   deref(c.SectorID),
		FinishedAt: c.FinishedAt.UTC(),
		CreatedBy:  c.CreatedBy,
	}
}

type countedItemRow struct {
	ProductID string          `db:"product_id"`
	SectorID  *string         `db:"sector_id"`
	Quantity  decimal.Decimal `db:"quantity"`
}

var stockCountColumns = []string{"id", "hotel_id", "sector_id", "finished_at", "created_by"}

func (r *StockCountRepo) GetByID(ctx context.Context, countID string) (*entity.StockCount, error) {
	query, args, err := psql.Select(stockCountColumns...).
		From("stock_counts").
		Where(squirrel.Eq{"id": countID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	var row stockCountRow
	if err := pgxscan.Get(ctx, r.pool, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get count: %w", err)
	}

	query, args, err = psql.Select("product_id", "sector_id", "quantity").
		From("stock_count_items").
		Where(squirrel.Eq{"count_id": countID}).
		OrderBy("product_id", "sector_id NULLS FIRST").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count items query: %w", err)
	}
	var items []countedItemRow
	if err := pgxscan.Select(ctx, r.pool, &items, query, args...); err != nil {
		return nil, fmt.Errorf("get count items: %w", err)
	}

	count := row.toEntity()
	count.Items = make([]entity.CountedItem, 0, len(items))
	for _, it := range items {
		count.Items = append(count.Items, entity.CountedItem{ProductID: it.ProductID, SectorID: deref(it.SectorID), Quantity: it.Quantity})
	}
	return &count, nil
}

func (r *StockCountRepo) ListFinished(ctx context.Context, hotelID string, sectorID *string) ([]entity.StockCount, error) {
	q := psql.Select(stockCountColumns...).
		From("stock_counts").
		Where(squirrel.Eq{"hotel_id": hotelID}).
		OrderBy("finished_at DESC", "id DESC")
	if sectorID != nil {
		// Eq con nil genera IS NULL (conteos de todo el hotel).
		q = q.Where(squirrel.Eq{"sector_id": nullIfEmpty(*sectorID)})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build counts query: %w", err)
	}
	var rows []stockCountRow
	if err := pgxscan.Select(ctx, r.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list counts: %w", err)
	}
	out := make([]entity.StockCount, 0, len(rows))
	for _, c := range rows {
		out = append(out, c.toEntity())
	}
	return out, nil
}

func (r *StockCountRepo) Create(ctx context.Context, count *entity.StockCount) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query, args, err := psql.Insert("stock_counts").
		Columns(stockCountColumns...).
		Values(count.ID, count.HotelID, nullIfEmpty(count.SectorID), count.FinishedAt, count.CreatedBy).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert count: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert count: %w", err)
	}

	if len(count.Items) > 0 {
		ins := psql.Insert("stock_count_items").Columns("count_id", "product_id", "sector_id", "quantity")
		for _, it := range count.Items {
			ins = ins.Values(count.ID, it.ProductID, nullIfEmpty(it.SectorID), it.Quantity)
		}
		query, args, err = ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert count items: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert count items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
