package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/repository"
)

// CycleTxRunner ejecuta cierres de ciclo en una transacción SERIALIZABLE.
type CycleTxRunner struct {
	pool *pgxpool.Pool
}

// NewCycleTxRunner construye el runner con el pool.
func NewCycleTxRunner(pool *pgxpool.Pool) *CycleTxRunner {
	return &CycleTxRunner{pool: pool}
}

// Run inicia la transacción, ejecuta fn con un CycleWriter atado a ella y hace Commit o Rollback.
// Los fallos de serialización y las violaciones de unicidad sobre la cabecera se reportan
// como domain.ErrConcurrentCloseConflict.
func (r *CycleTxRunner) Run(ctx context.Context, hotelID string, fn func(w repository.CycleWriter) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&cycleWriter{tx: tx, hotelID: hotelID}); err != nil {
		return conflictOr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return conflictOr(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func conflictOr(err error) error {
	if errors.Is(err, domain.ErrConcurrentCloseConflict) {
		return err
	}
	if isSerializationFailure(err) || isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", domain.ErrConcurrentCloseConflict, err)
	}
	return err
}

type cycleWriter struct {
	tx      pgx.Tx
	hotelID string
	locked  bool
}

// LockHead crea la cabecera del hotel si no existe y la bloquea con FOR UPDATE.
func (w *cycleWriter) LockHead(ctx context.Context, hotelID string) (string, int64, error) {
	if hotelID != w.hotelID {
		return "", 0, fmt.Errorf("postgres: la transacción es del hotel %s, no de %s", w.hotelID, hotelID)
	}
	query, args, err := psql.Insert("discount_cycle_heads").
		Columns("hotel_id").
		Values(hotelID).
		Suffix("ON CONFLICT (hotel_id) DO NOTHING").
		ToSql()
	if err != nil {
		return "", 0, fmt.Errorf("build head insert: %w", err)
	}
	if _, err := w.tx.Exec(ctx, query, args...); err != nil {
		return "", 0, fmt.Errorf("ensure cycle head: %w", err)
	}

	var lastID *string
	var lastSeq int64
	err = w.tx.QueryRow(ctx,
		`SELECT last_cycle_id, last_sequence FROM discount_cycle_heads WHERE hotel_id = $1 FOR UPDATE`,
		hotelID,
	).Scan(&lastID, &lastSeq)
	if err != nil {
		return "", 0, fmt.Errorf("lock cycle head: %w", err)
	}
	w.locked = true
	return deref(lastID), lastSeq, nil
}

// Commit inserta ciclo e ítems, avanza la cabecera con compare-and-swap y actualiza la línea base.
func (w *cycleWriter) Commit(ctx context.Context, c *entity.DiscountCycle) error {
	if !w.locked {
		return fmt.Errorf("postgres: Commit sin LockHead")
	}
	if c.HotelID != w.hotelID {
		return fmt.Errorf("postgres: ciclo de otro hotel")
	}

	query, args, err := psql.Insert("discount_cycles").
		Columns(cycleColumns...).
		Values(c.ID, c.HotelID, c.Sequence, nullIfEmpty(c.PreviousCycleID), c.ClosedAt, c.ClosedByUserID, c.TotalDiscountValue).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert cycle: %w", err)
	}
	if _, err := w.tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	items := psql.Insert("discount_cycle_items").Columns(append([]string{"cycle_id"}, cycleItemColumns...)...)
	baselines := psql.Insert("discount_cycle_baselines").Columns("hotel_id", "product_id", "quantity", "cycle_id")
	for _, it := range c.Items {
		items = items.Values(c.ID, it.ProductID, it.PreviousCount, it.RestocksInPeriod, it.AttributedLoss,
			it.FinalCount, it.ExpectedQuantity, it.UnaccountedLoss, it.UnitValue, it.DiscountValue)
		baselines = baselines.Values(c.HotelID, it.ProductID, it.FinalCount, c.ID)
	}
	if len(c.Items) > 0 {
		query, args, err = items.ToSql()
		if err != nil {
			return fmt.Errorf("build insert cycle items: %w", err)
		}
		if _, err := w.tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert cycle items: %w", err)
		}
		query, args, err = baselines.
			Suffix("ON CONFLICT (hotel_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity, cycle_id = EXCLUDED.cycle_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert baselines: %w", err)
		}
		if _, err := w.tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert baselines: %w", err)
		}
	}

	// La cabecera solo avanza si sigue apuntando al ciclo anterior.
	tag, err := w.tx.Exec(ctx,
		`UPDATE discount_cycle_heads
		    SET last_cycle_id = $2, last_sequence = $3, last_closed_at = $4
		  WHERE hotel_id = $1 AND last_sequence = $5 AND last_cycle_id IS NOT DISTINCT FROM $6`,
		c.HotelID, c.ID, c.Sequence, c.ClosedAt, c.Sequence-1, nullIfEmpty(c.PreviousCycleID),
	)
	if err != nil {
		return fmt.Errorf("advance cycle head: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrConcurrentCloseConflict
	}
	return nil
}
