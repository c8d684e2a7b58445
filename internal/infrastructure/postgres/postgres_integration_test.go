package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/repository"
	"github.com/jhoicas/hotel-inventario-api/internal/infrastructure/postgres"
	"github.com/jhoicas/hotel-inventario-api/pkg/config"
)

// Requiere una base PostgreSQL desechable en HOTEL_INVENTARIO_TEST_DATABASE_URL.
func TestPostgres_ConteosYCiclos(t *testing.T) {
	dsn := os.Getenv("HOTEL_INVENTARIO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("HOTEL_INVENTARIO_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 4})
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, postgres.Migrate(ctx, pool))

	hotelID := "hotel-" + uuid.NewString()
	productID := "prod-" + uuid.NewString()
	_, err = pool.Exec(ctx,
		`INSERT INTO products (id, hotel_id, name, unit_value, cycle_tracked, baseline_quantity) VALUES ($1, $2, 'Cuchillo', 2.00, true, 20)`,
		productID, hotelID)
	require.NoError(t, err)

	// ── Conteos ──
	counts := postgres.NewStockCountRepository(pool)
	at := time.Now().UTC().Truncate(time.Millisecond)
	count := &entity.StockCount{
		ID: uuid.NewString(), HotelID: hotelID, FinishedAt: at, CreatedBy: "u",
		Items: []entity.CountedItem{{ProductID: productID, Quantity: decimal.NewFromInt(7)}},
	}
	require.NoError(t, counts.Create(ctx, count))
	assert.ErrorIs(t, counts.Create(ctx, count), domain.ErrDuplicate)

	got, err := counts.GetByID(ctx, count.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 1)
	assert.True(t, decimal.NewFromInt(7).Equal(got.Items[0].Quantity))
	assert.Equal(t, entity.MainWarehouse, got.Items[0].SectorID)

	hotelWide := ""
	list, err := counts.ListFinished(ctx, hotelID, &hotelWide)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	products, err := postgres.NewProductRepository(pool).ListActiveByHotel(ctx, hotelID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].CycleTracked)

	// ── Ciclos ──
	cycles := postgres.NewDiscountCycleRepository(pool)
	runner := postgres.NewCycleTxRunner(pool)
	base, err := cycles.GetPriorBaseline(ctx, hotelID)
	require.NoError(t, err)
	assert.Empty(t, base.LastCycleID)

	cycleID := uuid.NewString()
	err = runner.Run(ctx, hotelID, func(w repository.CycleWriter) error {
		last, seq, err := w.LockHead(ctx, hotelID)
		require.NoError(t, err)
		assert.Empty(t, last)
		return w.Commit(ctx, &entity.DiscountCycle{
			ID: cycleID, HotelID: hotelID, Sequence: seq + 1, ClosedAt: at, ClosedByUserID: "u",
			TotalDiscountValue: decimal.RequireFromString("6.00"),
			Items: []entity.DiscountCycleItem{{ProductID: productID, FinalCount: decimal.NewFromInt(17)}},
		})
	})
	require.NoError(t, err)

	base, err = cycles.GetPriorBaseline(ctx, hotelID)
	require.NoError(t, err)
	assert.Equal(t, cycleID, base.LastCycleID)
	assert.True(t, decimal.NewFromInt(17).Equal(base.Quantities[productID]))

	// Un segundo ciclo con la cabecera vieja no se confirma.
	err = runner.Run(ctx, hotelID, func(w repository.CycleWriter) error {
		_, _, err := w.LockHead(ctx, hotelID)
		require.NoError(t, err)
		return w.Commit(ctx, &entity.DiscountCycle{
			ID: uuid.NewString(), HotelID: hotelID, Sequence: 1, ClosedAt: at, ClosedByUserID: "u",
		})
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentCloseConflict)

	full, err := cycles.GetByID(ctx, cycleID)
	require.NoError(t, err)
	require.NotNil(t, full)
	assert.Len(t, full.Items, 1)
}
