package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/repository"
	"github.com/jhoicas/hotel-inventario-api/internal/infrastructure/memory"
)

var t0 = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func TestMovementRepo_IntervaloAbiertoCerrado(t *testing.T) {
	s := memory.NewStore()
	s.AddMovements(entity.Movements{
		Purchases: []entity.Purchase{
			{ID: "en-from", HotelID: "h1", ProductID: "p", Quantity: decimal.NewFromInt(1), OccurredAt: t0},
			{ID: "dentro", HotelID: "h1", ProductID: "p", Quantity: decimal.NewFromInt(1), OccurredAt: t0.Add(time.Hour)},
			{ID: "en-to", HotelID: "h1", ProductID: "p", Quantity: decimal.NewFromInt(1), OccurredAt: t0.Add(2 * time.Hour)},
			{ID: "otro-hotel", HotelID: "h2", ProductID: "p", Quantity: decimal.NewFromInt(1), OccurredAt: t0.Add(time.Hour)},
		},
		Deliveries: []entity.Delivery{
			{ID: "ok", HotelID: "h1", Status: entity.DeliveryStatusFulfilled, OccurredAt: t0.Add(time.Hour)},
			{ID: "pendiente", HotelID: "h1", Status: entity.DeliveryStatusPending, OccurredAt: t0.Add(time.Hour)},
		},
		Transfers: []entity.Transfer{
			{ID: "sale", SourceHotelID: "h1", DestinationHotelID: "h2", OccurredAt: t0.Add(time.Hour)},
			{ID: "entra", SourceHotelID: "h3", DestinationHotelID: "h1", OccurredAt: t0.Add(time.Hour)},
			{ID: "ajeno", SourceHotelID: "h3", DestinationHotelID: "h2", OccurredAt: t0.Add(time.Hour)},
		},
	})
	repo := memory.NewMovementRepository(s)
	ctx := context.Background()

	purchases, err := repo.ListPurchases(ctx, "h1", t0, t0.Add(2*time.Hour))
	require.NoError(t, err)
	ids := make([]string, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"dentro", "en-to"}, ids)

	deliveries, err := repo.ListFulfilledDeliveries(ctx, "h1", t0, t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, "ok", deliveries[0].ID)

	transfers, err := repo.ListTransfers(ctx, "h1", t0, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, transfers, 2)
}

func TestStockCountRepo_ListFinishedOrdenYAlcance(t *testing.T) {
	s := memory.NewStore()
	repo := memory.NewStockCountRepository(s)
	ctx := context.Background()

	for i, c := range []entity.StockCount{
		{ID: "c1", HotelID: "h1", FinishedAt: t0},
		{ID: "c2", HotelID: "h1", SectorID: "cocina", FinishedAt: t0.Add(time.Hour)},
		{ID: "c3", HotelID: "h1", FinishedAt: t0.Add(2 * time.Hour), Items: []entity.CountedItem{{ProductID: "p"}}},
	} {
		c := c
		require.NoError(t, repo.Create(ctx, &c), "conteo %d", i)
	}
	assert.ErrorIs(t, repo.Create(ctx, &entity.StockCount{ID: "c1", HotelID: "h1"}), domain.ErrDuplicate)

	all, err := repo.ListFinished(ctx, "h1", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c3", all[0].ID)
	assert.Nil(t, all[0].Items)

	hotelWide := ""
	wide, err := repo.ListFinished(ctx, "h1", &hotelWide)
	require.NoError(t, err)
	require.Len(t, wide, 2)
	assert.Equal(t, []string{"c3", "c1"}, []string{wide[0].ID, wide[1].ID})

	full, err := repo.GetByID(ctx, "c3")
	require.NoError(t, err)
	require.Len(t, full.Items, 1)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func cycle(hotelID, id, prev string, seq int64, final int64) *entity.DiscountCycle {
	return &entity.DiscountCycle{
		ID: id, HotelID: hotelID, Sequence: seq, PreviousCycleID: prev, ClosedAt: t0.Add(time.Duration(seq) * time.Hour),
		Items: []entity.DiscountCycleItem{{ProductID: "cuchillo", FinalCount: decimal.NewFromInt(final)}},
	}
}

func TestCycleTxRunner_AvanzaCabeceraYLineaBase(t *testing.T) {
	s := memory.NewStore()
	runner := memory.NewCycleTxRunner(s)
	cycles := memory.NewDiscountCycleRepository(s)
	ctx := context.Background()

	base, err := cycles.GetPriorBaseline(ctx, "h1")
	require.NoError(t, err)
	assert.Empty(t, base.LastCycleID)

	err = runner.Run(ctx, "h1", func(w repository.CycleWriter) error {
		last, seq, err := w.LockHead(ctx, "h1")
		require.NoError(t, err)
		assert.Empty(t, last)
		assert.Zero(t, seq)
		return w.Commit(ctx, cycle("h1", "cy1", "", 1, 24))
	})
	require.NoError(t, err)

	base, err = cycles.GetPriorBaseline(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "cy1", base.LastCycleID)
	assert.Equal(t, int64(1), base.LastSequence)
	assert.True(t, base.Quantities["cuchillo"].Equal(decimal.NewFromInt(24)))

	got, err := cycles.GetByID(ctx, "cy1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Items, 1)

	list, err := cycles.ListByHotel(ctx, "h1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Items)
}

func TestCycleTxRunner_ErrorDescartaCambios(t *testing.T) {
	s := memory.NewStore()
	runner := memory.NewCycleTxRunner(s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := runner.Run(ctx, "h1", func(w repository.CycleWriter) error {
		_, _, _ = w.LockHead(ctx, "h1")
		require.NoError(t, w.Commit(ctx, cycle("h1", "cy1", "", 1, 1)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := memory.NewDiscountCycleRepository(s).GetByID(ctx, "cy1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCycleTxRunner_CabeceraDesactualizadaEsConflicto(t *testing.T) {
	s := memory.NewStore()
	runner := memory.NewCycleTxRunner(s)
	ctx := context.Background()

	require.NoError(t, runner.Run(ctx, "h1", func(w repository.CycleWriter) error {
		_, _, _ = w.LockHead(ctx, "h1")
		return w.Commit(ctx, cycle("h1", "cy1", "", 1, 1))
	}))

	// Un ciclo que no encadena con la cabecera actual se rechaza aunque el llamador no la compare.
	err := runner.Run(ctx, "h1", func(w repository.CycleWriter) error {
		_, _, _ = w.LockHead(ctx, "h1")
		return w.Commit(ctx, cycle("h1", "cy2", "", 1, 1))
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentCloseConflict)
}

func TestCycleWriter_CommitSinLock(t *testing.T) {
	s := memory.NewStore()
	err := memory.NewCycleTxRunner(s).Run(context.Background(), "h1", func(w repository.CycleWriter) error {
		return w.Commit(context.Background(), cycle("h1", "cy1", "", 1, 1))
	})
	assert.Error(t, err)
}
