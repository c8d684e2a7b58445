package reconciliation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hotel-inventario-api/internal/application/dto"
	appreconciliation "github.com/jhoicas/hotel-inventario-api/internal/application/reconciliation"
	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/reconciliation"
	"github.com/jhoicas/hotel-inventario-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	hotelID = "hotel-1"
	cocina  = "sector-cocina"
	toallas = "prod-toallas"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// fakeCache caché en memoria que cuenta lecturas y escrituras.
type fakeCache struct {
	mu    sync.Mutex
	data  map[string]*reconciliation.Result
	gets  int
	sets  int
	fails bool
}

func (c *fakeCache) Get(_ context.Context, key string) (*reconciliation.Result, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.fails {
		return nil, false, errors.New("caché caída")
	}
	r, ok := c.data[key]
	return r, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value *reconciliation.Result, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.fails {
		return errors.New("caché caída")
	}
	if c.data == nil {
		c.data = map[string]*reconciliation.Result{}
	}
	c.data[key] = value
	return nil
}

// fakeRecorder registra las observaciones.
type fakeRecorder struct {
	mu     sync.Mutex
	ops    []string
	errs   []error
	hits   int
	misses int
}

func (r *fakeRecorder) ObserveReconcile(op string, err error, _ time.Duration, _, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	r.errs = append(r.errs, err)
}

func (r *fakeRecorder) CacheLookup(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

// seed arma un hotel con dos conteos de todo el hotel y movimientos entre ellos:
// bodega 10 → 6 con compra de 5 y entrega de 7 a cocina; cocina 0 → 4.
func seed(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	s.AddProducts(entity.Product{ID: toallas, HotelID: hotelID, Name: "Toallas", Category: "lenceria", Active: true})
	s.AddSectors(entity.Sector{ID: cocina, HotelID: hotelID, Name: "Cocina"})
	s.AddMovements(entity.Movements{
		Purchases: []entity.Purchase{{ID: "p1", HotelID: hotelID, ProductID: toallas, Quantity: d(5), OccurredAt: t0.Add(time.Hour)}},
		Deliveries: []entity.Delivery{{
			ID: "d1", HotelID: hotelID, RequestedProductID: toallas, Quantity: d(7), SectorID: cocina,
			Status: entity.DeliveryStatusFulfilled, OccurredAt: t0.Add(2 * time.Hour),
		}},
	})
	counts := memory.NewStockCountRepository(s)
	ctx := context.Background()
	require.NoError(t, counts.Create(ctx, &entity.StockCount{
		ID: "c1", HotelID: hotelID, FinishedAt: t0,
		Items: []entity.CountedItem{{ProductID: toallas, Quantity: d(10)}},
	}))
	require.NoError(t, counts.Create(ctx, &entity.StockCount{
		ID: "c2", HotelID: hotelID, FinishedAt: t0.Add(24 * time.Hour),
		Items: []entity.CountedItem{
			{ProductID: toallas, Quantity: d(6)},
			{ProductID: toallas, SectorID: cocina, Quantity: d(4)},
		},
	}))
	return s
}

func newUseCase(s *memory.Store, cache appreconciliation.ResultCache, rec appreconciliation.Recorder) *appreconciliation.ReconcileUseCase {
	return appreconciliation.NewReconcileUseCase(appreconciliation.Deps{
		Products:  memory.NewProductRepository(s),
		Sectors:   memory.NewSectorRepository(s),
		Counts:    memory.NewStockCountRepository(s),
		Movements: memory.NewMovementRepository(s),
		Cache:     cache,
		CacheTTL:  time.Minute,
		Metrics:   rec,
		Now:       func() time.Time { return t0.Add(48 * time.Hour) },
	})
}

func rowFor(t *testing.T, rows []reconciliation.Row, sectorID string) reconciliation.Row {
	t.Helper()
	for _, r := range rows {
		if r.ProductID == toallas && r.Location.SectorID == sectorID {
			return r
		}
	}
	require.Failf(t, "fila no encontrada", "sector %q", sectorID)
	return reconciliation.Row{}
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconcile
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_CalculaSuperponeYAgrupa(t *testing.T) {
	rec := &fakeRecorder{}
	uc := newUseCase(seed(t), nil, rec)

	out, err := uc.Reconcile(context.Background(), hotelID, dto.ReconcileRequest{
		StartCountID:   "c1",
		EndCountID:     "c2",
		SectorOutflows: []dto.SectorOutflowRequest{{ProductID: toallas, SectorID: cocina, Outflow: d(3)}},
		GroupBy:        reconciliation.GroupingSector,
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", out.StartCountID)
	assert.Equal(t, "c2", out.EndCountID)
	assert.NotNil(t, out.Warnings)
	assert.Empty(t, out.Warnings)

	main := rowFor(t, out.Rows, entity.MainWarehouse)
	assert.True(t, d(8).Equal(main.ExpectedFinal))
	assert.True(t, d(-2).Equal(main.Discrepancy))

	sec := rowFor(t, out.Rows, cocina)
	assert.True(t, d(-3).Equal(sec.Discrepancy))
	require.NotNil(t, sec.Overlay)
	assert.True(t, d(0).Equal(sec.Overlay.Discrepancy))

	require.Len(t, out.Groups, 2)
	assert.True(t, d(-2).Equal(out.NetDelta), "net delta usa la diferencia efectiva")

	require.Len(t, rec.ops, 1)
	assert.Equal(t, appreconciliation.OpReconcile, rec.ops[0])
	assert.NoError(t, rec.errs[0])
}

func TestReconcile_ConteoInexistenteEsIntervaloInvalido(t *testing.T) {
	rec := &fakeRecorder{}
	uc := newUseCase(seed(t), nil, rec)

	_, err := uc.Reconcile(context.Background(), hotelID, dto.ReconcileRequest{StartCountID: "c1", EndCountID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
	require.Len(t, rec.errs, 1)
	assert.Error(t, rec.errs[0])
}

func TestReconcile_OtroHotelEsIntervaloInvalido(t *testing.T) {
	uc := newUseCase(seed(t), nil, nil)
	_, err := uc.Reconcile(context.Background(), "hotel-2", dto.ReconcileRequest{StartCountID: "c1", EndCountID: "c2"})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestReconcile_OrdenInvertidoEsIntervaloInvalido(t *testing.T) {
	uc := newUseCase(seed(t), nil, nil)
	_, err := uc.Reconcile(context.Background(), hotelID, dto.ReconcileRequest{StartCountID: "c2", EndCountID: "c1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestReconcile_AgrupacionDesconocida(t *testing.T) {
	uc := newUseCase(seed(t), nil, nil)
	_, err := uc.Reconcile(context.Background(), hotelID, dto.ReconcileRequest{StartCountID: "c1", EndCountID: "c2", GroupBy: "proveedor"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReconcile_UsaCache(t *testing.T) {
	cache := &fakeCache{}
	rec := &fakeRecorder{}
	uc := newUseCase(seed(t), cache, rec)
	ctx := context.Background()
	in := dto.ReconcileRequest{StartCountID: "c1", EndCountID: "c2"}

	first, err := uc.Reconcile(ctx, hotelID, in)
	require.NoError(t, err)
	second, err := uc.Reconcile(ctx, hotelID, in)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 1, rec.misses)
	assert.Equal(t, len(first.Rows), len(second.Rows))
}

// Una compra registrada tarde dentro del intervalo invalida el resultado guardado.
func TestReconcile_CacheSeRecalculaConMovimientoNuevo(t *testing.T) {
	s := seed(t)
	cache := &fakeCache{}
	rec := &fakeRecorder{}
	uc := newUseCase(s, cache, rec)
	ctx := context.Background()
	in := dto.ReconcileRequest{StartCountID: "c1", EndCountID: "c2"}

	before, err := uc.Reconcile(ctx, hotelID, in)
	require.NoError(t, err)
	assert.True(t, d(-2).Equal(rowFor(t, before.Rows, entity.MainWarehouse).Discrepancy))

	s.AddMovements(entity.Movements{Purchases: []entity.Purchase{{
		ID: "pu-tarde", HotelID: hotelID, ProductID: toallas, Quantity: d(2), OccurredAt: t0.Add(3 * time.Hour),
	}}})

	after, err := uc.Reconcile(ctx, hotelID, in)
	require.NoError(t, err)
	mainRow := rowFor(t, after.Rows, entity.MainWarehouse)
	assert.True(t, d(10).Equal(mainRow.ExpectedFinal), "esperado %s", mainRow.ExpectedFinal)
	assert.True(t, d(-4).Equal(mainRow.Discrepancy), "diferencia %s", mainRow.Discrepancy)
	assert.Equal(t, 0, rec.hits)
	assert.Equal(t, 2, rec.misses)
	assert.Equal(t, 2, cache.sets)
}

// La caché caída no rompe la conciliación.
func TestReconcile_CacheCaidaNoFalla(t *testing.T) {
	uc := newUseCase(seed(t), &fakeCache{fails: true}, nil)
	out, err := uc.Reconcile(context.Background(), hotelID, dto.ReconcileRequest{StartCountID: "c1", EndCountID: "c2"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Rows)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReconcileLatest
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcileLatest_TomaLosDosUltimos(t *testing.T) {
	s := seed(t)
	require.NoError(t, memory.NewStockCountRepository(s).Create(context.Background(), &entity.StockCount{
		ID: "c0", HotelID: hotelID, FinishedAt: t0.Add(-24 * time.Hour),
		Items: []entity.CountedItem{{ProductID: toallas, Quantity: d(1)}},
	}))
	uc := newUseCase(s, nil, nil)

	out, err := uc.ReconcileLatest(context.Background(), hotelID, dto.ReconcileLatestRequest{})
	require.NoError(t, err)
	assert.Equal(t, "c1", out.StartCountID)
	assert.Equal(t, "c2", out.EndCountID)
}

func TestReconcileLatest_SinDosConteos(t *testing.T) {
	uc := newUseCase(seed(t), nil, nil)
	_, err := uc.ReconcileLatest(context.Background(), hotelID, dto.ReconcileLatestRequest{SectorID: cocina})
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

// ──────────────────────────────────────────────────────────────────────────────
// CurrentStock
// ──────────────────────────────────────────────────────────────────────────────

func TestCurrentStock_DerivaDelUltimoConteo(t *testing.T) {
	s := seed(t)
	s.AddMovements(entity.Movements{
		Purchases: []entity.Purchase{{ID: "p2", HotelID: hotelID, ProductID: toallas, Quantity: d(3), OccurredAt: t0.Add(30 * time.Hour)}},
	})
	uc := newUseCase(s, nil, nil)

	out, err := uc.CurrentStock(context.Background(), hotelID)
	require.NoError(t, err)
	assert.Equal(t, "c2", out.BaseCountID)
	assert.Equal(t, t0.Add(48*time.Hour), out.AsOf)

	var main *reconciliation.StockLevel
	for i := range out.Levels {
		if out.Levels[i].ProductID == toallas && out.Levels[i].Location.IsMain() {
			main = &out.Levels[i]
		}
	}
	require.NotNil(t, main)
	assert.True(t, d(9).Equal(main.Expected), "6 contados + 3 comprados")
}

func TestCurrentStock_SinConteos(t *testing.T) {
	uc := newUseCase(memory.NewStore(), nil, nil)
	_, err := uc.CurrentStock(context.Background(), hotelID)
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}
