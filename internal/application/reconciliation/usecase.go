// Package reconciliation orquesta la conciliación: carga concurrente de conteos, catálogo
// y movimientos, cálculo puro, superposición de salidas manuales y agrupación para reportes.
package reconciliation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/hotel-inventario-api/internal/application/dto"
	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/reconciliation"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/repository"
	"github.com/jhoicas/hotel-inventario-api/pkg/logger"
)

var tracer = otel.Tracer("hotel-inventario/reconciliation")

// Operaciones (etiqueta de métricas y nombre de span).
const (
	OpReconcile       = "reconcile"
	OpReconcileLatest = "reconcile_latest"
	OpCurrentStock    = "current_stock"
)

// ResultCache caché de resultados ya calculados (ver infrastructure/cache).
type ResultCache interface {
	Get(ctx context.Context, key string) (*reconciliation.Result, bool, error)
	Set(ctx context.Context, key string, value *reconciliation.Result, ttl time.Duration) error
}

// Recorder métricas de la conciliación (ver infrastructure/metrics).
type Recorder interface {
	ObserveReconcile(operation string, err error, elapsed time.Duration, rows, warnings int)
	CacheLookup(hit bool)
}

// Deps dependencias del caso de uso. Cache y Metrics son opcionales.
type Deps struct {
	Products  repository.ProductRepository
	Sectors   repository.SectorRepository
	Counts    repository.StockCountRepository
	Movements repository.MovementRepository
	Cache     ResultCache
	CacheKey  func(hotelID, startCountID, endCountID, fingerprint string) string
	CacheTTL  time.Duration
	Metrics   Recorder
	Logger    *logger.Logger
	Now       func() time.Time
}

// ReconcileUseCase casos de uso de lectura: conciliar, conciliar lo último y stock actual.
// Nunca escribe.
type ReconcileUseCase struct {
	products  repository.ProductRepository
	sectors   repository.SectorRepository
	counts    repository.StockCountRepository
	movements repository.MovementRepository
	cache     ResultCache
	cacheKey  func(hotelID, startCountID, endCountID, fingerprint string) string
	cacheTTL  time.Duration
	metrics   Recorder
	log       *logger.Logger
	now       func() time.Time
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(d Deps) *ReconcileUseCase {
	uc := &ReconcileUseCase{
		products:  d.Products,
		sectors:   d.Sectors,
		counts:    d.Counts,
		movements: d.Movements,
		cache:     d.Cache,
		cacheKey:  d.CacheKey,
		cacheTTL:  d.CacheTTL,
		metrics:   d.Metrics,
		log:       d.Logger,
		now:       d.Now,
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.cacheKey == nil {
		uc.cacheKey = func(h, s, e, f string) string { return "reconcile:" + h + ":" + s + ":" + e + ":" + f }
	}
	return uc
}

// Reconcile concilia dos conteos terminados del hotel y aplica superposición y agrupación.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, hotelID string, in dto.ReconcileRequest) (*dto.ReconciliationResponse, error) {
	ctx, span := tracer.Start(ctx, "reconciliation.Reconcile", trace.WithAttributes(
		attribute.String("hotel_id", hotelID),
		attribute.String("start_count_id", in.StartCountID),
		attribute.String("end_count_id", in.EndCountID),
	))
	defer span.End()

	began := time.Now()
	out, err := uc.reconcile(ctx, hotelID, in)
	uc.observe(span, OpReconcile, hotelID, err, began, out)
	return out, err
}

func (uc *ReconcileUseCase) reconcile(ctx context.Context, hotelID string, in dto.ReconcileRequest) (*dto.ReconciliationResponse, error) {
	if in.StartCountID == "" || in.EndCountID == "" {
		return nil, &domain.ValidationError{Field: "start_count_id/end_count_id", Message: "ambos conteos son requeridos"}
	}
	if err := reconciliation.ValidateGrouping(in.GroupBy); err != nil {
		return nil, err
	}
	start, end, err := uc.loadPair(ctx, in.StartCountID, in.EndCountID)
	if err != nil {
		return nil, err
	}
	return uc.run(ctx, hotelID, start, end, toOverlayEntries(in.SectorOutflows), in.GroupBy)
}

// ReconcileLatest concilia los dos conteos terminados más recientes del alcance pedido
// (sector_id vacío = conteos de todo el hotel).
func (uc *ReconcileUseCase) ReconcileLatest(ctx context.Context, hotelID string, in dto.ReconcileLatestRequest) (*dto.ReconciliationResponse, error) {
	ctx, span := tracer.Start(ctx, "reconciliation.ReconcileLatest", trace.WithAttributes(
		attribute.String("hotel_id", hotelID),
		attribute.String("sector_id", in.SectorID),
	))
	defer span.End()

	began := time.Now()
	out, err := uc.reconcileLatest(ctx, hotelID, in)
	uc.observe(span, OpReconcileLatest, hotelID, err, began, out)
	return out, err
}

func (uc *ReconcileUseCase) reconcileLatest(ctx context.Context, hotelID string, in dto.ReconcileLatestRequest) (*dto.ReconciliationResponse, error) {
	if err := reconciliation.ValidateGrouping(in.GroupBy); err != nil {
		return nil, err
	}
	scope := in.SectorID
	counts, err := uc.counts.ListFinished(ctx, hotelID, &scope)
	if err != nil {
		return nil, fmt.Errorf("listar conteos: %w", err)
	}
	if len(counts) < 2 {
		return nil, &domain.IntervalError{HotelID: hotelID, Reason: "se requieren al menos dos conteos terminados del mismo alcance"}
	}
	start, end, err := uc.loadPair(ctx, counts[1].ID, counts[0].ID)
	if err != nil {
		return nil, err
	}
	return uc.run(ctx, hotelID, start, end, nil, in.GroupBy)
}

// CurrentStock deriva el stock esperado actual: último conteo de todo el hotel + movimientos posteriores.
func (uc *ReconcileUseCase) CurrentStock(ctx context.Context, hotelID string) (*dto.CurrentStockResponse, error) {
	ctx, span := tracer.Start(ctx, "reconciliation.CurrentStock", trace.WithAttributes(attribute.String("hotel_id", hotelID)))
	defer span.End()

	began := time.Now()
	out, err := uc.currentStock(ctx, hotelID)
	rows, warnings := 0, 0
	if out != nil {
		rows, warnings = len(out.Levels), len(out.Warnings)
	}
	uc.record(span, OpCurrentStock, hotelID, err, began, rows, warnings)
	return out, err
}

func (uc *ReconcileUseCase) currentStock(ctx context.Context, hotelID string) (*dto.CurrentStockResponse, error) {
	hotelWide := entity.MainWarehouse
	counts, err := uc.counts.ListFinished(ctx, hotelID, &hotelWide)
	if err != nil {
		return nil, fmt.Errorf("listar conteos: %w", err)
	}
	if len(counts) == 0 {
		return nil, &domain.IntervalError{HotelID: hotelID, Reason: "el hotel no tiene conteos de todo el hotel"}
	}
	base, err := uc.counts.GetByID(ctx, counts[0].ID)
	if err != nil {
		return nil, fmt.Errorf("cargar conteo base: %w", err)
	}
	if base == nil {
		return nil, &domain.IntervalError{HotelID: hotelID, StartCountID: counts[0].ID, Reason: "conteo base no encontrado"}
	}

	asOf := uc.now().UTC()
	if asOf.Before(base.FinishedAt) {
		asOf = base.FinishedAt
	}
	in := reconciliation.ProjectionInput{HotelID: hotelID, Base: base, Until: asOf}
	if err := uc.loadReferenceData(ctx, hotelID, base.FinishedAt, asOf, &in.Products, &in.Sectors, &in.Movements); err != nil {
		return nil, err
	}
	levels, warnings, err := reconciliation.Project(in)
	if err != nil {
		return nil, err
	}
	return &dto.CurrentStockResponse{
		HotelID:     hotelID,
		BaseCountID: base.ID,
		CountedAt:   base.FinishedAt,
		AsOf:        asOf,
		Levels:      levels,
		Warnings:    nonNilWarnings(warnings),
	}, nil
}

// loadPair carga ambos conteos en paralelo. Un conteo inexistente es un intervalo inválido.
func (uc *ReconcileUseCase) loadPair(ctx context.Context, startID, endID string) (*entity.StockCount, *entity.StockCount, error) {
	var start, end *entity.StockCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := uc.counts.GetByID(gctx, startID)
		start = c
		return err
	})
	g.Go(func() error {
		c, err := uc.counts.GetByID(gctx, endID)
		end = c
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("cargar conteos: %w", err)
	}
	if start == nil || end == nil {
		return nil, nil, &domain.IntervalError{StartCountID: startID, EndCountID: endID, Reason: "conteo no encontrado"}
	}
	return start, end, nil
}

func (uc *ReconcileUseCase) run(
	ctx context.Context,
	hotelID string,
	start, end *entity.StockCount,
	overlay []reconciliation.SectorOutflowEntry,
	groupBy string,
) (*dto.ReconciliationResponse, error) {
	if err := reconciliation.ValidateInterval(hotelID, start, end); err != nil {
		return nil, err
	}
	result, err := uc.calculate(ctx, hotelID, start, end)
	if err != nil {
		return nil, err
	}

	rows, overlayWarnings, err := reconciliation.ApplySectorOutflows(result.Rows, overlay)
	if err != nil {
		return nil, err
	}
	groups, err := reconciliation.GroupRows(rows, groupBy)
	if err != nil {
		return nil, err
	}
	warnings := make([]domain.DataIntegrityWarning, 0, len(result.Warnings)+len(overlayWarnings))
	warnings = append(warnings, result.Warnings...)
	warnings = append(warnings, overlayWarnings...)

	return &dto.ReconciliationResponse{
		HotelID:      hotelID,
		StartCountID: start.ID,
		EndCountID:   end.ID,
		From:         start.FinishedAt,
		To:           end.FinishedAt,
		Locations:    result.Locations,
		Rows:         rows,
		Groups:       groups,
		NetDelta:     reconciliation.NetDelta(rows),
		Warnings:     warnings,
	}, nil
}

// calculate devuelve el resultado calculado (sin superposición). Las lecturas de catálogo y
// movimientos siempre se hacen; la caché solo evita recalcular cuando su huella no cambió.
func (uc *ReconcileUseCase) calculate(ctx context.Context, hotelID string, start, end *entity.StockCount) (*reconciliation.Result, error) {
	in := reconciliation.Input{HotelID: hotelID, Start: start, End: end}
	if err := uc.loadReferenceData(ctx, hotelID, start.FinishedAt, end.FinishedAt, &in.Products, &in.Sectors, &in.Movements); err != nil {
		return nil, err
	}
	if uc.cache == nil {
		return reconciliation.Calculate(in)
	}

	key := uc.cacheKey(hotelID, start.ID, end.ID, inputFingerprint(in))
	cached, ok, err := uc.cache.Get(ctx, key)
	switch {
	case err != nil:
		uc.log.Warn().Err(err).Str("key", key).Msg("caché de conciliación no disponible")
	case ok:
		uc.cacheLookup(true)
		return cached, nil
	default:
		uc.cacheLookup(false)
	}

	result, err := reconciliation.Calculate(in)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Set(ctx, key, result, uc.cacheTTL); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar la conciliación en caché")
	}
	return result, nil
}

// loadReferenceData lanza en paralelo las lecturas de catálogo, sectores y movimientos de (from, to].
func (uc *ReconcileUseCase) loadReferenceData(
	ctx context.Context,
	hotelID string,
	from, to time.Time,
	products *[]entity.Product,
	sectors *[]entity.Sector,
	movs *entity.Movements,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		*products, err = uc.products.ListActiveByHotel(gctx, hotelID)
		return wrap("catálogo", err)
	})
	g.Go(func() (err error) {
		*sectors, err = uc.sectors.ListByHotel(gctx, hotelID)
		return wrap("sectores", err)
	})
	g.Go(func() (err error) {
		movs.Purchases, err = uc.movements.ListPurchases(gctx, hotelID, from, to)
		return wrap("compras", err)
	})
	g.Go(func() (err error) {
		movs.Deliveries, err = uc.movements.ListFulfilledDeliveries(gctx, hotelID, from, to)
		return wrap("entregas", err)
	})
	g.Go(func() (err error) {
		movs.Transfers, err = uc.movements.ListTransfers(gctx, hotelID, from, to)
		return wrap("traslados", err)
	})
	return g.Wait()
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("cargar %s: %w", what, err)
	}
	return nil
}

func (uc *ReconcileUseCase) observe(span trace.Span, op, hotelID string, err error, began time.Time, out *dto.ReconciliationResponse) {
	rows, warnings := 0, 0
	if out != nil {
		rows, warnings = len(out.Rows), len(out.Warnings)
		span.SetAttributes(attribute.String("net_delta", out.NetDelta.String()))
	}
	uc.record(span, op, hotelID, err, began, rows, warnings)
}

func (uc *ReconcileUseCase) record(span trace.Span, op, hotelID string, err error, began time.Time, rows, warnings int) {
	elapsed := time.Since(began)
	if uc.metrics != nil {
		uc.metrics.ObserveReconcile(op, err, elapsed, rows, warnings)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ev := uc.log.Error()
		if domain.IsClientError(err) {
			ev = uc.log.Warn()
		}
		ev.Err(err).Str("op", op).Str("hotel_id", hotelID).Dur("elapsed", elapsed).Msg("conciliación fallida")
		return
	}
	span.SetAttributes(attribute.Int("rows", rows), attribute.Int("warnings", warnings))
	uc.log.Info().
		Str("op", op).
		Str("hotel_id", hotelID).
		Int("rows", rows).
		Int("warnings", warnings).
		Dur("elapsed", elapsed).
		Msg("conciliación calculada")
}

func (uc *ReconcileUseCase) cacheLookup(hit bool) {
	if uc.metrics != nil {
		uc.metrics.CacheLookup(hit)
	}
}

func toOverlayEntries(in []dto.SectorOutflowRequest) []reconciliation.SectorOutflowEntry {
	if len(in) == 0 {
		return nil
	}
	out := make([]reconciliation.SectorOutflowEntry, 0, len(in))
	for _, e := range in {
		out = append(out, reconciliation.SectorOutflowEntry{ProductID: e.ProductID, SectorID: e.SectorID, Outflow: e.Outflow})
	}
	return out
}

func nonNilWarnings(w []domain.DataIntegrityWarning) []domain.DataIntegrityWarning {
	if w == nil {
		return []domain.DataIntegrityWarning{}
	}
	return w
}
