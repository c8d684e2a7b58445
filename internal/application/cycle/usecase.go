// Package cycle cierra y consulta los ciclos de descuento de utensilios.
package cycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
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

var tracer = otel.Tracer("hotel-inventario/cycle")

// TxRunner ejecuta fn dentro de la transacción de cierre del hotel.
type TxRunner interface {
	Run(ctx context.Context, hotelID string, fn func(w repository.CycleWriter) error) error
}

// DocumentGenerator genera el documento imprimible de un ciclo cerrado.
type DocumentGenerator interface {
	GenerateCycleDocument(ctx context.Context, cycle *dto.DiscountCycleResponse) ([]byte, error)
}

// Recorder métricas del cierre.
type Recorder interface {
	ObserveCycleClose(err error, elapsed time.Duration)
}

// Deps dependencias del caso de uso. Documents y Metrics son opcionales.
type Deps struct {
	Products  repository.ProductRepository
	Cycles    repository.DiscountCycleRepository
	Movements repository.MovementRepository
	TxRunner  TxRunner
	Documents DocumentGenerator
	Metrics   Recorder
	Logger    *logger.Logger
	Now       func() time.Time
	NewID     func() string
}

// UseCase cierre e historial de ciclos de descuento.
type UseCase struct {
	products  repository.ProductRepository
	cycles    repository.DiscountCycleRepository
	movements repository.MovementRepository
	txRunner  TxRunner
	documents DocumentGenerator
	metrics   Recorder
	log       *logger.Logger
	now       func() time.Time
	newID     func() string
}

// NewUseCase construye el caso de uso.
func NewUseCase(d Deps) *UseCase {
	uc := &UseCase{
		products:  d.Products,
		cycles:    d.Cycles,
		movements: d.Movements,
		txRunner:  d.TxRunner,
		documents: d.Documents,
		metrics:   d.Metrics,
		log:       d.Logger,
		now:       d.Now,
		newID:     d.NewID,
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.newID == nil {
		uc.newID = func() string { return uuid.New().String() }
	}
	return uc
}

// CloseCycle liquida y persiste el ciclo de descuento del hotel.
//
// Retorna:
//   - *domain.IncompleteSubmissionError si falta el conteo de algún producto controlado o hay cantidades negativas.
//   - domain.ErrInvalidInput si se envían productos desconocidos, repetidos o no controlados.
//   - domain.ErrConcurrentCloseConflict si otro cierre del mismo hotel terminó primero (reintentable).
func (uc *UseCase) CloseCycle(ctx context.Context, hotelID, userID string, in dto.CloseCycleRequest) (*dto.DiscountCycleResponse, error) {
	ctx, span := tracer.Start(ctx, "cycle.CloseCycle", trace.WithAttributes(
		attribute.String("hotel_id", hotelID),
		attribute.Int("counts", len(in.Counts)),
	))
	defer span.End()

	began := time.Now()
	out, err := uc.closeCycle(ctx, hotelID, userID, in)
	elapsed := time.Since(began)
	if uc.metrics != nil {
		uc.metrics.ObserveCycleClose(err, elapsed)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ev := uc.log.Error()
		if domain.IsClientError(err) || domain.IsRetryable(err) {
			ev = uc.log.Warn()
		}
		ev.Err(err).Str("hotel_id", hotelID).Str("user_id", userID).Dur("elapsed", elapsed).Msg("cierre de ciclo rechazado")
		return nil, err
	}
	span.SetAttributes(attribute.String("cycle_id", out.ID), attribute.Int64("sequence", out.Sequence))
	uc.log.Info().
		Str("hotel_id", hotelID).
		Str("cycle_id", out.ID).
		Int64("sequence", out.Sequence).
		Str("total_discount", out.TotalDiscountValue.StringFixed(2)).
		Int("items", len(out.Items)).
		Dur("elapsed", elapsed).
		Msg("ciclo de descuento cerrado")
	return out, nil
}

func (uc *UseCase) closeCycle(ctx context.Context, hotelID, userID string, in dto.CloseCycleRequest) (*dto.DiscountCycleResponse, error) {
	if hotelID == "" || userID == "" {
		return nil, &domain.ValidationError{Field: "hotel_id/user_id", Message: "requeridos"}
	}
	if len(in.Counts) == 0 {
		return nil, &domain.ValidationError{Field: "counts", Message: "se requiere al menos un conteo"}
	}
	closedAt := uc.now().UTC()

	// ── 1. Cargar línea base, catálogo y reposiciones ─────────────────────────
	baseline, err := uc.cycles.GetPriorBaseline(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("cycle: obtener línea base: %w", err)
	}
	var (
		products []entity.Product
		restocks []entity.Restock
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = uc.products.ListActiveByHotel(gctx, hotelID)
		if err != nil {
			return fmt.Errorf("cycle: obtener catálogo: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		restocks, err = uc.movements.ListRestocks(gctx, hotelID, baseline.LastClosedAt, closedAt)
		if err != nil {
			return fmt.Errorf("cycle: obtener reposiciones: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// ── 2. Liquidar (puro) ────────────────────────────────────────────────────
	entries := make([]reconciliation.CycleEntry, 0, len(in.Counts))
	for _, c := range in.Counts {
		entries = append(entries, reconciliation.CycleEntry{
			ProductID:           c.ProductID,
			CurrentQuantity:     c.CurrentQuantity,
			GuestAttributedLoss: c.GuestAttributedLoss,
		})
	}
	settled, err := reconciliation.Settle(reconciliation.SettlementInput{
		HotelID:  hotelID,
		UserID:   userID,
		ClosedAt: closedAt,
		Products: products,
		Baseline: baseline,
		Restocks: restocks,
		Entries:  entries,
	})
	if err != nil {
		return nil, err
	}
	if len(settled.Items) == 0 {
		return nil, &domain.ValidationError{Field: "counts", Message: "el hotel no tiene productos controlados por ciclos"}
	}

	// ── 3. Persistir con compare-and-swap sobre la cabecera del hotel ─────────
	err = uc.txRunner.Run(ctx, hotelID, func(w repository.CycleWriter) error {
		lastID, lastSeq, err := w.LockHead(ctx, hotelID)
		if err != nil {
			return fmt.Errorf("cycle: bloquear cabecera: %w", err)
		}
		if lastID != baseline.LastCycleID {
			return domain.ErrConcurrentCloseConflict
		}
		settled.ID = uc.newID()
		settled.Sequence = lastSeq + 1
		settled.PreviousCycleID = lastID
		return w.Commit(ctx, settled)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(settled, productNames(products)), nil
}

// List devuelve el historial de ciclos del hotel, del más reciente al más antiguo.
func (uc *UseCase) List(ctx context.Context, hotelID string, page dto.PageRequest) (*dto.DiscountCycleListResponse, error) {
	page.DefaultPage()
	list, err := uc.cycles.ListByHotel(ctx, hotelID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("cycle: listar: %w", err)
	}
	out := &dto.DiscountCycleListResponse{
		Items: make([]dto.DiscountCycleResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for i := range list {
		out.Items = append(out.Items, *toResponse(&list[i], nil))
	}
	return out, nil
}

// Get devuelve un ciclo con su desglose.
func (uc *UseCase) Get(ctx context.Context, hotelID, cycleID string) (*dto.DiscountCycleResponse, error) {
	c, err := uc.cycles.GetByID(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("cycle: obtener: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if c.HotelID != hotelID {
		return nil, domain.ErrForbidden
	}
	products, err := uc.products.ListActiveByHotel(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("cycle: obtener catálogo: %w", err)
	}
	return toResponse(c, productNames(products)), nil
}

// Document genera el PDF del ciclo. Devuelve los bytes y el nombre de archivo sugerido.
func (uc *UseCase) Document(ctx context.Context, hotelID, cycleID string) ([]byte, string, error) {
	if uc.documents == nil {
		return nil, "", fmt.Errorf("cycle: generador de documentos no configurado")
	}
	c, err := uc.Get(ctx, hotelID, cycleID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.documents.GenerateCycleDocument(ctx, c)
	if err != nil {
		return nil, "", fmt.Errorf("cycle: generar documento: %w", err)
	}
	return pdf, fmt.Sprintf("ciclo-descuento-%d.pdf", c.Sequence), nil
}

func productNames(products []entity.Product) map[string]string {
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names
}

func toResponse(c *entity.DiscountCycle, names map[string]string) *dto.DiscountCycleResponse {
	out := &dto.DiscountCycleResponse{
		ID:                 c.ID,
		HotelID:            c.HotelID,
		Sequence:           c.Sequence,
		PreviousCycleID:    c.PreviousCycleID,
		ClosedAt:           c.ClosedAt,
		ClosedByUserID:     c.ClosedByUserID,
		TotalDiscountValue: c.TotalDiscountValue,
	}
	if len(c.Items) > 0 {
		out.Items = make([]dto.DiscountCycleItemResponse, 0, len(c.Items))
	}
	for _, it := range c.Items {
		out.Items = append(out.Items, dto.DiscountCycleItemResponse{
			ProductID:        it.ProductID,
			ProductName:      names[it.ProductID],
			PreviousCount:    it.PreviousCount,
			RestocksInPeriod: it.RestocksInPeriod,
			AttributedLoss:   it.AttributedLoss,
			FinalCount:       it.FinalCount,
			ExpectedQuantity: it.ExpectedQuantity,
			UnaccountedLoss:  it.UnaccountedLoss,
			UnitValue:        it.UnitValue,
			DiscountValue:    it.DiscountValue,
		})
	}
	return out
}
