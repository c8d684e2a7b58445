// Package stockcount registra y consulta conteos físicos terminados.
package stockcount

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/hotel-inventario-api/internal/application/dto"
	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/repository"
	"github.com/jhoicas/hotel-inventario-api/pkg/logger"
)

// UseCase registro de conteos. Los conteos son inmutables: corregir es registrar otro.
type UseCase struct {
	counts   repository.StockCountRepository
	products repository.ProductRepository
	sectors  repository.SectorRepository
	log      *logger.Logger
	now      func() time.Time
	newID    func() string
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	counts repository.StockCountRepository,
	products repository.ProductRepository,
	sectors repository.SectorRepository,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		counts:   counts,
		products: products,
		sectors:  sectors,
		log:      log,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// RecordCount registra un conteo terminado del hotel (o de un sector si SectorID no es vacío).
func (uc *UseCase) RecordCount(ctx context.Context, hotelID, userID string, in dto.CreateStockCountRequest) (*dto.StockCountResponse, error) {
	if len(in.Items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Message: "se requiere al menos un ítem"}
	}

	products, err := uc.products.ListActiveByHotel(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("stockcount: obtener catálogo: %w", err)
	}
	sectors, err := uc.sectors.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("stockcount: obtener sectores: %w", err)
	}
	active := make(map[string]bool, len(products))
	for _, p := range products {
		active[p.ID] = true
	}
	known := make(map[string]bool, len(sectors))
	for _, s := range sectors {
		known[s.ID] = true
	}
	if in.SectorID != entity.MainWarehouse && !known[in.SectorID] {
		return nil, &domain.ValidationError{Field: "sector_id", Message: "sector desconocido: " + in.SectorID}
	}

	count := &entity.StockCount{
		ID:         uc.newID(),
		HotelID:    hotelID,
		SectorID:   in.SectorID,
		FinishedAt: uc.now().UTC(),
		CreatedBy:  userID,
		Items:      make([]entity.CountedItem, 0, len(in.Items)),
	}
	type key struct{ product, sector string }
	seen := make(map[key]bool, len(in.Items))
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		sectorID := it.SectorID
		if !count.IsHotelWide() {
			if sectorID == "" {
				sectorID = count.SectorID
			}
			if sectorID != count.SectorID {
				return nil, &domain.ValidationError{Field: field + ".sector_id", Message: "el ítem no pertenece al sector del conteo"}
			}
		} else if sectorID != entity.MainWarehouse && !known[sectorID] {
			return nil, &domain.ValidationError{Field: field + ".sector_id", Message: "sector desconocido: " + sectorID}
		}
		if !active[it.ProductID] {
			return nil, &domain.ValidationError{Field: field + ".product_id", Message: "producto fuera del catálogo activo: " + it.ProductID}
		}
		if !it.Quantity.Valid {
			return nil, &domain.ValidationError{Field: field + ".quantity", Message: "es obligatoria"}
		}
		if it.Quantity.Decimal.IsNegative() {
			return nil, &domain.ValidationError{Field: field + ".quantity", Message: "no puede ser negativa"}
		}
		k := key{it.ProductID, sectorID}
		if seen[k] {
			return nil, &domain.ValidationError{Field: field, Message: "producto repetido en la misma ubicación"}
		}
		seen[k] = true
		count.Items = append(count.Items, entity.CountedItem{ProductID: it.ProductID, SectorID: sectorID, Quantity: it.Quantity.Decimal})
	}

	if err := uc.counts.Create(ctx, count); err != nil {
		return nil, fmt.Errorf("stockcount: guardar: %w", err)
	}
	uc.log.Info().
		Str("hotel_id", hotelID).
		Str("count_id", count.ID).
		Str("sector_id", count.SectorID).
		Int("items", len(count.Items)).
		Msg("conteo registrado")
	return toResponse(count), nil
}

// List lista los conteos terminados del hotel, del más reciente al más antiguo, sin ítems.
func (uc *UseCase) List(ctx context.Context, hotelID string, in dto.ListStockCountsRequest) ([]dto.StockCountResponse, error) {
	var scope *string
	switch in.Scope {
	case "":
	case "hotel":
		hotelWide := entity.MainWarehouse
		scope = &hotelWide
	case "sector":
		if in.SectorID == "" {
			return nil, &domain.ValidationError{Field: "sector_id", Message: "requerido con scope=sector"}
		}
		sectorID := in.SectorID
		scope = &sectorID
	default:
		return nil, &domain.ValidationError{Field: "scope", Message: "alcance desconocido: " + in.Scope}
	}
	list, err := uc.counts.ListFinished(ctx, hotelID, scope)
	if err != nil {
		return nil, fmt.Errorf("stockcount: listar: %w", err)
	}
	out := make([]dto.StockCountResponse, 0, len(list))
	for i := range list {
		out = append(out, *toResponse(&list[i]))
	}
	return out, nil
}

// Get devuelve un conteo con sus ítems.
func (uc *UseCase) Get(ctx context.Context, hotelID, countID string) (*dto.StockCountResponse, error) {
	c, err := uc.counts.GetByID(ctx, countID)
	if err != nil {
		return nil, fmt.Errorf("stockcount: obtener: %w", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if c.HotelID != hotelID {
		return nil, domain.ErrForbidden
	}
	return toResponse(c), nil
}

func toResponse(c *entity.StockCount) *dto.StockCountResponse {
	out := &dto.StockCountResponse{
		ID:         c.ID,
		HotelID:    c.HotelID,
		SectorID:   c.SectorID,
		FinishedAt: c.FinishedAt,
		CreatedBy:  c.CreatedBy,
	}
	for _, it := range c.Items {
		out.Items = append(out.Items, dto.CountedItemResponse{ProductID: it.ProductID, SectorID: it.SectorID, Quantity: it.Quantity})
	}
	return out
}
