// Package memory implementa los puertos de persistencia en memoria.
// Se usa con STORE_DRIVER=memory (desarrollo local) y en los tests de casos de uso.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.SectorRepository        = (*SectorRepo)(nil)
	_ repository.StockCountRepository    = (*StockCountRepo)(nil)
	_ repository.MovementRepository      = (*MovementRepo)(nil)
	_ repository.DiscountCycleRepository = (*DiscountCycleRepo)(nil)
)

type cycleHead struct {
	lastCycleID  string
	lastSequence int64
	lastClosedAt time.Time
}

// Store guarda todo el estado bajo un único RWMutex; los repositorios del paquete son vistas sobre él.
// hotelLock serializa los cierres de ciclo por hotel, como el FOR UPDATE de PostgreSQL.
type Store struct {
	mu sync.RWMutex

	products   map[string][]entity.Product // por hotel
	sectors    map[string][]entity.Sector  // por hotel
	counts     map[string]entity.StockCount
	countOrder []string

	purchases  []entity.Purchase
	deliveries []entity.Delivery
	transfers  []entity.Transfer
	restocks   []entity.Restock

	cycles     map[string]entity.DiscountCycle
	cycleOrder map[string][]string // por hotel, en orden de cierre
	heads      map[string]cycleHead
	baselines  map[string]map[string]decimal.Decimal // hotel -> producto -> cantidad

	closeMu   sync.Mutex
	hotelLock map[string]*sync.Mutex
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   map[string][]entity.Product{},
		sectors:    map[string][]entity.Sector{},
		counts:     map[string]entity.StockCount{},
		cycles:     map[string]entity.DiscountCycle{},
		cycleOrder: map[string][]string{},
		heads:      map[string]cycleHead{},
		baselines:  map[string]map[string]decimal.Decimal{},
		hotelLock:  map[string]*sync.Mutex{},
	}
}

// ── Carga de datos de referencia (catálogo y movimientos son de otros módulos) ──

// AddProducts agrega productos al catálogo de su hotel.
func (s *Store) AddProducts(products ...entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		s.products[p.HotelID] = append(s.products[p.HotelID], p)
	}
}

// AddSectors agrega sectores a su hotel.
func (s *Store) AddSectors(sectors ...entity.Sector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sec := range sectors {
		s.sectors[sec.HotelID] = append(s.sectors[sec.HotelID], sec)
	}
}

// AddMovements agrega movimientos al libro.
func (s *Store) AddMovements(m entity.Movements) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases = append(s.purchases, m.Purchases...)
	s.deliveries = append(s.deliveries, m.Deliveries...)
	s.transfers = append(s.transfers, m.Transfers...)
	s.restocks = append(s.restocks, m.Restocks...)
}

// ── Adaptadores por puerto (comparten el mismo Store) ──

type ProductRepo struct{ s *Store }

func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

type SectorRepo struct{ s *Store }

func NewSectorRepository(s *Store) *SectorRepo { return &SectorRepo{s: s} }

type StockCountRepo struct{ s *Store }

func NewStockCountRepository(s *Store) *StockCountRepo { return &StockCountRepo{s: s} }

type MovementRepo struct{ s *Store }

func NewMovementRepository(s *Store) *MovementRepo { return &MovementRepo{s: s} }

func (r *ProductRepo) ListActiveByHotel(_ context.Context, hotelID string) ([]entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Product, 0, len(r.s.products[hotelID]))
	for _, p := range r.s.products[hotelID] {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *SectorRepo) ListByHotel(_ context.Context, hotelID string) ([]entity.Sector, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]entity.Sector(nil), r.s.sectors[hotelID]...), nil
}

func (r *StockCountRepo) GetByID(_ context.Context, countID string) (*entity.StockCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.counts[countID]
	if !ok {
		return nil, nil
	}
	c.Items = append([]entity.CountedItem(nil), c.Items...)
	return &c, nil
}

func (r *StockCountRepo) ListFinished(_ context.Context, hotelID string, sectorID *string) ([]entity.StockCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.StockCount, 0)
	for _, id := range r.s.countOrder {
		c := r.s.counts[id]
		if c.HotelID != hotelID || c.FinishedAt.IsZero() {
			continue
		}
		if sectorID != nil && c.SectorID != *sectorID {
			continue
		}
		c.Items = nil
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FinishedAt.After(out[j].FinishedAt) })
	return out, nil
}

func (r *StockCountRepo) Create(_ context.Context, count *entity.StockCount) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.counts[count.ID]; exists {
		return domain.ErrDuplicate
	}
	c := *count
	c.Items = append([]entity.CountedItem(nil), count.Items...)
	r.s.counts[c.ID] = c
	r.s.countOrder = append(r.s.countOrder, c.ID)
	return nil
}

func inRange(t, from, to time.Time) bool {
	return t.After(from) && !t.After(to)
}

func (r *MovementRepo) ListPurchases(_ context.Context, hotelID string, from, to time.Time) ([]entity.Purchase, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entity.Purchase
	for _, p := range r.s.purchases {
		if p.HotelID == hotelID && inRange(p.OccurredAt, from, to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *MovementRepo) ListFulfilledDeliveries(_ context.Context, hotelID string, from, to time.Time) ([]entity.Delivery, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entity.Delivery
	for _, d := range r.s.deliveries {
		if d.HotelID == hotelID && d.Status == entity.DeliveryStatusFulfilled && inRange(d.OccurredAt, from, to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *MovementRepo) ListTransfers(_ context.Context, hotelID string, from, to time.Time) ([]entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entity.Transfer
	for _, t := range r.s.transfers {
		if (t.SourceHotelID == hotelID || t.DestinationHotelID == hotelID) && inRange(t.OccurredAt, from, to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *MovementRepo) ListRestocks(_ context.Context, hotelID string, from, to time.Time) ([]entity.Restock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entity.Restock
	for _, rs := range r.s.restocks {
		if rs.HotelID == hotelID && inRange(rs.OccurredAt, from, to) {
			out = append(out, rs)
		}
	}
	return out, nil
}
