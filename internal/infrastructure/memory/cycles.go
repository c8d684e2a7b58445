package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/hotel-inventario-api/internal/domain"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/entity"
	"github.com/jhoicas/hotel-inventario-api/internal/domain/repository"
)

// ── DiscountCycleRepository ──

type DiscountCycleRepo struct{ s *Store }

func NewDiscountCycleRepository(s *Store) *DiscountCycleRepo { return &DiscountCycleRepo{s: s} }

func (r *DiscountCycleRepo) GetPriorBaseline(_ context.Context, hotelID string) (*entity.CycleBaseline, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	head := r.s.heads[hotelID]
	quantities := make(map[string]decimal.Decimal, len(r.s.baselines[hotelID]))
	for id, q := range r.s.baselines[hotelID] {
		quantities[id] = q
	}
	return &entity.CycleBaseline{
		HotelID:      hotelID,
		LastCycleID:  head.lastCycleID,
		LastSequence: head.lastSequence,
		LastClosedAt: head.lastClosedAt,
		Quantities:   quantities,
	}, nil
}

func (r *DiscountCycleRepo) ListByHotel(_ context.Context, hotelID string, limit, offset int) ([]entity.DiscountCycle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := r.s.cycleOrder[hotelID]
	out := make([]entity.DiscountCycle, 0)
	for i := len(ids) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		c := r.s.cycles[ids[i]]
		c.Items = nil
		out = append(out, c)
	}
	return out, nil
}

func (r *DiscountCycleRepo) GetByID(_ context.Context, cycleID string) (*entity.DiscountCycle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cycles[cycleID]
	if !ok {
		return nil, nil
	}
	c.Items = append([]entity.DiscountCycleItem(nil), c.Items...)
	return &c, nil
}

// ── Transacción de cierre ──

func (s *Store) lockFor(hotelID string) *sync.Mutex {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	m, ok := s.hotelLock[hotelID]
	if !ok {
		m = &sync.Mutex{}
		s.hotelLock[hotelID] = m
	}
	return m
}

// CycleTxRunner ejecuta cierres de ciclo sobre el Store.
type CycleTxRunner struct{ s *Store }

func NewCycleTxRunner(s *Store) *CycleTxRunner { return &CycleTxRunner{s: s} }

// Run ejecuta fn con el cierre del hotel serializado. Lo que fn confirme con Commit
// se aplica solo si fn termina sin error.
func (t *CycleTxRunner) Run(ctx context.Context, hotelID string, fn func(w repository.CycleWriter) error) error {
	s := t.s
	lock := s.lockFor(hotelID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	w := &cycleWriter{store: s, hotelID: hotelID}
	if err := fn(w); err != nil {
		return err
	}
	if w.staged == nil {
		return nil
	}
	return s.apply(w.staged)
}

func (s *Store) apply(c *entity.DiscountCycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	head := s.heads[c.HotelID]
	if head.lastCycleID != c.PreviousCycleID || head.lastSequence+1 != c.Sequence {
		return domain.ErrConcurrentCloseConflict
	}
	if _, exists := s.cycles[c.ID]; exists {
		return domain.ErrConcurrentCloseConflict
	}
	stored := *c
	stored.Items = append([]entity.DiscountCycleItem(nil), c.Items...)
	s.cycles[c.ID] = stored
	s.cycleOrder[c.HotelID] = append(s.cycleOrder[c.HotelID], c.ID)
	s.heads[c.HotelID] = cycleHead{lastCycleID: c.ID, lastSequence: c.Sequence, lastClosedAt: c.ClosedAt}

	base := s.baselines[c.HotelID]
	if base == nil {
		base = map[string]decimal.Decimal{}
		s.baselines[c.HotelID] = base
	}
	for _, it := range c.Items {
		base[it.ProductID] = it.FinalCount
	}
	return nil
}

type cycleWriter struct {
	store   *Store
	hotelID string
	locked  bool
	staged  *entity.DiscountCycle
}

func (w *cycleWriter) LockHead(_ context.Context, hotelID string) (string, int64, error) {
	if hotelID != w.hotelID {
		return "", 0, fmt.Errorf("memory: la transacción es del hotel %s, no de %s", w.hotelID, hotelID)
	}
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()
	head := w.store.heads[hotelID]
	w.locked = true
	return head.lastCycleID, head.lastSequence, nil
}

func (w *cycleWriter) Commit(_ context.Context, cycle *entity.DiscountCycle) error {
	if !w.locked {
		return fmt.Errorf("memory: Commit sin LockHead")
	}
	if cycle.HotelID != w.hotelID {
		return fmt.Errorf("memory: ciclo de otro hotel")
	}
	if w.staged != nil {
		return fmt.Errorf("memory: un solo ciclo por transacción")
	}
	w.staged = cycle
	return nil
}
