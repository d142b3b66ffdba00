package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"rategrid/internal/core/matrix"
	"rategrid/internal/services/api/commissions/domain"
	"rategrid/internal/services/api/commissions/repo"

	"github.com/shopspring/decimal"
)

// spyStore counts calls per method over an in-memory store
// failAt makes the nth mutating call (1-based) fail; failList makes List fail
type spyStore struct {
	*repo.Memory

	lists, creates, updates, deletes atomic.Int32
	mutations                        atomic.Int32

	mu       sync.Mutex
	failAt   int
	failList bool
	updated  []decimal.Decimal

	inflight, peak atomic.Int32
	gate           chan struct{}
}

var errBoom = errors.New("boom")

func newSpy(seed ...matrix.Record) *spyStore { return &spyStore{Memory: repo.NewMemory(seed...)} }

func (s *spyStore) fail() bool {
	n := int(s.mutations.Add(1))
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failAt > 0 && n == s.failAt
}

func (s *spyStore) List(ctx context.Context, productID string) ([]matrix.Record, error) {
	s.lists.Add(1)
	s.mu.Lock()
	fl := s.failList
	s.mu.Unlock()
	if fl {
		return nil, errBoom
	}
	return s.Memory.List(ctx, productID)
}

func (s *spyStore) Create(ctx context.Context, in matrix.NewRecord) (matrix.Record, error) {
	s.creates.Add(1)
	cur := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		p := s.peak.Load()
		if cur <= p || s.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	if s.gate != nil {
		<-s.gate
	}
	if s.fail() {
		return matrix.Record{}, errBoom
	}
	return s.Memory.Create(ctx, in)
}

func (s *spyStore) Update(ctx context.Context, id string, rate decimal.Decimal) (matrix.Record, error) {
	s.updates.Add(1)
	s.mu.Lock()
	s.updated = append(s.updated, rate)
	s.mu.Unlock()
	if s.fail() {
		return matrix.Record{}, errBoom
	}
	return s.Memory.Update(ctx, id, rate)
}

func (s *spyStore) Delete(ctx context.Context, id string) error {
	s.deletes.Add(1)
	if s.fail() {
		return errBoom
	}
	return s.Memory.Delete(ctx, id)
}

func (s *spyStore) calls() int {
	return int(s.lists.Load() + s.creates.Load() + s.updates.Load() + s.deletes.Load())
}

// memAudit keeps recorded events in memory
type memAudit struct {
	mu  sync.Mutex
	evs []domain.AuditEvent
}

func (a *memAudit) Record(_ context.Context, ev domain.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.evs = append(a.evs, ev)
	return nil
}

func (a *memAudit) Recent(_ context.Context, productID string, limit int) ([]domain.AuditEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.AuditEvent
	for i := len(a.evs) - 1; i >= 0 && len(out) < limit; i-- {
		if a.evs[i].ProductID == productID {
			out = append(out, a.evs[i])
		}
	}
	return out, nil
}
