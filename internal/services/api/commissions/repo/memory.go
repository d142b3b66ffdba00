package repo

import (
	"context"
	"sort"
	"sync"

	"rategrid/internal/core/matrix"
	perr "rategrid/internal/platform/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Memory is an in-process commission store keyed by record id
// it satisfies domain.Store and is safe for concurrent use
type Memory struct {
	mu    sync.RWMutex
	rows  map[string]matrix.Record
	order []string
}

// NewMemory returns a store seeded with records; records without an id get one
func NewMemory(seed ...matrix.Record) *Memory {
	m := &Memory{rows: map[string]matrix.Record{}}
	for _, r := range seed {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		m.rows[r.ID] = r
		m.order = append(m.order, r.ID)
	}
	return m
}

// List returns the records of productID in insertion order
func (m *Memory) List(_ context.Context, productID string) ([]matrix.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]matrix.Record, 0, len(m.order))
	for _, id := range m.order {
		if r := m.rows[id]; r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Create stores a new record under a fresh id
func (m *Memory) Create(_ context.Context, in matrix.NewRecord) (matrix.Record, error) {
	r := matrix.Record{
		ID:          uuid.NewString(),
		ProductID:   in.ProductID,
		PremiumTerm: in.PremiumTerm,
		Role:        in.Role,
		Year:        in.Year,
		Rate:        in.Rate,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ID] = r
	m.order = append(m.order, r.ID)
	return r, nil
}

// Update replaces the rate of an existing record
func (m *Memory) Update(_ context.Context, id string, rate decimal.Decimal) (matrix.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return matrix.Record{}, perr.NotFoundf("commission %q not found", id)
	}
	r.Rate = rate
	m.rows[id] = r
	return r, nil
}

// Delete removes a record
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return perr.NotFoundf("commission %q not found", id)
	}
	delete(m.rows, id)
	for j, v := range m.order {
		if v == id {
			m.order = append(m.order[:j], m.order[j+1:]...)
			break
		}
	}
	return nil
}

// Snapshot returns every record ordered by product, term, year, role, then id
func (m *Memory) Snapshot() []matrix.Record {
	m.mu.RLock()
	out := make([]matrix.Record, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ProductID != b.ProductID:
			return a.ProductID < b.ProductID
		case a.PremiumTerm != b.PremiumTerm:
			return a.PremiumTerm < b.PremiumTerm
		case a.Year != b.Year:
			return a.Year < b.Year
		case a.Role != b.Role:
			return a.Role < b.Role
		}
		return a.ID < b.ID
	})
	return out
}
