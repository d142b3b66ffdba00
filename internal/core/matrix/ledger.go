package matrix

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Change is one pending edit: the intended rate for a slot
type Change struct {
	Slot SlotKey
	Rate decimal.Decimal
}

// Ledger records the slots modified since edit mode began, last write wins
type Ledger struct {
	m map[SlotKey]decimal.Decimal
}

// NewLedger returns an empty ledger
func NewLedger() *Ledger { return &Ledger{m: map[SlotKey]decimal.Decimal{}} }

// Put records (or overwrites) the intended rate for k
func (l *Ledger) Put(k SlotKey, rate decimal.Decimal) { l.m[k] = rate }

// Get returns the pending rate for k
func (l *Ledger) Get(k SlotKey) (decimal.Decimal, bool) {
	v, ok := l.m[k]
	return v, ok
}

// Len returns the number of pending changes
func (l *Ledger) Len() int { return len(l.m) }

// Snapshot returns the pending changes ordered by term, year, role
func (l *Ledger) Snapshot() []Change {
	out := make([]Change, 0, len(l.m))
	for k, v := range l.m {
		out = append(out, Change{Slot: k, Rate: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot.less(out[j].Slot) })
	return out
}

// Clear drops every pending change
func (l *Ledger) Clear() { l.m = map[SlotKey]decimal.Decimal{} }

func (l *Ledger) purge(match func(CellKey) bool) {
	for k := range l.m {
		if match(k.Cell()) {
			delete(l.m, k)
		}
	}
}
