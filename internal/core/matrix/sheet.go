package matrix

import (
	"sort"

	perr "rategrid/internal/platform/errors"

	"github.com/shopspring/decimal"
)

// OpKind is the store request an Op turns into
type OpKind uint8

// Op kinds
const (
	OpCreate OpKind = iota + 1
	OpUpdate
	OpDelete
)

// String returns a short lowercase name
func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is one planned store request
type Op struct {
	Kind OpKind
	Slot SlotKey
	ID   string // target record for update and delete
	Rate decimal.Decimal
}

// NewRecord builds the create payload for a create op
func (o Op) NewRecord(productID string) NewRecord {
	return NewRecord{
		ProductID:   productID,
		PremiumTerm: o.Slot.Term,
		Role:        o.Slot.Role,
		Year:        o.Slot.Year,
		Rate:        o.Rate,
	}
}

// Sheet owns the edit buffer, the pending-change ledger and the last fetched snapshot of one product
// it is not safe for concurrent use
type Sheet struct {
	buf     *Buffer
	ledger  *Ledger
	records []Record
	index   map[SlotKey]Record
}

// NewSheet returns an empty sheet
func NewSheet() *Sheet {
	return &Sheet{buf: NewBuffer(), ledger: NewLedger(), index: map[SlotKey]Record{}}
}

// Buffer exposes the edit buffer for reads
func (s *Sheet) Buffer() *Buffer { return s.buf }

// Ledger exposes the pending-change ledger for reads
func (s *Sheet) Ledger() *Ledger { return s.ledger }

// Reset replaces the snapshot, rebuilds the buffer from it and clears the ledger
func (s *Sheet) Reset(records []Record) LoadStats {
	s.ledger.Clear()
	return s.adopt(records)
}

// Revert discards pending edits and rebuilds the buffer from the last known-good snapshot
func (s *Sheet) Revert() LoadStats { return s.Reset(s.records) }

// Rebase replaces the snapshot and rebuilds the buffer from it, then replays pending edits on top
func (s *Sheet) Rebase(records []Record) LoadStats {
	st := s.adopt(records)
	for _, c := range s.ledger.Snapshot() {
		s.buf.set(c.Slot, c.Rate)
	}
	return st
}

func (s *Sheet) adopt(records []Record) LoadStats {
	s.records = append([]Record(nil), records...)
	s.reindex()
	return s.buf.Initialize(s.records)
}

// reindex maps each slot to its last record, the same winner the buffer shows
func (s *Sheet) reindex() {
	s.index = make(map[SlotKey]Record, len(s.records))
	for _, r := range s.records {
		s.index[r.Slot()] = r
	}
}

// Forget drops records from the snapshot without touching the buffer or the ledger
// used after deletes when the store could not be refetched
func (s *Sheet) Forget(ids []string) {
	if len(ids) == 0 {
		return
	}
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if !gone[r.ID] {
			kept = append(kept, r)
		}
	}
	s.records = kept
	s.reindex()
}

// Lookup returns the persisted record for an exact (term, year, role) triple
func (s *Sheet) Lookup(k SlotKey) (Record, bool) {
	r, ok := s.index[k]
	return r, ok
}

// Get returns the buffered role->rate map for a cell
func (s *Sheet) Get(term string, year int) map[Role]decimal.Decimal { return s.buf.Get(term, year) }

// SetCell writes a rate into the buffer and upserts the matching pending change
func (s *Sheet) SetCell(term string, year int, role Role, rate decimal.Decimal) error {
	if err := CheckCell(year, role, rate); err != nil {
		return err
	}
	k := SlotKey{Term: term, Year: year, Role: role}
	s.buf.set(k, rate)
	s.ledger.Put(k, rate)
	return nil
}

// AddYear stages the smallest unused year of term with every role at 0
func (s *Sheet) AddYear(term string) (int, error) {
	used := map[int]bool{}
	for _, r := range s.records {
		if r.PremiumTerm == term {
			used[r.Year] = true
		}
	}
	for _, y := range s.buf.Years(term) {
		used[y] = true
	}
	year, ok := NextFreeYear(used)
	if !ok {
		return 0, perr.InvalidArgf("premium term %q already uses every year %d..%d", term, MinYear, MaxYear)
	}
	for _, role := range Roles {
		k := SlotKey{Term: term, Year: year, Role: role}
		s.buf.set(k, decimal.Zero)
		s.ledger.Put(k, decimal.Zero)
	}
	return year, nil
}

// IsPhantom reports whether term exists only locally: no persisted cell and no record in the snapshot
func (s *Sheet) IsPhantom(term string) bool {
	if s.buf.HasPersisted(term) {
		return false
	}
	for _, r := range s.records {
		if r.PremiumTerm == term {
			return false
		}
	}
	return true
}

// PlanSave turns the ledger into create and update ops, one per pending change
func (s *Sheet) PlanSave() []Op {
	changes := s.ledger.Snapshot()
	ops := make([]Op, 0, len(changes))
	for _, c := range changes {
		if rec, ok := s.Lookup(c.Slot); ok {
			ops = append(ops, Op{Kind: OpUpdate, Slot: c.Slot, ID: rec.ID, Rate: c.Rate})
			continue
		}
		ops = append(ops, Op{Kind: OpCreate, Slot: c.Slot, Rate: c.Rate})
	}
	return ops
}

// PlanRemoveYear returns one delete per persisted record of (term, year), duplicates included
func (s *Sheet) PlanRemoveYear(term string, year int) []Op {
	return s.planDeletes(func(r Record) bool { return r.PremiumTerm == term && r.Year == year })
}

// PlanRemoveTerm returns one delete per persisted record of term across every year and role
func (s *Sheet) PlanRemoveTerm(term string) []Op {
	return s.planDeletes(func(r Record) bool { return r.PremiumTerm == term })
}

func (s *Sheet) planDeletes(match func(Record) bool) []Op {
	var ops []Op
	for _, r := range s.records {
		if match(r) {
			ops = append(ops, Op{Kind: OpDelete, Slot: r.Slot(), ID: r.ID, Rate: r.Rate})
		}
	}
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Slot.less(ops[j].Slot) })
	return ops
}

// MarkDeletePending flags persisted cells of (term, year) while their deletes are in flight
func (s *Sheet) MarkDeletePending(term string, year int) {
	s.buf.mark(StateDeletePending, func(k CellKey) bool {
		c, _ := s.buf.Cell(k)
		return k.Term == term && k.Year == year && c.State.Persisted()
	})
}

// MarkTermDeletePending flags every persisted cell of term
func (s *Sheet) MarkTermDeletePending(term string) {
	s.buf.mark(StateDeletePending, func(k CellKey) bool {
		c, _ := s.buf.Cell(k)
		return k.Term == term && c.State.Persisted()
	})
}

// PurgeCell removes (term, year) from the buffer and the ledger
func (s *Sheet) PurgeCell(term string, year int) {
	match := func(k CellKey) bool { return k.Term == term && k.Year == year }
	s.buf.purge(match)
	s.ledger.purge(match)
}

// PurgeTerm removes every cell of term from the buffer and the ledger
func (s *Sheet) PurgeTerm(term string) {
	match := func(k CellKey) bool { return k.Term == term }
	s.buf.purge(match)
	s.ledger.purge(match)
}
