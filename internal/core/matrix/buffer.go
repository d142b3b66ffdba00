package matrix

import "github.com/shopspring/decimal"

// Cell is the buffered content of one (term, year) pair
type Cell struct {
	Rates map[Role]decimal.Decimal
	// IDs holds the persisted record id per role; for duplicate slots the last record wins, like Rates
	IDs   map[Role]string
	State CellState
}

func newCell(state CellState) *Cell {
	return &Cell{
		Rates: make(map[Role]decimal.Decimal, len(Roles)),
		IDs:   make(map[Role]string, len(Roles)),
		State: state,
	}
}

// LoadStats reports what Initialize did with its input
type LoadStats struct {
	Loaded     int
	Dropped    []Record // year outside MinYear..MaxYear
	Duplicates []Record // second and later records for an already seen slot
}

// Buffer is the in-memory mirror of every displayed cell
// it is not safe for concurrent use; the owning session serializes access
type Buffer struct {
	cells map[CellKey]*Cell
}

// NewBuffer returns an empty buffer
func NewBuffer() *Buffer { return &Buffer{cells: map[CellKey]*Cell{}} }

// Initialize rebuilds the buffer from a flat record list
// records with an out-of-range year are dropped; for duplicate slots the last rate wins
func (b *Buffer) Initialize(records []Record) LoadStats {
	b.cells = make(map[CellKey]*Cell, len(records)/len(Roles)+1)
	var st LoadStats
	for _, r := range records {
		if !ValidYear(r.Year) {
			st.Dropped = append(st.Dropped, r)
			continue
		}
		k := CellKey{Term: r.PremiumTerm, Year: r.Year}
		c, ok := b.cells[k]
		if !ok {
			c = newCell(StateSynced)
			b.cells[k] = c
		}
		c.State = StateSynced
		c.Rates[r.Role] = r.Rate
		if _, seen := c.IDs[r.Role]; seen {
			st.Duplicates = append(st.Duplicates, r)
		}
		c.IDs[r.Role] = r.ID
		st.Loaded++
	}
	return st
}

// Get returns a copy of the role->rate map for a cell (empty when absent)
func (b *Buffer) Get(term string, year int) map[Role]decimal.Decimal {
	c, ok := b.cells[CellKey{Term: term, Year: year}]
	if !ok {
		return map[Role]decimal.Decimal{}
	}
	out := make(map[Role]decimal.Decimal, len(c.Rates))
	for r, v := range c.Rates {
		out[r] = v
	}
	return out
}

// Cell returns the buffered cell for k
func (b *Buffer) Cell(k CellKey) (*Cell, bool) {
	c, ok := b.cells[k]
	return c, ok
}

// set writes one rate, creating an unsaved cell when the key is new
func (b *Buffer) set(k SlotKey, rate decimal.Decimal) {
	ck := k.Cell()
	c, ok := b.cells[ck]
	if !ok {
		c = newCell(StateUnsavedNew)
		b.cells[ck] = c
	}
	c.Rates[k.Role] = rate
}

// Years returns the buffered years for term (unordered)
func (b *Buffer) Years(term string) []int {
	var out []int
	for k := range b.cells {
		if k.Term == term {
			out = append(out, k.Year)
		}
	}
	return out
}

// Terms returns every distinct term in the buffer (unordered)
func (b *Buffer) Terms() []string {
	seen := map[string]struct{}{}
	var out []string
	for k := range b.cells {
		if _, ok := seen[k.Term]; ok {
			continue
		}
		seen[k.Term] = struct{}{}
		out = append(out, k.Term)
	}
	return out
}

// HasPersisted reports whether any cell under term is backed by the store
func (b *Buffer) HasPersisted(term string) bool {
	for k, c := range b.cells {
		if k.Term == term && c.State.Persisted() {
			return true
		}
	}
	return false
}

// mark sets the state of every cell matching the predicate
func (b *Buffer) mark(state CellState, match func(CellKey) bool) {
	for k, c := range b.cells {
		if match(k) {
			c.State = state
		}
	}
}

// purge removes every cell matching the predicate
func (b *Buffer) purge(match func(CellKey) bool) {
	for k := range b.cells {
		if match(k) {
			delete(b.cells, k)
		}
	}
}

// Len returns the number of buffered cells
func (b *Buffer) Len() int { return len(b.cells) }
