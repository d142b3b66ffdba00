package matrix

// CellKey addresses one (premium term, year) cell of the matrix
type CellKey struct {
	Term string
	Year int
}

// Slot returns the role-qualified key inside this cell
func (k CellKey) Slot(r Role) SlotKey { return SlotKey{Term: k.Term, Year: k.Year, Role: r} }

// SlotKey addresses one rate: (premium term, year, role)
type SlotKey struct {
	Term string
	Year int
	Role Role
}

// Cell returns the cell the slot belongs to
func (k SlotKey) Cell() CellKey { return CellKey{Term: k.Term, Year: k.Year} }

// less orders slots by term, year, then role
func (k SlotKey) less(o SlotKey) bool {
	if k.Term != o.Term {
		return k.Term < o.Term
	}
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Role < o.Role
}
