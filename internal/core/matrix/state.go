package matrix

// CellState tracks whether a cell is backed by persisted records
type CellState uint8

// Cell states
const (
	// StateUnsavedNew means the cell exists only locally (addYear, phantom terms, edits to empty cells)
	StateUnsavedNew CellState = iota
	// StateSynced means at least one role of the cell is backed by a persisted record
	StateSynced
	// StateDeletePending means a delete cascade for the cell is in flight
	StateDeletePending
)

// String returns the wire name of the state
func (s CellState) String() string {
	switch s {
	case StateUnsavedNew:
		return "unsaved-new"
	case StateSynced:
		return "synced"
	case StateDeletePending:
		return "delete-pending"
	default:
		return "unknown"
	}
}

// Persisted reports whether the store holds records for a cell in this state
func (s CellState) Persisted() bool { return s == StateSynced || s == StateDeletePending }

// MarshalText implements encoding.TextMarshaler
func (s CellState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
