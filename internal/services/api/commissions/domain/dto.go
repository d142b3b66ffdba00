package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission is the wire form of one persisted rate
type Commission struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	PremiumTerm string          `json:"premium_term"`
	Role        int             `json:"role"`
	RoleName    string          `json:"role_name"`
	Year        int             `json:"year"`
	Rate        decimal.Decimal `json:"rate"`
}

// ListInput selects the commissions of one product
type ListInput struct {
	ProductID string `json:"product_id" validate:"required,max=64" example:"prod-42"`
}

// CreateInput creates one commission record
type CreateInput struct {
	ProductID   string          `json:"product_id" validate:"required,max=64" example:"prod-42"`
	PremiumTerm string          `json:"premium_term" validate:"required,max=120" example:"10yr"`
	Role        int             `json:"role" validate:"commission_role" example:"3"`
	Year        int             `json:"year" validate:"policy_year" example:"1"`
	Rate        decimal.Decimal `json:"rate" validate:"commission_rate" swaggertype:"string" example:"7.5"`
}

// UpdateInput replaces the rate of one record
type UpdateInput struct {
	ID   string          `json:"id" validate:"required,max=64"`
	Rate decimal.Decimal `json:"rate" validate:"commission_rate" swaggertype:"string" example:"7.5"`
}

// DeleteInput removes one record
type DeleteInput struct {
	ID string `json:"id" validate:"required,max=64"`
}

// HistoryInput selects recent audit events of one product
type HistoryInput struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Limit     int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500" example:"50"`
}

// OpenSessionInput opens a matrix edit session for one product
type OpenSessionInput struct {
	ProductID string `json:"product_id" validate:"required,max=64" example:"prod-42"`
}

// SessionInput addresses an open session
type SessionInput struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

// SetCellInput writes one rate into the edit buffer
type SetCellInput struct {
	SessionID   string          `json:"session_id" validate:"required,uuid"`
	PremiumTerm string          `json:"premium_term" validate:"required,max=120"`
	Year        int             `json:"year" validate:"policy_year"`
	Role        int             `json:"role" validate:"commission_role"`
	Rate        decimal.Decimal `json:"rate" validate:"commission_rate" swaggertype:"string"`
}

// TermInput addresses one premium term of a session
type TermInput struct {
	SessionID   string `json:"session_id" validate:"required,uuid"`
	PremiumTerm string `json:"premium_term" validate:"required,max=120"`
}

// YearInput addresses one (term, year) cell of a session
type YearInput struct {
	SessionID   string `json:"session_id" validate:"required,uuid"`
	PremiumTerm string `json:"premium_term" validate:"required,max=120"`
	Year        int    `json:"year" validate:"policy_year"`
}

// DraftYearInput addresses one section of the session draft
type DraftYearInput struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Year      int    `json:"year" validate:"policy_year"`
}

// RenumberInput moves a draft section to another year
type RenumberInput struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	From      int    `json:"from" validate:"policy_year"`
	To        int    `json:"to" validate:"policy_year"`
}

// CopyRatesInput clones the rates of one draft section onto another
type CopyRatesInput struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Source    int    `json:"source" validate:"policy_year"`
	Target    int    `json:"target" validate:"policy_year,nefield=Source"`
}

// DraftRateInput writes one rate inside a draft section
type DraftRateInput struct {
	SessionID string          `json:"session_id" validate:"required,uuid"`
	Year      int             `json:"year" validate:"policy_year"`
	Role      int             `json:"role" validate:"commission_role"`
	Rate      decimal.Decimal `json:"rate" validate:"commission_rate" swaggertype:"string"`
}

// CommitInput commits the session draft
// IncludeZero answers the zero-rate question; it is required only when the draft holds zero rates
type CommitInput struct {
	SessionID   string `json:"session_id" validate:"required,uuid"`
	IncludeZero *bool  `json:"include_zero,omitempty"`
}

// RateCell is one role column of a row
// Rate is nil when the role has no value in the buffer
type RateCell struct {
	Role     int              `json:"role"`
	RoleName string           `json:"role_name"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
	RecordID string           `json:"record_id,omitempty"`
	Pending  bool             `json:"pending,omitempty"`
}

// YearRow is one (term, year) row of the matrix
type YearRow struct {
	Year  int        `json:"year"`
	State string     `json:"state"`
	Rates []RateCell `json:"rates"`
}

// TermBlock groups the rows of one premium term
type TermBlock struct {
	PremiumTerm string    `json:"premium_term"`
	Phantom     bool      `json:"phantom"`
	Years       []YearRow `json:"years"`
}

// MatrixView is the rendered state of an edit session
type MatrixView struct {
	SessionID string      `json:"session_id"`
	ProductID string      `json:"product_id"`
	Editing   bool        `json:"editing"`
	Saving    bool        `json:"saving"`
	Pending   int         `json:"pending"`
	LoadedAt  *time.Time  `json:"loaded_at,omitempty"`
	Terms     []TermBlock `json:"terms"`
	Draft     *DraftView  `json:"draft,omitempty"`
}

// DraftSection is one year of the bulk draft
type DraftSection struct {
	Year  int        `json:"year"`
	Rates []RateCell `json:"rates"`
}

// DraftView is the rendered bulk draft
type DraftView struct {
	PremiumTerm string         `json:"premium_term"`
	Sections    []DraftSection `json:"sections"`
	ZeroCells   int            `json:"zero_cells"`
}

// YearAdded is returned by addYear
type YearAdded struct {
	Year int        `json:"year"`
	View MatrixView `json:"view"`
}

// SaveOutput is returned by save
type SaveOutput struct {
	Summary SaveSummary `json:"summary"`
	View    MatrixView  `json:"view"`
}

// CascadeOutput is returned by removeYear and removeTerm
type CascadeOutput struct {
	Summary CascadeSummary `json:"summary"`
	View    MatrixView     `json:"view"`
}

// CommitOutput is returned by a bulk commit
type CommitOutput struct {
	Summary CommitSummary `json:"summary"`
	View    MatrixView    `json:"view"`
}
