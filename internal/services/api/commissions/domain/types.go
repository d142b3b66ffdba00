// Package domain holds contracts and DTOs for commission rates and matrix edit sessions
package domain

import (
	"context"
	"time"

	"rategrid/internal/core/matrix"

	"github.com/shopspring/decimal"
)

// Store is the commission collection a session reconciles against
// implementations: the postgres repo and the upstream http client
type Store interface {
	List(ctx context.Context, productID string) ([]matrix.Record, error)
	Create(ctx context.Context, in matrix.NewRecord) (matrix.Record, error)
	Update(ctx context.Context, id string, rate decimal.Decimal) (matrix.Record, error)
	Delete(ctx context.Context, id string) error
}

// AuditPort receives one event per finished save, bulk commit or delete cascade
type AuditPort interface {
	Record(ctx context.Context, ev AuditEvent) error
	Recent(ctx context.Context, productID string, limit int) ([]AuditEvent, error)
}

// Audit actions
const (
	ActionSave       = "save"
	ActionCommit     = "bulk_commit"
	ActionRemoveYear = "remove_year"
	ActionRemoveTerm = "remove_term"
)

// AuditEvent summarizes one batch of store calls
type AuditEvent struct {
	At          time.Time `json:"at"`
	SessionID   string    `json:"session_id"`
	ProductID   string    `json:"product_id"`
	Action      string    `json:"action"`
	PremiumTerm string    `json:"premium_term,omitempty"`
	Year        int       `json:"year,omitempty"`
	Succeeded   int       `json:"success_count"`
	Failed      int       `json:"failure_count"`
	Refreshed   bool      `json:"refreshed"`
	Actor       string    `json:"actor,omitempty"`
}

// ZeroPrompt is asked once per bulk commit when the draft holds zero-rate cells
// include=true persists them, false omits them from the commit
type ZeroPrompt func(ctx context.Context, zeroCells int) (include bool, err error)

// ItemFailure is one failed store request with its raw error text
type ItemFailure struct {
	Op          string `json:"op"`
	RecordID    string `json:"record_id,omitempty"`
	PremiumTerm string `json:"premium_term"`
	Year        int    `json:"year"`
	Role        int    `json:"role"`
	Error       string `json:"error"`
}

// SaveSummary reports a reconcile run
type SaveSummary struct {
	Succeeded int           `json:"success_count"`
	Failed    int           `json:"failure_count"`
	Failures  []ItemFailure `json:"failures,omitempty"`
	Refreshed bool          `json:"refreshed"`
}

// CascadeSummary reports a removeYear or removeTerm run
type CascadeSummary struct {
	LocalOnly bool          `json:"local_only"`
	Deleted   int           `json:"deleted"`
	Failed    int           `json:"failure_count"`
	Failures  []ItemFailure `json:"failures,omitempty"`
	Refreshed bool          `json:"refreshed"`
}

// CommitSummary reports a bulk commit run
type CommitSummary struct {
	PremiumTerm  string        `json:"premium_term"`
	Requested    int           `json:"requested"`
	Succeeded    int           `json:"success_count"`
	Failed       int           `json:"failure_count"`
	ZeroCells    int           `json:"zero_cells"`
	IncludedZero bool          `json:"included_zero"`
	Failures     []ItemFailure `json:"failures,omitempty"`
	Refreshed    bool          `json:"refreshed"`
}
