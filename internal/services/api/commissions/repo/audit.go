package repo

import (
	"context"

	"rategrid/internal/platform/logger"
	"rategrid/internal/platform/store"
	"rategrid/internal/services/api/commissions/domain"
)

// AuditTable is the clickhouse table receiving audit events
const AuditTable = "commission_audit"

const auditDDL = `
CREATE TABLE IF NOT EXISTS commission_audit (
	at           DateTime64(3, 'UTC'),
	session_id   String,
	product_id   String,
	action       LowCardinality(String),
	premium_term String,
	year         UInt8,
	succeeded    UInt32,
	failed       UInt32,
	refreshed    Bool,
	actor        LowCardinality(String)
)
ENGINE = MergeTree
ORDER BY (product_id, at)`

// CHAudit writes audit events to clickhouse
type CHAudit struct {
	ch store.Clickhouse
}

// NewCHAudit binds the audit sink to a clickhouse seam
func NewCHAudit(ch store.Clickhouse) *CHAudit { return &CHAudit{ch: ch} }

// EnsureSchema creates the audit table when missing
func (a *CHAudit) EnsureSchema(ctx context.Context) error { return a.ch.Exec(ctx, auditDDL) }

// Record inserts one event
func (a *CHAudit) Record(ctx context.Context, ev domain.AuditEvent) error {
	return a.ch.Insert(ctx, AuditTable, [][]any{{
		ev.At.UTC(),
		ev.SessionID,
		ev.ProductID,
		ev.Action,
		ev.PremiumTerm,
		uint8(ev.Year),
		uint32(ev.Succeeded),
		uint32(ev.Failed),
		ev.Refreshed,
		ev.Actor,
	}})
}

// Recent returns the latest events of a product, newest first
func (a *CHAudit) Recent(ctx context.Context, productID string, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := a.ch.Query(ctx, `
		SELECT at, session_id, product_id, action, premium_term, year, succeeded, failed, refreshed, actor
		FROM commission_audit
		WHERE product_id = ?
		ORDER BY at DESC
		LIMIT ?`,
		productID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEvent
	for rows.Next() {
		var (
			ev                domain.AuditEvent
			year              uint8
			succeeded, failed uint32
		)
		if err := rows.Scan(&ev.At, &ev.SessionID, &ev.ProductID, &ev.Action, &ev.PremiumTerm,
			&year, &succeeded, &failed, &ev.Refreshed, &ev.Actor); err != nil {
			return nil, err
		}
		ev.Year, ev.Succeeded, ev.Failed = int(year), int(succeeded), int(failed)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// LogAudit writes audit events to the structured log when clickhouse is off
type LogAudit struct{}

// Record logs one event
func (LogAudit) Record(ctx context.Context, ev domain.AuditEvent) error {
	logger.C(ctx).Info().
		Str("component", "commissions-audit").
		Str("session_id", ev.SessionID).
		Str("product_id", ev.ProductID).
		Str("action", ev.Action).
		Str("premium_term", ev.PremiumTerm).
		Int("year", ev.Year).
		Int("succeeded", ev.Succeeded).
		Int("failed", ev.Failed).
		Bool("refreshed", ev.Refreshed).
		Str("actor", ev.Actor).
		Time("at", ev.At).
		Msg("commission audit")
	return nil
}

// Recent is unsupported for the log sink and returns no events
func (LogAudit) Recent(context.Context, string, int) ([]domain.AuditEvent, error) {
	return nil, nil
}

