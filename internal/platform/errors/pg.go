package errors

import (
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlstate classes the commission tables can raise
var pgCodes = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,
	"23503": ErrorCodeInvalidArgument, // fk to a missing row
	"23502": ErrorCodeValidation,
	"23514": ErrorCodeValidation, // rate or role check
	"22001": ErrorCodeInvalidArgument,
	"22P02": ErrorCodeInvalidArgument, // malformed uuid or numeric
	"22003": ErrorCodeValidation,      // numeric(7,4) overflow
	"25006": ErrorCodeUnavailable,
	"57P03": ErrorCodeUnavailable,
}

// contention sqlstates that succeed on a clean retry
var pgRetry = map[string]bool{
	"40001": true,
	"40P01": true,
	"55P03": true,
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// FromPostgres wraps err with the ErrorCode its sqlstate maps to, ErrorCodeDB otherwise
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code := ErrorCodeDB
	if pgErr, ok := pgError(err); ok {
		if c, ok := pgCodes[pgErr.Code]; ok {
			code = c
		}
	}
	return &Error{code: code, msg: msg, orig: err}
}

// FromPostgresWithField is FromPostgres plus the offending column when pg names one
// falls back to the constraint suffix, so commission_rates_rate_check gives rate
func FromPostgresWithField(err error, msg string) error {
	out := FromPostgres(err, msg)
	pgErr, ok := pgError(err)
	if !ok {
		return out
	}
	if col := strings.TrimSpace(pgErr.ColumnName); col != "" {
		return WithField(out, col)
	}
	c := strings.TrimSuffix(strings.TrimSpace(pgErr.ConstraintName), "_check")
	if i := strings.LastIndex(c, "_"); i >= 0 && i+1 < len(c) {
		if tok := c[i+1:]; tok != "key" && tok != "fkey" && tok != "pkey" {
			return WithField(out, tok)
		}
	}
	return out
}

// pgTransient spots contention either by sqlstate or by the text pgx returns on commit
func pgTransient(err error) bool {
	if pgErr, ok := pgError(err); ok {
		return pgRetry[pgErr.Code]
	}
	s := strings.ToLower(Root(err).Error())
	for _, frag := range []string{
		"commit unexpectedly resulted in rollback",
		"deadlock detected",
		"could not serialize access",
		"canceling statement due to lock timeout",
		"terminating connection due to administrator command",
	} {
		if strings.Contains(s, frag) {
			return true
		}
	}
	return false
}
