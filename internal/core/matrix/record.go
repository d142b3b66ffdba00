package matrix

import (
	perr "rategrid/internal/platform/errors"

	"github.com/shopspring/decimal"
)

// Year bounds for a commission year within a premium term
const (
	MinYear = 1
	MaxYear = 10
)

var (
	rateMin = decimal.Zero
	rateMax = decimal.NewFromInt(100)
)

// Record is one persisted commission rate as the store reports it
type Record struct {
	ID          string
	ProductID   string
	PremiumTerm string
	Role        Role
	Year        int
	Rate        decimal.Decimal
}

// Slot returns the (term, year, role) triple the record occupies
func (r Record) Slot() SlotKey { return SlotKey{Term: r.PremiumTerm, Year: r.Year, Role: r.Role} }

// NewRecord is the payload for creating a commission record
type NewRecord struct {
	ProductID   string
	PremiumTerm string
	Role        Role
	Year        int
	Rate        decimal.Decimal
}

// ValidYear reports whether y is within MinYear..MaxYear
func ValidYear(y int) bool { return y >= MinYear && y <= MaxYear }

// ValidRate reports whether d is a percentage within 0..100
func ValidRate(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(rateMin) && d.LessThanOrEqual(rateMax)
}

// CheckYear returns an invalid argument error when y is out of range
func CheckYear(y int) error {
	if !ValidYear(y) {
		return perr.WithField(perr.InvalidArgf("year %d out of range %d..%d", y, MinYear, MaxYear), "year")
	}
	return nil
}

// CheckRate returns an invalid argument error when d is not a percentage
func CheckRate(d decimal.Decimal) error {
	if !ValidRate(d) {
		return perr.WithField(perr.InvalidArgf("rate %s out of range 0..100", d.String()), "rate")
	}
	return nil
}

// CheckRole returns an invalid argument error for roles outside the taxonomy
func CheckRole(r Role) error {
	if !r.Valid() {
		return perr.WithField(perr.InvalidArgf("role %d is not one of 3,4,5,6", int(r)), "role")
	}
	return nil
}

// CheckCell validates a full cell write
func CheckCell(year int, role Role, rate decimal.Decimal) error {
	if err := CheckYear(year); err != nil {
		return err
	}
	if err := CheckRole(role); err != nil {
		return err
	}
	return CheckRate(rate)
}
