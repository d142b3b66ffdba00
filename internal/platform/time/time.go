// Package time holds the time helpers views share
package time

import "time"

// Ptr is t in UTC, or nil for the zero time so json omits it
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
