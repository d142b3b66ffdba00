package store

import "rategrid/internal/platform/logger"

// Option configures a Store before any backend is dialed
type Option func(*Store) error

// WithLogger hands l to the pg tracer and the clickhouse client
func WithLogger(l logger.Logger) Option {
	return func(s *Store) error {
		s.Log = l
		return nil
	}
}
