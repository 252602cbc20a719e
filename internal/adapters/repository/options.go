package repository

import (
	"time"

	"github.com/okian/hackbite/pkg/logger"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithMetricsUpdateInterval sets how often user and team totals are published.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *Store) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger overrides the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.logger = l }
}
