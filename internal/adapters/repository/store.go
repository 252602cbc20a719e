// Package repository persists users, teams, hackathons, settings and ratings
// in SQLite.
package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/hackbite/pkg/logger"
	"github.com/okian/hackbite/pkg/metrics"

	_ "modernc.org/sqlite" // database/sql driver "sqlite"
)

//go:embed schema.sql
var schema string

const (
	defaultMetricsInterval = 30 * time.Second
	timeLayout             = "2006-01-02T15:04:05.000000Z07:00"
)

// Store implements every domain storage port on one SQLite database.
type Store struct {
	db                    *sql.DB
	logger                logger.Logger
	now                   func() time.Time
	metricsUpdateInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	const op = "repository.open"

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// SQLite has a single writer, and an in-memory database lives only as
	// long as its connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:                    db,
		logger:                logger.Get().Named("repository"),
		now:                   time.Now,
		metricsUpdateInterval: defaultMetricsInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", op, err)
	}

	mctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.updateMetrics(mctx)
	s.startMetricsUpdater(mctx)
	return s, nil
}

// DB exposes the underlying handle for tooling such as the seeder.
func (s *Store) DB() *sql.DB { return s.db }

// Close stops background work and closes the database.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.updateMetrics(ctx)
			}
		}
	}()
}

func (s *Store) updateMetrics(ctx context.Context) {
	c, err := s.Counts(ctx)
	if err != nil {
		s.logger.Debug(ctx, "count refresh failed", logger.Error(err))
		return
	}
	metrics.UpdateUsersTotal(c.Users)
	metrics.UpdateTeamsTotal(c.Teams)
}

// Counts is a row-count snapshot of the main tables.
type Counts struct {
	Users      int `json:"users"`
	Teams      int `json:"teams"`
	Hackathons int `json:"hackathons"`
	Ratings    int `json:"ratings"`
}

// Counts returns active users, teams, hackathons and stored ratings.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE is_active = 1),
			(SELECT COUNT(*) FROM teams),
			(SELECT COUNT(*) FROM hackathons),
			(SELECT COUNT(*) FROM user_ratings)`).Scan(&c.Users, &c.Teams, &c.Hackathons, &c.Ratings)
	if err != nil {
		return Counts{}, fmt.Errorf("repository.counts: %w", err)
	}
	return c, nil
}

// observe records the latency of one repository operation.
func observe(op string) func() {
	start := time.Now()
	return func() {
		metrics.RecordRepositoryQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
	}
}

// inTx runs fn in a transaction, committing when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// placeholders returns "?, ?, ..." for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
