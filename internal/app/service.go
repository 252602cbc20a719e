// Package app wires configuration, storage, domain services and the rating
// worker pool into the dependencies the HTTP API needs.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/hackbite/internal/adapters/ai/gemini"
	"github.com/okian/hackbite/internal/adapters/github"
	"github.com/okian/hackbite/internal/adapters/http/api"
	"github.com/okian/hackbite/internal/adapters/mq/queue"
	"github.com/okian/hackbite/internal/adapters/mq/worker"
	"github.com/okian/hackbite/internal/adapters/repository"
	"github.com/okian/hackbite/internal/adapters/resume"
	"github.com/okian/hackbite/internal/config"
	"github.com/okian/hackbite/internal/domain/account"
	"github.com/okian/hackbite/internal/domain/catalog"
	"github.com/okian/hackbite/internal/domain/dedupe"
	"github.com/okian/hackbite/internal/domain/matching"
	"github.com/okian/hackbite/internal/domain/rating"
	"github.com/okian/hackbite/internal/domain/team"
	"github.com/okian/hackbite/pkg/logger"
	"github.com/okian/hackbite/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// ErrNotStarted is returned by accessors used before Start.
var ErrNotStarted = errors.New("service not started")

// Service owns every long-lived component of the process.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	store    *repository.Store
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	deduper  *dedupe.InMemoryDeduper
	accounts *account.Service
	teams    *team.Service
	catalog  *catalog.Service
	ratings  *rating.Service
	matcher  *matching.Matcher

	generator rating.Generator
	scraper   rating.Scraper
	extractor rating.Extractor

	startedAt time.Time
	started   bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGenerator replaces the Gemini client.
func WithGenerator(g rating.Generator) Option {
	return func(s *Service) { s.generator = g }
}

// WithScraper replaces the GitHub scraper.
func WithScraper(sc rating.Scraper) Option {
	return func(s *Service) { s.scraper = sc }
}

// WithExtractor replaces the PDF text extractor.
func WithExtractor(e rating.Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

// New constructs a Service. A nil cfg uses config.New().
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}
	return s
}

// Start opens the database, builds the domain services and starts the
// rating workers. Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	const op = "app.start"

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting hackbite service...")

	store, err := repository.Open(ctx, s.cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.buildRater(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	s.store = store
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.cfg.DedupeSize))
	s.queue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.cfg.QueueSize),
		queue.WithBufferSize(s.cfg.QueueSize),
	)

	s.accounts = account.New(store)
	s.teams = team.New(store)
	s.catalog = catalog.New(store)
	s.matcher = matching.New(store,
		matching.WithWindow(s.cfg.RatingWindow),
		matching.WithDefaultLimit(s.cfg.CandidateLimit),
	)
	s.ratings = rating.New(store,
		rating.NewRater(s.scraper, s.extractor, s.generator),
		s.queue,
		rating.WithDeduper(s.deduper),
		rating.WithTimeout(s.cfg.RatingTimeout()),
	)

	s.pool = worker.NewPool(s.cfg.WorkerCount, s.queue, s.ratings, worker.WithLogger(s.logger.Named("worker")))
	// Workers outlive the start context so Stop can drain the queue.
	s.pool.Start(context.WithoutCancel(ctx))

	s.startedAt = time.Now()
	s.started = true
	s.logger.Info(ctx, "hackbite service started",
		logger.String("database", s.cfg.DatabasePath),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.cfg.QueueSize),
		logger.Bool("rating_enabled", s.generator != nil),
	)
	return nil
}

// buildRater fills the rating collaborators not supplied through options.
func (s *Service) buildRater(ctx context.Context) error {
	if s.scraper == nil {
		s.scraper = github.New(
			github.WithBaseURL(s.cfg.GithubBaseURL),
			github.WithTimeout(s.cfg.GithubTimeout()),
			github.WithRequestsPerSecond(s.cfg.ScrapeRequestsPerSecond),
		)
	}
	if s.extractor == nil {
		s.extractor = resume.New()
	}
	if s.generator != nil {
		return nil
	}
	if s.cfg.GeminiAPIKey == "" {
		s.logger.Warn(ctx, "no Gemini API key configured; profile rating is disabled")
		return nil
	}
	client, err := gemini.New(ctx, s.cfg.GeminiAPIKey, s.cfg.GeminiModel,
		gemini.WithRequestsPerSecond(s.cfg.AIRequestsPerSecond),
	)
	if err != nil {
		return err
	}
	s.generator = client
	return nil
}

// Stop drains the rating queue, stops the workers and closes the database.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping hackbite service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	s.started = false
	s.logger.Info(ctx, "hackbite service stopped")
	return errors.Join(errs...)
}

// Dependencies returns the HTTP API collaborators.
func (s *Service) Dependencies() (api.Dependencies, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return api.Dependencies{}, ErrNotStarted
	}
	return api.Dependencies{
		Accounts: s.accounts,
		Teams:    s.teams,
		Catalog:  s.catalog,
		Ratings:  s.ratings,
		Matcher:  s.matcher,
		Stats:    s,
	}, nil
}

// Ratings returns the rating service.
func (s *Service) Ratings() *rating.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ratings
}

// Store returns the repository.
func (s *Service) Store() *repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":        s.started,
		"workerCount":    s.cfg.WorkerCount,
		"queueSize":      s.cfg.QueueSize,
		"dedupeSize":     s.cfg.DedupeSize,
		"ratingEnabled":  s.generator != nil,
		"ratingWindow":   s.cfg.RatingWindow,
		"candidateLimit": s.cfg.CandidateLimit,
	}
	if !s.started {
		return stats
	}

	ctx := context.Background()
	queueLen := s.queue.Len(ctx)
	stats["queueLength"] = queueLen
	stats["inFlight"] = s.deduper.Size()
	stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	metrics.UpdateQueueSize(queueLen, s.queue.Capacity())

	if c, err := s.store.Counts(ctx); err == nil {
		stats["users"] = c.Users
		stats["teams"] = c.Teams
		stats["hackathons"] = c.Hackathons
		stats["ratings"] = c.Ratings
	} else {
		s.logger.Warn(ctx, "stats count failed", logger.Error(err))
	}
	return stats
}

// UpdateSystemMetrics samples memory, goroutines and GC pauses.
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// RunSystemMetrics calls UpdateSystemMetrics every interval until ctx ends.
func RunSystemMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			UpdateSystemMetrics()
		}
	}
}
