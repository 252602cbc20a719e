// Package rating scores participants from their GitHub profile and resume.
//
// Submissions become asynchronous jobs: Submit validates and enqueues, a
// worker calls Process, and clients poll Job for the outcome.
package rating

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/hackbite/internal/domain/dedupe"
	"github.com/okian/hackbite/internal/domain/model"
	"github.com/okian/hackbite/pkg/logger"
	"github.com/okian/hackbite/pkg/metrics"
)

const defaultTimeout = 2 * time.Minute

// Store persists rating jobs and ratings.
type Store interface {
	// AnonymousUserID returns the shared anonymous account, creating it on first use.
	AnonymousUserID(ctx context.Context) (int64, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	CreateJob(ctx context.Context, job model.RatingJob) error
	UpdateJob(ctx context.Context, job model.RatingJob) error
	GetJob(ctx context.Context, id string) (model.RatingJob, error)
	// SaveRating upserts the rating of r.UserID.
	SaveRating(ctx context.Context, r model.Rating) (model.Rating, error)
	LatestRating(ctx context.Context, userID int64) (model.Rating, error)
	LatestOverallRating(ctx context.Context) (model.Rating, error)
}

// Enqueuer hands jobs to the worker pool without blocking.
type Enqueuer interface {
	Enqueue(ctx context.Context, job model.RatingJob) bool
}

// Submission is a request to rate a profile.
type Submission struct {
	UserID *int64
	GitHub string
	// Resume is a base64 PDF, optionally prefixed as a data URL.
	Resume string
}

// Service coordinates rating jobs.
type Service struct {
	store   Store
	rater   *Rater
	queue   Enqueuer
	deduper dedupe.Deduper
	timeout time.Duration
	logger  logger.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds one pipeline run.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDeduper replaces the in-memory deduper.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) { s.deduper = d }
}

// WithLogger overrides the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a rating service. queue may be nil when only RateNow is used.
func New(store Store, rater *Rater, queue Enqueuer, opts ...Option) *Service {
	s := &Service{
		store:   store,
		rater:   rater,
		queue:   queue,
		timeout: defaultTimeout,
		logger:  logger.Get().Named("rating"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewInMemoryDeduper()
	}
	return s
}

// Submit validates a submission and queues a job for it. When an identical
// submission is still in flight, its job is returned with duplicate set.
func (s *Service) Submit(ctx context.Context, sub Submission) (job model.RatingJob, duplicate bool, err error) {
	const op = "rating.submit"

	github := strings.TrimSpace(sub.GitHub)
	if github == "" || strings.TrimSpace(sub.Resume) == "" {
		return model.RatingJob{}, false, fmt.Errorf("%s: %w", op, ErrMissingInput)
	}
	if !s.rater.Enabled() || s.queue == nil {
		return model.RatingJob{}, false, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	pdf, err := DecodeResume(sub.Resume)
	if err != nil {
		return model.RatingJob{}, false, fmt.Errorf("%s: %w", op, err)
	}
	userID, err := s.resolveUser(ctx, sub.UserID)
	if err != nil {
		return model.RatingJob{}, false, fmt.Errorf("%s: %w", op, err)
	}

	digest := Digest(userID, UsernameFromLink(github), pdf)
	id := uuid.NewString()
	if owner, claimed := s.deduper.Claim(ctx, digest, id); !claimed {
		existing, err := s.store.GetJob(ctx, owner)
		if err == nil {
			metrics.RecordRatingDuplicate()
			return existing, true, nil
		}
		// The claim outlived its job row; take it over.
		s.deduper.Release(ctx, digest)
		if _, ok := s.deduper.Claim(ctx, digest, id); !ok {
			return model.RatingJob{}, false, fmt.Errorf("%s: %w", op, ErrBackpressure)
		}
	}

	now := s.now().UTC()
	job = model.RatingJob{
		ID:         id,
		UserID:     userID,
		GithubLink: github,
		Status:     model.JobQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
		Resume:     pdf,
		Digest:     digest,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		s.deduper.Release(ctx, digest)
		return model.RatingJob{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if !s.queue.Enqueue(ctx, job) {
		s.deduper.Release(ctx, digest)
		s.fail(ctx, job, ErrBackpressure)
		return model.RatingJob{}, false, fmt.Errorf("%s: %w", op, ErrBackpressure)
	}

	metrics.RecordRatingSubmitted()
	s.logger.Info(ctx, "rating job queued",
		logger.String("job_id", id),
		logger.Int64("user_id", userID))
	return job, false, nil
}

// Process runs the pipeline for a queued job and records the outcome.
func (s *Service) Process(ctx context.Context, job model.RatingJob) error {
	const op = "rating.process"

	start := s.now()
	defer s.deduper.Release(ctx, job.Digest)

	job.Status = model.JobRunning
	job.UpdatedAt = start.UTC()
	if err := s.store.UpdateJob(ctx, job); err != nil {
		s.logger.Warn(ctx, "mark job running", logger.String("job_id", job.ID), logger.Error(err))
	}

	rating, err := s.run(ctx, job.UserID, job.GithubLink, job.Resume)
	elapsed := float64(s.now().Sub(start).Milliseconds())
	if err != nil {
		metrics.RecordRatingFinished(string(model.JobFailed), elapsed)
		s.fail(ctx, job, err)
		return fmt.Errorf("%s: %s: %w", op, job.ID, err)
	}

	done := s.now().UTC()
	job.Status = model.JobCompleted
	job.Scores = &rating.Scores
	job.UpdatedAt = done
	job.CompletedAt = &done
	job.Error = ""
	if err := s.store.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("%s: %s: %w", op, job.ID, err)
	}
	metrics.RecordRatingFinished(string(model.JobCompleted), elapsed)
	s.logger.Info(ctx, "rating job completed",
		logger.String("job_id", job.ID),
		logger.Int("overall_score", rating.Scores.Overall))
	return nil
}

// RateNow runs the pipeline synchronously and stores the rating. A
// non-positive userID rates as the anonymous user.
func (s *Service) RateNow(ctx context.Context, userID int64, github string, pdf []byte) (model.Rating, error) {
	const op = "rating.rate_now"

	if strings.TrimSpace(github) == "" || len(pdf) == 0 {
		return model.Rating{}, fmt.Errorf("%s: %w", op, ErrMissingInput)
	}
	var want *int64
	if userID > 0 {
		want = &userID
	}
	id, err := s.resolveUser(ctx, want)
	if err != nil {
		return model.Rating{}, fmt.Errorf("%s: %w", op, err)
	}
	r, err := s.run(ctx, id, strings.TrimSpace(github), pdf)
	if err != nil {
		return model.Rating{}, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// Job returns a rating job.
func (s *Service) Job(ctx context.Context, id string) (model.RatingJob, error) {
	job, err := s.store.GetJob(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.RatingJob{}, fmt.Errorf("rating.job: %w", ErrJobNotFound)
	}
	if err != nil {
		return model.RatingJob{}, fmt.Errorf("rating.job: %w", err)
	}
	return job, nil
}

// UserRating returns the latest rating of a user.
func (s *Service) UserRating(ctx context.Context, userID int64) (model.Rating, error) {
	r, err := s.store.LatestRating(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Rating{}, fmt.Errorf("rating.user_rating: %w", ErrRatingNotFound)
	}
	if err != nil {
		return model.Rating{}, fmt.Errorf("rating.user_rating: %w", err)
	}
	return r, nil
}

// Ratings returns the latest scores of a user, or of the most recently
// rated user when userID is nil.
func (s *Service) Ratings(ctx context.Context, userID *int64) (model.Scores, error) {
	const op = "rating.ratings"

	var (
		r   model.Rating
		err error
	)
	if userID != nil {
		r, err = s.store.LatestRating(ctx, *userID)
	} else {
		r, err = s.store.LatestOverallRating(ctx)
	}
	if errors.Is(err, model.ErrNotFound) {
		return model.Scores{}, fmt.Errorf("%s: %w", op, ErrRatingNotFound)
	}
	if err != nil {
		return model.Scores{}, fmt.Errorf("%s: %w", op, err)
	}
	return r.Scores, nil
}

func (s *Service) run(ctx context.Context, userID int64, github string, pdf []byte) (model.Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.rater.Rate(ctx, github, pdf)
	if err != nil {
		return model.Rating{}, err
	}
	return s.store.SaveRating(ctx, model.Rating{
		UserID:         userID,
		GithubLink:     out.Username,
		ResumeText:     out.ResumeText,
		GithubAnalysis: out.Highlights,
		AIRatingsJSON:  out.Raw,
		Scores:         out.Ratings.Scores(),
	})
}

func (s *Service) fail(ctx context.Context, job model.RatingJob, cause error) {
	now := s.now().UTC()
	job.Status = model.JobFailed
	job.Error = cause.Error()
	job.UpdatedAt = now
	job.CompletedAt = &now
	if err := s.store.UpdateJob(ctx, job); err != nil {
		s.logger.Error(ctx, "mark job failed", logger.String("job_id", job.ID), logger.Error(err))
		return
	}
	s.logger.Warn(ctx, "rating job failed", logger.String("job_id", job.ID), logger.Error(cause))
}

func (s *Service) resolveUser(ctx context.Context, id *int64) (int64, error) {
	if id == nil {
		return s.store.AnonymousUserID(ctx)
	}
	ok, err := s.store.UserExists(ctx, *id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrUserNotFound
	}
	return *id, nil
}

// DecodeResume decodes a base64 document, dropping a data-URL prefix.
func DecodeResume(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil || len(b) == 0 {
		return nil, ErrInvalidResume
	}
	return b, nil
}

// Digest identifies a submission by user, GitHub account and document.
func Digest(userID int64, username string, pdf []byte) string {
	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(userID, 10)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(username)))
	h.Write([]byte{0})
	h.Write(pdf)
	return hex.EncodeToString(h.Sum(nil))
}
