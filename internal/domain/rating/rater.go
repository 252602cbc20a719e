package rating

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/hackbite/pkg/logger"
	"github.com/okian/hackbite/pkg/metrics"
)

// Extractor turns a resume document into plain text.
type Extractor interface {
	Extract(ctx context.Context, pdf []byte) (string, error)
}

// Generator sends a prompt to the language model and returns its raw reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Outcome is everything a successful pipeline run produced.
type Outcome struct {
	Username   string
	ResumeText string
	Highlights string
	Ratings    Ratings
	// Raw is the normalized JSON of Ratings.
	Raw string
}

// Rater runs the extraction, scraping and generation steps for one profile.
type Rater struct {
	scraper   Scraper
	extractor Extractor
	generator Generator
	logger    logger.Logger
}

// RaterOption configures a Rater.
type RaterOption func(*Rater)

// WithRaterLogger overrides the rater logger.
func WithRaterLogger(l logger.Logger) RaterOption {
	return func(r *Rater) { r.logger = l }
}

// NewRater creates a rater. A nil generator leaves the rater disabled.
func NewRater(scraper Scraper, extractor Extractor, generator Generator, opts ...RaterOption) *Rater {
	r := &Rater{
		scraper:   scraper,
		extractor: extractor,
		generator: generator,
		logger:    logger.Get().Named("rater"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled reports whether a generator is configured.
func (r *Rater) Enabled() bool {
	return r != nil && r.generator != nil
}

// Rate scores a GitHub profile and resume. A scrape failure degrades the
// highlights to FallbackHighlights; every other failure aborts.
func (r *Rater) Rate(ctx context.Context, github string, resume []byte) (Outcome, error) {
	const op = "rating.rate"

	if !r.Enabled() {
		return Outcome{}, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	text, err := r.extractor.Extract(ctx, resume)
	if err != nil {
		metrics.RecordResumeExtractError()
		return Outcome{}, fmt.Errorf("%s: %w: %w", op, ErrExtract, err)
	}
	text = strings.Join(strings.Fields(text), " ")

	username := UsernameFromLink(github)
	highlights := FallbackHighlights
	if r.scraper != nil && username != "" {
		profile, err := r.scraper.Scrape(ctx, username)
		if err != nil {
			r.logger.Warn(ctx, "github scrape failed, continuing without profile",
				logger.String("username", username),
				logger.Error(err))
		} else {
			highlights = Highlights(profile)
		}
	}

	reply, err := r.generator.Generate(ctx, BuildPrompt(highlights, text))
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w: %w", op, ErrGenerate, err)
	}
	ratings, err := ParseResponse(reply)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}
	raw, err := json.Marshal(ratings)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	return Outcome{
		Username:   username,
		ResumeText: text,
		Highlights: highlights,
		Ratings:    ratings,
		Raw:        string(raw),
	}, nil
}
