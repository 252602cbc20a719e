package github

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/hackbite/pkg/logger"
	"github.com/okian/hackbite/pkg/retry"
)

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL points the scraper at another host, such as a test server.
func WithBaseURL(base string) Option {
	return func(s *Scraper) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			s.baseURL = base
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithRequestsPerSecond throttles page fetches. Non-positive values disable
// throttling.
func WithRequestsPerSecond(rps float64) Option {
	return func(s *Scraper) {
		if rps <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry overrides the retry policy.
func WithRetry(rc retry.Config) Option {
	return func(s *Scraper) { s.retry = rc }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.logger = l
		}
	}
}
