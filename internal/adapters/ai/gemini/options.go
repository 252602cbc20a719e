package gemini

import (
	"golang.org/x/time/rate"

	"github.com/okian/hackbite/pkg/logger"
	"github.com/okian/hackbite/pkg/retry"
)

// Option configures a Client.
type Option func(*Client)

// WithRequestsPerSecond throttles outbound calls. Non-positive values disable
// throttling.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry overrides the retry policy.
func WithRetry(rc retry.Config) Option {
	return func(c *Client) { c.retry = rc }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
