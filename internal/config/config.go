// Package config defines the service configuration and how it is loaded.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// DatabasePath is the SQLite file. ":memory:" keeps everything in memory.
	DatabasePath string `koanf:"database_path"`

	// WorkerCount sets the number of rating workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory rating queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize sets the size of the in-flight submission cache.
	DedupeSize int `koanf:"dedupe_size"`

	// CandidateLimit is the default number of teammates returned.
	CandidateLimit int `koanf:"candidate_limit"`

	// RatingWindow is the radius of the overall-score window around the leader.
	RatingWindow int `koanf:"rating_window"`

	GeminiAPIKey        string  `koanf:"gemini_api_key"`
	GeminiModel         string  `koanf:"gemini_model"`
	AIRequestsPerSecond float64 `koanf:"ai_requests_per_second"`

	GithubBaseURL           string  `koanf:"github_base_url"`
	GithubTimeoutMS         int     `koanf:"github_timeout_ms"`
	ScrapeRequestsPerSecond float64 `koanf:"scrape_requests_per_second"`

	// RatingTimeoutMS caps one run of the rating pipeline.
	RatingTimeoutMS int `koanf:"rating_timeout_ms"`

	// EnvFile is the dotenv file read before the environment.
	EnvFile string `koanf:"env_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":5000",
		DatabasePath:            "hackbite.db",
		WorkerCount:             4,
		QueueSize:               1000,
		DedupeSize:              10_000,
		CandidateLimit:          50,
		RatingWindow:            100,
		GeminiModel:             "gemini-2.0-flash-exp",
		AIRequestsPerSecond:     1,
		GithubBaseURL:           "https://github.com",
		GithubTimeoutMS:         15_000,
		ScrapeRequestsPerSecond: 2,
		RatingTimeoutMS:         120_000,
		EnvFile:                 ".env",
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatabasePath == "":
		return fmt.Errorf("%w: database_path must not be empty", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.RatingWindow <= 0:
		return fmt.Errorf("%w: rating_window must be positive, got %d", ErrInvalidConfig, c.RatingWindow)
	case c.CandidateLimit <= 0:
		return fmt.Errorf("%w: candidate_limit must be positive, got %d", ErrInvalidConfig, c.CandidateLimit)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// GithubTimeout is GithubTimeoutMS as a duration.
func (c *Config) GithubTimeout() time.Duration {
	return time.Duration(c.GithubTimeoutMS) * time.Millisecond
}

// RatingTimeout is RatingTimeoutMS as a duration.
func (c *Config) RatingTimeout() time.Duration {
	return time.Duration(c.RatingTimeoutMS) * time.Millisecond
}
