package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/hackbite/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
			convey.So(cfg.DatabasePath, convey.ShouldEqual, "hackbite.db")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.CandidateLimit, convey.ShouldEqual, 50)
			convey.So(cfg.RatingWindow, convey.ShouldEqual, 100)
			convey.So(cfg.GeminiModel, convey.ShouldEqual, "gemini-2.0-flash-exp")
			convey.So(cfg.GithubTimeout(), convey.ShouldEqual, 15*time.Second)
			convey.So(cfg.RatingTimeout(), convey.ShouldEqual, 2*time.Minute)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config with an invalid field", t, func() {
		cases := map[string]func(c *config.Config){
			"addr":            func(c *config.Config) { c.Addr = "" },
			"database_path":   func(c *config.Config) { c.DatabasePath = "" },
			"worker_count":    func(c *config.Config) { c.WorkerCount = 0 },
			"queue_size":      func(c *config.Config) { c.QueueSize = -1 },
			"dedupe_size":     func(c *config.Config) { c.DedupeSize = 0 },
			"rating_window":   func(c *config.Config) { c.RatingWindow = 0 },
			"candidate_limit": func(c *config.Config) { c.CandidateLimit = 0 },
			"log_format":      func(c *config.Config) { c.LogFormat = "xml" },
		}
		for field, breakIt := range cases {
			cfg := config.New()
			breakIt(cfg)
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, field)
		}
	})
}
