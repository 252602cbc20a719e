package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/hackbite/internal/adapters/ai/gemini"
	"github.com/okian/hackbite/internal/adapters/github"
	"github.com/okian/hackbite/internal/adapters/resume"
	"github.com/okian/hackbite/internal/domain/rating"
	"github.com/okian/hackbite/pkg/logger"
)

type rateFlags struct {
	userID int64
	github string
	resume string
}

func newRateCommand(root *rootFlags) *cobra.Command {
	f := &rateFlags{}
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Rate a GitHub profile and resume PDF synchronously and store the scores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.github == "" || f.resume == "" {
				return errors.New("--github and --resume are required")
			}
			pdf, err := os.ReadFile(f.resume)
			if err != nil {
				return fmt.Errorf("read resume: %w", err)
			}
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, root)
			if err != nil {
				return err
			}
			if cfg.GeminiAPIKey == "" {
				return fmt.Errorf("%w: set HACKBITE_GEMINI_API_KEY or GEMINI_API_KEY", rating.ErrUnavailable)
			}
			log := logger.Get().Named("rate")
			ai, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel,
				gemini.WithRequestsPerSecond(cfg.AIRequestsPerSecond),
				gemini.WithLogger(log),
			)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			rater := rating.NewRater(
				github.New(
					github.WithBaseURL(cfg.GithubBaseURL),
					github.WithTimeout(cfg.GithubTimeout()),
					github.WithLogger(log),
				),
				resume.New(),
				ai,
			)
			r, err := rating.New(store, rater, nil, rating.WithTimeout(cfg.RatingTimeout()), rating.WithLogger(log)).
				RateNow(ctx, f.userID, f.github, pdf)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		},
	}
	cmd.Flags().Int64VarP(&f.userID, "user", "u", 0, "user id to rate (0 rates as the anonymous user)")
	cmd.Flags().StringVarP(&f.github, "github", "g", "", "GitHub username or profile URL")
	cmd.Flags().StringVarP(&f.resume, "resume", "r", "", "path to the resume PDF")
	return cmd
}
