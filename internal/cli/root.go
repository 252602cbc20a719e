// Package cli implements hackbite-cli, the developer tool that seeds a
// database, checks a running server's teammate ranking and rates a profile
// from the command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/hackbite/internal/adapters/repository"
	"github.com/okian/hackbite/internal/config"
	"github.com/okian/hackbite/pkg/logger"
)

const app = "hackbite-cli"

// Actual version can be specified in build command.
var version = "unknown"

type rootFlags struct {
	dbPath   string
	logLevel string
	json     bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           app,
		Short:         app + " seeds, inspects and exercises a HackBite deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			format := "text"
			if flags.json {
				format = "json"
			}
			if err := logger.Init(logger.WithFormat(format), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			if err := logger.SetLevelString(flags.logLevel); err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (default from config)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&flags.json, "json", "j", false, "json format for logging")

	root.AddCommand(
		newSeedCommand(flags),
		newCandidatesCommand(),
		newRateCommand(flags),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", app, version)
		},
	}
}

// loadConfig loads the service configuration, applying the --db override.
func loadConfig(ctx context.Context, flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.DatabasePath = flags.dbPath
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	store, err := repository.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DatabasePath, err)
	}
	return store, nil
}
