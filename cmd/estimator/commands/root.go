package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/blueprint-estimator/internal/app"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
)

var (
	envFile string
	verbose bool
	userID  string
)

var rootCmd = &cobra.Command{
	Use:   "estimator",
	Short: "Blueprint estimator - extract, price and export electrical estimates",
	Long: `estimator runs the blueprint extraction and estimation engines against the
configured database without starting the HTTP server. Configuration is read
from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load when present")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "cli", "user id recorded on created records")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openApp loads configuration and wires the application without the async
// queue. The caller must Close the result.
func openApp(ctx context.Context) (*app.App, error) {
	if err := common.LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return app.New(ctx, cfg, logger, app.WithoutQueue())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
