// Package main provides the screener CLI: the HTTP API server, database
// migrations and local batch screening of résumés against a job description.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-screener/internal/config"
	"github.com/jonathan/candidate-screener/internal/ingestion"
	"github.com/jonathan/candidate-screener/internal/logger"
	"github.com/jonathan/candidate-screener/internal/pipeline"
	"github.com/jonathan/candidate-screener/internal/skills"
)

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Deterministic candidate screening",
	Long: "screener matches résumés against the skills required by a job description, " +
		"scores and ranks candidates, and serves the results through a REST API.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	logJSON    bool
	debug      bool

	// fileConfig holds the values of --config; flags take precedence over it.
	fileConfig config.Config
	cliLogger  = zap.NewNop()
)

// builtinDefaults fill whatever neither flags nor the config file set.
var builtinDefaults = config.Config{
	MatchMode:      string(skills.MatchSubstring),
	Concurrency:    pipeline.DefaultConcurrency,
	MaxUploadBytes: ingestion.MaxFileSize,
	Port:           8080,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func setup(_ *cobra.Command, _ []string) error {
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		fileConfig = *cfg
	}

	l, err := logger.New(logJSON || fileConfig.LogJSON, debug || fileConfig.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	cliLogger = l
	zap.ReplaceGlobals(l)
	return nil
}

// resolveConfig layers flags over the config file over built-in defaults.
func resolveConfig(flags config.Config) (config.Config, error) {
	merged := flags.MergeWithDefaults(fileConfig)
	merged = merged.MergeWithDefaults(builtinDefaults)
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = cliLogger.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
