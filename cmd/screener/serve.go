package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-screener/internal/config"
	"github.com/jonathan/candidate-screener/internal/db"
	"github.com/jonathan/candidate-screener/internal/server"
	"github.com/jonathan/candidate-screener/internal/server/ratelimit"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for job requirements,
résumé uploads, ranked candidate lists and interview invitations.

Settings are read from the environment (DATABASE_URL, JWT_SECRET, PORT,
MATCH_MODE, VOCABULARY_FILE, SCREENING_CONCURRENCY, RATE_LIMIT_*, ...).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default $PORT or 8080)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	env, err := config.LoadServerEnv()
	if err != nil {
		return err
	}
	flags := config.Config{Port: servePort}
	cfg, err := resolveConfig(flags.MergeWithDefaults(*env.Config()))
	if err != nil {
		return err
	}

	extractor, err := cfg.Extractor()
	if err != nil {
		return err
	}
	jwtConfig, err := env.JWT()
	if err != nil {
		return err
	}
	passwordConfig, err := env.Password()
	if err != nil {
		return err
	}
	rateLimit, err := ratelimit.LoadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if serveMigrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		Store:          store,
		Extractor:      extractor,
		JWT:            jwtConfig,
		Password:       passwordConfig,
		Concurrency:    cfg.Concurrency,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RateLimit:      rateLimit,
		Logger:         cliLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	cliLogger.Info("screening vocabulary loaded",
		zap.Int("terms", extractor.Vocabulary().Len()),
		zap.String("match_mode", string(extractor.Mode())))
	return srv.Start()
}
