package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/alexmejias/repo-radar/internal/api"
	"github.com/alexmejias/repo-radar/internal/config"
	"github.com/alexmejias/repo-radar/internal/db"
	"github.com/alexmejias/repo-radar/internal/scoring"
	"github.com/alexmejias/repo-radar/internal/telemetry"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// config.Load has already pulled .env into the process environment,
	// so Connect sees DATABASE_URL either way.
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	scoringCfg := scoring.DefaultConfig()
	if cfg.ScoringConfigPath != "" {
		scoringCfg, err = scoring.LoadConfig(cfg.ScoringConfigPath)
		if err != nil {
			logger.Fatal("Invalid scoring config", zap.String("path", cfg.ScoringConfigPath), zap.Error(err))
		}
	}

	collector := telemetry.NewCollector(cfg.GitHubToken, logger)
	verifier := api.VerifierForMode(cfg.PaymentMode)

	srv := api.NewServer(pool, collector, scoringCfg, verifier, logger)
	logger.Info("Server starting", zap.String("port", cfg.Port))
	if err := srv.Start(cfg.Port); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}
