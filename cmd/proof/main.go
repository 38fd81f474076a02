// Command proof runs the contribution scoring engine once over the input
// directory and writes the verdict to results.json in the output directory.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dlp-labs/proof-of-contribution/internal/config"
	"github.com/dlp-labs/proof-of-contribution/internal/database"
	"github.com/dlp-labs/proof-of-contribution/internal/errors"
	"github.com/dlp-labs/proof-of-contribution/internal/monitoring"
	"github.com/dlp-labs/proof-of-contribution/internal/ownership"
	"github.com/dlp-labs/proof-of-contribution/internal/proof"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		errors.Log(errors.ToAppError(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var repo *database.Repository
	if cfg.DataDir != "" {
		db, err := database.NewDB(cfg.DataDir)
		if err != nil {
			// The archive is an operator convenience; score without it.
			slog.Warn("Verdict archive unavailable", "error", err)
		} else {
			defer errors.SafeClose(db, "verdict archive")
			repo = database.NewRepository(db)
		}
	}

	appLogger := monitoring.NewLogger()
	ownershipClient := ownership.NewClient(cfg.ValidatorBaseURL, cfg.JWTSecretKey, cfg.JWTExpiration, cfg.RequestTimeout, appLogger)
	engine := proof.NewEngine(cfg, ownershipClient, repo, appLogger, monitoring.NewMetrics())

	response, err := engine.Generate(context.Background())
	if err != nil {
		return err
	}

	path, err := proof.WriteResponse(cfg.OutputDir, response)
	if err != nil {
		return err
	}

	slog.Info("Proof generation complete",
		"results", path,
		"score", response.Score,
		"valid", response.Valid,
	)

	return nil
}
