package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dlp-labs/proof-of-contribution/internal/errors"
)

// Defaults for the production container layout. NODE_ENV=development switches
// to the local demo directories.
const (
	defaultDlpID = 24

	prodInputDir  = "/input"
	prodOutputDir = "/output"
	prodSealedDir = "/sealed"

	devInputDir  = "./demo/input"
	devOutputDir = "./demo/output"
	devSealedDir = "./demo/sealed"
)

// ProfileScoringPolicy selects how presence-only profile snapshots are scored.
type ProfileScoringPolicy string

const (
	// ProfileScoringFlat awards the full configured maximum once present.
	ProfileScoringFlat ProfileScoringPolicy = "flat"
	// ProfileScoringFollowers tiers the award on the payload's follower count.
	ProfileScoringFollowers ProfileScoringPolicy = "followers"
)

// Config is the process-wide configuration, loaded once at startup and
// immutable thereafter.
type Config struct {
	DlpID     int
	InputDir  string
	OutputDir string
	SealedDir string

	ValidatorBaseURL string
	JWTSecretKey     string
	JWTExpiration    time.Duration

	// FileDownloadURL optionally points at a remote bundle archive fetched into
	// the input directory before extraction.
	FileDownloadURL string

	// DataDir enables the sqlite verdict archive when set.
	DataDir string

	ProfileScoring ProfileScoringPolicy
	RequestTimeout time.Duration
	Port           string

	UseSealing bool
}

// Load reads the proof configuration from environment variables. A missing
// required setting is fatal before any scoring happens.
func Load() (*Config, error) {
	environment := getEnvOrDefault("NODE_ENV", "production")

	inputDir := prodInputDir
	outputDir := prodOutputDir
	sealedDir := prodSealedDir
	if environment == "development" {
		inputDir = devInputDir
		outputDir = devOutputDir
		sealedDir = devSealedDir
	}

	cfg := &Config{
		DlpID:            defaultDlpID,
		InputDir:         getEnvOrDefault("INPUT_DIR", inputDir),
		OutputDir:        getEnvOrDefault("OUTPUT_DIR", outputDir),
		SealedDir:        getEnvOrDefault("SEALED_DIR", sealedDir),
		ValidatorBaseURL: os.Getenv("VALIDATOR_BASE_API_URL"),
		JWTSecretKey:     os.Getenv("JWT_SECRET_KEY"),
		JWTExpiration:    180 * time.Second,
		FileDownloadURL:  os.Getenv("FILE_DOWNLOAD_URL"),
		DataDir:          os.Getenv("DATA_DIR"),
		ProfileScoring:   ProfileScoringFlat,
		RequestTimeout:   10 * time.Second,
		Port:             getEnvOrDefault("PORT", "8080"),
	}

	if raw := os.Getenv("DLP_ID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.NewConfigurationError("DLP_ID must be an integer", err)
		}
		cfg.DlpID = id
	}

	if raw := os.Getenv("JWT_EXPIRATION_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, errors.NewConfigurationError("JWT_EXPIRATION_SECONDS must be a positive integer", err)
		}
		cfg.JWTExpiration = time.Duration(secs) * time.Second
	}

	if raw := os.Getenv("REQUEST_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, errors.NewConfigurationError("REQUEST_TIMEOUT_SECONDS must be a positive integer", err)
		}
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}

	if raw := os.Getenv("PROFILE_SCORING"); raw != "" {
		policy := ProfileScoringPolicy(raw)
		if policy != ProfileScoringFlat && policy != ProfileScoringFollowers {
			return nil, errors.NewConfigurationError("PROFILE_SCORING must be 'flat' or 'followers'", nil)
		}
		cfg.ProfileScoring = policy
	}

	if cfg.JWTSecretKey == "" {
		return nil, errors.NewConfigurationError("JWT_SECRET_KEY is required", nil)
	}
	if cfg.ValidatorBaseURL == "" {
		return nil, errors.NewConfigurationError("VALIDATOR_BASE_API_URL is required", nil)
	}

	if info, err := os.Stat(cfg.SealedDir); err == nil && info.IsDir() {
		cfg.UseSealing = true
	}

	slog.Info("Using config",
		"dlp_id", cfg.DlpID,
		"input_dir", cfg.InputDir,
		"output_dir", cfg.OutputDir,
		"validator_base_url", cfg.ValidatorBaseURL,
		"jwt_expiration", cfg.JWTExpiration.String(),
		"profile_scoring", string(cfg.ProfileScoring),
		"use_sealing", cfg.UseSealing,
	)

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
