package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlp-labs/proof-of-contribution/internal/errors"
)

// setRequiredEnv sets the minimal environment for Load to succeed and clears
// every optional override.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VALIDATOR_BASE_API_URL", "http://validator.local")
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	for _, key := range []string{
		"NODE_ENV", "INPUT_DIR", "OUTPUT_DIR", "SEALED_DIR",
		"DLP_ID", "JWT_EXPIRATION_SECONDS", "REQUEST_TIMEOUT_SECONDS",
		"PROFILE_SCORING", "FILE_DOWNLOAD_URL", "DATA_DIR", "PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.DlpID)
	assert.Equal(t, "/input", cfg.InputDir)
	assert.Equal(t, "/output", cfg.OutputDir)
	assert.Equal(t, "/sealed", cfg.SealedDir)
	assert.Equal(t, "http://validator.local", cfg.ValidatorBaseURL)
	assert.Equal(t, 180*time.Second, cfg.JWTExpiration)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, ProfileScoringFlat, cfg.ProfileScoring)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadDevelopmentDirectories(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NODE_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./demo/input", cfg.InputDir)
	assert.Equal(t, "./demo/output", cfg.OutputDir)
	assert.Equal(t, "./demo/sealed", cfg.SealedDir)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INPUT_DIR", "/data/in")
	t.Setenv("DLP_ID", "7")
	t.Setenv("JWT_EXPIRATION_SECONDS", "60")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("PROFILE_SCORING", "followers")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, 7, cfg.DlpID)
	assert.Equal(t, 60*time.Second, cfg.JWTExpiration)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, ProfileScoringFollowers, cfg.ProfileScoring)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoadSealingDetection(t *testing.T) {
	t.Run("enabled when the sealed directory exists", func(t *testing.T) {
		setRequiredEnv(t)
		sealedDir := filepath.Join(t.TempDir(), "sealed")
		require.NoError(t, os.MkdirAll(sealedDir, 0o755))
		t.Setenv("SEALED_DIR", sealedDir)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.UseSealing)
	})

	t.Run("disabled when the sealed directory is absent", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SEALED_DIR", filepath.Join(t.TempDir(), "missing"))

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.UseSealing)
	})
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "missing JWT secret", key: "JWT_SECRET_KEY", value: ""},
		{name: "missing validator URL", key: "VALIDATOR_BASE_API_URL", value: ""},
		{name: "non-integer dlp id", key: "DLP_ID", value: "abc"},
		{name: "non-integer jwt expiration", key: "JWT_EXPIRATION_SECONDS", value: "soon"},
		{name: "non-positive jwt expiration", key: "JWT_EXPIRATION_SECONDS", value: "0"},
		{name: "non-integer request timeout", key: "REQUEST_TIMEOUT_SECONDS", value: "fast"},
		{name: "unknown profile scoring policy", key: "PROFILE_SCORING", value: "generous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
		})
	}
}
