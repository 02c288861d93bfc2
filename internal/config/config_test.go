package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cenalian/CFPS-Parsing/internal/cfps"
	"github.com/Cenalian/CFPS-Parsing/internal/geolocate"
)

// chdirTemp moves the test into an empty directory so no stray cfps.toml or
// .env from the working tree is picked up.
func chdirTemp(t *testing.T) string {
	dir := t.TempDir()
	testChdir(t, dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, cfps.DefaultBaseURL, cfg.BaseURL)
	assert.Empty(t, cfg.AirportsPath)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, geolocate.DefaultURL, cfg.GeolocateURL)
	assert.Equal(t, 50.0, cfg.RadiusMiles)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_File(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url = "http://localhost:9999/alpha/?"
airports_path = "/data/airports.csv"
request_timeout_seconds = 3
max_retries = 0

[logging]
level = "debug"
format = "json"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/alpha/?", cfg.BaseURL)
	assert.Equal(t, "/data/airports.csv", cfg.AirportsPath)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 50.0, cfg.RadiusMiles, "unset keys keep defaults")
}

func TestLoad_DefaultPathPickedUp(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile(DefaultPath, []byte("max_retries = 5\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdirTemp(t)

	_, err := Load("nope.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile(DefaultPath, []byte("max_retries = 5\n"), 0o600))

	t.Setenv("CFPS_MAX_RETRIES", "1")
	t.Setenv("CFPS_BASE_URL", "http://example.test/?")
	t.Setenv("CFPS_TIMEOUT_SECONDS", "30")
	t.Setenv("CFPS_RADIUS_MILES", "12.5")
	t.Setenv("CFPS_LOG_LEVEL", "error")
	t.Setenv("NO_COLOR", "1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, "http://example.test/?", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 12.5, cfg.RadiusMiles)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.True(t, cfg.NoColor)
}

func TestLoad_DotEnv(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile(".env", []byte("CFPS_AIRPORTS_PATH=/tmp/airports.csv\n"), 0o600))
	// godotenv sets process env; make sure it is restored afterwards.
	t.Setenv("CFPS_AIRPORTS_PATH", "")
	require.NoError(t, os.Unsetenv("CFPS_AIRPORTS_PATH"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/airports.csv", cfg.AirportsPath)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"CFPS_TIMEOUT_SECONDS": "soon",
		"CFPS_MAX_RETRIES":     "-1",
		"CFPS_RADIUS_MILES":    "far",
		"CFPS_LOG_LEVEL":       "verbose",
		"CFPS_LOG_FORMAT":      "xml",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv(key, value)

			_, err := Load("")
			require.Error(t, err)
		})
	}
}

// testChdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir for Go < 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}
