package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"SONGLENS_INPUT_DIR",
	"SONGLENS_OUTPUT_PATH",
	"SONGLENS_CATALOG_STRATEGY",
	"SONGLENS_CATALOG_FALLBACK",
	"SONGLENS_SPOTIFY_CLIENT_ID",
	"SONGLENS_SPOTIFY_CLIENT_SECRET",
	"SONGLENS_SPOTIFY_TOKEN_URL",
	"SONGLENS_SPOTIFY_BASE_URL",
	"SONGLENS_ITUNES_BASE_URL",
	"SONGLENS_FEATURES_SOURCE",
	"SONGLENS_FEATURES_FALLBACK_MODE",
	"SONGLENS_RETRY_MAX_ATTEMPTS",
	"SONGLENS_PIPELINE_COURTESY_DELAY",
	"SONGLENS_LOG_FORMAT",
	"SONGLENS_LOG_LEVEL",
}

// isolate clears SONGLENS_* variables and moves into an empty directory so
// no stray config.yaml is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, name := range configEnvVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Chdir(t.TempDir())
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		isolate(t)

		cfg, err := Load("", nil)
		require.NoError(t, err)

		assert.Equal(t, "music-files", cfg.Input.Dir)
		assert.Equal(t, ".mp3", cfg.Input.Extension)
		assert.Equal(t, "songs.json", cfg.Output.Path)
		assert.Equal(t, "itunes", cfg.Catalog.Strategy)
		assert.Equal(t, "placeholder", cfg.Catalog.Fallback)
		assert.Equal(t, []string{"spotdown.org", "spotdown", ".org"}, cfg.Catalog.NoiseTokens)
		assert.Equal(t, "dataset", cfg.Features.Source)
		assert.Equal(t, "random", cfg.Features.FallbackMode)
		assert.Equal(t, "https://accounts.spotify.com/api/token", cfg.Spotify.TokenURL)
		assert.Equal(t, "https://api.spotify.com/v1", cfg.Spotify.BaseURL)
		assert.Equal(t, "https://itunes.apple.com", cfg.ITunes.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
		assert.Equal(t, 5, cfg.Retry.MaxAttempts)
		assert.Equal(t, 2*time.Second, cfg.Retry.DefaultRetryAfter)
		assert.Equal(t, 200*time.Millisecond, cfg.Pipeline.CourtesyDelay)
		assert.False(t, cfg.UsesSpotify())
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		isolate(t)
		t.Setenv("SONGLENS_INPUT_DIR", "/srv/audio")
		t.Setenv("SONGLENS_CATALOG_STRATEGY", "spotify")
		t.Setenv("SONGLENS_CATALOG_FALLBACK", "skip")
		t.Setenv("SONGLENS_SPOTIFY_CLIENT_ID", "id")
		t.Setenv("SONGLENS_SPOTIFY_CLIENT_SECRET", "secret")
		t.Setenv("SONGLENS_FEATURES_SOURCE", "api")
		t.Setenv("SONGLENS_RETRY_MAX_ATTEMPTS", "3")
		t.Setenv("SONGLENS_PIPELINE_COURTESY_DELAY", "1s")

		cfg, err := Load("", nil)
		require.NoError(t, err)

		assert.Equal(t, "/srv/audio", cfg.Input.Dir)
		assert.Equal(t, "spotify", cfg.Catalog.Strategy)
		assert.Equal(t, "skip", cfg.Catalog.Fallback)
		assert.Equal(t, "id", cfg.Spotify.ClientID)
		assert.Equal(t, "secret", cfg.Spotify.ClientSecret)
		assert.Equal(t, "api", cfg.Features.Source)
		assert.Equal(t, 3, cfg.Retry.MaxAttempts)
		assert.Equal(t, time.Second, cfg.Pipeline.CourtesyDelay)
		assert.True(t, cfg.UsesSpotify())
	})

	t.Run("reads an explicit config file", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "songlens.yaml")
		content := `
input:
  dir: ./tracks
output:
  path: ./out/catalog.json
features:
  fallback_mode: seeded
  seed: 42
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path, nil)
		require.NoError(t, err)

		assert.Equal(t, "./tracks", cfg.Input.Dir)
		assert.Equal(t, "./out/catalog.json", cfg.Output.Path)
		assert.Equal(t, "seeded", cfg.Features.FallbackMode)
		assert.Equal(t, uint64(42), cfg.Features.Seed)
	})

	t.Run("fails when explicit config file is missing", func(t *testing.T) {
		isolate(t)

		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
		assert.Error(t, err)
	})

	t.Run("flags override defaults", func(t *testing.T) {
		isolate(t)
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("input", "", "")
		flags.String("output", "", "")
		require.NoError(t, flags.Parse([]string{"--input", "./incoming", "--output", "catalog.json"}))

		cfg, err := Load("", flags)
		require.NoError(t, err)

		assert.Equal(t, "./incoming", cfg.Input.Dir)
		assert.Equal(t, "catalog.json", cfg.Output.Path)
	})

	t.Run("fails validation when spotify credentials are missing", func(t *testing.T) {
		isolate(t)
		t.Setenv("SONGLENS_CATALOG_STRATEGY", "spotify")

		_, err := Load("", nil)
		require.Error(t, err)
		assert.Equal(t, "invalid configuration: Spotify client credentials are required (set SONGLENS_SPOTIFY_CLIENT_ID and SONGLENS_SPOTIFY_CLIENT_SECRET)", err.Error())
	})
}

func validConfig() *Config {
	return &Config{
		Input:    InputConfig{Dir: "music-files", Extension: ".mp3"},
		Output:   OutputConfig{Path: "songs.json"},
		Catalog:  CatalogConfig{Strategy: "itunes", Fallback: "placeholder"},
		Features: FeaturesConfig{Source: "dataset", DatasetPath: "songs_dataset.csv", FallbackMode: "random"},
		Retry:    RetryConfig{MaxAttempts: 5},
		Log:      LogConfig{Format: "auto"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid defaults", mutate: func(*Config) {}},
		{name: "empty input dir", mutate: func(c *Config) { c.Input.Dir = " " }, wantErr: true},
		{name: "empty output path", mutate: func(c *Config) { c.Output.Path = "" }, wantErr: true},
		{name: "unknown catalog strategy", mutate: func(c *Config) { c.Catalog.Strategy = "deezer" }, wantErr: true},
		{name: "unknown fallback policy", mutate: func(c *Config) { c.Catalog.Fallback = "guess" }, wantErr: true},
		{name: "unknown feature source", mutate: func(c *Config) { c.Features.Source = "model" }, wantErr: true},
		{name: "dataset without path", mutate: func(c *Config) { c.Features.DatasetPath = "" }, wantErr: true},
		{name: "unknown fallback mode", mutate: func(c *Config) { c.Features.FallbackMode = "first" }, wantErr: true},
		{
			name: "api features with itunes catalog",
			mutate: func(c *Config) {
				c.Features.Source = "api"
				c.Spotify = SpotifyConfig{ClientID: "id", ClientSecret: "secret"}
			},
			wantErr: true,
		},
		{
			name: "spotify with credentials",
			mutate: func(c *Config) {
				c.Catalog.Strategy = "spotify"
				c.Features.Source = "api"
				c.Spotify = SpotifyConfig{ClientID: "id", ClientSecret: "secret"}
			},
		},
		{name: "zero retry attempts", mutate: func(c *Config) { c.Retry.MaxAttempts = 0 }, wantErr: true},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
