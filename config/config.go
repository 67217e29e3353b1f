package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for the enrichment run
type Config struct {
	Input     InputConfig
	Output    OutputConfig
	Catalog   CatalogConfig
	Spotify   SpotifyConfig
	ITunes    ITunesConfig
	Features  FeaturesConfig
	HTTP      HTTPConfig
	RateLimit RateLimitConfig
	Retry     RetryConfig
	Cache     CacheConfig
	Pipeline  PipelineConfig
	Log       LogConfig
}

// InputConfig describes where audio files are read from
type InputConfig struct {
	Dir       string `mapstructure:"dir"`
	Extension string `mapstructure:"extension"`
}

// OutputConfig describes the catalog artifact
type OutputConfig struct {
	Path string `mapstructure:"path"`
}

// CatalogConfig selects the catalog source and its fallback policy
type CatalogConfig struct {
	Strategy      string   `mapstructure:"strategy"` // "spotify" or "itunes"
	Fallback      string   `mapstructure:"fallback"` // "skip" or "placeholder"
	MinSimilarity float64  `mapstructure:"min_similarity"`
	NoiseTokens   []string `mapstructure:"noise_tokens"`
}

// SpotifyConfig holds Spotify Web API credentials and endpoints
type SpotifyConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenURL     string `mapstructure:"token_url"`
	BaseURL      string `mapstructure:"base_url"`
}

// ITunesConfig holds the public iTunes Search API endpoint
type ITunesConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// FeaturesConfig selects the feature source
type FeaturesConfig struct {
	Source       string `mapstructure:"source"` // "dataset" or "api"
	DatasetPath  string `mapstructure:"dataset_path"`
	FallbackMode string `mapstructure:"fallback_mode"` // "random" or "seeded"
	Seed         uint64 `mapstructure:"seed"`
}

// HTTPConfig holds outbound HTTP settings
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// RateLimitConfig holds client-side pacing configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// RetryConfig bounds the 429 retry loop
type RetryConfig struct {
	MaxAttempts       int           `mapstructure:"max_attempts"`
	DefaultRetryAfter time.Duration `mapstructure:"default_retry_after"`
	MaxDelay          time.Duration `mapstructure:"max_delay"`
}

// CacheConfig holds lookup cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// PipelineConfig holds orchestration settings
type PipelineConfig struct {
	CourtesyDelay time.Duration `mapstructure:"courtesy_delay"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "auto", "console" or "json"
}

// flagBindings maps CLI flag names to config keys
var flagBindings = map[string]string{
	"input":     "input.dir",
	"output":    "output.path",
	"catalog":   "catalog.strategy",
	"features":  "features.source",
	"dataset":   "features.dataset_path",
	"log-level": "log.level",
}

// Load loads configuration from defaults, an optional config file,
// SONGLENS_* environment variables and any bound command-line flags.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/songlens/")
	}

	v.SetEnvPrefix("SONGLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
// Every key gets a default so environment variables can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.dir", "music-files")
	v.SetDefault("input.extension", ".mp3")

	v.SetDefault("output.path", "songs.json")

	v.SetDefault("catalog.strategy", "itunes")
	v.SetDefault("catalog.fallback", "placeholder")
	v.SetDefault("catalog.min_similarity", 0.6)
	v.SetDefault("catalog.noise_tokens", []string{"spotdown.org", "spotdown", ".org"})

	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.client_secret", "")
	v.SetDefault("spotify.token_url", "https://accounts.spotify.com/api/token")
	v.SetDefault("spotify.base_url", "https://api.spotify.com/v1")

	v.SetDefault("itunes.base_url", "https://itunes.apple.com")

	v.SetDefault("features.source", "dataset")
	v.SetDefault("features.dataset_path", "songs_dataset.csv")
	v.SetDefault("features.fallback_mode", "random")
	v.SetDefault("features.seed", 0)

	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.user_agent", "SongLens/1.0")

	v.SetDefault("ratelimit.requests_per_second", 5.0)
	v.SetDefault("ratelimit.burst", 5)

	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.default_retry_after", "2s")
	v.SetDefault("retry.max_delay", "60s")

	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("pipeline.courtesy_delay", "200ms")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
}

// validate validates the configuration
func validate(config *Config) error {
	if strings.TrimSpace(config.Input.Dir) == "" {
		return fmt.Errorf("input directory is required (set SONGLENS_INPUT_DIR)")
	}

	if strings.TrimSpace(config.Output.Path) == "" {
		return fmt.Errorf("output path is required (set SONGLENS_OUTPUT_PATH)")
	}

	if config.Catalog.Strategy != "spotify" && config.Catalog.Strategy != "itunes" {
		return fmt.Errorf("catalog strategy must be 'spotify' or 'itunes', got: %s", config.Catalog.Strategy)
	}

	if config.Catalog.Fallback != "skip" && config.Catalog.Fallback != "placeholder" {
		return fmt.Errorf("catalog fallback must be 'skip' or 'placeholder', got: %s", config.Catalog.Fallback)
	}

	if config.Features.Source != "dataset" && config.Features.Source != "api" {
		return fmt.Errorf("feature source must be 'dataset' or 'api', got: %s", config.Features.Source)
	}

	if config.Features.Source == "dataset" {
		if config.Features.DatasetPath == "" {
			return fmt.Errorf("dataset path is required when feature source is 'dataset'")
		}
		if config.Features.FallbackMode != "random" && config.Features.FallbackMode != "seeded" {
			return fmt.Errorf("feature fallback mode must be 'random' or 'seeded', got: %s", config.Features.FallbackMode)
		}
	}

	if config.Features.Source == "api" && config.Catalog.Strategy != "spotify" {
		return fmt.Errorf("feature source 'api' requires catalog strategy 'spotify'")
	}

	if config.UsesSpotify() && (config.Spotify.ClientID == "" || config.Spotify.ClientSecret == "") {
		return fmt.Errorf("Spotify client credentials are required (set SONGLENS_SPOTIFY_CLIENT_ID and SONGLENS_SPOTIFY_CLIENT_SECRET)")
	}

	if config.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got: %d", config.Retry.MaxAttempts)
	}

	switch config.Log.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("log format must be 'auto', 'console' or 'json', got: %s", config.Log.Format)
	}

	return nil
}

// UsesSpotify reports whether any configured component talks to the Spotify Web API
func (c *Config) UsesSpotify() bool {
	return c.Catalog.Strategy == "spotify" || c.Features.Source == "api"
}
