// Package config loads application configuration from environment
// variables and an optional YAML file. Environment values take
// precedence over the file; struct tags supply defaults for everything
// else, so a bare deployment starts with sensible settings.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Reporting ReportingConfig `yaml:"reporting" envconfig:"REPORTING"`
	Feeds     FeedsConfig     `yaml:"feeds" envconfig:"FEEDS"`
	Cache     CacheConfig     `yaml:"cache" envconfig:"CACHE"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`
	// AllowedOrigins lists the origins permitted to call the API from a
	// browser. Empty disables CORS headers entirely.
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// ReportingConfig defines the reporting window and targets.
type ReportingConfig struct {
	// CurrentYear anchors the three-year comparison window; the window
	// is [CurrentYear-2, CurrentYear].
	CurrentYear int `yaml:"current_year" envconfig:"CURRENT_YEAR" default:"2026" validate:"gte=2000,lte=2100"`
	// Semester is the census semester code the engine reports on, for
	// example "2026S".
	Semester string `yaml:"semester" envconfig:"SEMESTER" default:"2026S" validate:"required"`
	// NTRGoal is the net-tuition-revenue target for the semester.
	NTRGoal float64 `yaml:"ntr_goal" envconfig:"NTR_GOAL" default:"9800000" validate:"gte=0"`
	// RateFile optionally overrides the compiled per-credit rate table.
	RateFile string `yaml:"rate_file" envconfig:"RATE_FILE"`
}

// FeedsConfig locates the application and census feeds. The application
// feed can come from a local directory (newest file matching the
// pattern) or an HTTP export URL; the URL wins when both are set.
type FeedsConfig struct {
	DataDir            string        `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
	ApplicationPattern string        `yaml:"application_pattern" envconfig:"APPLICATION_PATTERN" default:"applications*.csv"`
	ApplicationURL     string        `yaml:"application_url" envconfig:"APPLICATION_URL" validate:"omitempty,url"`
	CensusPattern      string        `yaml:"census_pattern" envconfig:"CENSUS_PATTERN" default:"census*.xlsx"`
	FetchTimeout       time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" default:"60s" validate:"gt=0"`
}

// CacheConfig controls the snapshot cache and its scheduled re-warm.
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl" envconfig:"TTL" default:"15m"`
	RefreshInterval time.Duration `yaml:"refresh_interval" envconfig:"REFRESH_INTERVAL" default:"30m"`
}

// RateLimitConfig contains API rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25" validate:"gt=0"`
}

// Years returns the reporting window, oldest first.
func (r ReportingConfig) Years() []int {
	return []int{r.CurrentYear - 2, r.CurrentYear - 1, r.CurrentYear}
}

// Load builds the configuration: YAML file first (when present), then
// environment variables on top, then validation.
func Load() (*Config, error) {
	var cfg Config

	if path := configFilePath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("ENROLL", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// Validate checks the field constraints declared on the struct tags.
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// configFilePath finds the config file in the conventional locations; an
// empty result means env-only configuration.
func configFilePath() string {
	if path := os.Getenv("ENROLL_CONFIG"); path != "" {
		return path
	}
	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the configuration a bare deployment runs with.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
		},
		Reporting: ReportingConfig{
			CurrentYear: 2026,
			Semester:    "2026S",
			NTRGoal:     9_800_000,
		},
		Feeds: FeedsConfig{
			DataDir:            "data",
			ApplicationPattern: "applications*.csv",
			CensusPattern:      "census*.xlsx",
			FetchTimeout:       60 * time.Second,
		},
		Cache: CacheConfig{
			TTL:             15 * time.Minute,
			RefreshInterval: 30 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     50,
			Burst:   25,
		},
	}
}
