// Package config provides configuration types and defaults for vitality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/vitality/internal/individual/domain"
	"github.com/zjrosen/vitality/internal/paths"
	"github.com/zjrosen/vitality/internal/tracing"
)

// EnvPrefix is prepended to every environment override, e.g.
// VITALITY_INDIVIDUAL_DEFAULT_MAX_ENERGY.
const EnvPrefix = "VITALITY"

// Config holds all configuration options for vitality.
type Config struct {
	// DatabasePath is the SQLite file. Empty means the default location.
	DatabasePath string           `mapstructure:"database_path"`
	Individual   IndividualConfig `mapstructure:"individual"`
	Cache        CacheConfig      `mapstructure:"cache"`
	Events       EventsConfig     `mapstructure:"events"`
	Tracing      tracing.Config   `mapstructure:"tracing"`
	Log          LogConfig        `mapstructure:"log"`
}

// IndividualConfig tunes the vitality rules.
type IndividualConfig struct {
	DefaultMaxEnergy    int           `mapstructure:"default_max_energy"`
	FullRest            time.Duration `mapstructure:"full_rest"`
	AutoSleepOnCollapse bool          `mapstructure:"auto_sleep_on_collapse"`
}

// CacheConfig controls the read-through cache in front of the database.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// EventsConfig controls the in-process event broker.
type EventsConfig struct {
	BufferSize int  `mapstructure:"buffer_size"`
	Persist    bool `mapstructure:"persist"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Individual: IndividualConfig{
			DefaultMaxEnergy:    domain.DefaultMaxEnergy,
			FullRest:            domain.DefaultFullRest,
			AutoSleepOnCollapse: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Second,
		},
		Events: EventsConfig{
			BufferSize: 64,
			Persist:    true,
		},
		Tracing: tracing.Config{
			Exporter:    tracing.ExporterStdout,
			SampleRatio: 1,
			ServiceName: tracing.DefaultServiceName,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// SetDefaults registers every default with v so unset keys and environment
// overrides resolve against them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("individual.default_max_energy", d.Individual.DefaultMaxEnergy)
	v.SetDefault("individual.full_rest", d.Individual.FullRest)
	v.SetDefault("individual.auto_sleep_on_collapse", d.Individual.AutoSleepOnCollapse)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("events.buffer_size", d.Events.BufferSize)
	v.SetDefault("events.persist", d.Events.Persist)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.sample_ratio", d.Tracing.SampleRatio)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// NewViper returns a viper instance with defaults and environment overrides
// configured. It does not read any file.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile, or the first of ./.vitality.yaml and
// ~/.config/vitality/config.yaml when configFile is empty. Running without
// any config file is fine; an explicit configFile must exist.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing default config file, or "".
func findConfigFile() string {
	candidates := []string{".vitality.yaml"}
	if dir, err := paths.ConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "config.yaml"))
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate reports every invalid option at once.
func (c Config) Validate() error {
	var errs []error
	if c.Individual.DefaultMaxEnergy <= 0 {
		errs = append(errs, fmt.Errorf("individual.default_max_energy must be positive, got %d", c.Individual.DefaultMaxEnergy))
	}
	if c.Individual.FullRest <= 0 {
		errs = append(errs, fmt.Errorf("individual.full_rest must be positive, got %s", c.Individual.FullRest))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL))
	}
	if c.Events.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("events.buffer_size must be positive, got %d", c.Events.BufferSize))
	}
	if c.Tracing.Enabled {
		switch c.Tracing.Exporter {
		case tracing.ExporterStdout, tracing.ExporterOTLP:
		default:
			errs = append(errs, fmt.Errorf("tracing.exporter must be %q or %q, got %q",
				tracing.ExporterStdout, tracing.ExporterOTLP, c.Tracing.Exporter))
		}
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be within [0, 1], got %g", c.Tracing.SampleRatio))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// ResolveDatabasePath returns DatabasePath or the default location when
// unset. A leading ~ is expanded to the home directory.
func (c Config) ResolveDatabasePath() (string, error) {
	if c.DatabasePath != "" {
		return paths.ExpandHome(c.DatabasePath)
	}
	dir, err := paths.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vitality.db"), nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Vitality Configuration

# SQLite database file (default: ~/.vitality/vitality.db)
# database_path: ~/.vitality/vitality.db

individual:
  default_max_energy: 100      # Capacity of newly created individuals
  full_rest: 7h                # Sleep length that restores full capacity
  auto_sleep_on_collapse: true # Fall asleep when energy reaches zero

# Read-through cache in front of the database
cache:
  enabled: true
  ttl: 30s

events:
  buffer_size: 64  # Per-subscriber buffer for live event output
  persist: true    # Append events to the domain_events table

tracing:
  enabled: false
  exporter: stdout   # stdout or otlp
  # endpoint: localhost:4317
  sample_ratio: 1
  service_name: vitality

log:
  level: warn  # debug, info, warn, error
  # file: ~/.vitality/debug.log
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
