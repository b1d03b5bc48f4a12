// Package config loads the service configuration from defaults, an optional
// YAML file, an optional .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Feed formats understood by the intelligence feed parser
const (
	FormatDomains = "domains"
	FormatHosts   = "hosts"
)

// Config is the root configuration document
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	Engine       EngineConfig       `yaml:"engine"`
	Storage      StorageConfig      `yaml:"storage"`
	Reputation   ReputationConfig   `yaml:"reputation"`
	Intelligence IntelligenceConfig `yaml:"intelligence"`
	Lists        ListsConfig        `yaml:"lists"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`

	parsedReadTimeout     time.Duration
	parsedWriteTimeout    time.Duration
	parsedShutdownTimeout time.Duration
}

// LoggingConfig configures logrus
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// EngineConfig holds cache lifetimes, source timeouts and background intervals
type EngineConfig struct {
	AnalysisTTL    string `yaml:"analysis_ttl"`
	ReputationTTL  string `yaml:"reputation_ttl"`
	SourceTimeout  string `yaml:"source_timeout"`
	IntelTimeout   string `yaml:"intel_timeout"`
	UpdateInterval string `yaml:"update_interval"`
	SweepInterval  string `yaml:"sweep_interval"`
	SweepMaxAge    string `yaml:"sweep_max_age"`

	parsedAnalysisTTL    time.Duration
	parsedReputationTTL  time.Duration
	parsedSourceTimeout  time.Duration
	parsedIntelTimeout   time.Duration
	parsedUpdateInterval time.Duration
	parsedSweepInterval  time.Duration
	parsedSweepMaxAge    time.Duration
}

// StorageConfig selects and configures the state store
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
}

// ReputationConfig configures the external reputation source.
// An empty endpoint selects the built-in deterministic source.
type ReputationConfig struct {
	Endpoint string  `yaml:"endpoint"`
	QPS      float64 `yaml:"qps"`
	Burst    int     `yaml:"burst"`
}

// FeedConfig is one threat-intelligence list, remote or local
type FeedConfig struct {
	URL    string `yaml:"url,omitempty"`
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format"`
	// Legitimate marks a feed of known-good domains
	Legitimate bool `yaml:"legitimate"`
}

// IntelligenceConfig lists the feeds merged by the updater.
// With no feeds the built-in static batch is used.
type IntelligenceConfig struct {
	Feeds []FeedConfig `yaml:"feeds"`
}

// ListsConfig adds seed domains on top of the built-in lists
type ListsConfig struct {
	Blacklist []string `yaml:"blacklist"`
	Whitelist []string `yaml:"whitelist"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "10s",
			WriteTimeout:    "10s",
			ShutdownTimeout: "15s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Engine: EngineConfig{
			AnalysisTTL:    "10m",
			ReputationTTL:  "1h",
			SourceTimeout:  "150ms",
			IntelTimeout:   "30s",
			UpdateInterval: "30m",
			SweepInterval:  "60m",
			SweepMaxAge:    "24h",
		},
		Storage: StorageConfig{
			Driver: DriverFile,
			Path:   "phishguard-state.json",
		},
		Reputation: ReputationConfig{
			QPS:   10,
			Burst: 5,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults, .env and the environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("PHISHGUARD_ADDR", c.Server.Addr)
	c.Logging.Level = getEnv("PHISHGUARD_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("PHISHGUARD_LOG_FORMAT", c.Logging.Format)

	c.Engine.AnalysisTTL = getEnv("PHISHGUARD_ANALYSIS_TTL", c.Engine.AnalysisTTL)
	c.Engine.ReputationTTL = getEnv("PHISHGUARD_REPUTATION_TTL", c.Engine.ReputationTTL)
	c.Engine.SourceTimeout = getEnv("PHISHGUARD_SOURCE_TIMEOUT", c.Engine.SourceTimeout)
	c.Engine.UpdateInterval = getEnv("PHISHGUARD_UPDATE_INTERVAL", c.Engine.UpdateInterval)
	c.Engine.SweepInterval = getEnv("PHISHGUARD_SWEEP_INTERVAL", c.Engine.SweepInterval)

	c.Storage.Driver = getEnv("PHISHGUARD_STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Path = getEnv("PHISHGUARD_STORAGE_PATH", c.Storage.Path)
	c.Storage.DatabaseURL = getEnv("DATABASE_URL", c.Storage.DatabaseURL)

	c.Reputation.Endpoint = getEnv("PHISHGUARD_REPUTATION_ENDPOINT", c.Reputation.Endpoint)
	if v := getEnv("PHISHGUARD_REPUTATION_QPS", ""); v != "" {
		if qps, err := strconv.ParseFloat(v, 64); err == nil {
			c.Reputation.QPS = qps
		}
	}

	if v := getEnv("PHISHGUARD_BLACKLIST", ""); v != "" {
		c.Lists.Blacklist = append(c.Lists.Blacklist, splitList(v)...)
	}
	if v := getEnv("PHISHGUARD_WHITELIST", ""); v != "" {
		c.Lists.Whitelist = append(c.Lists.Whitelist, splitList(v)...)
	}
}

// Validate checks the configuration and parses its duration strings
func (c *Config) Validate() error {
	durations := []struct {
		name   string
		value  string
		target *time.Duration
	}{
		{"server.read_timeout", c.Server.ReadTimeout, &c.Server.parsedReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout, &c.Server.parsedWriteTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout, &c.Server.parsedShutdownTimeout},
		{"engine.analysis_ttl", c.Engine.AnalysisTTL, &c.Engine.parsedAnalysisTTL},
		{"engine.reputation_ttl", c.Engine.ReputationTTL, &c.Engine.parsedReputationTTL},
		{"engine.source_timeout", c.Engine.SourceTimeout, &c.Engine.parsedSourceTimeout},
		{"engine.intel_timeout", c.Engine.IntelTimeout, &c.Engine.parsedIntelTimeout},
		{"engine.update_interval", c.Engine.UpdateInterval, &c.Engine.parsedUpdateInterval},
		{"engine.sweep_interval", c.Engine.SweepInterval, &c.Engine.parsedSweepInterval},
		{"engine.sweep_max_age", c.Engine.SweepMaxAge, &c.Engine.parsedSweepMaxAge},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, d.value, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("invalid %s %q: must be positive", d.name, d.value)
		}
		*d.target = parsed
	}

	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the file driver")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("storage.database_url is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported storage driver: %s", c.Storage.Driver)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}

	if c.Reputation.QPS < 0 || c.Reputation.Burst < 0 {
		return errors.New("reputation.qps and reputation.burst must not be negative")
	}

	for i, feed := range c.Intelligence.Feeds {
		if (feed.URL == "") == (feed.Path == "") {
			return fmt.Errorf("intelligence.feeds[%d]: exactly one of url or path is required", i)
		}
		switch feed.Format {
		case FormatDomains, FormatHosts:
		default:
			return fmt.Errorf("intelligence.feeds[%d]: unsupported format %q", i, feed.Format)
		}
	}

	return nil
}

// ReadTimeoutDuration returns the parsed server read timeout
func (s ServerConfig) ReadTimeoutDuration() time.Duration { return s.parsedReadTimeout }

// WriteTimeoutDuration returns the parsed server write timeout
func (s ServerConfig) WriteTimeoutDuration() time.Duration { return s.parsedWriteTimeout }

// ShutdownTimeoutDuration returns the parsed graceful shutdown timeout
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration { return s.parsedShutdownTimeout }

// Timings returns the parsed engine durations. Only valid after Validate.
func (e EngineConfig) Timings() Timings {
	return Timings{
		AnalysisTTL:    e.parsedAnalysisTTL,
		ReputationTTL:  e.parsedReputationTTL,
		SourceTimeout:  e.parsedSourceTimeout,
		IntelTimeout:   e.parsedIntelTimeout,
		UpdateInterval: e.parsedUpdateInterval,
		SweepInterval:  e.parsedSweepInterval,
		SweepMaxAge:    e.parsedSweepMaxAge,
	}
}

// Timings are the engine durations in parsed form
type Timings struct {
	AnalysisTTL    time.Duration
	ReputationTTL  time.Duration
	SourceTimeout  time.Duration
	IntelTimeout   time.Duration
	UpdateInterval time.Duration
	SweepInterval  time.Duration
	SweepMaxAge    time.Duration
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
