// Package config loads service configuration from a YAML file with
// environment variable overrides. Secrets only ever come from the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	DataDir string `yaml:"data_dir"`

	Sleeper   SleeperConfig   `yaml:"sleeper"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Cache     CacheConfig     `yaml:"cache"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	NATS      NATSConfig      `yaml:"nats"`
	Gateway   GatewayConfig   `yaml:"gateway"`
}

// SleeperConfig binds the service to one user and league.
type SleeperConfig struct {
	Username string `yaml:"username"`
	LeagueID string `yaml:"league_id"`
	// DraftID overrides league draft discovery, useful for mock drafts.
	DraftID string `yaml:"draft_id"`
}

// MonitorConfig tunes the poll loop.
type MonitorConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	EarlyThreshold      int `yaml:"early_threshold"`
	LateThreshold       int `yaml:"late_threshold"`
}

// PollInterval returns the configured interval, or zero for the default.
func (m MonitorConfig) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalSeconds) * time.Second
}

// CacheConfig tunes the speculative recommendation cache.
type CacheConfig struct {
	TTLSeconds           int `yaml:"ttl_seconds"`
	EngineTimeoutSeconds int `yaml:"engine_timeout_seconds"`
}

// TTL returns the configured TTL, or zero for the default.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// EngineTimeout returns the configured timeout, or zero for the default.
func (c CacheConfig) EngineTimeout() time.Duration {
	return time.Duration(c.EngineTimeoutSeconds) * time.Second
}

// AnthropicConfig configures the recommendation engine. The API key is
// env-only.
type AnthropicConfig struct {
	APIKey    string `yaml:"-"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// NATSConfig configures event publishing. Empty URL disables it.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// GatewayConfig configures the HTTP and WebSocket surface.
type GatewayConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads the YAML file at path, then applies environment overrides.
// An empty path skips the file and configures from the environment alone.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DataDir: "data",
		NATS: NATSConfig{
			SubjectPrefix: "draft.events",
		},
		Gateway: GatewayConfig{
			Addr: ":8090",
		},
	}
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("DATA_DIR", c.DataDir)

	c.Sleeper.Username = getEnv("SLEEPER_USERNAME", c.Sleeper.Username)
	c.Sleeper.LeagueID = getEnv("SLEEPER_LEAGUE_ID", c.Sleeper.LeagueID)
	c.Sleeper.DraftID = getEnv("SLEEPER_DRAFT_ID", c.Sleeper.DraftID)

	c.Monitor.PollIntervalSeconds = getEnvAsInt("MONITOR_POLL_INTERVAL_SECONDS", c.Monitor.PollIntervalSeconds)

	c.Anthropic.APIKey = getEnv("ANTHROPIC_API_KEY", c.Anthropic.APIKey)
	c.Anthropic.Model = getEnv("ANTHROPIC_MODEL", c.Anthropic.Model)

	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	if c.NATS.URL == "default" {
		c.NATS.URL = nats.DefaultURL
	}

	c.Gateway.Addr = getEnv("GATEWAY_ADDR", c.Gateway.Addr)
}

func (c *Config) validate() error {
	if c.Sleeper.Username == "" {
		return fmt.Errorf("sleeper username is required (SLEEPER_USERNAME)")
	}
	if c.Sleeper.LeagueID == "" {
		return fmt.Errorf("sleeper league id is required (SLEEPER_LEAGUE_ID)")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
