package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
data_dir: /var/lib/copilot
sleeper:
  username: yamluser
  league_id: yamlleague
monitor:
  poll_interval_seconds: 10
  early_threshold: 8
  late_threshold: 4
cache:
  ttl_seconds: 120
  engine_timeout_seconds: 20
anthropic:
  model: claude-haiku-4-5
  max_tokens: 800
nats:
  url: nats://broker:4222
gateway:
  addr: ":9000"
  allowed_origins:
    - http://localhost:3000
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/copilot", cfg.DataDir)
	assert.Equal(t, "yamluser", cfg.Sleeper.Username)
	assert.Equal(t, "yamlleague", cfg.Sleeper.LeagueID)
	assert.Equal(t, 10*time.Second, cfg.Monitor.PollInterval())
	assert.Equal(t, 8, cfg.Monitor.EarlyThreshold)
	assert.Equal(t, 4, cfg.Monitor.LateThreshold)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL())
	assert.Equal(t, 20*time.Second, cfg.Cache.EngineTimeout())
	assert.Equal(t, "claude-haiku-4-5", cfg.Anthropic.Model)
	assert.EqualValues(t, 800, cfg.Anthropic.MaxTokens)
	assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
	assert.Equal(t, ":9000", cfg.Gateway.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Gateway.AllowedOrigins)
}

func TestEnvOverridesYAML(t *testing.T) {
	t.Setenv("SLEEPER_USERNAME", "envuser")
	t.Setenv("MONITOR_POLL_INTERVAL_SECONDS", "3")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "envuser", cfg.Sleeper.Username)
	assert.Equal(t, 3*time.Second, cfg.Monitor.PollInterval())
	assert.Equal(t, "sk-test", cfg.Anthropic.APIKey)
	// Non-overridden YAML values survive.
	assert.Equal(t, "yamlleague", cfg.Sleeper.LeagueID)
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("SLEEPER_USERNAME", "envuser")
	t.Setenv("SLEEPER_LEAGUE_ID", "envleague")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "envuser", cfg.Sleeper.Username)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "draft.events", cfg.NATS.SubjectPrefix)
	assert.Equal(t, ":8090", cfg.Gateway.Addr)
	assert.Zero(t, cfg.Monitor.PollInterval())
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("SLEEPER_USERNAME", "")
	t.Setenv("SLEEPER_LEAGUE_ID", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLEEPER_USERNAME")
}

func TestLoadBadFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "sleeper: ["))
	require.Error(t, err)
}
