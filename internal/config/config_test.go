package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twentefluids/dodecalog/internal/config"
)

func TestLoad(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
interval = 500
history = 3600
watchdog = 5
chart_tick = 250
text_tick = 50
port = "/dev/ttyACM1"
telemetry = true
database = "/var/lib/dodecalog/samples.db"
mqtt_broker = "tcp://localhost:1883"
log_level = "debug"
`)
	configPath := filepath.Join(tempDir, "dodecalog.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("DODECALOG_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Interval, "Expected Interval 500")
	assert.Equal(t, 3600, cfg.History, "Expected History 3600")
	assert.Equal(t, 5, cfg.Watchdog, "Expected Watchdog 5")
	assert.Equal(t, 250, cfg.ChartTick, "Expected ChartTick 250")
	assert.Equal(t, 50, cfg.TextTick, "Expected TextTick 50")
	assert.Equal(t, "/dev/ttyACM1", cfg.Port, "Expected Port /dev/ttyACM1")
	assert.True(t, cfg.Telemetry, "Expected Telemetry true")
	assert.Equal(t, "/var/lib/dodecalog/samples.db", cfg.TelemetryDB)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DODECALOG_CONFIG", "")

	// Run from an empty directory so no stray dodecalog.toml is picked up.
	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(oldWD)

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultIntervalMs, cfg.Interval)
	assert.Equal(t, config.DefaultHistorySec, cfg.History)
	assert.Equal(t, config.DefaultWatchdog, cfg.Watchdog)
	assert.Equal(t, config.DefaultChartTickMs, cfg.ChartTick)
	assert.Equal(t, config.DefaultTextTickMs, cfg.TextTick)
	assert.Equal(t, config.DefaultBaudRate, cfg.Baud)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Sim, "Expected default Sim false")
	assert.Empty(t, cfg.Port, "Expected default Port empty")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
This is not a valid TOML file
`)
	configPath := filepath.Join(tempDir, "dodecalog.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("DODECALOG_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read configuration")
}

func TestInvalidLogLevel(t *testing.T) {
	tempDir := t.TempDir()

	configContent := []byte(`
log_level = "invalid"
`)
	configPath := filepath.Join(tempDir, "dodecalog.toml")
	err := os.WriteFile(configPath, configContent, 0o600)
	require.NoError(t, err)

	t.Setenv("DODECALOG_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestInvalidInterval(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "dodecalog.toml")
	err := os.WriteFile(configPath, []byte("interval = 0\n"), 0o600)
	require.NoError(t, err)

	t.Setenv("DODECALOG_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid interval")
}

func TestTelemetryRequiresDatabase(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "dodecalog.toml")
	err := os.WriteFile(configPath, []byte("telemetry = true\n"), 0o600)
	require.NoError(t, err)

	t.Setenv("DODECALOG_CONFIG", configPath)

	_, err = config.Load()
	require.Error(t, err)
}

func TestHistoryCapacity(t *testing.T) {
	cfg := &config.Config{Interval: 1000, History: 7200}
	assert.Equal(t, 7200, cfg.HistoryCapacity())

	cfg = &config.Config{Interval: 500, History: 3600}
	assert.Equal(t, 7200, cfg.HistoryCapacity())
}
