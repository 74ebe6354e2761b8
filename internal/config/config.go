package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/twentefluids/dodecalog/internal/errors"
)

const (
	DefaultIntervalMs  = 1000
	DefaultHistorySec  = 7200
	DefaultWatchdog    = 3
	DefaultChartTickMs = 500
	DefaultTextTickMs  = 100
	DefaultLogLevel    = "info"
	DefaultPortFile    = "config/port.txt"
	DefaultBaudRate    = 115200
)

// Config holds all settings for the acquisition daemon. Values come from
// a TOML file (dodecalog.toml), environment, and command-line flags, with
// flags taking precedence.
type Config struct {
	Interval    int    `mapstructure:"interval"`     // poll interval [ms]
	History     int    `mapstructure:"history"`      // chart history duration [s]
	Watchdog    int    `mapstructure:"watchdog"`     // consecutive failures before connection lost
	ChartTick   int    `mapstructure:"chart_tick"`   // chart refresh cadence [ms]
	TextTick    int    `mapstructure:"text_tick"`    // readout refresh cadence [ms]
	Port        string `mapstructure:"port"`         // serial port override; empty = auto-connect
	PortFile    string `mapstructure:"port_file"`    // persisted last-known port
	Baud        int    `mapstructure:"baud"`         // serial baud rate
	Sim         bool   `mapstructure:"sim"`          // use simulated devices
	Headless    bool   `mapstructure:"headless"`     // run without the TUI
	LogDir      string `mapstructure:"log_dir"`      // directory for recorded log files
	Telemetry   bool   `mapstructure:"telemetry"`    // archive samples to SQLite
	TelemetryDB string `mapstructure:"database"`     // telemetry database path
	MQTTBroker  string `mapstructure:"mqtt_broker"`  // empty disables live publishing
	MQTTTopic   string `mapstructure:"mqtt_topic"`   // topic prefix for live publishing
	LogLevel    string `mapstructure:"log_level"`    // debug, info, warning, error
	Debug       bool   `mapstructure:"debug"`
	Verbose     bool   `mapstructure:"verbose"`
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Interval) * time.Millisecond
}

// HistoryCapacity returns the per-channel ring capacity:
// history duration divided by the poll interval.
func (c *Config) HistoryCapacity() int {
	return c.History * 1000 / c.Interval
}

// ChartInterval returns the chart refresh cadence as a duration.
func (c *Config) ChartInterval() time.Duration {
	return time.Duration(c.ChartTick) * time.Millisecond
}

// TextInterval returns the readout refresh cadence as a duration.
func (c *Config) TextInterval() time.Duration {
	return time.Duration(c.TextTick) * time.Millisecond
}

func Load() (*Config, error) {
	errFactory := errors.New()

	fs := pflag.NewFlagSet("dodecalog", pflag.ContinueOnError)
	// Tolerate foreign flags so Load works under `go test`.
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Int("interval", DefaultIntervalMs, "Poll interval in milliseconds")
	fs.Int("history", DefaultHistorySec, "Chart history duration in seconds")
	fs.Int("watchdog", DefaultWatchdog, "Consecutive failed polls before the connection is declared lost")
	fs.String("port", "", "Serial port of the logger device (empty = auto-connect)")
	fs.Int("baud", DefaultBaudRate, "Serial baud rate")
	fs.Bool("sim", false, "Use simulated devices instead of serial hardware")
	fs.Bool("headless", false, "Run without the TUI, logging snapshots to stderr")
	fs.String("log-dir", ".", "Directory for recorded log files")
	fs.Bool("telemetry", false, "Archive accepted samples to SQLite")
	fs.String("database", "", "Telemetry database path")
	fs.String("mqtt-broker", "", "MQTT broker URL for live publishing (empty disables)")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warning, error")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("interval", DefaultIntervalMs)
	v.SetDefault("history", DefaultHistorySec)
	v.SetDefault("watchdog", DefaultWatchdog)
	v.SetDefault("chart_tick", DefaultChartTickMs)
	v.SetDefault("text_tick", DefaultTextTickMs)
	v.SetDefault("port_file", DefaultPortFile)
	v.SetDefault("baud", DefaultBaudRate)
	v.SetDefault("log_dir", ".")
	v.SetDefault("mqtt_topic", "dodecalog")
	v.SetDefault("log_level", DefaultLogLevel)

	if path := os.Getenv("DODECALOG_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("dodecalog")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// An explicitly named but unreadable file is an error; a
			// missing search-path file is not.
			if _, statErr := os.Stat(v.ConfigFileUsed()); statErr == nil || os.Getenv("DODECALOG_CONFIG") != "" {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	// Flags override file values
	fs.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		v.Set(key, f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks value ranges and the log level name.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.History <= 0 || c.History*1000 < c.Interval {
		return errFactory.WithData(errors.ErrInvalidConfig, "history shorter than poll interval")
	}
	if c.Watchdog <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "watchdog threshold must be positive")
	}
	if c.ChartTick <= 0 || c.TextTick <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "refresh cadences must be positive")
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithData(errors.ErrInvalidDBPath, "telemetry enabled without database path")
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}
