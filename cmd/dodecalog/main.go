package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/twentefluids/dodecalog/internal/acquisition"
	"github.com/twentefluids/dodecalog/internal/config"
	"github.com/twentefluids/dodecalog/internal/device"
	"github.com/twentefluids/dodecalog/internal/history"
	"github.com/twentefluids/dodecalog/internal/logger"
	"github.com/twentefluids/dodecalog/internal/monitor"
	"github.com/twentefluids/dodecalog/internal/pid"
	"github.com/twentefluids/dodecalog/internal/publish"
	"github.com/twentefluids/dodecalog/internal/recorder"
	"github.com/twentefluids/dodecalog/internal/sample"
	"github.com/twentefluids/dodecalog/internal/telemetry"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to claim PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go handleSignals(cancel)

	dev, circ := connectDevices()

	state := sample.NewStateStore()
	hist := history.NewStore(cfg.HistoryCapacity())
	rec := recorder.New()

	sinks := buildSinks()

	worker := acquisition.New(acquisition.Config{
		Interval: cfg.PollInterval(),
		Watchdog: cfg.Watchdog,
	}, dev, circ, state, hist, rec, sinks...)

	go worker.Run(ctx)

	if cfg.Headless {
		runHeadless(ctx, worker, state)
	} else {
		m := monitor.New(monitor.Config{
			State:       state,
			History:     hist,
			Recorder:    rec,
			Lost:        worker.ConnectionLost(),
			LogDir:      cfg.LogDir,
			ReadoutTick: cfg.TextInterval(),
			ChartTick:   cfg.ChartInterval(),
		})

		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			logger.Error().Err(err).Msg("monitor exited with error")
		}
	}

	// Stop acquisition first: no cycle may run against a closed
	// recorder, sink or port.
	cancel()
	<-worker.Done()

	if err := rec.Stop(); err != nil {
		logger.Error().Err(err).Msg("failed to close the log file")
	}
	closeSinks(sinks)
	if circ != nil {
		circ.Close()
	}
	dev.Close()

	logger.Info().Msg("Exiting...")
}

// connectDevices opens the logger (simulated, explicit port, or
// auto-connect) and the bath circulator. A missing circulator is not
// fatal; its columns record as missing.
func connectDevices() (device.Logger, device.Circulator) {
	if cfg.Sim {
		logger.Info().Msg("Using simulated devices")
		return device.NewSimLogger(), device.NewSimCirculator(22.0)
	}

	var (
		dev *device.SerialLogger
		err error
	)

	if cfg.Port != "" {
		dev, err = device.Open(cfg.Port, cfg.Baud)
	} else {
		dev, err = device.AutoConnect(cfg.PortFile, cfg.Baud)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to the logger")
	}

	logger.Info().Str("port", dev.Name()).Msg("Logger connected")

	return dev, nil
}

func buildSinks() []acquisition.Sink {
	var sinks []acquisition.Sink

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	sinks = append(sinks, collector)

	if cfg.MQTTBroker != "" {
		pub, err := publish.NewPublisher(cfg.MQTTBroker, cfg.MQTTTopic)
		if err != nil {
			logger.Error().Err(err).Msg("live publishing disabled")
		} else {
			sinks = append(sinks, pub)
		}
	}

	return sinks
}

func closeSinks(sinks []acquisition.Sink) {
	for _, s := range sinks {
		if c, ok := s.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close sink")
			}
		}
	}
}

// runHeadless keeps acquiring without the TUI until a signal arrives or
// the watchdog declares the connection lost. Useful under a service
// manager with telemetry or MQTT as the output.
func runHeadless(ctx context.Context, worker *acquisition.Worker, state *sample.StateStore) {
	logger.Info().Msg("Running headless")

	for {
		select {
		case <-ctx.Done():
			return
		case <-worker.ConnectionLost():
			logger.Error().Msg("Connection lost, exiting")
			return
		case <-worker.Updated():
			if cfg.Verbose {
				st := state.Load()
				logger.Info().
					Float64("time", st.Sample.Time).
					Float64("ds_temp", st.Sample.DSTemp).
					Float64("bme_temp", st.Sample.BMETemp).
					Float64("bme_humi", st.Sample.BMEHumi).
					Float64("bme_pres", st.Sample.BMEPres).
					Float64("rate_hz", st.RateHz).
					Msg("")
			}
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
