// Package acquisition runs the fixed-rate polling loop: each cycle
// requests one sample from the logger device, parses it, merges the
// circulator readings, and publishes the result to the shared state
// snapshot, the chart histories, the recorder, and any extra sinks.
// A watchdog counts consecutive failures and declares the connection
// lost at a configured threshold.
package acquisition

import (
	"context"
	"math"
	"time"

	"github.com/twentefluids/dodecalog/internal/device"
	"github.com/twentefluids/dodecalog/internal/errors"
	"github.com/twentefluids/dodecalog/internal/history"
	"github.com/twentefluids/dodecalog/internal/logger"
	"github.com/twentefluids/dodecalog/internal/recorder"
	"github.com/twentefluids/dodecalog/internal/sample"
)

// rateWindow is the number of accepted polls over which the achieved
// rate is averaged.
const rateWindow = 10

// Sink receives every accepted sample. Sink errors are diagnostics;
// they never stop the loop.
type Sink interface {
	Consume(s sample.Sample) error
}

// Config holds the worker's timing and watchdog settings.
type Config struct {
	// Interval is the target poll interval.
	Interval time.Duration
	// Watchdog is the number of consecutive failed polls after which
	// the connection is declared lost.
	Watchdog int
}

// Worker owns the polling loop. It is the only writer of the state
// snapshot and the history buffers.
type Worker struct {
	cfg   Config
	dev   device.Logger
	circ  device.Circulator // nil when no circulator is connected
	state *sample.StateStore
	hist  *history.Store
	rec   *recorder.Recorder
	sinks []Sink

	lost    chan struct{} // closed once when the watchdog trips
	updated chan struct{} // coalescing notification of accepted polls
	done    chan struct{} // closed when Run returns

	epoch    time.Time
	failures int
	updates  uint64

	rateHz    float64
	rateStart float64
	rateCount int
}

// New creates a Worker. circ and rec may be nil.
func New(cfg Config, dev device.Logger, circ device.Circulator,
	state *sample.StateStore, hist *history.Store, rec *recorder.Recorder, sinks ...Sink,
) *Worker {
	return &Worker{
		cfg:     cfg,
		dev:     dev,
		circ:    circ,
		state:   state,
		hist:    hist,
		rec:     rec,
		sinks:   sinks,
		lost:    make(chan struct{}),
		updated: make(chan struct{}, 1),
		done:    make(chan struct{}),
		epoch:   time.Now(),
		rateHz:  math.NaN(),
	}
}

// ConnectionLost is closed exactly once, when the watchdog threshold is
// reached. After that no further poll cycles execute.
func (w *Worker) ConnectionLost() <-chan struct{} {
	return w.lost
}

// Updated signals that a new snapshot was published. Notifications are
// coalesced; a slow consumer sees at least one.
func (w *Worker) Updated() <-chan struct{} {
	return w.updated
}

// Done is closed when Run has returned and no further poll cycles will
// execute. Shutdown waits on it before closing the recorder, the sinks
// and the device.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Run polls at the configured interval until ctx is cancelled or the
// watchdog trips. The ticker drops ticks when a cycle overruns, so one
// slow cycle never stacks delay onto the next.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	logger.Info().
		Dur("interval", w.cfg.Interval).
		Int("watchdog", w.cfg.Watchdog).
		Msg("Acquisition started")

	w.run(ctx, ticker.C)

	logger.Info().Msg("Acquisition stopped")
}

func (w *Worker) run(ctx context.Context, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			if !w.cycle() {
				return
			}
		}
	}
}

// cycle runs one poll. It returns false when the watchdog has declared
// the connection lost and the loop must halt.
func (w *Worker) cycle() bool {
	raw, err := w.dev.Request()
	if err != nil {
		return w.fail(err)
	}

	s, err := sample.Parse(raw, w.clock())
	if err != nil {
		return w.fail(err)
	}

	s.Setpoint = math.NaN()
	s.BathTemp = math.NaN()
	if w.circ != nil {
		sp, bath, err := w.circ.Read()
		if err != nil {
			// The circulator is a side channel; its failure does not
			// count against the logger watchdog.
			logger.Warn().Err(err).Msg("Circulator read failed")
		} else {
			s.Setpoint = sp
			s.BathTemp = bath
		}
	}

	w.failures = 0
	w.updates++
	w.trackRate(s.Time)

	w.state.Publish(sample.State{Sample: s, Updates: w.updates, RateHz: w.rateHz})

	w.hist.Append(history.ChanSetpoint, s.Time, s.Setpoint)
	w.hist.Append(history.ChanBath, s.Time, s.BathTemp)
	w.hist.Append(history.ChanDSTemp, s.Time, s.DSTemp)
	w.hist.Append(history.ChanBMETemp, s.Time, s.BMETemp)
	w.hist.Append(history.ChanBMEHumi, s.Time, s.BMEHumi)
	w.hist.Append(history.ChanBMEPres, s.Time, s.BMEPres)

	if w.rec != nil {
		if err := w.rec.Submit(s); err != nil {
			logger.Warn().Err(err).Msg("Log write failed")
		}
	}

	for _, sink := range w.sinks {
		if err := sink.Consume(s); err != nil {
			logger.Warn().Err(err).Msg("Sink rejected sample")
		}
	}

	select {
	case w.updated <- struct{}{}:
	default:
	}

	return true
}

// fail records one failed poll and trips the watchdog at the threshold.
func (w *Worker) fail(err error) bool {
	w.failures++
	logger.Warn().
		Err(err).
		Str("error_code", string(errors.CodeOf(err))).
		Int("consecutive_failures", w.failures).
		Msg("Poll failed")

	if w.failures >= w.cfg.Watchdog {
		logger.Error().Int("failures", w.failures).Msg("Connection to device lost")
		close(w.lost)
		return false
	}

	return true
}

// clock returns seconds since the worker was created, from the
// process's monotonic clock.
func (w *Worker) clock() float64 {
	return time.Since(w.epoch).Seconds()
}

// trackRate updates the achieved poll rate over a sliding window of
// accepted samples.
func (w *Worker) trackRate(now float64) {
	if w.rateCount == 0 {
		w.rateStart = now
	}
	w.rateCount++
	if w.rateCount > rateWindow {
		span := now - w.rateStart
		if span > 0 {
			w.rateHz = rateWindow / span
		}
		w.rateStart = now
		w.rateCount = 1
	}
}
