// Package recorder turns the live sample stream into a durable text log.
// It is a two-state machine: Idle (no sink open) and Recording (sink
// open, appending one line per accepted sample).
package recorder

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/twentefluids/dodecalog/internal/errors"
	"github.com/twentefluids/dodecalog/internal/logger"
	"github.com/twentefluids/dodecalog/internal/sample"
)

const (
	headerSentinel = "[HEADER]"
	dataSentinel   = "[DATA]"

	// unitLine annotates the data columns; informational only.
	unitLine = "[s]\t[±0.5 °C]\t[±0.5 °C]\t[±3 pct]\t[±1 mbar]\t[°C]\t[°C]"
	// columnLine names the data columns.
	columnLine = "time\tDS_temp\tBME_temp\tBME_humi\tBME_pres\tJulabo_setp\tJulabo_bath"

	dataFormat = "%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.2f\t%.2f\n"
)

var errFactory = errors.New()

// Recorder serializes samples to a log file. Submit is called from the
// acquisition worker's cadence; Start/Stop arrive from the control
// surface. The mutex guarantees a Start or Stop is applied either fully
// before or fully after an in-flight Submit.
type Recorder struct {
	mu       sync.Mutex
	file     *os.File
	w        *bufio.Writer
	path     string
	start    time.Time
	comments string

	now       func() time.Time // injectable for tests
	onStarted func(path string)
	onStopped func()
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock substitutes the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithHooks registers recording started/stopped notifications. Either
// hook may be nil. Hooks run synchronously under the state transition.
func WithHooks(started func(path string), stopped func()) Option {
	return func(r *Recorder) {
		r.onStarted = started
		r.onStopped = stopped
	}
}

func New(opts ...Option) *Recorder {
	r := &Recorder{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetComments sets the free-form text written into the header block of
// the next recording.
func (r *Recorder) SetComments(text string) {
	r.mu.Lock()
	r.comments = text
	r.mu.Unlock()
}

// Filename returns the conventional log file name for the given start
// time: yyMMdd_HHmmss.txt.
func Filename(t time.Time) string {
	return t.Format("060102_150405") + ".txt"
}

// Start opens the sink and writes the header block. Valid only from
// Idle; starting while already Recording is an error.
func (r *Recorder) Start(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		return errFactory.WithMessage(errors.ErrInvalidArgument, "already recording")
	}

	f, err := os.Create(path)
	if err != nil {
		return errFactory.Wrap(errors.ErrSinkUnavailable, err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, headerSentinel)
	fmt.Fprintln(w, r.comments)
	fmt.Fprintln(w)
	fmt.Fprintln(w, dataSentinel)
	fmt.Fprintln(w, unitLine)
	fmt.Fprintln(w, columnLine)
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return errFactory.Wrap(errors.ErrSinkUnavailable, err)
	}

	r.file = f
	r.w = w
	r.path = path
	r.start = r.now()

	logger.Info().Str("path", path).Msg("Recording started")
	if r.onStarted != nil {
		r.onStarted(path)
	}

	return nil
}

// Submit writes one data line. While Idle it is a silent no-op.
func (r *Recorder) Submit(s sample.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}

	elapsed := r.now().Sub(r.start).Seconds()
	if _, err := fmt.Fprintf(r.w, dataFormat,
		elapsed, s.DSTemp, s.BMETemp, s.BMEHumi, s.BMEPres, s.Setpoint, s.BathTemp); err != nil {
		return errFactory.Wrap(errors.ErrSinkUnavailable, err)
	}

	return nil
}

// Stop flushes and closes the sink. Idempotent when already Idle.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopLocked()
}

func (r *Recorder) stopLocked() error {
	if r.file == nil {
		return nil
	}

	flushErr := r.w.Flush()
	closeErr := r.file.Close()
	r.file = nil
	r.w = nil
	r.path = ""

	logger.Info().Msg("Recording stopped")
	if r.onStopped != nil {
		r.onStopped()
	}

	if flushErr != nil {
		return errFactory.Wrap(errors.ErrSinkUnavailable, flushErr)
	}
	if closeErr != nil {
		return errFactory.Wrap(errors.ErrSinkUnavailable, closeErr)
	}
	return nil
}

// Recording reports whether a sink is open.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file != nil
}

// Path returns the active sink path, or empty while Idle.
func (r *Recorder) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Elapsed returns the time since Start while Recording, zero while Idle.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0
	}
	return r.now().Sub(r.start)
}

// PrettyElapsed formats Elapsed as H:MM:SS.
func (r *Recorder) PrettyElapsed() string {
	d := r.Elapsed().Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	s := d - m*time.Minute
	return fmt.Sprintf("%d:%02d:%02d", h, m, int(s.Seconds()))
}
