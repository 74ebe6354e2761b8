package recorder

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twentefluids/dodecalog/internal/errors"
	"github.com/twentefluids/dodecalog/internal/sample"
)

// fakeClock advances by a fixed step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{t: time.Date(2023, 12, 20, 15, 4, 5, 0, time.UTC), step: step}
}

func (c *fakeClock) now() time.Time {
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

func testSample(i int) sample.Sample {
	return sample.Sample{
		Time:     float64(i),
		DSTemp:   21.0 + float64(i)*0.1,
		BMETemp:  22.0 + float64(i)*0.1,
		BMEHumi:  45.0 + float64(i)*0.5,
		BMEPres:  1013.0 + float64(i),
		Setpoint: 35.0,
		BathTemp: 34.25 + float64(i)*0.01,
	}
}

func TestStartSubmitStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run1.txt")
	clock := newFakeClock(time.Second)

	r := New(WithClock(clock.now))
	r.SetComments("test run")

	require.NoError(t, r.Start(path))
	assert.True(t, r.Recording())
	assert.Equal(t, path, r.Path())

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Submit(testSample(i)))
	}
	require.NoError(t, r.Stop())
	assert.False(t, r.Recording())

	log, err := ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, log.Header, "test run")
	assert.Len(t, log.Records, 5, "one data line per submitted sample")
	assert.Equal(t,
		[]string{"time", "DS_temp", "BME_temp", "BME_humi", "BME_pres", "Julabo_setp", "Julabo_bath"},
		log.Columns)
}

func TestRoundTripPrecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.txt")
	clock := newFakeClock(time.Second)

	r := New(WithClock(clock.now))
	require.NoError(t, r.Start(path))

	const n = 20
	for i := 0; i < n; i++ {
		require.NoError(t, r.Submit(testSample(i)))
	}
	require.NoError(t, r.Stop())

	log, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, log.Records, n)

	for i, rec := range log.Records {
		want := testSample(i)
		assert.InDelta(t, want.DSTemp, rec.DSTemp, 0.05, "1 decimal place")
		assert.InDelta(t, want.BMETemp, rec.BMETemp, 0.05)
		assert.InDelta(t, want.BMEHumi, rec.BMEHumi, 0.05)
		assert.InDelta(t, want.BMEPres, rec.BMEPres, 0.05)
		assert.InDelta(t, want.Setpoint, rec.Setpoint, 0.005, "2 decimal places")
		assert.InDelta(t, want.BathTemp, rec.BathTemp, 0.005)
	}

	// Clock steps once at Start and once per Submit
	assert.InDelta(t, 1.0, log.Records[0].Time, 0.05)
	assert.InDelta(t, float64(n), log.Records[n-1].Time, 0.05)
}

func TestSubmitWhileIdleIsNoop(t *testing.T) {
	r := New()

	for i := 0; i < 100; i++ {
		require.NoError(t, r.Submit(testSample(i)))
	}
	assert.False(t, r.Recording())
	assert.Zero(t, r.Elapsed())
}

func TestMissingProbeValueRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.txt")

	r := New()
	require.NoError(t, r.Start(path))

	s := testSample(0)
	s.DSTemp = math.NaN()
	require.NoError(t, r.Submit(s))
	require.NoError(t, r.Stop())

	log, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, log.Records, 1)
	assert.True(t, math.IsNaN(log.Records[0].DSTemp), "missing reading survives the round trip")
}

func TestStartWhileRecordingFails(t *testing.T) {
	dir := t.TempDir()

	r := New()
	require.NoError(t, r.Start(filepath.Join(dir, "a.txt")))
	defer r.Stop()

	err := r.Start(filepath.Join(dir, "b.txt"))
	require.Error(t, err)
}

func TestStartSinkUnavailable(t *testing.T) {
	r := New()

	err := r.Start(filepath.Join(t.TempDir(), "no", "such", "dir", "run.txt"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrSinkUnavailable))
	assert.False(t, r.Recording(), "state remains Idle after a failed start")
}

func TestStopIdempotent(t *testing.T) {
	r := New()
	require.NoError(t, r.Stop())

	require.NoError(t, r.Start(filepath.Join(t.TempDir(), "run.txt")))
	require.NoError(t, r.Stop())
	require.NoError(t, r.Stop())
}

func TestHooks(t *testing.T) {
	var startedPath string
	var stopped bool

	r := New(WithHooks(
		func(path string) { startedPath = path },
		func() { stopped = true },
	))

	path := filepath.Join(t.TempDir(), "run.txt")
	require.NoError(t, r.Start(path))
	assert.Equal(t, path, startedPath)

	require.NoError(t, r.Stop())
	assert.True(t, stopped)
}

func TestElapsed(t *testing.T) {
	clock := newFakeClock(10 * time.Second)
	r := New(WithClock(clock.now))

	require.NoError(t, r.Start(filepath.Join(t.TempDir(), "run.txt")))
	defer r.Stop()

	assert.Equal(t, 10*time.Second, r.Elapsed())
	assert.Equal(t, "0:00:20", r.PrettyElapsed())
}

func TestFilenameConvention(t *testing.T) {
	ts := time.Date(2023, 12, 20, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "231220_150405.txt", Filename(ts))
}

func TestReadFileHeaderVariants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.txt")

	// Lowercase sentinels and extra header chatter must still parse
	content := "[header]\nfirst comment\nsecond comment\n\n[data]\n" +
		"[s]\t[C]\t[C]\t[pct]\t[mbar]\t[C]\t[C]\n" +
		"time\tDS_temp\tBME_temp\tBME_humi\tBME_pres\tJulabo_setp\tJulabo_bath\n" +
		"0.0\t21.0\t22.0\t45.0\t1013.0\t35.00\t34.00\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	log, err := ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, log.Header, "first comment")
	assert.Contains(t, log.Header, "second comment")
	require.Len(t, log.Records, 1)
	assert.Equal(t, 21.0, log.Records[0].DSTemp)
}

func TestReadFileNoDataSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("noise\n", 150)), 0o600))

	_, err := ReadFile(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrBadLogFormat))
}
