package device

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// SimLogger produces synthetic replies in the device wire format. It is
// used for --sim operation and in tests that need a live-looking rig
// without hardware.
type SimLogger struct {
	mu        sync.Mutex
	start     time.Time
	alive     bool
	faultRate float64 // probability of a DS18B20 sentinel reading
}

func NewSimLogger() *SimLogger {
	return &SimLogger{start: time.Now(), alive: true, faultRate: 0.01}
}

// Request implements Logger. The reply mimics the firmware: millisecond
// uptime plus slowly drifting sensor values.
func (d *SimLogger) Request() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := time.Since(d.start)
	t := elapsed.Seconds()

	dsTemp := 21.0 + 0.5*math.Sin(t/60) + rand.Float64()*0.1
	if rand.Float64() < d.faultRate {
		dsTemp = -127.0 // sensor fault sentinel
	}
	bmeTemp := 22.0 + 0.4*math.Sin(t/90) + rand.Float64()*0.1
	bmeHumi := 45.0 + 3.0*math.Sin(t/300) + rand.Float64()*0.5
	bmePres := 101300.0 + 40.0*math.Sin(t/600) + rand.Float64()*5

	return fmt.Sprintf("%d\t%.1f\t%.1f\t%.1f\t%.0f",
		elapsed.Milliseconds(), dsTemp, bmeTemp, bmeHumi, bmePres), nil
}

// Alive implements Logger.
func (d *SimLogger) Alive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alive
}

// Close implements Logger.
func (d *SimLogger) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alive = false
	return nil
}

// SimCirculator mimics a temperature bath slowly converging on its
// setpoint.
type SimCirculator struct {
	mu       sync.Mutex
	setpoint float64
	bath     float64
}

func NewSimCirculator(setpoint float64) *SimCirculator {
	return &SimCirculator{setpoint: setpoint, bath: 20.0}
}

// Read implements Circulator.
func (c *SimCirculator) Read() (float64, float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// First-order approach to the setpoint with a little noise
	c.bath += (c.setpoint-c.bath)*0.02 + (rand.Float64()-0.5)*0.02
	return c.setpoint, c.bath, nil
}

// SetSetpoint changes the target bath temperature.
func (c *SimCirculator) SetSetpoint(sp float64) {
	c.mu.Lock()
	c.setpoint = sp
	c.mu.Unlock()
}

func (c *SimCirculator) Close() error {
	return nil
}
