package device

import (
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/twentefluids/dodecalog/internal/errors"
	"github.com/twentefluids/dodecalog/internal/logger"
)

const (
	// sampleRequest is the control character that triggers one reading.
	sampleRequest = "?\n"
	// identityRequest asks the firmware for its identity string.
	identityRequest = "id?\n"
	// identityWant must appear in the identity reply.
	identityWant = "Dodecahedron logger"

	replyTimeout = 2 * time.Second
	readChunk    = 64
)

var errFactory = errors.New()

// SerialLogger talks to the logger rig over a serial port.
type SerialLogger struct {
	mu    sync.Mutex
	port  serial.Port
	name  string
	alive bool
}

// Open opens the named port and verifies the device identity.
func Open(portName string, baud int) (*SerialLogger, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrPortOpenFailed, err)
	}
	if err := port.SetReadTimeout(replyTimeout); err != nil {
		port.Close()
		return nil, errFactory.Wrap(errors.ErrPortOpenFailed, err)
	}

	d := &SerialLogger{port: port, name: portName}

	// Give the MCU a moment after the port toggles DTR, then probe.
	time.Sleep(500 * time.Millisecond)
	d.drain()

	id, err := d.exchange(identityRequest)
	if err != nil {
		port.Close()
		return nil, err
	}
	if !strings.Contains(id, identityWant) {
		port.Close()
		return nil, errFactory.WithData(errors.ErrIdentityMismatch, id)
	}

	d.alive = true
	logger.Info().Str("port", portName).Str("identity", id).Msg("Logger device connected")

	return d, nil
}

// AutoConnect tries the persisted last-known port first, then every
// available port on the system. On success the winning port is persisted
// for the next startup.
func AutoConnect(portFile string, baud int) (*SerialLogger, error) {
	candidates := []string{}
	if last, err := LoadLastPort(portFile); err == nil && last != "" {
		candidates = append(candidates, last)
	}

	ports, err := serial.GetPortsList()
	if err != nil {
		logger.Warn().Err(err).Msg("Could not list serial ports")
	}
	for _, p := range ports {
		if len(candidates) == 0 || p != candidates[0] {
			candidates = append(candidates, p)
		}
	}

	for _, name := range candidates {
		logger.Debug().Str("port", name).Msg("Probing port")
		d, err := Open(name, baud)
		if err != nil {
			continue
		}
		if err := SaveLastPort(portFile, name); err != nil {
			logger.Warn().Err(err).Msg("Could not persist port")
		}
		return d, nil
	}

	return nil, errFactory.New(errors.ErrDeviceNotFound)
}

// Request implements Logger.
func (d *SerialLogger) Request() (string, error) {
	line, err := d.exchange(sampleRequest)
	if err != nil {
		d.mu.Lock()
		d.alive = false
		d.mu.Unlock()
		return "", err
	}

	d.mu.Lock()
	d.alive = true
	d.mu.Unlock()
	return line, nil
}

// Alive implements Logger.
func (d *SerialLogger) Alive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alive
}

// Close implements Logger.
func (d *SerialLogger) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alive = false
	return d.port.Close()
}

// Name returns the port name.
func (d *SerialLogger) Name() string {
	return d.name
}

// exchange writes a request and reads one reply line.
func (d *SerialLogger) exchange(req string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.port.Write([]byte(req)); err != nil {
		return "", errFactory.Wrap(errors.ErrDeviceIO, err)
	}
	return d.readLine()
}

// readLine accumulates bytes until a newline or the reply deadline.
// The port read timeout makes each Read bounded, so a dead device
// cannot hang the acquisition cycle.
func (d *SerialLogger) readLine() (string, error) {
	var sb strings.Builder
	buf := make([]byte, readChunk)
	deadline := time.Now().Add(replyTimeout)

	for time.Now().Before(deadline) {
		n, err := d.port.Read(buf)
		if err != nil {
			return "", errFactory.Wrap(errors.ErrDeviceIO, err)
		}
		if n == 0 {
			// Read timeout with nothing buffered
			break
		}
		for i := 0; i < n; i++ {
			if buf[i] == '\n' {
				return strings.TrimRight(sb.String(), "\r"), nil
			}
			sb.WriteByte(buf[i])
		}
	}

	return "", errFactory.WithMessage(errors.ErrDeviceIO, "reply timeout")
}

// drain discards stale bytes left in the receive buffer.
func (d *SerialLogger) drain() {
	d.port.SetReadTimeout(50 * time.Millisecond)
	defer d.port.SetReadTimeout(replyTimeout)

	buf := make([]byte, 256)
	for {
		n, err := d.port.Read(buf)
		if err != nil || n == 0 {
			return
		}
	}
}
