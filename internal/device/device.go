// Package device adapts the hardware collaborators: the Arduino-based
// logger rig queried over serial, and the Julabo temperature-bath
// circulator. Both are exposed as small capability interfaces so the
// acquisition worker can run against simulators in tests.
package device

// Logger is the multi-channel logger device. A request is a single
// control character; the reply is one tab-delimited line.
type Logger interface {
	// Request performs one blocking request-reply exchange and returns
	// the raw reply line without the trailing newline.
	Request() (string, error)

	// Alive reports whether the device answered its last exchange.
	Alive() bool

	// Close releases the underlying port.
	Close() error
}

// Circulator is the temperature-bath circulator. Readings are merged
// into each Sample alongside the logger channels.
type Circulator interface {
	// Read returns the current setpoint and bath temperature.
	Read() (setpoint, bath float64, err error)

	Close() error
}
