// Package sample defines the typed readings produced by one poll of the
// logger device, the parser that validates raw device replies, and the
// atomically published State snapshot read by the display goroutine.
package sample

import "math"

// SensorFaultCeiling is the DS18B20 sentinel: the probe reports a
// temperature at or below this value when it is faulted or disconnected.
const SensorFaultCeiling = -127.0

// Sample is one accepted reading of the full rig. Immutable after creation.
type Sample struct {
	Time       float64 // local monotonic clock at parse [s]
	DeviceTime float64 // device-reported clock, kept for diagnostics [s]
	DSTemp     float64 // DS18B20 probe temperature [°C]; NaN on sensor fault
	BMETemp    float64 // BME280 temperature [°C]
	BMEHumi    float64 // BME280 relative humidity [%]
	BMEPres    float64 // BME280 pressure [mbar]
	Setpoint   float64 // circulator setpoint [°C]
	BathTemp   float64 // circulator bath temperature [°C]
}

// HasDSTemp reports whether the probe reading is usable.
func (s Sample) HasDSTemp() bool {
	return !math.IsNaN(s.DSTemp)
}
