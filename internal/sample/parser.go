package sample

import (
	"math"
	"strconv"
	"strings"

	"github.com/twentefluids/dodecalog/internal/errors"
)

// replyFields is the fixed field count of a device reply:
// device_time_ms, ds_temp, bme_temp, bme_humi, bme_pres_Pa.
const replyFields = 5

var errFactory = errors.New()

// Parse validates a raw tab-delimited device reply and converts it into a
// Sample. now is the local monotonic timestamp in seconds; it replaces the
// device-reported clock so that timestamps are comparable across sessions.
//
// Unit conversions: device time [ms] → [s], pressure [Pa] → [mbar].
// A ds_temp at or below the sensor-fault sentinel becomes NaN.
func Parse(raw string, now float64) (Sample, error) {
	fields := strings.Split(strings.TrimRight(raw, "\r\n"), "\t")
	if len(fields) != replyFields {
		return Sample{}, errFactory.WithData(errors.ErrMalformedReply, len(fields))
	}

	vals := make([]float64, replyFields)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Sample{}, errFactory.Wrap(errors.ErrMalformedReply, err)
		}
		vals[i] = v
	}

	s := Sample{
		Time:       now,
		DeviceTime: vals[0] / 1000, // [ms] to [s]
		DSTemp:     vals[1],
		BMETemp:    vals[2],
		BMEHumi:    vals[3],
		BMEPres:    vals[4] / 100, // [Pa] to [mbar]
	}

	// Catch very intermittent DS18B20 sensor errors
	if s.DSTemp <= SensorFaultCeiling {
		s.DSTemp = math.NaN()
	}

	return s, nil
}
