package recorder

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/twentefluids/dodecalog/internal/errors"
)

// maxHeaderScan bounds the search for the [DATA] sentinel.
const maxHeaderScan = 100

// Record is one parsed data line of a log file.
type Record struct {
	Time     float64 // elapsed since recording start [s]
	DSTemp   float64
	BMETemp  float64
	BMEHumi  float64
	BMEPres  float64
	Setpoint float64
	BathTemp float64
}

// Log is a fully parsed log file.
type Log struct {
	Header  []string // free-form comment lines, sentinels excluded
	Units   string   // unit-annotation line, informational
	Columns []string // column names
	Records []Record
}

// ReadFile parses a log file written by the Recorder. It scans at most
// maxHeaderScan lines for the case-insensitive [DATA] sentinel, treats
// every prior non-sentinel line as header text, takes the next two lines
// as unit annotation and column names, and parses tab-delimited records
// from there on.
func ReadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrSinkUnavailable, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	log := &Log{}

	found := false
	for i := 0; i < maxHeaderScan && scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToUpper(line) {
		case headerSentinel:
			// Simply skip
		case dataSentinel:
			found = true
		default:
			log.Header = append(log.Header, line)
		}
		if found {
			break
		}
	}
	if !found {
		return nil, errFactory.WithMessage(errors.ErrBadLogFormat, "could not find [DATA] section")
	}

	if !scanner.Scan() {
		return nil, errFactory.WithMessage(errors.ErrBadLogFormat, "missing unit annotation line")
	}
	log.Units = scanner.Text()

	if !scanner.Scan() {
		return nil, errFactory.WithMessage(errors.ErrBadLogFormat, "missing column name line")
	}
	log.Columns = strings.Split(scanner.Text(), "\t")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, err := parseRecord(line)
		if err != nil {
			return nil, err
		}
		log.Records = append(log.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errFactory.Wrap(errors.ErrBadLogFormat, err)
	}

	return log, nil
}

func parseRecord(line string) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 7 {
		return Record{}, errFactory.WithData(errors.ErrBadLogFormat, len(fields))
	}

	vals := make([]float64, 7)
	for i, f := range fields {
		// ParseFloat accepts "NaN", which is how missing probe
		// readings are written.
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Record{}, errFactory.Wrap(errors.ErrBadLogFormat, err)
		}
		vals[i] = v
	}

	return Record{
		Time:     vals[0],
		DSTemp:   vals[1],
		BMETemp:  vals[2],
		BMEHumi:  vals[3],
		BMEPres:  vals[4],
		Setpoint: vals[5],
		BathTemp: vals[6],
	}, nil
}
