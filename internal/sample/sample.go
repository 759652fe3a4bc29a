// Package sample decodes the line-delimited JSON readings sent over the
// serial link and hands them to the control loop one at a time.
package sample

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// MaxLineLength is the longest line accepted, matching the display's parse
// buffer.
const MaxLineLength = 256

// Value range accepted for both metrics.
const (
	MinValue = 0
	MaxValue = 100
)

// Decode errors. Lines failing any of these are dropped.
var (
	ErrMalformed    = errors.New("malformed sample")
	ErrMissingField = errors.New("missing field")
	ErrOutOfRange   = errors.New("value out of range")
	ErrLineTooLong  = errors.New("line too long")
)

// ErrClosed is returned by a transport read after Close.
var ErrClosed = errors.New("sample source closed")

// Sample is one decoded reading.
type Sample struct {
	Time    string `json:"time"`
	CPULoad int    `json:"cpu_load"`
	CPUTemp int    `json:"cpu_temp"`
}

// wire uses pointers so absent fields can be told apart from zero. Metrics
// decode as float64 because some host agents report fractional values.
type wire struct {
	Time    *string  `json:"time"`
	CPULoad *float64 `json:"cpu_load"`
	CPUTemp *float64 `json:"cpu_temp"`
}

// Decode parses and validates a single line (without its terminator).
func Decode(line []byte) (Sample, error) {
	if len(line) > MaxLineLength {
		return Sample{}, fmt.Errorf("%w: %d bytes", ErrLineTooLong, len(line))
	}

	var w wire
	if err := json.Unmarshal(line, &w); err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case w.Time == nil:
		return Sample{}, fmt.Errorf("%w: time", ErrMissingField)
	case w.CPULoad == nil:
		return Sample{}, fmt.Errorf("%w: cpu_load", ErrMissingField)
	case w.CPUTemp == nil:
		return Sample{}, fmt.Errorf("%w: cpu_temp", ErrMissingField)
	}

	load, err := toValue("cpu_load", *w.CPULoad)
	if err != nil {
		return Sample{}, err
	}
	temp, err := toValue("cpu_temp", *w.CPUTemp)
	if err != nil {
		return Sample{}, err
	}

	return Sample{Time: *w.Time, CPULoad: load, CPUTemp: temp}, nil
}

// toValue truncates toward zero, then range checks.
func toValue(field string, f float64) (int, error) {
	t := math.Trunc(f)
	if t < MinValue || t > MaxValue {
		return 0, fmt.Errorf("%w: %s=%v", ErrOutOfRange, field, f)
	}
	return int(t), nil
}

// Source yields validated samples without blocking.
type Source interface {
	// Poll returns the next sample, or false if none is waiting.
	Poll() (Sample, bool)

	// Err reports why the source stopped producing samples, or nil while it
	// is still live. Samples queued before the stop are still returned by Poll.
	Err() error

	// Close releases the underlying transport.
	Close() error
}
