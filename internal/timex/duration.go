// Package timex contains time helpers shared by configuration and the wire
// converters.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Duration is a time.Duration that unmarshals from either a Go duration
// string ("30s", "2m") or an integer number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

// MaxMillis is the latest millisecond timestamp accepted from a backup.
// Anything later than year 9999 is treated as corrupt input.
const MaxMillis uint64 = 253402300799999

// ValidMillis reports whether ms is a plausible millisecond timestamp.
func ValidMillis(ms uint64) bool {
	return ms > 0 && ms <= MaxMillis
}

// FromMillis converts a millisecond timestamp to a UTC time.
func FromMillis(ms uint64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}
