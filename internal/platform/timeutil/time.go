package timeutil

import (
	"time"

	"github.com/cockroachdb/errors"
)

// RFC3339Millis is the API timestamp format: RFC 3339 UTC, fixed millisecond precision.
const RFC3339Millis = "2006-01-02T15:04:05.000Z"

// RFC3339Micros is the log timestamp format.
const RFC3339Micros = "2006-01-02T15:04:05.000000Z"

// ErrInvalidDate is returned by ParseDate for input in none of the accepted layouts.
var ErrInvalidDate = errors.New("invalid date")

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Time marshals as RFC3339Millis. Decoding uses the embedded time.Time.
type Time struct {
	time.Time
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(RFC3339Millis) + `"`), nil
}

// ParseDate accepts RFC 3339 timestamps and plain calendar dates such as
// "2019-06-01" (what HTML date inputs submit). The result is in UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// NewTime wraps t.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}
