package rows

import (
	"fmt"
	"strings"
	"time"
)

// Formatter turns a raw message timestamp into the day key used for grouping
// and the clock text shown on the message row.
type Formatter interface {
	Format(ts string) (dateKey, timeText string, err error)
}

// DefaultFormatter renders M/D/YY and h:mm AM/PM. With a nil Location the
// timestamp's own offset is used.
type DefaultFormatter struct {
	Location *time.Location
}

func (f DefaultFormatter) Format(ts string) (string, string, error) {
	t, err := ParseTimestamp(ts)
	if err != nil {
		return "", "", err
	}
	if f.Location != nil {
		t = t.In(f.Location)
	}
	d, c := FormatDateTime(t)
	return d, c, nil
}

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 forms: RFC 3339 with Z or an offset,
// optional fractional seconds, naive date-times (read as UTC), minute
// precision, a space instead of T, and bare dates.
func ParseTimestamp(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if len(v) > 10 && v[10] == ' ' {
		v = v[:10] + "T" + v[11:]
	}
	// a lowercase z is valid ISO but not valid for time.Parse
	if strings.HasSuffix(v, "z") {
		v = v[:len(v)-1] + "Z"
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// FormatDateTime returns the date as M/D/YY and the time as h:mm AM/PM.
func FormatDateTime(t time.Time) (string, string) {
	return t.Format("1/2/06"), t.Format("3:04 PM")
}
