package entities

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimestampLayout is the stored text form of bookkeeping timestamps. It is
// UTC without a zone suffix, fixed width, so stored values sort lexically.
const TimestampLayout = "2006-01-02T15:04:05.000000"

var timestampParseLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp is a UTC time persisted as TEXT in TimestampLayout.
type Timestamp struct {
	time.Time
}

// Now returns the current UTC time truncated to the stored precision.
func Now() Timestamp {
	return Timestamp{Time: time.Now().UTC().Truncate(time.Microsecond)}
}

// String formats t in TimestampLayout.
func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.String(), nil
}

func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("timestamp: unsupported source type %T", src)
	}
}

func (t *Timestamp) parse(s string) error {
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp accepts the stored layout plus the ISO-8601 variants older
// databases contain.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampParseLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp: cannot parse %q", s)
}
