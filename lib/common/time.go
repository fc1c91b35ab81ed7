package common

import "time"

// ISO8601 is the time layout of genesis files and log records.
const ISO8601 string = "2006-01-02T15:04:05.000000000Z07:00"

func FormatISO8601(t time.Time) string {
	return t.Format(ISO8601)
}

// ParseISO8601 also accepts RFC3339 without the fraction of a second.
func ParseISO8601(s string) (t time.Time, err error) {
	if t, err = time.Parse(ISO8601, s); err == nil {
		return
	}

	return time.Parse(time.RFC3339Nano, s)
}
