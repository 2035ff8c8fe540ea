package weather

import (
	"time"
)

// DateLayout is the calendar date form vendors expect in query strings.
const DateLayout = "2006-01-02"

const dateTimeLayout = "2006-01-02 15:04:05"

// ParseDate accepts RFC3339, "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD" and returns
// the calendar date at midnight UTC. The first matching format wins.
// RFC3339 input is converted to the local date first.
func ParseDate(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return midnight(ts.Local()), nil
	}
	if ts, err := time.Parse(dateTimeLayout, s); err == nil {
		return midnight(ts), nil
	}
	if ts, err := time.Parse(DateLayout, s); err == nil {
		return ts, nil
	}
	return time.Time{}, NewAppError(ErrInvalidDate, nil, "unsupported date format %q; use RFC3339, YYYY-MM-DD HH:MM:SS or YYYY-MM-DD", s)
}

func midnight(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
