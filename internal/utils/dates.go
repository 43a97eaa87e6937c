package utils

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDateOrTime accepts either an RFC 3339 timestamp or a YYYY-MM-DD date.
// The second return value reports whether only a date was supplied.
func ParseDateOrTime(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", value)
}

// DateRange is an optional [From, To] window. A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange parses optional start and end values. A date-only end value
// covers the whole day, so the returned To is exclusive of the following midnight.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if start != "" {
		from, _, err := ParseDateOrTime(start)
		if err != nil {
			return r, err
		}
		r.From = &from
	}
	if end != "" {
		to, dateOnly, err := ParseDateOrTime(end)
		if err != nil {
			return r, err
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = &to
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return r, fmt.Errorf("end date must be after start date")
	}
	return r, nil
}
