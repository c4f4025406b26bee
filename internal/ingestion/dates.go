package ingestion

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// The feed is supposed to emit ISO timestamps but has shipped every variant
// below at some point. Explicit formats are tried first; dateparse is the
// catch-all for anything else that still looks like a date.
var feedDateFormats = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate converts a raw feed date string to a date-only time in UTC.
// Returns an error for empty or unparseable input; callers drop the record
// and log, never abort the batch.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "N/A" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, format := range feedDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return toDate(t), nil
		}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return toDate(t), nil
}

func toDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
