package model

import (
	"strings"
	"time"
)

// Epoch is the instant used for missing or malformed timestamps so that
// they sort as the oldest entries.
var Epoch = time.Unix(0, 0).UTC()

// timestampLayouts are tried in order. The backend emits RFC 3339; the
// space-separated forms come from SQL defaults.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses a backend timestamp string. It returns Epoch when
// the value is empty or cannot be parsed.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return Epoch
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return Epoch
}

// TimestampLayout is the fixed-width RFC 3339 form used for stored
// timestamps, so that lexical and chronological order agree.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// FormatTimestamp renders t the way the backend stores timestamps.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
