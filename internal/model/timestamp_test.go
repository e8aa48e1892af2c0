package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	noon := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339 utc", "2024-03-01T12:00:00Z", noon},
		{"rfc3339 offset and fraction", "2024-03-01T14:00:00.5+02:00", noon.Add(500 * time.Millisecond)},
		{"iso without zone", "2024-03-01T12:00:00", noon},
		{"space separated with offset", "2024-03-01 13:00:00+01:00", noon},
		{"space separated zulu", "2024-03-01 12:00:00Z", noon},
		{"space separated micros", "2024-03-01 12:00:00.000123", noon.Add(123 * time.Microsecond)},
		{"date only", "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"surrounding whitespace", "  2024-03-01T12:00:00Z\n", noon},
		{"year one is kept", "0001-01-01", time.Time{}},
		{"far future", "2300-01-01", time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"empty", "", Epoch},
		{"garbage", "yesterday", Epoch},
		{"invalid month", "2024-13-01", Epoch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseTimestamp(tt.in)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestFormatTimestampIsFixedWidth(t *testing.T) {
	t.Parallel()

	a := FormatTimestamp(time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC))
	b := FormatTimestamp(time.Date(2024, 3, 1, 10, 0, 0, 120_000_000, time.FixedZone("x", 3600)))

	assert.Equal(t, "2024-03-01T09:05:00.000000Z", a)
	assert.Equal(t, "2024-03-01T09:00:00.120000Z", b)
	assert.Len(t, b, len(a))
	assert.True(t, ParseTimestamp(b).Equal(time.Date(2024, 3, 1, 9, 0, 0, 120_000_000, time.UTC)))
}
