package timezone_test

import (
	"testing"
	"time"

	"guesthouse/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedZone(t *testing.T) {
	tests := []struct {
		minutes int
		name    string
	}{
		{minutes: 0, name: "UTC"},
		{minutes: 180, name: "UTC+03:00"},
		{minutes: 330, name: "UTC+05:30"},
		{minutes: -240, name: "UTC-04:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := timezone.FixedZone(tt.minutes)

			name, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.minutes*60, offset)
		})
	}
}

func TestNowUsesApplicationZone(t *testing.T) {
	now := timezone.Now()

	assert.False(t, now.IsZero())
	assert.Equal(t, timezone.GetLocation(), now.Location())
}

func TestFormatAndParseRoundTrip(t *testing.T) {
	instant := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	layout := "2006-01-02 15:04:05"

	parsed, err := timezone.Parse(layout, timezone.Format(instant, layout))
	require.NoError(t, err)

	assert.True(t, instant.Equal(parsed))
}
