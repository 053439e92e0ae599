package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampInput(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{" 2024-01-02T15:04 ", time.Date(2024, 1, 2, 15, 4, 0, 0, time.UTC)},
		{"2024-01-02 15:04:05", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2024-01-02T15:04:05Z", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2024-01-02T15:04:05+02:00", time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC)},
		{"2024-01-02T15:04:05.5Z", time.Date(2024, 1, 2, 15, 4, 5, 500_000_000, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestampInput(tt.input)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, got.Equal(tt.want), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestampInputEmptyAndInvalid(t *testing.T) {
	got, err := ParseTimestampInput("   ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseTimestampInput("last tuesday")
	assert.Error(t, err)
}

func TestFormatTimestampInputRoundTrip(t *testing.T) {
	assert.Equal(t, "", FormatTimestampInput(nil))

	v := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("X", -3600))
	s := FormatTimestampInput(&v)
	assert.Equal(t, "2024-05-06T08:08:09Z", s)

	back, err := ParseTimestampInput(s)
	require.NoError(t, err)
	assert.True(t, back.Equal(v))

	frac := time.Date(2024, 1, 1, 10, 0, 0, 500, time.UTC)
	s = FormatTimestampInput(&frac)
	assert.Equal(t, "2024-01-01T10:00:00.0000005Z", s)
	back, err = ParseTimestampInput(s)
	require.NoError(t, err)
	assert.True(t, back.Equal(frac))
}

func TestFormatTimestampHuman(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Today 09:30", FormatTimestampHuman(time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC), now))
	assert.Equal(t, "Yesterday", FormatTimestampHuman(time.Date(2024, 6, 9, 23, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "3d ago", FormatTimestampHuman(time.Date(2024, 6, 7, 1, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Jan 15", FormatTimestampHuman(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Jan 15 '23", FormatTimestampHuman(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Unknown", FormatTimestampHuman(time.Time{}, now))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "a lo...", TruncateString("a long value", 7))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
}
