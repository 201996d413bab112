package timeutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHourLabel(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "00"},
		{9, "09"},
		{13, "13"},
		{23, "23"},
	}

	for _, tt := range tests {
		got, err := HourLabel(tt.hour)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestHourLabel_OutOfRange(t *testing.T) {
	for _, hour := range []int{-1, 24, 100} {
		_, err := HourLabel(hour)
		assert.ErrorIs(t, err, ErrInvalidHour, "hour %d", hour)
	}
}

func TestResolveAbsoluteTime(t *testing.T) {
	ref := time.Date(2024, 1, 8, 17, 42, 31, 999, time.UTC)

	got, err := ResolveAbsoluteTime(ref, "09:15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 9, 15, 0, 0, time.UTC), got)
}

func TestResolveAbsoluteTime_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, loc)

	got, err := ResolveAbsoluteTime(ref, "23:59")
	require.NoError(t, err)
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())
}

func TestResolveAbsoluteTime_RoundTrip(t *testing.T) {
	ref := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	for hour := 0; hour < 24; hour += 3 {
		for minute := 0; minute < 60; minute += 7 {
			s := fmt.Sprintf("%02d:%02d", hour, minute)
			resolved, err := ResolveAbsoluteTime(ref, s)
			require.NoError(t, err)
			assert.Equal(t, s, ClockLabel(resolved))
		}
	}
}

func TestResolveAbsoluteTime_Malformed(t *testing.T) {
	ref := time.Now()

	tests := []string{"", "9", "9:15:00", "aa:bb", "24:00", "12:60", "-1:30", "12:-5"}
	for _, s := range tests {
		_, err := ResolveAbsoluteTime(ref, s)
		require.Error(t, err, "input %q", s)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr, "input %q", s)
	}
}

func TestResolveAbsoluteTime_DoesNotMutateRef(t *testing.T) {
	ref := time.Date(2024, 1, 8, 17, 42, 0, 0, time.UTC)
	before := ref

	_, err := ResolveAbsoluteTime(ref, "09:00")
	require.NoError(t, err)
	assert.True(t, ref.Equal(before))
}

func TestMinuteLabel(t *testing.T) {
	base := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		offset int
		want   string
	}{
		{0, "00"},
		{15, "15"},
		{59, "59"},
		{75, "15"}, // carries into the next hour, minute component only
		{-15, "45"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MinuteLabel(base, tt.offset), "offset %d", tt.offset)
	}
}

func TestClockLabel(t *testing.T) {
	assert.Equal(t, "09:05", ClockLabel(time.Date(2024, 1, 8, 9, 5, 0, 0, time.UTC)))
	assert.Equal(t, "00:00", ClockLabel(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "23:59", ClockLabel(time.Date(2024, 1, 8, 23, 59, 0, 0, time.UTC)))
}
