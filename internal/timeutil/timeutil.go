// Package timeutil converts between display time-of-day strings and
// absolute timestamps on a reference calendar day.
package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidHour is returned by HourLabel for hours outside 0..23.
var ErrInvalidHour = errors.New("hour out of range 0..23")

// ParseError reports a malformed HH:MM time-of-day string.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Input, e.Reason)
}

// HourLabel renders an hour as a zero-padded two-digit label.
func HourLabel(hour int) (string, error) {
	if hour < 0 || hour > 23 {
		return "", ErrInvalidHour
	}
	return fmt.Sprintf("%02d", hour), nil
}

// ResolveAbsoluteTime combines the calendar date of ref with the hour and
// minute of a HH:MM string, producing an absolute timestamp on that day in
// ref's location. Seconds and nanoseconds are zeroed.
func ResolveAbsoluteTime(ref time.Time, s string) (time.Time, error) {
	hour, minute, err := parseClock(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location()), nil
}

// MinuteLabel returns the zero-padded minute label of ref shifted by offset
// minutes. The offset may be negative or exceed 59; the carry into hours is
// applied before the minute component is extracted, and only the minute
// component is rendered. Callers that also read the hour must account for
// the carry themselves.
func MinuteLabel(ref time.Time, offset int) string {
	shifted := ref.Add(time.Duration(offset) * time.Minute)
	return fmt.Sprintf("%02d", shifted.Minute())
}

// ClockLabel renders a timestamp's time of day as a HH:MM string.
func ClockLabel(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, &ParseError{Input: s, Reason: "expected HH:MM"}
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, &ParseError{Input: s, Reason: "hour is not a number"}
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, &ParseError{Input: s, Reason: "minute is not a number"}
	}

	if hour < 0 || hour > 23 {
		return 0, 0, &ParseError{Input: s, Reason: "hour out of range 0..23"}
	}
	if minute < 0 || minute > 59 {
		return 0, 0, &ParseError{Input: s, Reason: "minute out of range 0..59"}
	}
	return hour, minute, nil
}
