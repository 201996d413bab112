package draft

import (
	"time"

	"roomdesk/internal/model"
)

// IsOrdered reports whether a candidate interval is strictly ordered.
// This is the sole acceptance rule for a booking's time range; equal
// timestamps are invalid.
func IsOrdered(start, end time.Time) bool {
	return start.Before(end)
}

// HasChanged reports whether an edit draft differs from its baseline
// booking. It is false only when title, room and both resolved timestamps
// are all identical. A nil baseline (creation flow) always counts as
// changed.
func HasChanged(start, end time.Time, roomID, title string, baseline *model.Booking) bool {
	if baseline == nil {
		return true
	}
	return title != baseline.Title ||
		roomID != baseline.RoomID ||
		!start.Equal(baseline.Start) ||
		!end.Equal(baseline.End)
}
