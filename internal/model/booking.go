package model

import "time"

// Booking represents a persisted room reservation.
type Booking struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	UserID    string    `json:"user_id"`
	RepeatID  string    `json:"repeat_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Duration returns the booked interval length.
func (b *Booking) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// IsValid reports whether the booking interval is strictly ordered.
func (b *Booking) IsValid() bool {
	return b.Start.Before(b.End)
}

// OverlapsWith checks if this booking overlaps another in time.
// Half-open interval [start, end) semantics.
func (b *Booking) OverlapsWith(other *Booking) bool {
	return b.Start.Before(other.End) && other.Start.Before(b.End)
}

// ContainsTime checks whether t falls inside the booking interval.
func (b *Booking) ContainsTime(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// SameDayAs reports whether the booking starts on the given calendar day.
func (b *Booking) SameDayAs(day time.Time) bool {
	y1, m1, d1 := b.Start.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// BookingSubmission carries the resolved field set handed to the
// persistence gateway when a new booking is created.
type BookingSubmission struct {
	RoomID   string    `json:"resource_id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	UserID   string    `json:"requester_id"`
	RepeatID string    `json:"repeat_id,omitempty"`
}

// BookingFields carries the mutable field set of an update submission.
type BookingFields struct {
	RoomID   string    `json:"resource_id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	RepeatID string    `json:"repeat_id,omitempty"`
}
