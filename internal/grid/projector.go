// Package grid maps a booking collection onto the room × day × hour
// display grid. The projection only groups for display; it performs no
// conflict detection between bookings.
package grid

import (
	"time"

	"roomdesk/internal/model"
)

// PreviewRoomCount is how many rooms a collapsed day row shows.
const PreviewRoomCount = 3

// CellKey addresses one (day, hour) cell of the grid. Day is a day index
// into the visible range, Hour an hour index into the visible hours.
type CellKey struct {
	Day  int
	Hour int
}

// Input is everything the projector needs for one projection pass.
type Input struct {
	Bookings []model.Booking
	Rooms    []model.Room
	// Days are the visible calendar days, in display order.
	Days []time.Time
	// Hours are the visible hours of day (0..23), in display order.
	Hours []int
	// ExpandedDay is the index into Days of the one expanded row; an
	// out-of-range value leaves every row collapsed.
	ExpandedDay int
}

// Projection is the computed grid. Cells hold every booking attributed to
// a visible cell, keyed by cell; room scope per row is a display-density
// decision answered separately by RoomsFor.
type Projection struct {
	Cells map[CellKey][]model.Booking

	rooms       []model.Room
	days        int
	expandedDay int
}

// Project attributes each booking to at most one cell: the one whose day
// matches the booking's start day and whose hour matches the booking's
// start hour. A booking spanning several hours still lands only in its
// start cell.
func Project(in Input) Projection {
	p := Projection{
		Cells:       make(map[CellKey][]model.Booking),
		rooms:       in.Rooms,
		days:        len(in.Days),
		expandedDay: in.ExpandedDay,
	}

	hourIndex := make(map[int]int, len(in.Hours))
	for i, h := range in.Hours {
		hourIndex[h] = i
	}

	for _, b := range in.Bookings {
		day := -1
		for i, d := range in.Days {
			if b.SameDayAs(d) {
				day = i
				break
			}
		}
		if day < 0 {
			continue
		}
		hour, ok := hourIndex[b.Start.Hour()]
		if !ok {
			continue
		}
		key := CellKey{Day: day, Hour: hour}
		p.Cells[key] = append(p.Cells[key], b)
	}

	return p
}

// RoomsFor returns the rooms in scope for a day row: every room for the
// expanded row, a fixed-size preview for collapsed ones. Bookings in
// hidden rooms still exist in Cells; they are merely not rendered.
func (p Projection) RoomsFor(day int) []model.Room {
	if day == p.expandedDay {
		return p.rooms
	}
	if len(p.rooms) <= PreviewRoomCount {
		return p.rooms
	}
	return p.rooms[:PreviewRoomCount]
}

// CellBookings returns the bookings attributed to a cell whose room is in
// scope for the cell's row.
func (p Projection) CellBookings(day, hour int) []model.Booking {
	all := p.Cells[CellKey{Day: day, Hour: hour}]
	if len(all) == 0 {
		return nil
	}

	scope := make(map[string]bool)
	for _, r := range p.RoomsFor(day) {
		scope[r.ID] = true
	}

	var out []model.Booking
	for _, b := range all {
		if scope[b.RoomID] {
			out = append(out, b)
		}
	}
	return out
}
