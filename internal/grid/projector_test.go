package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomdesk/internal/model"
)

var testRooms = []model.Room{
	{ID: "r1", Name: "West house"},
	{ID: "r2", Name: "Middle house"},
	{ID: "r3", Name: "Est house"},
	{ID: "r4", Name: "Callbooth 1"},
	{ID: "r5", Name: "Callbooth 2"},
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func booking(id, roomID string, d, hour, min int) model.Booking {
	start := time.Date(2024, 1, d, hour, min, 0, 0, time.UTC)
	return model.Booking{
		ID:     id,
		RoomID: roomID,
		Start:  start,
		End:    start.Add(30 * time.Minute),
	}
}

func weekInput(bookings []model.Booking, expanded int) Input {
	days := make([]time.Time, 0, 5)
	for d := 8; d <= 12; d++ {
		days = append(days, day(d))
	}
	return Input{
		Bookings:    bookings,
		Rooms:       testRooms,
		Days:        days,
		Hours:       []int{8, 9, 10, 11, 12},
		ExpandedDay: expanded,
	}
}

func TestProject_AttributesToStartCell(t *testing.T) {
	// Spans two hours but only its start cell holds it.
	long := booking("b1", "r1", 9, 9, 0)
	long.End = long.Start.Add(2 * time.Hour)

	p := Project(weekInput([]model.Booking{long}, -1))

	require.Len(t, p.Cells, 1)
	got := p.Cells[CellKey{Day: 1, Hour: 1}]
	require.Len(t, got, 1)
	assert.Equal(t, "b1", got[0].ID)
}

func TestProject_EachBookingInOneCell(t *testing.T) {
	bookings := []model.Booking{
		booking("b1", "r1", 8, 8, 0),
		booking("b2", "r2", 8, 8, 15),
		booking("b3", "r1", 10, 12, 0),
	}
	p := Project(weekInput(bookings, -1))

	total := 0
	for _, cell := range p.Cells {
		total += len(cell)
	}
	assert.Equal(t, len(bookings), total)

	sameCell := p.Cells[CellKey{Day: 0, Hour: 0}]
	assert.Len(t, sameCell, 2, "same day and hour share a cell")
}

func TestProject_SkipsOutOfRangeBookings(t *testing.T) {
	bookings := []model.Booking{
		booking("outside-days", "r1", 20, 9, 0),
		booking("outside-hours", "r1", 8, 6, 0),
	}
	p := Project(weekInput(bookings, -1))
	assert.Empty(t, p.Cells)
}

func TestProject_Idempotent(t *testing.T) {
	bookings := []model.Booking{
		booking("b1", "r1", 8, 8, 0),
		booking("b2", "r2", 9, 10, 0),
	}
	first := Project(weekInput(bookings, 1))
	second := Project(weekInput(bookings, 1))
	assert.Equal(t, first.Cells, second.Cells)
}

func TestRoomsFor_PreviewAndExpanded(t *testing.T) {
	p := Project(weekInput(nil, 2))

	collapsed := p.RoomsFor(0)
	require.Len(t, collapsed, PreviewRoomCount)
	assert.Equal(t, "r1", collapsed[0].ID)
	assert.Equal(t, "r3", collapsed[2].ID)

	expanded := p.RoomsFor(2)
	assert.Len(t, expanded, len(testRooms))
}

func TestRoomsFor_FewRoomsAlwaysFull(t *testing.T) {
	in := weekInput(nil, -1)
	in.Rooms = testRooms[:2]
	p := Project(in)

	assert.Len(t, p.RoomsFor(0), 2)
}

func TestCellBookings_FiltersHiddenRooms(t *testing.T) {
	bookings := []model.Booking{
		booking("visible", "r1", 8, 9, 0),
		booking("hidden", "r5", 8, 9, 0),
	}
	p := Project(weekInput(bookings, 1))

	// Day 0 is collapsed; r5 falls outside the preview.
	got := p.CellBookings(0, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "visible", got[0].ID)

	// The hidden booking is still attributed, just not rendered.
	assert.Len(t, p.Cells[CellKey{Day: 0, Hour: 1}], 2)
}

func TestCellBookings_ExpandedShowsAll(t *testing.T) {
	bookings := []model.Booking{
		booking("a", "r1", 9, 9, 0),
		booking("b", "r5", 9, 9, 0),
	}
	p := Project(weekInput(bookings, 1))

	assert.Len(t, p.CellBookings(1, 1), 2)
}

func TestCellBookings_EmptyCell(t *testing.T) {
	p := Project(weekInput(nil, -1))
	assert.Nil(t, p.CellBookings(0, 0))
}
