package api

import (
	"time"

	"roomdesk/internal/grid"
	"roomdesk/internal/model"
)

// gridView is the JSON shape of one projected week.
type gridView struct {
	Days        []string      `json:"days"`
	Hours       []int         `json:"hours"`
	ExpandedDay int           `json:"expanded_day"`
	Rows        []gridRowView `json:"rows"`
}

type gridRowView struct {
	Day   string         `json:"day"`
	Rooms []model.Room   `json:"rooms"`
	Cells []gridCellView `json:"cells"`
}

type gridCellView struct {
	Hour     int             `json:"hour"`
	Bookings []model.Booking `json:"bookings,omitempty"`
}

func renderGrid(p grid.Projection, days []time.Time, hours []int, expanded int) gridView {
	view := gridView{
		Hours:       hours,
		ExpandedDay: expanded,
	}
	for _, d := range days {
		view.Days = append(view.Days, d.Format("2006-01-02"))
	}

	for di, d := range days {
		row := gridRowView{
			Day:   d.Format("2006-01-02"),
			Rooms: p.RoomsFor(di),
		}
		for hi, hr := range hours {
			row.Cells = append(row.Cells, gridCellView{
				Hour:     hr,
				Bookings: p.CellBookings(di, hi),
			})
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// weekOf returns the Monday-first week containing day.
func weekOf(day time.Time) []time.Time {
	offset := int(day.Weekday())
	if offset == 0 {
		offset = 7 // Sunday closes the week
	}
	monday := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).
		AddDate(0, 0, -(offset - 1))

	days := make([]time.Time, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

func indexOfDay(days []time.Time, day time.Time) int {
	y, m, d := day.Date()
	for i, candidate := range days {
		cy, cm, cd := candidate.Date()
		if cy == y && cm == m && cd == d {
			return i
		}
	}
	return 0
}
