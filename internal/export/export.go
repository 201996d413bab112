package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"roomdesk/internal/model"
)

var bookingColumns = []string{"Date", "Start", "End", "Title", "Booked by"}

// Filename creates an export filename like "bookings_2024-01.xlsx".
func Filename(t time.Time) string {
	return fmt.Sprintf("bookings_%s.xlsx", t.Format("2006-01"))
}

// WriteWorkbook renders the bookings into w, one sheet per room (in room
// list order). Rooms without bookings still get a sheet so readers can
// tell empty from missing.
func WriteWorkbook(w io.Writer, bookings []model.Booking, rooms []model.Room, sheets SheetWriter) error {
	byRoom := make(map[string][]model.Booking)
	for _, b := range bookings {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}
	for _, list := range byRoom {
		sort.Slice(list, func(i, j int) bool { return list[i].Start.Before(list[j].Start) })
	}

	for _, room := range rooms {
		if err := sheets.AddSheet(room.Name); err != nil {
			return fmt.Errorf("sheet for %s: %w", room.Name, err)
		}
		if err := sheets.WriteHeader(bookingColumns); err != nil {
			return fmt.Errorf("header for %s: %w", room.Name, err)
		}
		for _, b := range byRoom[room.ID] {
			row := []interface{}{
				b.Start.Format("2006-01-02"),
				b.Start.Format("15:04"),
				b.End.Format("15:04"),
				b.Title,
				b.UserID,
			}
			if err := sheets.WriteRow(row); err != nil {
				return fmt.Errorf("row for %s: %w", room.Name, err)
			}
		}
	}

	return sheets.Save(w)
}
