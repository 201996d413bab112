// Package memory provides an in-memory implementation of the persistence
// gateway, used in tests and storage-less runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"roomdesk/internal/gateway"
	"roomdesk/internal/model"
)

// Gateway implements gateway.Gateway with a mutex-guarded map.
type Gateway struct {
	mu       sync.RWMutex
	bookings map[string]model.Booking
	now      func() time.Time
}

// New creates an empty in-memory gateway.
func New() *Gateway {
	return &Gateway{
		bookings: make(map[string]model.Booking),
		now:      time.Now,
	}
}

// SetClock overrides the clock, for tests.
func (g *Gateway) SetClock(now func() time.Time) {
	g.now = now
}

func (g *Gateway) SubmitCreate(_ context.Context, sub model.BookingSubmission) (*model.Booking, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	b := model.Booking{
		ID:        uuid.NewString(),
		RoomID:    sub.RoomID,
		Title:     sub.Title,
		Start:     sub.Start,
		End:       sub.End,
		UserID:    sub.UserID,
		RepeatID:  sub.RepeatID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	g.bookings[b.ID] = b
	return &b, nil
}

func (g *Gateway) SubmitUpdate(_ context.Context, id string, fields model.BookingFields) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.bookings[id]
	if !ok {
		return gateway.ErrNotFound
	}
	b.RoomID = fields.RoomID
	b.Title = fields.Title
	b.Start = fields.Start
	b.End = fields.End
	if fields.RepeatID != "" {
		b.RepeatID = fields.RepeatID
	}
	b.UpdatedAt = g.now()
	g.bookings[id] = b
	return nil
}

func (g *Gateway) SubmitDelete(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.bookings[id]; !ok {
		return gateway.ErrNotFound
	}
	delete(g.bookings, id)
	return nil
}

func (g *Gateway) FetchAllForUser(_ context.Context, userID string) ([]model.Booking, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []model.Booking
	for _, b := range g.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

// ListStartingBetween returns bookings of any user starting in [from, to).
// Used by the reminder scheduler.
func (g *Gateway) ListStartingBetween(_ context.Context, from, to time.Time) ([]model.Booking, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []model.Booking
	for _, b := range g.bookings {
		if !b.Start.Before(from) && b.Start.Before(to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
