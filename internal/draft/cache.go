package draft

import (
	"sync"

	"roomdesk/internal/model"
)

// bookingCache mirrors the per-user booking collection fetched from the
// persistence gateway. Entries are only ever replaced wholesale, and each
// replacement is guarded by a monotonic fetch token so a completion that
// lost the race (or outlived its dialog) cannot overwrite newer data.
type bookingCache struct {
	mu      sync.Mutex
	entries map[string][]model.Booking
	issued  map[string]uint64
	applied map[string]uint64
}

func newBookingCache() *bookingCache {
	return &bookingCache{
		entries: make(map[string][]model.Booking),
		issued:  make(map[string]uint64),
		applied: make(map[string]uint64),
	}
}

// beginFetch issues a token for a fetch that is about to start.
func (c *bookingCache) beginFetch(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued[userID]++
	return c.issued[userID]
}

// complete applies a finished fetch. It reports whether the result was
// accepted; a token older than an already-applied one is discarded.
func (c *bookingCache) complete(userID string, token uint64, bookings []model.Booking) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token <= c.applied[userID] {
		return false
	}
	c.applied[userID] = token
	c.entries[userID] = bookings
	return true
}

// get returns a copy of the user's cached bookings.
func (c *bookingCache) get(userID string) []model.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.entries[userID]
	out := make([]model.Booking, len(entry))
	copy(out, entry)
	return out
}

// find returns the cached booking with the given id, if present.
func (c *bookingCache) find(userID, id string) *model.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.entries[userID] {
		if b.ID == id {
			found := b
			return &found
		}
	}
	return nil
}
