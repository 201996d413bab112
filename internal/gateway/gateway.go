// Package gateway defines the persistence contract the booking engine
// submits drafts through, and a factory over its implementations.
package gateway

import (
	"context"
	"errors"

	"roomdesk/internal/model"
)

// ErrNotFound is returned when a booking id does not exist.
var ErrNotFound = errors.New("booking not found")

// Gateway is the persistence collaborator consumed by the draft engine.
// Every call is single-attempt; callers surface rejections as errors and
// never retry internally.
type Gateway interface {
	SubmitCreate(ctx context.Context, sub model.BookingSubmission) (*model.Booking, error)
	SubmitUpdate(ctx context.Context, id string, fields model.BookingFields) error
	SubmitDelete(ctx context.Context, id string) error
	FetchAllForUser(ctx context.Context, userID string) ([]model.Booking, error)
}
