package draft

import (
	"context"
	"time"

	"roomdesk/internal/model"
)

// Phase is the current state of a user's booking draft dialog.
type Phase string

const (
	PhaseClosed             Phase = "closed"
	PhaseCreating           Phase = "creating"
	PhaseEditing            Phase = "editing"
	PhaseConfirmingDeletion Phase = "confirming_deletion"
)

// Draft holds the mutable fields of an in-progress booking. Times of day
// stay HH:MM strings while the dialog is open; they are resolved to
// absolute timestamps only at submit time or for change detection.
type Draft struct {
	RoomID    string    `json:"room_id"`
	Title     string    `json:"title"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	RepeatID  string    `json:"repeat_id,omitempty"`
	Day       time.Time `json:"day"`
	EndDay    time.Time `json:"end_day"`
	OriginID  string    `json:"origin_id,omitempty"`
}

// SlotSelection is a raw calendar interaction: an empty slot picked on the
// grid for some room.
type SlotSelection struct {
	RoomID string
	Start  time.Time
	End    time.Time
}

// FieldPatch carries partial draft edits. Nil fields are left untouched.
type FieldPatch struct {
	Title     *string `json:"title,omitempty"`
	RoomID    *string `json:"room_id,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	RepeatID  *string `json:"repeat_id,omitempty"`
}

// State is a snapshot of a user's dialog handed to the presentation layer.
// CanBook and CanSave gate the corresponding submit actions.
type State struct {
	Phase   Phase  `json:"phase"`
	Draft   *Draft `json:"draft,omitempty"`
	CanBook bool   `json:"can_book"`
	CanSave bool   `json:"can_save"`
}

// session is one open dialog. Its context is cancelled when the dialog is
// dismissed without a submit, so a stale persistence completion can never
// mutate the booking cache afterwards.
type session struct {
	phase    Phase
	draft    Draft
	baseline *model.Booking
	identity model.Identity
	ctx      context.Context
	cancel   context.CancelFunc
}

func (s *session) open() bool {
	return s != nil && s.phase != PhaseClosed
}
