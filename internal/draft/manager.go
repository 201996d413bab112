// Package draft owns the in-progress booking dialog: the state machine
// over creation and edit drafts, the enablement rules gating submits, and
// the per-user booking cache mirrored from the persistence gateway.
package draft

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"roomdesk/internal/gateway"
	"roomdesk/internal/metrics"
	"roomdesk/internal/model"
	"roomdesk/internal/timeutil"
)

// defaultEndOffsetMinutes seeds a new draft's end time from its start.
const defaultEndOffsetMinutes = 15

// Manager runs one booking dialog per user and mirrors each user's
// booking collection from the gateway.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session

	gw      gateway.Gateway
	cache   *bookingCache
	repeats []model.RepeatOption
	logger  zerolog.Logger

	errMu   sync.Mutex
	lastErr error
}

// NewManager creates a dialog manager over the given gateway. repeats is
// the static repeat-option reference list; its first entry seeds new
// drafts.
func NewManager(gw gateway.Gateway, repeats []model.RepeatOption, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*session),
		gw:       gw,
		cache:    newBookingCache(),
		repeats:  repeats,
		logger:   logger.With().Str("component", "draft").Logger(),
	}
}

// OpenSlot starts a creation dialog from an empty calendar slot. The draft
// is seeded with the slot's room and day, a start time from the slot's
// hour, and an end time fifteen minutes later.
func (m *Manager) OpenSlot(identity model.Identity, sel SlotSelection) (State, error) {
	if sel.RoomID == "" {
		return State{Phase: PhaseClosed}, fmt.Errorf("slot selection requires a room")
	}

	hourLabel, err := timeutil.HourLabel(sel.Start.Hour())
	if err != nil {
		return State{Phase: PhaseClosed}, err
	}

	d := Draft{
		RoomID: sel.RoomID,
		// The end label keeps the slot's hour; the minute carry past the
		// hour stays with whoever reads both components.
		StartTime: hourLabel + ":" + timeutil.MinuteLabel(sel.Start, 0),
		EndTime:   hourLabel + ":" + timeutil.MinuteLabel(sel.Start, defaultEndOffsetMinutes),
		Day:       sel.Start,
		EndDay:    sel.End,
	}
	if len(m.repeats) > 0 {
		d.RepeatID = m.repeats[0].ID
	}

	m.replaceSession(identity, PhaseCreating, d, nil)
	metrics.IncDraftOpened("create")
	return m.State(identity.UserID), nil
}

// OpenBooking starts an edit dialog seeded from an existing booking.
func (m *Manager) OpenBooking(identity model.Identity, b model.Booking) State {
	d := Draft{
		RoomID:    b.RoomID,
		Title:     b.Title,
		StartTime: timeutil.ClockLabel(b.Start),
		EndTime:   timeutil.ClockLabel(b.End),
		RepeatID:  b.RepeatID,
		Day:       b.Start,
		EndDay:    b.End,
		OriginID:  b.ID,
	}
	if d.RepeatID == "" && len(m.repeats) > 0 {
		d.RepeatID = m.repeats[0].ID
	}

	baseline := b
	m.replaceSession(identity, PhaseEditing, d, &baseline)
	metrics.IncDraftOpened("edit")
	return m.State(identity.UserID)
}

// Patch applies field edits to the open draft. Edits are pure state
// updates; only control enablement is recomputed.
func (m *Manager) Patch(userID string, p FieldPatch) (State, error) {
	m.mu.Lock()
	s := m.sessions[userID]
	if !s.open() {
		m.mu.Unlock()
		return State{Phase: PhaseClosed}, ErrNoSession
	}
	if s.phase != PhaseCreating && s.phase != PhaseEditing {
		m.mu.Unlock()
		return m.stateLocked(s), ErrIllegalTransition
	}

	if p.Title != nil {
		s.draft.Title = *p.Title
	}
	if p.RoomID != nil {
		s.draft.RoomID = *p.RoomID
	}
	if p.StartTime != nil {
		s.draft.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.draft.EndTime = *p.EndTime
	}
	if p.RepeatID != nil {
		s.draft.RepeatID = *p.RepeatID
	}
	m.mu.Unlock()

	return m.State(userID), nil
}

// State snapshots the user's dialog, including submit enablement.
func (m *Manager) State(userID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[userID]
	if !s.open() {
		return State{Phase: PhaseClosed}
	}
	return m.stateLocked(s)
}

func (m *Manager) stateLocked(s *session) State {
	d := s.draft
	st := State{Phase: s.phase, Draft: &d}

	switch s.phase {
	case PhaseCreating:
		// Booking is enabled whenever a room is selected; the title may
		// stay empty.
		st.CanBook = d.RoomID != ""
	case PhaseEditing, PhaseConfirmingDeletion:
		start, end, err := resolveDraftTimes(d)
		if err != nil {
			break // unparseable time keeps Save disabled
		}
		st.CanSave = IsOrdered(start, end) && HasChanged(start, end, d.RoomID, d.Title, s.baseline)
	}
	return st
}

// Book submits a creation draft and closes the dialog. Absent identity
// short-circuits with no persistence call; submit failures are recorded
// and returned but never keep the dialog open.
func (m *Manager) Book(userID string) error {
	s, err := m.takeSession(userID, PhaseCreating)
	if err != nil {
		return err
	}
	if s.draft.RoomID == "" {
		return ErrActionDisabled
	}

	m.closeSession(userID)
	defer s.cancel()

	if !s.identity.IsComplete() {
		m.logger.Debug().Str("user_id", userID).Msg("booking skipped: no identity")
		return nil
	}

	start, end, err := resolveDraftTimes(s.draft)
	if err != nil {
		err = fmt.Errorf("resolve draft times: %w", err)
		m.recordError(err)
		return err
	}

	sub := model.BookingSubmission{
		RoomID:   s.draft.RoomID,
		Title:    s.draft.Title,
		Start:    start,
		End:      end,
		UserID:   s.identity.UserID,
		RepeatID: s.draft.RepeatID,
	}
	if _, err := m.gw.SubmitCreate(s.ctx, sub); err != nil {
		perr := &PersistenceError{Op: "create", Err: err}
		m.recordError(perr)
		metrics.IncPersistenceError("create")
		return perr
	}

	metrics.IncBookingCreated()
	return m.refresh(s.ctx, userID)
}

// Save submits an edit draft and closes the dialog. It refuses to run
// while the enablement rule (ordered interval and at least one changed
// field) does not hold.
func (m *Manager) Save(userID string) error {
	s, err := m.takeSession(userID, PhaseEditing)
	if err != nil {
		return err
	}

	start, end, rerr := resolveDraftTimes(s.draft)
	if rerr != nil || !IsOrdered(start, end) ||
		!HasChanged(start, end, s.draft.RoomID, s.draft.Title, s.baseline) {
		return ErrActionDisabled
	}

	m.closeSession(userID)
	defer s.cancel()

	if !s.identity.IsComplete() {
		m.logger.Debug().Str("user_id", userID).Msg("save skipped: no identity")
		return nil
	}

	fields := model.BookingFields{
		RoomID:   s.draft.RoomID,
		Title:    s.draft.Title,
		Start:    start,
		End:      end,
		RepeatID: s.draft.RepeatID,
	}
	if err := m.gw.SubmitUpdate(s.ctx, s.baseline.ID, fields); err != nil {
		perr := &PersistenceError{Op: "update", Err: err}
		m.recordError(perr)
		metrics.IncPersistenceError("update")
		return perr
	}

	metrics.IncBookingUpdated()
	return m.refresh(s.ctx, userID)
}

// Delete arms deletion on an edit dialog. The persistence call happens
// only after ConfirmDelete; one Delete alone never removes anything.
func (m *Manager) Delete(userID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[userID]
	if !s.open() {
		return State{Phase: PhaseClosed}, ErrNoSession
	}
	if s.phase != PhaseEditing {
		return m.stateLocked(s), ErrIllegalTransition
	}
	s.phase = PhaseConfirmingDeletion
	return m.stateLocked(s), nil
}

// ConfirmDelete submits the armed deletion and closes the dialog.
func (m *Manager) ConfirmDelete(userID string) error {
	s, err := m.takeSession(userID, PhaseConfirmingDeletion)
	if err != nil {
		return err
	}

	m.closeSession(userID)
	defer s.cancel()

	if !s.identity.IsComplete() {
		m.logger.Debug().Str("user_id", userID).Msg("deletion skipped: no identity")
		return nil
	}

	if err := m.gw.SubmitDelete(s.ctx, s.baseline.ID); err != nil {
		perr := &PersistenceError{Op: "delete", Err: err}
		m.recordError(perr)
		metrics.IncPersistenceError("delete")
		return perr
	}

	metrics.IncBookingDeleted()
	return m.refresh(s.ctx, userID)
}

// Dismiss closes the dialog from any phase, discarding pending edits and
// cancelling the session so late completions cannot touch the cache.
func (m *Manager) Dismiss(userID string) {
	m.mu.Lock()
	s := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if s != nil {
		s.cancel()
	}
}

// Refresh fetches the user's bookings from the gateway and replaces the
// cached collection wholesale.
func (m *Manager) Refresh(ctx context.Context, userID string) error {
	return m.refresh(ctx, userID)
}

// BookingsFor returns the user's cached booking collection.
func (m *Manager) BookingsFor(userID string) []model.Booking {
	return m.cache.get(userID)
}

// CachedBooking returns a cached booking by id, if present.
func (m *Manager) CachedBooking(userID, id string) *model.Booking {
	return m.cache.find(userID, id)
}

// LastError returns the most recent submit or fetch error, for a
// dismissible notification.
func (m *Manager) LastError() error {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.lastErr
}

// ClearError dismisses the most recent error.
func (m *Manager) ClearError() {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	m.lastErr = nil
}

func (m *Manager) refresh(ctx context.Context, userID string) error {
	token := m.cache.beginFetch(userID)
	bookings, err := m.gw.FetchAllForUser(ctx, userID)
	if err != nil {
		perr := &PersistenceError{Op: "fetch", Err: err}
		m.recordError(perr)
		metrics.IncPersistenceError("fetch")
		return perr
	}
	m.cache.complete(userID, token, bookings)
	return nil
}

func (m *Manager) replaceSession(identity model.Identity, phase Phase, d Draft, baseline *model.Booking) {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	old := m.sessions[identity.UserID]
	m.sessions[identity.UserID] = &session{
		phase:    phase,
		draft:    d,
		baseline: baseline,
		identity: identity,
		ctx:      ctx,
		cancel:   cancel,
	}
	m.mu.Unlock()

	if old != nil {
		old.cancel()
	}
}

// takeSession fetches the user's session and checks its phase. The session
// stays in the map; submit paths close it explicitly once validation has
// passed.
func (m *Manager) takeSession(userID string, want Phase) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[userID]
	if !s.open() {
		return nil, ErrNoSession
	}
	if s.phase != want {
		return nil, ErrIllegalTransition
	}
	return s, nil
}

func (m *Manager) closeSession(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}

func (m *Manager) recordError(err error) {
	m.errMu.Lock()
	m.lastErr = err
	m.errMu.Unlock()
	m.logger.Error().Err(err).Msg("submit failed")
}

func resolveDraftTimes(d Draft) (start, end time.Time, err error) {
	start, err = timeutil.ResolveAbsoluteTime(d.Day, d.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = timeutil.ResolveAbsoluteTime(d.EndDay, d.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
