package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roomdesk/internal/model"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) SubmitCreate(ctx context.Context, sub model.BookingSubmission) (*model.Booking, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *mockGateway) SubmitUpdate(ctx context.Context, id string, fields model.BookingFields) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *mockGateway) SubmitDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockGateway) FetchAllForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Booking), args.Error(1)
}

var (
	testIdentity = model.Identity{UserID: "u1", AccessToken: "tok"}
	testRepeats  = []model.RepeatOption{{ID: "1", Name: "Daily"}}
)

func newTestManager(gw *mockGateway) *Manager {
	return NewManager(gw, testRepeats, zerolog.Nop())
}

func strptr(s string) *string { return &s }

func TestOpenSlot_SeedsDraft(t *testing.T) {
	m := newTestManager(&mockGateway{})

	slotStart := datetime(2024, 1, 8, 9, 0)
	state, err := m.OpenSlot(testIdentity, SlotSelection{
		RoomID: "R1",
		Start:  slotStart,
		End:    slotStart.Add(time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, PhaseCreating, state.Phase)
	require.NotNil(t, state.Draft)
	assert.Equal(t, "R1", state.Draft.RoomID)
	assert.Equal(t, "09:00", state.Draft.StartTime)
	assert.Equal(t, "09:15", state.Draft.EndTime)
	assert.Equal(t, "1", state.Draft.RepeatID)
	assert.Empty(t, state.Draft.Title)
	assert.True(t, state.CanBook, "room is selected, title may stay empty")
}

func TestOpenSlot_RequiresRoom(t *testing.T) {
	m := newTestManager(&mockGateway{})

	_, err := m.OpenSlot(testIdentity, SlotSelection{Start: datetime(2024, 1, 8, 9, 0)})
	assert.Error(t, err)
	assert.Equal(t, PhaseClosed, m.State(testIdentity.UserID).Phase)
}

func TestBook_SubmitsResolvedTimes(t *testing.T) {
	gw := &mockGateway{}
	m := newTestManager(gw)

	slotStart := datetime(2024, 1, 8, 9, 0)
	_, err := m.OpenSlot(testIdentity, SlotSelection{
		RoomID: "R1",
		Start:  slotStart,
		End:    slotStart.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = m.Patch(testIdentity.UserID, FieldPatch{Title: strptr("Sync")})
	require.NoError(t, err)

	created := model.Booking{ID: "b1", RoomID: "R1", Title: "Sync", UserID: "u1"}
	gw.On("SubmitCreate", mock.Anything, model.BookingSubmission{
		RoomID:   "R1",
		Title:    "Sync",
		Start:    datetime(2024, 1, 8, 9, 0),
		End:      datetime(2024, 1, 8, 9, 15),
		UserID:   "u1",
		RepeatID: "1",
	}).Return(&created, nil)
	gw.On("FetchAllForUser", mock.Anything, "u1").Return([]model.Booking{created}, nil)

	require.NoError(t, m.Book(testIdentity.UserID))

	assert.Equal(t, PhaseClosed, m.State(testIdentity.UserID).Phase)
	assert.Len(t, m.BookingsFor("u1"), 1)
	gw.AssertExpectations(t)
}

func TestBook_NoIdentitySkipsGateway(t *testing.T) {
	gw := &mockGateway{}
	m := newTestManager(gw)

	_, err := m.OpenSlot(model.Identity{UserID: "u1"}, SlotSelection{
		RoomID: "R1",
		Start:  datetime(2024, 1, 8, 9, 0),
		End:    datetime(2024, 1, 8, 10, 0),
	})
	require.NoError(t, err)

	// The dialog still closes; no persistence call is made.
	require.NoError(t, m.Book("u1"))
	assert.Equal(t, PhaseClosed, m.State("u1").Phase)
	gw.AssertNotCalled(t, "SubmitCreate", mock.Anything, mock.Anything)
}

func TestBook_FailureClosesAndRecordsError(t *testing.T) {
	gw := &mockGateway{}
	m := newTestManager(gw)

	_, err := m.OpenSlot(testIdentity, SlotSelection{
		RoomID: "R1",
		Start:  datetime(2024, 1, 8, 9, 0),
		End:    datetime(2024, 1, 8, 10, 0),
	})
	require.NoError(t, err)

	gw.On("SubmitCreate", mock.Anything, mock.Anything).Return(nil, errors.New("backend down"))

	err = m.Book(testIdentity.UserID)
	require.Error(t, err)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create", perr.Op)

	// Failure never keeps the dialog open and lands in the last-error slot.
	assert.Equal(t, PhaseClosed, m.State(testIdentity.UserID).Phase)
	assert.Equal(t, err, m.LastError())

	m.ClearError()
	assert.NoError(t, m.LastError())
}

func baselineBooking() model.Booking {
	return model.Booking{
		ID:     "b1",
		RoomID: "R1",
		Title:  "Sync",
		Start:  datetime(2024, 1, 8, 9, 0),
		End:    datetime(2024, 1, 8, 10, 0),
		UserID: "u1",
	}
}

func TestEdit_SaveDisabledWhenUnchanged(t *testing.T) {
	m := newTestManager(&mockGateway{})

	state := m.OpenBooking(testIdentity, baselineBooking())
	assert.Equal(t, PhaseEditing, state.Phase)
	assert.Equal(t, "09:00", state.Draft.StartTime)
	assert.Equal(t, "10:00", state.Draft.EndTime)
	assert.False(t, state.CanSave)

	assert.ErrorIs(t, m.Save(testIdentity.UserID), ErrActionDisabled)
	assert.Equal(t, PhaseEditing, m.State(testIdentity.UserID).Phase, "refused save keeps the dialog open")
}

func TestEdit_SaveEnablementToggles(t *testing.T) {
	m := newTestManager(&mockGateway{})
	m.OpenBooking(testIdentity, baselineBooking())

	state, err := m.Patch(testIdentity.UserID, FieldPatch{Title: strptr("Standup")})
	require.NoError(t, err)
	assert.True(t, state.CanSave)

	state, err = m.Patch(testIdentity.UserID, FieldPatch{Title: strptr("Sync")})
	require.NoError(t, err)
	assert.False(t, state.CanSave, "reverting the single changed field disables Save again")
}

func TestEdit_UnorderedKeepsSaveDisabled(t *testing.T) {
	m := newTestManager(&mockGateway{})
	m.OpenBooking(testIdentity, baselineBooking())

	// End before start: changed, but not ordered.
	state, err := m.Patch(testIdentity.UserID, FieldPatch{EndTime: strptr("08:00")})
	require.NoError(t, err)
	assert.False(t, state.CanSave)
	assert.ErrorIs(t, m.Save(testIdentity.UserID), ErrActionDisabled)
}

func TestEdit_UnparseableTimeKeepsSaveDisabled(t *testing.T) {
	m := newTestManager(&mockGateway{})
	m.OpenBooking(testIdentity, baselineBooking())

	state, err := m.Patch(testIdentity.UserID, FieldPatch{EndTime: strptr("25:99")})
	require.NoError(t, err)
	assert.False(t, state.CanSave)
}

func TestEdit_SaveSubmitsUpdate(t *testing.T) {
	gw := &mockGateway{}
	m := newTestManager(gw)
	m.OpenBooking(testIdentity, baselineBooking())

	_, err := m.Patch(testIdentity.UserID, FieldPatch{EndTime: strptr("11:00")})
	require.NoError(t, err)

	gw.On("SubmitUpdate", mock.Anything, "b1", model.BookingFields{
		RoomID:   "R1",
		Title:    "Sync",
		Start:    datetime(2024, 1, 8, 9, 0),
		End:      datetime(2024, 1, 8, 11, 0),
		RepeatID: "1",
	}).Return(nil)
	gw.On("FetchAllForUser", mock.Anything, "u1").Return([]model.Booking{}, nil)

	require.NoError(t, m.Save(testIdentity.UserID))
	assert.Equal(t, PhaseClosed, m.State(testIdentity.UserID).Phase)
	gw.AssertExpectations(t)
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	gw := &mockGateway{}
	m := newTestManager(gw)
	m.OpenBooking(testIdentity, baselineBooking())

	state, err := m.Delete(testIdentity.UserID)
	require.NoError(t, err)
	assert.Equal(t, PhaseConfirmingDeletion, state.Phase)

	// A single Delete never reaches the gateway.
	gw.AssertNotCalled(t, "SubmitDelete", mock.Anything, mock.Anything)

	gw.On("SubmitDelete", mock.Anything, "b1").Return(nil)
	gw.On("FetchAllForUser", mock.Anything, "u1").Return([]model.Booking{}, nil)

	require.NoError(t, m.ConfirmDelete(testIdentity.UserID))
	assert.Equal(t, PhaseClosed, m.State(testIdentity.UserID).Phase)
	gw.AssertExpectations(t)
}

func TestDelete_OnlyFromEditing(t *testing.T) {
	m := newTestManager(&mockGateway{})

	_, err := m.Delete(testIdentity.UserID)
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.OpenSlot(testIdentity, SlotSelection{
		RoomID: "R1",
		Start:  datetime(2024, 1, 8, 9, 0),
		End:    datetime(2024, 1, 8, 10, 0),
	})
	require.NoError(t, err)

	_, err = m.Delete(testIdentity.UserID)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestConfirmingDeletion_RejectsFieldEdits(t *testing.T) {
	m := newTestManager(&mockGateway{})
	m.OpenBooking(testIdentity, baselineBooking())

	_, err := m.Delete(testIdentity.UserID)
	require.NoError(t, err)

	_, err = m.Patch(testIdentity.UserID, FieldPatch{Title: strptr("x")})
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestDismiss_DiscardsDraftWithoutCalls(t *testing.T) {
	gw := &mockGateway{}
	m := newTestManager(gw)
	m.OpenBooking(testIdentity, baselineBooking())

	m.Dismiss(testIdentity.UserID)

	assert.Equal(t, PhaseClosed, m.State(testIdentity.UserID).Phase)
	assert.ErrorIs(t, m.Save(testIdentity.UserID), ErrNoSession)
	gw.AssertNotCalled(t, "SubmitUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestBook_RequiresCreatingPhase(t *testing.T) {
	m := newTestManager(&mockGateway{})
	m.OpenBooking(testIdentity, baselineBooking())

	assert.ErrorIs(t, m.Book(testIdentity.UserID), ErrIllegalTransition)
}

func TestOpenReplacesExistingSession(t *testing.T) {
	m := newTestManager(&mockGateway{})

	_, err := m.OpenSlot(testIdentity, SlotSelection{
		RoomID: "R1",
		Start:  datetime(2024, 1, 8, 9, 0),
		End:    datetime(2024, 1, 8, 10, 0),
	})
	require.NoError(t, err)

	state := m.OpenBooking(testIdentity, baselineBooking())
	assert.Equal(t, PhaseEditing, state.Phase)
	assert.Equal(t, "b1", state.Draft.OriginID)
}

func TestCache_StaleFetchCannotOverwrite(t *testing.T) {
	c := newBookingCache()

	older := c.beginFetch("u1")
	newer := c.beginFetch("u1")

	assert.True(t, c.complete("u1", newer, []model.Booking{{ID: "fresh"}}))
	assert.False(t, c.complete("u1", older, []model.Booking{{ID: "stale"}}))

	bookings := c.get("u1")
	require.Len(t, bookings, 1)
	assert.Equal(t, "fresh", bookings[0].ID)
}

func TestRefresh_FetchErrorRecorded(t *testing.T) {
	gw := &mockGateway{}
	m := newTestManager(gw)

	gw.On("FetchAllForUser", mock.Anything, "u1").Return(nil, errors.New("timeout"))

	err := m.Refresh(context.Background(), "u1")
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "fetch", perr.Op)
	assert.Empty(t, m.BookingsFor("u1"))
}
