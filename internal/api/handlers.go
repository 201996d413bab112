// Package api exposes the booking engine over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"roomdesk/internal/auth"
	"roomdesk/internal/draft"
	"roomdesk/internal/export"
	"roomdesk/internal/grid"
	"roomdesk/internal/model"
)

// Reference supplies the room and repeat-option reference data.
type Reference interface {
	Rooms() []model.Room
	RepeatOptions() []model.RepeatOption
}

// CalendarWindow is the visible hour range of the grid.
type CalendarWindow struct {
	DayStartHour int
	DayEndHour   int
}

// Handler serves the booking API.
type Handler struct {
	manager *draft.Manager
	ref     Reference
	window  CalendarWindow
	logger  zerolog.Logger
}

// NewHandler creates the API handler.
func NewHandler(manager *draft.Manager, ref Reference, window CalendarWindow, logger zerolog.Logger) *Handler {
	return &Handler{
		manager: manager,
		ref:     ref,
		window:  window,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

func (h *Handler) ListRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.ref.Rooms())
}

func (h *Handler) ListRepeatOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.ref.RepeatOptions())
}

// ListBookings refreshes and returns the caller's booking collection.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.manager.Refresh(r.Context(), id.UserID); err != nil {
		h.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.manager.BookingsFor(id.UserID))
}

// GetGrid projects the caller's bookings onto the weekly grid around the
// requested date.
func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	day := time.Now()
	if ds := r.URL.Query().Get("date"); ds != "" {
		parsed, err := time.Parse("2006-01-02", ds)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	days := weekOf(day)
	expanded := indexOfDay(days, day)
	if es := r.URL.Query().Get("expanded"); es != "" {
		idx, err := strconv.Atoi(es)
		if err != nil || idx < 0 || idx >= len(days) {
			writeError(w, http.StatusBadRequest, "invalid expanded day index")
			return
		}
		expanded = idx
	}

	var hours []int
	for hr := h.window.DayStartHour; hr <= h.window.DayEndHour; hr++ {
		hours = append(hours, hr)
	}

	projection := grid.Project(grid.Input{
		Bookings:    h.manager.BookingsFor(id.UserID),
		Rooms:       h.ref.Rooms(),
		Days:        days,
		Hours:       hours,
		ExpandedDay: expanded,
	})

	writeJSON(w, http.StatusOK, renderGrid(projection, days, hours, expanded))
}

// OpenSlot starts a creation draft from a picked calendar slot.
func (h *Handler) OpenSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		ResourceID string    `json:"resource_id"`
		Start      time.Time `json:"start"`
		End        time.Time `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.manager.OpenSlot(id, draft.SlotSelection{
		RoomID: req.ResourceID,
		Start:  req.Start,
		End:    req.End,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// OpenBooking starts an edit draft from an existing booking.
func (h *Handler) OpenBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	bookingID := mux.Vars(r)["id"]
	b := h.manager.CachedBooking(id.UserID, bookingID)
	if b == nil {
		// Cache may be cold; refetch once before giving up.
		if err := h.manager.Refresh(r.Context(), id.UserID); err != nil {
			h.writeSubmitError(w, err)
			return
		}
		b = h.manager.CachedBooking(id.UserID, bookingID)
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}

	writeJSON(w, http.StatusOK, h.manager.OpenBooking(id, *b))
}

// GetDraft returns the caller's dialog state and control enablement.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.manager.State(id.UserID))
}

// PatchDraft applies field edits to the open draft.
func (h *Handler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var patch draft.FieldPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.manager.Patch(id.UserID, patch)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Book submits the creation draft.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := h.manager.Book(id.UserID); err != nil {
		h.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.manager.State(id.UserID))
}

// Save submits the edit draft.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := h.manager.Save(id.UserID); err != nil {
		h.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.manager.State(id.UserID))
}

// Delete arms deletion; nothing is removed until ConfirmDelete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	state, err := h.manager.Delete(id.UserID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// ConfirmDelete submits the armed deletion.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := h.manager.ConfirmDelete(id.UserID); err != nil {
		h.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.manager.State(id.UserID))
}

// CancelDraft dismisses the dialog, discarding pending edits.
func (h *Handler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	h.manager.Dismiss(id.UserID)
	writeJSON(w, http.StatusOK, h.manager.State(id.UserID))
}

// LastError returns the most recent submit error, for a dismissible
// notification.
func (h *Handler) LastError(w http.ResponseWriter, _ *http.Request) {
	if err := h.manager.LastError(); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

// ClearError dismisses the most recent submit error.
func (h *Handler) ClearError(w http.ResponseWriter, _ *http.Request) {
	h.manager.ClearError()
	w.WriteHeader(http.StatusNoContent)
}

// Export streams the caller's bookings as an Excel workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := h.manager.Refresh(r.Context(), id.UserID); err != nil {
		h.writeSubmitError(w, err)
		return
	}

	filename := export.Filename(time.Now())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	writer := export.NewExcelizeWriter()
	defer writer.Close()
	if err := export.WriteWorkbook(w, h.manager.BookingsFor(id.UserID), h.ref.Rooms(), writer); err != nil {
		h.logger.Error().Err(err).Msg("export failed")
	}
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	id := auth.IdentityFrom(r.Context())
	if id.UserID == "" {
		writeError(w, http.StatusUnauthorized, "missing user identity")
		return model.Identity{}, false
	}
	return id, true
}

func (h *Handler) writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draft.ErrNoSession):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, draft.ErrIllegalTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, err error) {
	var perr *draft.PersistenceError
	switch {
	case errors.Is(err, draft.ErrNoSession):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, draft.ErrIllegalTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, draft.ErrActionDisabled):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &perr):
		writeError(w, http.StatusBadGateway, perr.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
