package api

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"roomdesk/internal/auth"
)

// NewRouter wires the API routes with identity extraction, CORS and
// request logging. ah may be nil when the login flow is not configured.
func NewRouter(h *Handler, ah *AuthHandler, logOutput *RouterLogWriter) http.Handler {
	r := mux.NewRouter()

	if ah != nil {
		r.HandleFunc("/auth/login", ah.Login).Methods("GET")
		r.HandleFunc("/auth/callback", ah.Callback).Methods("GET")
	}

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(auth.Middleware)

	v1.HandleFunc("/rooms", h.ListRooms).Methods("GET")
	v1.HandleFunc("/repeat-options", h.ListRepeatOptions).Methods("GET")
	v1.HandleFunc("/bookings", h.ListBookings).Methods("GET")
	v1.HandleFunc("/grid", h.GetGrid).Methods("GET")
	v1.HandleFunc("/export", h.Export).Methods("GET")

	v1.HandleFunc("/draft", h.GetDraft).Methods("GET")
	v1.HandleFunc("/draft", h.PatchDraft).Methods("PATCH")
	v1.HandleFunc("/draft/slot", h.OpenSlot).Methods("POST")
	v1.HandleFunc("/draft/booking/{id}", h.OpenBooking).Methods("POST")
	v1.HandleFunc("/draft/book", h.Book).Methods("POST")
	v1.HandleFunc("/draft/save", h.Save).Methods("POST")
	v1.HandleFunc("/draft/delete", h.Delete).Methods("POST")
	v1.HandleFunc("/draft/confirm-delete", h.ConfirmDelete).Methods("POST")
	v1.HandleFunc("/draft/cancel", h.CancelDraft).Methods("POST")

	v1.HandleFunc("/last-error", h.LastError).Methods("GET")
	v1.HandleFunc("/last-error", h.ClearError).Methods("DELETE")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-User-ID"}),
	)

	if logOutput != nil {
		return handlers.LoggingHandler(logOutput, cors(r))
	}
	return cors(r)
}

// RouterLogWriter adapts zerolog to the gorilla access-log writer.
type RouterLogWriter struct {
	Log func(msg string)
}

func (w *RouterLogWriter) Write(p []byte) (int, error) {
	if w.Log != nil {
		w.Log(string(p))
	}
	return len(p), nil
}
