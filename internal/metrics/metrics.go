package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "booking_created_total",
			Help:      "Count of bookings created.",
		},
	)

	bookingUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "booking_updated_total",
			Help:      "Count of bookings updated.",
		},
	)

	bookingDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "booking_deleted_total",
			Help:      "Count of bookings deleted.",
		},
	)

	draftOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "draft_opened_total",
			Help:      "Count of draft dialogs opened by kind.",
		},
		[]string{"kind"},
	)

	persistenceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "persistence_error_total",
			Help:      "Count of persistence gateway failures by operation.",
		},
		[]string{"op"},
	)

	remindersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "reminder_sent_total",
			Help:      "Count of booking reminders by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingUpdated, bookingDeleted,
			draftOpened, persistenceErrors, remindersSent)
	})
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncBookingUpdated() {
	bookingUpdated.Inc()
}

func IncBookingDeleted() {
	bookingDeleted.Inc()
}

func IncDraftOpened(kind string) {
	draftOpened.WithLabelValues(kind).Inc()
}

func IncPersistenceError(op string) {
	persistenceErrors.WithLabelValues(op).Inc()
}

func IncReminderSent(outcome string) {
	remindersSent.WithLabelValues(outcome).Inc()
}
