// Package reminder notifies users shortly before their bookings start.
package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"roomdesk/internal/metrics"
	"roomdesk/internal/model"
)

// Source lists bookings starting inside a window, regardless of owner.
type Source interface {
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error)
}

// Notifier delivers a reminder message to a user.
type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}

// RoomNamer resolves a room id to its display name.
type RoomNamer func(roomID string) string

// Config holds the reminder loop parameters.
type Config struct {
	// Lead is how long before a booking's start the reminder goes out.
	Lead time.Duration
	// CheckInterval is how often upcoming bookings are checked.
	CheckInterval time.Duration
}

// Service runs the reminder check loop.
type Service struct {
	cfg      Config
	source   Source
	notifier Notifier
	roomName RoomNamer
	logger   zerolog.Logger
	now      func() time.Time

	mu   sync.Mutex
	sent map[string]bool
}

// NewService creates a reminder service. Zero config fields fall back to a
// 30 minute lead and 5 minute check interval.
func NewService(cfg Config, source Source, notifier Notifier, roomName RoomNamer, logger zerolog.Logger) *Service {
	if cfg.Lead <= 0 {
		cfg.Lead = 30 * time.Minute
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 5 * time.Minute
	}
	return &Service{
		cfg:      cfg,
		source:   source,
		notifier: notifier,
		roomName: roomName,
		logger:   logger.With().Str("component", "reminder").Logger(),
		now:      time.Now,
		sent:     make(map[string]bool),
	}
}

// SetClock overrides the clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Run checks periodically until ctx is cancelled. An immediate check runs
// on start.
func (s *Service) Run(ctx context.Context) {
	s.logger.Info().
		Dur("lead", s.cfg.Lead).
		Dur("check_interval", s.cfg.CheckInterval).
		Msg("reminder service started")

	s.CheckNow(ctx)

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reminder service stopped")
			return
		case <-ticker.C:
			s.CheckNow(ctx)
		}
	}
}

// CheckNow runs one reminder pass.
func (s *Service) CheckNow(ctx context.Context) {
	now := s.now()
	bookings, err := s.source.ListStartingBetween(ctx, now, now.Add(s.cfg.Lead))
	if err != nil {
		s.logger.Error().Err(err).Msg("list upcoming bookings")
		return
	}

	for _, b := range bookings {
		if s.alreadySent(b.ID) {
			continue
		}
		if err := s.notifier.Notify(ctx, b.UserID, s.message(b)); err != nil {
			s.logger.Error().Err(err).
				Str("booking_id", b.ID).
				Str("user_id", b.UserID).
				Msg("send reminder")
			metrics.IncReminderSent("error")
			continue
		}
		s.markSent(b.ID)
		metrics.IncReminderSent("ok")
	}
}

func (s *Service) message(b model.Booking) string {
	room := b.RoomID
	if s.roomName != nil {
		if name := s.roomName(b.RoomID); name != "" {
			room = name
		}
	}
	title := b.Title
	if title == "" {
		title = "your booking"
	}
	return "Reminder: " + title + " in " + room + " at " + b.Start.Format("15:04") + "."
}

func (s *Service) alreadySent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[id]
}

func (s *Service) markSent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[id] = true
}
