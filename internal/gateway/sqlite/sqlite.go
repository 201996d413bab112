// Package sqlite implements the persistence gateway on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"roomdesk/internal/gateway"
	"roomdesk/internal/model"
)

// Gateway wraps sql.DB and implements gateway.Gateway.
type Gateway struct {
	db *sql.DB
}

// Open opens the database at path and runs migrations.
func Open(path string) (*Gateway, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &Gateway{db: db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			user_id TEXT NOT NULL,
			repeat_id TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_start ON bookings(start_time)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// PingContext checks database liveness, for readiness probes.
func (g *Gateway) PingContext(ctx context.Context) error {
	return g.db.PingContext(ctx)
}

func (g *Gateway) SubmitCreate(ctx context.Context, sub model.BookingSubmission) (*model.Booking, error) {
	now := time.Now().UTC()
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

	_, err := g.db.ExecContext(ctx,
		`INSERT INTO bookings (id, room_id, title, start_time, end_time, user_id, repeat_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.RoomID, b.Title, b.Start, b.End, b.UserID, b.RepeatID, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return &b, nil
}

func (g *Gateway) SubmitUpdate(ctx context.Context, id string, fields model.BookingFields) error {
	res, err := g.db.ExecContext(ctx,
		`UPDATE bookings
		 SET room_id = ?, title = ?, start_time = ?, end_time = ?,
		     repeat_id = CASE WHEN ? != '' THEN ? ELSE repeat_id END,
		     updated_at = ?
		 WHERE id = ?`,
		fields.RoomID, fields.Title, fields.Start, fields.End,
		fields.RepeatID, fields.RepeatID, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if affected == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func (g *Gateway) SubmitDelete(ctx context.Context, id string) error {
	res, err := g.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if affected == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func (g *Gateway) FetchAllForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, room_id, title, start_time, end_time, user_id, repeat_id, created_at, updated_at
		 FROM bookings WHERE user_id = ? ORDER BY start_time, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListStartingBetween returns bookings of any user starting in [from, to).
// Used by the reminder scheduler.
func (g *Gateway) ListStartingBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, room_id, title, start_time, end_time, user_id, repeat_id, created_at, updated_at
		 FROM bookings WHERE start_time >= ? AND start_time < ? ORDER BY start_time, id`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query upcoming bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func scanBookings(rows *sql.Rows) ([]model.Booking, error) {
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.RoomID, &b.Title, &b.Start, &b.End,
			&b.UserID, &b.RepeatID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}
