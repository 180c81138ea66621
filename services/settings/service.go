// Package settings persists per-user configuration. Today that is only the
// session timer length.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"daybook/models"
)

// ErrTimerOutOfRange is returned when a timer update falls outside the
// accepted [MinTimerLength, MaxTimerLength] range.
var ErrTimerOutOfRange = errors.New("timer length out of range")

// Service reads and writes the settings table.
type Service struct {
	db *sql.DB
}

// NewService returns a settings service on the given connection.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Ensure creates the default settings row for the user when none exists.
// It is idempotent and runs on every login.
func (s *Service) Ensure(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, timer_length) VALUES (?, ?)
		ON CONFLICT(user_id) DO NOTHING`,
		userID, models.DefaultTimerLength)
	if err != nil {
		return fmt.Errorf("ensure settings row: %w", err)
	}
	return nil
}

// TimerLength returns the user's session timer length in seconds, falling
// back to the default when no row exists yet.
func (s *Service) TimerLength(ctx context.Context, userID int64) (int, error) {
	var length int
	err := s.db.QueryRowContext(ctx,
		"SELECT timer_length FROM settings WHERE user_id = ?", userID).Scan(&length)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultTimerLength, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query timer length: %w", err)
	}
	return length, nil
}

// SetTimerLength validates and stores a new timer length for the user.
func (s *Service) SetTimerLength(ctx context.Context, userID int64, seconds int) error {
	if seconds < models.MinTimerLength || seconds > models.MaxTimerLength {
		return fmt.Errorf("%w: %d seconds (allowed %d-%d)",
			ErrTimerOutOfRange, seconds, models.MinTimerLength, models.MaxTimerLength)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, timer_length) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET timer_length = excluded.timer_length`,
		userID, seconds)
	if err != nil {
		return fmt.Errorf("update timer length: %w", err)
	}
	return nil
}
