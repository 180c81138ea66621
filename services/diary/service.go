// Package diary persists journal entries. The storage layer enforces the
// one-entry-per-user-per-day invariant with a unique index, so inserts are
// race-free without any application-side locking.
package diary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"daybook/models"
)

var (
	// ErrDuplicateEntry is returned when an entry already exists for the
	// same user and calendar date.
	ErrDuplicateEntry = errors.New("diary entry already exists for this day")
	// ErrEmptyEntry is returned when the entry text is blank.
	ErrEmptyEntry = errors.New("diary entry text is empty")
)

// Service reads and writes diary entries.
type Service struct {
	db *sql.DB
}

// NewService returns a diary service on the given database connection.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// AddEntry stores an entry without sentiment data. The calendar date is
// derived from the timestamp; a second entry on the same date fails with
// ErrDuplicateEntry.
func (s *Service) AddEntry(ctx context.Context, userID int64, text string, ts time.Time) (int64, error) {
	return s.insert(ctx, userID, text, ts, "", nil)
}

// AddEntryWithSentiment stores an entry together with the classifier output.
func (s *Service) AddEntryWithSentiment(ctx context.Context, userID int64, text string, ts time.Time, level models.WellbeingLevel, polarity float64) (int64, error) {
	return s.insert(ctx, userID, text, ts, level, &polarity)
}

func (s *Service) insert(ctx context.Context, userID int64, text string, ts time.Time, level models.WellbeingLevel, polarity *float64) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, ErrEmptyEntry
	}

	timestamp := ts.Format(models.TimestampLayout)
	date := models.EntryDate(timestamp)

	var levelVal any
	if level != "" {
		levelVal = string(level)
	}
	var polarityVal any
	if polarity != nil {
		polarityVal = *polarity
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO diary (user_id, entry, timestamp, date, wellbeing_level, polarity)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, text, timestamp, date, levelVal, polarityVal)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateEntry
		}
		return 0, fmt.Errorf("insert diary entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted entry id: %w", err)
	}
	return id, nil
}

// Entries returns all entries for the user, newest first.
func (s *Service) Entries(ctx context.Context, userID int64) ([]models.DiaryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, entry, timestamp, date, wellbeing_level, polarity
		FROM diary
		WHERE user_id = ?
		ORDER BY timestamp DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query diary entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// EntriesForMonth returns the user's entries for one calendar month in
// ascending timestamp order. The aggregator's happiest-day tie-break
// depends on this ordering.
func (s *Service) EntriesForMonth(ctx context.Context, userID int64, year, month int) ([]models.DiaryEntry, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, entry, timestamp, date, wellbeing_level, polarity
		FROM diary
		WHERE user_id = ? AND date >= ? AND date < ?
		ORDER BY timestamp ASC`,
		userID, start.Format(models.DateLayout), end.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("query diary entries for month: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Months returns every distinct (year, month) pair that has at least one
// entry for the user, ascending. Dates are parsed properly rather than
// sliced at fixed string offsets.
func (s *Service) Months(ctx context.Context, userID int64) ([]models.MonthKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT date
		FROM diary
		WHERE user_id = ? AND date IS NOT NULL AND date != ''
		ORDER BY date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query diary months: %w", err)
	}
	defer rows.Close()

	var months []models.MonthKey
	seen := make(map[models.MonthKey]bool)

	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan diary date: %w", err)
		}

		day, err := time.Parse(models.DateLayout, date)
		if err != nil {
			log.Printf("[diary] skipping malformed entry date %q: %v", date, err)
			continue
		}

		key := models.MonthKey{Year: day.Year(), Month: int(day.Month())}
		if !seen[key] {
			seen[key] = true
			months = append(months, key)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diary dates: %w", err)
	}
	return months, nil
}

func scanEntries(rows *sql.Rows) ([]models.DiaryEntry, error) {
	var entries []models.DiaryEntry
	for rows.Next() {
		var (
			e     models.DiaryEntry
			level sql.NullString
			pol   sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.Timestamp, &e.Date, &level, &pol); err != nil {
			return nil, fmt.Errorf("scan diary entry: %w", err)
		}
		if level.Valid {
			e.Level = models.WellbeingLevel(level.String)
		}
		if pol.Valid {
			v := pol.Float64
			e.Polarity = &v
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diary entries: %w", err)
	}
	return entries, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
