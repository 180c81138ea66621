// Package summary computes and persists per-month wellbeing statistics.
package summary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"daybook/models"
)

// entrySource is the slice of the diary service the aggregator needs.
type entrySource interface {
	EntriesForMonth(ctx context.Context, userID int64, year, month int) ([]models.DiaryEntry, error)
	Months(ctx context.Context, userID int64) ([]models.MonthKey, error)
}

// Service aggregates diary entries into monthly summaries and manages the
// monthly_summary table.
type Service struct {
	db      *sql.DB
	entries entrySource
}

// NewService returns a summary service reading entries from the given
// source and persisting summaries on the given connection.
func NewService(db *sql.DB, entries entrySource) *Service {
	return &Service{db: db, entries: entries}
}

// happiestBaseline sits below any valid polarity so that months without a
// scored entry leave the happiest fields empty.
const happiestBaseline = -2.0

// ComputeMonthStats aggregates one month of entries. The input must be in
// ascending timestamp order: the happiest-day comparison is strict, so the
// earliest entry wins polarity ties.
func ComputeMonthStats(entries []models.DiaryEntry) models.MonthStats {
	var stats models.MonthStats

	var polaritySum float64
	polarityCount := 0
	best := happiestBaseline

	for _, e := range entries {
		stats.Increment(e.Level)

		if e.Polarity == nil {
			continue
		}
		polaritySum += *e.Polarity
		polarityCount++

		if *e.Polarity > best {
			best = *e.Polarity
			stats.HappiestDay = e.Timestamp
			stats.HappiestEntry = e.Text
		}
	}

	if polarityCount > 0 {
		stats.AvgPolarity = polaritySum / float64(polarityCount)
	}
	return stats
}

// Upsert inserts or fully replaces the summary row for (userID, year,
// month). Every field is overwritten; nothing accumulates across runs.
func (s *Service) Upsert(ctx context.Context, userID int64, year, month int, stats models.MonthStats) error {
	var happiestDay, happiestEntry any
	if stats.HappiestDay != "" {
		happiestDay = stats.HappiestDay
		happiestEntry = stats.HappiestEntry
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monthly_summary (
			user_id, year, month,
			very_sad_count, sad_count, normal_count, happy_count, very_happy_count,
			avg_polarity, happiest_day, happiest_entry, generated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, year, month) DO UPDATE SET
			very_sad_count = excluded.very_sad_count,
			sad_count = excluded.sad_count,
			normal_count = excluded.normal_count,
			happy_count = excluded.happy_count,
			very_happy_count = excluded.very_happy_count,
			avg_polarity = excluded.avg_polarity,
			happiest_day = excluded.happiest_day,
			happiest_entry = excluded.happiest_entry,
			generated_at = excluded.generated_at`,
		userID, year, month,
		stats.VerySadCount, stats.SadCount, stats.NormalCount, stats.HappyCount, stats.VeryHappyCount,
		stats.AvgPolarity, happiestDay, happiestEntry,
		time.Now().Format(models.TimestampLayout))
	if err != nil {
		return fmt.Errorf("upsert monthly summary: %w", err)
	}
	return nil
}

// Get returns the stored summary for (userID, year, month), or nil when
// none exists.
func (s *Service) Get(ctx context.Context, userID int64, year, month int) (*models.MonthlySummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, year, month,
		       very_sad_count, sad_count, normal_count, happy_count, very_happy_count,
		       avg_polarity, happiest_day, happiest_entry, generated_at
		FROM monthly_summary
		WHERE user_id = ? AND year = ? AND month = ?`,
		userID, year, month)

	summary, err := scanSummary(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query monthly summary: %w", err)
	}
	return summary, nil
}

// ListAll returns every stored summary for the user, most recent month
// first.
func (s *Service) ListAll(ctx context.Context, userID int64) ([]models.MonthlySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, year, month,
		       very_sad_count, sad_count, normal_count, happy_count, very_happy_count,
		       avg_polarity, happiest_day, happiest_entry, generated_at
		FROM monthly_summary
		WHERE user_id = ?
		ORDER BY year DESC, month DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query monthly summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.MonthlySummary
	for rows.Next() {
		summary, err := scanSummary(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan monthly summary: %w", err)
		}
		summaries = append(summaries, *summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly summaries: %w", err)
	}
	return summaries, nil
}

// GenerateAll recomputes and upserts the summary of every month that has
// entries for the user. It is idempotent and silent when no months exist;
// callers run it on every login so summaries stay current.
func (s *Service) GenerateAll(ctx context.Context, userID int64) error {
	months, err := s.entries.Months(ctx, userID)
	if err != nil {
		return fmt.Errorf("list months with entries: %w", err)
	}

	for _, key := range months {
		entries, err := s.entries.EntriesForMonth(ctx, userID, key.Year, key.Month)
		if err != nil {
			return fmt.Errorf("load entries for %04d-%02d: %w", key.Year, key.Month, err)
		}
		if len(entries) == 0 {
			continue
		}

		stats := ComputeMonthStats(entries)
		if err := s.Upsert(ctx, userID, key.Year, key.Month, stats); err != nil {
			return err
		}
	}

	if len(months) > 0 {
		log.Printf("[summary] generated %d monthly summaries for user %d", len(months), userID)
	}
	return nil
}

func scanSummary(scan func(dest ...any) error) (*models.MonthlySummary, error) {
	var (
		summary       models.MonthlySummary
		happiestDay   sql.NullString
		happiestEntry sql.NullString
	)
	err := scan(
		&summary.UserID, &summary.Year, &summary.Month,
		&summary.Stats.VerySadCount, &summary.Stats.SadCount, &summary.Stats.NormalCount,
		&summary.Stats.HappyCount, &summary.Stats.VeryHappyCount,
		&summary.Stats.AvgPolarity, &happiestDay, &happiestEntry, &summary.GeneratedAt)
	if err != nil {
		return nil, err
	}
	summary.Stats.HappiestDay = happiestDay.String
	summary.Stats.HappiestEntry = happiestEntry.String
	return &summary, nil
}
