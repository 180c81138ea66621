package models

// WellbeingLevel is the categorical classification derived from a diary
// entry's sentiment polarity.
type WellbeingLevel string

const (
	LevelVerySad   WellbeingLevel = "very sad"
	LevelSad       WellbeingLevel = "sad"
	LevelNormal    WellbeingLevel = "normal"
	LevelHappy     WellbeingLevel = "happy"
	LevelVeryHappy WellbeingLevel = "very happy"
)

// Levels lists every known wellbeing level from most negative to most
// positive.
var Levels = []WellbeingLevel{LevelVerySad, LevelSad, LevelNormal, LevelHappy, LevelVeryHappy}

// Known reports whether the level is one of the five recognised categories.
func (l WellbeingLevel) Known() bool {
	switch l {
	case LevelVerySad, LevelSad, LevelNormal, LevelHappy, LevelVeryHappy:
		return true
	}
	return false
}

const (
	// TimestampLayout is the canonical storage format for entry timestamps.
	// It sorts lexicographically, which the entry ordering queries rely on.
	TimestampLayout = "2006-01-02 15:04:05"
	// DateLayout is the calendar-date prefix of TimestampLayout.
	DateLayout = "2006-01-02"
)

// DiaryEntry is a single journal entry. At most one entry exists per
// (UserID, Date) pair; the storage layer enforces this with a unique index.
type DiaryEntry struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"userId"`
	Text      string         `json:"text"`
	Timestamp string         `json:"timestamp"`
	Date      string         `json:"date"`
	Level     WellbeingLevel `json:"wellbeingLevel,omitempty"`
	Polarity  *float64       `json:"polarity,omitempty"`
}

// EntryDate derives the calendar date from a canonical timestamp string.
func EntryDate(timestamp string) string {
	if len(timestamp) < len(DateLayout) {
		return timestamp
	}
	return timestamp[:len(DateLayout)]
}
