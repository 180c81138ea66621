package models

// MonthStats holds the aggregated wellbeing statistics for one calendar
// month of diary entries. The five counts sum to the number of entries with
// a recognised wellbeing level.
type MonthStats struct {
	VerySadCount   int     `json:"verySadCount"`
	SadCount       int     `json:"sadCount"`
	NormalCount    int     `json:"normalCount"`
	HappyCount     int     `json:"happyCount"`
	VeryHappyCount int     `json:"veryHappyCount"`
	AvgPolarity    float64 `json:"avgPolarity"`
	HappiestDay    string  `json:"happiestDay,omitempty"`
	HappiestEntry  string  `json:"happiestEntry,omitempty"`
}

// Increment bumps the counter matching the given level. Unrecognised levels
// are ignored and reported as false.
func (s *MonthStats) Increment(level WellbeingLevel) bool {
	switch level {
	case LevelVerySad:
		s.VerySadCount++
	case LevelSad:
		s.SadCount++
	case LevelNormal:
		s.NormalCount++
	case LevelHappy:
		s.HappyCount++
	case LevelVeryHappy:
		s.VeryHappyCount++
	default:
		return false
	}
	return true
}

// CountFor returns the counter matching the given level, zero for
// unrecognised levels.
func (s MonthStats) CountFor(level WellbeingLevel) int {
	switch level {
	case LevelVerySad:
		return s.VerySadCount
	case LevelSad:
		return s.SadCount
	case LevelNormal:
		return s.NormalCount
	case LevelHappy:
		return s.HappyCount
	case LevelVeryHappy:
		return s.VeryHappyCount
	}
	return 0
}

// MonthKey identifies one calendar month.
type MonthKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MonthlySummary is the persisted aggregation result for one
// (user, year, month) triple. Rows are always replaced wholesale, never
// partially updated.
type MonthlySummary struct {
	UserID      int64      `json:"userId"`
	Year        int        `json:"year"`
	Month       int        `json:"month"`
	Stats       MonthStats `json:"stats"`
	GeneratedAt string     `json:"generatedAt"`
}
