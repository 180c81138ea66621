package models

const (
	// DefaultTimerLength is the session timer length in seconds assigned to
	// every new account.
	DefaultTimerLength = 1800
	// MinTimerLength and MaxTimerLength bound accepted timer updates.
	MinTimerLength = 20
	MaxTimerLength = 1800
)

// Settings holds the per-user configuration row.
type Settings struct {
	UserID      int64 `json:"userId"`
	TimerLength int   `json:"timerLength"`
}
