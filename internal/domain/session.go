// Package domain holds the focus engine's core types.
// Sessions are immutable ledger records; Stats is a cache derived from the
// ledger; achievements, goals and settings are layered on top.
package domain

import (
	"strings"
	"time"
)

// ─── Session Types ──────────────────────────────────────────────────────────

// Mode selects how the timer runs.
type Mode string

const (
	ModeFocus    Mode = "focus"
	ModePomodoro Mode = "pomodoro"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeFocus || m == ModePomodoro
}

// ParseMode parses a user-supplied mode name. Empty means focus.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFocus:
		return ModeFocus, nil
	case ModePomodoro:
		return ModePomodoro, nil
	}
	return "", ErrInvalidMode
}

// Session is one completed, timed focus interval. Once appended to the
// ledger it is never mutated or removed.
type Session struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`     // completion time
	Duration int64     `json:"duration"` // seconds
	Coins    int64     `json:"coins"`
	Mode     Mode      `json:"mode"`
	Notes    string    `json:"notes"`
	Tags     []string  `json:"tags"`
}

// Minutes returns the duration rounded to whole minutes.
func (s Session) Minutes() int64 {
	return (s.Duration + 30) / 60
}

// ─── Statistics ─────────────────────────────────────────────────────────────

// Stats is the running aggregate over the ledger.
// TotalTime, TotalCoins and TotalSessions must always be derivable from the
// ledger; CurrentStreak never exceeds LongestStreak.
type Stats struct {
	TotalTime       int64      `json:"totalTime"`
	TotalCoins      int64      `json:"totalCoins"`
	TotalSessions   int64      `json:"totalSessions"`
	CurrentStreak   int        `json:"currentStreak"`
	LongestStreak   int        `json:"longestStreak"`
	LastSessionDate *time.Time `json:"lastSessionDate"`
}

// PeriodStats summarises the sessions that fall in a reporting period.
type PeriodStats struct {
	Period        Period `json:"period"`
	TotalTime     int64  `json:"totalTime"`
	TotalCoins    int64  `json:"totalCoins"`
	TotalSessions int    `json:"totalSessions"`
}

// Period names a reporting window.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodAll   Period = "all"
)

// ParsePeriod parses a period name. Empty means all.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodToday:
		return PeriodToday, nil
	case PeriodWeek:
		return PeriodWeek, nil
	}
	return "", ErrInvalidPeriod
}

// DayTotal is the focus time logged on one calendar day.
type DayTotal struct {
	Date time.Time `json:"date"` // local midnight
	Time int64     `json:"time"`
}

// ─── Goals ──────────────────────────────────────────────────────────────────

// Goals holds the configured daily and weekly targets in seconds.
type Goals struct {
	DailyGoal  int64 `json:"dailyGoal"`
	WeeklyGoal int64 `json:"weeklyGoal"`
}

// DefaultGoals returns one hour a day and ten hours a week.
func DefaultGoals() Goals {
	return Goals{
		DailyGoal:  60 * 60,
		WeeklyGoal: 60 * 60 * 10,
	}
}

// Validate rejects negative targets.
func (g Goals) Validate() error {
	if g.DailyGoal < 0 || g.WeeklyGoal < 0 {
		return ErrInvalidGoals
	}
	return nil
}

// GoalProgress is the time logged in a window against a target.
type GoalProgress struct {
	Goal       int64   `json:"goal"`
	Time       int64   `json:"time"`
	Percentage float64 `json:"percentage"` // 0-100
}
