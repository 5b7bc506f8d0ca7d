package engagement

import (
	"time"

	"github.com/tutu-network/focus/internal/domain"
)

// Week is the trailing window used for weekly goals and stats.
const Week = 7 * 24 * time.Hour

// Progress sums the focus time logged in [start, end] against goal.
// A zero goal reports 0%; otherwise the percentage is capped at 100.
func Progress(goal int64, ledger []domain.Session, start, end time.Time) domain.GoalProgress {
	p := domain.GoalProgress{Goal: goal}
	for _, s := range Window(ledger, start, end) {
		p.Time += s.Duration
	}
	if goal > 0 {
		p.Percentage = min(100, 100*float64(p.Time)/float64(goal))
	}
	return p
}

// DailyProgress is Progress against goals.DailyGoal for now's calendar day.
func DailyProgress(goals domain.Goals, ledger []domain.Session, now time.Time) domain.GoalProgress {
	start, end := TodayWindow(now)
	return Progress(goals.DailyGoal, ledger, start, end)
}

// WeeklyProgress is Progress against goals.WeeklyGoal for the trailing week.
func WeeklyProgress(goals domain.Goals, ledger []domain.Session, now time.Time) domain.GoalProgress {
	start, end := WeekWindow(now)
	return Progress(goals.WeeklyGoal, ledger, start, end)
}

// Window returns the sessions whose date falls in [start, end].
func Window(ledger []domain.Session, start, end time.Time) []domain.Session {
	var out []domain.Session
	for _, s := range ledger {
		if s.Date.Before(start) || s.Date.After(end) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// TodayWindow spans now's whole calendar day.
func TodayWindow(now time.Time) (time.Time, time.Time) {
	start := startOfDay(now, now.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// WeekWindow spans the seven days up to and including now.
func WeekWindow(now time.Time) (time.Time, time.Time) {
	return now.Add(-Week), now
}
