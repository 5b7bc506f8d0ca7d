// Package engagement implements the focus engine's rules: how a completed
// session folds into the running statistics, how streaks advance and
// reset, which achievements are unlocked, and how far along the goals are.
// Everything here is a pure function of its inputs.
package engagement

import (
	"time"

	"github.com/tutu-network/focus/internal/domain"
)

// AdvanceStreak returns the streak counters after a session completed at now.
// Days are compared as calendar days in now's location.
//   - First session ever: streak starts at 1.
//   - Same day as the last session: unchanged.
//   - The day after the last session: +1.
//   - Any longer gap: reset to 1.
func AdvanceStreak(stats domain.Stats, now time.Time) domain.Stats {
	switch {
	case stats.LastSessionDate == nil:
		stats.CurrentStreak = 1
	case sameDay(*stats.LastSessionDate, now):
		// Already counted today
	case isNextDay(*stats.LastSessionDate, now):
		stats.CurrentStreak++
	default:
		stats.CurrentStreak = 1
	}

	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	last := now
	stats.LastSessionDate = &last
	return stats
}

// startOfDay returns local midnight of t's calendar day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// sameDay reports whether a and b fall on the same calendar day in b's location.
func sameDay(a, b time.Time) bool {
	loc := b.Location()
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// isNextDay reports whether b is the calendar day after a, in b's location.
func isNextDay(a, b time.Time) bool {
	loc := b.Location()
	y, m, d := a.In(loc).Date()
	// time.Date normalizes d+1 across month and year ends.
	return sameDay(time.Date(y, m, d+1, 12, 0, 0, 0, loc), b)
}
