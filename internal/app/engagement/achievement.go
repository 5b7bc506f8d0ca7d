package engagement

import (
	"time"

	"github.com/tutu-network/focus/internal/domain"
)

// Evaluate runs every catalog predicate against the current stats and
// ledger. The result has one entry per definition, in catalog order, with
// Unlocked set from the predicate alone; no dates are assigned.
func Evaluate(stats domain.Stats, ledger []domain.Session) []domain.AchievementState {
	defs := AllAchievements()
	out := make([]domain.AchievementState, len(defs))
	for i, def := range defs {
		out[i] = domain.AchievementState{
			ID:       def.ID,
			Unlocked: def.Predicate != nil && def.Predicate(stats, ledger),
		}
	}
	return out
}

// NewlyUnlocked returns the entries unlocked in current that were absent
// or locked in previous.
func NewlyUnlocked(previous, current []domain.AchievementState) []domain.AchievementState {
	prev := index(previous)
	var out []domain.AchievementState
	for _, c := range current {
		if !c.Unlocked {
			continue
		}
		if p, ok := prev[c.ID]; ok && p.Unlocked {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Merge layers a fresh evaluation over the saved unlock state.
// An achievement stays unlocked once unlocked, and its UnlockedDate is
// stamped with now the first time only. Saved entries for ids no longer
// in the catalog are dropped.
func Merge(saved, evaluated []domain.AchievementState, now time.Time) []domain.AchievementState {
	prev := index(saved)
	out := make([]domain.AchievementState, len(evaluated))
	for i, e := range evaluated {
		p, ok := prev[e.ID]
		switch {
		case ok && p.Unlocked:
			out[i] = p
			if out[i].UnlockedDate == nil {
				// Saved without a date (older data); stamp it now and keep it.
				at := now
				out[i].UnlockedDate = &at
			}
		case e.Unlocked:
			at := now
			out[i] = domain.AchievementState{ID: e.ID, Unlocked: true, UnlockedDate: &at}
		default:
			out[i] = domain.AchievementState{ID: e.ID}
		}
	}
	return out
}

// Join attaches catalog metadata to unlock state for display.
func Join(states []domain.AchievementState) []domain.Achievement {
	st := index(states)
	defs := AllAchievements()
	out := make([]domain.Achievement, len(defs))
	for i, def := range defs {
		s := st[def.ID]
		out[i] = domain.Achievement{
			ID:           def.ID,
			Title:        def.Title,
			Description:  def.Description,
			Icon:         def.Icon,
			Unlocked:     s.Unlocked,
			UnlockedDate: s.UnlockedDate,
		}
	}
	return out
}

// UnlockedCount returns how many states are unlocked.
func UnlockedCount(states []domain.AchievementState) int {
	n := 0
	for _, s := range states {
		if s.Unlocked {
			n++
		}
	}
	return n
}

func index(states []domain.AchievementState) map[string]domain.AchievementState {
	m := make(map[string]domain.AchievementState, len(states))
	for _, s := range states {
		m[s.ID] = s
	}
	return m
}

// ─── Achievement Definitions ────────────────────────────────────────────────

// AllAchievements returns the full achievement catalog.
func AllAchievements() []domain.AchievementDef {
	return []domain.AchievementDef{
		// ── Getting started ────────────────────────────────────────────
		{
			ID: "first_session", Title: "Getting Started",
			Description: "Complete your first focus session", Icon: "🌟",
			Predicate: func(s domain.Stats, _ []domain.Session) bool { return s.TotalSessions >= 1 },
		},

		// ── Total time ─────────────────────────────────────────────────
		{
			ID: "one_hour", Title: "One Hour Focus",
			Description: "Study for a total of 1 hour", Icon: "⏰",
			Predicate: func(s domain.Stats, _ []domain.Session) bool { return s.TotalTime >= 3600 },
		},
		{
			ID: "ten_hours", Title: "Dedicated Learner",
			Description: "Study for a total of 10 hours", Icon: "📚",
			Predicate: func(s domain.Stats, _ []domain.Session) bool { return s.TotalTime >= 36000 },
		},
		{
			ID: "hundred_hours", Title: "Master Student",
			Description: "Study for a total of 100 hours", Icon: "🎓",
			Predicate: func(s domain.Stats, _ []domain.Session) bool { return s.TotalTime >= 360000 },
		},

		// ── Streaks ────────────────────────────────────────────────────
		{
			ID: "week_streak", Title: "Week Warrior",
			Description: "Maintain a 7-day study streak", Icon: "🔥",
			Predicate: func(s domain.Stats, _ []domain.Session) bool { return s.CurrentStreak >= 7 },
		},
		{
			ID: "month_streak", Title: "Consistency King",
			Description: "Maintain a 30-day study streak", Icon: "👑",
			Predicate: func(s domain.Stats, _ []domain.Session) bool { return s.CurrentStreak >= 30 },
		},

		// ── Coins ──────────────────────────────────────────────────────
		{
			ID: "hundred_coins", Title: "Coin Collector",
			Description: "Earn 100 coins", Icon: "🪙",
			Predicate: func(s domain.Stats, _ []domain.Session) bool { return s.TotalCoins >= 100 },
		},

		// ── Session habits ─────────────────────────────────────────────
		{
			ID: "early_bird", Title: "Early Bird",
			Description: "Complete a session before 7 AM", Icon: "🌅",
			Predicate: func(_ domain.Stats, ledger []domain.Session) bool {
				return anySession(ledger, func(s domain.Session) bool {
					h := localHour(s.Date)
					return h >= 5 && h < 7
				})
			},
		},
		{
			ID: "night_owl", Title: "Night Owl",
			Description: "Complete a session after 11 PM", Icon: "🦉",
			Predicate: func(_ domain.Stats, ledger []domain.Session) bool {
				return anySession(ledger, func(s domain.Session) bool {
					h := localHour(s.Date)
					return h >= 23 || h < 5
				})
			},
		},
		{
			ID: "marathon", Title: "Marathon Runner",
			Description: "Complete a 2-hour session without breaks", Icon: "🏃",
			Predicate: func(_ domain.Stats, ledger []domain.Session) bool {
				return anySession(ledger, func(s domain.Session) bool { return s.Duration >= 7200 })
			},
		},
	}
}

func anySession(ledger []domain.Session, fn func(domain.Session) bool) bool {
	for _, s := range ledger {
		if fn(s) {
			return true
		}
	}
	return false
}

// localHour is the hour of t on the local wall clock.
func localHour(t time.Time) int {
	return t.In(time.Local).Hour()
}
