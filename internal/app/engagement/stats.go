package engagement

import (
	"time"

	"github.com/tutu-network/focus/internal/domain"
)

// CommitSession folds a completed session into the prior statistics.
// Zero-duration sessions are rejected with ErrInvalidSession and prior is
// returned unchanged. The caller persists the result together with the
// ledger append.
func CommitSession(session domain.Session, prior domain.Stats, now time.Time) (domain.Stats, error) {
	if session.Duration <= 0 || session.Coins < 0 {
		return prior, domain.ErrInvalidSession
	}

	next := prior
	next.TotalTime += session.Duration
	next.TotalCoins += session.Coins
	next.TotalSessions++
	return AdvanceStreak(next, now), nil
}

// Rebuild recomputes the ledger-derived totals. Streak fields are carried
// over from stats because they depend on commit times, not just the ledger.
func Rebuild(stats domain.Stats, ledger []domain.Session) domain.Stats {
	stats.TotalTime, stats.TotalCoins, stats.TotalSessions = 0, 0, 0
	for _, s := range ledger {
		stats.TotalTime += s.Duration
		stats.TotalCoins += s.Coins
		stats.TotalSessions++
	}
	return stats
}

// Consistent reports whether stats' totals match the ledger.
func Consistent(stats domain.Stats, ledger []domain.Session) bool {
	r := Rebuild(stats, ledger)
	return r.TotalTime == stats.TotalTime &&
		r.TotalCoins == stats.TotalCoins &&
		r.TotalSessions == stats.TotalSessions
}

// PeriodSummary summarises the sessions in a reporting period ending at now.
// Today is now's calendar day; week is the trailing seven days.
func PeriodSummary(period domain.Period, ledger []domain.Session, now time.Time) domain.PeriodStats {
	out := domain.PeriodStats{Period: period}
	var in []domain.Session
	switch period {
	case domain.PeriodToday:
		start, end := TodayWindow(now)
		in = Window(ledger, start, end)
	case domain.PeriodWeek:
		start, end := WeekWindow(now)
		in = Window(ledger, start, end)
	default:
		in = ledger
	}
	for _, s := range in {
		out.TotalTime += s.Duration
		out.TotalCoins += s.Coins
		out.TotalSessions++
	}
	return out
}

// DailyBreakdown returns focus time per calendar day for the last n days,
// oldest first, ending with now's day.
func DailyBreakdown(ledger []domain.Session, now time.Time, n int) []domain.DayTotal {
	if n <= 0 {
		return nil
	}
	loc := now.Location()
	today := startOfDay(now, loc)
	days := make([]domain.DayTotal, n)
	for i := range days {
		days[i].Date = today.AddDate(0, 0, i-(n-1))
	}
	for _, s := range ledger {
		d := startOfDay(s.Date, loc)
		for i := range days {
			if days[i].Date.Equal(d) {
				days[i].Time += s.Duration
				break
			}
		}
	}
	return days
}
