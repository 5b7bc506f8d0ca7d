package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/tutu-network/focus/internal/app/productivity"
	"github.com/tutu-network/focus/internal/domain"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Terminal rendering for the running timer and goal progress.
// Timer line:  [=========>..........]  42% │ 10:30 / 25:00 │ work 2/4 │ 1 coin
// Goal line:   [====>...............]  25% │ 15m / 1h 00m

const barWidth = 30 // Characters for the progress bar

// bar renders pct (0-100) as a fixed-width bar.
func bar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	switch {
	case filled == barWidth:
		return "[" + strings.Repeat("=", filled) + "]"
	case filled > 0:
		return "[" + strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty) + "]"
	default:
		return "[" + strings.Repeat(".", barWidth) + "]"
	}
}

// timerLine renders the running timer. Focus mode has no target, so it
// shows elapsed time only.
func timerLine(t productivity.TimerView) string {
	coins := plural(t.Coins, "coin")
	if t.Mode != domain.ModePomodoro || t.Target <= 0 {
		return fmt.Sprintf("  focus %s │ %s", formatClock(t.Elapsed), coins)
	}
	pct := 100 * float64(t.Elapsed) / float64(t.Target)
	return fmt.Sprintf("  %s %3.0f%% │ %s / %s │ %s %d/%d │ %s",
		bar(pct), pct,
		formatClock(t.Elapsed), formatClock(t.Target),
		t.Phase, t.Cycle+1, domain.CyclesPerRotation,
		coins)
}

// goalLine renders progress toward a goal.
func goalLine(label string, p domain.GoalProgress) string {
	if p.Goal == 0 {
		return fmt.Sprintf("  %-7s %s │ no goal set", label, formatDuration(p.Time))
	}
	return fmt.Sprintf("  %-7s %s %3.0f%% │ %s / %s",
		label, bar(p.Percentage), p.Percentage, formatDuration(p.Time), formatDuration(p.Goal))
}

// formatClock renders seconds as M:SS, or H:MM:SS from an hour up.
func formatClock(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// formatDuration renders seconds as "45m" or "2h 05m".
func formatDuration(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	mins := (secs + 30) / 60
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", mins/60, mins%60)
}

func plural(n int64, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func clearLine(w io.Writer) {
	fmt.Fprint(w, "\r\033[K")
}
