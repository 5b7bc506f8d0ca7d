package cli

import (
	"strings"
	"testing"

	"github.com/tutu-network/focus/internal/app/productivity"
	"github.com/tutu-network/focus/internal/app/timer"
	"github.com/tutu-network/focus/internal/domain"
)

func TestBar(t *testing.T) {
	tests := []struct {
		pct    float64
		filled int
	}{
		{-5, 0},
		{0, 0},
		{50, 15},
		{100, 30},
		{250, 30},
	}
	for _, tt := range tests {
		b := bar(tt.pct)
		if len(b) != barWidth+2 {
			t.Errorf("bar(%v) width = %d", tt.pct, len(b))
		}
		if got := strings.Count(b, "=") + strings.Count(b, ">"); got != tt.filled {
			t.Errorf("bar(%v) filled = %d, want %d", tt.pct, got, tt.filled)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := map[int64]string{
		0:    "0:00",
		59:   "0:59",
		1500: "25:00",
		3661: "1:01:01",
		-3:   "0:00",
	}
	for in, want := range tests {
		if got := formatClock(in); got != want {
			t.Errorf("formatClock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int64]string{
		0:     "0m",
		89:    "1m",
		3600:  "1h 00m",
		36000: "10h 00m",
		7500:  "2h 05m",
	}
	for in, want := range tests {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestTimerLine(t *testing.T) {
	focus := productivity.TimerView{State: timer.New(domain.ModeFocus)}
	focus.Elapsed = 65
	focus.Coins = 1
	if got := timerLine(focus); !strings.Contains(got, "1:05") || !strings.Contains(got, "1 coin") {
		t.Errorf("focus line = %q", got)
	}

	pomo := productivity.TimerView{State: timer.New(domain.ModePomodoro), Target: 1500}
	pomo.Elapsed = 750
	got := timerLine(pomo)
	for _, want := range []string{" 50%", "12:30 / 25:00", "work 1/4", "0 coins"} {
		if !strings.Contains(got, want) {
			t.Errorf("pomodoro line %q missing %q", got, want)
		}
	}
}

func TestGoalLine(t *testing.T) {
	if got := goalLine("today", domain.GoalProgress{Time: 600}); !strings.Contains(got, "no goal set") {
		t.Errorf("zero goal line = %q", got)
	}
	got := goalLine("today", domain.GoalProgress{Goal: 3600, Time: 900, Percentage: 25})
	if !strings.Contains(got, " 25%") || !strings.Contains(got, "15m / 1h 00m") {
		t.Errorf("goal line = %q", got)
	}
}
