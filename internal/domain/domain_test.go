package domain

import (
	"errors"
	"testing"
)

// ─── Mode / Period Parsing ──────────────────────────────────────────────────

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModeFocus, false},
		{"focus", ModeFocus, false},
		{" Pomodoro ", ModePomodoro, false},
		{"sprint", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMode) {
					t.Fatalf("ParseMode(%q) error = %v, want ErrInvalidMode", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod("WEEK"); err != nil || p != PeriodWeek {
		t.Errorf("ParsePeriod(WEEK) = %q, %v", p, err)
	}
	if p, err := ParsePeriod(""); err != nil || p != PeriodAll {
		t.Errorf("ParsePeriod(\"\") = %q, %v", p, err)
	}
	if _, err := ParsePeriod("month"); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("ParsePeriod(month) error = %v", err)
	}
}

func TestSession_Minutes(t *testing.T) {
	tests := []struct {
		secs int64
		want int64
	}{
		{0, 0},
		{29, 0},
		{30, 1},
		{89, 1},
		{90, 2},
		{3600, 60},
	}
	for _, tt := range tests {
		if got := (Session{Duration: tt.secs}).Minutes(); got != tt.want {
			t.Errorf("Minutes(%d) = %d, want %d", tt.secs, got, tt.want)
		}
	}
}

// ─── Settings ───────────────────────────────────────────────────────────────

func TestDefaultSettings_Valid(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
}

func TestSettings_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"theme", func(s *Settings) { s.Theme = "neon" }},
		{"scheme", func(s *Settings) { s.ColorScheme = "rainbow" }},
		{"volume_high", func(s *Settings) { s.Volume = 1.5 }},
		{"volume_low", func(s *Settings) { s.Volume = -0.1 }},
		{"work", func(s *Settings) { s.PomodoroWork = 0 }},
		{"break", func(s *Settings) { s.PomodoroBreak = -1 }},
		{"long_break", func(s *Settings) { s.PomodoroLongBreak = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Validate() = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestSettings_BreakSeconds(t *testing.T) {
	s := DefaultSettings()
	for cycle := 0; cycle < 3; cycle++ {
		if got := s.BreakSeconds(cycle); got != 300 {
			t.Errorf("BreakSeconds(%d) = %d, want 300", cycle, got)
		}
	}
	if got := s.BreakSeconds(3); got != 900 {
		t.Errorf("BreakSeconds(3) = %d, want 900", got)
	}
	if got := s.WorkSeconds(); got != 1500 {
		t.Errorf("WorkSeconds() = %d, want 1500", got)
	}
}

func TestGoals(t *testing.T) {
	g := DefaultGoals()
	if g.DailyGoal != 3600 || g.WeeklyGoal != 36000 {
		t.Errorf("DefaultGoals() = %+v", g)
	}
	if err := (Goals{DailyGoal: -1}).Validate(); !errors.Is(err, ErrInvalidGoals) {
		t.Errorf("negative goal accepted: %v", err)
	}
	if err := (Goals{}).Validate(); err != nil {
		t.Errorf("zero goals rejected: %v", err)
	}
}
