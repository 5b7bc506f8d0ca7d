package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutu-network/focus/internal/domain"
)

func running(t *testing.T, mode domain.Mode) State {
	t.Helper()
	s, err := Start(New(mode))
	require.NoError(t, err)
	return s
}

func countEvents(events []domain.Event, typ domain.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

// ─── Focus Mode ─────────────────────────────────────────────────────────────

func TestStep_FocusRewardsEveryTenMinutes(t *testing.T) {
	s := running(t, domain.ModeFocus)
	cfg := domain.DefaultSettings()

	var rewards []int64
	for i := 0; i < 1800; i++ {
		var events []domain.Event
		s, events = Step(s, cfg, 1)
		for _, e := range events {
			if e.Type == domain.EventRewardGranted {
				rewards = append(rewards, e.Elapsed)
			}
		}
	}

	assert.Equal(t, []int64{600, 1200, 1800}, rewards)
	assert.Equal(t, int64(3), s.Coins)
	assert.Equal(t, int64(1800), s.Elapsed)
	assert.Equal(t, int64(1800), s.Total)
}

func TestStep_CoalescedTicksDoNotSkipRewards(t *testing.T) {
	s := running(t, domain.ModeFocus)
	s, events := Step(s, domain.DefaultSettings(), 1805)

	assert.Equal(t, 3, countEvents(events, domain.EventRewardGranted))
	assert.Equal(t, int64(3), s.Coins)
}

func TestStep_NotRunningIsNoop(t *testing.T) {
	s := New(domain.ModeFocus)
	next, events := Step(s, domain.DefaultSettings(), 600)
	assert.Empty(t, events)
	assert.Equal(t, s, next)
}

func TestStep_RewardEventCarriesDisplayHint(t *testing.T) {
	s := running(t, domain.ModeFocus)
	_, events := Step(s, domain.DefaultSettings(), 600)
	require.Len(t, events, 1)
	assert.Equal(t, domain.RewardDisplay, events[0].Display)
	assert.Equal(t, int64(1), events[0].Coins)
}

// ─── Pomodoro Mode ──────────────────────────────────────────────────────────

func TestStep_WorkToBreak(t *testing.T) {
	s := running(t, domain.ModePomodoro)
	cfg := domain.DefaultSettings() // 25 min work

	s, events := Step(s, cfg, 1500)

	assert.Equal(t, domain.PhaseBreak, s.Phase)
	assert.Equal(t, int64(0), s.Elapsed)
	assert.Equal(t, 1, s.Cycle)
	assert.Equal(t, int64(1500), s.Total)
	assert.Equal(t, int64(2), s.Coins) // 600, 1200
	assert.Equal(t, 1, countEvents(events, domain.EventPhaseChanged))
}

func TestStep_BreakToWorkKeepsCycle(t *testing.T) {
	s := running(t, domain.ModePomodoro)
	cfg := domain.DefaultSettings()

	s, _ = Step(s, cfg, 1500) // work -> break, cycle 1
	s, _ = Step(s, cfg, 5*60) // short break

	assert.Equal(t, domain.PhaseWork, s.Phase)
	assert.Equal(t, 1, s.Cycle)
	assert.Equal(t, int64(0), s.Elapsed)
	assert.Equal(t, int64(1500), s.Total, "break seconds are not focus time")

	s, _ = Step(s, cfg, 100)
	assert.Equal(t, int64(1600), s.Total)
}

func TestStep_LongBreakOnCycleThree(t *testing.T) {
	s := running(t, domain.ModePomodoro)
	cfg := domain.DefaultSettings()

	for i := 0; i < 3; i++ {
		s, _ = Step(s, cfg, cfg.WorkSeconds())
		require.Equal(t, domain.PhaseBreak, s.Phase)
		if s.Cycle == 3 {
			break
		}
		s, _ = Step(s, cfg, cfg.BreakSeconds(s.Cycle))
		require.Equal(t, domain.PhaseWork, s.Phase)
	}
	require.Equal(t, 3, s.Cycle)
	assert.Equal(t, int64(900), Target(s, cfg))

	// A short break's worth of time must not end the long break.
	s, _ = Step(s, cfg, 300)
	assert.Equal(t, domain.PhaseBreak, s.Phase)
	s, _ = Step(s, cfg, 600)
	assert.Equal(t, domain.PhaseWork, s.Phase)
	assert.Equal(t, 3, s.Cycle)

	// Next work edge wraps the rotation.
	s, _ = Step(s, cfg, cfg.WorkSeconds())
	assert.Equal(t, 0, s.Cycle)
}

func TestStep_CoalescedPhaseTransitions(t *testing.T) {
	s := running(t, domain.ModePomodoro)
	cfg := domain.DefaultSettings()

	// One big tick spanning work + break + some work.
	s, events := Step(s, cfg, 1500+300+60)

	assert.Equal(t, domain.PhaseWork, s.Phase)
	assert.Equal(t, int64(60), s.Elapsed)
	assert.Equal(t, 1, s.Cycle)
	assert.Equal(t, 2, countEvents(events, domain.EventPhaseChanged))
}

func TestStep_RewardTrackerResetsWithPhase(t *testing.T) {
	s := running(t, domain.ModePomodoro)
	cfg := domain.DefaultSettings()
	cfg.PomodoroBreak = 12 // long enough to earn a coin during the break

	s, _ = Step(s, cfg, 1500)
	require.Equal(t, domain.PhaseBreak, s.Phase)
	s, events := Step(s, cfg, 600)
	assert.Equal(t, 1, countEvents(events, domain.EventRewardGranted))
	assert.Equal(t, int64(3), s.Coins)
}

func TestTarget(t *testing.T) {
	cfg := domain.DefaultSettings()
	assert.Equal(t, int64(0), Target(New(domain.ModeFocus), cfg))
	assert.Equal(t, int64(1500), Target(New(domain.ModePomodoro), cfg))
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

func TestStartPause(t *testing.T) {
	s := New(domain.ModeFocus)

	_, err := Pause(s)
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)

	s, err = Start(s)
	require.NoError(t, err)
	gen := s.Generation

	_, err = Start(s)
	assert.ErrorIs(t, err, domain.ErrSessionRunning)

	s, err = Pause(s)
	require.NoError(t, err)
	assert.False(t, s.Running)
	assert.Greater(t, s.Generation, gen)
}

func TestSwitchMode(t *testing.T) {
	s := running(t, domain.ModeFocus)
	s, _ = Step(s, domain.DefaultSettings(), 700)

	_, err := SwitchMode(s, domain.ModePomodoro)
	assert.ErrorIs(t, err, domain.ErrSessionRunning)

	s, err = Pause(s)
	require.NoError(t, err)
	s.Notes = "chapter 3"

	s, err = SwitchMode(s, domain.ModePomodoro)
	require.NoError(t, err)
	assert.Equal(t, domain.ModePomodoro, s.Mode)
	assert.Equal(t, int64(0), s.Elapsed)
	assert.Equal(t, int64(0), s.Total)
	assert.Equal(t, int64(0), s.Coins)
	assert.Equal(t, domain.PhaseWork, s.Phase)
	assert.Equal(t, 0, s.Cycle)
	assert.Equal(t, "chapter 3", s.Notes)

	_, err = SwitchMode(s, "sprint")
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestReset_ClearsRewardTracker(t *testing.T) {
	s := running(t, domain.ModeFocus)
	cfg := domain.DefaultSettings()
	s, _ = Step(s, cfg, 600)
	require.Equal(t, int64(1), s.Coins)

	s = Reset(s)
	s, _ = Start(s)
	s, events := Step(s, cfg, 600)
	assert.Equal(t, 1, countEvents(events, domain.EventRewardGranted))
	assert.Equal(t, int64(1), s.Coins)
}
