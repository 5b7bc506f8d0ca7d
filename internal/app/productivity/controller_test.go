package productivity_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutu-network/focus/internal/app/productivity"
	"github.com/tutu-network/focus/internal/app/store"
	"github.com/tutu-network/focus/internal/domain"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) Publish(e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofType(t domain.EventType) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	kv    *store.MemoryKV
	clock *fakeClock
	rec   *recorder
	ctl   *productivity.Controller
}

// noon keeps sessions clear of the early-bird and night-owl hours.
func noon(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		kv:    store.NewMemoryKV(),
		clock: &fakeClock{now: noon(2025, 3, 10)},
		rec:   &recorder{},
	}
	f.ctl = f.open()
	return f
}

// open builds a controller over the fixture's store, as a restart would.
func (f *fixture) open() *productivity.Controller {
	n := 0
	return productivity.New(store.New(f.kv),
		productivity.WithClock(f.clock),
		productivity.WithPublisher(f.rec),
		productivity.WithIDGenerator(func() (string, error) {
			n++
			return fmt.Sprintf("s%03d", n), nil
		}),
	)
}

func unlocked(achs []domain.Achievement) map[string]bool {
	m := make(map[string]bool, len(achs))
	for _, a := range achs {
		m[a.ID] = a.Unlocked
	}
	return m
}

func TestLogSession_OneHourUnlocks(t *testing.T) {
	f := newFixture(t)

	res, err := f.ctl.LogSession(productivity.Entry{Duration: time.Hour, Mode: domain.ModeFocus})
	require.NoError(t, err)

	assert.Equal(t, int64(3600), res.Stats.TotalTime)
	assert.Equal(t, int64(6), res.Stats.TotalCoins)
	assert.Equal(t, int64(1), res.Stats.TotalSessions)

	got := unlocked(f.ctl.Achievements())
	assert.True(t, got["one_hour"])
	assert.True(t, got["first_session"])
	assert.False(t, got["ten_hours"])

	ids := make([]string, 0, len(res.Unlocked))
	for _, a := range res.Unlocked {
		ids = append(ids, a.ID)
		require.NotNil(t, a.UnlockedDate)
		assert.True(t, a.UnlockedDate.Equal(f.clock.now))
	}
	assert.ElementsMatch(t, []string{"first_session", "one_hour"}, ids)

	ev := f.rec.ofType(domain.EventAchievementsUnlocked)
	require.Len(t, ev, 1)
	assert.Len(t, ev[0].Achievements, 2)
	assert.Equal(t, domain.AchievementDisplay, ev[0].Display)
	assert.Len(t, f.rec.ofType(domain.EventSessionCommitted), 1)
}

func TestTick_RewardsAtTenMinuteMarks(t *testing.T) {
	f := newFixture(t)
	gen, err := f.ctl.Start()
	require.NoError(t, err)

	for i := 0; i < 1800; i++ {
		require.NoError(t, f.ctl.Tick(gen, 1))
	}

	rewards := f.rec.ofType(domain.EventRewardGranted)
	require.Len(t, rewards, 3)
	for i, want := range []int64{600, 1200, 1800} {
		assert.Equal(t, want, rewards[i].Elapsed)
		assert.Equal(t, int64(i+1), rewards[i].Coins)
		assert.Equal(t, domain.RewardDisplay, rewards[i].Display)
	}
	assert.Equal(t, int64(3), f.ctl.Timer().Coins)
}

func TestTick_CoalescedDeltaMatchesSingleSteps(t *testing.T) {
	f := newFixture(t)
	gen, err := f.ctl.Start()
	require.NoError(t, err)

	require.NoError(t, f.ctl.Tick(gen, 1805))

	assert.Len(t, f.rec.ofType(domain.EventRewardGranted), 3)
	assert.Equal(t, int64(1805), f.ctl.Timer().Elapsed)
}

func TestTick_PomodoroPhaseChange(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctl.SwitchMode(domain.ModePomodoro))
	gen, err := f.ctl.Start()
	require.NoError(t, err)
	assert.Equal(t, int64(1500), f.ctl.Timer().Target)

	require.NoError(t, f.ctl.Tick(gen, 1500))

	tv := f.ctl.Timer()
	assert.Equal(t, domain.PhaseBreak, tv.Phase)
	assert.Equal(t, int64(0), tv.Elapsed)
	assert.Equal(t, 1, tv.Cycle)
	assert.Equal(t, int64(300), tv.Target)

	phases := f.rec.ofType(domain.EventPhaseChanged)
	require.Len(t, phases, 1)
	assert.Equal(t, domain.PhaseBreak, phases[0].Phase)
}

func TestTick_StaleGenerationIgnored(t *testing.T) {
	f := newFixture(t)
	gen, err := f.ctl.Start()
	require.NoError(t, err)
	require.NoError(t, f.ctl.Tick(gen, 10))
	require.NoError(t, f.ctl.Pause())

	err = f.ctl.Tick(gen, 5)
	require.ErrorIs(t, err, domain.ErrStaleTick)
	assert.Equal(t, int64(10), f.ctl.Timer().Elapsed)

	next, err := f.ctl.Start()
	require.NoError(t, err)
	require.NotEqual(t, gen, next)
	require.ErrorIs(t, f.ctl.Tick(gen, 5), domain.ErrStaleTick)
	require.NoError(t, f.ctl.Tick(next, 5))
	assert.Equal(t, int64(15), f.ctl.Timer().Elapsed)
}

func TestStart_TwiceFails(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctl.Start()
	require.NoError(t, err)
	_, err = f.ctl.Start()
	assert.ErrorIs(t, err, domain.ErrSessionRunning)
	assert.ErrorIs(t, f.ctl.SwitchMode(domain.ModePomodoro), domain.ErrSessionRunning)
}

func TestStop_CommitsAndResets(t *testing.T) {
	f := newFixture(t)
	gen, err := f.ctl.Start()
	require.NoError(t, err)
	f.ctl.SetNotes("  chapter 4  ")
	require.NoError(t, f.ctl.Tick(gen, 1250))

	res, err := f.ctl.Stop()
	require.NoError(t, err)
	assert.Equal(t, int64(1250), res.Session.Duration)
	assert.Equal(t, int64(2), res.Session.Coins)
	assert.Equal(t, domain.ModeFocus, res.Session.Mode)
	assert.Equal(t, "chapter 4", res.Session.Notes)
	assert.Equal(t, "s001", res.Session.ID)

	tv := f.ctl.Timer()
	assert.False(t, tv.Running)
	assert.Zero(t, tv.Elapsed)
	assert.Zero(t, tv.Total)
	assert.Zero(t, tv.Coins)
	assert.Empty(t, tv.Notes)

	require.ErrorIs(t, f.ctl.Tick(gen, 1), domain.ErrStaleTick)
}

func TestStop_PomodoroCommitsWorkTimeOnly(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctl.SwitchMode(domain.ModePomodoro))
	gen, err := f.ctl.Start()
	require.NoError(t, err)
	// 25m work, 5m break, then 100s into the second work phase.
	require.NoError(t, f.ctl.Tick(gen, 1500+300+100))

	res, err := f.ctl.Stop()
	require.NoError(t, err)
	assert.Equal(t, int64(1600), res.Session.Duration)
	assert.Equal(t, int64(1600), res.Stats.TotalTime)
	assert.Equal(t, domain.ModePomodoro, res.Session.Mode)
}

func TestStop_KeepsSessionsCommittedElsewhere(t *testing.T) {
	f := newFixture(t)
	// A second process sharing the same store, e.g. `focus log` while
	// `focus serve` is timing.
	other := productivity.New(store.New(f.kv),
		productivity.WithClock(f.clock),
		productivity.WithIDGenerator(func() (string, error) { return "cli001", nil }),
	)
	_, err := other.LogSession(productivity.Entry{Duration: 20 * time.Minute})
	require.NoError(t, err)

	gen, err := f.ctl.Start()
	require.NoError(t, err)
	require.NoError(t, f.ctl.Tick(gen, 600))
	res, err := f.ctl.Stop()
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.Stats.TotalSessions)
	assert.Equal(t, int64(1800), res.Stats.TotalTime)
	assert.Len(t, f.ctl.Sessions(), 2)
	assert.True(t, f.ctl.Verify())

	reopened := f.open()
	ids := []string{}
	for _, s := range reopened.Sessions() {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"cli001", "s001"}, ids)
	assert.Equal(t, int64(2), reopened.Stats().TotalSessions)
}

func TestStop_NothingRecorded(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctl.Start()
	require.NoError(t, err)

	_, err = f.ctl.Stop()
	require.ErrorIs(t, err, domain.ErrInvalidSession)
	assert.Empty(t, f.ctl.Sessions())
	assert.False(t, f.ctl.Timer().Running)
}

func TestStop_StorageFailureKeepsProgress(t *testing.T) {
	f := newFixture(t)
	gen, err := f.ctl.Start()
	require.NoError(t, err)
	require.NoError(t, f.ctl.Tick(gen, 700))

	f.kv.FailWrites(true)
	_, err = f.ctl.Stop()
	require.ErrorIs(t, err, store.ErrUnavailable)

	tv := f.ctl.Timer()
	assert.False(t, tv.Running)
	assert.Equal(t, int64(700), tv.Total)
	assert.Empty(t, f.ctl.Sessions())
	assert.Equal(t, domain.Stats{}, f.ctl.Stats())

	f.kv.FailWrites(false)
	res, err := f.ctl.Stop()
	require.NoError(t, err)
	assert.Equal(t, int64(700), res.Session.Duration)
}

func TestStreak_AcrossDays(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctl.LogSession(productivity.Entry{Duration: 25 * time.Minute, Mode: domain.ModeFocus})
	require.NoError(t, err)
	f.clock.now = noon(2025, 3, 11)
	res, err := f.ctl.LogSession(productivity.Entry{Duration: 25 * time.Minute, Mode: domain.ModeFocus})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.CurrentStreak)

	f.clock.now = noon(2025, 3, 13)
	res, err = f.ctl.LogSession(productivity.Entry{Duration: 25 * time.Minute, Mode: domain.ModeFocus})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.CurrentStreak)
	assert.Equal(t, 2, res.Stats.LongestStreak)
}

func TestGoalProgress_ZeroGoal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctl.UpdateGoals(domain.Goals{DailyGoal: 0, WeeklyGoal: 7200}))
	_, err := f.ctl.LogSession(productivity.Entry{Duration: time.Hour, Mode: domain.ModeFocus})
	require.NoError(t, err)

	daily, weekly := f.ctl.GoalProgress()
	assert.Equal(t, 0.0, daily.Percentage)
	assert.Equal(t, int64(3600), daily.Time)
	assert.Equal(t, 50.0, weekly.Percentage)
}

func TestUpdateGoals_RejectsNegative(t *testing.T) {
	f := newFixture(t)
	err := f.ctl.UpdateGoals(domain.Goals{DailyGoal: -1})
	require.ErrorIs(t, err, domain.ErrInvalidGoals)
	assert.Equal(t, domain.DefaultGoals(), f.ctl.Goals())
}

func TestUpdateSettings_AppliesToRunningPomodoro(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctl.SwitchMode(domain.ModePomodoro))
	gen, err := f.ctl.Start()
	require.NoError(t, err)

	s := domain.DefaultSettings()
	s.PomodoroWork = 1
	require.NoError(t, f.ctl.UpdateSettings(s))
	require.NoError(t, f.ctl.Tick(gen, 60))
	assert.Equal(t, domain.PhaseBreak, f.ctl.Timer().Phase)

	s.Theme = "neon"
	assert.ErrorIs(t, f.ctl.UpdateSettings(s), domain.ErrInvalidSettings)
}

func TestRestart_RestoresState(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctl.LogSession(productivity.Entry{Duration: time.Hour, Mode: domain.ModePomodoro, Notes: "deep work"})
	require.NoError(t, err)
	require.NoError(t, f.ctl.UpdateGoals(domain.Goals{DailyGoal: 1800, WeeklyGoal: 9000}))

	f.clock.now = f.clock.now.Add(time.Hour)
	reopened := f.open()

	assert.Len(t, reopened.Sessions(), 1)
	assert.Equal(t, f.ctl.Stats(), reopened.Stats())
	assert.Equal(t, domain.Goals{DailyGoal: 1800, WeeklyGoal: 9000}, reopened.Goals())

	// Unlock dates survive the restart instead of being restamped.
	for _, a := range reopened.Achievements() {
		if a.ID == "one_hour" {
			require.True(t, a.Unlocked)
			assert.True(t, a.UnlockedDate.Equal(noon(2025, 3, 10)))
		}
	}
	assert.False(t, reopened.Timer().Running)
	assert.Equal(t, domain.ModeFocus, reopened.Timer().Mode)
}

func TestVerifyAndRepair(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctl.LogSession(productivity.Entry{Duration: 30 * time.Minute, Mode: domain.ModeFocus})
	require.NoError(t, err)
	assert.True(t, f.ctl.Verify())

	// Corrupt the stored aggregate behind the controller's back.
	require.NoError(t, f.kv.Set(store.KeyStats, []byte(`{"totalTime":1,"currentStreak":1,"longestStreak":4}`)))
	ctl := f.open()
	assert.False(t, ctl.Verify())

	fixed, err := ctl.Repair()
	require.NoError(t, err)
	assert.Equal(t, int64(1800), fixed.TotalTime)
	assert.Equal(t, int64(1), fixed.TotalSessions)
	assert.Equal(t, 4, fixed.LongestStreak)
	assert.True(t, ctl.Verify())
}

func TestRepair_UsesStoredLedger(t *testing.T) {
	f := newFixture(t)
	other := f.open()
	_, err := other.LogSession(productivity.Entry{Duration: 30 * time.Minute})
	require.NoError(t, err)

	// f.ctl loaded before the session above; repairing must not drop it.
	fixed, err := f.ctl.Repair()
	require.NoError(t, err)
	assert.Equal(t, int64(1), fixed.TotalSessions)
	assert.Equal(t, int64(1800), fixed.TotalTime)
	assert.Len(t, f.ctl.Sessions(), 1)
	assert.Equal(t, int64(1), f.open().Stats().TotalSessions)
}

func TestPeriodStats(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctl.LogSession(productivity.Entry{Duration: 10 * time.Minute, Mode: domain.ModeFocus})
	require.NoError(t, err)
	f.clock.now = noon(2025, 3, 14)
	_, err = f.ctl.LogSession(productivity.Entry{Duration: 20 * time.Minute, Mode: domain.ModeFocus})
	require.NoError(t, err)

	assert.Equal(t, int64(1200), f.ctl.PeriodStats(domain.PeriodToday).TotalTime)
	assert.Equal(t, int64(1800), f.ctl.PeriodStats(domain.PeriodWeek).TotalTime)
	assert.Equal(t, 2, f.ctl.PeriodStats(domain.PeriodAll).TotalSessions)

	days := f.ctl.DailyBreakdown(7)
	require.Len(t, days, 7)
	assert.Equal(t, int64(1200), days[6].Time)
	assert.Equal(t, int64(600), days[2].Time)
}

func TestLogSession_Rejects(t *testing.T) {
	f := newFixture(t)
	_, err := f.ctl.LogSession(productivity.Entry{Duration: 0, Mode: domain.ModeFocus})
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
	_, err = f.ctl.LogSession(productivity.Entry{Duration: time.Minute, Mode: "nap"})
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
	assert.True(t, productivity.IsUserError(err))
	assert.False(t, productivity.IsUserError(store.ErrUnavailable))
}

func TestLogSession_CoinOverrideAndDefaultMode(t *testing.T) {
	f := newFixture(t)
	coins := int64(1)
	res, err := f.ctl.LogSession(productivity.Entry{Duration: 45 * time.Minute, Coins: &coins})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Session.Coins)
	assert.Equal(t, domain.ModeFocus, res.Session.Mode)

	res, err = f.ctl.LogSession(productivity.Entry{Duration: 45 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Session.Coins)
}
