// Package productivity owns the live application state: the running timer,
// the session ledger and its derived aggregate, goals, settings and
// achievement unlocks. Every mutation goes through the Controller, which
// serialises access, persists through the store gateway and fans events out
// to subscribers.
package productivity

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tutu-network/focus/internal/app/credit"
	"github.com/tutu-network/focus/internal/app/engagement"
	"github.com/tutu-network/focus/internal/app/store"
	"github.com/tutu-network/focus/internal/app/timer"
	"github.com/tutu-network/focus/internal/domain"
	"github.com/tutu-network/focus/internal/infra/metrics"
)

// Clock abstracts time so tests can pin calendar days.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the local zone. Streaks and goal
// windows are calendar days, so UTC would be wrong here.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Publisher receives engine events. Implemented by events.Hub.
type Publisher interface {
	Publish(domain.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(domain.Event) {}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithPublisher sets the event sink.
func WithPublisher(p Publisher) Option {
	return func(ctl *Controller) { ctl.pub = p }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(ctl *Controller) { ctl.newID = fn }
}

// Controller is safe for concurrent use.
type Controller struct {
	mu    sync.Mutex
	gw    *store.Gateway
	clock Clock
	pub   Publisher
	newID func() (string, error)

	timer        timer.State
	sessions     []domain.Session
	stats        domain.Stats
	goals        domain.Goals
	settings     domain.Settings
	achievements []domain.AchievementState
}

// New loads persisted state through gw and returns a stopped controller in
// focus mode.
func New(gw *store.Gateway, opts ...Option) *Controller {
	c := &Controller{
		gw:    gw,
		clock: SystemClock{},
		pub:   nopPublisher{},
		newID: newSessionID,
	}
	for _, opt := range opts {
		opt(c)
	}

	snap := gw.Load()
	c.sessions = snap.Sessions
	c.stats = snap.Stats
	c.goals = snap.Goals
	c.settings = snap.Settings
	c.achievements = engagement.Merge(
		snap.Achievements,
		engagement.Evaluate(c.stats, c.sessions),
		c.clock.Now(),
	)
	c.timer = timer.New(domain.ModeFocus)

	if !engagement.Consistent(c.stats, c.sessions) {
		log.Printf("[productivity] stats disagree with ledger (%d sessions, stats say %d); run `focus stats --repair`",
			len(c.sessions), c.stats.TotalSessions)
	}
	c.syncGauges()
	return c
}

// newSessionID returns a UUIDv7, so ids sort by creation time.
func newSessionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ─── Timer ──────────────────────────────────────────────────────────────────

// Start begins or resumes the current session and returns the generation
// the caller's ticker must pass to Tick.
func (c *Controller) Start() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := timer.Start(c.timer)
	if err != nil {
		return c.timer.Generation, err
	}
	c.timer = next
	metrics.TimerRunning.Set(1)
	return next.Generation, nil
}

// Pause suspends the running session without discarding progress.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := timer.Pause(c.timer)
	if err != nil {
		return err
	}
	c.timer = next
	metrics.TimerRunning.Set(0)
	return nil
}

// Tick advances the running session by delta seconds. A tick carrying a
// generation other than the current one was scheduled before a pause or
// stop and is dropped with ErrStaleTick.
func (c *Controller) Tick(gen uint64, delta int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.timer.Generation || !c.timer.Running {
		metrics.StaleTicks.Inc()
		return domain.ErrStaleTick
	}

	next, events := timer.Step(c.timer, c.settings, delta)
	c.timer = next

	now := c.clock.Now()
	for _, e := range events {
		e.At = now
		switch e.Type {
		case domain.EventRewardGranted:
			metrics.CoinsGranted.Inc()
		case domain.EventPhaseChanged:
			metrics.PhaseTransitions.WithLabelValues(string(e.Phase)).Inc()
		}
		c.pub.Publish(e)
	}
	return nil
}

// Stop ends the current session. A session with recorded time is committed
// and the timer returns to its initial state. Stopping with nothing recorded
// resets the timer and returns ErrInvalidSession.
//
// When the commit cannot be persisted the timer keeps its progress (paused)
// so the user can retry.
func (c *Controller) Stop() (*Commit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer.Total <= 0 {
		c.timer = timer.Reset(c.timer)
		metrics.TimerRunning.Set(0)
		return nil, domain.ErrInvalidSession
	}

	// Invalidate in-flight ticks before anything else.
	if c.timer.Running {
		c.timer, _ = timer.Pause(c.timer)
		metrics.TimerRunning.Set(0)
	}

	res, err := c.commitLocked(c.timer.Total, c.timer.Coins, c.timer.Mode, c.timer.Notes)
	if err != nil {
		return nil, err
	}
	c.timer = timer.Reset(c.timer)
	return res, nil
}

// SwitchMode changes the timer mode while stopped.
func (c *Controller) SwitchMode(mode domain.Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := timer.SwitchMode(c.timer, mode)
	if err != nil {
		return err
	}
	c.timer = next
	return nil
}

// SetNotes attaches free text to the in-progress session.
func (c *Controller) SetNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer.Notes = strings.TrimSpace(notes)
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

// Commit is the outcome of a successful session commit.
type Commit struct {
	Session  domain.Session       `json:"session"`
	Stats    domain.Stats         `json:"stats"`
	Unlocked []domain.Achievement `json:"unlocked"`
}

// Entry is a session timed outside the engine.
type Entry struct {
	Duration time.Duration
	Mode     domain.Mode
	Notes    string
	// Coins overrides the reward. Nil means what the same length would
	// have earned running in one piece.
	Coins *int64
}

// LogSession records a manually entered session.
func (c *Controller) LogSession(e Entry) (*Commit, error) {
	if e.Mode == "" {
		e.Mode = domain.ModeFocus
	}
	if !e.Mode.Valid() {
		return nil, domain.ErrInvalidMode
	}
	secs := int64(e.Duration / time.Second)
	coins := credit.Count(secs)
	if e.Coins != nil {
		coins = *e.Coins
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commitLocked(secs, coins, e.Mode, strings.TrimSpace(e.Notes))
}

func (c *Controller) commitLocked(duration, coins int64, mode domain.Mode, notes string) (*Commit, error) {
	now := c.clock.Now()
	id, err := c.newID()
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	sess := domain.Session{
		ID:       id,
		Date:     now,
		Duration: duration,
		Coins:    coins,
		Mode:     mode,
		Notes:    notes,
		Tags:     []string{},
	}

	ledger, stats, err := c.gw.CommitSession(sess, func(prior domain.Stats) (domain.Stats, error) {
		return engagement.CommitSession(sess, prior, now)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSession) {
			metrics.SessionsRejected.Inc()
		}
		return nil, err
	}
	// The store may hold sessions committed by another process since load.
	c.sessions = ledger
	c.stats = stats

	evaluated := engagement.Evaluate(stats, ledger)
	newly := engagement.NewlyUnlocked(c.achievements, evaluated)
	if len(newly) > 0 {
		c.achievements = engagement.Merge(c.achievements, evaluated, now)
		if err := c.gw.SaveAchievements(c.achievements); err != nil {
			// The session is durable; unlocks are re-derived on next load.
			log.Printf("[productivity] save achievements: %v", err)
		}
	}

	metrics.SessionsCommitted.WithLabelValues(string(mode)).Inc()
	metrics.FocusSeconds.Add(float64(duration))
	metrics.SessionDuration.Observe(float64(duration))
	c.syncGauges()

	unlocked := c.unlockedDisplay(newly)
	for _, a := range unlocked {
		metrics.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
	}

	committed := sess
	c.pub.Publish(domain.Event{Type: domain.EventSessionCommitted, At: now, Session: &committed})
	if len(unlocked) > 0 {
		c.pub.Publish(domain.Event{
			Type:         domain.EventAchievementsUnlocked,
			At:           now,
			Achievements: unlocked,
			Display:      domain.AchievementDisplay,
		})
	}

	return &Commit{Session: sess, Stats: stats, Unlocked: unlocked}, nil
}

// unlockedDisplay joins newly unlocked ids with their definitions and the
// dates Merge assigned.
func (c *Controller) unlockedDisplay(newly []domain.AchievementState) []domain.Achievement {
	if len(newly) == 0 {
		return nil
	}
	want := make(map[string]bool, len(newly))
	for _, n := range newly {
		want[n.ID] = true
	}
	var out []domain.Achievement
	for _, a := range engagement.Join(c.achievements) {
		if want[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// Verify reports whether the stored aggregate agrees with the ledger.
func (c *Controller) Verify() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return engagement.Consistent(c.stats, c.sessions)
}

// Repair recomputes totals from the stored ledger and persists them.
// Streak fields are kept. The controller picks up any sessions another
// process committed since load.
func (c *Controller) Repair() (domain.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ledger, rebuilt, err := c.gw.RebuildStats(engagement.Rebuild)
	if err != nil {
		return c.stats, err
	}
	c.sessions = ledger
	c.stats = rebuilt
	c.syncGauges()
	return rebuilt, nil
}

// ─── Preferences ────────────────────────────────────────────────────────────

// UpdateGoals validates and persists new goals.
func (c *Controller) UpdateGoals(g domain.Goals) error {
	if err := g.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.gw.SaveGoals(g); err != nil {
		return err
	}
	c.goals = g
	return nil
}

// UpdateSettings validates and persists new settings. Pomodoro lengths
// apply from the next tick.
func (c *Controller) UpdateSettings(s domain.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.gw.SaveSettings(s); err != nil {
		return err
	}
	c.settings = s
	return nil
}

// ─── Queries ────────────────────────────────────────────────────────────────

// TimerView is the timer state plus the current pomodoro target.
type TimerView struct {
	timer.State
	Target int64 `json:"target"`
}

// Timer returns a copy of the timer state.
func (c *Controller) Timer() TimerView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return TimerView{State: c.timer, Target: timer.Target(c.timer, c.settings)}
}

// Sessions returns a copy of the ledger, oldest first.
func (c *Controller) Sessions() []domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sessions)
}

// Stats returns the aggregate.
func (c *Controller) Stats() domain.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// PeriodStats summarises today, the last seven days, or everything.
func (c *Controller) PeriodStats(p domain.Period) domain.PeriodStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return engagement.PeriodSummary(p, c.sessions, c.clock.Now())
}

// DailyBreakdown returns focus time per day for the last n days.
func (c *Controller) DailyBreakdown(n int) []domain.DayTotal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return engagement.DailyBreakdown(c.sessions, c.clock.Now(), n)
}

// Goals returns the configured goals.
func (c *Controller) Goals() domain.Goals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.goals
}

// GoalProgress returns daily and weekly progress as of now.
func (c *Controller) GoalProgress() (daily, weekly domain.GoalProgress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	return engagement.DailyProgress(c.goals, c.sessions, now),
		engagement.WeeklyProgress(c.goals, c.sessions, now)
}

// Settings returns the current settings.
func (c *Controller) Settings() domain.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Achievements returns the catalog joined with unlock state.
func (c *Controller) Achievements() []domain.Achievement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return engagement.Join(c.achievements)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (c *Controller) syncGauges() {
	metrics.CurrentStreak.Set(float64(c.stats.CurrentStreak))
	metrics.LongestStreak.Set(float64(c.stats.LongestStreak))
	metrics.TotalCoins.Set(float64(c.stats.TotalCoins))
}

// IsUserError reports whether err is a validation or state error the caller
// caused, as opposed to a storage failure.
func IsUserError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidSession,
		domain.ErrSessionRunning,
		domain.ErrNoActiveSession,
		domain.ErrStaleTick,
		domain.ErrInvalidMode,
		domain.ErrInvalidPeriod,
		domain.ErrInvalidGoals,
		domain.ErrInvalidSettings,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
