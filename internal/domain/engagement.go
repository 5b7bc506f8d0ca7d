package domain

import "time"

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementDef defines a single achievement's unlock condition.
// Predicates must be total, side-effect free functions of their inputs.
type AchievementDef struct {
	ID          string                      `json:"id"`
	Title       string                      `json:"title"`
	Description string                      `json:"description"`
	Icon        string                      `json:"icon"`
	Predicate   func(Stats, []Session) bool `json:"-"` // not serialized
}

// AchievementState is the persisted unlock state for one achievement.
// Unlocked never reverts to false once set.
type AchievementState struct {
	ID           string     `json:"id"`
	Unlocked     bool       `json:"unlocked"`
	UnlockedDate *time.Time `json:"unlockedDate,omitempty"`
}

// Achievement joins a definition with its unlock state (for display).
type Achievement struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Icon         string     `json:"icon"`
	Unlocked     bool       `json:"unlocked"`
	UnlockedDate *time.Time `json:"unlockedDate,omitempty"`
}

// ─── Timer Types ────────────────────────────────────────────────────────────

// Phase is the pomodoro phase.
type Phase string

const (
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
)

// CyclesPerRotation is the number of work/break cycles before a long break.
const CyclesPerRotation = 4

// ─── Notification Events ────────────────────────────────────────────────────

// EventType categorizes engine events surfaced to the presentation layer.
type EventType string

const (
	EventRewardGranted        EventType = "reward_granted"
	EventAchievementsUnlocked EventType = "achievements_unlocked"
	EventPhaseChanged         EventType = "phase_changed"
	EventSessionCommitted     EventType = "session_committed"
)

// Display durations for transient notifications.
const (
	RewardDisplay      = 3 * time.Second
	AchievementDisplay = 4 * time.Second
)

// Event is a fire-and-forget notification. The engine never reads events
// back; consumers may drop them.
type Event struct {
	Type         EventType     `json:"type"`
	At           time.Time     `json:"at"`
	Coins        int64         `json:"coins,omitempty"`   // reward_granted: coins in session so far
	Elapsed      int64         `json:"elapsed,omitempty"` // reward_granted: elapsed seconds at grant
	Phase        Phase         `json:"phase,omitempty"`
	Cycle        int           `json:"cycle,omitempty"`
	Achievements []Achievement `json:"achievements,omitempty"`
	Session      *Session      `json:"session,omitempty"`
	Display      time.Duration `json:"display,omitempty"`
}
