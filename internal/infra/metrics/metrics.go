// Package metrics provides Prometheus metrics for focus.
// Counters cover committed work; gauges mirror the current aggregate so a
// scrape shows the same numbers as `focus stats`.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Sessions ───────────────────────────────────────────────────────────────

// SessionsCommitted counts sessions appended to the ledger, by mode.
var SessionsCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "focus",
	Name:      "sessions_committed_total",
	Help:      "Total sessions committed to the ledger.",
}, []string{"mode"})

// SessionsRejected counts commits refused as invalid (zero duration).
var SessionsRejected = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focus",
	Name:      "sessions_rejected_total",
	Help:      "Total session commits rejected as invalid.",
})

// FocusSeconds counts committed focus time.
var FocusSeconds = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focus",
	Name:      "focus_seconds_total",
	Help:      "Total committed focus time in seconds.",
})

// SessionDuration tracks committed session lengths.
var SessionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "focus",
	Name:      "session_duration_seconds",
	Help:      "Committed session duration in seconds.",
	Buckets:   []float64{60, 300, 600, 1500, 1800, 3600, 7200, 14400},
})

// ─── Rewards ────────────────────────────────────────────────────────────────

// CoinsGranted counts coins granted by the reward policy while running.
var CoinsGranted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focus",
	Name:      "coins_granted_total",
	Help:      "Total coins granted during running sessions.",
})

// AchievementsUnlocked counts first-time unlocks, by achievement id.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "focus",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
}, []string{"id"})

// PhaseTransitions counts pomodoro phase changes, by the phase entered.
var PhaseTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "focus",
	Name:      "pomodoro_phase_transitions_total",
	Help:      "Total pomodoro phase transitions.",
}, []string{"phase"})

// StaleTicks counts ticks dropped because their run was cancelled.
var StaleTicks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focus",
	Name:      "stale_ticks_total",
	Help:      "Ticks ignored after pause or stop.",
})

// ─── Aggregate ──────────────────────────────────────────────────────────────

// CurrentStreak mirrors stats.currentStreak.
var CurrentStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "focus",
	Name:      "streak_current_days",
	Help:      "Current consecutive-day streak.",
})

// LongestStreak mirrors stats.longestStreak.
var LongestStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "focus",
	Name:      "streak_longest_days",
	Help:      "Longest consecutive-day streak observed.",
})

// TotalCoins mirrors stats.totalCoins.
var TotalCoins = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "focus",
	Name:      "coins_balance",
	Help:      "Total coins earned across all sessions.",
})

// TimerRunning is 1 while a session is running.
var TimerRunning = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "focus",
	Name:      "timer_running",
	Help:      "1 while a session is running, 0 otherwise.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus is 1 while a check passes, 0 while it fails.
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "focus",
	Name:      "health_check_status",
	Help:      "Latest health check result (1 healthy, 0 failing).",
}, []string{"check"})

// HealthRecoveries counts successful auto-recoveries, by check.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "focus",
	Name:      "health_recoveries_total",
	Help:      "Total successful health check recoveries.",
}, []string{"check"})
