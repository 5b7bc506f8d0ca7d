package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Session errors
	ErrInvalidSession  = errors.New("session has zero duration")
	ErrSessionRunning  = errors.New("a session is running; stop or pause it first")
	ErrNoActiveSession = errors.New("no session in progress")
	ErrStaleTick       = errors.New("tick belongs to a cancelled run")

	// Input errors
	ErrInvalidMode     = errors.New("mode must be focus or pomodoro")
	ErrInvalidPeriod   = errors.New("period must be today, week or all")
	ErrInvalidGoals    = errors.New("goals must be non-negative")
	ErrInvalidSettings = errors.New("invalid settings")
)
