// Package timer implements the in-progress session state machine.
// Step is a pure function: an external scheduler feeds it elapsed seconds
// and it returns the next state plus the events that fired.
package timer

import (
	"github.com/tutu-network/focus/internal/app/credit"
	"github.com/tutu-network/focus/internal/domain"
)

// State is the in-progress timer. The zero value is not useful; use New.
type State struct {
	Mode    domain.Mode  `json:"mode"`
	Running bool         `json:"running"`
	Elapsed int64        `json:"elapsed"` // seconds in the current phase
	Total   int64        `json:"total"`   // focus seconds this session; pomodoro breaks excluded
	Coins   int64        `json:"coins"`
	Phase   domain.Phase `json:"phase"`
	Cycle   int          `json:"cycle"` // 0..3 position in the pomodoro rotation
	Notes   string       `json:"notes"`

	// Generation is bumped on every start, pause and stop. Ticks issued
	// under an older generation are ignored.
	Generation uint64 `json:"generation"`

	rewards credit.Tracker
}

// New returns an idle timer in the given mode.
func New(mode domain.Mode) State {
	return State{Mode: mode, Phase: domain.PhaseWork}
}

// Start marks the timer running. Returns ErrSessionRunning if it already is.
func Start(s State) (State, error) {
	if s.Running {
		return s, domain.ErrSessionRunning
	}
	s.Running = true
	s.Generation++
	return s, nil
}

// Pause stops ticking without discarding progress.
func Pause(s State) (State, error) {
	if !s.Running {
		return s, domain.ErrNoActiveSession
	}
	s.Running = false
	s.Generation++
	return s, nil
}

// Reset discards progress and returns to the initial state of the current
// mode. Notes are cleared. The generation keeps counting up.
func Reset(s State) State {
	gen := s.Generation + 1
	n := New(s.Mode)
	n.Generation = gen
	return n
}

// SwitchMode changes between focus and pomodoro. Only allowed while
// stopped; resets elapsed time and in-progress coins.
func SwitchMode(s State, mode domain.Mode) (State, error) {
	if !mode.Valid() {
		return s, domain.ErrInvalidMode
	}
	if s.Running {
		return s, domain.ErrSessionRunning
	}
	notes := s.Notes
	s = Reset(s)
	s.Mode = mode
	s.Notes = notes
	return s, nil
}

// Target returns the length of the current pomodoro phase in seconds,
// or 0 in focus mode.
func Target(s State, cfg domain.Settings) int64 {
	if s.Mode != domain.ModePomodoro {
		return 0
	}
	if s.Phase == domain.PhaseWork {
		return cfg.WorkSeconds()
	}
	return cfg.BreakSeconds(s.Cycle)
}

// Step advances a running timer by delta seconds, one second at a time so
// that coalesced ticks never skip a reward or a phase transition.
// Returned events carry no timestamp; the caller stamps them.
func Step(s State, cfg domain.Settings, delta int64) (State, []domain.Event) {
	if !s.Running || delta <= 0 {
		return s, nil
	}

	var events []domain.Event
	for i := int64(0); i < delta; i++ {
		s.Elapsed++
		if s.Phase == domain.PhaseWork {
			s.Total++
		}

		if s.rewards.Observe(s.Elapsed) {
			s.Coins++
			events = append(events, domain.Event{
				Type:    domain.EventRewardGranted,
				Coins:   s.Coins,
				Elapsed: s.Elapsed,
				Display: domain.RewardDisplay,
			})
		}

		if s.Mode != domain.ModePomodoro {
			continue
		}

		switch s.Phase {
		case domain.PhaseWork:
			if s.Elapsed >= cfg.WorkSeconds() {
				s.Phase = domain.PhaseBreak
				s.Cycle = (s.Cycle + 1) % domain.CyclesPerRotation
				s.Elapsed = 0
				s.rewards.Reset()
				events = append(events, phaseEvent(s))
			}
		case domain.PhaseBreak:
			// Cycle was already advanced on the work edge.
			if s.Elapsed >= cfg.BreakSeconds(s.Cycle) {
				s.Phase = domain.PhaseWork
				s.Elapsed = 0
				s.rewards.Reset()
				events = append(events, phaseEvent(s))
			}
		}
	}
	return s, events
}

func phaseEvent(s State) domain.Event {
	return domain.Event{
		Type:  domain.EventPhaseChanged,
		Phase: s.Phase,
		Cycle: s.Cycle,
	}
}
