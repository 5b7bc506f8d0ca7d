// Package store is the persistence gateway between the engine and a
// key-value blob store. Each kind of state lives under its own key as a
// JSON document. Absent or malformed documents load as documented
// defaults; they are never fatal.
package store

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/tutu-network/focus/internal/domain"
)

// Storage keys, one JSON document each.
const (
	KeySessions     = "productivity_sessions"
	KeyStats        = "productivity_stats"
	KeyGoals        = "productivity_goals"
	KeyAchievements = "productivity_achievements"
	KeySettings     = "productivity_settings"
)

// KV is the blob store the gateway writes through.
// Implemented by infra/sqlite.DB and MemoryKV.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	// Update reads keys, passes their current values to fn (absent keys
	// are missing from the map) and writes what fn returns, atomically
	// with respect to every other writer. Nothing is written when fn fails.
	Update(keys []string, fn func(current map[string][]byte) (map[string][]byte, error)) error
}

// Snapshot is everything the engine persists.
type Snapshot struct {
	Sessions     []domain.Session
	Stats        domain.Stats
	Goals        domain.Goals
	Achievements []domain.AchievementState
	Settings     domain.Settings
}

// Gateway loads and saves engine state through a KV.
type Gateway struct {
	kv KV
}

// New creates a gateway over kv.
func New(kv KV) *Gateway {
	return &Gateway{kv: kv}
}

// Load reads every kind of state, substituting defaults where needed.
func (g *Gateway) Load() Snapshot {
	return Snapshot{
		Sessions:     g.Sessions(),
		Stats:        g.Stats(),
		Goals:        g.Goals(),
		Achievements: g.Achievements(),
		Settings:     g.Settings(),
	}
}

// Sessions returns the ledger, or an empty ledger.
func (g *Gateway) Sessions() []domain.Session {
	var v []domain.Session
	if !g.load(KeySessions, &v) || v == nil {
		return []domain.Session{}
	}
	return v
}

// Stats returns the aggregate, or zero stats.
func (g *Gateway) Stats() domain.Stats {
	var v domain.Stats
	if !g.load(KeyStats, &v) {
		return domain.Stats{}
	}
	return normalizeStats(v)
}

// normalizeStats restores longestStreak >= currentStreak on hand-edited data.
func normalizeStats(st domain.Stats) domain.Stats {
	st.LongestStreak = max(st.LongestStreak, st.CurrentStreak)
	return st
}

// Goals returns the goals, or DefaultGoals.
func (g *Gateway) Goals() domain.Goals {
	v := domain.DefaultGoals()
	if !g.load(KeyGoals, &v) || v.Validate() != nil {
		return domain.DefaultGoals()
	}
	return v
}

// Achievements returns the saved unlock state, or none.
func (g *Gateway) Achievements() []domain.AchievementState {
	var v []domain.AchievementState
	if !g.load(KeyAchievements, &v) || v == nil {
		return []domain.AchievementState{}
	}
	return v
}

// Settings returns the settings, or DefaultSettings. Documents missing
// fields keep the defaults for those fields.
func (g *Gateway) Settings() domain.Settings {
	v := domain.DefaultSettings()
	if !g.load(KeySettings, &v) {
		return domain.DefaultSettings()
	}
	if err := v.Validate(); err != nil {
		log.Printf("[store] %s: %v, using defaults", KeySettings, err)
		return domain.DefaultSettings()
	}
	return v
}

// Fold derives the stats that follow prior once a session is appended.
type Fold func(prior domain.Stats) (domain.Stats, error)

// CommitSession appends session to the stored ledger and replaces the
// stored stats with fold(stored stats), in one transaction. It works from
// what is stored rather than the caller's copy, so sessions committed by
// another process in the meantime are kept. Returns the ledger and stats
// as written. A fold error is returned as is and nothing is written.
func (g *Gateway) CommitSession(session domain.Session, fold Fold) ([]domain.Session, domain.Stats, error) {
	ledger, stats, err := g.updateLedger(func(ledger []domain.Session, prior domain.Stats) ([]domain.Session, domain.Stats, error) {
		next, err := fold(prior)
		if err != nil {
			return nil, prior, err
		}
		return append(ledger, session), next, nil
	})
	if err != nil {
		return nil, domain.Stats{}, err
	}
	return ledger, stats, nil
}

// RebuildStats replaces the stored stats with rebuild(stored stats, stored
// ledger) in one transaction and returns the ledger and the new stats.
func (g *Gateway) RebuildStats(rebuild func(domain.Stats, []domain.Session) domain.Stats) ([]domain.Session, domain.Stats, error) {
	return g.updateLedger(func(ledger []domain.Session, prior domain.Stats) ([]domain.Session, domain.Stats, error) {
		return ledger, rebuild(prior, ledger), nil
	})
}

type ledgerFunc func(ledger []domain.Session, prior domain.Stats) ([]domain.Session, domain.Stats, error)

// updateLedger runs fn over the stored ledger and stats and writes back
// what it returns. Errors from fn come back unwrapped; storage errors are
// wrapped.
func (g *Gateway) updateLedger(fn ledgerFunc) ([]domain.Session, domain.Stats, error) {
	var (
		ledger []domain.Session
		stats  domain.Stats
		fnErr  error
	)
	err := g.kv.Update([]string{KeySessions, KeyStats}, func(current map[string][]byte) (map[string][]byte, error) {
		stored := []domain.Session{}
		if data, ok := current[KeySessions]; ok && !decode(KeySessions, data, &stored) {
			stored = []domain.Session{}
		}
		var prior domain.Stats
		if data, ok := current[KeyStats]; ok && !decode(KeyStats, data, &prior) {
			prior = domain.Stats{}
		}

		var err error
		ledger, stats, err = fn(stored, normalizeStats(prior))
		if err != nil {
			fnErr = err
			return nil, err
		}

		sessions, err := json.Marshal(ledger)
		if err != nil {
			return nil, fmt.Errorf("encode sessions: %w", err)
		}
		st, err := json.Marshal(stats)
		if err != nil {
			return nil, fmt.Errorf("encode stats: %w", err)
		}
		return map[string][]byte{KeySessions: sessions, KeyStats: st}, nil
	})
	if fnErr != nil {
		return nil, domain.Stats{}, fnErr
	}
	if err != nil {
		return nil, domain.Stats{}, fmt.Errorf("commit ledger: %w", err)
	}
	if ledger == nil {
		ledger = []domain.Session{}
	}
	return ledger, stats, nil
}

// SaveGoals persists goals.
func (g *Gateway) SaveGoals(goals domain.Goals) error {
	return g.save(KeyGoals, goals)
}

// SaveSettings persists settings.
func (g *Gateway) SaveSettings(settings domain.Settings) error {
	return g.save(KeySettings, settings)
}

// SaveAchievements persists achievement unlock state.
func (g *Gateway) SaveAchievements(states []domain.AchievementState) error {
	return g.save(KeyAchievements, states)
}

func (g *Gateway) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := g.kv.Set(key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// load decodes key into v. Returns false when the key is absent, the
// store is unavailable, or the document is malformed.
func (g *Gateway) load(key string, v any) bool {
	data, ok, err := g.kv.Get(key)
	if err != nil {
		log.Printf("[store] %s: read failed: %v, using defaults", key, err)
		return false
	}
	if !ok {
		return false
	}
	return decode(key, data, v)
}

func decode(key string, data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("[store] %s: malformed document: %v, using defaults", key, err)
		return false
	}
	return true
}
