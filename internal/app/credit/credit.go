// Package credit implements the coin reward policy.
// One coin is earned for every full 10 minutes of elapsed session time.
// Coins are virtual; there is no balance to spend.
package credit

// CoinInterval is the number of elapsed seconds per coin.
const CoinInterval = 600

// Granted reports whether a coin is earned at exactly this elapsed second.
// A coin is earned when elapsed is a positive multiple of CoinInterval.
func Granted(elapsed int64) bool {
	return elapsed > 0 && elapsed%CoinInterval == 0
}

// Count returns how many coins a run of the given length earns.
func Count(elapsed int64) int64 {
	if elapsed <= 0 {
		return 0
	}
	return elapsed / CoinInterval
}

// Tracker guards against double grants when the same elapsed value is
// evaluated more than once. The zero value is ready to use.
type Tracker struct {
	last int64 // highest elapsed second already rewarded
}

// Observe returns true the first time a coin-granting elapsed value is seen.
// Elapsed values at or below the last grant never grant again.
func (t *Tracker) Observe(elapsed int64) bool {
	if !Granted(elapsed) || elapsed <= t.last {
		return false
	}
	t.last = elapsed
	return true
}

// Last returns the elapsed second of the most recent grant (0 if none).
func (t *Tracker) Last() int64 { return t.last }

// Reset forgets previous grants. Call when elapsed time restarts from 0.
func (t *Tracker) Reset() { t.last = 0 }
