package productivity

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/tutu-network/focus/internal/domain"
)

// TickSource produces wall-clock ticks. The returned stop func releases it.
type TickSource func(interval time.Duration) (<-chan time.Time, func())

// WallTicker is the production TickSource.
func WallTicker(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Runner feeds a Controller from a ticker while a session runs. Each run
// gets its own goroutine bound to the generation Start returned, so a
// goroutine that outlives its run only ever delivers stale ticks.
type Runner struct {
	ctl      *Controller
	interval time.Duration
	source   TickSource

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner creates a runner ticking every interval (normally 1s).
func NewRunner(ctl *Controller, interval time.Duration, source TickSource) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	if source == nil {
		source = WallTicker
	}
	return &Runner{ctl: ctl, interval: interval, source: source}
}

// Controller returns the driven controller.
func (r *Runner) Controller() *Controller { return r.ctl }

// Start begins or resumes the session and starts ticking. The loop ends
// when ctx is cancelled or the run is paused or stopped.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	gen, err := r.ctl.Start()
	if err != nil {
		return err
	}
	r.haltLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel, r.done = cancel, done
	go r.loop(loopCtx, gen, done)
	return nil
}

// Pause halts the ticker and suspends the session. Ticks already received
// are applied first.
func (r *Runner) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.haltLocked()
	return r.ctl.Pause()
}

// Stop halts the ticker and commits the session.
func (r *Runner) Stop() (*Commit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.haltLocked()
	return r.ctl.Stop()
}

// Running reports whether a tick loop is active. A loop that has exited
// on its own is not running.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

// haltLocked cancels the current loop and waits for it to exit.
func (r *Runner) haltLocked() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel, r.done = nil, nil
}

// loop converts wall-clock ticks into whole elapsed seconds. Ticks that
// arrive late (a suspended laptop, a busy scheduler) are coalesced into
// a single delta so no second is lost or counted twice.
func (r *Runner) loop(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	ticks, stop := r.source(r.interval)
	defer stop()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case now, ok := <-ticks:
			if !ok {
				return
			}
			if last.IsZero() {
				last = now.Add(-r.interval)
			}
			delta := int64(now.Sub(last) / time.Second)
			if delta <= 0 {
				continue
			}
			last = last.Add(time.Duration(delta) * time.Second)

			if err := r.ctl.Tick(gen, delta); err != nil {
				if !errors.Is(err, domain.ErrStaleTick) {
					log.Printf("[runner] tick: %v", err)
				}
				return
			}
		}
	}
}
