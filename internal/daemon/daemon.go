package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tutu-network/focus/internal/api"
	"github.com/tutu-network/focus/internal/app/events"
	"github.com/tutu-network/focus/internal/app/productivity"
	"github.com/tutu-network/focus/internal/app/store"
	"github.com/tutu-network/focus/internal/domain"
	"github.com/tutu-network/focus/internal/health"
	"github.com/tutu-network/focus/internal/infra/sqlite"
)

// Daemon is the focus runtime. It wires storage, the engine and the API.
type Daemon struct {
	Config     Config
	DB         *sqlite.DB
	Store      *store.Gateway
	Events     *events.Hub
	Controller *productivity.Controller
	Runner     *productivity.Runner
	Server     *api.Server
	Health     *health.Checker

	logCloser io.Closer
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon from the config file.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	logCloser, err := ConfigureLogging(cfg.Logging)
	if err != nil {
		return nil, err
	}

	// Open SQLite
	db, err := sqlite.Open(cfg.Storage.Dir)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	gw := store.New(db)
	hub := events.NewHub()
	ctl := productivity.New(gw, productivity.WithPublisher(hub))
	runner := productivity.NewRunner(ctl, cfg.TickInterval(), productivity.WallTicker)

	checker := health.NewChecker(db, cfg.Storage.Dir, ctl)

	srv := api.NewServer(runner, hub)
	srv.SetCORSOrigins(cfg.API.CORSOrigins)
	srv.SetHealth(checker)

	// Enable Prometheus /metrics if configured
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:     cfg,
		DB:         db,
		Store:      gw,
		Events:     hub,
		Controller: ctl,
		Runner:     runner,
		Server:     srv,
		Health:     checker,
		logCloser:  logCloser,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown. A session still
// running at shutdown is committed first.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.Server.SetBaseContext(ctx)

	go d.logEvents(ctx)
	go d.Health.Run(ctx)

	addr := d.Config.Addr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           d.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		// No WriteTimeout: /api/events streams for as long as the client stays.
		// Request contexts derive from ctx so shutdown ends those streams.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		d.CommitRunning()
		cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("focus serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}
	log.Printf("[daemon] listening on %s (data: %s)", addr, d.Config.Storage.Dir)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// CommitRunning stops and commits an in-progress session, if any.
func (d *Daemon) CommitRunning() {
	t := d.Controller.Timer()
	if t.Total == 0 {
		return
	}
	res, err := d.Runner.Stop()
	switch {
	case err == nil:
		log.Printf("[daemon] committed in-progress session %s (%ds)", res.Session.ID, res.Session.Duration)
	case errors.Is(err, domain.ErrInvalidSession):
	default:
		log.Printf("[daemon] commit in-progress session: %v", err)
	}
}

// logEvents writes commits and unlocks to the log until ctx ends.
func (d *Daemon) logEvents(ctx context.Context) {
	ch, unsubscribe := d.Events.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			switch e.Type {
			case domain.EventSessionCommitted:
				if e.Session != nil {
					log.Printf("[daemon] session %s committed: %ds, %d coins, %s",
						e.Session.ID, e.Session.Duration, e.Session.Coins, e.Session.Mode)
				}
			case domain.EventAchievementsUnlocked:
				for _, a := range e.Achievements {
					log.Printf("[daemon] achievement unlocked: %s (%s)", a.Title, a.ID)
				}
			}
		}
	}
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.logCloser != nil {
		_ = d.logCloser.Close()
	}
}
