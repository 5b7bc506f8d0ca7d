package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tutu-network/focus/internal/app/productivity"
	"github.com/tutu-network/focus/internal/daemon"
	"github.com/tutu-network/focus/internal/domain"
)

func init() {
	startCmd.Flags().StringVarP(&startMode, "mode", "m", "focus", "Timer mode: focus or pomodoro")
	startCmd.Flags().StringVarP(&startNotes, "notes", "n", "", "Notes to attach to the session")
	startCmd.Flags().DurationVar(&startFor, "for", 0, "Stop automatically after this long (e.g. 50m)")
	rootCmd.AddCommand(startCmd)
}

var (
	startMode  string
	startNotes string
	startFor   time.Duration
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run a session in the foreground until Ctrl-C",
	Long: `Start a focus or pomodoro session in this terminal. Press Ctrl-C to
stop; the session is saved with the time and coins it earned.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	mode, err := domain.ParseMode(startMode)
	if err != nil {
		return err
	}

	d, err := daemon.New()
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer d.Close()

	if err := d.Controller.SwitchMode(mode); err != nil {
		return err
	}
	d.Controller.SetNotes(startNotes)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, unsubscribe := d.Events.Subscribe()
	defer unsubscribe()

	if err := d.Runner.Start(ctx); err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "Started %s session. Press Ctrl-C to stop.\n", mode)
	runForeground(ctx, out, d.Controller, events, startFor)
	clearLine(out)

	res, err := d.Runner.Stop()
	if errors.Is(err, domain.ErrInvalidSession) {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing recorded.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	printCommit(cmd.OutOrStdout(), res)
	return nil
}

// runForeground redraws the timer every second and prints notifications
// until ctx ends or limit elapses.
func runForeground(ctx context.Context, out io.Writer, ctl *productivity.Controller, events <-chan domain.Event, limit time.Duration) {
	refresh := time.NewTicker(time.Second)
	defer refresh.Stop()

	var deadline <-chan time.Time
	if limit > 0 {
		t := time.NewTimer(limit)
		defer t.Stop()
		deadline = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-refresh.C:
			clearLine(out)
			fmt.Fprint(out, timerLine(ctl.Timer()))
		case e := <-events:
			if msg := notification(e, ctl.Settings()); msg != "" {
				clearLine(out)
				fmt.Fprintln(out, msg)
			}
		}
	}
}

// notification renders an engine event for the terminal.
func notification(e domain.Event, s domain.Settings) string {
	bell := ""
	if s.SoundEnabled && s.Volume > 0 {
		bell = "\a"
	}
	switch e.Type {
	case domain.EventRewardGranted:
		return fmt.Sprintf("%s+1 coin! (%s this session)", bell, plural(e.Coins, "coin"))
	case domain.EventPhaseChanged:
		if e.Phase == domain.PhaseBreak {
			return fmt.Sprintf("%sBreak time: %s", bell, formatClock(s.BreakSeconds(e.Cycle)))
		}
		return fmt.Sprintf("%sBack to work: %s", bell, formatClock(s.WorkSeconds()))
	}
	return ""
}

// printCommit summarises a saved session and any unlocks.
func printCommit(out io.Writer, res *productivity.Commit) {
	fmt.Fprintf(out, "Saved %s %s session: %s\n",
		formatDuration(res.Session.Duration), res.Session.Mode, plural(res.Session.Coins, "coin"))
	fmt.Fprintf(out, "Streak: %s (best %d)\n",
		plural(int64(res.Stats.CurrentStreak), "day"), res.Stats.LongestStreak)
	for _, a := range res.Unlocked {
		fmt.Fprintf(out, "Achievement unlocked: %s %s (%s)\n", a.Icon, a.Title, a.Description)
	}
}
