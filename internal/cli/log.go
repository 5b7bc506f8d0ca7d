package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tutu-network/focus/internal/app/productivity"
	"github.com/tutu-network/focus/internal/daemon"
	"github.com/tutu-network/focus/internal/domain"
)

func init() {
	logCmd.Flags().StringVarP(&logMode, "mode", "m", "focus", "Session mode: focus or pomodoro")
	logCmd.Flags().StringVarP(&logNotes, "notes", "n", "", "Notes to attach to the session")
	logCmd.Flags().Int64Var(&logCoins, "coins", -1, "Coins earned (default: one per full 10 minutes)")
	rootCmd.AddCommand(logCmd)
}

var (
	logMode  string
	logNotes string
	logCoins int64
)

var logCmd = &cobra.Command{
	Use:   "log DURATION",
	Short: "Record a session timed elsewhere",
	Long: `Record a completed session. DURATION is a Go duration such as 45m or
1h30m, or a plain number of minutes.`,
	Example: "  focus log 50m --notes \"chapter 4\"\n  focus log 25 --mode pomodoro",
	Args:    cobra.ExactArgs(1),
	RunE:    runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	dur, err := parseDurationArg(args[0])
	if err != nil {
		return err
	}
	mode, err := domain.ParseMode(logMode)
	if err != nil {
		return err
	}

	entry := productivity.Entry{Duration: dur, Mode: mode, Notes: logNotes}
	if cmd.Flags().Changed("coins") {
		if logCoins < 0 {
			return fmt.Errorf("--coins must be non-negative")
		}
		coins := logCoins
		entry.Coins = &coins
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Controller.LogSession(entry)
	if err != nil {
		return err
	}
	printCommit(cmd.OutOrStdout(), res)
	return nil
}

// parseDurationArg accepts "45m", "1h30m" or bare minutes ("45").
func parseDurationArg(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return 0, domain.ErrInvalidSession
		}
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: use 45m, 1h30m or minutes", s)
	}
	if d < time.Second {
		return 0, domain.ErrInvalidSession
	}
	return d, nil
}
