package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tutu-network/focus/internal/daemon"
)

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "l", 20, "Show the most recent N sessions (0 for all)")
	rootCmd.AddCommand(sessionsCmd)
}

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"ls"},
	Short:   "List recorded sessions",
	Args:    cobra.NoArgs,
	RunE:    runSessions,
}

func runSessions(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	sessions := d.Controller.Sessions()
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions yet. Run 'focus start' to begin.")
		return nil
	}
	if sessionsLimit > 0 && len(sessions) > sessionsLimit {
		sessions = sessions[len(sessions)-sessionsLimit:]
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDURATION\tCOINS\tMODE\tNOTES")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			s.Date.Local().Format("2006-01-02 15:04"),
			formatDuration(s.Duration),
			s.Coins,
			s.Mode,
			s.Notes,
		)
	}
	return w.Flush()
}
