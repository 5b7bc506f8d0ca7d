package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tutu-network/focus/internal/daemon"
	"github.com/tutu-network/focus/internal/domain"
)

func init() {
	statsCmd.Flags().StringVarP(&statsPeriod, "period", "p", "", "Summarise one period: today, week or all")
	statsCmd.Flags().IntVar(&statsDays, "days", 7, "Days in the daily breakdown (0 hides it)")
	statsCmd.Flags().BoolVar(&statsVerify, "verify", false, "Check the stored totals against the session ledger")
	statsCmd.Flags().BoolVar(&statsRepair, "repair", false, "Recompute stored totals from the session ledger")
	rootCmd.AddCommand(statsCmd)
}

var (
	statsPeriod string
	statsDays   int
	statsVerify bool
	statsRepair bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals, streaks and recent activity",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	ctl := d.Controller

	switch {
	case statsRepair:
		st, err := ctl.Repair()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Totals rebuilt from %d sessions.\n", st.TotalSessions)
		return nil
	case statsVerify:
		if ctl.Verify() {
			fmt.Fprintln(out, "ok: stored totals match the session ledger")
			return nil
		}
		return fmt.Errorf("stored totals disagree with the session ledger; run `focus stats --repair`")
	}

	if statsPeriod != "" {
		p, err := domain.ParsePeriod(statsPeriod)
		if err != nil {
			return err
		}
		printPeriod(out, ctl.PeriodStats(p))
		return nil
	}

	st := ctl.Stats()
	fmt.Fprintf(out, "Total focus    %s\n", formatDuration(st.TotalTime))
	fmt.Fprintf(out, "Coins          %d\n", st.TotalCoins)
	fmt.Fprintf(out, "Sessions       %d\n", st.TotalSessions)
	fmt.Fprintf(out, "Streak         %s (best %d)\n", plural(int64(st.CurrentStreak), "day"), st.LongestStreak)
	if st.LastSessionDate != nil {
		fmt.Fprintf(out, "Last session   %s\n", st.LastSessionDate.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(out)
	printPeriod(out, ctl.PeriodStats(domain.PeriodToday))
	printPeriod(out, ctl.PeriodStats(domain.PeriodWeek))

	if statsDays > 0 {
		fmt.Fprintln(out)
		printBreakdown(out, ctl.DailyBreakdown(statsDays))
	}
	return nil
}

func printPeriod(out io.Writer, ps domain.PeriodStats) {
	label := map[domain.Period]string{
		domain.PeriodToday: "Today",
		domain.PeriodWeek:  "This week",
		domain.PeriodAll:   "All time",
	}[ps.Period]
	fmt.Fprintf(out, "%-14s %s │ %s │ %s\n", label,
		formatDuration(ps.TotalTime), plural(ps.TotalCoins, "coin"), plural(int64(ps.TotalSessions), "session"))
}

// printBreakdown draws one row per day, scaled to the busiest day.
func printBreakdown(out io.Writer, days []domain.DayTotal) {
	var peak int64
	for _, d := range days {
		peak = max(peak, d.Time)
	}
	const width = 24
	for _, d := range days {
		n := 0
		if peak > 0 {
			n = int(d.Time * width / peak)
		}
		fmt.Fprintf(out, "%s %-*s %s\n", d.Date.Format("Mon 01/02"), width, strings.Repeat("#", n), formatDuration(d.Time))
	}
}
