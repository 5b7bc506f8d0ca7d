package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"github.com/tutu-network/focus/internal/daemon"
)

func init() {
	goalsCmd.Flags().Int64Var(&goalsDaily, "daily", 0, "Daily goal in minutes (0 disables)")
	goalsCmd.Flags().Float64Var(&goalsWeekly, "weekly", 0, "Weekly goal in hours (0 disables)")
	rootCmd.AddCommand(goalsCmd)
}

var (
	goalsDaily  int64
	goalsWeekly float64
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Show or set daily and weekly goals",
	Long: `Show progress toward today's goal and the trailing seven days' goal.
Pass --daily and/or --weekly to change them.`,
	Example: "  focus goals --daily 90 --weekly 12.5",
	Args:    cobra.NoArgs,
	RunE:    runGoals,
}

func runGoals(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	flags := cmd.Flags()
	if flags.Changed("daily") || flags.Changed("weekly") {
		g := d.Controller.Goals()
		if flags.Changed("daily") {
			g.DailyGoal = goalsDaily * 60
		}
		if flags.Changed("weekly") {
			g.WeeklyGoal = int64(math.Round(goalsWeekly * 3600))
		}
		if err := d.Controller.UpdateGoals(g); err != nil {
			return err
		}
		fmt.Fprintln(out, "Goals updated.")
	}

	daily, weekly := d.Controller.GoalProgress()
	fmt.Fprintln(out, goalLine("today", daily))
	fmt.Fprintln(out, goalLine("week", weekly))
	return nil
}
