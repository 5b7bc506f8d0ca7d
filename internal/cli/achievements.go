package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tutu-network/focus/internal/daemon"
)

func init() {
	rootCmd.AddCommand(achievementsCmd)
}

var achievementsCmd = &cobra.Command{
	Use:     "achievements",
	Aliases: []string{"ach"},
	Short:   "List achievements and when they were unlocked",
	Args:    cobra.NoArgs,
	RunE:    runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	achs := d.Controller.Achievements()
	unlocked := 0

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, a := range achs {
		status := "locked"
		if a.Unlocked {
			unlocked++
			status = "unlocked"
			if a.UnlockedDate != nil {
				status += " " + a.UnlockedDate.Local().Format("2006-01-02")
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Icon, a.Title, a.Description, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d unlocked\n", unlocked, len(achs))
	return nil
}
