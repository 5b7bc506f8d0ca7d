// Package cli implements the focus command-line interface using Cobra.
// Each subcommand opens the local store, performs one operation through
// the productivity controller, and exits; `serve` keeps it open.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "focus",
	Short: "focus: a local focus timer with rewards",
	Long: `focus times study and work sessions, rewards every ten minutes of
focus with a coin, tracks daily streaks and goals, and unlocks achievements.
Everything stays on this machine in a single SQLite file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
