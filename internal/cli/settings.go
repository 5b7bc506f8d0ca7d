package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tutu-network/focus/internal/daemon"
	"github.com/tutu-network/focus/internal/domain"
)

func init() {
	f := settingsCmd.Flags()
	f.StringVar(&settingsTheme, "theme", "", "Theme: dark or light")
	f.StringVar(&settingsScheme, "color-scheme", "", "Color scheme: default, forest, sunset or purple")
	f.BoolVar(&settingsSound, "sound", true, "Play a bell on rewards and phase changes")
	f.Float64Var(&settingsVolume, "volume", 0, "Volume from 0 to 1")
	f.IntVar(&settingsWork, "work", 0, "Pomodoro work length in minutes")
	f.IntVar(&settingsBreak, "break", 0, "Pomodoro short break in minutes")
	f.IntVar(&settingsLongBreak, "long-break", 0, "Pomodoro long break in minutes")
	rootCmd.AddCommand(settingsCmd)
}

var (
	settingsTheme     string
	settingsScheme    string
	settingsSound     bool
	settingsVolume    float64
	settingsWork      int
	settingsBreak     int
	settingsLongBreak int
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Short:   "Show or change preferences",
	Example: "  focus settings --work 50 --break 10\n  focus settings --theme light --color-scheme forest",
	Args:    cobra.NoArgs,
	RunE:    runSettings,
}

func runSettings(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	s := d.Controller.Settings()
	flags := cmd.Flags()
	if flags.NFlag() > 0 {
		if flags.Changed("theme") {
			s.Theme = domain.Theme(settingsTheme)
		}
		if flags.Changed("color-scheme") {
			s.ColorScheme = domain.ColorScheme(settingsScheme)
		}
		if flags.Changed("sound") {
			s.SoundEnabled = settingsSound
		}
		if flags.Changed("volume") {
			s.Volume = settingsVolume
		}
		if flags.Changed("work") {
			s.PomodoroWork = settingsWork
		}
		if flags.Changed("break") {
			s.PomodoroBreak = settingsBreak
		}
		if flags.Changed("long-break") {
			s.PomodoroLongBreak = settingsLongBreak
		}
		if err := d.Controller.UpdateSettings(s); err != nil {
			return err
		}
		fmt.Fprintln(out, "Settings updated.")
	}

	fmt.Fprintf(out, "Theme          %s (%s)\n", s.Theme, domain.Themes[s.Theme])
	fmt.Fprintf(out, "Color scheme   %s (%s)\n", s.ColorScheme, domain.ColorSchemes[s.ColorScheme])
	fmt.Fprintf(out, "Sound          %t (volume %.0f%%)\n", s.SoundEnabled, s.Volume*100)
	fmt.Fprintf(out, "Pomodoro       %dm work, %dm break, %dm long break\n",
		s.PomodoroWork, s.PomodoroBreak, s.PomodoroLongBreak)
	return nil
}
