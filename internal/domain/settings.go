package domain

// ─── Settings ───────────────────────────────────────────────────────────────

// Theme selects the base palette.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ColorScheme selects the accent gradient.
type ColorScheme string

const (
	SchemeDefault ColorScheme = "default"
	SchemeForest  ColorScheme = "forest"
	SchemeSunset  ColorScheme = "sunset"
	SchemePurple  ColorScheme = "purple"
)

// Themes maps each theme to its display name.
var Themes = map[Theme]string{
	ThemeDark:  "Dark",
	ThemeLight: "Light",
}

// ColorSchemes maps each color scheme to its display name.
var ColorSchemes = map[ColorScheme]string{
	SchemeDefault: "Ocean",
	SchemeForest:  "Forest",
	SchemeSunset:  "Sunset",
	SchemePurple:  "Purple",
}

// Settings is user configuration. Pomodoro lengths are in minutes.
type Settings struct {
	Theme             Theme       `json:"theme"`
	ColorScheme       ColorScheme `json:"colorScheme"`
	SoundEnabled      bool        `json:"soundEnabled"`
	Volume            float64     `json:"volume"`
	PomodoroWork      int         `json:"pomodoroWork"`
	PomodoroBreak     int         `json:"pomodoroBreak"`
	PomodoroLongBreak int         `json:"pomodoroLongBreak"`
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		Theme:             ThemeDark,
		ColorScheme:       SchemeDefault,
		SoundEnabled:      true,
		Volume:            0.5,
		PomodoroWork:      25,
		PomodoroBreak:     5,
		PomodoroLongBreak: 15,
	}
}

// Validate checks enum membership and ranges.
func (s Settings) Validate() error {
	if _, ok := Themes[s.Theme]; !ok {
		return ErrInvalidSettings
	}
	if _, ok := ColorSchemes[s.ColorScheme]; !ok {
		return ErrInvalidSettings
	}
	if s.Volume < 0 || s.Volume > 1 {
		return ErrInvalidSettings
	}
	if s.PomodoroWork <= 0 || s.PomodoroBreak <= 0 || s.PomodoroLongBreak <= 0 {
		return ErrInvalidSettings
	}
	return nil
}

// WorkSeconds returns the work phase length.
func (s Settings) WorkSeconds() int64 { return int64(s.PomodoroWork) * 60 }

// BreakSeconds returns the break length following the given cycle index.
// The fourth cycle (index 3) earns the long break.
func (s Settings) BreakSeconds(cycle int) int64 {
	if cycle == CyclesPerRotation-1 {
		return int64(s.PomodoroLongBreak) * 60
	}
	return int64(s.PomodoroBreak) * 60
}
