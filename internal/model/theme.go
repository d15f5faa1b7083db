package model

// ThemeMode is the persisted display theme setting.
type ThemeMode string

const (
	// ThemeSystem follows the device theme.
	ThemeSystem ThemeMode = "system"
	// ThemeLight forces the light theme.
	ThemeLight ThemeMode = "light"
	// ThemeDark forces the dark theme.
	ThemeDark ThemeMode = "dark"
	// ThemePink is an accent theme.
	ThemePink ThemeMode = "pink"
	// ThemeBlue is an accent theme.
	ThemeBlue ThemeMode = "blue"
)

// IsValid reports whether the theme mode is a known value.
func (m ThemeMode) IsValid() bool {
	switch m {
	case ThemeSystem, ThemeLight, ThemeDark, ThemePink, ThemeBlue:
		return true
	default:
		return false
	}
}
