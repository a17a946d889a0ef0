package pubsite

import "strings"

// ThemeStorageKey is the browser storage key the layout script reads.
const ThemeStorageKey = "theme"

// Preference is a reader's persisted color-scheme choice.
type Preference string

const (
	PreferenceSystem Preference = "system"
	PreferenceDark   Preference = "dark"
	PreferenceLight  Preference = "light"
)

// ParsePreference maps a stored value to a Preference. Unknown or empty
// values follow the system setting.
func ParsePreference(s string) Preference {
	switch Preference(strings.ToLower(strings.TrimSpace(s))) {
	case PreferenceDark:
		return PreferenceDark
	case PreferenceLight:
		return PreferenceLight
	default:
		return PreferenceSystem
	}
}

// ThemeClass returns the class the root element should carry: "dark" or
// "light". An explicit preference wins over the system setting.
func ThemeClass(pref Preference, systemPrefersDark bool) string {
	switch pref {
	case PreferenceDark:
		return "dark"
	case PreferenceLight:
		return "light"
	}
	if systemPrefersDark {
		return "dark"
	}
	return "light"
}
