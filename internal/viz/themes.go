package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/parallaxfield/internal/field"
)

// Theme defines color scheme for the live view
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	// Backdrop is the page color the star layer is composited over.
	Backdrop field.Color
}

// Available themes
var (
	ThemeNight = Theme{
		Name:     "night",
		Primary:  lipgloss.Color("#38bdf8"), // Sky
		Accent:   lipgloss.Color("#a855f7"), // Violet
		Text:     lipgloss.Color("#e2e8f0"),
		Muted:    lipgloss.Color("#64748b"),
		Success:  lipgloss.Color("#22c55e"),
		Warning:  lipgloss.Color("#f59e0b"),
		Backdrop: field.Color{R: 2, G: 6, B: 23, A: 1},
	}

	ThemeDusk = Theme{
		Name:     "dusk",
		Primary:  lipgloss.Color("#f472b6"),
		Accent:   lipgloss.Color("#fbbf24"),
		Text:     lipgloss.Color("#fdf2f8"),
		Muted:    lipgloss.Color("#9d7aa0"),
		Success:  lipgloss.Color("#5fd068"),
		Warning:  lipgloss.Color("#ffc048"),
		Backdrop: field.Color{R: 45, G: 27, B: 46, A: 1},
	}

	ThemeAurora = Theme{
		Name:     "aurora",
		Primary:  lipgloss.Color("#06b6d4"), // Teal
		Accent:   lipgloss.Color("#34d399"),
		Text:     lipgloss.Color("#ecfeff"),
		Muted:    lipgloss.Color("#4b8b8f"),
		Success:  lipgloss.Color("#00ff88"),
		Warning:  lipgloss.Color("#ffcc00"),
		Backdrop: field.Color{R: 0, G: 26, B: 31, A: 1},
	}

	ThemeMono = Theme{
		Name:     "mono",
		Primary:  lipgloss.Color("#ffffff"),
		Accent:   lipgloss.Color("#aaaaaa"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#777777"),
		Success:  lipgloss.Color("#dddddd"),
		Warning:  lipgloss.Color("#bbbbbb"),
		Backdrop: field.Color{R: 0, G: 0, B: 0, A: 1},
	}

	// All available themes
	Themes = []Theme{
		ThemeNight,
		ThemeDusk,
		ThemeAurora,
		ThemeMono,
	}
)

// GetTheme returns a theme by name, falling back to night.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNight
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
