package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the dashboard colour scheme.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
	// Fan is the blade colour of the 2D animation; Hub its centre disc.
	Fan lipgloss.Color
	Hub lipgloss.Color
}

var (
	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Border:    lipgloss.Color("#1f4f77"),
		Fan:       lipgloss.Color("#3b82f6"),
		Hub:       lipgloss.Color("#e0f0ff"),
	}

	ThemeMeadow = Theme{
		Name:      "meadow",
		Primary:   lipgloss.Color("#5fd068"),
		Secondary: lipgloss.Color("#a3e635"),
		Accent:    lipgloss.Color("#facc15"),
		Text:      lipgloss.Color("#f0fff0"),
		Muted:     lipgloss.Color("#5b7b5b"),
		Border:    lipgloss.Color("#2f5f3a"),
		Fan:       lipgloss.Color("#38bdf8"),
		Hub:       lipgloss.Color("#f0fff0"),
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Primary:   lipgloss.Color("#ff6b6b"),
		Secondary: lipgloss.Color("#feca57"),
		Accent:    lipgloss.Color("#ff9ff3"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Border:    lipgloss.Color("#5a3b5c"),
		Fan:       lipgloss.Color("#6c8cff"),
		Hub:       lipgloss.Color("#fff5f5"),
	}

	ThemeMono = Theme{
		Name:      "mono",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Border:    lipgloss.Color("#555555"),
		Fan:       lipgloss.Color("#0088ff"),
		Hub:       lipgloss.Color("#ffffff"),
	}

	Themes = []Theme{ThemeOcean, ThemeMeadow, ThemeSunset, ThemeMono}
)

// GetTheme returns the named theme, falling back to ocean.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme cycles through Themes in order.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// Canvas inks. Blade inks 1..3 follow BladeColors.
const (
	InkAxis = iota
	InkBlade1
	InkBlade2
	InkBlade3
	InkFan
	InkHub
)

// Inks maps canvas inks to styles. The third blade colour is black, so on a
// terminal it is drawn in the theme's text colour instead.
func (t Theme) Inks() []lipgloss.Style {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return []lipgloss.Style{
		InkAxis:   fg(t.Muted),
		InkBlade1: fg(lipgloss.Color(BladeColors[0])),
		InkBlade2: fg(lipgloss.Color("#6b4bff")),
		InkBlade3: fg(t.Text),
		InkFan:    fg(t.Fan),
		InkHub:    fg(t.Hub),
	}
}
