package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Title    lipgloss.Style
	Heading  lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Tile     lipgloss.Style
	Panel    lipgloss.Style
	Help     lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Heading:  lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).MarginBottom(1),
		Label:    lipgloss.NewStyle().Foreground(t.Muted).Width(24),
		Value:    lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(t.Muted),
		Tile: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1).
			Width(18),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
		Help:   lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Status: lipgloss.NewStyle().Foreground(t.Secondary),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4757")).Bold(true),
	}
}

// SliderBar draws the position of v within [lo, hi].
func SliderBar(v, lo, hi float64, width int) string {
	if width <= 0 {
		return ""
	}
	frac := 0.0
	if hi > lo {
		frac = (v - lo) / (hi - lo)
	}
	frac = max(0, min(1, frac))
	filled := int(frac*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// GradientText shades text from one hex colour to another.
func GradientText(text string, from, to lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	sr, sg, sb := parseHex(string(from))
	er, eg, eb := parseHex(string(to))
	var b strings.Builder
	for i, c := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		col := fmt.Sprintf("#%02x%02x%02x",
			lerp(sr, er, t), lerp(sg, eg, t), lerp(sb, eb, t))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(col)).Bold(true).Render(string(c)))
	}
	return b.String()
}

func Separator(width int, s lipgloss.Style) string {
	if width < 8 {
		return s.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	return s.Render(strings.Repeat("─", mid-2) + " ◆ " + strings.Repeat("─", width-mid-1))
}

func parseHex(hex string) (r, g, b int) {
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 255, 255, 255
	}
	return r, g, b
}

func lerp(a, b int, t float64) int {
	return int(float64(a) + t*float64(b-a))
}
