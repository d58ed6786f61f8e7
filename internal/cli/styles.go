package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	OKStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	FailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	// levelColors backs heatmap bands 0 (empty) to 5.
	levelColors = [...]lipgloss.Color{"236", "52", "94", "100", "28", "46"}
)

// LevelStyle colours a heatmap cell of the given band.
func LevelStyle(level int) lipgloss.Style {
	if level < 0 || level >= len(levelColors) {
		level = 0
	}
	return lipgloss.NewStyle().Background(levelColors[level]).Foreground(lipgloss.Color("231"))
}

// EfficiencyStyle colours an efficiency score by its heatmap band.
func EfficiencyStyle(eff float64) lipgloss.Style {
	switch {
	case eff >= 8.5:
		return lipgloss.NewStyle().Foreground(levelColors[5]).Bold(true)
	case eff >= 7:
		return lipgloss.NewStyle().Foreground(levelColors[4])
	case eff >= 5:
		return lipgloss.NewStyle().Foreground(levelColors[3])
	case eff >= 3:
		return lipgloss.NewStyle().Foreground(levelColors[2])
	default:
		return lipgloss.NewStyle().Foreground(levelColors[1])
	}
}

// FormatEfficiency renders a score with one decimal in its band colour.
func FormatEfficiency(eff float64) string {
	return EfficiencyStyle(eff).Render(fmt.Sprintf("%.1f", eff))
}

// Check renders a doctor-style status line.
func Check(ok bool, label string) string {
	if ok {
		return OKStyle.Render("✓") + " " + label
	}
	return FailStyle.Render("❌") + " " + label
}
