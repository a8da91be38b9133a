package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorRed    = lipgloss.Color("#FF5555")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorOrange = lipgloss.Color("#FFB86C")
	colorWhite  = lipgloss.Color("#F8F8F2")
	colorGray   = lipgloss.Color("#6272A4")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle  = lipgloss.NewStyle().Foreground(colorGray)
	valueStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	warnStyle   = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	critStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	orangeStyle = lipgloss.NewStyle().Foreground(colorOrange).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(colorGray)
)

func levelStyle(level string) lipgloss.Style {
	switch level {
	case "critical", "high":
		return critStyle
	case "medium":
		return orangeStyle
	case "low":
		return warnStyle
	default:
		return okStyle
	}
}

func agentStyle(status string) lipgloss.Style {
	switch status {
	case "alert":
		return critStyle
	case "processing":
		return warnStyle
	case "paused", "standby":
		return labelStyle
	default:
		return okStyle
	}
}

func pctStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 85:
		return critStyle
	case pct >= 70:
		return warnStyle
	default:
		return okStyle
	}
}
