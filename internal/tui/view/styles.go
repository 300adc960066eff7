package view

import "github.com/charmbracelet/lipgloss"

const (
	IconCheck   = "✔"
	IconCross   = "✘"
	IconWarning = "⚠"
	IconLink    = "🔗"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}).
			Background(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#303030"}).
			Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#A0A0A0"}).
			Width(12)

	valueStyle = lipgloss.NewStyle().Bold(true)

	portOldStyle = lipgloss.NewStyle().Faint(true)

	portNewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#007700", Dark: "#8AE234"})

	logTitleStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)

	helpStyle = lipgloss.NewStyle().Faint(true)

	statusBarBase = lipgloss.NewStyle().Padding(0, 1)

	statusStyles = map[int]lipgloss.Style{
		0: statusBarBase.Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}),
		1: statusBarBase.Foreground(lipgloss.AdaptiveColor{Light: "#007700", Dark: "#8AE234"}),
		2: statusBarBase.Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#EF2929"}),
		3: statusBarBase.Foreground(lipgloss.AdaptiveColor{Light: "#C4A000", Dark: "#FCE94F"}),
	}
)
