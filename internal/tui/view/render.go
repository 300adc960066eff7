package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sbwt/internal/tui/model"
)

// minLogHeight is the smallest log area worth drawing.
const minLogHeight = 3

// Render draws the whole session screen.
func Render(m *model.Model) string {
	if m.Quitting {
		return "Stopping " + m.Session.Identifier + "...\n"
	}

	var b strings.Builder
	b.WriteString(renderHeader(m))
	b.WriteString("\n")
	b.WriteString(renderSession(m))
	b.WriteString("\n")
	b.WriteString(logTitleStyle.Render("Activity"))
	b.WriteString("\n")
	b.WriteString(m.LogViewport.View())
	b.WriteString("\n")
	b.WriteString(renderStatusBar(m))
	b.WriteString("\n")
	b.WriteString(renderHelp(m))
	return b.String()
}

func renderHeader(m *model.Model) string {
	state := m.Spinner.View() + " running"
	if m.Session.SkipService {
		state = IconWarning + " files only, supabase not started"
	}
	return headerStyle.Render(fmt.Sprintf("sbwt %s  %s", m.Session.Identifier, state))
}

func renderSession(m *model.Model) string {
	s := m.Session
	var rows []string
	if s.Repository != "" {
		rows = append(rows, row("Repository", s.Repository))
	}
	rows = append(rows,
		row("Worktree", s.Name),
		row("Path", s.Path),
		row("Port block", fmt.Sprintf("%d", s.PortBase)),
	)
	if s.APIURL != "" {
		rows = append(rows, row("API", IconLink+" "+s.APIURL))
	}
	for _, p := range s.Ports {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(p.Key),
			portOldStyle.Render(fmt.Sprintf("%d", p.Template)),
			" → ",
			portNewStyle.Render(fmt.Sprintf("%d", p.Allocated)),
		))
	}
	if len(s.ModifiedFiles) > 0 {
		rows = append(rows, row("Env files", fmt.Sprintf("%d rewritten", len(s.ModifiedFiles))))
	}

	style := panelStyle
	if m.Width > 4 {
		style = style.Width(m.Width - 2)
	}
	return style.Render(strings.Join(rows, "\n"))
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func renderStatusBar(m *model.Model) string {
	if m.StatusBarMessage == "" {
		return ""
	}
	style, ok := statusStyles[int(m.StatusBarMessageType)]
	if !ok {
		style = statusStyles[0]
	}
	return style.Render(m.StatusBarMessage)
}

func renderHelp(m *model.Model) string {
	var parts []string
	for _, b := range []struct{ key, desc string }{
		{m.Keys.Quit.Help().Key, m.Keys.Quit.Help().Desc},
		{m.Keys.CopyURL.Help().Key, m.Keys.CopyURL.Help().Desc},
		{m.Keys.CopyLogs.Help().Key, m.Keys.CopyLogs.Help().Desc},
		{m.Keys.Up.Help().Key, m.Keys.Up.Help().Desc},
	} {
		parts = append(parts, b.key+" "+b.desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

// SessionPanelHeight returns how many lines the non-log part of the screen
// takes, so the controller can size the log viewport.
func SessionPanelHeight(m *model.Model) int {
	return lipgloss.Height(renderHeader(m)) + lipgloss.Height(renderSession(m)) + 4
}

// LogViewportHeight is the log area height for the current window.
func LogViewportHeight(m *model.Model) int {
	h := m.Height - SessionPanelHeight(m)
	if h < minLogHeight {
		return minLogHeight
	}
	return h
}

// TruncateLines cuts each line to width display cells.
func TruncateLines(lines []string, width int) string {
	if width <= 0 {
		return strings.Join(lines, "\n")
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if runewidth.StringWidth(line) > width {
			line = runewidth.Truncate(line, width, "…")
		}
		out[i] = line
	}
	return strings.Join(out, "\n")
}
