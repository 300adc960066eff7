package controller

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"sbwt/internal/tui/model"
	"sbwt/internal/tui/view"
	"sbwt/pkg/logging"
)

const controllerSubsystem = "TUI"

// Update is the session's update loop.
func Update(msg tea.Msg, m *model.Model) (*model.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.LogViewport.Width = msg.Width
		m.LogViewport.Height = view.LogViewportHeight(m)
		m.ActivityLogDirty = true

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = handleKeyMsgGlobal(m, msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		cmds = append(cmds, cmd)

	case model.NewLogEntryMsg:
		m = handleNewLogEntry(m, msg)
		cmds = append(cmds, model.ListenForLogEntriesCmd(m.LogChannel))

	case model.LogChannelClosedMsg:
		m.LogChannel = nil

	case model.ClearStatusBarMsg:
		m.StatusBarMessage = ""
	}

	if m.ActivityLogDirty {
		atBottom := m.LogViewport.AtBottom()
		m.LogViewport.SetContent(view.TruncateLines(m.ActivityLog, m.LogViewport.Width))
		if atBottom || m.LogViewport.TotalLineCount() <= m.LogViewport.Height {
			m.LogViewport.GotoBottom()
		}
		m.ActivityLogDirty = false
	}

	return m, tea.Batch(cmds...)
}

func handleNewLogEntry(m *model.Model, msg model.NewLogEntryMsg) *model.Model {
	entry := msg.Entry
	if entry.Level < logging.LevelInfo && !m.DebugMode {
		return m
	}
	logLine := fmt.Sprintf("%s [%s] [%s] %s",
		entry.Timestamp.Format("15:04:05.000"),
		entry.Level.String(),
		entry.Subsystem,
		entry.Message)
	if entry.Err != nil {
		logLine = fmt.Sprintf("%s -- Error: %v", logLine, entry.Err)
	}
	model.AddRawLineToActivityLog(m, logLine)
	return m
}
