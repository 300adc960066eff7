package controller

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"sbwt/internal/tui/model"
	"sbwt/pkg/logging"
)

// clipboardWriteAll is replaced in tests.
var clipboardWriteAll = clipboard.WriteAll

func handleKeyMsgGlobal(m *model.Model, keyMsg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, m.Keys.Quit):
		m.Quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.Keys.CopyURL):
		if m.Session.APIURL == "" {
			return m, m.SetStatusMessage("No API port in this template", model.StatusBarWarning, 3*time.Second)
		}
		if err := clipboardWriteAll(m.Session.APIURL); err != nil {
			logging.Error(controllerSubsystem, err, "Failed to copy API URL")
			return m, m.SetStatusMessage("Copy API URL failed", model.StatusBarError, 3*time.Second)
		}
		return m, m.SetStatusMessage("API URL copied", model.StatusBarSuccess, 3*time.Second)

	case key.Matches(keyMsg, m.Keys.CopyLogs):
		if err := clipboardWriteAll(strings.Join(m.ActivityLog, "\n")); err != nil {
			logging.Error(controllerSubsystem, err, "Failed to copy logs")
			return m, m.SetStatusMessage("Copy logs failed", model.StatusBarError, 3*time.Second)
		}
		return m, m.SetStatusMessage("Logs copied to clipboard", model.StatusBarSuccess, 3*time.Second)

	case key.Matches(keyMsg, m.Keys.Up), key.Matches(keyMsg, m.Keys.Down):
		var cmd tea.Cmd
		m.LogViewport, cmd = m.LogViewport.Update(keyMsg)
		return m, cmd
	}
	return m, nil
}
