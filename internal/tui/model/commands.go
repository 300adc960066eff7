package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"sbwt/pkg/logging"
)

// ListenForLogEntriesCmd waits for the next log entry. The controller
// re-issues it after every NewLogEntryMsg.
func ListenForLogEntriesCmd(ch <-chan logging.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return LogChannelClosedMsg{}
		}
		return NewLogEntryMsg{Entry: entry}
	}
}
