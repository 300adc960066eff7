package model

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"sbwt/pkg/logging"
)

// InitializeModel builds the session model.
func InitializeModel(info SessionInfo, debugMode bool, logChannel <-chan logging.LogEntry) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{
		Session:     info,
		DebugMode:   debugMode,
		Keys:        DefaultKeyMap(),
		Spinner:     s,
		LogViewport: viewport.New(0, 0),
		LogChannel:  logChannel,
	}
}

// Init starts the spinner and the log listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, ListenForLogEntriesCmd(m.LogChannel))
}
