package controller

import (
	tea "github.com/charmbracelet/bubbletea"

	"sbwt/internal/tui/model"
	"sbwt/pkg/logging"
)

// NewProgram creates the Bubble Tea program for a running session.
func NewProgram(info model.SessionInfo, debugMode bool, logChannel <-chan logging.LogEntry, opts ...tea.ProgramOption) *tea.Program {
	m := model.InitializeModel(info, debugMode, logChannel)
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return tea.NewProgram(NewAppModel(m), opts...)
}
