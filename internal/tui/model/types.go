package model

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"sbwt/pkg/logging"
)

// MaxActivityLogLines bounds the activity log kept in memory.
const MaxActivityLogLines = 500

// MessageType selects the status bar style.
type MessageType int

const (
	StatusBarInfo MessageType = iota
	StatusBarSuccess
	StatusBarError
	StatusBarWarning
)

// PortLine is one allocated port shown in the session panel.
type PortLine struct {
	Key       string
	Template  int
	Allocated int
}

// SessionInfo is the started environment as the UI presents it.
type SessionInfo struct {
	Identifier    string
	Name          string
	Repository    string
	Path          string
	PortBase      int
	APIURL        string
	Ports         []PortLine
	ModifiedFiles []string
	ServiceOutput string
	SkipService   bool
}

// KeyMap lists the session key bindings.
type KeyMap struct {
	Quit     key.Binding
	CopyURL  key.Binding
	CopyLogs key.Binding
	Up       key.Binding
	Down     key.Binding
}

// DefaultKeyMap returns the bindings used by the session.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "stop & quit")),
		CopyURL:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy API URL")),
		CopyLogs: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy log")),
		Up:       key.NewBinding(key.WithKeys("k", "up", "pgup"), key.WithHelp("↑/k", "scroll")),
		Down:     key.NewBinding(key.WithKeys("j", "down", "pgdown"), key.WithHelp("↓/j", "scroll")),
	}
}

// Model is the session UI state.
type Model struct {
	Session   SessionInfo
	DebugMode bool
	Keys      KeyMap

	Width  int
	Height int

	Spinner     spinner.Model
	LogViewport viewport.Model

	ActivityLog      []string
	ActivityLogDirty bool
	LogChannel       <-chan logging.LogEntry

	StatusBarMessage     string
	StatusBarMessageType MessageType
	StatusBarClearCancel chan struct{}

	Quitting bool
}

// SetStatusMessage shows message in the status bar and clears it after
// clearAfter unless another message replaces it first.
func (m *Model) SetStatusMessage(message string, msgType MessageType, clearAfter time.Duration) tea.Cmd {
	m.StatusBarMessage = message
	m.StatusBarMessageType = msgType

	if m.StatusBarClearCancel != nil {
		close(m.StatusBarClearCancel)
	}
	m.StatusBarClearCancel = make(chan struct{})
	captured := m.StatusBarClearCancel

	return tea.Tick(clearAfter, func(t time.Time) tea.Msg {
		select {
		case <-captured:
			return nil
		default:
			return ClearStatusBarMsg{}
		}
	})
}
