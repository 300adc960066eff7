package model

import "sbwt/pkg/logging"

// NewLogEntryMsg carries one entry from the logging channel.
type NewLogEntryMsg struct {
	Entry logging.LogEntry
}

// LogChannelClosedMsg is sent once the logging channel is closed.
type LogChannelClosedMsg struct{}

// ClearStatusBarMsg clears the status bar.
type ClearStatusBarMsg struct{}
