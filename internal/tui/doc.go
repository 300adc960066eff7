// Package tui holds the interactive session UI shown by "sbwt up".
//
// The UI is split the usual Bubble Tea way:
//   - model: session state, messages and commands
//   - view: lipgloss rendering
//   - controller: the tea.Model wrapper, update loop and key handling
//
// Log entries produced through pkg/logging while the session runs arrive on
// a channel and are shown in the activity log.
package tui
