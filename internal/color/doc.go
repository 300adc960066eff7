// Package color sets up terminal colors for the session UI and the table
// output of sbwt.
//
// Respected environment variables:
//   - NO_COLOR: disable all color output (lipgloss and go-pretty tables)
//   - SBWT_THEME: force a "dark" or "light" theme in the session UI
package color
