package color

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/termenv"
)

// Initialize sets the background lipgloss adapts its colors to, unless
// SBWT_THEME overrides it, and applies NO_COLOR.
func Initialize(isDarkMode bool) {
	switch strings.ToLower(os.Getenv("SBWT_THEME")) {
	case "dark":
		isDarkMode = true
	case "light":
		isDarkMode = false
	}
	lipgloss.SetHasDarkBackground(isDarkMode)
	ApplyNoColor()
}

// NoColorRequested reports whether NO_COLOR is set to a non-empty value.
func NoColorRequested() bool {
	return os.Getenv("NO_COLOR") != ""
}

// ApplyNoColor turns off colors everywhere when NO_COLOR is set.
func ApplyNoColor() {
	if !NoColorRequested() {
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
	text.DisableColors()
}
