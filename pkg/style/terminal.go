// Package style holds the terminal presentation helpers of the CLI: colors,
// the error line, tables and markdown rendering.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// ColorEnabled reports whether output to f should carry colors.
// NO_COLOR and redirected output disable them.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// Setup turns styling off for both renderers when f cannot show colors
func Setup(f *os.File) {
	if ColorEnabled(f) {
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
	pterm.DisableStyling()
}
