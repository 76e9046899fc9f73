package style

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)

	NameStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)
)

// ErrorLine formats err the way the CLI prints failures
func ErrorLine(err error) string {
	return ErrorStyle.Render(fmt.Sprintf("Error: %v", err))
}

// Path renders a filesystem path
func Path(p string) string {
	return PathStyle.Render(p)
}

// Title renders a heading
func Title(s string) string {
	return TitleStyle.Render(s)
}

// Success renders a confirmation line
func Success(s string) string {
	return SuccessStyle.Render(s)
}
