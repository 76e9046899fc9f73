package style

import (
	"github.com/charmbracelet/glamour"
)

// MarkdownStyle selects the glamour style; "auto" detects the terminal
var MarkdownStyle = "auto"

// RenderMarkdown renders content for the terminal, wrapping at width when
// positive. Rendering failures fall back to the raw text.
func RenderMarkdown(content string, width int) string {
	var options []glamour.TermRendererOption

	if MarkdownStyle != "" && MarkdownStyle != "auto" {
		options = append(options, glamour.WithStandardStyle(MarkdownStyle))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
