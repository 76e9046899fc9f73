package style

import (
	"bytes"
	stderrors "errors"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	pterm.DisableStyling()
	os.Exit(m.Run())
}

func TestErrorLine(t *testing.T) {
	line := ErrorLine(stderrors.New("[USAGE] missing --"))
	assert.Contains(t, line, "Error: [USAGE] missing --")
}

func TestPathAndTitle(t *testing.T) {
	assert.Contains(t, Path("/opt/saltbox"), "/opt/saltbox")
	assert.Contains(t, Title("Roots"), "Roots")
}

func TestSuccess(t *testing.T) {
	assert.Equal(t, "Installed /opt/formula", Success("Installed /opt/formula"))
}

func TestColorEnabled_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(os.Stdout))
}

func TestColorEnabled_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.False(t, ColorEnabled(f))
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	err := Table(&buf, []string{"#", "Root"}, [][]string{
		{"1", "/tmp/r1"},
		{"2", "/tmp/r2"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Root")
	assert.Contains(t, out, "/tmp/r1")
	assert.Contains(t, out, "/tmp/r2")
	assert.Less(t, strings.Index(out, "/tmp/r1"), strings.Index(out, "/tmp/r2"))
}

func TestRenderMarkdown(t *testing.T) {
	old := MarkdownStyle
	MarkdownStyle = "notty"
	defer func() { MarkdownStyle = old }()

	out := RenderMarkdown("# Webserver\n\nInstalls **nginx**.\n", 60)
	assert.Contains(t, out, "Webserver")
	assert.Contains(t, out, "nginx")
}
