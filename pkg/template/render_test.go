package template

import (
	"testing"

	"github.com/arthur-debert/saltbox/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderString(t *testing.T) {
	vars := Variables{"SALTROOT": "/var/dst", "USER": "salt", "not-ident": "x"}

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"function_form", "root={{$ SALTROOT $}}", "root=/var/dst"},
		{"field_form", "root={{$ .SALTROOT $}}", "root=/var/dst"},
		{"pipeline", `{{$ SALTROOT | printf "%q" $}}`, `"/var/dst"`},
		{"index_for_non_identifier", `{{$ index . "not-ident" $}}`, "x"},
		{"default_delimiters_untouched", "{{ pillar.get('x') }} {{$ USER $}}", "{{ pillar.get('x') }} salt"},
		{"comment_removed", "a((= hidden =))b", "ab"},
		{"multiline_comment_removed", "a((= one\ntwo =))b", "ab"},
		{"if_block", `((* if eq USER "salt" *))yes((* else *))no((* end *))`, "yes"},
		{"endif_alias", `((* if .USER *))set((* endif *))`, "set"},
		{"trim_markers", "a\n((*- if .USER -*))\nb\n((*- end -*))\nc", "abc"},
		{"no_markers", "plain text\n", "plain text\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := RenderString(tt.name, tt.content, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestRenderString_BuiltinNamesStayBuiltins(t *testing.T) {
	vars := Variables{"name": "abc", "len": "shadow", "index": "shadow", "printf": "shadow"}

	out, err := RenderString("builtins", `{{$ len .name $}}/{{$ index . "name" $}}/{{$ printf "%s" .len $}}`, vars)
	require.NoError(t, err)
	assert.Equal(t, "3/abc/shadow", out)

	assert.True(t, IsReserved("index"))
	assert.True(t, IsReserved("range"))
	assert.False(t, IsReserved("SALTROOT"))
	assert.NotContains(t, vars.funcMap(), "len")
	assert.Contains(t, vars.funcMap(), "name")
}

func TestRenderString_Errors(t *testing.T) {
	vars := Variables{"SALTROOT": "/var/dst"}

	tests := []struct {
		name    string
		content string
	}{
		{"unknown_function", "{{$ UNDEFINED $}}"},
		{"unknown_field", "{{$ .UNDEFINED $}}"},
		{"unclosed_block", "((* if .SALTROOT *))open"},
		{"unterminated_action", "{{$ SALTROOT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderString(tt.name, tt.content, vars)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrRender))
		})
	}
}

func TestHasMarkers(t *testing.T) {
	assert.True(t, HasMarkers([]byte("x {{$ A $}}")))
	assert.True(t, HasMarkers([]byte("((* if x *))")))
	assert.True(t, HasMarkers([]byte("((= c =))")))
	assert.False(t, HasMarkers([]byte("{{ jinja }} {% if %}")))
}

func TestIsBinary(t *testing.T) {
	assert.True(t, IsBinary([]byte{'a', 0, 'b'}))
	assert.False(t, IsBinary([]byte("text only")))

	late := make([]byte, 9000)
	for i := range late {
		late[i] = 'a'
	}
	late[8500] = 0
	assert.False(t, IsBinary(late))
}

func TestVariables(t *testing.T) {
	base := Variables{"B": "2", "A": "1"}
	with := base.With("SALTROOT", "/dst")

	assert.Equal(t, []string{"A", "B"}, base.Names())
	assert.Equal(t, []string{"A", "B", "SALTROOT"}, with.Names())
	_, mutated := base["SALTROOT"]
	assert.False(t, mutated)

	assert.True(t, IsIdentifier("SALT_ROOT2"))
	assert.False(t, IsIdentifier("2x"))
	assert.False(t, IsIdentifier("a-b"))
}
