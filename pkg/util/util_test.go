package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xplshn/scc/pkg/config"
	"github.com/xplshn/scc/pkg/token"
)

func tokAt(line, col, length int) token.Token {
	return token.Token{Type: token.Ident, Value: "x", Line: line, Column: col, Len: length}
}

func TestReporterErrors(t *testing.T) {
	var out strings.Builder
	r := NewReporter(&out, config.NewConfig())

	assert.NoError(t, r.Err())
	assert.Nil(t, r.Diagnostics())

	r.Error(tokAt(3, 5, 1), "'%s' undeclared", "x")
	r.Error(tokAt(7, 1, 1), "invalid return type")

	assert.Equal(t, "line 3: 'x' undeclared\nline 7: invalid return type\n", out.String())
	assert.Equal(t, 2, r.Count())
	assert.False(t, r.Fatal())
	require.Error(t, r.Err())
	assert.Contains(t, r.Err().Error(), "line 3: 'x' undeclared")

	diags := r.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, 7, diags[1].Tok.Line)
	assert.Equal(t, "invalid return type", diags[1].Msg)
}

func TestReporterSyntaxError(t *testing.T) {
	var out strings.Builder
	r := NewReporter(&out, config.NewConfig())
	r.SyntaxError(tokAt(2, 1, 1), "syntax error at '%s'", "}")

	assert.True(t, r.Fatal())
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, "line 2: syntax error at '}'\n", out.String())
}

func TestReporterWarnings(t *testing.T) {
	var out strings.Builder
	cfg := config.NewConfig()
	r := NewReporter(&out, cfg)

	r.Warn(config.WarnShadow, tokAt(4, 1, 1), "declaration of 'x' shadows an outer one")
	assert.Empty(t, out.String())

	cfg.SetWarning(config.WarnShadow, true)
	r.Warn(config.WarnShadow, tokAt(4, 1, 1), "declaration of 'x' shadows an outer one")
	assert.Equal(t, "line 4: warning: declaration of 'x' shadows an outer one [-Wshadow]\n", out.String())
	assert.Equal(t, 0, r.Count())
	assert.NoError(t, r.Err())
}

func TestReporterCaret(t *testing.T) {
	var out strings.Builder
	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatCaret, true)
	r := NewReporter(&out, cfg)
	r.SetSourceFiles([]SourceFileRecord{{Name: "a.c", Content: []rune("int main(void)\n{\n    foo = 1;\n}\n")}})

	r.Error(tokAt(3, 5, 3), "'%s' undeclared", "foo")

	want := "a.c:3:5: error: 'foo' undeclared\n" +
		"      foo = 1;\n" +
		"      ^~~\n"
	assert.Equal(t, want, out.String())
}

func TestReporterCaretWithoutSource(t *testing.T) {
	var out strings.Builder
	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatCaret, true)
	r := NewReporter(&out, cfg)

	tok := tokAt(1, 2, 1)
	tok.FileIndex = 4
	r.Error(tok, "oops")
	assert.Equal(t, "<stdin>:1:2: error: oops\n", out.String())
}
