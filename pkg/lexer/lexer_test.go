package lexer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xplshn/scc/pkg/config"
	"github.com/xplshn/scc/pkg/token"
	"github.com/xplshn/scc/pkg/util"
)

func lexAll(t *testing.T, src string) ([]token.Token, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	diag := util.NewReporter(&out, config.NewConfig())
	l := NewLexer([]rune(src), 0, diag)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, &out
		}
		require.Less(t, len(toks), 1000, "lexer does not terminate")
	}
}

func typesOf(toks []token.Token) []token.Type {
	var ts []token.Type
	for _, tok := range toks {
		ts = append(ts, tok.Type)
	}
	return ts
}

func TestOperatorsAndKeywords(t *testing.T) {
	toks, out := lexAll(t, "int *p; p->x = a[1] && !b || c != d <= e >= f == g; i++ - --j; struct s while goto")
	assert.Empty(t, out.String())
	assert.Equal(t, []token.Type{
		token.Int, token.Star, token.Ident, token.Semi,
		token.Ident, token.Arrow, token.Ident, token.Eq, token.Ident, token.LBracket, token.Number, token.RBracket,
		token.AndAnd, token.Not, token.Ident, token.OrOr, token.Ident, token.Neq, token.Ident, token.Lte,
		token.Ident, token.Gte, token.Ident, token.EqEq, token.Ident, token.Semi,
		token.Ident, token.Inc, token.Minus, token.Dec, token.Ident, token.Semi,
		token.Struct, token.Ident, token.While, token.Goto, token.EOF,
	}, typesOf(toks))
	assert.Equal(t, "p", toks[2].Value)
}

func TestPositions(t *testing.T) {
	toks, _ := lexAll(t, "a\n  /* two\nlines */ bc")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 3, toks[1].Line)
	assert.Equal(t, 10, toks[1].Column)
	assert.Equal(t, 2, toks[1].Len)
}

func TestLiterals(t *testing.T) {
	toks, out := lexAll(t, `42 'a' '\n' '\101' '\x41' "hi\tthere\n" "\0"`)
	assert.Empty(t, out.String())
	require.Len(t, toks, 8)
	assert.Equal(t, "42", toks[0].Value)
	assert.Equal(t, token.Character, toks[1].Type)
	assert.Equal(t, "97", toks[1].Value)
	assert.Equal(t, "10", toks[2].Value)
	assert.Equal(t, "65", toks[3].Value)
	assert.Equal(t, "65", toks[4].Value)
	assert.Equal(t, "hi\tthere\n", toks[5].Value)
	assert.Equal(t, "\x00", toks[6].Value)
}

func TestLexicalErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"2147483648", "line 1: integer constant too large\n"},
		{"\"abc\nx", "line 1: premature end of string constant\n"},
		{"'a", "line 1: premature end of character constant\n"},
		{`"\q"`, "line 1: unknown escape sequence\n"},
		{`"\777"`, "line 1: escape sequence out of range\n"},
		{`'\x100'`, "line 1: escape sequence out of range\n"},
		{"''", "line 1: empty character constant\n"},
		{"'ab'", "line 1: multi-character character constant\n"},
		{"\n/* open", "line 2: premature end of comment\n"},
		{"a @ b", "line 1: invalid character '@'\n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, out := lexAll(t, tt.src)
			assert.Equal(t, tt.msg, out.String())
		})
	}
}

func TestLargestConstant(t *testing.T) {
	toks, out := lexAll(t, "2147483647")
	assert.Empty(t, out.String())
	assert.Equal(t, "2147483647", toks[0].Value)
}
