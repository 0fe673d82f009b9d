package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xplshn/scc/pkg/ast"
	"github.com/xplshn/scc/pkg/config"
	"github.com/xplshn/scc/pkg/lexer"
	"github.com/xplshn/scc/pkg/util"
)

func parse(t *testing.T, src string) (*Unit, error, *util.Reporter, *bytes.Buffer) {
	t.Helper()
	cfg := config.NewConfig()
	var out bytes.Buffer
	diag := util.NewReporter(&out, cfg)
	p := NewParser(lexer.NewLexer([]rune(src), 0, diag), diag, cfg)
	unit, err := p.Parse()
	return unit, err, diag, &out
}

// returned digs out the expression of the first return statement of proc.
func returned(t *testing.T, proc *ast.Node) *ast.Node {
	t.Helper()
	body := proc.Data.(ast.ProcedureNode).Body.Data.(ast.BlockNode)
	for _, stmt := range body.Stmts {
		if stmt.Type == ast.Return {
			return stmt.Data.(ast.ReturnNode).Expr
		}
	}
	t.Fatal("no return statement")
	return nil
}

func TestSumOfLiterals(t *testing.T) {
	unit, err, diag, out := parse(t, "int main(void) { return 1 + 2; }")
	require.NoError(t, err)
	assert.Equal(t, 0, diag.Count(), out.String())
	require.Len(t, unit.Procedures, 1)

	proc := unit.Procedures[0].Data.(ast.ProcedureNode)
	assert.Equal(t, "main", proc.Symbol.Name)
	assert.True(t, proc.Symbol.Defined)
	assert.Empty(t, proc.Params())

	sum := returned(t, unit.Procedures[0])
	assert.Equal(t, ast.Add, sum.Type)
	assert.Equal(t, int64(2), sum.Data.(ast.BinaryNode).Right.Data.(ast.NumberNode).Value)
}

func TestIncompleteStructThenDefined(t *testing.T) {
	src := `
struct node *p;
int x;
int f(void) { x = (*p).value; return 0; }
struct node { int value; struct node *next; };
int g(void) { x = (*p).value; return x; }
`
	_, err, diag, out := parse(t, src)
	require.NoError(t, err)
	assert.Equal(t, "line 4: using pointer to incomplete type\n", out.String())
	assert.Equal(t, 1, diag.Count())
}

func TestCallWithTooFewArguments(t *testing.T) {
	src := "int add(int a, int b) { return a + b; }\nint main(void) { return add(1); }"
	unit, err, diag, out := parse(t, src)
	require.NoError(t, err)
	assert.Equal(t, "line 2: invalid arguments to called function\n", out.String())
	assert.Equal(t, 1, diag.Count())

	call := returned(t, unit.Procedures[1])
	assert.Equal(t, ast.Call, call.Type)
	assert.True(t, call.Typ.IsError())
	assert.True(t, call.HasCall)
}

func TestParameterShadowsGlobal(t *testing.T) {
	src := "int x;\nint f(int x) { return x; }\nint g(void) { return x; }"
	unit, err, diag, _ := parse(t, src)
	require.NoError(t, err)
	require.Equal(t, 0, diag.Count())

	global := unit.Globals.Find("x")
	param := unit.Procedures[0].Data.(ast.ProcedureNode).Params()[0]
	require.NotSame(t, global, param)
	assert.Same(t, param, returned(t, unit.Procedures[0]).Data.(ast.IdentNode).Symbol)
	assert.Same(t, global, returned(t, unit.Procedures[1]).Data.(ast.IdentNode).Symbol)
}

func TestArrayIndexLowering(t *testing.T) {
	unit, err, diag, _ := parse(t, "int a[10]; int i; int f(void) { return a[i]; }")
	require.NoError(t, err)
	require.Equal(t, 0, diag.Count())

	deref := returned(t, unit.Procedures[0])
	require.Equal(t, ast.Dereference, deref.Type)
	assert.True(t, deref.Typ.IsInteger())

	sum := deref.Data.(ast.UnaryNode).Expr
	require.Equal(t, ast.Add, sum.Type)
	left, right := sum.Data.(ast.BinaryNode).Left, sum.Data.(ast.BinaryNode).Right
	assert.Equal(t, ast.Address, left.Type, "the array decays to its address")
	assert.Equal(t, ast.Ident, left.Data.(ast.UnaryNode).Expr.Type)
	require.Equal(t, ast.Mul, right.Type, "the index is scaled by the element size")
	assert.Equal(t, int64(4), right.Data.(ast.BinaryNode).Right.Data.(ast.NumberNode).Value)
}

func TestPointerDifferenceAndSizeof(t *testing.T) {
	src := `
struct s { int a; char b; };
int *p, *q;
char *c;
int f(void) { return p - q; }
int g(void) { return sizeof(struct s) + sizeof(char *); }
int h(void) { return (c + 3) - c; }
`
	unit, err, diag, out := parse(t, src)
	require.NoError(t, err)
	require.Equal(t, 0, diag.Count(), out.String())

	div := returned(t, unit.Procedures[0])
	require.Equal(t, ast.Div, div.Type)
	assert.Equal(t, ast.Sub, div.Data.(ast.BinaryNode).Left.Type)

	sizes := returned(t, unit.Procedures[1]).Data.(ast.BinaryNode)
	assert.Equal(t, int64(5), sizes.Left.Data.(ast.NumberNode).Value)
	assert.Equal(t, int64(4), sizes.Right.Data.(ast.NumberNode).Value)

	assert.Equal(t, ast.Sub, returned(t, unit.Procedures[2]).Type, "char pointers are not scaled")
}

func TestArrowLowersToFieldOfDereference(t *testing.T) {
	src := "struct n { int v; struct n *next; };\nstruct n *head;\nint f(void) { return head->next->v; }"
	unit, err, diag, _ := parse(t, src)
	require.NoError(t, err)
	require.Equal(t, 0, diag.Count())

	field := returned(t, unit.Procedures[0])
	require.Equal(t, ast.Field, field.Type)
	data := field.Data.(ast.FieldNode)
	assert.Equal(t, "v", data.Member.Name)
	assert.Equal(t, 0, data.Member.Offset)
	assert.Equal(t, ast.Dereference, data.Expr.Type)
	inner := data.Expr.Data.(ast.UnaryNode).Expr
	assert.Equal(t, ast.Field, inner.Type)
	assert.Equal(t, 4, inner.Data.(ast.FieldNode).Member.Offset)
}

func TestLvalues(t *testing.T) {
	src := `
int a[3]; int x; int f(void) { return 0; }
int g(void) {
	a = 0;
	f = 0;
	x + 1 = 2;
	*a = 1;
	a[1] = x;
	return &x == &x;
}
`
	_, err, _, out := parse(t, src)
	require.NoError(t, err)
	assert.Equal(t,
		"line 4: lvalue required in expression\n"+
			"line 5: lvalue required in expression\n"+
			"line 6: lvalue required in expression\n",
		out.String())
}

func TestSyntaxErrorStopsParsing(t *testing.T) {
	unit, err, diag, out := parse(t, "int main(void) { return 1 }\nint y = ;")
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Nil(t, unit)
	assert.True(t, diag.Fatal())
	assert.Equal(t, "line 1: syntax error at '}'\n", out.String())

	_, err, _, out = parse(t, "int main(void) {")
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Equal(t, "line 1: syntax error at end of file\n", out.String())

	_, err, _, out = parse(t, "int f(void) { goto x; }")
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Equal(t, "line 1: syntax error at 'goto'\n", out.String())
}

func TestNoEffectWarning(t *testing.T) {
	_, err, diag, out := parse(t, "int f(void) { int x; x; f(); return 0; }")
	require.NoError(t, err)
	assert.Equal(t, 0, diag.Count())
	assert.Equal(t, "line 1: warning: statement with no effect [-Wno-effect]\n", out.String())
}

func TestFunctionRedefinition(t *testing.T) {
	_, _, diag, out := parse(t, "int f();\nchar f(void) { return 0; }\nint g(void) { return 0; }\nint g(void) { return 1; }")
	assert.Equal(t, 2, diag.Count())
	assert.Equal(t, "line 2: conflicting types for 'f'\nline 4: redefinition of 'g'\n", out.String())
}
