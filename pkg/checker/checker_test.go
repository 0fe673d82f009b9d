package checker

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xplshn/scc/pkg/config"
	"github.com/xplshn/scc/pkg/token"
	"github.com/xplshn/scc/pkg/types"
	"github.com/xplshn/scc/pkg/util"
)

func newChecker(t *testing.T) (*Checker, *util.Reporter, *bytes.Buffer) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.SetWarning(config.WarnShadow, true)
	var out bytes.Buffer
	diag := util.NewReporter(&out, cfg)
	c := NewChecker(diag)
	c.OpenScope()
	return c, diag, &out
}

func at(line int) token.Token { return token.Token{Type: token.Ident, Line: line, FileIndex: -1} }

var (
	charT    = types.NewScalar("char", 0)
	intPtr   = types.NewScalar("int", 1)
	charPtr  = types.NewScalar("char", 1)
	nodePtr  = types.NewScalar("node", 1)
	intArray = types.NewArray("int", 0, 10)
)

func TestAddition(t *testing.T) {
	tests := []struct {
		name        string
		left, right types.Type
		want        types.Type
		msg         string
	}{
		{"int+int", types.Integer, types.Integer, types.Integer, ""},
		{"char+int", charT, types.Integer, types.Integer, ""},
		{"ptr+int", intPtr, types.Integer, intPtr, ""},
		{"int+ptr", types.Integer, charPtr, charPtr, ""},
		{"array+int", intArray, types.Integer, intPtr, ""},
		{"ptr+ptr", intPtr, intPtr, types.Err, "line 1: invalid operands to binary +\n"},
		{"incomplete", nodePtr, types.Integer, types.Err, "line 1: using pointer to incomplete type\n"},
		{"error operand", types.Err, intPtr, types.Err, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, out := newChecker(t)
			got := c.CheckAddition(at(1), tt.left, tt.right)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
			assert.Equal(t, tt.msg, out.String())
		})
	}
}

func TestSubtraction(t *testing.T) {
	c, diag, _ := newChecker(t)
	assert.True(t, c.CheckSubtraction(at(1), intPtr, intPtr).Equal(types.Integer))
	assert.True(t, c.CheckSubtraction(at(1), intArray, types.Integer).Equal(intPtr))
	assert.True(t, c.CheckSubtraction(at(1), types.Integer, intPtr).IsError())
	assert.True(t, c.CheckSubtraction(at(1), intPtr, charPtr).IsError())
	assert.Equal(t, 2, diag.Count())
}

func TestMultiplicativeUsesOwnOperator(t *testing.T) {
	c, _, out := newChecker(t)
	c.CheckMultiply(at(1), intPtr, types.Integer)
	c.CheckDivision(at(2), intPtr, types.Integer)
	c.CheckRemainder(at(3), types.Integer, intPtr)
	assert.Equal(t,
		"line 1: invalid operands to binary *\n"+
			"line 2: invalid operands to binary /\n"+
			"line 3: invalid operands to binary %\n",
		out.String())
}

func TestComparison(t *testing.T) {
	c, diag, out := newChecker(t)
	assert.True(t, c.CheckEqual(at(1), charT, types.Integer).Equal(types.Integer))
	assert.True(t, c.CheckLessThan(at(1), intArray, intPtr).Equal(types.Integer))
	assert.Equal(t, 0, diag.Count())

	assert.True(t, c.CheckNotEqual(at(4), intPtr, charPtr).IsError())
	assert.True(t, c.CheckGreaterOrEqual(at(5), types.NewScalar("node", 0), types.Integer).IsError())
	assert.Equal(t, "line 4: invalid operands to binary !=\nline 5: invalid operands to binary >=\n", out.String())
}

func TestUnary(t *testing.T) {
	c, diag, _ := newChecker(t)
	pp := types.NewScalar("int", 2)

	assert.True(t, c.CheckDereference(at(1), pp).Equal(intPtr))
	assert.True(t, c.CheckDereference(at(1), intArray).Equal(types.Integer))
	assert.True(t, c.CheckAddress(at(1), types.Integer, true).Equal(intPtr))
	assert.True(t, c.CheckNot(at(1), intPtr).Equal(types.Integer))
	assert.True(t, c.CheckNegate(at(1), charT).Equal(types.Integer))
	assert.Equal(t, 0, diag.Count())

	assert.True(t, c.CheckDereference(at(2), types.Integer).IsError())
	assert.True(t, c.CheckAddress(at(3), types.Integer, false).IsError())
	assert.True(t, c.CheckNegate(at(4), intPtr).IsError())
	assert.True(t, c.CheckSizeof(at(5), types.NewFunction("int", 0, nil)).IsError())
	require.Equal(t, 4, diag.Count())
	assert.Equal(t, "lvalue required in expression", diag.Diagnostics()[1].Msg)
}

func TestIncompleteStructDereference(t *testing.T) {
	c, diag, out := newChecker(t)
	p := c.DeclareSymbol(at(1), "p", nodePtr, false)
	assert.Equal(t, 0, diag.Count(), "a pointer to an incomplete structure may be declared")

	got := c.CheckDereference(at(2), p.Type)
	assert.True(t, got.IsError())
	assert.Equal(t, "line 2: using pointer to incomplete type\n", out.String())

	c.OpenStruct(at(3), "node")
	c.DeclareSymbol(at(3), "value", types.Integer, false)
	c.DeclareSymbol(at(3), "next", nodePtr, false)
	c.CloseStruct("node")

	assert.True(t, c.CheckDereference(at(4), p.Type).Equal(types.NewScalar("node", 0)))
	assert.True(t, c.CheckIndirectField(at(4), p.Type, "next").Equal(nodePtr))
	assert.True(t, c.CheckIndirectField(at(5), p.Type, "missing").IsError())
	assert.Equal(t, 4, c.Member(p.Type, "next").Offset)
}

func TestStructDeclarations(t *testing.T) {
	c, _, out := newChecker(t)
	c.DeclareSymbol(at(1), "s", types.NewScalar("node", 0), false)
	c.DeclareSymbol(at(2), "f", types.NewFunction("node", 0, nil), false)
	c.DeclareSymbol(at(3), "q", types.NewScalar("node", 0), true)
	c.OpenStruct(at(4), "pair")
	c.CloseStruct("pair")
	c.OpenStruct(at(5), "pair")
	c.CloseStruct("pair")
	assert.Equal(t,
		"line 1: 's' has incomplete type\n"+
			"line 2: pointer type required for 'f'\n"+
			"line 3: pointer type required for 'q'\n"+
			"line 5: redefinition of 'pair'\n",
		out.String())
}

func TestRedeclaration(t *testing.T) {
	c, diag, out := newChecker(t)

	first := c.DeclareSymbol(at(1), "x", types.Integer, false)
	again := c.DeclareSymbol(at(2), "x", types.Integer, false)
	assert.Same(t, first, again)
	assert.Equal(t, 0, diag.Count(), "an identical global redeclaration is accepted")

	c.DeclareSymbol(at(3), "x", charT, false)
	assert.Equal(t, "line 3: conflicting types for 'x'\n", out.String())
	assert.True(t, c.Outermost().Find("x").Type.Equal(types.Integer))

	c.OpenScope()
	c.DeclareSymbol(at(4), "y", types.Integer, false)
	c.DeclareSymbol(at(5), "y", types.Integer, false)
	c.CloseScope()
	assert.Equal(t, 2, diag.Count())
	assert.Equal(t, "redeclaration of 'y'", diag.Diagnostics()[1].Msg)
}

func TestDefineFunction(t *testing.T) {
	c, diag, out := newChecker(t)
	decl := types.NewFunction("int", 0, types.KnownParams(types.Integer))
	c.DeclareSymbol(at(1), "f", types.NewFunction("int", 0, nil), false)

	sym := c.DefineFunction(at(2), "f", decl)
	assert.True(t, sym.Defined)
	assert.Same(t, sym, c.Outermost().Find("f"))
	assert.Equal(t, 0, diag.Count())

	c.DefineFunction(at(3), "f", decl)
	c.DefineFunction(at(4), "g", types.NewFunction("int", 0, nil))
	c.DeclareSymbol(at(5), "h", types.NewFunction("char", 0, nil), false)
	c.DefineFunction(at(6), "h", types.NewFunction("int", 0, nil))
	assert.Equal(t, "line 3: redefinition of 'f'\nline 6: conflicting types for 'h'\n", out.String())
}

func TestUndeclaredReportedOnce(t *testing.T) {
	c, diag, out := newChecker(t)
	c.OpenScope()
	for line := 1; line <= 3; line++ {
		sym := c.CheckIdentifier(at(line), "missing")
		assert.True(t, sym.Type.IsError())
		c.CheckAddition(at(line), sym.Type, types.Integer)
	}
	assert.Equal(t, 1, diag.Count())
	assert.Equal(t, "line 1: 'missing' undeclared\n", out.String())
}

func TestShadowWarning(t *testing.T) {
	c, diag, out := newChecker(t)
	c.DeclareSymbol(at(1), "x", types.Integer, false)
	c.OpenScope()
	c.DeclareSymbol(at(2), "x", charT, false)
	c.CloseScope()

	c.OpenStruct(at(3), "s")
	c.DeclareSymbol(at(3), "x", types.Integer, false)
	c.CloseStruct("s")

	assert.Equal(t, 0, diag.Count())
	assert.Equal(t, "line 2: warning: declaration of 'x' shadows an outer declaration [-Wshadow]\n", out.String())
}

func TestCall(t *testing.T) {
	c, diag, out := newChecker(t)
	f := types.NewFunction("int", 0, types.KnownParams(types.Integer, charPtr))
	unknown := types.NewFunction("char", 1, nil)
	callback := types.NewCallback("int", 0, types.KnownParams())

	assert.True(t, c.CheckCall(at(1), f, []types.Type{charT, types.NewArray("char", 0, 4)}).Equal(types.Integer))
	assert.True(t, c.CheckCall(at(1), unknown, []types.Type{intPtr, types.Integer}).Equal(charPtr))
	assert.True(t, c.CheckCall(at(1), callback, nil).Equal(types.Integer))
	assert.Equal(t, 0, diag.Count())

	assert.True(t, c.CheckCall(at(2), f, []types.Type{types.Integer}).IsError())
	assert.True(t, c.CheckCall(at(3), f, []types.Type{types.Integer, intPtr}).IsError())
	assert.True(t, c.CheckCall(at(4), types.Integer, nil).IsError())
	assert.True(t, c.CheckCall(at(5), f, []types.Type{types.Err, charPtr}).IsError())
	assert.Equal(t,
		"line 2: invalid arguments to called function\n"+
			"line 3: invalid arguments to called function\n"+
			"line 4: called object is not a function\n",
		out.String())
}

func TestStatements(t *testing.T) {
	c, diag, out := newChecker(t)
	fn := types.NewFunction("int", 0, nil)

	c.CheckReturn(at(1), charT, types.Integer)
	c.CheckConditional(at(1), intPtr)
	c.CheckAssignment(at(1), charT, types.Integer, true)
	c.CheckTypeCast(at(1), charPtr, intPtr)
	assert.Equal(t, 0, diag.Count())

	c.CheckReturn(at(2), intPtr, types.Integer)
	c.CheckConditional(at(3), fn)
	c.CheckAssignment(at(4), types.Integer, types.Integer, false)
	c.CheckAssignment(at(5), intPtr, charPtr, true)
	c.CheckTypeCast(at(6), types.Integer, intPtr)
	assert.Equal(t,
		"line 2: invalid return type\n"+
			"line 3: invalid type for test expression\n"+
			"line 4: lvalue required in expression\n"+
			"line 5: invalid operands to binary =\n"+
			"line 6: invalid operand in cast expression\n",
		out.String())
}
