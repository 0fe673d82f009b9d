package codegen

import (
	"github.com/xplshn/scc/pkg/ast"
	"github.com/xplshn/scc/pkg/config"
	"github.com/xplshn/scc/pkg/util"
)

func (ctx *Context) statement(node *ast.Node) {
	if node == nil {
		return
	}

	switch data := node.Data.(type) {
	case ast.BlockNode:
		for _, stmt := range data.Stmts {
			ctx.statement(stmt)
			util.Assertf(ctx.bankEmpty(), "%s: register still in use after statement on line %d", ctx.funcName, stmt.Tok.Line)
		}

	case ast.SimpleNode:
		ctx.expression(data.Expr)
		ctx.assign(data.Expr, ast.NoReg)

	case ast.AssignmentNode:
		ctx.assignment(data.Left, data.Right)

	case ast.ReturnNode:
		ctx.expression(data.Expr)
		ctx.load(data.Expr, ctx.eax)
		ctx.emit("jmp", ctx.funcName+".exit")
		ctx.assign(data.Expr, ast.NoReg)

	case ast.IfNode:
		skip, exit := ctx.newLabel(), ctx.newLabel()
		ctx.test(data.Cond, skip, false)
		ctx.statement(data.Then)
		if data.Else == nil {
			ctx.placeLabel(skip)
			return
		}
		ctx.emit("jmp", exit.String())
		ctx.placeLabel(skip)
		ctx.statement(data.Else)
		ctx.placeLabel(exit)

	case ast.WhileNode:
		loop, exit := ctx.newLabel(), ctx.newLabel()
		ctx.placeLabel(loop)
		ctx.test(data.Cond, exit, false)
		ctx.statement(data.Body)
		ctx.emit("jmp", loop.String())
		ctx.placeLabel(exit)

	case ast.ForNode:
		loop, exit := ctx.newLabel(), ctx.newLabel()
		ctx.statement(data.Init)
		ctx.placeLabel(loop)
		ctx.test(data.Cond, exit, false)
		ctx.statement(data.Body)
		ctx.statement(data.Incr)
		ctx.emit("jmp", loop.String())
		ctx.placeLabel(exit)

	default:
		util.Assertf(false, "%s: unexpected statement kind %d", ctx.funcName, node.Type)
	}
}

// jumps holds the branch taken when a comparison is true and when it is
// false.
var jumps = map[ast.NodeType][2]string{
	ast.Lt: {"jl", "jge"},
	ast.Gt: {"jg", "jle"},
	ast.Le: {"jle", "jg"},
	ast.Ge: {"jge", "jl"},
	ast.Eq: {"je", "jne"},
	ast.Ne: {"jne", "je"},
}

// test evaluates node as a condition and jumps to label when its truth
// equals ifTrue. Comparisons branch on the flags directly instead of
// materializing a 0 or 1 first.
func (ctx *Context) test(node *ast.Node, label Label, ifTrue bool) {
	if !node.Type.IsComparison() || !ctx.cfg.IsFeatureEnabled(config.FeatCompareJumps) {
		ctx.testValue(node, label, ifTrue)
		return
	}

	data := node.Data.(ast.BinaryNode)
	ctx.expression(data.Left)
	ctx.expression(data.Right)
	left := ctx.ensure(data.Left)
	ctx.emit("cmpl", ctx.operand(data.Right), left.Long)

	op := jumps[node.Type][1]
	if ifTrue {
		op = jumps[node.Type][0]
	}
	ctx.emit(op, label.String())

	ctx.assign(data.Left, ast.NoReg)
	ctx.assign(data.Right, ast.NoReg)
}

func (ctx *Context) testValue(node *ast.Node, label Label, ifTrue bool) {
	ctx.expression(node)
	reg := ctx.ensure(node)
	ctx.emit("cmpl", "$0", reg.Long)
	if ifTrue {
		ctx.emit("jne", label.String())
	} else {
		ctx.emit("je", label.String())
	}
	ctx.assign(node, ast.NoReg)
}

// assignment stores right into the storage designated by left. Structures
// are copied through their addresses.
func (ctx *Context) assignment(left, right *ast.Node) {
	if left.Typ.IsStructure() {
		ctx.copyStructure(left, right)
		return
	}

	ctx.expression(right)
	ctx.ensure(right)
	dst := ctx.locate(left)
	src := ctx.ensure(right)
	mem := ctx.render(dst)

	if isChar(left.Typ) {
		ctx.emit("movb", src.name(1), mem)
	} else {
		ctx.emit("movl", src.Long, mem)
	}

	ctx.assign(right, ast.NoReg)
	dst.release(ctx)
}

func (ctx *Context) copyStructure(left, right *ast.Node) {
	size := left.Typ.Size(ctx.fields)
	word := ctx.cfg.WordSize

	src := ast.NewUnary(right.Tok, ast.Address, right, right.Typ.Promote())
	src.Typ.Indirection++
	dst := ast.NewUnary(left.Tok, ast.Address, left, left.Typ.Promote())
	dst.Typ.Indirection++

	ctx.expression(src)
	ctx.ensure(src)
	ctx.expression(dst)
	ctx.ensure(dst)
	s := ctx.ensure(src)

	tmp := ctx.getreg()
	util.Assertf(tmp != src.Reg && tmp != dst.Reg, "%s: no scratch register for structure copy", ctx.funcName)
	t := &ctx.regs[tmp]
	d := &ctx.regs[dst.Reg]

	n := 0
	for ; n+word <= size; n += word {
		ctx.emit("movl", indirect(s.Long, n), t.Long)
		ctx.emit("movl", t.Long, indirect(d.Long, n))
	}
	for ; n < size; n++ {
		ctx.emit("movb", indirect(s.Long, n), t.name(1))
		ctx.emit("movb", t.name(1), indirect(d.Long, n))
	}

	ctx.assign(src, ast.NoReg)
	ctx.assign(dst, ast.NoReg)
}
