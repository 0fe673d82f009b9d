package codegen

import (
	"fmt"

	"github.com/xplshn/scc/pkg/ast"
	"github.com/xplshn/scc/pkg/util"
)

var setOps = map[ast.NodeType]string{
	ast.Lt: "setl",
	ast.Gt: "setg",
	ast.Le: "setle",
	ast.Ge: "setge",
	ast.Eq: "sete",
	ast.Ne: "setne",
}

// expression emits the code computing node. Afterwards node is either in a
// register, in a spill slot, or is a literal or named storage that operand
// can render directly.
func (ctx *Context) expression(node *ast.Node) {
	switch node.Type {
	case ast.Number, ast.String:

	case ast.Ident:
		// char storage is widened on load so that every register value is a word
		if isChar(node.Typ) {
			ctx.load(node, ctx.getreg())
		}

	case ast.Add:
		ctx.compute(node, "addl")
	case ast.Sub:
		ctx.compute(node, "subl")
	case ast.Mul:
		ctx.compute(node, "imull")
	case ast.Div:
		ctx.divide(node, ctx.eax)
	case ast.Rem:
		ctx.divide(node, ctx.edx)

	case ast.Lt, ast.Gt, ast.Le, ast.Ge, ast.Eq, ast.Ne:
		ctx.compare(node, setOps[node.Type])

	case ast.LogicalAnd, ast.LogicalOr:
		ctx.logical(node)

	case ast.Not:
		expr := node.Data.(ast.UnaryNode).Expr
		ctx.expression(expr)
		r := ctx.ensure(expr)
		ctx.emit("cmpl", "$0", r.Long)
		ctx.emit("sete", r.Byte)
		ctx.emit("movzbl", r.Byte, r.Long)
		ctx.assign(node, expr.Reg)

	case ast.Negate:
		expr := node.Data.(ast.UnaryNode).Expr
		ctx.expression(expr)
		r := ctx.ensure(expr)
		ctx.emit("negl", r.Long)
		ctx.assign(node, expr.Reg)

	case ast.Dereference:
		ctx.dereference(node)
	case ast.Address:
		ctx.address(node)

	case ast.Cast:
		expr := node.Data.(ast.CastNode).Expr
		ctx.expression(expr)
		r := ctx.ensure(expr)
		if isChar(node.Typ) && !isChar(expr.Typ) {
			ctx.emit("movsbl", r.Byte, r.Long)
		}
		ctx.assign(node, expr.Reg)

	case ast.Field:
		ctx.field(node)
	case ast.Call:
		ctx.call(node)

	default:
		util.Assertf(false, "%s: unexpected expression kind %d", ctx.funcName, node.Type)
	}
}

func (ctx *Context) compute(node *ast.Node, opcode string) {
	data := node.Data.(ast.BinaryNode)
	ctx.expression(data.Left)
	ctx.expression(data.Right)
	left := ctx.ensure(data.Left)

	ctx.emit(opcode, ctx.operand(data.Right), left.Long)

	ctx.assign(data.Right, ast.NoReg)
	ctx.assign(node, data.Left.Reg)
}

// divide leaves the quotient in %eax and the remainder in %edx; result
// picks which of the two becomes the value of node.
func (ctx *Context) divide(node *ast.Node, result int) {
	data := node.Data.(ast.BinaryNode)
	ctx.expression(data.Left)
	ctx.expression(data.Right)

	ctx.load(data.Left, ctx.eax)
	ctx.load(nil, ctx.edx)
	if data.Right.Type == ast.Number {
		ctx.load(data.Right, ctx.ecx)
	}

	ctx.emit("cltd")
	ctx.emit("idivl", ctx.operand(data.Right))

	ctx.assign(data.Right, ast.NoReg)
	ctx.assign(data.Left, ast.NoReg)
	ctx.assign(node, result)
}

func (ctx *Context) compare(node *ast.Node, opcode string) {
	data := node.Data.(ast.BinaryNode)
	ctx.expression(data.Left)
	ctx.expression(data.Right)
	left := ctx.ensure(data.Left)

	ctx.emit("cmpl", ctx.operand(data.Right), left.Long)
	ctx.emit(opcode, left.Byte)
	ctx.emit("movzbl", left.Byte, left.Long)

	ctx.assign(data.Right, ast.NoReg)
	ctx.assign(node, data.Left.Reg)
}

// logical short-circuits && and ||. The bank is emptied first so that both
// paths reach the join label with the same registers live. The flags at the
// join come from comparing either operand with zero.
func (ctx *Context) logical(node *ast.Node) {
	data := node.Data.(ast.BinaryNode)
	skip := ctx.newLabel()

	ctx.flush()
	ctx.testValue(data.Left, skip, node.Type == ast.LogicalOr)

	ctx.expression(data.Right)
	r := ctx.ensure(data.Right)
	ctx.emit("cmpl", "$0", r.Long)

	ctx.placeLabel(skip)
	ctx.emit("setne", r.Byte)
	ctx.emit("movzbl", r.Byte, r.Long)
	ctx.assign(node, data.Right.Reg)
}

func (ctx *Context) dereference(node *ast.Node) {
	ptr := node.Data.(ast.UnaryNode).Expr
	ctx.expression(ptr)
	r := ctx.ensure(ptr)

	// a structure value is represented by its address
	if !node.Typ.IsStructure() {
		op := "movl"
		if isChar(node.Typ) {
			op = "movsbl"
		}
		ctx.emit(op, indirect(r.Long, 0), r.Long)
	}
	ctx.assign(node, ptr.Reg)
}

func (ctx *Context) address(node *ast.Node) {
	place := ctx.locate(node.Data.(ast.UnaryNode).Expr)

	if place.ptr != nil {
		r := ctx.ensure(place.ptr)
		if place.offset != 0 {
			ctx.emit("leal", indirect(r.Long, place.offset), r.Long)
		}
		ctx.assign(node, place.ptr.Reg)
		return
	}

	reg := ctx.getreg()
	ctx.emit("leal", ctx.memory(place.base, place.offset), ctx.regs[reg].Long)
	ctx.assign(node, reg)
}

func (ctx *Context) field(node *ast.Node) {
	place := ctx.locate(node)
	mem := ctx.render(place)

	var reg int
	if place.ptr != nil {
		reg = place.ptr.Reg
	} else {
		reg = ctx.getreg()
	}

	op := "movl"
	if isChar(node.Typ) {
		op = "movsbl"
	}
	ctx.emit(op, mem, ctx.regs[reg].Long)
	ctx.assign(node, reg)
}

// call pushes the arguments right to left, empties the bank since the
// callee may clobber every register, and leaves the result in %eax.
func (ctx *Context) call(node *ast.Node) {
	data := node.Data.(ast.CallNode)
	word := ctx.cfg.WordSize

	// With padding in front of the arguments, nested calls must run before
	// anything is pushed.
	early := ctx.cfg.StackAlignment != word

	numBytes := 0
	for i := len(data.Args) - 1; i >= 0; i-- {
		numBytes += word
		if early && data.Args[i].HasCall {
			ctx.expression(data.Args[i])
		}
	}

	if pad := ctx.align(numBytes); pad != 0 {
		ctx.emit("subl", fmt.Sprintf("$%d", pad), "%esp")
		numBytes += pad
	}

	for i := len(data.Args) - 1; i >= 0; i-- {
		arg := data.Args[i]
		if !early || !arg.HasCall {
			ctx.expression(arg)
		}
		ctx.emit("pushl", ctx.operand(arg))
		ctx.assign(arg, ast.NoReg)
	}

	ctx.flush()

	callee := data.Callee
	if callee.Typ.IsCallback() {
		ctx.expression(callee)
		r := ctx.ensure(callee)
		ctx.emit("call", "*"+r.Long)
		ctx.assign(callee, ast.NoReg)
	} else {
		ctx.emit("call", ctx.cfg.GlobalPrefix+callee.Data.(ast.IdentNode).Symbol.Name)
	}

	if numBytes > 0 {
		ctx.emit("addl", fmt.Sprintf("$%d", numBytes), "%esp")
	}

	eax := &ctx.regs[ctx.eax]
	if isChar(node.Typ) {
		ctx.emit("movsbl", eax.Byte, eax.Long)
	}
	ctx.assign(node, ctx.eax)
}

// place is resolved storage: base displaced by offset bytes, reached
// through the register holding ptr when base is a dereference.
type place struct {
	base   *ast.Node
	offset int
	ptr    *ast.Node
}

// locate walks member accesses down to their base, summing member offsets.
// A dereferenced base has its pointer generated into a register.
func (ctx *Context) locate(expr *ast.Node) place {
	p := place{base: expr}
	for p.base.Type == ast.Field {
		data := p.base.Data.(ast.FieldNode)
		p.offset += data.Member.Offset
		p.base = data.Expr
	}

	if p.base.Type == ast.Dereference {
		p.ptr = p.base.Data.(ast.UnaryNode).Expr
		ctx.expression(p.ptr)
		ctx.ensure(p.ptr)
	}
	return p
}

// render returns p as a memory operand, reloading its pointer if it was
// spilled since locate.
func (ctx *Context) render(p place) string {
	if p.ptr != nil {
		return indirect(ctx.ensure(p.ptr).Long, p.offset)
	}
	return ctx.memory(p.base, p.offset)
}

func (p place) release(ctx *Context) {
	if p.ptr != nil {
		ctx.assign(p.ptr, ast.NoReg)
	}
}
