package codegen

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/xplshn/scc/pkg/ast"
	"github.com/xplshn/scc/pkg/config"
)

// register is one slot of the bank. node is the live value it holds, if any.
type register struct {
	config.RegisterName
	node *ast.Node
}

func (r *register) name(size int) string {
	if size == 1 {
		return r.Byte
	}
	return r.Long
}

// assign records that reg holds node, without emitting code. Any previous
// link of either side is broken first. A nil node empties reg, and NoReg
// detaches node from whatever register it had.
func (ctx *Context) assign(node *ast.Node, reg int) {
	if node != nil {
		if node.Reg != ast.NoReg {
			ctx.regs[node.Reg].node = nil
		}
		node.Reg = reg
	}

	if reg != ast.NoReg {
		if old := ctx.regs[reg].node; old != nil {
			old.Reg = ast.NoReg
		}
		ctx.regs[reg].node = node
	}
}

// load makes reg hold node, spilling its current owner to a fresh frame
// slot first. Loading nil just empties reg.
func (ctx *Context) load(node *ast.Node, reg int) {
	r := &ctx.regs[reg]
	if r.node == node {
		return
	}

	if old := r.node; old != nil {
		ctx.offset -= ctx.cfg.WordSize
		old.Offset = ctx.offset
		glog.V(2).Infof("%s: spilling %s to %d(%%ebp)", ctx.funcName, r.Long, ctx.offset)
		ctx.emit("movl", r.Long, fmt.Sprintf("%d(%%ebp)", ctx.offset))
	}

	if node != nil {
		op := "movl"
		if node.Type == ast.Ident && isChar(node.Typ) && node.Offset == 0 {
			op = "movsbl"
		}
		ctx.emit(op, ctx.operand(node), r.Long)
	}

	ctx.assign(node, reg)
}

// getreg returns the first empty register. When the bank is full the first
// register is evicted.
func (ctx *Context) getreg() int {
	for i := range ctx.regs {
		if ctx.regs[i].node == nil {
			return i
		}
	}
	glog.V(2).Infof("%s: register bank full, evicting %s", ctx.funcName, ctx.regs[0].Long)
	ctx.load(nil, 0)
	return 0
}

// ensure generates nothing; it forces an already generated node into some
// register and returns that register.
func (ctx *Context) ensure(node *ast.Node) *register {
	if node.Reg == ast.NoReg {
		ctx.load(node, ctx.getreg())
	}
	return &ctx.regs[node.Reg]
}

// flush spills every live value.
func (ctx *Context) flush() {
	for i := range ctx.regs {
		ctx.load(nil, i)
	}
}

func (ctx *Context) resetBank() {
	for i := range ctx.regs {
		ctx.regs[i].node = nil
	}
}

func (ctx *Context) bankEmpty() bool {
	for i := range ctx.regs {
		if ctx.regs[i].node != nil {
			return false
		}
	}
	return true
}
