package codegen

import (
	"github.com/xplshn/scc/pkg/ast"
	"github.com/xplshn/scc/pkg/scope"
)

// align returns the number of bytes needed to bring offset to a multiple of
// the target's stack alignment. Negative offsets are padded downwards.
func (ctx *Context) align(offset int) int {
	a := ctx.cfg.StackAlignment
	if offset%a == 0 {
		return 0
	}
	if offset < 0 {
		offset = -offset
	}
	return a - offset%a
}

// allocate assigns frame offsets to the parameters and locals of proc and
// returns the cursor below the deepest local. Parameters sit above the
// saved frame pointer and return address, one word each. Locals grow down
// from the frame pointer; sibling blocks share the same slots.
func (ctx *Context) allocate(proc ast.ProcedureNode) int {
	params := proc.Params()
	offset := 2 * ctx.cfg.WordSize
	for _, sym := range params {
		sym.Offset = offset
		offset += ctx.cfg.WordSize
	}

	body := proc.Body.Data.(ast.BlockNode)
	return ctx.allocateBlock(body, len(params), 0)
}

func (ctx *Context) allocateBlock(block ast.BlockNode, skip, offset int) int {
	if block.Decls != nil {
		offset = ctx.allocateLocals(block.Decls.Symbols()[skip:], offset)
	}
	deepest := offset
	for _, stmt := range block.Stmts {
		if o := ctx.allocateStatement(stmt, offset); o < deepest {
			deepest = o
		}
	}
	return deepest
}

func (ctx *Context) allocateLocals(symbols []*scope.Symbol, offset int) int {
	for _, sym := range symbols {
		offset -= sym.Type.Size(ctx.fields)
		sym.Offset = offset
	}
	return offset
}

func (ctx *Context) allocateStatement(stmt *ast.Node, offset int) int {
	if stmt == nil {
		return offset
	}

	switch data := stmt.Data.(type) {
	case ast.BlockNode:
		return ctx.allocateBlock(data, 0, offset)
	case ast.IfNode:
		return min(ctx.allocateStatement(data.Then, offset), ctx.allocateStatement(data.Else, offset))
	case ast.WhileNode:
		return ctx.allocateStatement(data.Body, offset)
	case ast.ForNode:
		return ctx.allocateStatement(data.Body, offset)
	}
	return offset
}
