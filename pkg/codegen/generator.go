package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/xplshn/scc/pkg/ast"
	"github.com/xplshn/scc/pkg/config"
	"github.com/xplshn/scc/pkg/parser"
	"github.com/xplshn/scc/pkg/scope"
	"github.com/xplshn/scc/pkg/types"
)

// Context is the state of one compilation. The register bank and the offset
// cursor are reset for every procedure; labels and strings are shared by
// the whole unit.
type Context struct {
	cfg     *config.Config
	fields  *scope.Fields
	out     *strings.Builder
	strings *StringTable
	regs    []register

	eax, ecx, edx int

	labelCount int
	offset     int
	funcName   string
}

func NewContext(cfg *config.Config, fields *scope.Fields) *Context {
	ctx := &Context{
		cfg:     cfg,
		fields:  fields,
		out:     new(strings.Builder),
		strings: NewStringTable(),
	}
	for i, name := range cfg.Registers {
		ctx.regs = append(ctx.regs, register{RegisterName: name})
		switch name.Long {
		case "%eax":
			ctx.eax = i
		case "%ecx":
			ctx.ecx = i
		case "%edx":
			ctx.edx = i
		}
	}
	return ctx
}

type gasBackend struct{}

// NewGASBackend returns the backend emitting 32-bit AT&T syntax assembly.
func NewGASBackend() Backend { return gasBackend{} }

func (gasBackend) Generate(unit *parser.Unit, cfg *config.Config) (*bytes.Buffer, error) {
	if err := cfg.Target.Validate(); err != nil {
		return nil, errors.Wrapf(err, "cannot generate code for target '%s'", cfg.Target.Name)
	}

	ctx := NewContext(cfg, unit.Fields)
	for _, proc := range unit.Procedures {
		ctx.procedure(proc)
	}
	ctx.globals(unit.Globals)
	return bytes.NewBufferString(ctx.out.String()), nil
}

func (ctx *Context) emit(op string, args ...string) {
	if len(args) == 0 {
		fmt.Fprintf(ctx.out, "\t%s\n", op)
		return
	}
	fmt.Fprintf(ctx.out, "\t%s\t%s\n", op, strings.Join(args, ", "))
}

// procedure emits one function. The prologue refers to the frame size
// through the symbol name.size, which is only set after the body has been
// generated and every spill slot is known.
func (ctx *Context) procedure(node *ast.Node) {
	proc := node.Data.(ast.ProcedureNode)
	name := ctx.cfg.GlobalPrefix + proc.Symbol.Name
	paramOffset := 2 * ctx.cfg.WordSize

	ctx.funcName = name
	ctx.resetBank()
	ctx.offset = ctx.allocate(proc)
	glog.V(1).Infof("generating %s", name)

	fmt.Fprintf(ctx.out, "%s:\n", name)
	ctx.emit("pushl", "%ebp")
	ctx.emit("movl", "%esp", "%ebp")
	ctx.emit("subl", "$"+name+".size", "%esp")

	ctx.statement(proc.Body)

	fmt.Fprintf(ctx.out, "\n%s.exit:\n", name)
	ctx.emit("movl", "%ebp", "%esp")
	ctx.emit("popl", "%ebp")
	ctx.emit("ret")
	ctx.out.WriteString("\n")

	ctx.offset -= ctx.align(ctx.offset - paramOffset)
	glog.V(2).Infof("%s: frame size %d", name, -ctx.offset)
	ctx.emit(".set", name+".size", fmt.Sprint(-ctx.offset))
	ctx.emit(".globl", name)
	ctx.out.WriteString("\n")
}

// globals reserves storage for every non-function global and then emits
// the interned string literals.
func (ctx *Context) globals(globals *scope.Scope) {
	for _, sym := range globals.Symbols() {
		if sym.Type.IsFunction() || sym.Type.IsError() {
			continue
		}
		ctx.emit(".comm", ctx.cfg.GlobalPrefix+sym.Name, fmt.Sprint(sym.Type.Size(ctx.fields)))
	}

	ctx.emit(".data")
	ctx.strings.writeData(ctx.out)
}

// operand renders where the value of node currently lives.
func (ctx *Context) operand(node *ast.Node) string {
	if node.Reg != ast.NoReg {
		return ctx.regs[node.Reg].Long
	}
	if node.Offset != 0 {
		return fmt.Sprintf("%d(%%ebp)", node.Offset)
	}

	switch data := node.Data.(type) {
	case ast.NumberNode:
		return fmt.Sprintf("$%d", data.Value)
	case ast.StringNode:
		return ctx.strings.Label(data.Value, ctx.newLabel).String()
	case ast.IdentNode:
		if data.Symbol.Type.IsFunction() {
			return "$" + ctx.cfg.GlobalPrefix + data.Symbol.Name
		}
		return ctx.memory(node, 0)
	}

	panic(fmt.Sprintf("%s: node of kind %d has no operand", ctx.funcName, node.Type))
}

// memory addresses storage that is reached by name or relative to the frame
// pointer: a global, a local, a parameter or a string literal, displaced by
// offset bytes.
func (ctx *Context) memory(base *ast.Node, offset int) string {
	switch data := base.Data.(type) {
	case ast.StringNode:
		label := ctx.strings.Label(data.Value, ctx.newLabel).String()
		if offset != 0 {
			return fmt.Sprintf("%s+%d", label, offset)
		}
		return label

	case ast.IdentNode:
		sym := data.Symbol
		if sym.Offset == scope.GlobalOffset {
			if offset != 0 {
				return fmt.Sprintf("%s%s+%d", ctx.cfg.GlobalPrefix, sym.Name, offset)
			}
			return ctx.cfg.GlobalPrefix + sym.Name
		}
		return fmt.Sprintf("%d(%%ebp)", sym.Offset+offset)
	}

	panic(fmt.Sprintf("%s: node of kind %d is not addressable", ctx.funcName, base.Type))
}

// indirect addresses memory through a register.
func indirect(reg string, offset int) string {
	if offset == 0 {
		return "(" + reg + ")"
	}
	return fmt.Sprintf("%d(%s)", offset, reg)
}

func isChar(t types.Type) bool {
	return t.IsScalar() && t.Indirection == 0 && t.Specifier == "char"
}
