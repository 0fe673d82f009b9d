package codegen

import "fmt"

// Label is a control-flow target. Labels are numbered in the order they are
// created and never reused within one compilation.
type Label int

func (l Label) String() string { return fmt.Sprintf(".L%d", int(l)) }

func (ctx *Context) newLabel() Label {
	l := Label(ctx.labelCount)
	ctx.labelCount++
	return l
}

func (ctx *Context) placeLabel(l Label) {
	fmt.Fprintf(ctx.out, "%s:\n", l)
}
