// Package checker holds the semantic rules of Simple C: the scope stack, the
// declaration rules, and one check per expression or statement construct.
// Every check reports at most one diagnostic and returns the error type on
// failure; operands that already have the error type are passed through
// silently so that one mistake produces one message.
package checker

import (
	"github.com/xplshn/scc/pkg/config"
	"github.com/xplshn/scc/pkg/scope"
	"github.com/xplshn/scc/pkg/token"
	"github.com/xplshn/scc/pkg/types"
	"github.com/xplshn/scc/pkg/util"
)

const (
	undeclared  = "'%s' undeclared"
	redefined   = "redefinition of '%s'"
	redeclared  = "redeclaration of '%s'"
	conflicting = "conflicting types for '%s'"
	incomplete  = "'%s' has incomplete type"
	nonpointer  = "pointer type required for '%s'"

	invalidReturn  = "invalid return type"
	invalidTest    = "invalid type for test expression"
	requiredLvalue = "lvalue required in expression"
	invalidBinary  = "invalid operands to binary %s"
	invalidUnary   = "invalid operand to unary %s"
	invalidCast    = "invalid operand in cast expression"
	callObject     = "called object is not a function"
	invalidArgs    = "invalid arguments to called function"
	incompleteType = "using pointer to incomplete type"
)

type Checker struct {
	outermost *scope.Scope
	toplevel  *scope.Scope
	fields    *scope.Fields
	functions map[string]bool
	structs   int
	diag      *util.Reporter
}

func NewChecker(diag *util.Reporter) *Checker {
	return &Checker{
		fields:    scope.NewFields(),
		functions: make(map[string]bool),
		diag:      diag,
	}
}

func (c *Checker) Outermost() *scope.Scope { return c.outermost }
func (c *Checker) Toplevel() *scope.Scope  { return c.toplevel }
func (c *Checker) Fields() *scope.Fields   { return c.fields }

// OpenScope pushes a new scope. The first scope opened is the outermost one.
func (c *Checker) OpenScope() *scope.Scope {
	c.toplevel = scope.New(c.toplevel)
	if c.outermost == nil {
		c.outermost = c.toplevel
	}
	return c.toplevel
}

// CloseScope pops the current scope and returns it.
func (c *Checker) CloseScope() *scope.Scope {
	old := c.toplevel
	c.toplevel = old.Enclosing()
	return old
}

// OpenStruct opens the member scope of a structure definition. Defining a
// tag twice is reported and the old layout is dropped.
func (c *Checker) OpenStruct(tok token.Token, tag string) {
	if c.fields.Has(tag) {
		c.fields.Delete(tag)
		c.diag.Error(tok, redefined, tag)
	}
	c.structs++
	c.OpenScope()
}

// CloseStruct closes the member scope and registers it under tag.
func (c *Checker) CloseStruct(tag string) {
	c.structs--
	c.fields.Register(tag, c.CloseScope())
}

// byValue reports a structure that is not behind a pointer, whatever the kind.
func byValue(t types.Type) bool { return t.IsStruct() && t.Indirection == 0 }

// DeclareSymbol declares name in the current scope. An erroneous
// redeclaration is discarded after reporting it.
func (c *Checker) DeclareSymbol(tok token.Token, name string, typ types.Type, isParameter bool) *scope.Symbol {
	sym := c.toplevel.Find(name)

	if sym == nil {
		if c.toplevel != c.outermost && c.structs == 0 && c.toplevel.Enclosing().Lookup(name) != nil {
			c.diag.Warn(config.WarnShadow, tok, "declaration of '%s' shadows an outer declaration", name)
		}
		sym = scope.NewSymbol(name, typ)
		c.toplevel.Insert(sym)
	} else if c.toplevel != c.outermost {
		c.diag.Error(tok, redeclared, name)
		return sym
	} else if !typ.Equal(sym.Type) {
		c.diag.Error(tok, conflicting, name)
		return sym
	}

	if byValue(typ) {
		if isParameter || typ.IsCallback() || typ.IsFunction() {
			c.diag.Error(tok, nonpointer, name)
		} else if !c.fields.Has(typ.Specifier) {
			c.diag.Error(tok, incomplete, name)
		}
	}
	return sym
}

// DefineFunction defines name in the outermost scope. The definition always
// replaces any earlier declaration or definition.
func (c *Checker) DefineFunction(tok token.Token, name string, typ types.Type) *scope.Symbol {
	sym := c.outermost.Find(name)

	if c.functions[name] {
		c.diag.Error(tok, redefined, name)
	} else if sym != nil && !typ.Equal(sym.Type) {
		c.diag.Error(tok, conflicting, name)
	} else if byValue(typ) {
		c.diag.Error(tok, nonpointer, name)
	}

	c.outermost.Remove(name)
	sym = scope.NewSymbol(name, typ)
	sym.Defined = true
	c.outermost.Insert(sym)

	c.functions[name] = true
	return sym
}

// CheckIdentifier resolves name. An undeclared name is reported once and
// then declared with the error type so later uses stay quiet.
func (c *Checker) CheckIdentifier(tok token.Token, name string) *scope.Symbol {
	sym := c.toplevel.Lookup(name)
	if sym == nil {
		c.diag.Error(tok, undeclared, name)
		sym = scope.NewSymbol(name, types.Err)
		c.toplevel.Insert(sym)
	}
	return sym
}

// isCompletePointer is false only for a pointer to a structure whose body
// has not been seen.
func (c *Checker) isCompletePointer(t types.Type) bool {
	return !(t.IsStruct() && t.Indirection == 1 && !c.fields.Has(t.Specifier))
}

// Member returns the field named name of the structure t refers to, after
// one level of indirection if t is a pointer.
func (c *Checker) Member(t types.Type, name string) *scope.Symbol {
	return c.fields.Member(t.Promote().Specifier, name)
}
