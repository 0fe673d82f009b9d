package checker

import (
	"github.com/xplshn/scc/pkg/token"
	"github.com/xplshn/scc/pkg/types"
)

func (c *Checker) checkLogical(tok token.Token, op string, left, right types.Type) types.Type {
	if left.IsError() || right.IsError() {
		return types.Err
	}
	if left.IsValue() && right.IsValue() {
		return types.Integer
	}
	c.diag.Error(tok, invalidBinary, op)
	return types.Err
}

func (c *Checker) CheckLogicalOr(tok token.Token, left, right types.Type) types.Type {
	return c.checkLogical(tok, "||", left, right)
}

func (c *Checker) CheckLogicalAnd(tok token.Token, left, right types.Type) types.Type {
	return c.checkLogical(tok, "&&", left, right)
}

func (c *Checker) checkComparison(tok token.Token, op string, left, right types.Type) types.Type {
	if left.IsError() || right.IsError() {
		return types.Err
	}
	if left.IsValue() && right.IsValue() && left.IsCompatibleWith(right) {
		return types.Integer
	}
	c.diag.Error(tok, invalidBinary, op)
	return types.Err
}

func (c *Checker) CheckEqual(tok token.Token, left, right types.Type) types.Type {
	return c.checkComparison(tok, "==", left, right)
}

func (c *Checker) CheckNotEqual(tok token.Token, left, right types.Type) types.Type {
	return c.checkComparison(tok, "!=", left, right)
}

func (c *Checker) CheckLessThan(tok token.Token, left, right types.Type) types.Type {
	return c.checkComparison(tok, "<", left, right)
}

func (c *Checker) CheckGreaterThan(tok token.Token, left, right types.Type) types.Type {
	return c.checkComparison(tok, ">", left, right)
}

func (c *Checker) CheckLessOrEqual(tok token.Token, left, right types.Type) types.Type {
	return c.checkComparison(tok, "<=", left, right)
}

func (c *Checker) CheckGreaterOrEqual(tok token.Token, left, right types.Type) types.Type {
	return c.checkComparison(tok, ">=", left, right)
}

func (c *Checker) CheckAddition(tok token.Token, left, right types.Type) types.Type {
	if left.IsError() || right.IsError() {
		return types.Err
	}
	t1, t2 := left.Promote(), right.Promote()

	switch {
	case t1.IsInteger() && t2.IsInteger():
		return types.Integer
	case t1.IsPointer() && t2.IsInteger():
		if c.isCompletePointer(t1) {
			return t1
		}
		c.diag.Error(tok, incompleteType)
		return types.Err
	case t1.IsInteger() && t2.IsPointer():
		if c.isCompletePointer(t2) {
			return t2
		}
		c.diag.Error(tok, incompleteType)
		return types.Err
	}
	c.diag.Error(tok, invalidBinary, "+")
	return types.Err
}

func (c *Checker) CheckSubtraction(tok token.Token, left, right types.Type) types.Type {
	if left.IsError() || right.IsError() {
		return types.Err
	}
	t1, t2 := left.Promote(), right.Promote()

	switch {
	case t1.IsInteger() && t2.IsInteger():
		return types.Integer
	case t1.IsPointer() && t2.IsInteger():
		if c.isCompletePointer(t1) {
			return t1
		}
		c.diag.Error(tok, incompleteType)
		return types.Err
	case t1.IsPointer() && t2.IsPointer() && t1.Specifier == t2.Specifier:
		if !c.isCompletePointer(t1) || !c.isCompletePointer(t2) {
			c.diag.Error(tok, incompleteType)
			return types.Err
		}
		if t1.IsCompatibleWith(t2) {
			return types.Integer
		}
	}
	c.diag.Error(tok, invalidBinary, "-")
	return types.Err
}

func (c *Checker) checkMultiplicative(tok token.Token, op string, left, right types.Type) types.Type {
	if left.IsError() || right.IsError() {
		return types.Err
	}
	if left.Promote().IsInteger() && right.Promote().IsInteger() {
		return types.Integer
	}
	c.diag.Error(tok, invalidBinary, op)
	return types.Err
}

func (c *Checker) CheckMultiply(tok token.Token, left, right types.Type) types.Type {
	return c.checkMultiplicative(tok, "*", left, right)
}

func (c *Checker) CheckDivision(tok token.Token, left, right types.Type) types.Type {
	return c.checkMultiplicative(tok, "/", left, right)
}

func (c *Checker) CheckRemainder(tok token.Token, left, right types.Type) types.Type {
	return c.checkMultiplicative(tok, "%", left, right)
}

func (c *Checker) CheckNot(tok token.Token, expr types.Type) types.Type {
	if expr.IsError() {
		return types.Err
	}
	if expr.IsValue() {
		return types.Integer
	}
	c.diag.Error(tok, invalidUnary, "!")
	return types.Err
}

func (c *Checker) CheckNegate(tok token.Token, expr types.Type) types.Type {
	if expr.IsError() {
		return types.Err
	}
	if expr.Promote().IsInteger() {
		return types.Integer
	}
	c.diag.Error(tok, invalidUnary, "-")
	return types.Err
}

func (c *Checker) CheckDereference(tok token.Token, expr types.Type) types.Type {
	if expr.IsError() {
		return types.Err
	}
	t := expr.Promote()
	if !t.IsPointer() {
		c.diag.Error(tok, invalidUnary, "*")
		return types.Err
	}
	if !c.isCompletePointer(t) {
		c.diag.Error(tok, incompleteType)
		return types.Err
	}
	return types.NewScalar(t.Specifier, t.Indirection-1)
}

func (c *Checker) CheckAddress(tok token.Token, expr types.Type, lvalue bool) types.Type {
	if expr.IsError() {
		return types.Err
	}
	if !lvalue {
		c.diag.Error(tok, requiredLvalue)
		return types.Err
	}
	if expr.IsCallback() {
		c.diag.Error(tok, invalidUnary, "&")
		return types.Err
	}
	return types.NewScalar(expr.Specifier, expr.Indirection+1)
}

func (c *Checker) CheckSizeof(tok token.Token, expr types.Type) types.Type {
	if expr.IsError() {
		return types.Err
	}
	if expr.IsFunction() {
		c.diag.Error(tok, invalidUnary, "sizeof")
		return types.Err
	}
	if !c.isCompletePointer(expr) || (byValue(expr) && !c.fields.Has(expr.Specifier)) {
		c.diag.Error(tok, incompleteType)
		return types.Err
	}
	return types.Integer
}

// CheckTypeCast checks a cast of expr to target.
func (c *Checker) CheckTypeCast(tok token.Token, target, expr types.Type) types.Type {
	if target.IsError() || expr.IsError() {
		return types.Err
	}
	t1, t2 := target.Promote(), expr.Promote()

	if t1.IsInteger() && t2.IsInteger() {
		return t1
	}
	if t1.IsPointer() && t2.IsPointer() && c.isCompletePointer(t1) && c.isCompletePointer(t2) {
		return t1
	}
	c.diag.Error(tok, invalidCast)
	return types.Err
}

// CheckArray checks base[index].
func (c *Checker) CheckArray(tok token.Token, base, index types.Type) types.Type {
	if base.IsError() || index.IsError() {
		return types.Err
	}
	t := base.Promote()
	if !t.IsPointer() || !index.Promote().IsInteger() {
		c.diag.Error(tok, invalidBinary, "[]")
		return types.Err
	}
	if !c.isCompletePointer(t) {
		c.diag.Error(tok, incompleteType)
		return types.Err
	}
	return types.NewScalar(t.Specifier, t.Indirection-1)
}

// CheckDirectField checks base.name.
func (c *Checker) CheckDirectField(tok token.Token, base types.Type, name string) types.Type {
	if base.IsError() {
		return types.Err
	}
	if base.IsScalar() && byValue(base) && c.fields.Has(base.Specifier) {
		if sym := c.fields.Member(base.Specifier, name); sym != nil {
			return sym.Type
		}
	}
	c.diag.Error(tok, invalidBinary, ".")
	return types.Err
}

// CheckIndirectField checks base->name.
func (c *Checker) CheckIndirectField(tok token.Token, base types.Type, name string) types.Type {
	if base.IsError() {
		return types.Err
	}
	t := base.Promote()
	if !t.IsPointer() || !t.IsStruct() || t.Indirection != 1 {
		c.diag.Error(tok, invalidBinary, "->")
		return types.Err
	}
	if !c.isCompletePointer(t) {
		c.diag.Error(tok, incompleteType)
		return types.Err
	}
	if sym := c.fields.Member(t.Specifier, name); sym != nil {
		return sym.Type
	}
	c.diag.Error(tok, invalidBinary, "->")
	return types.Err
}

// CheckCall checks a call through callee with the given argument types.
func (c *Checker) CheckCall(tok token.Token, callee types.Type, args []types.Type) types.Type {
	if callee.IsError() {
		return types.Err
	}
	if !callee.IsFunction() && !callee.IsCallback() {
		c.diag.Error(tok, callObject)
		return types.Err
	}
	for _, arg := range args {
		if arg.IsError() {
			return types.Err
		}
		if !arg.IsValue() {
			c.diag.Error(tok, invalidArgs)
			return types.Err
		}
	}
	if callee.Params != nil {
		params := *callee.Params
		if len(params) != len(args) {
			c.diag.Error(tok, invalidArgs)
			return types.Err
		}
		for i, arg := range args {
			if !params[i].IsCompatibleWith(arg) {
				c.diag.Error(tok, invalidArgs)
				return types.Err
			}
		}
	}
	return types.NewScalar(callee.Specifier, callee.Indirection)
}

func (c *Checker) CheckReturn(tok token.Token, expr, returnType types.Type) types.Type {
	if expr.IsError() || returnType.IsError() {
		return types.Err
	}
	if expr.IsCompatibleWith(returnType) {
		return expr
	}
	c.diag.Error(tok, invalidReturn)
	return types.Err
}

// CheckConditional checks the test of an if, while or for.
func (c *Checker) CheckConditional(tok token.Token, expr types.Type) types.Type {
	if expr.IsError() {
		return types.Err
	}
	if expr.IsValue() {
		return expr
	}
	c.diag.Error(tok, invalidTest)
	return types.Err
}

func (c *Checker) CheckAssignment(tok token.Token, left, right types.Type, lvalue bool) types.Type {
	if left.IsError() || right.IsError() {
		return types.Err
	}
	if !lvalue {
		c.diag.Error(tok, requiredLvalue)
		return types.Err
	}
	if left.IsCompatibleWith(right) {
		return left
	}
	c.diag.Error(tok, invalidBinary, "=")
	return types.Err
}
