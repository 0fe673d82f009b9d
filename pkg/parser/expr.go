package parser

import (
	"strconv"

	"github.com/xplshn/scc/pkg/ast"
	"github.com/xplshn/scc/pkg/token"
	"github.com/xplshn/scc/pkg/types"
)

// Every expression rule returns the node it built and whether that node
// designates an lvalue. Nodes are returned undecayed; decay wraps an array
// operand in an Address node where its value, not its storage, is used.

func (p *Parser) decay(node *ast.Node) *ast.Node {
	if node.Typ.IsArray() {
		return ast.NewUnary(node.Tok, ast.Address, node, node.Typ.Promote())
	}
	return node
}

// scale multiplies an integer operand by the size of the type ptr points to.
func (p *Parser) scale(node *ast.Node, ptr types.Type) *ast.Node {
	size := types.NewScalar(ptr.Specifier, ptr.Indirection-1).Size(p.sema.Fields())
	if size == 1 {
		return node
	}
	return ast.NewBinary(node.Tok, ast.Mul, node, ast.NewNumber(node.Tok, int64(size)), types.Integer)
}

func (p *Parser) addition(tok token.Token, left, right *ast.Node, typ types.Type) *ast.Node {
	left, right = p.decay(left), p.decay(right)
	if !typ.IsError() {
		switch {
		case left.Typ.IsPointer():
			right = p.scale(right, left.Typ)
		case right.Typ.IsPointer():
			left = p.scale(left, right.Typ)
		}
	}
	return ast.NewBinary(tok, ast.Add, left, right, typ)
}

func (p *Parser) subtraction(tok token.Token, left, right *ast.Node, typ types.Type) *ast.Node {
	left, right = p.decay(left), p.decay(right)
	if typ.IsError() || !left.Typ.IsPointer() {
		return ast.NewBinary(tok, ast.Sub, left, right, typ)
	}
	if !right.Typ.IsPointer() {
		return ast.NewBinary(tok, ast.Sub, left, p.scale(right, left.Typ), typ)
	}

	diff := ast.NewBinary(tok, ast.Sub, left, right, types.Integer)
	size := types.NewScalar(left.Typ.Specifier, left.Typ.Indirection-1).Size(p.sema.Fields())
	if size == 1 {
		return diff
	}
	return ast.NewBinary(tok, ast.Div, diff, ast.NewNumber(tok, int64(size)), types.Integer)
}

func (p *Parser) binary(tok token.Token, kind ast.NodeType, left, right *ast.Node, typ types.Type) *ast.Node {
	return ast.NewBinary(tok, kind, p.decay(left), p.decay(right), typ)
}

func (p *Parser) primary(lparen bool) (*ast.Node, bool) {
	tok := p.current

	switch {
	case lparen:
		expr, lvalue := p.expression()
		p.expect(token.RParen)
		return expr, lvalue

	case p.match(token.Character), p.match(token.Number):
		val, _ := strconv.ParseInt(tok.Value, 10, 64)
		return ast.NewNumber(tok, val), false

	case p.match(token.String):
		return ast.NewString(tok, tok.Value), false

	case p.match(token.Ident):
		sym := p.sema.CheckIdentifier(tok, tok.Value)
		return ast.NewIdent(tok, sym), sym.Type.IsScalar() || sym.Type.IsCallback()
	}

	p.syntaxError()
	return nil, false
}

func (p *Parser) postfix(lparen bool) (*ast.Node, bool) {
	left, lvalue := p.primary(lparen)

	for {
		tok := p.current
		switch {
		case p.match(token.LBracket):
			index, _ := p.expression()
			p.expect(token.RBracket)
			typ := p.sema.CheckArray(tok, left.Typ, index.Typ)
			sumType := types.Err
			if !typ.IsError() {
				sumType = left.Typ.Promote()
			}
			sum := p.addition(tok, left, index, sumType)
			left, lvalue = ast.NewUnary(tok, ast.Dereference, sum, typ), true

		case p.match(token.LParen):
			var args []*ast.Node
			var argTypes []types.Type
			if !p.check(token.RParen) {
				for {
					arg, _ := p.expression()
					args = append(args, p.decay(arg))
					argTypes = append(argTypes, arg.Typ)
					if !p.match(token.Comma) {
						break
					}
				}
			}
			p.expect(token.RParen)
			typ := p.sema.CheckCall(tok, left.Typ, argTypes)
			left, lvalue = ast.NewCall(tok, left, args, typ), false

		case p.match(token.Dot):
			_, name := p.identifier()
			typ := p.sema.CheckDirectField(tok, left.Typ, name)
			left = ast.NewField(tok, left, p.sema.Member(left.Typ, name), typ)
			lvalue = !typ.IsArray()

		case p.match(token.Arrow):
			_, name := p.identifier()
			typ := p.sema.CheckIndirectField(tok, left.Typ, name)
			ptr := p.decay(left)
			deref := ast.NewUnary(tok, ast.Dereference, ptr, types.NewScalar(ptr.Typ.Specifier, 0))
			left = ast.NewField(tok, deref, p.sema.Member(ptr.Typ, name), typ)
			lvalue = !typ.IsArray()

		default:
			return left, lvalue
		}
	}
}

// typeName parses "specifier pointers" inside a cast or sizeof.
func (p *Parser) typeName() types.Type {
	spec := p.specifier()
	return types.NewScalar(spec, p.pointers())
}

func (p *Parser) prefix() (*ast.Node, bool) {
	tok := p.current

	switch {
	case p.match(token.Not):
		expr, _ := p.prefix()
		return ast.NewUnary(tok, ast.Not, p.decay(expr), p.sema.CheckNot(tok, expr.Typ)), false

	case p.match(token.Minus):
		expr, _ := p.prefix()
		return ast.NewUnary(tok, ast.Negate, p.decay(expr), p.sema.CheckNegate(tok, expr.Typ)), false

	case p.match(token.Star):
		expr, _ := p.prefix()
		return ast.NewUnary(tok, ast.Dereference, p.decay(expr), p.sema.CheckDereference(tok, expr.Typ)), true

	case p.match(token.And):
		expr, lvalue := p.prefix()
		return ast.NewUnary(tok, ast.Address, expr, p.sema.CheckAddress(tok, expr.Typ, lvalue)), false

	case p.match(token.Sizeof):
		var operand types.Type
		if p.match(token.LParen) {
			if isSpecifier(p.current.Type) {
				operand = p.typeName()
				p.expect(token.RParen)
			} else {
				expr, _ := p.postfix(true)
				operand = expr.Typ
			}
		} else {
			expr, _ := p.prefix()
			operand = expr.Typ
		}
		if p.sema.CheckSizeof(tok, operand).IsError() {
			node := ast.NewNumber(tok, 0)
			node.Typ = types.Err
			return node, false
		}
		return ast.NewNumber(tok, int64(operand.Size(p.sema.Fields()))), false

	case p.match(token.LParen):
		if !isSpecifier(p.current.Type) {
			return p.postfix(true)
		}
		target := p.typeName()
		p.expect(token.RParen)
		expr, _ := p.prefix()
		typ := p.sema.CheckTypeCast(tok, target, expr.Typ)
		return ast.NewCast(tok, p.decay(expr), typ), false
	}

	return p.postfix(false)
}

func (p *Parser) multiplicative() (*ast.Node, bool) {
	left, lvalue := p.prefix()
	for {
		tok := p.current
		switch {
		case p.match(token.Star):
			right, _ := p.prefix()
			left = p.binary(tok, ast.Mul, left, right, p.sema.CheckMultiply(tok, left.Typ, right.Typ))
		case p.match(token.Slash):
			right, _ := p.prefix()
			left = p.binary(tok, ast.Div, left, right, p.sema.CheckDivision(tok, left.Typ, right.Typ))
		case p.match(token.Rem):
			right, _ := p.prefix()
			left = p.binary(tok, ast.Rem, left, right, p.sema.CheckRemainder(tok, left.Typ, right.Typ))
		default:
			return left, lvalue
		}
		lvalue = false
	}
}

func (p *Parser) additive() (*ast.Node, bool) {
	left, lvalue := p.multiplicative()
	for {
		tok := p.current
		switch {
		case p.match(token.Plus):
			right, _ := p.multiplicative()
			left = p.addition(tok, left, right, p.sema.CheckAddition(tok, left.Typ, right.Typ))
		case p.match(token.Minus):
			right, _ := p.multiplicative()
			left = p.subtraction(tok, left, right, p.sema.CheckSubtraction(tok, left.Typ, right.Typ))
		default:
			return left, lvalue
		}
		lvalue = false
	}
}

func (p *Parser) relational() (*ast.Node, bool) {
	left, lvalue := p.additive()
	for {
		tok := p.current
		var kind ast.NodeType
		var check func(token.Token, types.Type, types.Type) types.Type
		switch {
		case p.match(token.Lt):
			kind, check = ast.Lt, p.sema.CheckLessThan
		case p.match(token.Gt):
			kind, check = ast.Gt, p.sema.CheckGreaterThan
		case p.match(token.Lte):
			kind, check = ast.Le, p.sema.CheckLessOrEqual
		case p.match(token.Gte):
			kind, check = ast.Ge, p.sema.CheckGreaterOrEqual
		default:
			return left, lvalue
		}
		right, _ := p.additive()
		left, lvalue = p.binary(tok, kind, left, right, check(tok, left.Typ, right.Typ)), false
	}
}

func (p *Parser) equality() (*ast.Node, bool) {
	left, lvalue := p.relational()
	for {
		tok := p.current
		switch {
		case p.match(token.EqEq):
			right, _ := p.relational()
			left = p.binary(tok, ast.Eq, left, right, p.sema.CheckEqual(tok, left.Typ, right.Typ))
		case p.match(token.Neq):
			right, _ := p.relational()
			left = p.binary(tok, ast.Ne, left, right, p.sema.CheckNotEqual(tok, left.Typ, right.Typ))
		default:
			return left, lvalue
		}
		lvalue = false
	}
}

func (p *Parser) logicalAnd() (*ast.Node, bool) {
	left, lvalue := p.equality()
	for {
		tok := p.current
		if !p.match(token.AndAnd) {
			return left, lvalue
		}
		right, _ := p.equality()
		left, lvalue = p.binary(tok, ast.LogicalAnd, left, right, p.sema.CheckLogicalAnd(tok, left.Typ, right.Typ)), false
	}
}

func (p *Parser) expression() (*ast.Node, bool) {
	left, lvalue := p.logicalAnd()
	for {
		tok := p.current
		if !p.match(token.OrOr) {
			return left, lvalue
		}
		right, _ := p.logicalAnd()
		left, lvalue = p.binary(tok, ast.LogicalOr, left, right, p.sema.CheckLogicalOr(tok, left.Typ, right.Typ)), false
	}
}
