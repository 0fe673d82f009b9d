package parser

import (
	"errors"
	"strconv"

	"github.com/xplshn/scc/pkg/ast"
	"github.com/xplshn/scc/pkg/checker"
	"github.com/xplshn/scc/pkg/config"
	"github.com/xplshn/scc/pkg/lexer"
	"github.com/xplshn/scc/pkg/scope"
	"github.com/xplshn/scc/pkg/token"
	"github.com/xplshn/scc/pkg/types"
	"github.com/xplshn/scc/pkg/util"
)

// ErrSyntax is returned by Parse after a syntax error has been reported.
var ErrSyntax = errors.New("syntax error")

// bailout unwinds the parser after a syntax error.
type bailout struct{}

// Unit is a parsed and checked translation unit.
type Unit struct {
	Globals    *scope.Scope
	Fields     *scope.Fields
	Procedures []*ast.Node
}

// Parser holds the state for the parsing process
type Parser struct {
	lex        *lexer.Lexer
	current    token.Token
	previous   token.Token
	diag       *util.Reporter
	cfg        *config.Config
	sema       *checker.Checker
	returnType types.Type
	procs      []*ast.Node
}

// NewParser creates a parser reading tokens from lex
func NewParser(lex *lexer.Lexer, diag *util.Reporter, cfg *config.Config) *Parser {
	return &Parser{lex: lex, diag: diag, cfg: cfg, sema: checker.NewChecker(diag)}
}

// Parse reads the whole translation unit. Semantic errors are reported and
// parsing continues; a syntax error stops it and Parse returns ErrSyntax.
func (p *Parser) Parse() (unit *Unit, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			unit, err = nil, ErrSyntax
		}
	}()

	p.sema.OpenScope()
	p.advance()
	for !p.check(token.EOF) {
		p.globalOrFunction()
	}
	globals := p.sema.CloseScope()

	return &Unit{Globals: globals, Fields: p.sema.Fields(), Procedures: p.procs}, nil
}

// Parser helpers
func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.lex.Next()
}

func (p *Parser) check(tokType token.Type) bool {
	return p.current.Type == tokType
}

func (p *Parser) match(tokType token.Type) bool {
	if !p.check(tokType) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(tokType token.Type) {
	if !p.match(tokType) {
		p.syntaxError()
	}
}

func (p *Parser) syntaxError() {
	if p.check(token.EOF) {
		p.diag.SyntaxError(p.current, "syntax error at end of file")
	} else {
		p.diag.SyntaxError(p.current, "syntax error at '%s'", p.current.Text())
	}
	panic(bailout{})
}

func (p *Parser) number() int {
	tok := p.current
	p.expect(token.Number)
	n, _ := strconv.Atoi(tok.Value)
	return n
}

func (p *Parser) identifier() (token.Token, string) {
	tok := p.current
	p.expect(token.Ident)
	return tok, tok.Value
}

func isSpecifier(t token.Type) bool {
	return t == token.Int || t == token.Char || t == token.Struct
}

func (p *Parser) specifier() string {
	switch {
	case p.match(token.Int):
		return "int"
	case p.match(token.Char):
		return "char"
	}
	p.expect(token.Struct)
	_, tag := p.identifier()
	return tag
}

func (p *Parser) pointers() int {
	count := 0
	for p.match(token.Star) {
		count++
	}
	return count
}

// callback parses the "(*name)()" form after its opening parenthesis.
func (p *Parser) callback() (token.Token, string) {
	p.expect(token.Star)
	tok, name := p.identifier()
	p.expect(token.RParen)
	p.expect(token.LParen)
	p.expect(token.RParen)
	return tok, name
}

// --- Declarations ---

func (p *Parser) declarator(spec string) {
	indirection := p.pointers()
	if p.match(token.LParen) {
		tok, name := p.callback()
		p.sema.DeclareSymbol(tok, name, types.NewCallback(spec, indirection, nil), false)
		return
	}

	tok, name := p.identifier()
	if p.match(token.LBracket) {
		p.sema.DeclareSymbol(tok, name, types.NewArray(spec, indirection, p.number()), false)
		p.expect(token.RBracket)
		return
	}
	p.sema.DeclareSymbol(tok, name, types.NewScalar(spec, indirection), false)
}

func (p *Parser) declaration() {
	spec := p.specifier()
	p.declarator(spec)
	for p.match(token.Comma) {
		p.declarator(spec)
	}
	p.expect(token.Semi)
}

func (p *Parser) declarations() {
	for isSpecifier(p.current.Type) {
		p.declaration()
	}
}

func (p *Parser) parameter() types.Type {
	spec := p.specifier()
	indirection := p.pointers()

	var typ types.Type
	var tok token.Token
	var name string
	if p.match(token.LParen) {
		tok, name = p.callback()
		typ = types.NewCallback(spec, indirection, nil)
	} else {
		tok, name = p.identifier()
		typ = types.NewScalar(spec, indirection)
	}
	p.sema.DeclareSymbol(tok, name, typ, true)
	return typ
}

func (p *Parser) parameters() *types.Parameters {
	if p.match(token.Void) {
		return types.KnownParams()
	}
	params := []types.Type{p.parameter()}
	for p.match(token.Comma) {
		params = append(params, p.parameter())
	}
	return types.KnownParams(params...)
}

func (p *Parser) globalDeclarator(spec string) {
	indirection := p.pointers()
	if p.match(token.LParen) {
		tok, name := p.callback()
		p.sema.DeclareSymbol(tok, name, types.NewCallback(spec, indirection, nil), false)
		return
	}

	tok, name := p.identifier()
	switch {
	case p.match(token.LParen):
		p.sema.DeclareSymbol(tok, name, types.NewFunction(spec, indirection, nil), false)
		p.expect(token.RParen)
	case p.match(token.LBracket):
		p.sema.DeclareSymbol(tok, name, types.NewArray(spec, indirection, p.number()), false)
		p.expect(token.RBracket)
	default:
		p.sema.DeclareSymbol(tok, name, types.NewScalar(spec, indirection), false)
	}
}

func (p *Parser) remainingDeclarators(spec string) {
	for p.match(token.Comma) {
		p.globalDeclarator(spec)
	}
	p.expect(token.Semi)
}

func (p *Parser) globalOrFunction() {
	specTok := p.current
	spec := p.specifier()

	if specTok.Type == token.Struct && p.check(token.LBrace) {
		p.sema.OpenStruct(p.previous, spec)
		p.advance()
		p.declaration()
		p.declarations()
		p.sema.CloseStruct(spec)
		p.expect(token.RBrace)
		p.expect(token.Semi)
		return
	}

	indirection := p.pointers()
	if p.match(token.LParen) {
		tok, name := p.callback()
		p.sema.DeclareSymbol(tok, name, types.NewCallback(spec, indirection, nil), false)
		p.remainingDeclarators(spec)
		return
	}

	tok, name := p.identifier()
	switch {
	case p.match(token.LBracket):
		p.sema.DeclareSymbol(tok, name, types.NewArray(spec, indirection, p.number()), false)
		p.expect(token.RBracket)
		p.remainingDeclarators(spec)

	case p.match(token.LParen):
		if p.match(token.RParen) {
			p.sema.DeclareSymbol(tok, name, types.NewFunction(spec, indirection, nil), false)
			p.remainingDeclarators(spec)
			return
		}
		p.function(tok, name, spec, indirection)

	default:
		p.sema.DeclareSymbol(tok, name, types.NewScalar(spec, indirection), false)
		p.remainingDeclarators(spec)
	}
}

// function parses a definition from its parameter list to the closing brace.
// Parameters and locals share the function's scope.
func (p *Parser) function(tok token.Token, name, spec string, indirection int) {
	p.returnType = types.NewScalar(spec, indirection)
	p.sema.OpenScope()
	typ := types.NewFunction(spec, indirection, p.parameters())
	sym := p.sema.DefineFunction(tok, name, typ)
	p.expect(token.RParen)

	braceTok := p.current
	p.expect(token.LBrace)
	p.declarations()
	stmts := p.statements()
	decls := p.sema.CloseScope()
	p.expect(token.RBrace)

	body := ast.NewBlock(braceTok, decls, stmts)
	p.procs = append(p.procs, ast.NewProcedure(tok, sym, body))
}

// --- Statements ---

func (p *Parser) statements() []*ast.Node {
	var stmts []*ast.Node
	for !p.check(token.RBrace) {
		stmts = append(stmts, p.statement())
	}
	return stmts
}

func (p *Parser) assignment() *ast.Node {
	left, lvalue := p.expression()
	tok := p.current
	if !p.match(token.Eq) {
		if !left.HasCall {
			p.diag.Warn(config.WarnNoEffect, left.Tok, "statement with no effect")
		}
		return ast.NewSimple(left.Tok, p.decay(left))
	}
	right, _ := p.expression()
	p.sema.CheckAssignment(tok, left.Typ, right.Typ, lvalue)
	return ast.NewAssignment(tok, left, p.decay(right))
}

func (p *Parser) condition() *ast.Node {
	tok := p.current
	expr, _ := p.expression()
	p.sema.CheckConditional(tok, expr.Typ)
	return p.decay(expr)
}

func (p *Parser) statement() *ast.Node {
	tok := p.current

	switch {
	case p.match(token.LBrace):
		p.sema.OpenScope()
		p.declarations()
		stmts := p.statements()
		decls := p.sema.CloseScope()
		p.expect(token.RBrace)
		return ast.NewBlock(tok, decls, stmts)

	case p.match(token.Return):
		exprTok := p.current
		expr, _ := p.expression()
		p.sema.CheckReturn(exprTok, expr.Typ, p.returnType)
		p.expect(token.Semi)
		return ast.NewReturn(tok, p.decay(expr))

	case p.match(token.While):
		p.expect(token.LParen)
		cond := p.condition()
		p.expect(token.RParen)
		return ast.NewWhile(tok, cond, p.statement())

	case p.match(token.For):
		p.expect(token.LParen)
		init := p.assignment()
		p.expect(token.Semi)
		cond := p.condition()
		p.expect(token.Semi)
		incr := p.assignment()
		p.expect(token.RParen)
		return ast.NewFor(tok, init, cond, incr, p.statement())

	case p.match(token.If):
		p.expect(token.LParen)
		cond := p.condition()
		p.expect(token.RParen)
		then := p.statement()
		var els *ast.Node
		if p.match(token.Else) {
			els = p.statement()
		}
		return ast.NewIf(tok, cond, then, els)
	}

	stmt := p.assignment()
	p.expect(token.Semi)
	return stmt
}
