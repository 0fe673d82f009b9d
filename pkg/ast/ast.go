// Package ast defines the checked syntax tree handed to the code generator
package ast

import (
	"io"

	"github.com/sanity-io/litter"
	"github.com/xplshn/scc/pkg/scope"
	"github.com/xplshn/scc/pkg/token"
	"github.com/xplshn/scc/pkg/types"
)

// NodeType defines the kind of a node in the AST
type NodeType int

// Node types enum
const (
	// Expressions
	Number NodeType = iota
	String
	Ident
	Add
	Sub
	Mul
	Div
	Rem
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	LogicalAnd
	LogicalOr
	Not
	Negate
	Dereference
	Address
	Cast
	Field
	Call

	// Statements
	Assignment
	Block
	Simple
	If
	While
	For
	Return

	// Declarations
	Procedure
)

// NoReg marks a node whose value is not held in any register.
const NoReg = -1

// Node represents a node in the Abstract Syntax Tree
type Node struct {
	Type NodeType
	Tok  token.Token
	Data interface{}
	Typ  types.Type

	// Set by the code generator
	Reg    int
	Offset int // frame slot the value was spilled to, or 0

	HasCall bool // the subtree contains a call
}

// --- Node Data Structs ---
type NumberNode struct{ Value int64 }
type StringNode struct{ Value string }
type IdentNode struct{ Symbol *scope.Symbol }
type BinaryNode struct{ Left, Right *Node }
type UnaryNode struct{ Expr *Node }
type CastNode struct{ Expr *Node }
type FieldNode struct {
	Expr   *Node
	Member *scope.Symbol
}
type CallNode struct {
	Callee *Node
	Args   []*Node
}
type AssignmentNode struct{ Left, Right *Node }
type BlockNode struct {
	Decls *scope.Scope
	Stmts []*Node
}
type SimpleNode struct{ Expr *Node }
type IfNode struct{ Cond, Then, Else *Node }
type WhileNode struct{ Cond, Body *Node }
type ForNode struct{ Init, Cond, Incr, Body *Node }
type ReturnNode struct{ Expr *Node }

// ProcedureNode is a function definition. Its parameters are the first
// symbols of the body's declarations.
type ProcedureNode struct {
	Symbol *scope.Symbol
	Body   *Node
}

// --- Node Constructors ---

func newNode(tok token.Token, nodeType NodeType, data interface{}, typ types.Type, children ...*Node) *Node {
	node := &Node{Type: nodeType, Tok: tok, Data: data, Typ: typ, Reg: NoReg}
	for _, child := range children {
		if child != nil && child.HasCall {
			node.HasCall = true
		}
	}
	return node
}

func NewNumber(tok token.Token, value int64) *Node {
	return newNode(tok, Number, NumberNode{Value: value}, types.Integer)
}

// NewString creates a string literal. Its type counts the terminating NUL.
func NewString(tok token.Token, value string) *Node {
	return newNode(tok, String, StringNode{Value: value}, types.NewArray("char", 0, len(value)+1))
}

func NewIdent(tok token.Token, sym *scope.Symbol) *Node {
	return newNode(tok, Ident, IdentNode{Symbol: sym}, sym.Type)
}

// NewBinary creates one of the binary operator kinds, Add through LogicalOr.
func NewBinary(tok token.Token, kind NodeType, left, right *Node, typ types.Type) *Node {
	return newNode(tok, kind, BinaryNode{Left: left, Right: right}, typ, left, right)
}

// NewUnary creates a Not, Negate, Dereference or Address node.
func NewUnary(tok token.Token, kind NodeType, expr *Node, typ types.Type) *Node {
	return newNode(tok, kind, UnaryNode{Expr: expr}, typ, expr)
}

func NewCast(tok token.Token, expr *Node, typ types.Type) *Node {
	return newNode(tok, Cast, CastNode{Expr: expr}, typ, expr)
}

func NewField(tok token.Token, expr *Node, member *scope.Symbol, typ types.Type) *Node {
	return newNode(tok, Field, FieldNode{Expr: expr, Member: member}, typ, expr)
}

func NewCall(tok token.Token, callee *Node, args []*Node, typ types.Type) *Node {
	node := newNode(tok, Call, CallNode{Callee: callee, Args: args}, typ, callee)
	node.HasCall = true
	return node
}

func NewAssignment(tok token.Token, left, right *Node) *Node {
	return newNode(tok, Assignment, AssignmentNode{Left: left, Right: right}, left.Typ, left, right)
}

func NewBlock(tok token.Token, decls *scope.Scope, stmts []*Node) *Node {
	return newNode(tok, Block, BlockNode{Decls: decls, Stmts: stmts}, types.Err, stmts...)
}

func NewSimple(tok token.Token, expr *Node) *Node {
	return newNode(tok, Simple, SimpleNode{Expr: expr}, types.Err, expr)
}

func NewIf(tok token.Token, cond, then, els *Node) *Node {
	return newNode(tok, If, IfNode{Cond: cond, Then: then, Else: els}, types.Err, cond, then, els)
}

func NewWhile(tok token.Token, cond, body *Node) *Node {
	return newNode(tok, While, WhileNode{Cond: cond, Body: body}, types.Err, cond, body)
}

func NewFor(tok token.Token, init, cond, incr, body *Node) *Node {
	return newNode(tok, For, ForNode{Init: init, Cond: cond, Incr: incr, Body: body}, types.Err, init, cond, incr, body)
}

func NewReturn(tok token.Token, expr *Node) *Node {
	return newNode(tok, Return, ReturnNode{Expr: expr}, types.Err, expr)
}

func NewProcedure(tok token.Token, sym *scope.Symbol, body *Node) *Node {
	return newNode(tok, Procedure, ProcedureNode{Symbol: sym, Body: body}, sym.Type, body)
}

// IsBinary reports whether t is one of the binary operator kinds.
func (t NodeType) IsBinary() bool { return t >= Add && t <= LogicalOr }

// IsComparison reports whether t is a relational or equality operator.
func (t NodeType) IsComparison() bool { return t >= Lt && t <= Ne }

// Params returns the parameter symbols of a procedure.
func (p ProcedureNode) Params() []*scope.Symbol {
	n := 0
	if p.Symbol.Type.Params != nil {
		n = len(*p.Symbol.Type.Params)
	}
	decls := p.Body.Data.(BlockNode).Decls.Symbols()
	if n > len(decls) {
		n = len(decls)
	}
	return decls[:n]
}

// Dump writes a readable rendering of the tree rooted at node.
func Dump(w io.Writer, node *Node) {
	opts := litter.Options{
		HidePrivateFields: true,
		HideZeroValues:    true,
		Compact:           false,
		StripPackageNames: true,
	}
	io.WriteString(w, opts.Sdump(node))
	io.WriteString(w, "\n")
}
