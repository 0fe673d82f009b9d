// Package types models the types of Simple C: scalars and pointers over int,
// char and structure tags, fixed-size arrays, functions, callbacks (function
// pointer variables) and the error type used to silence cascading diagnostics.
package types

import (
	"fmt"
	"strings"
)

type Kind int

const (
	Error Kind = iota
	Scalar
	Array
	Function
	Callback
)

const (
	SizeofChar    = 1
	SizeofInt     = 4
	SizeofPointer = 4
)

// Parameters is the ordered parameter list of a function or callback. A nil
// *Parameters means the list is unknown, as in a declaration written "f()".
type Parameters []Type

// Type is an immutable value. Copies share the parameter list, which is never
// modified after construction.
type Type struct {
	Kind        Kind
	Specifier   string
	Indirection int
	Length      int
	Params      *Parameters
}

// Layouts supplies the size of structure types by tag.
type Layouts interface {
	StructSize(tag string) (int, bool)
}

var (
	Err     = Type{Kind: Error, Specifier: "error"}
	Integer = NewScalar("int", 0)
)

func NewScalar(specifier string, indirection int) Type {
	return Type{Kind: Scalar, Specifier: specifier, Indirection: indirection}
}

func NewArray(specifier string, indirection, length int) Type {
	return Type{Kind: Array, Specifier: specifier, Indirection: indirection, Length: length}
}

func NewFunction(specifier string, indirection int, params *Parameters) Type {
	return Type{Kind: Function, Specifier: specifier, Indirection: indirection, Params: params}
}

func NewCallback(specifier string, indirection int, params *Parameters) Type {
	return Type{Kind: Callback, Specifier: specifier, Indirection: indirection, Params: params}
}

// KnownParams wraps a parameter list so that an empty list ("f(void)") is
// distinguishable from an unknown one.
func KnownParams(params ...Type) *Parameters {
	p := Parameters(params)
	return &p
}

func (t Type) IsError() bool    { return t.Kind == Error }
func (t Type) IsScalar() bool   { return t.Kind == Scalar }
func (t Type) IsArray() bool    { return t.Kind == Array }
func (t Type) IsFunction() bool { return t.Kind == Function }
func (t Type) IsCallback() bool { return t.Kind == Callback }

// IsStruct reports whether the specifier is a structure tag, at any
// indirection.
func (t Type) IsStruct() bool {
	return t.Kind != Error && t.Specifier != "int" && t.Specifier != "char"
}

// IsStructure reports a structure held by value.
func (t Type) IsStructure() bool { return t.IsStruct() && t.Indirection == 0 && t.Kind != Function && t.Kind != Callback }

func (t Type) IsPointer() bool { return t.Kind == Scalar && t.Indirection > 0 }

func (t Type) IsInteger() bool {
	return t.Kind == Scalar && t.Indirection == 0 && (t.Specifier == "int" || t.Specifier == "char")
}

// Promote decays an array to a pointer to its element type. Every other type
// promotes to itself.
func (t Type) Promote() Type {
	if t.Kind == Array {
		return NewScalar(t.Specifier, t.Indirection+1)
	}
	return t
}

// IsValue reports whether a promoted operand is usable as an rvalue: an
// integer, a pointer or a callback. Functions and structures held by value
// are not.
func (t Type) IsValue() bool {
	p := t.Promote()
	switch p.Kind {
	case Scalar:
		return !p.IsStructure()
	case Callback:
		return true
	}
	return false
}

// IsCompatibleWith compares two types after promotion: int and char mix
// freely, everything else must agree on specifier and indirection. A
// function or callback is only compatible with another function or callback.
func (t Type) IsCompatibleWith(other Type) bool {
	a, b := t.Promote(), other.Promote()
	if a.IsError() || b.IsError() {
		return false
	}
	if a.IsInteger() && b.IsInteger() {
		return true
	}
	if a.isFunctionLike() != b.isFunctionLike() {
		return false
	}
	return a.Specifier == b.Specifier && a.Indirection == b.Indirection
}

func (t Type) isFunctionLike() bool { return t.Kind == Function || t.Kind == Callback }

func (t Type) Equal(other Type) bool {
	if t.Kind == Error || other.Kind == Error {
		return t.Kind == other.Kind
	}
	if t.Kind != other.Kind || t.Specifier != other.Specifier || t.Indirection != other.Indirection {
		return false
	}
	switch t.Kind {
	case Array:
		return t.Length == other.Length
	case Function, Callback:
		if t.Params == nil || other.Params == nil {
			return true
		}
		if len(*t.Params) != len(*other.Params) {
			return false
		}
		for i, p := range *t.Params {
			if !p.Equal((*other.Params)[i]) {
				return false
			}
		}
	}
	return true
}

// Size is the storage size in bytes. Functions and the error type have no
// size; asking for one is a programming error.
func (t Type) Size(layouts Layouts) int {
	switch t.Kind {
	case Error, Function:
		panic(fmt.Sprintf("size of %s requested", t))
	case Callback:
		return SizeofPointer
	case Array:
		return t.Length * NewScalar(t.Specifier, t.Indirection).Size(layouts)
	}
	if t.Indirection > 0 {
		return SizeofPointer
	}
	switch t.Specifier {
	case "char":
		return SizeofChar
	case "int":
		return SizeofInt
	}
	if layouts != nil {
		if n, ok := layouts.StructSize(t.Specifier); ok {
			return n
		}
	}
	panic(fmt.Sprintf("size of incomplete type %s requested", t))
}

func (t Type) String() string {
	if t.Kind == Error {
		return "error"
	}
	var sb strings.Builder
	if t.IsStruct() {
		sb.WriteString("struct ")
	}
	sb.WriteString(t.Specifier)
	if t.Indirection > 0 {
		sb.WriteString(" " + strings.Repeat("*", t.Indirection))
	}
	switch t.Kind {
	case Array:
		fmt.Fprintf(&sb, "[%d]", t.Length)
	case Function, Callback:
		if t.Kind == Callback {
			sb.WriteString("(*)")
		}
		sb.WriteString("(")
		if t.Params != nil {
			if len(*t.Params) == 0 {
				sb.WriteString("void")
			}
			for i, p := range *t.Params {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(p.String())
			}
		}
		sb.WriteString(")")
	}
	return sb.String()
}
