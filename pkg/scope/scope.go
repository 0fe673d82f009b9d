package scope

import (
	"github.com/xplshn/scc/pkg/types"
)

// GlobalOffset marks a symbol that lives in static storage and is addressed
// by name rather than relative to the frame pointer.
const GlobalOffset = 0

type Symbol struct {
	Name    string
	Type    types.Type
	Defined bool
	// Offset is assigned by the generator: negative for locals, positive for
	// parameters, GlobalOffset for globals. For structure fields it is the
	// byte offset of the field within the structure.
	Offset int
}

func NewSymbol(name string, typ types.Type) *Symbol {
	return &Symbol{Name: name, Type: typ, Offset: GlobalOffset}
}

// Scope is an ordered list of symbols chained to its enclosing scope.
type Scope struct {
	enclosing *Scope
	symbols   []*Symbol
}

func New(enclosing *Scope) *Scope { return &Scope{enclosing: enclosing} }

func (s *Scope) Enclosing() *Scope { return s.enclosing }

// Symbols returns the symbols in declaration order.
func (s *Scope) Symbols() []*Symbol { return s.symbols }

func (s *Scope) Insert(sym *Symbol) { s.symbols = append(s.symbols, sym) }

func (s *Scope) Remove(name string) {
	for i, sym := range s.symbols {
		if sym.Name == name {
			s.symbols = append(s.symbols[:i], s.symbols[i+1:]...)
			return
		}
	}
}

// Find searches only this scope.
func (s *Scope) Find(name string) *Symbol {
	for _, sym := range s.symbols {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// Lookup searches this scope and then each enclosing one.
func (s *Scope) Lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.enclosing {
		if sym := sc.Find(name); sym != nil {
			return sym
		}
	}
	return nil
}
