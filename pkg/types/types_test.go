package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type layouts map[string]int

func (l layouts) StructSize(tag string) (int, bool) {
	n, ok := l[tag]
	return n, ok
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same int scalar", NewScalar("int", 0), NewScalar("int", 0), true},
		{"different indirection", NewScalar("int", 0), NewScalar("int", 1), false},
		{"different specifier", NewScalar("int", 0), NewScalar("char", 0), false},
		{"arrays of different length", NewArray("char", 0, 10), NewArray("char", 0, 20), false},
		{"arrays of same length", NewArray("char", 0, 10), NewArray("char", 0, 10), true},
		{"errors are equal", Err, Type{Kind: Error, Specifier: "int", Indirection: 3}, true},
		{"error is not int", Err, Integer, false},
		{"scalar is not array", NewScalar("char", 1), NewArray("char", 0, 1), false},
		{"unknown params match known", NewFunction("int", 0, nil), NewFunction("int", 0, KnownParams(Integer)), true},
		{"param lists differ", NewFunction("int", 0, KnownParams(Integer)), NewFunction("int", 0, KnownParams()), false},
		{"param types differ", NewFunction("int", 0, KnownParams(Integer)), NewFunction("int", 0, KnownParams(NewScalar("char", 1))), false},
		{"function is not callback", NewFunction("int", 0, nil), NewCallback("int", 0, nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestPromote(t *testing.T) {
	assert.True(t, NewArray("char", 0, 8).Promote().Equal(NewScalar("char", 1)))
	assert.True(t, NewArray("int", 2, 3).Promote().Equal(NewScalar("int", 3)))

	for _, typ := range []Type{Integer, NewScalar("char", 2), NewFunction("int", 0, nil), NewCallback("char", 1, nil), Err} {
		assert.True(t, typ.Promote().Equal(typ), "%s should promote to itself", typ)
	}
}

func TestSize(t *testing.T) {
	l := layouts{"pair": 5}
	assert.Equal(t, 1, NewScalar("char", 0).Size(l))
	assert.Equal(t, 4, Integer.Size(l))
	assert.Equal(t, 4, NewScalar("char", 1).Size(l))
	assert.Equal(t, 4, NewScalar("pair", 2).Size(l))
	assert.Equal(t, 4, NewCallback("int", 0, nil).Size(l))
	assert.Equal(t, 30, NewArray("char", 0, 30).Size(l))
	assert.Equal(t, 40, NewArray("int", 1, 10).Size(l))
	assert.Equal(t, 5, NewScalar("pair", 0).Size(l))
	assert.Equal(t, 15, NewArray("pair", 0, 3).Size(l))

	assert.Panics(t, func() { NewFunction("int", 0, nil).Size(l) })
	assert.Panics(t, func() { Err.Size(l) })
	assert.Panics(t, func() { NewScalar("missing", 0).Size(l) })
}

func TestPredicates(t *testing.T) {
	ptr := NewScalar("int", 1)
	assert.True(t, ptr.IsPointer())
	assert.False(t, ptr.IsInteger())
	assert.True(t, NewScalar("char", 0).IsInteger())
	assert.False(t, NewScalar("node", 0).IsInteger())
	assert.True(t, NewScalar("node", 1).IsStruct())
	assert.False(t, NewScalar("node", 1).IsStructure())
	assert.True(t, NewScalar("node", 0).IsStructure())
	assert.False(t, Err.IsStruct())

	assert.True(t, Integer.IsValue())
	assert.True(t, ptr.IsValue())
	assert.True(t, NewArray("char", 0, 4).IsValue())
	assert.True(t, NewCallback("int", 0, nil).IsValue())
	assert.False(t, NewFunction("int", 0, nil).IsValue())
	assert.False(t, NewScalar("node", 0).IsValue())
	assert.False(t, Err.IsValue())
}

func TestIsCompatibleWith(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"int and char", Integer, NewScalar("char", 0), true},
		{"array and pointer", NewArray("char", 0, 4), NewScalar("char", 1), true},
		{"different pointers", NewScalar("char", 1), NewScalar("int", 1), false},
		{"pointer and int", NewScalar("int", 1), Integer, false},
		{"callback and function", NewCallback("int", 0, nil), NewFunction("int", 0, KnownParams()), true},
		{"callback and int", NewCallback("int", 0, nil), Integer, false},
		{"same structure", NewScalar("node", 0), NewScalar("node", 0), true},
		{"error", Err, Integer, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.IsCompatibleWith(tt.b))
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "int", Integer.String())
	assert.Equal(t, "char **", NewScalar("char", 2).String())
	assert.Equal(t, "struct node *", NewScalar("node", 1).String())
	assert.Equal(t, "int[10]", NewArray("int", 0, 10).String())
	assert.Equal(t, "int(void)", NewFunction("int", 0, KnownParams()).String())
	assert.Equal(t, "char *(*)()", NewCallback("char", 1, nil).String())
	assert.Equal(t, "error", Err.String())
}
