package codegen

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type stringEntry struct {
	value string
	label Label
}

// StringTable interns string literals. Each distinct value gets one label,
// and entries are kept in the order they were first used.
type StringTable struct {
	buckets map[uint64][]*stringEntry
	entries []*stringEntry
}

func NewStringTable() *StringTable {
	return &StringTable{buckets: make(map[uint64][]*stringEntry)}
}

// Label returns the label of value, calling next to create one the first
// time value is seen.
func (t *StringTable) Label(value string, next func() Label) Label {
	h := xxhash.Sum64String(value)
	for _, e := range t.buckets[h] {
		if e.value == value {
			return e.label
		}
	}
	e := &stringEntry{value: value, label: next()}
	t.buckets[h] = append(t.buckets[h], e)
	t.entries = append(t.entries, e)
	return e.label
}

func (t *StringTable) Len() int { return len(t.entries) }

// writeData emits one .asciz directive per entry.
func (t *StringTable) writeData(out *strings.Builder) {
	for _, e := range t.entries {
		fmt.Fprintf(out, "%s:\t.asciz\t\"%s\"\n", e.label, escape(e.value))
	}
}

// escape renders s for a quoted assembler string.
func escape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '"' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&sb, "\\%03o", c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
