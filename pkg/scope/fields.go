package scope

// Fields maps structure tags to the scope holding their members. Tables
// outlive the block that declared them.
type Fields struct {
	tables map[string]*Scope
}

func NewFields() *Fields { return &Fields{tables: make(map[string]*Scope)} }

// Has reports whether tag has a registered field table, i.e. is complete.
func (f *Fields) Has(tag string) bool {
	_, ok := f.tables[tag]
	return ok
}

func (f *Fields) Get(tag string) *Scope { return f.tables[tag] }

func (f *Fields) Delete(tag string) { delete(f.tables, tag) }

// Register installs table under tag and lays out its members back to back,
// in declaration order and without padding.
func (f *Fields) Register(tag string, table *Scope) {
	offset := 0
	for _, sym := range table.Symbols() {
		sym.Offset = offset
		if n, ok := sizeOf(f, sym); ok {
			offset += n
		}
	}
	f.tables[tag] = table
}

// Member returns the named field of tag, or nil.
func (f *Fields) Member(tag, name string) *Symbol {
	if table, ok := f.tables[tag]; ok {
		return table.Find(name)
	}
	return nil
}

// StructSize is the sum of the field sizes of tag.
func (f *Fields) StructSize(tag string) (int, bool) {
	table, ok := f.tables[tag]
	if !ok {
		return 0, false
	}
	size := 0
	for _, sym := range table.Symbols() {
		if n, ok := sizeOf(f, sym); ok {
			size += n
		}
	}
	return size, true
}

// sizeOf guards against members whose own size cannot be computed, such as
// an incomplete structure already reported by the checker.
func sizeOf(f *Fields, sym *Symbol) (n int, ok bool) {
	t := sym.Type
	if t.IsError() || t.IsFunction() {
		return 0, false
	}
	if t.IsStruct() && t.Indirection == 0 && !f.Has(t.Specifier) {
		return 0, false
	}
	return t.Size(f), true
}
