package vm

import "strings"

// ---------------------------------------------------------------------------
// SymbolTable: Compile-time name -> id registries
// ---------------------------------------------------------------------------

// Registry assigns dense ids to names in first-seen order.
type Registry struct {
	byName map[string]int
	byID   []string
}

func newRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Intern returns the id for name, assigning the next id if it is new.
func (r *Registry) Intern(name string) int {
	if id, ok := r.byName[name]; ok {
		return id
	}
	id := len(r.byID)
	r.byName[name] = id
	r.byID = append(r.byID, name)
	return id
}

// Lookup returns the id for name.
func (r *Registry) Lookup(name string) (int, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Name returns the name for id, or "" if the id is unknown.
func (r *Registry) Name(id int) string {
	if id < 0 || id >= len(r.byID) {
		return ""
	}
	return r.byID[id]
}

// Len returns the number of registered names.
func (r *Registry) Len() int { return len(r.byID) }

// All returns the names in id order.
func (r *Registry) All() []string {
	return append([]string(nil), r.byID...)
}

// SymbolTable holds the registries produced while parsing. The numeric
// and string registries are independent id spaces; Names is the combined
// registry of subroutine and array names.
type SymbolTable struct {
	Numbers *Registry
	Strings *Registry
	Names   *Registry
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Numbers: newRegistry(),
		Strings: newRegistry(),
		Names:   newRegistry(),
	}
}

// SymbolTableFrom rebuilds a table from names in id order.
func SymbolTableFrom(numbers, strs, names []string) *SymbolTable {
	st := NewSymbolTable()
	for _, n := range numbers {
		st.Numbers.Intern(n)
	}
	for _, n := range strs {
		st.Strings.Intern(n)
	}
	for _, n := range names {
		st.Names.Intern(n)
	}
	return st
}

// IsStringName reports whether name carries the string sigil.
func IsStringName(name string) bool {
	return strings.HasSuffix(name, "$")
}

// Variable interns a scalar variable and returns its id and whether it
// lives in the string registry.
func (st *SymbolTable) Variable(name string) (int, bool) {
	if IsStringName(name) {
		return st.Strings.Intern(name), true
	}
	return st.Numbers.Intern(name), false
}

// Clone returns an independent copy. Ids are preserved.
func (st *SymbolTable) Clone() *SymbolTable {
	if st == nil {
		return NewSymbolTable()
	}
	return SymbolTableFrom(st.Numbers.byID, st.Strings.byID, st.Names.byID)
}
