package symbols

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"spice/internal/source"
)

// Hints provide optional capacity suggestions for the declaration registries.
type Hints struct{ Funcs, Structs uint }

// Table is the symbol table of one source file: the scope tree rooted at
// Global plus the registries of declared templates.
type Table struct {
	File   source.FileID
	Path   string
	Global *Scope

	Structs    map[string]*Struct
	Interfaces map[string]*Interface
	Enums      map[string]*Enum
	Generics   map[string]*GenericType
	Imports    map[string]*Import
	// Funcs maps `name` or `Struct.name` to the overloaded templates.
	Funcs map[string][]*Function

	funcOrder   []*Function
	structOrder []*Struct
	ifaceOrder  []*Interface
	importOrder []*Import
}

// NewTable builds an empty table for the file at path.
func NewTable(h Hints, file source.FileID, path string) *Table {
	funcCap, err := safecast.Conv[int](h.Funcs)
	if err != nil {
		panic(fmt.Errorf("function capacity overflow: %w", err))
	}
	structCap, err := safecast.Conv[int](h.Structs)
	if err != nil {
		panic(fmt.Errorf("struct capacity overflow: %w", err))
	}
	t := &Table{
		File:       file,
		Path:       path,
		Structs:    make(map[string]*Struct, structCap),
		Interfaces: make(map[string]*Interface),
		Enums:      make(map[string]*Enum),
		Generics:   make(map[string]*GenericType),
		Imports:    make(map[string]*Import),
		Funcs:      make(map[string][]*Function, funcCap),
	}
	t.Global = newScope(t, ScopeGlobal, "", nil, source.CodeLoc{Path: path})
	return t
}

// AddFunction registers a function template under key.
func (t *Table) AddFunction(key string, f *Function) {
	t.Funcs[key] = append(t.Funcs[key], f)
	t.funcOrder = append(t.funcOrder, f)
}

// AddStruct registers a struct template. It reports false on a duplicate.
func (t *Table) AddStruct(s *Struct) bool {
	if _, ok := t.Structs[s.Name]; ok {
		return false
	}
	t.Structs[s.Name] = s
	t.structOrder = append(t.structOrder, s)
	return true
}

// AddInterface registers an interface template. It reports false on a duplicate.
func (t *Table) AddInterface(i *Interface) bool {
	if _, ok := t.Interfaces[i.Name]; ok {
		return false
	}
	t.Interfaces[i.Name] = i
	t.ifaceOrder = append(t.ifaceOrder, i)
	return true
}

// AddImport registers an import. It reports false when the alias is taken.
func (t *Table) AddImport(imp *Import) bool {
	if _, ok := t.Imports[imp.Alias]; ok {
		return false
	}
	t.Imports[imp.Alias] = imp
	t.importOrder = append(t.importOrder, imp)
	return true
}

// FunctionTemplates returns all function templates in declaration order.
func (t *Table) FunctionTemplates() []*Function { return t.funcOrder }

// StructTemplates returns all struct templates in declaration order.
func (t *Table) StructTemplates() []*Struct { return t.structOrder }

// InterfaceTemplates returns all interface templates in declaration order.
func (t *Table) InterfaceTemplates() []*Interface { return t.ifaceOrder }

// ImportList returns the imports in declaration order.
func (t *Table) ImportList() []*Import { return t.importOrder }

// FunctionManifestations returns every manifestation of every template in
// declaration order, followed by creation order.
func (t *Table) FunctionManifestations() []*Function {
	var out []*Function
	for _, f := range t.funcOrder {
		out = append(out, f.Manifestations()...)
	}
	return out
}

// StructManifestations returns every struct manifestation in declaration order.
func (t *Table) StructManifestations() []*Struct {
	var out []*Struct
	for _, s := range t.structOrder {
		out = append(out, s.Manifestations()...)
	}
	return out
}

// Validate walks the scope tree checking structural invariants. Returns nil
// if everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error
	var walk func(s *Scope)
	walk = func(s *Scope) {
		if s.Kind == ScopeInvalid {
			errs = append(errs, fmt.Errorf("scope %s has invalid kind", s))
		}
		if s.Table != t {
			errs = append(errs, fmt.Errorf("scope %s belongs to another table", s))
		}
		for i, e := range s.order {
			if e.Scope != s {
				errs = append(errs, fmt.Errorf("entry %s in scope %s has a foreign owner", e.Name, s))
			}
			if s.entries[e.Name] != e {
				errs = append(errs, fmt.Errorf("entry %s in scope %s missing from name index", e.Name, s))
			}
			if !e.Has(FlagField) && e.Order != i {
				errs = append(errs, fmt.Errorf("entry %s in scope %s has order %d, want %d", e.Name, s, e.Order, i))
			}
		}
		if len(s.entries) != len(s.order) {
			errs = append(errs, fmt.Errorf("scope %s has %d indexed entries but %d ordered", s, len(s.entries), len(s.order)))
		}
		for _, c := range s.capOrder {
			if !s.Kind.IsCaptureBoundary() {
				errs = append(errs, fmt.Errorf("scope %s of kind %s owns captures", s, s.Kind))
			}
			if c.Entry.Scope.IsWithin(s) {
				errs = append(errs, fmt.Errorf("scope %s captures its own entry %s", s, c.Entry.Name))
			}
		}
		for _, c := range s.childOrder {
			if c.Parent != s {
				errs = append(errs, fmt.Errorf("scope %s child %s missing parent backlink", s, c))
			}
			if s.children[c.Key] != c {
				errs = append(errs, fmt.Errorf("scope %s child %s missing from key index", s, c))
			}
			walk(c)
		}
	}
	walk(t.Global)

	for _, f := range t.funcOrder {
		for i, m := range f.Manifestations() {
			if m.Template != f || m.ManIdx != i {
				errs = append(errs, fmt.Errorf("function %s manifestation %s has a broken template link", f.Name, m.Mangled))
			}
		}
	}
	for _, s := range t.structOrder {
		for i, m := range s.Manifestations() {
			if m.Template != s || m.ManIdx != i {
				errs = append(errs, fmt.Errorf("struct %s manifestation %s has a broken template link", s.Name, m.Mangled))
			}
		}
	}
	return errors.Join(errs...)
}
