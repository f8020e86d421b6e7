package symbols

import (
	"strings"

	"spice/internal/ast"
	"spice/internal/source"
	"spice/internal/types"
)

// manifests keeps the substantiations of one template in creation order,
// indexed by mangled signature.
type manifests[T any] struct {
	list  []T
	byKey map[string]int
}

func (m *manifests[T]) get(key string) (T, bool) {
	if idx, ok := m.byKey[key]; ok {
		return m.list[idx], true
	}
	var zero T
	return zero, false
}

func (m *manifests[T]) add(key string, v T) int {
	if m.byKey == nil {
		m.byKey = make(map[string]int)
	}
	idx := len(m.list)
	m.byKey[key] = idx
	m.list = append(m.list, v)
	return idx
}

// Param is one resolved function parameter.
type Param struct {
	Name    string
	Type    *types.Type
	Default *ast.Expr
	Loc     source.CodeLoc
}

// Function is either a declared template or one of its manifestations.
// Non-generic functions get exactly one manifestation at declaration time.
type Function struct {
	Name     string
	Decl     *ast.FuncDecl
	Ext      *ast.ExtDecl
	Spec     types.Specifiers
	IsProc   bool
	Return   *types.Type
	Params   []Param
	Variadic bool
	// Generics are the placeholders declared on the function itself.
	Generics []*types.Type
	Bindings map[string]*types.Type
	Receiver *Struct
	Mangled  string
	ManIdx   int
	Scope    *Scope
	Template *Function
	// Implicit marks synthesized ctor, dtor and copy members.
	Implicit bool
	Used     bool
	Analyzed bool
	Loc      source.CodeLoc

	mans manifests[*Function]
}

// IsMethod reports whether the function has a receiver struct.
func (f *Function) IsMethod() bool { return f.Receiver != nil || (f.Decl != nil && f.Decl.IsMethod()) }

// IsExtern reports whether the function is an external C declaration.
func (f *Function) IsExtern() bool { return f.Ext != nil }

// IsTemplate reports whether f is the declared record rather than a manifestation.
func (f *Function) IsTemplate() bool { return f.Template == nil }

// IsFullySubstantiated reports whether no generic placeholder remains in the
// signature.
func (f *Function) IsFullySubstantiated() bool {
	if f.Return != nil && f.Return.HasGenericParts() {
		return false
	}
	for _, p := range f.Params {
		if p.Type.HasGenericParts() {
			return false
		}
	}
	if f.Receiver != nil && f.Receiver.Type.HasGenericParts() {
		return false
	}
	return true
}

// ShouldEmit reports whether IR must be generated for the manifestation.
func (f *Function) ShouldEmit() bool {
	if f.IsTemplate() || f.IsExtern() || !f.IsFullySubstantiated() {
		return false
	}
	return f.Used || f.Spec.Has(types.SpecPublic) || f.Name == "main"
}

// RequiredParams counts parameters without a default value.
func (f *Function) RequiredParams() int {
	n := 0
	for _, p := range f.Params {
		if p.Default == nil {
			n++
		}
	}
	return n
}

// ParamTypes returns the parameter types in order.
func (f *Function) ParamTypes() []*types.Type {
	out := make([]*types.Type, len(f.Params))
	for i, p := range f.Params {
		out[i] = p.Type
	}
	return out
}

// FuncType returns the function or procedure type of the signature.
func (f *Function) FuncType(reg *types.Registry) *types.Type {
	if f.IsProc {
		return reg.Procedure(f.ParamTypes())
	}
	return reg.Function(f.Return, f.ParamTypes())
}

// Manifestations returns the substantiations of a template in creation order.
func (f *Function) Manifestations() []*Function { return f.mans.list }

// Manifestation returns the manifestation with the given mangled name.
func (f *Function) Manifestation(mangled string) (*Function, bool) {
	return f.mans.get(mangled)
}

// AddManifestation registers m under its mangled name and assigns its
// manifestation index. An existing manifestation with the same name wins.
func (f *Function) AddManifestation(m *Function) (*Function, bool) {
	if prev, ok := f.mans.get(m.Mangled); ok {
		return prev, false
	}
	m.Template = f
	m.ManIdx = f.mans.add(m.Mangled, m)
	return m, true
}

// Signature renders the function for diagnostics: `f<int> Pair.sum(int,int)`.
func (f *Function) Signature() string {
	var sb strings.Builder
	if f.IsProc {
		sb.WriteString("p ")
	} else {
		sb.WriteString("f<" + f.Return.Name() + "> ")
	}
	if f.Receiver != nil {
		sb.WriteString(f.Receiver.Type.Name() + ".")
	}
	sb.WriteString(f.Name)
	sb.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.Type.Name())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Struct is a struct template or one manifestation of it.
type Struct struct {
	Name       string
	Decl       *ast.StructDecl
	Spec       types.Specifiers
	Generics   []*types.Type
	Bindings   map[string]*types.Type
	Type       *types.Type
	Interfaces []*Interface
	Mangled    string
	ManIdx     int
	Scope      *Scope
	Template   *Struct
	// Methods are the method manifestations bound to this struct manifestation.
	Methods  []*Function
	Used     bool
	Analyzed bool
	Loc      source.CodeLoc

	mans manifests[*Struct]
}

func (s *Struct) IsTemplate() bool { return s.Template == nil }

// Fields returns the field entries in layout order.
func (s *Struct) Fields() []*Entry { return s.Scope.Fields() }

// Field returns the field called name.
func (s *Struct) Field(name string) *Entry {
	if e := s.Scope.LookupStrict(name); e != nil && e.Has(FlagField) {
		return e
	}
	return nil
}

// MethodsNamed returns the method manifestations called name.
func (s *Struct) MethodsNamed(name string) []*Function {
	var out []*Function
	for _, m := range s.Methods {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// SpecialMember returns the ctor, dtor or copy method matching the parameter
// count, nil when the user declared none.
func (s *Struct) SpecialMember(name string, params int) *Function {
	for _, m := range s.MethodsNamed(name) {
		if len(m.Params) == params {
			return m
		}
	}
	return nil
}

// HasVTable reports whether instances carry interface dispatch slots.
func (s *Struct) HasVTable() bool { return len(s.Interfaces) > 0 }

// Implements reports whether the struct conforms to iface.
func (s *Struct) Implements(iface *Interface) bool {
	for _, i := range s.Interfaces {
		if i == iface || i.Type == iface.Type {
			return true
		}
	}
	return false
}

func (s *Struct) Manifestations() []*Struct { return s.mans.list }

func (s *Struct) Manifestation(mangled string) (*Struct, bool) {
	return s.mans.get(mangled)
}

// AddManifestation registers m under its mangled name.
func (s *Struct) AddManifestation(m *Struct) (*Struct, bool) {
	if prev, ok := s.mans.get(m.Mangled); ok {
		return prev, false
	}
	m.Template = s
	m.ManIdx = s.mans.add(m.Mangled, m)
	return m, true
}

// Method is one interface method signature.
type Method struct {
	Name   string
	IsProc bool
	Return *types.Type
	Params []*types.Type
	Loc    source.CodeLoc
}

// Interface is an interface template or one manifestation of it.
type Interface struct {
	Name     string
	Decl     *ast.InterfaceDecl
	Spec     types.Specifiers
	Generics []*types.Type
	Bindings map[string]*types.Type
	Type     *types.Type
	Methods  []Method
	Mangled  string
	Template *Interface
	Used     bool
	Loc      source.CodeLoc

	mans manifests[*Interface]
}

func (i *Interface) IsTemplate() bool { return i.Template == nil }

// MethodIndex returns the vtable position of the named method, or -1.
func (i *Interface) MethodIndex(name string) int {
	for idx, m := range i.Methods {
		if m.Name == name {
			return idx
		}
	}
	return -1
}

func (i *Interface) Manifestations() []*Interface { return i.mans.list }

// AddManifestation registers m under its mangled name.
func (i *Interface) AddManifestation(m *Interface) (*Interface, bool) {
	if prev, ok := i.mans.get(m.Mangled); ok {
		return prev, false
	}
	m.Template = i
	i.mans.add(m.Mangled, m)
	return m, true
}

// Enum is a declared enumeration. Its items are entries of Scope.
type Enum struct {
	Name  string
	Decl  *ast.EnumDecl
	Spec  types.Specifiers
	Type  *types.Type
	Scope *Scope
	Used  bool
	Loc   source.CodeLoc
}

// Item returns the entry of the named item.
func (e *Enum) Item(name string) *Entry { return e.Scope.LookupStrict(name) }

// GenericType is `type T dyn;` or `type T int|long;`.
type GenericType struct {
	Name       string
	Type       *types.Type
	Conditions []*types.Type
	Loc        source.CodeLoc
}

// Accepts reports whether t may be bound to the generic.
func (g *GenericType) Accepts(t *types.Type) bool {
	if len(g.Conditions) == 0 {
		return true
	}
	for _, c := range g.Conditions {
		if c == t || c.Matches(t, true) {
			return true
		}
	}
	return false
}

// Import is one `import "path" as alias;`.
type Import struct {
	Alias string
	Path  string
	Entry *Entry
	Table *Table
	Loc   source.CodeLoc
}
