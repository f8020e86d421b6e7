package sema

import (
	"errors"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/source"
	"spice/internal/symbols"
	"spice/internal/types"
)

var primitiveBases = map[ast.BaseKind]types.SuperType{
	ast.BaseDouble: types.TyDouble,
	ast.BaseInt:    types.TyInt,
	ast.BaseShort:  types.TyShort,
	ast.BaseLong:   types.TyLong,
	ast.BaseByte:   types.TyByte,
	ast.BaseChar:   types.TyChar,
	ast.BaseString: types.TyString,
	ast.BaseBool:   types.TyBool,
	ast.BaseDyn:    types.TyDyn,
}

// resolveType turns a written type into its canonical form. Names are looked
// up in tbl; bindings replace generic placeholders.
func (tc *typeChecker) resolveType(dt *ast.DataType, tbl *symbols.Table, bindings map[string]*types.Type) *types.Type {
	if dt == nil {
		return tc.prim(types.TyDyn)
	}
	var t *types.Type
	switch dt.Base {
	case ast.BaseNamed:
		t = tc.resolveNamed(dt, tbl, bindings)
	case ast.BaseFunction:
		ret := tc.resolveType(dt.Return, tbl, bindings)
		t = tc.reg.Function(ret, tc.resolveTypes(dt.Params, tbl, bindings))
	case ast.BaseProcedure:
		t = tc.reg.Procedure(tc.resolveTypes(dt.Params, tbl, bindings))
	default:
		super, ok := primitiveBases[dt.Base]
		if !ok {
			tc.failf(dt.Loc, diag.SemUnknownDatatype, "Unknown datatype '%s'", dt.String())
		}
		t = tc.prim(super)
	}
	for _, s := range dt.Suffixes {
		var err error
		switch s.Kind {
		case ast.SuffixPtr:
			t, err = t.ToPointer()
		case ast.SuffixRef:
			t, err = t.ToReference()
		case ast.SuffixArray:
			if s.Size < 0 {
				tc.failf(dt.Loc, diag.SemArraySizeInvalid, "The array size must be positive")
			}
			t, err = t.ToArray(s.Size)
		}
		if err != nil {
			tc.typeError(dt.Loc, err)
		}
	}
	return t
}

func (tc *typeChecker) resolveTypes(list []*ast.DataType, tbl *symbols.Table, bindings map[string]*types.Type) []*types.Type {
	if len(list) == 0 {
		return nil
	}
	out := make([]*types.Type, len(list))
	for i, dt := range list {
		out[i] = tc.resolveType(dt, tbl, bindings)
	}
	return out
}

// typeError converts an illegal type composition into a located error.
func (tc *typeChecker) typeError(loc source.CodeLoc, err error) {
	var te *types.TypeError
	if !errors.As(err, &te) {
		panic(err)
	}
	code := diag.SemUnknownDatatype
	switch te.Kind {
	case types.ErrDynPointer, types.ErrDynReference, types.ErrRefPointer:
		code = diag.SemDynPointersNotAllowed
	case types.ErrDynArray:
		code = diag.SemDynArraysNotAllowed
	}
	tc.failf(loc, code, "%s", te.Message)
}

func (tc *typeChecker) resolveNamed(dt *ast.DataType, tbl *symbols.Table, bindings map[string]*types.Type) *types.Type {
	name := dt.Name()
	home := tbl
	if q := dt.Qualifier(); q != "" {
		imp, ok := tbl.Imports[q]
		if !ok {
			tc.failf(dt.Loc, diag.SemUnknownDatatype, "Unknown import '%s'", q)
		}
		imp.Entry.Use()
		home = imp.Table
	} else {
		if b, ok := bindings[name]; ok {
			return b
		}
		if g, ok := tbl.Generics[name]; ok {
			return g.Type
		}
	}
	args := tc.resolveTypes(dt.Templates, tbl, bindings)
	if s, ok := home.Structs[name]; ok {
		tc.checkVisible(dt.Loc, home, tbl, s.Spec, name)
		return tc.structType(s, args, dt.Loc)
	}
	if i, ok := home.Interfaces[name]; ok {
		tc.checkVisible(dt.Loc, home, tbl, i.Spec, name)
		return tc.interfaceType(i, args, dt.Loc)
	}
	if e, ok := home.Enums[name]; ok {
		tc.checkVisible(dt.Loc, home, tbl, e.Spec, name)
		return e.Type
	}
	tc.failf(dt.Loc, diag.SemUnknownDatatype, "Unknown datatype '%s'", dt.String())
	return nil
}

func (tc *typeChecker) checkVisible(loc source.CodeLoc, home, from *symbols.Table, spec types.Specifiers, name string) {
	if home != from && !spec.Has(types.SpecPublic) {
		tc.failf(loc, diag.SemInsufficientVisibility, "Cannot access '%s' due to its private visibility", name)
	}
}

// structType returns the struct type for the given template arguments and
// makes sure a manifestation exists when the arguments are concrete.
func (tc *typeChecker) structType(s *symbols.Struct, args []*types.Type, loc source.CodeLoc) *types.Type {
	if len(args) != len(s.Generics) {
		tc.failf(loc, diag.SemUnknownDatatype, "Struct '%s' expects %d template types, got %d", s.Name, len(s.Generics), len(args))
	}
	if len(args) == 0 {
		return s.Type
	}
	t := tc.reg.Struct(s.Name, s.Type.Origin(), args)
	if !t.HasGenericParts() {
		tc.substantiateStruct(s, args, loc)
	}
	return t
}

func (tc *typeChecker) interfaceType(i *symbols.Interface, args []*types.Type, loc source.CodeLoc) *types.Type {
	if len(args) != len(i.Generics) {
		tc.failf(loc, diag.SemUnknownDatatype, "Interface '%s' expects %d template types, got %d", i.Name, len(i.Generics), len(args))
	}
	if len(args) == 0 {
		return i.Type
	}
	t := tc.reg.Interface(i.Name, i.Type.Origin(), args)
	if !t.HasGenericParts() {
		tc.substantiateInterface(i, args)
	}
	return t
}

// bindGenerics maps the template's placeholders to args, checking the type
// conditions of each generic.
func (tc *typeChecker) bindGenerics(tbl *symbols.Table, generics, args []*types.Type, loc source.CodeLoc) map[string]*types.Type {
	if len(generics) == 0 {
		return nil
	}
	bindings := make(map[string]*types.Type, len(generics))
	for i, g := range generics {
		name := g.SubType()
		if gt, ok := tbl.Generics[name]; ok && !gt.Accepts(args[i]) {
			tc.failf(loc, diag.SemGenericTypeNotInTemplate, "Type '%s' does not satisfy the conditions of generic type '%s'", args[i].Name(), name)
		}
		bindings[name] = args[i]
	}
	return bindings
}

// substantiateStruct returns the manifestation of s for args, creating its
// scope and fields on first use.
func (tc *typeChecker) substantiateStruct(s *symbols.Struct, args []*types.Type, loc source.CodeLoc) *symbols.Struct {
	tbl := tc.tables[s.Type.Origin()]
	t := s.Type
	if len(args) > 0 {
		t = tc.reg.Struct(s.Name, s.Type.Origin(), args)
	}
	mangled := symbols.MangleStruct(t)
	if m, ok := s.Manifestation(mangled); ok {
		return m
	}
	m, _ := s.AddManifestation(&symbols.Struct{
		Name:     s.Name,
		Decl:     s.Decl,
		Spec:     s.Spec,
		Bindings: tc.bindGenerics(tbl, s.Generics, args, loc),
		Type:     t,
		Mangled:  mangled,
		Loc:      s.Loc,
	})
	m.Scope = tbl.Global.EnsureChild(symbols.ScopeStruct, symbols.StructKey(mangled), s.Loc)
	for _, dt := range s.Decl.Interfaces {
		it := tc.resolveType(dt, tbl, m.Bindings)
		if !it.Is(types.TyInterface) {
			tc.failf(dt.Loc, diag.SemExpectedType, "Struct '%s' can only implement interfaces, '%s' is none", s.Name, it.Name())
		}
		m.Interfaces = append(m.Interfaces, tc.lookupInterface(it))
	}
	for _, f := range s.Decl.Fields {
		ft := tc.resolveType(f.Type, tbl, m.Bindings)
		if ft.Is(types.TyDyn) {
			tc.failf(f.Loc, diag.SemUnexpectedDynType, "Field '%s' needs a concrete type", f.Name)
		}
		entry, ok := m.Scope.Insert(f.Name, types.Qual(ft, f.Type.Spec), f, f.Loc)
		if !ok {
			tc.failf(f.Loc, diag.SemVariableDeclaredTwice, "The field '%s' was declared more than once", f.Name)
		}
		entry.Flags |= symbols.FlagField
		entry.Initialize()
	}
	if tc.methodsDeclared || tbl != tc.table {
		tc.bindMethods(m)
	}
	if tc.declared {
		tc.reAnalyze = true
	}
	return m
}

func (tc *typeChecker) substantiateInterface(i *symbols.Interface, args []*types.Type) *symbols.Interface {
	tbl := tc.tables[i.Type.Origin()]
	t := i.Type
	if len(args) > 0 {
		t = tc.reg.Interface(i.Name, i.Type.Origin(), args)
	}
	bindings := tc.bindGenerics(tbl, i.Generics, args, i.Loc)
	m := &symbols.Interface{
		Name:     i.Name,
		Decl:     i.Decl,
		Spec:     i.Spec,
		Bindings: bindings,
		Type:     t,
		Mangled:  t.Mangled(),
		Loc:      i.Loc,
	}
	for _, meth := range i.Methods {
		sub := symbols.Method{Name: meth.Name, IsProc: meth.IsProc, Loc: meth.Loc}
		sub.Return = symbols.Substitute(meth.Return, bindings)
		for _, p := range meth.Params {
			sub.Params = append(sub.Params, symbols.Substitute(p, bindings))
		}
		m.Methods = append(m.Methods, sub)
	}
	m, _ = i.AddManifestation(m)
	return m
}

// bindMethods creates the method manifestations of a concrete struct
// manifestation. Methods with templates of their own are bound at call sites.
func (tc *typeChecker) bindMethods(m *symbols.Struct) {
	if m.Type.HasGenericParts() || len(m.Methods) > 0 {
		return
	}
	tbl := tc.tables[m.Type.Origin()]
	for _, tmpl := range tbl.FunctionTemplates() {
		if tmpl.Decl == nil || tmpl.Decl.Receiver != m.Name || len(tmpl.Generics) > 0 {
			continue
		}
		tc.manifestFunction(tbl, tmpl, m, m.Bindings)
	}
	tc.addImplicitMembers(m)
}

// addImplicitMembers records the default ctor, dtor and copy ctor the
// generator synthesizes when user code did not declare them.
func (tc *typeChecker) addImplicitMembers(m *symbols.Struct) {
	self := m.Type.MustPointer()
	for _, sm := range []struct {
		name   string
		params []*types.Type
	}{
		{ast.CtorName, nil},
		{ast.DtorName, nil},
		{ast.CopyName, []*types.Type{self}},
	} {
		if m.SpecialMember(sm.name, len(sm.params)) != nil {
			continue
		}
		fn := &symbols.Function{
			Name:     sm.name,
			IsProc:   true,
			Receiver: m,
			Implicit: true,
			Mangled:  symbols.MangleFunction(true, m.Type, sm.name, nil, sm.params),
			Loc:      m.Loc,
		}
		for _, p := range sm.params {
			fn.Params = append(fn.Params, symbols.Param{Name: "other", Type: p, Loc: m.Loc})
		}
		m.Methods = append(m.Methods, fn)
	}
}

// lookupStruct finds the existing manifestation behind a struct type.
func (tc *typeChecker) lookupStruct(t *types.Type) *symbols.Struct {
	if t == nil || !t.Is(types.TyStruct) {
		return nil
	}
	tbl, ok := tc.tables[t.Origin()]
	if !ok {
		return nil
	}
	s, ok := tbl.Structs[t.SubType()]
	if !ok {
		return nil
	}
	m, _ := s.Manifestation(symbols.MangleStruct(t))
	return m
}

// lookupInterface returns the manifestation behind an interface type,
// creating it for concrete template arguments.
func (tc *typeChecker) lookupInterface(t *types.Type) *symbols.Interface {
	if t == nil || !t.Is(types.TyInterface) {
		return nil
	}
	tbl, ok := tc.tables[t.Origin()]
	if !ok {
		return nil
	}
	i, ok := tbl.Interfaces[t.SubType()]
	if !ok {
		return nil
	}
	for _, m := range i.Manifestations() {
		if m.Type == t {
			return m
		}
	}
	if t.HasGenericParts() {
		return nil
	}
	return tc.substantiateInterface(i, t.Templates())
}

// implements backs the struct-to-interface pointer conversion rule.
func (tc *typeChecker) implements(structType, ifaceType *types.Type) bool {
	s := tc.lookupStruct(structType)
	i := tc.lookupInterface(ifaceType)
	return s != nil && i != nil && s.Implements(i)
}

// markUsed flags the struct behind t (through pointers and arrays) as used.
func (tc *typeChecker) markUsed(t *types.Type) {
	if t == nil {
		return
	}
	base := t.Base()
	switch base.Super() {
	case types.TyStruct:
		if s := tc.lookupStruct(base); s != nil {
			s.Used = true
			s.Template.Used = true
		}
	case types.TyInterface:
		if i := tc.lookupInterface(base); i != nil {
			i.Used = true
			i.Template.Used = true
		}
	}
}
