package sema

import (
	"fmt"
	"slices"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

// declareFile is the first run: it puts every top-level symbol of the file
// into the global scope. Type names come first so that signatures and fields
// may reference declarations further down the file.
func (tc *typeChecker) declareFile() {
	decls := tc.file.Decls
	for _, d := range decls {
		if imp, ok := d.(*ast.ImportDecl); ok {
			tc.declareImport(imp)
		}
	}
	for _, d := range decls {
		if g, ok := d.(*ast.GenericTypeDecl); ok {
			tc.declareGeneric(g)
		}
	}
	for _, d := range decls {
		switch d := d.(type) {
		case *ast.StructDecl:
			tc.declareStruct(d)
		case *ast.InterfaceDecl:
			tc.declareInterface(d)
		case *ast.EnumDecl:
			tc.declareEnum(d)
		}
	}
	for _, i := range tc.table.InterfaceTemplates() {
		tc.declareInterfaceMethods(i)
	}
	for _, d := range decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			tc.declareFunction(d)
		case *ast.ExtDecl:
			tc.declareExtern(d)
		}
	}

	// method templates are known now; bind them to every manifestation so far
	for _, s := range tc.table.StructTemplates() {
		if len(s.Generics) == 0 {
			tc.substantiateStruct(s, nil, s.Loc)
		}
	}
	tc.methodsDeclared = true
	for _, s := range tc.table.StructTemplates() {
		for _, m := range s.Manifestations() {
			tc.bindMethods(m)
		}
	}

	for _, d := range decls {
		if g, ok := d.(*ast.GlobalVarDecl); ok {
			tc.declareGlobal(g)
		}
	}
}

func (tc *typeChecker) declareImport(d *ast.ImportDecl) {
	tbl, ok := tc.opts.Imports[d.Path]
	if !ok || tbl == nil {
		tc.failf(d.Loc, diag.SemImportedFileNotExisting, "The source file '%s' was not found", d.Path)
	}
	imp := &symbols.Import{Alias: d.Alias, Path: d.Path, Table: tbl, Loc: d.Loc}
	if !tc.table.AddImport(imp) {
		tc.failf(d.Loc, diag.SemDuplicateImportName, "Duplicate import '%s'", d.Alias)
	}
	entry, ok := tc.table.Global.Insert(d.Alias, types.Qual(tc.reg.Named(types.TyImport, d.Alias, nil), 0), imp, d.Loc)
	if !ok {
		tc.failf(d.Loc, diag.SemDuplicateImportName, "The name '%s' is already taken", d.Alias)
	}
	entry.Flags |= symbols.FlagImport
	entry.Target = tbl.Global
	entry.Initialize()
	imp.Entry = entry
	tc.addTable(tbl)
}

func (tc *typeChecker) declareGeneric(d *ast.GenericTypeDecl) {
	if _, ok := tc.table.Generics[d.Name]; ok {
		tc.failf(d.Loc, diag.SemGenericTypeDeclaredTwice, "Duplicate symbol name '%s'", d.Name)
	}
	g := &symbols.GenericType{Name: d.Name, Type: tc.reg.Generic(d.Name), Loc: d.Loc}
	for _, c := range d.Conditions {
		g.Conditions = append(g.Conditions, tc.resolveType(c, tc.table, nil))
	}
	tc.table.Generics[d.Name] = g
}

// templateParams resolves `<T, U>` of a declaration. Every entry must name a
// declared generic type.
func (tc *typeChecker) templateParams(list []*ast.DataType, tbl *symbols.Table) []*types.Type {
	if len(list) == 0 {
		return nil
	}
	out := make([]*types.Type, 0, len(list))
	for _, dt := range list {
		if dt.Base != ast.BaseNamed || len(dt.Path) != 1 || len(dt.Suffixes) > 0 {
			tc.failf(dt.Loc, diag.SemExpectedGenericType, "A template list can only contain generic types")
		}
		g, ok := tbl.Generics[dt.Name()]
		if !ok {
			tc.failf(dt.Loc, diag.SemExpectedGenericType, "'%s' is not a generic type", dt.Name())
		}
		out = append(out, g.Type)
	}
	return out
}

func (tc *typeChecker) declareTypeName(name string, t *types.Type, spec types.Specifiers, decl any, d ast.Decl) {
	entry, ok := tc.table.Global.Insert(name, types.Qual(t, spec), decl, d.Pos())
	if !ok {
		tc.failf(d.Pos(), diag.SemStructDeclaredTwice, "Duplicate symbol name '%s'", name)
	}
	entry.Flags |= symbols.FlagStruct
	entry.Initialize()
}

func (tc *typeChecker) declareStruct(d *ast.StructDecl) {
	s := &symbols.Struct{
		Name:     d.Name,
		Decl:     d,
		Spec:     d.Spec,
		Generics: tc.templateParams(d.Templates, tc.table),
		Loc:      d.Loc,
	}
	s.Type = tc.reg.Struct(d.Name, tc.table.Path, s.Generics)
	if !tc.table.AddStruct(s) {
		tc.failf(d.Loc, diag.SemStructDeclaredTwice, "Duplicate struct '%s'", d.Name)
	}
	tc.declareTypeName(d.Name, s.Type, d.Spec, s, d)
}

func (tc *typeChecker) declareInterface(d *ast.InterfaceDecl) {
	i := &symbols.Interface{
		Name:     d.Name,
		Decl:     d,
		Spec:     d.Spec,
		Generics: tc.templateParams(d.Templates, tc.table),
		Loc:      d.Loc,
	}
	i.Type = tc.reg.Interface(d.Name, tc.table.Path, i.Generics)
	if !tc.table.AddInterface(i) {
		tc.failf(d.Loc, diag.SemStructDeclaredTwice, "Duplicate interface '%s'", d.Name)
	}
	tc.declareTypeName(d.Name, i.Type, d.Spec, i, d)
}

func (tc *typeChecker) declareInterfaceMethods(i *symbols.Interface) {
	for _, sig := range i.Decl.Methods {
		if i.MethodIndex(sig.Name) >= 0 {
			tc.failf(sig.Loc, diag.SemFunctionDeclaredTwice, "Interface '%s' declares '%s' twice", i.Name, sig.Name)
		}
		m := symbols.Method{Name: sig.Name, IsProc: sig.IsProc, Loc: sig.Loc}
		if !sig.IsProc {
			m.Return = tc.resolveType(sig.Return, tc.table, nil)
		}
		for _, p := range sig.Params {
			m.Params = append(m.Params, tc.resolveType(p, tc.table, nil))
		}
		i.Methods = append(i.Methods, m)
	}
	if len(i.Generics) == 0 {
		tc.substantiateInterface(i, nil)
	}
}

func (tc *typeChecker) declareEnum(d *ast.EnumDecl) {
	if _, ok := tc.table.Enums[d.Name]; ok {
		tc.failf(d.Loc, diag.SemEnumDeclaredTwice, "Duplicate enum '%s'", d.Name)
	}
	e := &symbols.Enum{
		Name: d.Name,
		Decl: d,
		Spec: d.Spec,
		Type: tc.reg.Enum(d.Name, tc.table.Path),
		Loc:  d.Loc,
	}
	e.Scope = tc.table.Global.EnsureChild(symbols.ScopeEnum, symbols.BlockKey(symbols.ScopeEnum, d.Loc), d.Loc)
	tc.table.Enums[d.Name] = e
	tc.declareTypeName(d.Name, e.Type, d.Spec, e, d)

	// explicit values are reserved first; the others take the lowest free numbers
	taken := make(map[int64]bool, len(d.Items))
	for _, item := range d.Items {
		if !item.HasValue {
			continue
		}
		if taken[item.Value] {
			tc.failf(item.Loc, diag.SemDuplicateEnumItemValue, "Duplicate enum item value %d", item.Value)
		}
		taken[item.Value] = true
	}
	next := int64(0)
	for _, item := range d.Items {
		value := item.Value
		if !item.HasValue {
			for taken[next] {
				next++
			}
			value = next
			taken[value] = true
		}
		entry, ok := e.Scope.Insert(item.Name, types.Qual(e.Type, types.SpecConst), item, item.Loc)
		if !ok {
			tc.failf(item.Loc, diag.SemDuplicateEnumItemName, "Duplicate enum item name '%s'", item.Name)
		}
		entry.Flags |= symbols.FlagEnumItem
		entry.Const = &ast.Const{Kind: ast.ConstInt, Int: value}
		entry.Initialize()
	}
}

func (tc *typeChecker) declareFunction(d *ast.FuncDecl) {
	tbl := tc.table
	var recv *symbols.Struct
	allowed := tc.templateParams(d.Templates, tbl)
	own := allowed
	if d.IsMethod() {
		recv = tbl.Structs[d.Receiver]
		if recv == nil {
			tc.failf(d.Loc, diag.SemReferencedUndefinedStruct, "Struct '%s' was used before declared", d.Receiver)
		}
		allowed = append(slices.Clone(allowed), recv.Generics...)
		if d.Name == ast.DtorName {
			if !d.IsProc {
				tc.failf(d.Loc, diag.SemDtorMustBeProcedure, "Destructors are not allowed to be of type function")
			}
			if len(d.Params) > 0 {
				tc.failf(d.Loc, diag.SemDtorWithParams, "It is not allowed to specify parameters for destructors")
			}
		}
	}

	fn := &symbols.Function{
		Name:     d.Name,
		Decl:     d,
		Spec:     d.Spec,
		IsProc:   d.IsProc,
		Generics: own,
		Loc:      d.Loc,
	}
	seenDefault := false
	for _, p := range d.Params {
		pt := tc.resolveType(p.Type, tbl, nil)
		tc.checkTemplateUse(pt, allowed, p.Type)
		if p.Default != nil {
			seenDefault = true
			if pt.Is(types.TyDyn) {
				pt = tc.literalType(p.Default)
			}
		} else if seenDefault {
			tc.failf(p.Loc, diag.SemInvalidParamOrder, "Parameters with default values must come after all required parameters")
		}
		if pt.Is(types.TyDyn) {
			tc.failf(p.Loc, diag.SemFctParamIsTypeDyn, "Type of parameter '%s' is invalid", p.Name)
		}
		fn.Params = append(fn.Params, symbols.Param{Name: p.Name, Type: pt, Default: p.Default, Loc: p.Loc})
	}
	if !d.IsProc {
		fn.Return = tc.resolveType(d.Return, tbl, nil)
		if fn.Return.Is(types.TyDyn) {
			tc.failf(d.Return.Loc, diag.SemUnexpectedDynType, "Functions must declare a concrete return type")
		}
		tc.checkTemplateUse(fn.Return, allowed, d.Return)
	}

	key := d.QualifiedName()
	for _, prev := range tbl.Funcs[key] {
		if prev.IsProc == fn.IsProc && len(prev.Generics) == len(fn.Generics) && slices.Equal(prev.ParamTypes(), fn.ParamTypes()) {
			tc.failf(d.Loc, diag.SemFunctionDeclaredTwice, "The function/procedure '%s' is declared twice", fn.Signature())
		}
	}
	tbl.AddFunction(key, fn)

	if recv == nil && len(own) == 0 {
		man := tc.manifestFunction(tbl, fn, nil, nil)
		if d.Name == "main" {
			if d.IsProc || fn.Return != tc.prim(types.TyInt) {
				tc.failf(d.Loc, diag.SemMissingMainFunction, "The main function must be declared as f<int> main()")
			}
			man.Used = true
			tc.main = man
		}
	}
}

// checkTemplateUse rejects generic placeholders that the declaration does not
// list in its template parameters.
func (tc *typeChecker) checkTemplateUse(t *types.Type, allowed []*types.Type, dt *ast.DataType) {
	if !t.HasGenericParts() {
		return
	}
	for _, g := range genericNames(t) {
		if !slices.ContainsFunc(allowed, func(a *types.Type) bool { return a.SubType() == g }) {
			tc.failf(dt.Loc, diag.SemGenericTypeNotInTemplate, "Generic type '%s' is not contained in the template list", g)
		}
	}
}

func genericNames(t *types.Type) []string {
	var out []string
	var walk func(t *types.Type)
	walk = func(t *types.Type) {
		if t == nil {
			return
		}
		for _, el := range t.Chain() {
			if el.Super == types.TyGeneric {
				out = append(out, el.SubType)
			}
			for _, tt := range el.Templates {
				walk(tt)
			}
			for _, p := range el.Params {
				walk(p)
			}
			walk(el.Return)
		}
	}
	walk(t)
	return out
}

func (tc *typeChecker) declareExtern(d *ast.ExtDecl) {
	fn := &symbols.Function{
		Name:     d.Name,
		Ext:      d,
		IsProc:   d.IsProc,
		Variadic: d.Variadic,
		Spec:     types.SpecPublic,
		Loc:      d.Loc,
	}
	if !d.IsProc {
		fn.Return = tc.resolveType(d.Return, tc.table, nil)
	}
	for i, p := range d.Params {
		fn.Params = append(fn.Params, symbols.Param{Name: fmt.Sprintf("arg%d", i), Type: tc.resolveType(p, tc.table, nil), Loc: p.Loc})
	}
	if len(tc.table.Funcs[d.Name]) > 0 {
		tc.failf(d.Loc, diag.SemFunctionDeclaredTwice, "The external function '%s' is declared twice", d.Name)
	}
	tc.table.AddFunction(d.Name, fn)
	tc.manifestFunction(tc.table, fn, nil, nil)
}

func (tc *typeChecker) declareGlobal(d *ast.GlobalVarDecl) {
	t := tc.resolveType(d.Type, tc.table, nil)
	spec := d.Type.Spec
	var lit *ast.Const
	if d.Value != nil {
		bc := tc.globalContext(tc.table, 0)
		vt := tc.checkExpr(bc, tc.table.Global, d.Value, t)
		if !isConstExpr(d.Value) {
			tc.failf(d.Value.Loc, diag.SemGlobalOfInvalidType, "Globals can only be initialized with constant values")
		}
		t = tc.assignType(d.Loc, tc.table.Global, t, vt)
		lit = d.Value.ConstAt(0)
	} else {
		if t.Is(types.TyDyn) {
			tc.failf(d.Loc, diag.SemGlobalOfTypeDyn, "Global variables must have an explicit data type")
		}
		if spec.Has(types.SpecConst) {
			tc.failf(d.Loc, diag.SemGlobalConstWithoutValue, "You must specify a value for constant global variables")
		}
	}
	entry, ok := tc.table.Global.Insert(d.Name, types.Qual(t, spec), d, d.Loc)
	if !ok {
		tc.failf(d.Loc, diag.SemVariableDeclaredTwice, "The global variable '%s' was declared more than once", d.Name)
	}
	entry.Const = lit
	if d.Value != nil {
		entry.Initialize()
	}
}

// isConstExpr reports whether e can be lowered to an IR constant.
func isConstExpr(e *ast.Expr) bool {
	switch e.Kind {
	case ast.ExprIntLit, ast.ExprShortLit, ast.ExprLongLit, ast.ExprDoubleLit, ast.ExprCharLit,
		ast.ExprStringLit, ast.ExprBoolLit, ast.ExprNil:
		return true
	case ast.ExprPrefix:
		return e.Op == ast.OpNeg && isConstExpr(e.X)
	case ast.ExprArrayLit, ast.ExprStructLit:
		for _, a := range e.Args {
			if !isConstExpr(a) {
				return false
			}
		}
		return true
	}
	return false
}

// literalType infers the type of a parameter default written as a literal.
func (tc *typeChecker) literalType(e *ast.Expr) *types.Type {
	switch e.Kind {
	case ast.ExprIntLit:
		return tc.prim(types.TyInt)
	case ast.ExprShortLit:
		return tc.prim(types.TyShort)
	case ast.ExprLongLit:
		return tc.prim(types.TyLong)
	case ast.ExprDoubleLit:
		return tc.prim(types.TyDouble)
	case ast.ExprCharLit:
		return tc.prim(types.TyChar)
	case ast.ExprStringLit:
		return tc.prim(types.TyString)
	case ast.ExprBoolLit:
		return tc.prim(types.TyBool)
	}
	tc.failf(e.Loc, diag.SemFctParamIsTypeDyn, "Parameters of type dyn need a literal default value")
	return nil
}
