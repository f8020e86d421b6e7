package sema

import (
	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

// checkStructLit handles `S{a, b}`. Either no fields or all fields are given.
// Omitted template types of a generic struct are inferred from the values.
func (tc *typeChecker) checkStructLit(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	dt := e.Type
	home := bc.table
	if q := dt.Qualifier(); q != "" {
		imp, ok := bc.table.Imports[q]
		if !ok {
			tc.failf(dt.Loc, diag.SemReferencedUndefinedStruct, "Unknown import '%s'", q)
		}
		imp.Entry.Use()
		home = imp.Table
	}
	tmpl, ok := home.Structs[dt.Name()]
	if !ok {
		tc.failf(dt.Loc, diag.SemReferencedUndefinedStruct, "Struct '%s' was used before declared", dt.String())
	}
	tc.checkVisible(dt.Loc, home, bc.table, tmpl.Spec, tmpl.Name)
	fields := tmpl.Decl.Fields
	if len(e.Args) != 0 && len(e.Args) != len(fields) {
		tc.failf(e.Loc, diag.SemNumberOfFieldsNotMatching, "You've passed too less/many field values. Pass either none or all of them")
	}

	args := tc.resolveTypes(dt.Templates, bc.table, bc.bindings)
	var values []*types.Type
	if len(args) == 0 && len(tmpl.Generics) > 0 {
		bindings := make(map[string]*types.Type, len(tmpl.Generics))
		values = make([]*types.Type, len(e.Args))
		for i, a := range e.Args {
			values[i] = tc.checkExpr(bc, scope, a, nil)
			ft := tc.resolveType(fields[i].Type, home, nil)
			if !symbols.Unify(ft, values[i].RemoveReference(), bindings) {
				tc.failf(a.Loc, diag.SemFieldTypeNotMatching, "Value of type %s does not fit the field '%s'", values[i].Name(), fields[i].Name)
			}
		}
		for _, g := range tmpl.Generics {
			b, ok := bindings[g.SubType()]
			if !ok {
				tc.failf(dt.Loc, diag.SemUnknownDatatype, "Cannot infer template type '%s' of struct '%s'", g.SubType(), tmpl.Name)
			}
			args = append(args, b)
		}
	}
	st := tc.structType(tmpl, args, dt.Loc)
	sm := tc.lookupStruct(st)
	if sm == nil {
		tc.failf(dt.Loc, diag.SemReferencedUndefinedStruct, "Struct '%s' was used before declared", st.Name())
	}
	sm.Used = true
	tmpl.Used = true

	for i, f := range sm.Fields() {
		if i >= len(e.Args) {
			break
		}
		var vt *types.Type
		if values != nil {
			vt = values[i]
		} else {
			vt = tc.checkExpr(bc, scope, e.Args[i], f.Type.Type)
		}
		if !tc.compatible(f.Type.Type, vt) {
			tc.failf(e.Args[i].Loc, diag.SemFieldTypeNotMatching, "Expected type %s for the field '%s', but got %s", f.Type.Type.Name(), f.Name, vt.Name())
		}
		tc.markUsed(f.Type.Type)
	}
	e.SetRef(bc.manIdx, sm)
	return sm.Type
}

// checkArrayLit takes size and item type from the expected type when there
// is one. Excess values are reported and dropped.
func (tc *typeChecker) checkArrayLit(bc *bodyContext, scope *symbols.Scope, e *ast.Expr, expected *types.Type) *types.Type {
	var elem *types.Type
	size := len(e.Args)
	if expected != nil && expected.IsArray() {
		elem = expected.Contained()
		if s := expected.ArraySize(); s != types.ArraySizeUnknown {
			if len(e.Args) > s {
				tc.warn(diag.WarnArrayTooManyValues, e.Loc, "You provided more values than your array can hold. Excess values are ignored")
			}
			size = s
		}
	}
	for _, a := range e.Args {
		at := tc.checkExpr(bc, scope, a, elem).RemoveReference()
		if elem == nil {
			elem = at
			continue
		}
		if !tc.compatible(elem, at) {
			tc.failf(a.Loc, diag.SemArrayItemTypeNotMatching, "All provided values have to be of the same data type. You provided %s and %s", elem.Name(), at.Name())
		}
	}
	if elem == nil {
		tc.failf(e.Loc, diag.SemExpectedType, "Cannot infer the item type of an empty array literal")
	}
	if size == 0 {
		tc.failf(e.Loc, diag.SemArraySizeInvalid, "Cannot create an array of size 0")
	}
	arr, err := elem.ToArray(size)
	if err != nil {
		tc.typeError(e.Loc, err)
	}
	return arr
}

// checkLambda analyzes the body in a lambda scope of its own. Outer locals it
// reads become captures of that scope.
func (tc *typeChecker) checkLambda(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	fl := e.Func
	inner := tc.child(scope, symbols.ScopeLambda, fl.Loc)
	cc := &callableContext{isProc: fl.IsProc}
	params := make([]*types.Type, 0, len(fl.Params))
	for _, p := range fl.Params {
		pt := tc.resolveType(p.Type, bc.table, bc.bindings)
		if pt.Is(types.TyDyn) {
			tc.failf(p.Loc, diag.SemFctParamIsTypeDyn, "Type of parameter '%s' is invalid", p.Name)
		}
		entry, ok := inner.Insert(p.Name, types.Qual(pt, p.Type.Spec), p, p.Loc)
		if !ok {
			tc.failf(p.Loc, diag.SemVariableDeclaredTwice, "The parameter '%s' was declared more than once", p.Name)
		}
		entry.Flags |= symbols.FlagParam
		entry.Initialize()
		params = append(params, pt)
	}
	if !fl.IsProc {
		cc.ret = tc.resolveType(fl.Return, bc.table, bc.bindings)
		if cc.ret.Is(types.TyDyn) {
			tc.failf(fl.Loc, diag.SemUnexpectedDynType, "Lambdas must declare a concrete return type")
		}
		cc.result, _ = inner.Insert("result", types.Qual(cc.ret, 0), fl, fl.Loc)
		cc.result.Flags |= symbols.FlagResult | symbols.FlagUsed
	}

	saved := bc.callable
	bc.callable = cc
	tc.checkStmts(bc, inner, fl.Body.Stmts)
	bc.callable = saved
	if !fl.IsProc && !cc.result.IsInitialized() {
		tc.failf(fl.Loc, diag.SemFunctionWithoutReturnStmt, "Lambda has no return statement and does not assign its result")
	}

	var ft *types.Type
	if fl.IsProc {
		ft = tc.reg.Procedure(params)
	} else {
		ft = tc.reg.Function(cc.ret, params)
	}
	e.SetRef(bc.manIdx, inner)
	return ft.WithCaptures(len(inner.Captures()) > 0)
}

// checkThread analyzes a thread body. The value is the opaque thread id.
func (tc *typeChecker) checkThread(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	inner := tc.child(scope, symbols.ScopeThread, e.Loc)
	saved := bc.callable
	bc.callable = &callableContext{isProc: true}
	tc.checkStmts(bc, inner, e.Body.Stmts)
	bc.callable = saved
	e.SetRef(bc.manIdx, inner)
	return tc.prim(types.TyByte).MustPointer()
}
