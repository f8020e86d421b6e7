package sema

import (
	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/oprules"
	"spice/internal/source"
	"spice/internal/symbols"
	"spice/internal/types"
)

// bodyContext is the state of one manifestation walk.
type bodyContext struct {
	table    *symbols.Table
	fn       *symbols.Function
	manIdx   int
	bindings map[string]*types.Type
	callable *callableContext
}

// callableContext belongs to the innermost function, lambda or thread body.
type callableContext struct {
	isProc bool
	ret    *types.Type
	result *symbols.Entry
	loops  int
	// fallthroughTo is the only fallthrough statement allowed at the moment.
	fallthroughTo *ast.FallthroughStmt
}

func (tc *typeChecker) globalContext(tbl *symbols.Table, manIdx int) *bodyContext {
	return &bodyContext{table: tbl, manIdx: manIdx, callable: &callableContext{isProc: true}}
}

func (tc *typeChecker) site(scope *symbols.Scope, loc source.CodeLoc) oprules.Site {
	return oprules.Site{Loc: loc, Unsafe: scope.InUnsafe()}
}

// checkFunction analyzes the body of one function manifestation.
func (tc *typeChecker) checkFunction(fn *symbols.Function) {
	fn.Analyzed = true
	d := fn.Decl
	scope := fn.Scope
	bc := &bodyContext{table: scope.Table, fn: fn, manIdx: fn.ManIdx, bindings: fn.Bindings}

	if fn.Receiver != nil {
		this, _ := scope.Insert("this", types.Qual(fn.Receiver.Type.MustPointer(), 0), fn.Receiver, d.Loc)
		this.Flags |= symbols.FlagThis | symbols.FlagUsed
		this.Initialize()
	}
	for i, p := range fn.Params {
		entry, ok := scope.Insert(p.Name, types.Qual(p.Type, d.Params[i].Type.Spec), d.Params[i], p.Loc)
		if !ok {
			tc.failf(p.Loc, diag.SemVariableDeclaredTwice, "The parameter '%s' was declared more than once", p.Name)
		}
		entry.Flags |= symbols.FlagParam
		entry.Initialize()
		tc.markUsed(p.Type)
		if p.Default != nil {
			dc := tc.globalContext(bc.table, fn.ManIdx)
			dc.bindings = fn.Bindings
			dt := tc.checkExpr(dc, bc.table.Global, p.Default, p.Type)
			if !tc.compatible(p.Type, dt) {
				tc.failf(p.Default.Loc, diag.SemOperatorWrongDataType, "Default value of type %s does not match parameter type %s", dt.Name(), p.Type.Name())
			}
		}
	}

	cc := &callableContext{isProc: fn.IsProc}
	if !fn.IsProc {
		res, _ := scope.Insert("result", types.Qual(fn.Return, 0), fn, d.Loc)
		res.Flags |= symbols.FlagResult | symbols.FlagUsed
		if fn.Name == "main" && fn.Receiver == nil {
			// main returns 0 unless told otherwise
			res.Initialize()
		}
		cc.ret = fn.Return
		cc.result = res
		tc.markUsed(fn.Return)
	}
	bc.callable = cc
	tc.checkStmts(bc, scope, d.Body.Stmts)
	if !fn.IsProc && !cc.result.IsInitialized() {
		tc.failf(d.Loc, diag.SemFunctionWithoutReturnStmt, "Function '%s' has no return statement and does not assign its result", fn.Name)
	}
}

// checkStruct analyzes field defaults and interface conformance of a struct
// manifestation.
func (tc *typeChecker) checkStruct(s *symbols.Struct) {
	s.Analyzed = true
	tbl := s.Scope.Table
	bc := tc.globalContext(tbl, s.ManIdx)
	bc.bindings = s.Bindings
	for _, f := range s.Fields() {
		fd := f.Decl.(*ast.FieldDecl)
		if fd.Default == nil {
			continue
		}
		vt := tc.checkExpr(bc, s.Scope, fd.Default, f.Type.Type)
		if !tc.compatible(f.Type.Type, vt) {
			tc.failf(fd.Default.Loc, diag.SemFieldTypeNotMatching, "Expected type %s for the field '%s', but got %s", f.Type.Type.Name(), f.Name, vt.Name())
		}
	}
	for _, iface := range s.Interfaces {
		for _, want := range iface.Methods {
			impl := tc.findImplementation(s, want)
			if impl == nil {
				tc.failf(s.Loc, diag.SemInterfaceMethodNotImpl, "The struct '%s' does not implement method '%s' of interface '%s'", s.Type.Name(), want.Name, iface.Type.Name())
			}
			markCalled(impl)
		}
	}
}

func (tc *typeChecker) findImplementation(s *symbols.Struct, want symbols.Method) *symbols.Function {
	for _, m := range s.MethodsNamed(want.Name) {
		if m.Implicit || m.IsProc != want.IsProc || m.Return != want.Return || len(m.Params) != len(want.Params) {
			continue
		}
		same := true
		for i, p := range m.Params {
			if p.Type != want.Params[i] {
				same = false
				break
			}
		}
		if same {
			return m
		}
	}
	return nil
}

func (tc *typeChecker) checkStmts(bc *bodyContext, scope *symbols.Scope, stmts []ast.Stmt) {
	for _, s := range stmts {
		tc.checkStmt(bc, scope, s)
	}
}

func (tc *typeChecker) child(scope *symbols.Scope, kind symbols.ScopeKind, loc source.CodeLoc) *symbols.Scope {
	return scope.EnsureChild(kind, symbols.BlockKey(kind, loc), loc)
}

func (tc *typeChecker) checkStmt(bc *bodyContext, scope *symbols.Scope, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Block:
		tc.checkStmts(bc, tc.child(scope, symbols.ScopeBlock, s.Loc), s.Stmts)
	case *ast.DeclStmt:
		tc.checkDecl(bc, scope, s)
	case *ast.ExprStmt:
		tc.checkExpr(bc, scope, s.X, nil)
	case *ast.IfStmt:
		tc.checkIf(bc, scope, s)
	case *ast.WhileStmt:
		inner := tc.child(scope, symbols.ScopeWhile, s.Loc)
		tc.checkCondition(bc, inner, s.Cond)
		tc.checkLoopBody(bc, inner, s.Body)
	case *ast.DoWhileStmt:
		inner := tc.child(scope, symbols.ScopeDo, s.Loc)
		tc.checkLoopBody(bc, inner, s.Body)
		tc.checkCondition(bc, inner, s.Cond)
	case *ast.ForStmt:
		inner := tc.child(scope, symbols.ScopeFor, s.Loc)
		if s.Init != nil {
			tc.checkStmt(bc, inner, s.Init)
		}
		if s.Cond != nil {
			tc.checkCondition(bc, inner, s.Cond)
		}
		if s.Step != nil {
			tc.checkExpr(bc, inner, s.Step, nil)
		}
		tc.checkLoopBody(bc, inner, s.Body)
	case *ast.ForeachStmt:
		tc.checkForeach(bc, scope, s)
	case *ast.SwitchStmt:
		tc.checkSwitch(bc, scope, s)
	case *ast.FallthroughStmt:
		if bc.callable.fallthroughTo != s {
			tc.failf(s.Loc, diag.SemFallthroughNotAllowed, "Fallthrough is only allowed as last statement of a case that is followed by another case")
		}
	case *ast.BreakStmt:
		if s.Count < 1 || s.Count > bc.callable.loops {
			tc.failf(s.Loc, diag.SemInvalidBreakNumber, "Break count must be between 1 and %d, got %d", bc.callable.loops, s.Count)
		}
	case *ast.ContinueStmt:
		if s.Count < 1 || s.Count > bc.callable.loops {
			tc.failf(s.Loc, diag.SemInvalidContinueNumber, "Continue count must be between 1 and %d, got %d", bc.callable.loops, s.Count)
		}
	case *ast.ReturnStmt:
		tc.checkReturn(bc, scope, s)
	case *ast.UnsafeStmt:
		tc.checkStmts(bc, tc.child(scope, symbols.ScopeUnsafe, s.Loc), s.Body.Stmts)
	case *ast.AssertStmt:
		if t := tc.checkExpr(bc, scope, s.Cond, nil); t != tc.prim(types.TyBool) {
			tc.failf(s.Cond.Loc, diag.SemAssertionConditionBool, "The asserted condition must be of type bool, got %s", t.Name())
		}
	default:
		tc.failf(s.Pos(), diag.SemComingSoon, "Unsupported statement")
	}
}

func (tc *typeChecker) checkLoopBody(bc *bodyContext, scope *symbols.Scope, body *ast.Block) {
	bc.callable.loops++
	tc.checkStmts(bc, scope, body.Stmts)
	bc.callable.loops--
}

func (tc *typeChecker) checkCondition(bc *bodyContext, scope *symbols.Scope, cond *ast.Expr) {
	if t := tc.checkExpr(bc, scope, cond, nil); t != tc.prim(types.TyBool) {
		tc.failf(cond.Loc, diag.SemConditionMustBeBool, "Condition must be of type bool, got %s", t.Name())
	}
}

func (tc *typeChecker) checkIf(bc *bodyContext, scope *symbols.Scope, s *ast.IfStmt) {
	then := tc.child(scope, symbols.ScopeIf, s.Loc)
	tc.checkCondition(bc, then, s.Cond)
	tc.checkStmts(bc, then, s.Then.Stmts)
	switch e := s.Else.(type) {
	case *ast.Block:
		tc.checkStmts(bc, tc.child(scope, symbols.ScopeElse, e.Loc), e.Stmts)
	case *ast.IfStmt:
		tc.checkIf(bc, scope, e)
	}
}

func (tc *typeChecker) checkDecl(bc *bodyContext, scope *symbols.Scope, s *ast.DeclStmt) *symbols.Entry {
	t := tc.resolveType(s.Type, bc.table, bc.bindings)
	if s.Value != nil {
		vt := tc.checkExpr(bc, scope, s.Value, t)
		if vt.Is(types.TyDyn) {
			tc.failf(s.Value.Loc, diag.SemUnexpectedDynType, "Cannot assign the result of a procedure to '%s'", s.Name)
		}
		t = tc.assignType(s.Loc, scope, t, vt)
	} else if t.Is(types.TyDyn) {
		tc.failf(s.Loc, diag.SemUnexpectedDynType, "Variable '%s' of type dyn needs an initial value", s.Name)
	}
	entry, ok := scope.Insert(s.Name, types.Qual(t, s.Type.Spec), s, s.Loc)
	if !ok {
		tc.failf(s.Loc, diag.SemVariableDeclaredTwice, "The variable '%s' was declared more than once", s.Name)
	}
	if s.Value != nil {
		entry.Initialize()
	}
	tc.markUsed(t)
	if t.Is(types.TyStruct) && s.Value == nil {
		if sm := tc.lookupStruct(t); sm != nil {
			if ctor := sm.SpecialMember(ast.CtorName, 0); ctor != nil {
				markCalled(ctor)
			}
		}
	}
	return entry
}

// checkForeach requires an array of known size. Index and item live in the
// foreach scope.
func (tc *typeChecker) checkForeach(bc *bodyContext, scope *symbols.Scope, s *ast.ForeachStmt) {
	inner := tc.child(scope, symbols.ScopeForeach, s.Loc)
	xt := tc.checkExpr(bc, inner, s.X, nil)
	if !xt.IsArray() {
		tc.failf(s.X.Loc, diag.SemExpectedArrayType, "Can only iterate over arrays, got %s", xt.Name())
	}
	if xt.ArraySize() == types.ArraySizeUnknown {
		tc.failf(s.X.Loc, diag.SemArraySizeInvalid, "Can only iterate over arrays of known size")
	}
	elem := xt.Contained()
	if s.Index != nil {
		it := tc.resolveType(s.Index.Type, bc.table, bc.bindings)
		if it.Is(types.TyDyn) {
			it = tc.prim(types.TyInt)
		}
		if !it.IsOneOf(types.TyInt, types.TyLong, types.TyShort) || it.Depth() > 1 {
			tc.failf(s.Index.Loc, diag.SemArrayIndexNotIntOrLong, "Index variable must be of type int, long or short")
		}
		if s.Index.Value != nil {
			tc.assignType(s.Index.Loc, inner, it, tc.checkExpr(bc, inner, s.Index.Value, it))
		}
		tc.declareLoopVar(inner, s.Index, it)
	}
	itemT := tc.resolveType(s.Item.Type, bc.table, bc.bindings)
	if itemT.Is(types.TyDyn) {
		itemT = elem
	}
	if itemT != elem {
		tc.failf(s.Item.Loc, diag.SemArrayItemTypeNotMatching, "Foreach item type %s does not match array item type %s", itemT.Name(), elem.Name())
	}
	tc.declareLoopVar(inner, s.Item, itemT)
	tc.checkLoopBody(bc, inner, s.Body)
}

func (tc *typeChecker) declareLoopVar(scope *symbols.Scope, d *ast.DeclStmt, t *types.Type) {
	entry, ok := scope.Insert(d.Name, types.Qual(t, d.Type.Spec), d, d.Loc)
	if !ok {
		tc.failf(d.Loc, diag.SemVariableDeclaredTwice, "The variable '%s' was declared more than once", d.Name)
	}
	entry.Initialize()
}

func (tc *typeChecker) checkSwitch(bc *bodyContext, scope *symbols.Scope, s *ast.SwitchStmt) {
	inner := tc.child(scope, symbols.ScopeSwitch, s.Loc)
	xt := tc.checkExpr(bc, inner, s.X, nil)
	if xt.Depth() > 1 || !xt.IsOneOf(types.TyInt, types.TyShort, types.TyLong, types.TyByte, types.TyChar, types.TyBool, types.TyEnum) {
		tc.failf(s.X.Loc, diag.SemOperatorWrongDataType, "Cannot switch over values of type %s", xt.Name())
	}
	for i, c := range s.Cases {
		for _, v := range c.Values {
			vt := tc.checkExpr(bc, inner, v, xt)
			if vt != xt {
				tc.failf(v.Loc, diag.SemOperatorWrongDataType, "Case value of type %s does not match switch type %s", vt.Name(), xt.Name())
			}
			if v.ConstAt(bc.manIdx) == nil {
				tc.failf(v.Loc, diag.SemOperatorWrongDataType, "Case values must be constant")
			}
		}
		hasNext := i+1 < len(s.Cases) || s.Default != nil
		tc.checkCase(bc, tc.child(inner, symbols.ScopeCase, c.Loc), c.Body, hasNext)
	}
	if s.Default != nil {
		tc.checkCase(bc, tc.child(inner, symbols.ScopeCase, s.Default.Loc), s.Default, false)
	}
}

func (tc *typeChecker) checkCase(bc *bodyContext, scope *symbols.Scope, body *ast.Block, hasNext bool) {
	saved := bc.callable.fallthroughTo
	bc.callable.fallthroughTo = nil
	if n := len(body.Stmts); n > 0 && hasNext {
		if ft, ok := body.Stmts[n-1].(*ast.FallthroughStmt); ok {
			bc.callable.fallthroughTo = ft
		}
	}
	tc.checkStmts(bc, scope, body.Stmts)
	bc.callable.fallthroughTo = saved
}

func (tc *typeChecker) checkReturn(bc *bodyContext, scope *symbols.Scope, s *ast.ReturnStmt) {
	cc := bc.callable
	if s.Value == nil {
		if !cc.isProc && !cc.result.IsInitialized() {
			tc.failf(s.Loc, diag.SemReturnWithoutValueResult, "Return without value, but result variable is not initialized yet")
		}
		return
	}
	if cc.isProc {
		tc.failf(s.Loc, diag.SemReturnWithValueInProcedure, "Return statements in procedures may not have a value")
	}
	vt := tc.checkExpr(bc, scope, s.Value, cc.ret)
	tc.assignType(s.Loc, scope, cc.ret, vt)
	cc.result.Initialize()
}
