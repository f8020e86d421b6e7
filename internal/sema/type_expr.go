package sema

import (
	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/oprules"
	"spice/internal/source"
	"spice/internal/symbols"
	"spice/internal/types"
)

// checkExpr annotates e for the current manifestation and returns its type.
// expected is a hint from the context, nil when there is none.
func (tc *typeChecker) checkExpr(bc *bodyContext, scope *symbols.Scope, e *ast.Expr, expected *types.Type) *types.Type {
	t := tc.exprType(bc, scope, e, expected)
	e.SetType(bc.manIdx, t)
	return t
}

func (tc *typeChecker) exprType(bc *bodyContext, scope *symbols.Scope, e *ast.Expr, expected *types.Type) *types.Type {
	idx := bc.manIdx
	switch e.Kind {
	case ast.ExprIntLit:
		return tc.literal(e, idx, types.TyInt)
	case ast.ExprShortLit:
		return tc.literal(e, idx, types.TyShort)
	case ast.ExprLongLit:
		return tc.literal(e, idx, types.TyLong)
	case ast.ExprDoubleLit:
		return tc.literal(e, idx, types.TyDouble)
	case ast.ExprCharLit:
		return tc.literal(e, idx, types.TyChar)
	case ast.ExprStringLit:
		return tc.literal(e, idx, types.TyString)
	case ast.ExprBoolLit:
		return tc.literal(e, idx, types.TyBool)
	case ast.ExprNil:
		t := tc.resolveType(e.Type, bc.table, bc.bindings)
		if t.Is(types.TyDyn) {
			tc.failf(e.Loc, diag.SemUnexpectedDynType, "nil must name a concrete type")
		}
		return t
	case ast.ExprIdent:
		return tc.checkIdent(bc, scope, e)
	case ast.ExprMember:
		p := tc.resolvePath(bc, scope, e)
		if p.kind != pathValue {
			tc.failf(e.Loc, diag.SemExpectedValue, "'%s' does not denote a value", e.Name)
		}
		return p.t
	case ast.ExprIndex:
		return tc.checkIndex(bc, scope, e)
	case ast.ExprCall:
		return tc.checkCall(bc, scope, e)
	case ast.ExprBinary:
		return tc.checkBinary(bc, scope, e)
	case ast.ExprAssign:
		return tc.checkAssign(bc, scope, e)
	case ast.ExprTernary:
		return tc.checkTernary(bc, scope, e, expected)
	case ast.ExprPrefix:
		return tc.checkPrefix(bc, scope, e)
	case ast.ExprPostfix:
		t, entry := tc.checkLValue(bc, scope, e.X)
		if entry != nil {
			entry.Use()
			tc.checkConstWrite(e.Loc, entry)
		}
		site := tc.site(scope, e.Loc)
		if e.Op == ast.OpPostInc {
			return tc.check(tc.ops.PostfixPlusPlusResult(site, t.RemoveReference()))
		}
		return tc.check(tc.ops.PostfixMinusMinusResult(site, t.RemoveReference()))
	case ast.ExprCast:
		dst := tc.resolveType(e.Type, bc.table, bc.bindings)
		src := tc.checkExpr(bc, scope, e.X, nil).RemoveReference()
		return tc.check(tc.ops.CastResult(tc.site(scope, e.Loc), dst, src))
	case ast.ExprArrayLit:
		return tc.checkArrayLit(bc, scope, e, expected)
	case ast.ExprStructLit:
		return tc.checkStructLit(bc, scope, e)
	case ast.ExprLambda:
		return tc.checkLambda(bc, scope, e)
	case ast.ExprThread:
		return tc.checkThread(bc, scope, e)
	case ast.ExprSizeof, ast.ExprAlignof:
		return tc.checkSizeof(bc, scope, e)
	case ast.ExprLen:
		return tc.checkLen(bc, scope, e)
	case ast.ExprPrintf:
		return tc.checkPrintf(bc, scope, e)
	case ast.ExprPanic:
		return tc.checkPanic(bc, scope, e)
	case ast.ExprSyscall:
		return tc.checkSyscall(bc, scope, e)
	case ast.ExprTid:
		if len(e.Args) != 0 {
			tc.failf(e.Loc, diag.SemTidInvalid, "tid() takes no arguments")
		}
		return tc.prim(types.TyInt)
	case ast.ExprJoin:
		return tc.checkJoin(bc, scope, e)
	}
	tc.failf(e.Loc, diag.SemComingSoon, "Expressions of kind %s are not supported", e.Kind)
	return nil
}

func (tc *typeChecker) literal(e *ast.Expr, idx int, s types.SuperType) *types.Type {
	lit := e.Lit
	e.SetConst(idx, &lit)
	return tc.prim(s)
}

// checkIdent reads a variable. A name that is no variable may still denote
// a single non-generic function used as a value.
func (tc *typeChecker) checkIdent(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	entry := scope.Lookup(e.Name)
	if entry == nil {
		if fns := bc.table.Funcs[e.Name]; len(fns) == 1 && len(fns[0].Generics) == 0 && !fns[0].IsExtern() {
			fn := fns[0].Manifestations()[0]
			markCalled(fn)
			e.SetRef(bc.manIdx, fn)
			return fn.FuncType(tc.reg)
		}
		tc.failf(e.Loc, diag.SemReferencedUndefinedVariable, "Variable '%s' was referenced before declared", e.Name)
	}
	switch {
	case entry.Has(symbols.FlagImport):
		tc.failf(e.Loc, diag.SemExpectedValue, "The import '%s' cannot be used as a value", e.Name)
	case entry.Has(symbols.FlagStruct):
		tc.failf(e.Loc, diag.SemExpectedValue, "'%s' is a type, not a value", e.Name)
	case entry.Has(symbols.FlagResult) && !entry.IsInitialized():
		tc.failf(e.Loc, diag.SemReturnWithoutValueResult, "The result variable is read before it was assigned")
	}
	entry.Use()
	e.SetRef(bc.manIdx, entry)
	if entry.Const != nil && entry.Type.IsConst() {
		e.SetConst(bc.manIdx, entry.Const)
	}
	return entry.Type.Type.RemoveReference()
}

// checkLValue annotates an assignment target. Plain variables are not
// marked as read; their entry is returned so the caller can update its state.
func (tc *typeChecker) checkLValue(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) (*types.Type, *symbols.Entry) {
	switch e.Kind {
	case ast.ExprIdent:
		entry := scope.Lookup(e.Name)
		if entry == nil {
			tc.failf(e.Loc, diag.SemReferencedUndefinedVariable, "Variable '%s' was referenced before declared", e.Name)
		}
		if entry.Has(symbols.FlagImport | symbols.FlagStruct | symbols.FlagEnumItem) {
			tc.failf(e.Loc, diag.SemExpectedValue, "Cannot assign to '%s'", e.Name)
		}
		tc.markWritten(scope, entry)
		e.SetRef(bc.manIdx, entry)
		e.SetType(bc.manIdx, entry.Type.Type)
		return entry.Type.Type, entry
	case ast.ExprMember, ast.ExprIndex:
		return tc.checkExpr(bc, scope, e, nil), nil
	case ast.ExprPrefix:
		if e.Op == ast.OpDeref {
			return tc.checkExpr(bc, scope, e, nil), nil
		}
	}
	tc.failf(e.Loc, diag.SemOperatorWrongDataType, "The left side of an assignment must be a variable, field, index or dereference")
	return nil, nil
}

// markWritten switches the captures of entry in every closure between scope
// and the entry's own scope to by-reference.
func (tc *typeChecker) markWritten(scope *symbols.Scope, entry *symbols.Entry) {
	for cur := scope; cur != nil && cur != entry.Scope; cur = cur.Parent {
		if !cur.Kind.IsCaptureBoundary() {
			continue
		}
		if c := cur.CaptureOf(entry); c != nil {
			c.MarkWritten()
		}
	}
}

func (tc *typeChecker) checkConstWrite(loc source.CodeLoc, entry *symbols.Entry) {
	if entry.Type.IsConst() && entry.IsInitialized() {
		tc.failf(loc, diag.SemReassignConstVariable, "Not allowed to re-assign the constant variable '%s'", entry.Name)
	}
}

type ruleFunc func(oprules.Site, *types.Type, *types.Type) (*types.Type, error)

func (tc *typeChecker) binaryRule(op ast.Op) ruleFunc {
	m := tc.ops
	switch op {
	case ast.OpLogicalOr:
		return m.LogicalOrResult
	case ast.OpLogicalAnd:
		return m.LogicalAndResult
	case ast.OpBitOr:
		return m.BitwiseOrResult
	case ast.OpBitXor:
		return m.BitwiseXorResult
	case ast.OpBitAnd:
		return m.BitwiseAndResult
	case ast.OpEq:
		return m.EqualResult
	case ast.OpNotEq:
		return m.NotEqualResult
	case ast.OpLess:
		return m.LessResult
	case ast.OpGreater:
		return m.GreaterResult
	case ast.OpLessEq:
		return m.LessEqualResult
	case ast.OpGreaterEq:
		return m.GreaterEqualResult
	case ast.OpShl:
		return m.ShiftLeftResult
	case ast.OpShr:
		return m.ShiftRightResult
	case ast.OpAdd:
		return m.PlusResult
	case ast.OpSub:
		return m.MinusResult
	case ast.OpMul:
		return m.MulResult
	case ast.OpDiv:
		return m.DivResult
	case ast.OpRem:
		return m.RemResult
	case ast.OpPlusAssign:
		return m.PlusEqualResult
	case ast.OpMinusAssign:
		return m.MinusEqualResult
	case ast.OpMulAssign:
		return m.MulEqualResult
	case ast.OpDivAssign:
		return m.DivEqualResult
	case ast.OpRemAssign:
		return m.RemEqualResult
	case ast.OpShlAssign:
		return m.ShlEqualResult
	case ast.OpShrAssign:
		return m.ShrEqualResult
	case ast.OpAndAssign:
		return m.AndEqualResult
	case ast.OpOrAssign:
		return m.OrEqualResult
	case ast.OpXorAssign:
		return m.XorEqualResult
	}
	return nil
}

func (tc *typeChecker) checkBinary(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	lhs := tc.checkExpr(bc, scope, e.X, nil).RemoveReference()
	rhs := tc.checkExpr(bc, scope, e.Y, lhs).RemoveReference()
	rule := tc.binaryRule(e.Op)
	if rule == nil {
		tc.failf(e.Loc, diag.SemComingSoon, "Operator %s is not supported", e.Op)
	}
	return tc.check(rule(tc.site(scope, e.Loc), lhs, rhs))
}

func (tc *typeChecker) checkAssign(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	lt, entry := tc.checkLValue(bc, scope, e.X)
	target := lt.RemoveReference()
	rhs := tc.checkExpr(bc, scope, e.Y, target)
	if rhs.Is(types.TyDyn) {
		tc.failf(e.Y.Loc, diag.SemUnexpectedDynType, "Cannot assign the result of a procedure")
	}
	rhs = rhs.RemoveReference()
	if e.Op == ast.OpAssign {
		if entry != nil {
			tc.checkConstWrite(e.Loc, entry)
		}
		res := tc.assignType(e.Loc, scope, target, rhs)
		if entry != nil {
			if target.Is(types.TyDyn) {
				entry.SetType(res)
			}
			entry.Initialize()
		}
		return res
	}
	if entry != nil {
		tc.checkConstWrite(e.Loc, entry)
		entry.Use()
	}
	return tc.check(tc.binaryRule(e.Op)(tc.site(scope, e.Loc), target, rhs))
}

// assignType validates storing rhs into a slot of type lhs and returns the
// type the slot ends up with. References bind to their referee and arrays
// of unknown size take the size of the value.
func (tc *typeChecker) assignType(loc source.CodeLoc, scope *symbols.Scope, lhs, rhs *types.Type) *types.Type {
	if lhs.IsRef() {
		if rhs.RemoveReference() != lhs.Contained() {
			tc.failf(loc, diag.SemOperatorWrongDataType, "Cannot bind a reference of type %s to a value of type %s", lhs.Name(), rhs.Name())
		}
		return lhs
	}
	rhs = rhs.RemoveReference()
	if lhs.IsArray() && rhs.IsArray() && lhs.ArraySize() == types.ArraySizeUnknown && lhs.Contained() == rhs.Contained() {
		return rhs
	}
	return tc.check(tc.ops.AssignResult(tc.site(scope, loc), lhs, rhs))
}

// compatible reports whether a value of type arg can be passed where param
// is expected: parameters, field values and array items.
func (tc *typeChecker) compatible(param, arg *types.Type) bool {
	if param == arg {
		return true
	}
	if param.IsRef() {
		return param.Contained() == arg.RemoveReference()
	}
	arg = arg.RemoveReference()
	switch {
	case param == arg:
		return true
	case param.IsPtrOf(types.TyChar) && arg.Is(types.TyString):
		return true
	case param.IsPtr() && arg.IsArray():
		return param.Contained() == arg.Contained()
	case param.IsArray() && arg.IsArray() && param.ArraySize() == types.ArraySizeUnknown:
		return param.Contained() == arg.Contained()
	case param.IsPtr() && arg.IsPtr() && param.Contained().Is(types.TyInterface) && arg.Contained().Is(types.TyStruct):
		return tc.implements(arg.Contained(), param.Contained())
	case param.IsOneOf(types.TyFunction, types.TyProcedure) && arg.Is(param.Super()):
		return param.WithCaptures(false) == arg.WithCaptures(false)
	}
	return false
}

func (tc *typeChecker) checkTernary(bc *bodyContext, scope *symbols.Scope, e *ast.Expr, expected *types.Type) *types.Type {
	if ct := tc.checkExpr(bc, scope, e.X, nil).RemoveReference(); ct != tc.prim(types.TyBool) {
		tc.failf(e.X.Loc, diag.SemOperatorWrongDataType, "Condition operand in ternary must be a bool value, got %s", ct.Name())
	}
	yt := tc.checkExpr(bc, scope, e.Y, expected).RemoveReference()
	zt := tc.checkExpr(bc, scope, e.Z, yt).RemoveReference()
	if yt != zt {
		tc.failf(e.Loc, diag.SemOperatorWrongDataType, "True operand and false operand in ternary must be of same data type, got %s and %s", yt.Name(), zt.Name())
	}
	return yt
}

func (tc *typeChecker) checkPrefix(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	site := tc.site(scope, e.Loc)
	switch e.Op {
	case ast.OpPreInc, ast.OpPreDec:
		t, entry := tc.checkLValue(bc, scope, e.X)
		if entry != nil {
			entry.Use()
			tc.checkConstWrite(e.Loc, entry)
		}
		if e.Op == ast.OpPreInc {
			return tc.check(tc.ops.PrefixPlusPlusResult(site, t.RemoveReference()))
		}
		return tc.check(tc.ops.PrefixMinusMinusResult(site, t.RemoveReference()))
	case ast.OpAddrOf:
		if e.X.Kind == ast.ExprIdent {
			t, entry := tc.checkLValue(bc, scope, e.X)
			entry.Use()
			return tc.check(tc.ops.PrefixAddressOfResult(site, t.RemoveReference()))
		}
		return tc.check(tc.ops.PrefixAddressOfResult(site, tc.checkExpr(bc, scope, e.X, nil).RemoveReference()))
	}
	operand := tc.checkExpr(bc, scope, e.X, nil).RemoveReference()
	switch e.Op {
	case ast.OpNeg:
		t := tc.check(tc.ops.PrefixMinusResult(site, operand))
		if c := e.X.ConstAt(bc.manIdx); c != nil {
			neg := *c
			neg.Int, neg.Double = -c.Int, -c.Double
			e.SetConst(bc.manIdx, &neg)
		}
		return t
	case ast.OpNot:
		return tc.check(tc.ops.PrefixNotResult(site, operand))
	case ast.OpBitNot:
		return tc.check(tc.ops.PrefixBitwiseNotResult(site, operand))
	case ast.OpDeref:
		return tc.check(tc.ops.PrefixDerefResult(site, operand))
	}
	tc.failf(e.Loc, diag.SemComingSoon, "Prefix operator %s is not supported", e.Op)
	return nil
}
