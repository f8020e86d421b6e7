package sema

import (
	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

type pathKind uint8

const (
	pathValue pathKind = iota
	pathImport
	pathEnum
)

// pathNode is one resolved step of `a.b.c`.
type pathNode struct {
	kind  pathKind
	table *symbols.Table
	enum  *symbols.Enum
	t     *types.Type
}

// resolvePath walks a member chain left to right. Intermediate steps may be
// imports, enums or struct values.
func (tc *typeChecker) resolvePath(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) pathNode {
	idx := bc.manIdx
	switch e.Kind {
	case ast.ExprIdent:
		entry := scope.Lookup(e.Name)
		if entry != nil && entry.Has(symbols.FlagImport) {
			entry.Use()
			return pathNode{kind: pathImport, table: entry.Decl.(*symbols.Import).Table}
		}
		if entry != nil && entry.Has(symbols.FlagStruct) {
			if en, ok := entry.Decl.(*symbols.Enum); ok {
				en.Used = true
				return pathNode{kind: pathEnum, enum: en}
			}
		}
	case ast.ExprMember:
		parent := tc.resolvePath(bc, scope, e.X)
		switch parent.kind {
		case pathImport:
			return tc.importMember(bc, parent.table, e)
		case pathEnum:
			item := parent.enum.Item(e.Name)
			if item == nil {
				tc.failf(e.Loc, diag.SemReferencedUndefinedVariable, "Enum '%s' has no item '%s'", parent.enum.Name, e.Name)
			}
			item.Use()
			e.SetRef(idx, item)
			e.SetConst(idx, item.Const)
			e.SetType(idx, parent.enum.Type)
			return pathNode{kind: pathValue, t: parent.enum.Type}
		default:
			t := tc.memberOn(bc, e, parent.t)
			return pathNode{kind: pathValue, t: t}
		}
	}
	return pathNode{kind: pathValue, t: tc.checkExpr(bc, scope, e, nil)}
}

// importMember resolves `alias.name` to a public enum or global of the
// imported file.
func (tc *typeChecker) importMember(bc *bodyContext, tbl *symbols.Table, e *ast.Expr) pathNode {
	if en, ok := tbl.Enums[e.Name]; ok {
		tc.checkVisible(e.Loc, tbl, bc.table, en.Spec, e.Name)
		en.Used = true
		return pathNode{kind: pathEnum, enum: en}
	}
	g := tbl.Global.LookupStrict(e.Name)
	if g == nil {
		tc.failf(e.Loc, diag.SemReferencedUndefinedVariable, "Variable '%s' was referenced before declared", e.Name)
	}
	if g.Has(symbols.FlagImport) {
		tc.failf(e.Loc, diag.SemScopeAccessOnlyImports, "Imports of '%s' are not visible from here", tbl.Path)
	}
	if g.Has(symbols.FlagStruct) {
		tc.failf(e.Loc, diag.SemExpectedValue, "'%s' is a type, not a value", e.Name)
	}
	tc.checkVisible(e.Loc, tbl, bc.table, g.Type.Spec, e.Name)
	g.Use()
	e.SetRef(bc.manIdx, g)
	if g.Const != nil && g.Type.IsConst() {
		e.SetConst(bc.manIdx, g.Const)
	}
	e.SetType(bc.manIdx, g.Type.Type)
	return pathNode{kind: pathValue, t: g.Type.Type}
}

// memberOn selects field e.Name of a value of type recv. A single pointer
// level is dereferenced implicitly.
func (tc *typeChecker) memberOn(bc *bodyContext, e *ast.Expr, recv *types.Type) *types.Type {
	t := recv.RemoveReference()
	throughPtr := false
	if t.IsPtr() {
		t = t.Contained()
		throughPtr = true
	}
	if !t.Is(types.TyStruct) {
		tc.failf(e.Loc, diag.SemMemberAccessOnlyStructs, "Cannot apply member access operator on %s", recv.Name())
	}
	sm := tc.lookupStruct(t)
	if sm == nil {
		tc.failf(e.Loc, diag.SemReferencedUndefinedStruct, "Struct '%s' was used before declared", t.Name())
	}
	f := sm.Field(e.Name)
	if f == nil {
		tc.failf(e.Loc, diag.SemReferencedUndefinedVariable, "Field '%s' not found in struct '%s'", e.Name, t.Name())
	}
	if sm.Scope.Table != bc.table && !f.Type.IsPublic() {
		tc.failf(e.Loc, diag.SemInsufficientVisibility, "Cannot access field '%s' due to its private visibility", e.Name)
	}
	f.Use()
	e.SetRef(bc.manIdx, &FieldRef{Struct: sm, Field: f, ThroughPtr: throughPtr})
	e.SetType(bc.manIdx, f.Type.Type)
	return f.Type.Type
}

func (tc *typeChecker) checkIndex(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	xt := tc.checkExpr(bc, scope, e.X, nil).RemoveReference()
	it := tc.checkExpr(bc, scope, e.Y, nil).RemoveReference()
	if !it.IsOneOf(types.TyInt, types.TyLong, types.TyShort) {
		tc.failf(e.Y.Loc, diag.SemArrayIndexNotIntOrLong, "Array index must be of type int, long or short, got %s", it.Name())
	}
	var elem *types.Type
	switch {
	case xt.IsArray(), xt.IsPtr():
		elem = xt.Contained()
	case xt.Is(types.TyString):
		elem = tc.prim(types.TyChar)
	default:
		tc.failf(e.X.Loc, diag.SemExpectedArrayType, "Can only apply subscript operator on array type, got %s", xt.Name())
	}
	if size := xt.ArraySize(); xt.IsArray() && size != types.ArraySizeUnknown {
		if c := e.Y.ConstAt(bc.manIdx); c != nil && c.Kind == ast.ConstInt && (c.Int < 0 || c.Int >= int64(size)) {
			tc.failf(e.Y.Loc, diag.SemArrayIndexOutOfBounds, "Index %d is out of bounds for an array of size %d", c.Int, size)
		}
	}
	return elem
}
