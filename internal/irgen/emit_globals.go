package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

// declareGlobals defines the file's global variables. Initializers are
// constant by construction; globals without one start zeroed.
func (e *Emitter) declareGlobals() {
	for _, entry := range e.tbl.Global.Entries() {
		d, ok := entry.Decl.(*ast.GlobalVarDecl)
		if !ok {
			continue
		}
		t := entry.Type.Type
		var init constant.Constant
		if d.Value != nil {
			init = e.constExpr(d.Value, 0, t)
		} else {
			init = constant.NewZeroInitializer(e.llType(t))
		}
		g := e.mod.NewGlobalDef(entry.Name, init)
		g.Immutable = entry.Type.IsConst()
		if !entry.Type.IsPublic() {
			g.Linkage = enum.LinkageInternal
		}
		e.globals[entry] = g
	}
}

// globalFor returns the global behind entry. Globals of imported files are
// declared external on first use.
func (e *Emitter) globalFor(entry *symbols.Entry) *ir.Global {
	if g, ok := e.globals[entry]; ok {
		return g
	}
	if entry.Scope.Table == e.tbl {
		e.fail(entry.Loc, diag.IRVariableNotFound, "global '%s' was not declared", entry.Name)
	}
	g := e.mod.NewGlobal(entry.Name, e.llType(entry.Type.Type))
	g.Linkage = enum.LinkageExternal
	e.globals[entry] = g
	return g
}

// stringPtr returns an i8* to a NUL terminated copy of s. Equal literals
// share one global.
func (e *Emitter) stringPtr(s string) constant.Constant {
	g, ok := e.strs[s]
	if !ok {
		g = e.mod.NewGlobalDef(e.uniqueName("str"), constant.NewCharArrayFromString(s+"\x00"))
		g.Immutable = true
		g.Linkage = enum.LinkagePrivate
		g.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
		e.strs[s] = g
	}
	zero := i64(0)
	return constant.NewGetElementPtr(g.ContentType, g, zero, zero)
}

// constGlobal places an aggregate constant in a private global of its own.
// Identical literals in different functions stay distinct.
func (e *Emitter) constGlobal(c constant.Constant) *ir.Global {
	g := e.mod.NewGlobalDef(e.uniqueName("const"), c)
	g.Immutable = true
	g.Linkage = enum.LinkagePrivate
	return g
}

// isConstant reports whether x lowers to an IR constant.
func isConstant(x *ast.Expr, idx int) bool {
	switch x.Kind {
	case ast.ExprIntLit, ast.ExprShortLit, ast.ExprLongLit, ast.ExprDoubleLit, ast.ExprCharLit,
		ast.ExprStringLit, ast.ExprBoolLit, ast.ExprNil:
		return true
	case ast.ExprPrefix:
		return x.Op == ast.OpNeg && x.ConstAt(idx) != nil
	case ast.ExprArrayLit, ast.ExprStructLit:
		for _, a := range x.Args {
			if !isConstant(a, idx) {
				return false
			}
		}
		return true
	}
	return false
}

// constExpr lowers a constant expression annotated under idx to a value of
// type want.
func (e *Emitter) constExpr(x *ast.Expr, idx int, want *types.Type) constant.Constant {
	t := x.TypeAt(idx)
	if t == nil {
		e.fail(x.Loc, diag.IRWrongType, "constant expression was not analyzed")
	}
	t = t.RemoveReference()
	if want == nil || want.Is(types.TyDyn) {
		want = t
	}
	switch x.Kind {
	case ast.ExprNil:
		return constant.NewZeroInitializer(e.llType(want))
	case ast.ExprArrayLit:
		return e.constArray(x, idx, t)
	case ast.ExprStructLit:
		return e.constStruct(x, idx)
	}
	c := x.ConstAt(idx)
	if c == nil {
		e.fail(x.Loc, diag.IRWrongType, "expression of kind %s is not constant", x.Kind)
	}
	return e.constScalar(c, want)
}

func (e *Emitter) constScalar(c *ast.Const, t *types.Type) constant.Constant {
	switch {
	case t.Is(types.TyDouble):
		if c.Kind == ast.ConstDouble {
			return constant.NewFloat(lltypes.Double, c.Double)
		}
		return constant.NewFloat(lltypes.Double, float64(c.Int))
	case t.Is(types.TyBool):
		return constant.NewBool(c.Bool)
	case t.Is(types.TyString), t.IsPtrOf(types.TyChar):
		return e.stringPtr(c.Str)
	}
	it, ok := e.llType(t).(*lltypes.IntType)
	if !ok {
		e.fail(noLoc, diag.IRWrongType, "cannot lower a literal to %s", t.Name())
	}
	if c.Kind == ast.ConstBool {
		if c.Bool {
			return constant.NewInt(it, 1)
		}
		return constant.NewInt(it, 0)
	}
	return constant.NewInt(it, c.Int)
}

// constArray fills the annotated array size; missing items are zero and
// excess items are dropped.
func (e *Emitter) constArray(x *ast.Expr, idx int, t *types.Type) constant.Constant {
	arrT, ok := e.llType(t).(*lltypes.ArrayType)
	if !ok {
		e.fail(x.Loc, diag.IRWrongType, "array literal typed as %s", t.Name())
	}
	elem := t.Contained()
	items := make([]constant.Constant, arrT.Len)
	for i := range items {
		if i < len(x.Args) {
			items[i] = e.constExpr(x.Args[i], idx, elem)
		} else {
			items[i] = constant.NewZeroInitializer(arrT.ElemType)
		}
	}
	return constant.NewArray(arrT, items...)
}

// constStruct lays out vtable pointers first, then the field values. An
// empty literal takes the constant field defaults.
func (e *Emitter) constStruct(x *ast.Expr, idx int) constant.Constant {
	sm, ok := x.RefAt(idx).(*symbols.Struct)
	if !ok {
		e.fail(x.Loc, diag.IRVariableNotFound, "struct literal without manifestation")
	}
	st := e.structType(sm.Type)
	fields := make([]constant.Constant, 0, len(st.Fields))
	for _, iface := range sm.Interfaces {
		fields = append(fields, e.vtableGlobal(sm, iface))
	}
	for i, f := range sm.Fields() {
		ft := f.Type.Type
		switch {
		case i < len(x.Args):
			fields = append(fields, e.constExpr(x.Args[i], idx, ft))
		default:
			fields = append(fields, e.constDefault(sm, f))
		}
	}
	return constant.NewStruct(st, fields...)
}

func (e *Emitter) constDefault(sm *symbols.Struct, f *symbols.Entry) constant.Constant {
	if fd, ok := f.Decl.(*ast.FieldDecl); ok && fd.Default != nil && isConstant(fd.Default, sm.ManIdx) {
		return e.constExpr(fd.Default, sm.ManIdx, f.Type.Type)
	}
	return constant.NewZeroInitializer(e.llType(f.Type.Type))
}
