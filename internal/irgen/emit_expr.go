package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/sema"
	"spice/internal/symbols"
	"spice/internal/types"
)

// typeOf returns the annotated type of x without references.
func (fe *funcEmitter) typeOf(x *ast.Expr) *types.Type {
	t := x.TypeAt(fe.idx)
	if t == nil {
		fe.e.fail(x.Loc, diag.IRWrongType, "expression of kind %s has no type", x.Kind)
	}
	return t.RemoveReference()
}

// rvalue evaluates x and converts the value to want.
func (fe *funcEmitter) rvalue(scope *symbols.Scope, x *ast.Expr, want *types.Type) value.Value {
	r := fe.emitExpr(scope, x)
	if want != nil && r.t.IsArray() && r.t.ArraySize() != types.ArraySizeUnknown &&
		(want.IsPtr() || want.Is(types.TyString) || want.IsArray() && want.ArraySize() == types.ArraySizeUnknown) {
		return fe.decay(r, want)
	}
	return fe.convert(fe.resolveValue(r), r.t, want)
}

// decay turns a fixed-size array into a pointer to its first item.
func (fe *funcEmitter) decay(r exprResult, want *types.Type) value.Value {
	ptr := fe.cur.NewGetElementPtr(fe.e.llType(r.t), fe.resolveAddress(r), i64(0), i64(0))
	if lt := fe.e.llType(want); !lltypes.Equal(ptr.Type(), lt) {
		return fe.cur.NewBitCast(ptr, lt)
	}
	return ptr
}

// convert applies the implicit conversions the analyzer allows on
// assignment, argument passing and return.
func (fe *funcEmitter) convert(v value.Value, from, to *types.Type) value.Value {
	if to == nil || to.Is(types.TyDyn) || from == to {
		return v
	}
	to = to.RemoveReference()
	if to.IsPtr() && from.IsPtr() && to.Contained().Is(types.TyInterface) && from.Contained().Is(types.TyStruct) {
		return fe.toInterface(v, from.Contained(), to.Contained())
	}
	want := fe.e.llType(to)
	if lltypes.Equal(v.Type(), want) {
		return v
	}
	switch {
	case to.Is(types.TyDouble) && from.IsInteger():
		if isUnsigned(from) {
			return fe.cur.NewUIToFP(v, lltypes.Double)
		}
		return fe.cur.NewSIToFP(v, lltypes.Double)
	case intWidth(to) > 0 && intWidth(from) > 0:
		return fe.castInt(v, from, want.(*lltypes.IntType))
	case lltypes.IsPointer(v.Type()) && lltypes.IsPointer(want):
		return fe.cur.NewBitCast(v, want)
	}
	fe.e.fail(fe.loc, diag.IRWrongType, "cannot convert %s to %s", from.Name(), to.Name())
	return nil
}

// castInt resizes an integer; the signedness of the source decides the
// extension.
func (fe *funcEmitter) castInt(v value.Value, from *types.Type, to *lltypes.IntType) value.Value {
	have := v.Type().(*lltypes.IntType)
	switch {
	case have.BitSize == to.BitSize:
		return v
	case have.BitSize > to.BitSize:
		return fe.cur.NewTrunc(v, to)
	case isUnsigned(from):
		return fe.cur.NewZExt(v, to)
	}
	return fe.cur.NewSExt(v, to)
}

func (fe *funcEmitter) toI64(v value.Value, from *types.Type) value.Value {
	return fe.castInt(v, from, lltypes.I64)
}

// emitExpr lowers x under the current manifestation index.
func (fe *funcEmitter) emitExpr(scope *symbols.Scope, x *ast.Expr) exprResult {
	fe.loc = x.Loc
	switch x.Kind {
	case ast.ExprIntLit, ast.ExprShortLit, ast.ExprLongLit, ast.ExprDoubleLit, ast.ExprCharLit,
		ast.ExprStringLit, ast.ExprBoolLit:
		t := fe.typeOf(x)
		return constResult(fe.e.constExpr(x, fe.idx, t), t)
	case ast.ExprNil:
		t := fe.typeOf(x)
		return constResult(constant.NewZeroInitializer(fe.e.llType(t)), t)
	case ast.ExprIdent, ast.ExprMember:
		return fe.emitRef(scope, x)
	case ast.ExprIndex:
		return fe.emitIndex(scope, x)
	case ast.ExprCall:
		return fe.emitCall(scope, x)
	case ast.ExprBinary:
		return fe.emitBinary(scope, x)
	case ast.ExprAssign:
		return fe.emitAssign(scope, x)
	case ast.ExprTernary:
		return fe.emitTernary(scope, x)
	case ast.ExprPrefix:
		return fe.emitPrefix(scope, x)
	case ast.ExprPostfix:
		return fe.emitStep(scope, x, x.Op == ast.OpPostInc, true)
	case ast.ExprCast:
		return fe.emitCast(scope, x)
	case ast.ExprArrayLit:
		return fe.emitArrayLit(scope, x)
	case ast.ExprStructLit:
		return fe.emitStructLit(scope, x)
	case ast.ExprLambda:
		return fe.emitLambda(scope, x)
	case ast.ExprThread:
		return fe.emitThread(scope, x)
	case ast.ExprSizeof, ast.ExprAlignof:
		return fe.emitSizeof(x)
	case ast.ExprLen:
		return fe.emitLen(scope, x)
	case ast.ExprPrintf:
		return fe.emitPrintf(scope, x)
	case ast.ExprPanic:
		return fe.emitPanic(scope, x)
	case ast.ExprSyscall:
		return fe.emitSyscall(scope, x)
	case ast.ExprTid:
		return fe.emitTid(x)
	case ast.ExprJoin:
		return fe.emitJoin(scope, x)
	}
	fe.e.fail(x.Loc, diag.IRComingSoon, "expressions of kind %s are not supported", x.Kind)
	return exprResult{}
}

// emitRef lowers identifiers and member selections: variables, enum items,
// globals of imported files, fields and functions used as values.
func (fe *funcEmitter) emitRef(scope *symbols.Scope, x *ast.Expr) exprResult {
	switch ref := x.RefAt(fe.idx).(type) {
	case *symbols.Entry:
		if ref.Has(symbols.FlagEnumItem) {
			c := x.ConstAt(fe.idx)
			if c == nil {
				c = ref.Const
			}
			t := fe.typeOf(x)
			return constResult(fe.e.constScalar(c, t), t)
		}
		return fe.entryResult(ref)
	case *symbols.Function:
		return constResult(fe.e.funcValue(ref), fe.typeOf(x))
	case *sema.FieldRef:
		return fe.emitField(scope, x, ref)
	}
	fe.e.fail(x.Loc, diag.IRVariableNotFound, "'%s' was not resolved", x.Name)
	return exprResult{}
}

// entryResult addresses a variable. The slot of a reference holds the
// address of its referee, which is loaded on first use.
func (fe *funcEmitter) entryResult(entry *symbols.Entry) exprResult {
	addr := fe.addressOf(entry)
	t := entry.Type.Type
	if t.IsRef() {
		return refResult(addr, t.RemoveReference(), entry)
	}
	return addrResult(addr, t, entry)
}

// addressOf returns the storage of entry as seen from the current function.
func (fe *funcEmitter) addressOf(entry *symbols.Entry) value.Value {
	if a, ok := fe.captures[entry]; ok {
		return a
	}
	if entry.Has(symbols.FlagGlobal) {
		return fe.e.globalFor(entry)
	}
	if entry.Address == nil {
		fe.e.fail(entry.Loc, diag.IRVariableNotFound, "variable '%s' has no storage", entry.Name)
	}
	return entry.Address
}

func (fe *funcEmitter) emitField(scope *symbols.Scope, x *ast.Expr, ref *sema.FieldRef) exprResult {
	base := fe.emitExpr(scope, x.X)
	var obj value.Value
	if ref.ThroughPtr {
		obj = fe.resolveValue(base)
	} else {
		obj = fe.readAddress(base)
	}
	st := fe.e.structType(ref.Struct.Type)
	ptr := fe.cur.NewGetElementPtr(st, obj, i32(0), i32(int64(fieldIndex(ref.Struct, ref.Field))))
	ft := ref.Field.Type.Type
	if ft.IsRef() {
		return refResult(ptr, ft.RemoveReference(), ref.Field)
	}
	return addrResult(ptr, ft, ref.Field)
}

func (fe *funcEmitter) emitIndex(scope *symbols.Scope, x *ast.Expr) exprResult {
	base := fe.emitExpr(scope, x.X)
	it := fe.typeOf(x.Y)
	pos := fe.toI64(fe.resolveValue(fe.emitExpr(scope, x.Y)), it)
	elem := fe.typeOf(x)
	var ptr value.Value
	switch {
	case base.t.IsArray() && base.t.ArraySize() != types.ArraySizeUnknown:
		ptr = fe.cur.NewGetElementPtr(fe.e.llType(base.t), fe.readAddress(base), i64(0), pos)
	default:
		// pointers, strings and arrays of unknown size
		ptr = fe.cur.NewGetElementPtr(fe.e.llType(elem), fe.resolveValue(base), pos)
	}
	return addrResult(ptr, elem, nil)
}

// emitTernary evaluates only the chosen operand of a constant condition. It
// selects between two literals directly and branches otherwise.
func (fe *funcEmitter) emitTernary(scope *symbols.Scope, x *ast.Expr) exprResult {
	t := fe.typeOf(x)
	cr := fe.emitExpr(scope, x.X)
	if c, ok := cr.Constant().(*constant.Int); ok {
		if c.X.Sign() != 0 {
			return valueResult(fe.rvalue(scope, x.Y, t), t)
		}
		return valueResult(fe.rvalue(scope, x.Z, t), t)
	}
	cond := cr.Value(fe)
	if x.Y.IsLiteral() && x.Z.IsLiteral() {
		y := fe.rvalue(scope, x.Y, t)
		z := fe.rvalue(scope, x.Z, t)
		return valueResult(fe.cur.NewSelect(cond, y, z), t)
	}
	trueB := fe.newBlock("cond.true")
	falseB := fe.newBlock("cond.false")
	endB := fe.newBlock("cond.end")
	fe.cur.NewCondBr(cond, trueB, falseB)

	fe.enter(trueB)
	y := fe.rvalue(scope, x.Y, t)
	yFrom := fe.cur
	fe.cur.NewBr(endB)

	fe.enter(falseB)
	z := fe.rvalue(scope, x.Z, t)
	zFrom := fe.cur
	fe.cur.NewBr(endB)

	fe.enter(endB)
	return valueResult(fe.cur.NewPhi(ir.NewIncoming(y, yFrom), ir.NewIncoming(z, zFrom)), t)
}

func (fe *funcEmitter) emitPrefix(scope *symbols.Scope, x *ast.Expr) exprResult {
	t := fe.typeOf(x)
	switch x.Op {
	case ast.OpPreInc, ast.OpPreDec:
		return fe.emitStep(scope, x, x.Op == ast.OpPreInc, false)
	case ast.OpAddrOf:
		return valueResult(fe.resolveAddress(fe.emitExpr(scope, x.X)), t)
	case ast.OpDeref:
		return addrResult(fe.resolveValue(fe.emitExpr(scope, x.X)), t, nil)
	case ast.OpNeg:
		if c := x.ConstAt(fe.idx); c != nil {
			return constResult(fe.e.constScalar(c, t), t)
		}
		v := fe.rvalue(scope, x.X, t)
		if t.Is(types.TyDouble) {
			return valueResult(fe.cur.NewFNeg(v), t)
		}
		return valueResult(fe.cur.NewSub(constant.NewInt(v.Type().(*lltypes.IntType), 0), v), t)
	case ast.OpNot:
		return valueResult(fe.cur.NewXor(fe.cond(scope, x.X), constant.True), t)
	case ast.OpBitNot:
		v := fe.rvalue(scope, x.X, t)
		return valueResult(fe.cur.NewXor(v, constant.NewInt(v.Type().(*lltypes.IntType), -1)), t)
	}
	fe.e.fail(x.Loc, diag.IRComingSoon, "prefix operator %s is not supported", x.Op)
	return exprResult{}
}

// emitStep implements ++ and --. The postfix form yields the old value.
func (fe *funcEmitter) emitStep(scope *symbols.Scope, x *ast.Expr, inc, postfix bool) exprResult {
	target := fe.emitExpr(scope, x.X)
	old := fe.resolveValue(target)
	var next value.Value
	switch {
	case target.t.Is(types.TyDouble):
		one := constant.NewFloat(lltypes.Double, 1)
		if inc {
			next = fe.cur.NewFAdd(old, one)
		} else {
			next = fe.cur.NewFSub(old, one)
		}
	case target.t.IsPtr():
		step := int64(1)
		if !inc {
			step = -1
		}
		next = fe.cur.NewGetElementPtr(fe.e.llType(target.t.Contained()), old, i64(step))
	default:
		one := constant.NewInt(old.Type().(*lltypes.IntType), 1)
		if inc {
			next = fe.cur.NewAdd(old, one)
		} else {
			next = fe.cur.NewSub(old, one)
		}
	}
	fe.store(next, fe.resolveAddress(target), target.entry)
	if postfix {
		return valueResult(old, target.t)
	}
	return valueResult(next, target.t)
}

// emitCast converts between the type pairs the cast rules permit.
func (fe *funcEmitter) emitCast(scope *symbols.Scope, x *ast.Expr) exprResult {
	dst := fe.typeOf(x)
	src := fe.emitExpr(scope, x.X)
	if src.t == dst {
		return src
	}
	if src.t.IsArray() {
		return valueResult(fe.decay(src, dst), dst)
	}
	v := fe.resolveValue(src)
	want := fe.e.llType(dst)
	switch {
	case lltypes.Equal(v.Type(), want):
		return valueResult(v, dst)
	case dst.Is(types.TyDouble):
		if isUnsigned(src.t) {
			return valueResult(fe.cur.NewUIToFP(v, want), dst)
		}
		return valueResult(fe.cur.NewSIToFP(v, want), dst)
	case src.t.Is(types.TyDouble):
		return valueResult(fe.cur.NewFPToSI(v, want), dst)
	case intWidth(dst) > 0 && intWidth(src.t) > 0:
		return valueResult(fe.castInt(v, src.t, want.(*lltypes.IntType)), dst)
	case lltypes.IsPointer(want) && lltypes.IsPointer(v.Type()):
		return valueResult(fe.cur.NewBitCast(v, want), dst)
	case lltypes.IsPointer(want):
		return valueResult(fe.cur.NewIntToPtr(v, want), dst)
	case lltypes.IsPointer(v.Type()):
		return valueResult(fe.cur.NewPtrToInt(v, want), dst)
	}
	fe.e.fail(x.Loc, diag.IRWrongType, "cannot cast %s to %s", src.t.Name(), dst.Name())
	return exprResult{}
}

// emitArrayLit places constant literals in a private global and builds the
// others item by item on the stack.
func (fe *funcEmitter) emitArrayLit(scope *symbols.Scope, x *ast.Expr) exprResult {
	t := fe.typeOf(x)
	if isConstant(x, fe.idx) {
		c := fe.e.constArray(x, fe.idx, t)
		return literalResult(c, fe.e.constGlobal(c), t)
	}
	arrT := fe.e.llType(t).(*lltypes.ArrayType)
	tmp := fe.alloca(arrT, "array")
	elem := t.Contained()
	for i := range int(arrT.Len) {
		slot := fe.cur.NewGetElementPtr(arrT, tmp, i64(0), i64(int64(i)))
		if i < len(x.Args) {
			fe.cur.NewStore(fe.rvalue(scope, x.Args[i], elem), slot)
		} else {
			fe.cur.NewStore(constant.NewZeroInitializer(arrT.ElemType), slot)
		}
	}
	return addrResult(tmp, t, nil)
}

// emitStructLit builds a struct value. An empty literal runs the default
// constructor.
func (fe *funcEmitter) emitStructLit(scope *symbols.Scope, x *ast.Expr) exprResult {
	t := fe.typeOf(x)
	sm, ok := x.RefAt(fe.idx).(*symbols.Struct)
	if !ok {
		fe.e.fail(x.Loc, diag.IRVariableNotFound, "struct literal without manifestation")
	}
	if len(x.Args) > 0 && isConstant(x, fe.idx) {
		c := fe.e.constStruct(x, fe.idx)
		return literalResult(c, fe.e.constGlobal(c), t)
	}
	st := fe.e.structType(sm.Type)
	tmp := fe.alloca(st, "struct")
	if len(x.Args) == 0 {
		fe.construct(t, tmp)
		return addrResult(tmp, t, nil)
	}
	for k, iface := range sm.Interfaces {
		fe.cur.NewStore(fe.e.vtableGlobal(sm, iface), fe.cur.NewGetElementPtr(st, tmp, i32(0), i32(int64(k))))
	}
	for i, f := range sm.Fields() {
		v := fe.rvalue(scope, x.Args[i], f.Type.Type)
		fe.cur.NewStore(v, fe.cur.NewGetElementPtr(st, tmp, i32(0), i32(int64(fieldIndex(sm, f)))))
	}
	return addrResult(tmp, t, nil)
}

