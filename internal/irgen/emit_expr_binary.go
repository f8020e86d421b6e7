package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

// compoundOps maps an assignment operator to the binary operator it applies.
var compoundOps = map[ast.Op]ast.Op{
	ast.OpPlusAssign:  ast.OpAdd,
	ast.OpMinusAssign: ast.OpSub,
	ast.OpMulAssign:   ast.OpMul,
	ast.OpDivAssign:   ast.OpDiv,
	ast.OpRemAssign:   ast.OpRem,
	ast.OpShlAssign:   ast.OpShl,
	ast.OpShrAssign:   ast.OpShr,
	ast.OpAndAssign:   ast.OpBitAnd,
	ast.OpOrAssign:    ast.OpBitOr,
	ast.OpXorAssign:   ast.OpBitXor,
}

func (fe *funcEmitter) emitBinary(scope *symbols.Scope, x *ast.Expr) exprResult {
	t := fe.typeOf(x)
	if c := x.ConstAt(fe.idx); c != nil {
		return constResult(fe.e.constScalar(c, t), t)
	}
	switch x.Op {
	case ast.OpLogicalAnd, ast.OpLogicalOr:
		return valueResult(fe.emitLogical(scope, x), t)
	}
	l := fe.emitExpr(scope, x.X)
	lv := fe.resolveValue(l)
	r := fe.emitExpr(scope, x.Y)
	rv := fe.resolveValue(r)
	return valueResult(fe.binaryOp(x.Op, lv, l.t, rv, r.t, t), t)
}

// emitLogical short-circuits && and ||. A chain of the same operator is one
// cascade of blocks that meet in a single PHI.
func (fe *funcEmitter) emitLogical(scope *symbols.Scope, x *ast.Expr) value.Value {
	or := x.Op == ast.OpLogicalOr
	prefix, short := "land", constant.False
	if or {
		prefix, short = "lor", constant.True
	}
	ops := logicalChain(x, x.Op, nil)
	endB := fe.newBlock(prefix + ".end")
	incs := make([]*ir.Incoming, 0, len(ops))
	for _, op := range ops[:len(ops)-1] {
		v := fe.cond(scope, op)
		next := fe.newBlock(prefix + ".rhs")
		if or {
			fe.cur.NewCondBr(v, endB, next)
		} else {
			fe.cur.NewCondBr(v, next, endB)
		}
		incs = append(incs, ir.NewIncoming(short, fe.cur))
		fe.enter(next)
	}
	last := fe.cond(scope, ops[len(ops)-1])
	incs = append(incs, ir.NewIncoming(last, fe.cur))
	fe.cur.NewBr(endB)
	fe.enter(endB)
	return fe.cur.NewPhi(incs...)
}

// logicalChain lists the operands of nested op expressions left to right.
func logicalChain(x *ast.Expr, op ast.Op, out []*ast.Expr) []*ast.Expr {
	if x.Kind != ast.ExprBinary || x.Op != op {
		return append(out, x)
	}
	out = logicalChain(x.X, op, out)
	return logicalChain(x.Y, op, out)
}

// emitAssign stores into an lvalue. Compound operators read the old value
// first; the expression yields the stored value.
func (fe *funcEmitter) emitAssign(scope *symbols.Scope, x *ast.Expr) exprResult {
	target := fe.emitExpr(scope, x.X)
	t := target.t
	ptr := fe.resolveAddress(target)
	if x.Op == ast.OpAssign {
		if t.Is(types.TyStruct) {
			r := fe.emitExpr(scope, x.Y)
			if r.lvalue() && x.Y.Kind != ast.ExprStructLit {
				fe.copyInto(t, ptr, fe.readAddress(r))
				return addrResult(ptr, t, target.entry)
			}
			fe.store(fe.resolveValue(r), ptr, target.entry)
			return addrResult(ptr, t, target.entry)
		}
		v := fe.rvalue(scope, x.Y, t)
		fe.store(v, ptr, target.entry)
		return valueResult(v, t)
	}
	op, ok := compoundOps[x.Op]
	if !ok {
		fe.e.fail(x.Loc, diag.IRComingSoon, "assignment operator %s is not supported", x.Op)
	}
	old := fe.resolveValue(target)
	r := fe.emitExpr(scope, x.Y)
	rv := fe.resolveValue(r)
	res := fe.typeOf(x)
	v := fe.convert(fe.binaryOp(op, old, t, rv, r.t, res), res, t)
	fe.store(v, ptr, target.entry)
	return valueResult(v, t)
}

// binaryOp applies a non short-circuit operator to evaluated operands and
// returns a value of type res.
func (fe *funcEmitter) binaryOp(op ast.Op, l value.Value, lt *types.Type, r value.Value, rt *types.Type, res *types.Type) value.Value {
	switch {
	case lt.IsPtr() || rt.IsPtr():
		return fe.pointerOp(op, l, lt, r, rt)
	case lt.Is(types.TyString) && rt.Is(types.TyString):
		return fe.stringCompare(op, l, r)
	case op == ast.OpMul && rt.Is(types.TyChar) && lt.IsInteger() && res.Is(types.TyString):
		return fe.repeatChar(l, lt, r)
	case op == ast.OpShl || op == ast.OpShr:
		return fe.shift(op, l, lt, r, rt, res)
	}

	// bring both sides to the wider operand type
	wide := lt
	if rt.Is(types.TyDouble) || !lt.Is(types.TyDouble) && intWidth(rt) > intWidth(lt) {
		wide = rt
	}
	l = fe.convert(l, lt, wide)
	r = fe.convert(r, rt, wide)

	var v value.Value
	if wide.Is(types.TyDouble) {
		v = fe.floatOp(op, l, r)
	} else {
		v = fe.intOp(op, l, r, isUnsigned(wide))
	}
	if isCompare(op) {
		return v
	}
	return fe.convert(v, wide, res)
}

func isCompare(op ast.Op) bool {
	switch op {
	case ast.OpEq, ast.OpNotEq, ast.OpLess, ast.OpGreater, ast.OpLessEq, ast.OpGreaterEq:
		return true
	}
	return false
}

func (fe *funcEmitter) floatOp(op ast.Op, l, r value.Value) value.Value {
	b := fe.cur
	switch op {
	case ast.OpAdd:
		return b.NewFAdd(l, r)
	case ast.OpSub:
		return b.NewFSub(l, r)
	case ast.OpMul:
		return b.NewFMul(l, r)
	case ast.OpDiv:
		return b.NewFDiv(l, r)
	case ast.OpRem:
		return b.NewFRem(l, r)
	case ast.OpEq:
		return b.NewFCmp(enum.FPredOEQ, l, r)
	case ast.OpNotEq:
		return b.NewFCmp(enum.FPredUNE, l, r)
	case ast.OpLess:
		return b.NewFCmp(enum.FPredOLT, l, r)
	case ast.OpGreater:
		return b.NewFCmp(enum.FPredOGT, l, r)
	case ast.OpLessEq:
		return b.NewFCmp(enum.FPredOLE, l, r)
	case ast.OpGreaterEq:
		return b.NewFCmp(enum.FPredOGE, l, r)
	}
	fe.e.fail(fe.loc, diag.IRWrongType, "operator %s on double", op)
	return nil
}

func (fe *funcEmitter) intOp(op ast.Op, l, r value.Value, unsigned bool) value.Value {
	b := fe.cur
	switch op {
	case ast.OpAdd:
		return b.NewAdd(l, r)
	case ast.OpSub:
		return b.NewSub(l, r)
	case ast.OpMul:
		return b.NewMul(l, r)
	case ast.OpDiv:
		if unsigned {
			return b.NewUDiv(l, r)
		}
		return b.NewSDiv(l, r)
	case ast.OpRem:
		if unsigned {
			return b.NewURem(l, r)
		}
		return b.NewSRem(l, r)
	case ast.OpBitAnd:
		return b.NewAnd(l, r)
	case ast.OpBitOr:
		return b.NewOr(l, r)
	case ast.OpBitXor:
		return b.NewXor(l, r)
	case ast.OpEq:
		return b.NewICmp(enum.IPredEQ, l, r)
	case ast.OpNotEq:
		return b.NewICmp(enum.IPredNE, l, r)
	}
	preds := map[ast.Op][2]enum.IPred{
		ast.OpLess:      {enum.IPredSLT, enum.IPredULT},
		ast.OpGreater:   {enum.IPredSGT, enum.IPredUGT},
		ast.OpLessEq:    {enum.IPredSLE, enum.IPredULE},
		ast.OpGreaterEq: {enum.IPredSGE, enum.IPredUGE},
	}
	if p, ok := preds[op]; ok {
		if unsigned {
			return b.NewICmp(p[1], l, r)
		}
		return b.NewICmp(p[0], l, r)
	}
	fe.e.fail(fe.loc, diag.IRWrongType, "operator %s on integers", op)
	return nil
}

// shift computes in the type of the shifted operand.
func (fe *funcEmitter) shift(op ast.Op, l value.Value, lt *types.Type, r value.Value, rt *types.Type, res *types.Type) value.Value {
	r = fe.castInt(r, rt, l.Type().(*lltypes.IntType))
	var v value.Value
	switch {
	case op == ast.OpShl:
		v = fe.cur.NewShl(l, r)
	case isUnsigned(lt):
		v = fe.cur.NewLShr(l, r)
	default:
		v = fe.cur.NewAShr(l, r)
	}
	return fe.convert(v, lt, res)
}

// pointerOp covers pointer offsets and comparisons against pointers or
// integer addresses.
func (fe *funcEmitter) pointerOp(op ast.Op, l value.Value, lt *types.Type, r value.Value, rt *types.Type) value.Value {
	switch op {
	case ast.OpAdd, ast.OpSub:
		ptr, ptrT, off, offT := l, lt, r, rt
		if !lt.IsPtr() {
			ptr, ptrT, off, offT = r, rt, l, lt
		}
		n := fe.toI64(off, offT)
		if op == ast.OpSub {
			n = fe.cur.NewSub(i64(0), n)
		}
		return fe.cur.NewGetElementPtr(fe.e.llType(ptrT.Contained()), ptr, n)
	case ast.OpEq, ast.OpNotEq:
		pred := enum.IPredEQ
		if op == ast.OpNotEq {
			pred = enum.IPredNE
		}
		if !rt.IsPtr() {
			addr := fe.cur.NewPtrToInt(l, lltypes.I64)
			return fe.cur.NewICmp(pred, addr, fe.toI64(r, rt))
		}
		if !lltypes.Equal(l.Type(), r.Type()) {
			r = fe.cur.NewBitCast(r, l.Type())
		}
		return fe.cur.NewICmp(pred, l, r)
	}
	fe.e.fail(fe.loc, diag.IRWrongType, "operator %s on pointers", op)
	return nil
}

// stringCompare compares the contents of two strings.
func (fe *funcEmitter) stringCompare(op ast.Op, l, r value.Value) value.Value {
	cmp := fe.cur.NewCall(fe.e.runtimeFunc("strcmp"), l, r)
	switch op {
	case ast.OpEq:
		return fe.cur.NewICmp(enum.IPredEQ, cmp, i32(0))
	case ast.OpNotEq:
		return fe.cur.NewICmp(enum.IPredNE, cmp, i32(0))
	}
	fe.e.fail(fe.loc, diag.IRWrongType, "operator %s on strings", op)
	return nil
}

// repeatChar builds a fresh heap string of n copies of c.
func (fe *funcEmitter) repeatChar(n value.Value, nt *types.Type, c value.Value) value.Value {
	count := fe.toSize(fe.toI64(n, nt))
	size := fe.cur.NewAdd(count, fe.e.usize(1))
	buf := fe.cur.NewCall(fe.e.runtimeFunc("malloc"), size)
	fe.cur.NewCall(fe.e.runtimeFunc("memset"), buf, fe.cur.NewZExt(c, lltypes.I32), count)
	end := fe.cur.NewGetElementPtr(lltypes.I8, buf, count)
	fe.cur.NewStore(constant.NewInt(lltypes.I8, 0), end)
	return buf
}
