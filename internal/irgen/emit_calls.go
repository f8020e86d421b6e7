package irgen

import (
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/sema"
	"spice/internal/symbols"
	"spice/internal/types"
)

func (fe *funcEmitter) emitCall(scope *symbols.Scope, x *ast.Expr) exprResult {
	call, ok := x.RefAt(fe.idx).(*sema.Call)
	if !ok {
		fe.e.fail(x.Loc, diag.IRInvalidFunction, "call was not resolved")
	}
	switch call.Kind {
	case sema.CallFunction, sema.CallMethod:
		return fe.callDirect(scope, x, call)
	case sema.CallInterface:
		return fe.callInterface(scope, x, call)
	case sema.CallValue:
		return fe.callValue(scope, x)
	}
	fe.e.fail(x.Loc, diag.IRInvalidFunction, "unknown call kind %d", call.Kind)
	return exprResult{}
}

// callDirect calls a known manifestation. Parameters the call site left
// out take their defaults, evaluated under the callee's manifestation.
func (fe *funcEmitter) callDirect(scope *symbols.Scope, x *ast.Expr, call *sema.Call) exprResult {
	fn := call.Func
	f := fe.e.funcFor(fn)
	var args []value.Value
	if fn.Receiver != nil {
		args = append(args, fe.receiver(scope, call, f.Params[0].Type()))
	}
	args = append(args, fe.emitArgs(scope, x.Args, fn.ParamTypes())...)
	if len(call.Defaults) > 0 {
		args = append(args, fe.emitDefaults(scope, fn, call)...)
	}
	v := fe.cur.NewCall(f, args...)
	return valueResult(v, fe.typeOf(x))
}

// receiver evaluates the object a method is called on to a pointer.
func (fe *funcEmitter) receiver(scope *symbols.Scope, call *sema.Call, want lltypes.Type) value.Value {
	if call.This == nil {
		fe.e.fail(fe.loc, diag.IRInvalidFunction, "method call without receiver")
	}
	r := fe.emitExpr(scope, call.This)
	var this value.Value
	if call.ThisIsPtr {
		this = fe.resolveValue(r)
	} else {
		this = fe.resolveAddress(r)
	}
	if !lltypes.Equal(this.Type(), want) {
		this = fe.cur.NewBitCast(this, want)
	}
	return this
}

// emitArgs converts the arguments to the parameter types. Reference
// parameters receive the address of the argument; arguments beyond the
// parameter list belong to a C variadic and get the default promotions.
func (fe *funcEmitter) emitArgs(scope *symbols.Scope, args []*ast.Expr, params []*types.Type) []value.Value {
	out := make([]value.Value, 0, len(args))
	for i, a := range args {
		switch {
		case i >= len(params):
			out = append(out, fe.variadicArg(scope, a))
		case params[i].IsRef():
			out = append(out, fe.resolveAddress(fe.emitExpr(scope, a)))
		default:
			out = append(out, fe.rvalue(scope, a, params[i]))
		}
	}
	return out
}

func (fe *funcEmitter) variadicArg(scope *symbols.Scope, a *ast.Expr) value.Value {
	r := fe.emitExpr(scope, a)
	if r.t.IsArray() && r.t.ArraySize() != types.ArraySizeUnknown {
		return fe.decay(r, r.t.Contained().MustPointer())
	}
	v := fe.resolveValue(r)
	if w := intWidth(r.t); w > 0 && w < 32 {
		return fe.castInt(v, r.t, lltypes.I32)
	}
	return v
}

func (fe *funcEmitter) emitDefaults(scope *symbols.Scope, fn *symbols.Function, call *sema.Call) []value.Value {
	saved := fe.idx
	fe.idx = call.DefaultsIdx
	defer func() { fe.idx = saved }()
	defScope := scope.Global()
	if fn.Scope != nil {
		defScope = fn.Scope.Global()
	}
	first := len(fn.Params) - len(call.Defaults)
	out := make([]value.Value, 0, len(call.Defaults))
	for i, d := range call.Defaults {
		if d == nil {
			fe.e.fail(fe.loc, diag.IRInvalidFunction, "parameter %d of %s has no default", first+i+1, fn.Mangled)
		}
		out = append(out, fe.rvalue(defScope, d, fn.Params[first+i].Type))
	}
	return out
}

// callInterface dispatches through the vtable the interface pointer refers
// to. The slot's this offset turns the interface pointer back into the
// object pointer.
func (fe *funcEmitter) callInterface(scope *symbols.Scope, x *ast.Expr, call *sema.Call) exprResult {
	iface := call.Iface
	m := iface.Methods[call.Method]
	vtT := fe.e.vtableType(iface.Type)

	ip := fe.resolveValue(fe.emitExpr(scope, call.This))
	vptr := fe.cur.NewLoad(lltypes.NewPointer(vtT), ip)
	offset := fe.cur.NewLoad(lltypes.I64, fe.cur.NewGetElementPtr(vtT, vptr, i32(0), i32(0)))
	raw := fe.cur.NewBitCast(ip, lltypes.I8Ptr)
	this := fe.cur.NewGetElementPtr(lltypes.I8, raw, fe.cur.NewSub(i64(0), offset))

	slot := fe.cur.NewGetElementPtr(vtT, vptr, i32(0), i32(2), i32(int64(call.Method)))
	fnp := fe.cur.NewLoad(lltypes.I8Ptr, slot)
	callee := fe.cur.NewBitCast(fnp, lltypes.NewPointer(fe.e.methodSignature(m)))

	args := append([]value.Value{this}, fe.emitArgs(scope, x.Args, m.Params)...)
	return valueResult(fe.cur.NewCall(callee, args...), fe.typeOf(x))
}

// callValue invokes a fat function pointer. The capture pointer always
// travels as the first argument.
func (fe *funcEmitter) callValue(scope *symbols.Scope, x *ast.Expr) exprResult {
	ft := fe.typeOf(x.X)
	fat := fe.resolveValue(fe.emitExpr(scope, x.X))
	fnp := fe.cur.NewExtractValue(fat, 0)
	caps := fe.cur.NewExtractValue(fat, 1)
	callee := fe.cur.NewBitCast(fnp, lltypes.NewPointer(fe.e.closureSignature(ft)))
	args := append([]value.Value{caps}, fe.emitArgs(scope, x.Args, ft.Params())...)
	return valueResult(fe.cur.NewCall(callee, args...), fe.typeOf(x))
}

// methodSignature is the slot type of an interface method: the object
// arrives as an untyped pointer.
func (e *Emitter) methodSignature(m symbols.Method) *lltypes.FuncType {
	params := []lltypes.Type{lltypes.I8Ptr}
	for _, p := range m.Params {
		params = append(params, e.llType(p))
	}
	return lltypes.NewFunc(e.returnType(m.IsProc, m.Return), params...)
}

// funcValue turns a named function into a fat pointer. Plain functions take
// no capture pointer, so a forwarding thunk adapts them to the closure
// calling convention.
func (e *Emitter) funcValue(fn *symbols.Function) constant.Constant {
	if fn.Receiver != nil {
		e.fail(fn.Loc, diag.IRInvalidFunction, "method %s used as a value", fn.Mangled)
	}
	th, ok := e.thunks[fn]
	if !ok {
		target := e.funcFor(fn)
		th = e.thunk(fn.Mangled, fn.FuncType(e.reg), target)
		e.thunks[fn] = th
	}
	return constant.NewStruct(e.fatType, constant.NewBitCast(th, lltypes.I8Ptr), constant.NewNull(lltypes.I8Ptr))
}
