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

// thunk defines name.thunk with the closure signature of ft; it drops the
// capture pointer and forwards to target.
func (e *Emitter) thunk(name string, ft *types.Type, target *ir.Func) *ir.Func {
	sig := e.closureSignature(ft)
	params := make([]*ir.Param, len(sig.Params))
	for i, pt := range sig.Params {
		params[i] = ir.NewParam("", pt)
	}
	params[0].SetName("captures")
	th := e.mod.NewFunc(e.uniqueName(name+".thunk"), sig.RetType, params...)
	th.Linkage = enum.LinkageInternal
	b := th.NewBlock("entry")
	args := make([]value.Value, 0, len(params)-1)
	for _, p := range params[1:] {
		args = append(args, p)
	}
	res := b.NewCall(target, args...)
	if lltypes.Equal(sig.RetType, lltypes.Void) {
		b.NewRet(nil)
	} else {
		b.NewRet(res)
	}
	return th
}

// captureType lays out the captures of a lambda or thread scope in capture
// order. By-value captures hold a copy, by-reference captures a pointer.
func (e *Emitter) captureType(caps []*symbols.Capture) *lltypes.StructType {
	fields := make([]lltypes.Type, len(caps))
	for i, c := range caps {
		t := e.llType(c.Entry.Type.Type)
		if c.Mode == symbols.ByReference {
			t = lltypes.NewPointer(t)
		}
		fields[i] = t
	}
	return lltypes.NewStruct(fields...)
}

// directCapture reports whether caps is a single pointer that travels as
// the capture argument itself, without a record.
func directCapture(caps []*symbols.Capture) bool {
	if len(caps) != 1 {
		return false
	}
	t := caps[0].Entry.Type.Type
	if t.Is(types.TyStruct) {
		return false
	}
	return caps[0].Mode == symbols.ByReference || t.IsPtr()
}

// packCaptures fills the capture record and returns it as i8*. Threads may
// outlive the current block, so their record goes to the heap.
func (fe *funcEmitter) packCaptures(caps []*symbols.Capture, heap bool) (*lltypes.StructType, value.Value) {
	if len(caps) == 0 {
		return nil, constant.NewNull(lltypes.I8Ptr)
	}
	capsT := fe.e.captureType(caps)
	if directCapture(caps) {
		c := caps[0]
		var v value.Value = fe.addressOf(c.Entry)
		if c.Mode == symbols.ByValue {
			v = fe.cur.NewLoad(capsT.Fields[0], v)
		}
		return capsT, fe.cur.NewBitCast(v, lltypes.I8Ptr)
	}
	var rec value.Value
	if heap {
		size := constant.NewPtrToInt(
			constant.NewGetElementPtr(capsT, constant.NewNull(lltypes.NewPointer(capsT)), i32(1)),
			fe.e.sizeType())
		mem := fe.cur.NewCall(fe.e.runtimeFunc("malloc"), size)
		rec = fe.cur.NewBitCast(mem, lltypes.NewPointer(capsT))
	} else {
		rec = fe.alloca(capsT, "captures")
	}
	for i, c := range caps {
		addr := fe.addressOf(c.Entry)
		var v value.Value = addr
		if c.Mode == symbols.ByValue {
			v = fe.cur.NewLoad(capsT.Fields[i], addr)
		}
		fe.cur.NewStore(v, fe.cur.NewGetElementPtr(capsT, rec, i32(0), i32(int64(i))))
	}
	return capsT, fe.cur.NewBitCast(rec, lltypes.I8Ptr)
}

// unpackCaptures maps every captured entry to its storage inside the
// closure body.
func (fe *funcEmitter) unpackCaptures(caps []*symbols.Capture, capsT *lltypes.StructType, raw value.Value) {
	fe.captures = make(map[*symbols.Entry]value.Value, len(caps))
	if len(caps) == 0 {
		return
	}
	if directCapture(caps) {
		c := caps[0]
		v := fe.cur.NewBitCast(raw, capsT.Fields[0])
		if c.Mode == symbols.ByReference {
			fe.captures[c.Entry] = v
			return
		}
		slot := fe.alloca(capsT.Fields[0], c.Entry.Name)
		fe.cur.NewStore(v, slot)
		fe.captures[c.Entry] = slot
		return
	}
	rec := fe.cur.NewBitCast(raw, lltypes.NewPointer(capsT))
	for i, c := range caps {
		slot := fe.cur.NewGetElementPtr(capsT, rec, i32(0), i32(int64(i)))
		if c.Mode == symbols.ByReference {
			fe.captures[c.Entry] = fe.cur.NewLoad(capsT.Fields[i], slot)
		} else {
			fe.captures[c.Entry] = slot
		}
	}
}

// emitLambda defines the lambda body as an internal function and yields the
// fat pointer {function, captures}.
func (fe *funcEmitter) emitLambda(_ *symbols.Scope, x *ast.Expr) exprResult {
	inner, ok := x.RefAt(fe.idx).(*symbols.Scope)
	if !ok {
		fe.e.fail(x.Loc, diag.IRVariableNotFound, "lambda without scope")
	}
	fl := x.Func
	ft := fe.typeOf(x)
	sig := fe.e.closureSignature(ft)
	params := []*ir.Param{ir.NewParam("captures", lltypes.I8Ptr)}
	for i, p := range fl.Params {
		params = append(params, ir.NewParam(p.Name, sig.Params[i+1]))
	}
	f := fe.e.mod.NewFunc(fe.e.uniqueName(fe.f.Name()+".lambda"), sig.RetType, params...)
	f.Linkage = enum.LinkageInternal

	caps := inner.Captures()
	capsT, rec := fe.packCaptures(caps, false)

	le := fe.e.newFuncEmitter(f, fe.idx, fl.Loc)
	le.isProc = fl.IsProc
	le.unpackCaptures(caps, capsT, f.Params[0])
	for i, p := range fl.Params {
		le.bindParam(le.lookup(inner, p.Name), f.Params[i+1])
	}
	if !fl.IsProc {
		le.result = le.lookup(inner, "result")
		le.result.Address = le.alloca(sig.RetType, "result")
	}
	le.emitStmts(inner, fl.Body.Stmts)
	le.finish()

	fat := fe.cur.NewInsertValue(constant.NewZeroInitializer(fe.e.fatType), constant.NewBitCast(f, lltypes.I8Ptr), 0)
	return valueResult(fe.cur.NewInsertValue(fat, rec, 1), ft)
}

// emitThread starts the body on a new pthread. The routine receives the
// captures by reference and the expression yields the thread id.
func (fe *funcEmitter) emitThread(_ *symbols.Scope, x *ast.Expr) exprResult {
	inner, ok := x.RefAt(fe.idx).(*symbols.Scope)
	if !ok {
		fe.e.fail(x.Loc, diag.IRVariableNotFound, "thread without scope")
	}
	caps := inner.Captures()
	capsT, rec := fe.packCaptures(caps, true)

	f := fe.e.mod.NewFunc(fe.e.uniqueName(fe.f.Name()+".thread"), lltypes.I8Ptr, ir.NewParam("captures", lltypes.I8Ptr))
	f.Linkage = enum.LinkageInternal
	te := fe.e.newFuncEmitter(f, fe.idx, x.Loc)
	te.isProc = true
	te.unpackCaptures(caps, capsT, f.Params[0])
	te.emitStmts(inner, x.Body.Stmts)
	te.finish()

	tid := fe.alloca(lltypes.I8Ptr, "tid")
	fe.cur.NewCall(fe.e.runtimeFunc("pthread_create"), tid, constant.NewNull(lltypes.I8Ptr), f, rec)
	return valueResult(fe.cur.NewLoad(lltypes.I8Ptr, tid), fe.typeOf(x))
}
