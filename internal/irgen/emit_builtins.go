package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/layout"
	"spice/internal/symbols"
	"spice/internal/types"
)

// runtimeDecl is the C signature of a libc or pthread helper the generated
// code calls.
type runtimeDecl struct {
	ret      lltypes.Type
	params   []lltypes.Type
	variadic bool
}

func (e *Emitter) runtimeDecl(name string) (runtimeDecl, bool) {
	size := e.sizeType()
	routine := lltypes.NewPointer(lltypes.NewFunc(lltypes.I8Ptr, lltypes.I8Ptr))
	decls := map[string]runtimeDecl{
		"printf":         {lltypes.I32, []lltypes.Type{lltypes.I8Ptr}, true},
		"fprintf":        {lltypes.I32, []lltypes.Type{lltypes.I8Ptr, lltypes.I8Ptr}, true},
		"exit":           {lltypes.Void, []lltypes.Type{lltypes.I32}, false},
		"malloc":         {lltypes.I8Ptr, []lltypes.Type{size}, false},
		"free":           {lltypes.Void, []lltypes.Type{lltypes.I8Ptr}, false},
		"memcpy":         {lltypes.I8Ptr, []lltypes.Type{lltypes.I8Ptr, lltypes.I8Ptr, size}, false},
		"memset":         {lltypes.I8Ptr, []lltypes.Type{lltypes.I8Ptr, lltypes.I32, size}, false},
		"strcmp":         {lltypes.I32, []lltypes.Type{lltypes.I8Ptr, lltypes.I8Ptr}, false},
		"strlen":         {size, []lltypes.Type{lltypes.I8Ptr}, false},
		"pthread_create": {lltypes.I32, []lltypes.Type{lltypes.NewPointer(lltypes.I8Ptr), lltypes.I8Ptr, routine, lltypes.I8Ptr}, false},
		"pthread_join":   {lltypes.I32, []lltypes.Type{lltypes.I8Ptr, lltypes.NewPointer(lltypes.I8Ptr)}, false},
		"pthread_self":   {lltypes.I8Ptr, nil, false},
	}
	d, ok := decls[name]
	return d, ok
}

// runtimeFunc declares a runtime helper on first use. A user extern of the
// same name is reused, cast to the helper's signature if it differs.
func (e *Emitter) runtimeFunc(name string) value.Value {
	if f, ok := e.runtime[name]; ok {
		return f
	}
	d, ok := e.runtimeDecl(name)
	if !ok {
		e.fail(noLoc, diag.IRInvalidFunction, "unknown runtime function %s", name)
	}
	sig := lltypes.NewFunc(d.ret, d.params...)
	sig.Variadic = d.variadic
	var v value.Value
	for fn, f := range e.funcs {
		if fn.IsExtern() && f.Name() == name {
			v = f
			if !lltypes.Equal(f.Sig, sig) {
				v = constant.NewBitCast(f, lltypes.NewPointer(sig))
			}
			break
		}
	}
	if v == nil {
		params := make([]*ir.Param, len(d.params))
		for i, p := range d.params {
			params[i] = ir.NewParam("", p)
		}
		f := e.mod.NewFunc(name, d.ret, params...)
		f.Sig.Variadic = d.variadic
		v = f
	}
	e.runtime[name] = v
	return v
}

// sizeType is size_t of the target.
func (e *Emitter) sizeType() *lltypes.IntType {
	if e.target.PtrSize == 4 {
		return lltypes.I32
	}
	return lltypes.I64
}

func (e *Emitter) usize(n int64) *constant.Int { return constant.NewInt(e.sizeType(), n) }

// toSize narrows an i64 count to size_t on 32-bit targets.
func (fe *funcEmitter) toSize(v value.Value) value.Value {
	if st := fe.e.sizeType(); st.BitSize < 64 {
		return fe.cur.NewTrunc(v, st)
	}
	return v
}

// stderrStream loads the C stderr stream.
func (fe *funcEmitter) stderrStream() value.Value {
	name := "stderr"
	if fe.e.target.OS == layout.OSDarwin {
		name = "__stderrp"
	}
	g, ok := fe.e.runtime[name].(*ir.Global)
	if !ok {
		g = fe.e.mod.NewGlobal(name, lltypes.I8Ptr)
		fe.e.runtime[name] = g
	}
	return fe.cur.NewLoad(lltypes.I8Ptr, g)
}

// abort prints msg to stderr and exits with status 1. The current block
// ends unreachable.
func (fe *funcEmitter) abort(msg value.Value) {
	fe.cur.NewCall(fe.e.runtimeFunc("fprintf"), fe.stderrStream(), fe.e.stringPtr("%s\n"), msg)
	fe.cur.NewCall(fe.e.runtimeFunc("exit"), i32(1))
	fe.cur.NewUnreachable()
}

func (fe *funcEmitter) emitPanic(scope *symbols.Scope, x *ast.Expr) exprResult {
	msg := fe.rvalue(scope, x.Args[0], nil)
	fe.abort(msg)
	fe.enter(fe.newBlock("after.panic"))
	return valueResult(constant.NewZeroInitializer(lltypes.I8), fe.typeOf(x))
}

// emitPrintf forwards to C printf. Narrow integers are widened as C
// varargs require; char arrays decay to pointers.
func (fe *funcEmitter) emitPrintf(scope *symbols.Scope, x *ast.Expr) exprResult {
	args := []value.Value{fe.e.stringPtr(x.Args[0].Lit.Str)}
	for _, a := range x.Args[1:] {
		r := fe.emitExpr(scope, a)
		switch {
		case r.t == nil:
			fe.e.fail(a.Loc, diag.IRPrintfNullType, "printf argument without type")
		case r.t.IsArray() && r.t.ArraySize() != types.ArraySizeUnknown:
			args = append(args, fe.decay(r, r.t.Contained().MustPointer()))
			continue
		}
		v := fe.resolveValue(r)
		if w := intWidth(r.t); w > 0 && w < 32 {
			v = fe.castInt(v, r.t, lltypes.I32)
		}
		args = append(args, v)
	}
	return valueResult(fe.cur.NewCall(fe.e.runtimeFunc("printf"), args...), fe.typeOf(x))
}

// operandType resolves the type sizeof and alignof measure: a written type,
// a bare type name or the type of an expression.
func (fe *funcEmitter) operandType(x *ast.Expr) *types.Type {
	switch {
	case x.Type != nil:
		return x.Type.TypeAt(fe.idx)
	case x.X.Kind == ast.ExprIdent && x.X.RefAt(fe.idx) == nil:
		return x.X.TypeAt(fe.idx)
	}
	return fe.typeOf(x.X)
}

// emitSizeof folds sizeof, in bits, and alignof, in bytes, to constants.
// Operand expressions are not evaluated.
func (fe *funcEmitter) emitSizeof(x *ast.Expr) exprResult {
	t := fe.operandType(x)
	if t == nil {
		fe.e.fail(x.Loc, diag.IRWrongType, "%s operand was not analyzed", x.Kind)
	}
	var n int64
	if x.Kind == ast.ExprSizeof {
		bits, err := fe.e.layout.SizeOfBits(t.RemoveReference())
		if err != nil {
			fe.e.fail(x.Loc, diag.IRWrongType, "sizeof %s: %v", t.Name(), err)
		}
		n = int64(bits)
	} else {
		align, err := fe.e.layout.AlignOf(t.RemoveReference())
		if err != nil {
			fe.e.fail(x.Loc, diag.IRWrongType, "alignof %s: %v", t.Name(), err)
		}
		n = int64(align)
	}
	return constResult(i32(n), fe.typeOf(x))
}

// emitLen uses the folded length where the analyzer knew it and strlen
// otherwise.
func (fe *funcEmitter) emitLen(scope *symbols.Scope, x *ast.Expr) exprResult {
	t := fe.typeOf(x)
	if c := x.ConstAt(fe.idx); c != nil {
		return constResult(i32(c.Int), t)
	}
	s := fe.rvalue(scope, x.X, nil)
	n := fe.cur.NewCall(fe.e.runtimeFunc("strlen"), s)
	if fe.e.sizeType().BitSize == 32 {
		return valueResult(n, t)
	}
	return valueResult(fe.cur.NewTrunc(n, lltypes.I32), t)
}

// emitTid derives an int id from pthread_self.
func (fe *funcEmitter) emitTid(x *ast.Expr) exprResult {
	self := fe.cur.NewCall(fe.e.runtimeFunc("pthread_self"))
	id := fe.cur.NewPtrToInt(self, lltypes.I64)
	return valueResult(fe.cur.NewTrunc(id, lltypes.I32), fe.typeOf(x))
}

// emitJoin waits for every thread id given directly or in an array and
// yields the number of joined threads.
func (fe *funcEmitter) emitJoin(scope *symbols.Scope, x *ast.Expr) exprResult {
	join := fe.e.runtimeFunc("pthread_join")
	noResult := constant.NewNull(lltypes.NewPointer(lltypes.I8Ptr))
	joined := int64(0)
	for _, a := range x.Args {
		r := fe.emitExpr(scope, a)
		if !r.t.IsArray() {
			fe.cur.NewCall(join, fe.resolveValue(r), noResult)
			joined++
			continue
		}
		arrT := fe.e.llType(r.t)
		arr := fe.readAddress(r)
		for i := range r.t.ArraySize() {
			tid := fe.cur.NewLoad(lltypes.I8Ptr, fe.cur.NewGetElementPtr(arrT, arr, i64(0), i64(int64(i))))
			fe.cur.NewCall(join, tid, noResult)
			joined++
		}
	}
	return valueResult(i32(joined), fe.typeOf(x))
}

// syscallABI is the inline assembly convention of one target.
type syscallABI struct {
	asm        string
	constraint string
	word       *lltypes.IntType
	// offset is added to the syscall number, 0x2000000 for the BSD class
	// on x86_64 Darwin.
	offset int64
}

func syscallFor(t layout.Target) (syscallABI, bool) {
	switch {
	case t.Arch == layout.ArchX86_64:
		abi := syscallABI{
			asm:        "syscall",
			constraint: "={rax},{rax},{rdi},{rsi},{rdx},{r10},{r8},{r9},~{rcx},~{r11},~{memory}",
			word:       lltypes.I64,
		}
		if t.OS == layout.OSDarwin {
			abi.offset = 0x2000000
		}
		return abi, true
	case t.Arch == layout.ArchX86 && t.OS == layout.OSLinux:
		return syscallABI{
			asm:        "int $$0x80",
			constraint: "={eax},{eax},{ebx},{ecx},{edx},{esi},{edi},{ebp},~{memory}",
			word:       lltypes.I32,
		}, true
	case t.Arch == layout.ArchAArch64 && t.OS == layout.OSLinux:
		return syscallABI{
			asm:        "svc #0",
			constraint: "={x0},{x8},{x0},{x1},{x2},{x3},{x4},{x5},~{memory}",
			word:       lltypes.I64,
		}, true
	case t.Arch == layout.ArchAArch64 && t.OS == layout.OSDarwin:
		return syscallABI{
			asm:        "svc #0x80",
			constraint: "={x0},{x16},{x0},{x1},{x2},{x3},{x4},{x5},~{memory}",
			word:       lltypes.I64,
		}, true
	}
	return syscallABI{}, false
}

// emitSyscall issues a raw system call through inline assembly. Missing
// arguments are passed as zero.
func (fe *funcEmitter) emitSyscall(scope *symbols.Scope, x *ast.Expr) exprResult {
	abi, ok := syscallFor(fe.e.target)
	if !ok {
		fe.e.fail(x.Loc, diag.IRTargetNotAvailable, "syscall is not available on %s", fe.e.target.Triple)
	}
	args := make([]value.Value, 0, 7)
	for i, a := range x.Args {
		v := fe.syscallWord(scope, a, abi.word)
		if i == 0 && abi.offset != 0 {
			v = fe.cur.NewAdd(v, constant.NewInt(abi.word, abi.offset))
		}
		args = append(args, v)
	}
	for len(args) < 7 {
		args = append(args, constant.NewInt(abi.word, 0))
	}
	params := make([]lltypes.Type, len(args))
	for i := range params {
		params[i] = abi.word
	}
	asm := ir.NewInlineAsm(lltypes.NewPointer(lltypes.NewFunc(abi.word, params...)), abi.asm, abi.constraint)
	asm.SideEffect = true
	var res value.Value = fe.cur.NewCall(asm, args...)
	if abi.word.BitSize < 64 {
		res = fe.cur.NewSExt(res, lltypes.I64)
	}
	return valueResult(res, fe.typeOf(x))
}

// syscallWord converts an integer, bool, pointer or array argument to a
// register sized integer.
func (fe *funcEmitter) syscallWord(scope *symbols.Scope, a *ast.Expr, word *lltypes.IntType) value.Value {
	r := fe.emitExpr(scope, a)
	if r.t.IsArray() && r.t.ArraySize() != types.ArraySizeUnknown {
		return fe.cur.NewPtrToInt(fe.decay(r, r.t.Contained().MustPointer()), word)
	}
	v := fe.resolveValue(r)
	if lltypes.IsPointer(v.Type()) {
		return fe.cur.NewPtrToInt(v, word)
	}
	return fe.castInt(v, r.t, word)
}
