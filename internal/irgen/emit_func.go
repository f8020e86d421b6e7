package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/source"
	"spice/internal/symbols"
	"spice/internal/types"
)

type loopTarget struct {
	brk, cont *ir.Block
	// depth is the number of cleanup scopes open around the loop body.
	depth int
}

// funcEmitter holds the state of one IR function: a manifestation body, a
// lambda or a thread routine.
type funcEmitter struct {
	e   *Emitter
	fn  *symbols.Function
	f   *ir.Func
	idx int
	loc source.CodeLoc

	// allocas is the entry block; every stack slot lives there.
	allocas *ir.Block
	body    *ir.Block
	cur     *ir.Block
	names   map[string]int

	loops         []loopTarget
	fallthroughTo *ir.Block
	fallDepth     int

	isProc bool
	result *symbols.Entry
	// captures maps entries of enclosing functions to their storage inside
	// a lambda or thread routine.
	captures map[*symbols.Entry]value.Value
	// cleanups holds the struct locals of every open scope, innermost last.
	cleanups [][]*symbols.Entry
}

func (e *Emitter) newFuncEmitter(f *ir.Func, idx int, loc source.CodeLoc) *funcEmitter {
	fe := &funcEmitter{
		e:     e,
		f:     f,
		idx:   idx,
		loc:   loc,
		names: make(map[string]int),
	}
	for _, p := range f.Params {
		fe.names[p.Name()]++
	}
	fe.allocas = f.NewBlock(fe.uniqueLocal("entry"))
	fe.body = f.NewBlock(fe.uniqueLocal("body"))
	fe.cur = fe.body
	fe.openScope()
	return fe
}

// emitFunction defines the body of an own manifestation.
func (e *Emitter) emitFunction(fn *symbols.Function) {
	f := e.funcFor(fn)
	fe := e.newFuncEmitter(f, fn.ManIdx, fn.Loc)
	fe.fn = fn
	fe.isProc = fn.IsProc
	if fn.Implicit {
		fe.emitImplicitMember(fn)
		fe.finish()
		return
	}
	scope := fn.Scope
	if scope == nil || fn.Decl == nil {
		e.fail(fn.Loc, diag.IRInvalidFunction, "function %s has no body", fn.Mangled)
	}
	params := f.Params
	if fn.Receiver != nil {
		fe.bindParam(fe.lookup(scope, "this"), params[0])
		params = params[1:]
	}
	for i, p := range fn.Params {
		fe.bindParam(fe.lookup(scope, p.Name), params[i])
	}
	if !fn.IsProc {
		fe.result = fe.lookup(scope, "result")
		slot := fe.alloca(e.llType(fn.Return), "result")
		fe.result.Address = slot
		if fn.Name == "main" && fn.Receiver == nil {
			fe.cur.NewStore(constant.NewZeroInitializer(slot.ElemType), slot)
		}
	}
	if fn.Receiver != nil && fn.Name == ast.CtorName {
		fe.ctorPrologue(fn.Receiver, f.Params[0])
	}
	fe.emitStmts(scope, fn.Decl.Body.Stmts)
	fe.finish()
}

// lookup finds an entry the analyzer declared directly in scope.
func (fe *funcEmitter) lookup(scope *symbols.Scope, name string) *symbols.Entry {
	entry := scope.LookupStrict(name)
	if entry == nil {
		fe.e.fail(fe.loc, diag.IRVariableNotFound, "variable '%s' not found in scope %s", name, scope)
	}
	return entry
}

// child re-enters the scope the analyzer opened for a construct at loc.
func (fe *funcEmitter) child(scope *symbols.Scope, kind symbols.ScopeKind, loc source.CodeLoc) *symbols.Scope {
	c := scope.Child(symbols.BlockKey(kind, loc))
	if c == nil {
		fe.e.fail(loc, diag.IRVariableNotFound, "scope %s has no %s child at %s", scope, kind, loc.Key())
	}
	return c
}

// bindParam spills an incoming parameter to a stack slot so it can be
// reassigned and have its address taken.
func (fe *funcEmitter) bindParam(entry *symbols.Entry, p *ir.Param) {
	slot := fe.alloca(p.Type(), entry.Name+".addr")
	fe.cur.NewStore(p, slot)
	entry.Address = slot
}

// finish closes the function: an open block returns the result variable and
// the entry block jumps to the body.
func (fe *funcEmitter) finish() {
	if !fe.terminated() {
		fe.emitReturn(nil, nil)
	}
	fe.allocas.NewBr(fe.body)
}

// emitReturn runs the destructors of every struct local in scope, except
// the one being returned, and leaves the function.
func (fe *funcEmitter) emitReturn(v value.Value, keep *symbols.Entry) {
	fe.cleanupFrom(0, keep)
	switch {
	case fe.isProc:
		if pt, ok := fe.f.Sig.RetType.(*lltypes.PointerType); ok {
			// thread routines
			fe.cur.NewRet(constant.NewNull(pt))
		} else {
			fe.cur.NewRet(nil)
		}
	case v != nil:
		fe.cur.NewRet(v)
	default:
		fe.cur.NewRet(fe.cur.NewLoad(fe.f.Sig.RetType, fe.result.Address))
	}
}

func (fe *funcEmitter) terminated() bool { return fe.cur.Term != nil }

func (fe *funcEmitter) openScope() { fe.cleanups = append(fe.cleanups, nil) }

// closeScope pops the innermost scope and destroys its struct locals when
// control falls off its end.
func (fe *funcEmitter) closeScope() {
	depth := len(fe.cleanups) - 1
	if !fe.terminated() {
		fe.cleanupFrom(depth, nil)
	}
	fe.cleanups = fe.cleanups[:depth]
}

// own registers a struct local for destruction at the end of the innermost
// scope.
func (fe *funcEmitter) own(entry *symbols.Entry) {
	top := len(fe.cleanups) - 1
	fe.cleanups[top] = append(fe.cleanups[top], entry)
}

// cleanupFrom destroys the struct locals of the scopes at depth and deeper
// in reverse declaration order, skipping keep. The scopes stay open.
func (fe *funcEmitter) cleanupFrom(depth int, keep *symbols.Entry) {
	for i := len(fe.cleanups) - 1; i >= depth; i-- {
		owned := fe.cleanups[i]
		for j := len(owned) - 1; j >= 0; j-- {
			if owned[j] != keep {
				fe.destroy(owned[j].Type.Type, owned[j].Address)
			}
		}
	}
}

// newBlock creates a detached block; enter appends it to the function.
func (fe *funcEmitter) newBlock(name string) *ir.Block {
	return ir.NewBlock(fe.uniqueLocal(name))
}

func (fe *funcEmitter) enter(b *ir.Block) {
	b.Parent = fe.f
	fe.f.Blocks = append(fe.f.Blocks, b)
	fe.cur = b
}

// br jumps to target unless the current block already left.
func (fe *funcEmitter) br(target *ir.Block) {
	if !fe.terminated() {
		fe.cur.NewBr(target)
	}
}

// deadEnd terminates the current block as unreachable and continues in a
// fresh block nothing jumps to.
func (fe *funcEmitter) deadEnd() {
	fe.cur.NewUnreachable()
	fe.enter(fe.newBlock("after.noreturn"))
}

// ctorPrologue stores the vtable pointers and the field defaults of sm into
// the object at this.
func (fe *funcEmitter) ctorPrologue(sm *symbols.Struct, this value.Value) {
	for k, iface := range sm.Interfaces {
		fe.cur.NewStore(fe.e.vtableGlobal(sm, iface), fe.slotPtr(sm, this, k))
	}
	saved := fe.idx
	fe.idx = sm.ManIdx
	defer func() { fe.idx = saved }()
	for _, f := range sm.Fields() {
		ft := f.Type.Type
		switch {
		case fieldDefault(f) != nil:
			fe.cur.NewStore(fe.rvalue(sm.Scope, fieldDefault(f), ft), fe.fieldPtr(sm, this, f))
		case ft.Is(types.TyStruct) && fe.e.hasCtor(fe.e.structOf(ft)):
			fe.construct(ft, fe.fieldPtr(sm, this, f))
		}
	}
}

func fieldDefault(f *symbols.Entry) *ast.Expr {
	if fd, ok := f.Decl.(*ast.FieldDecl); ok {
		return fd.Default
	}
	return nil
}

func (fe *funcEmitter) fieldPtr(sm *symbols.Struct, obj value.Value, f *symbols.Entry) value.Value {
	return fe.slotPtr(sm, obj, fieldIndex(sm, f))
}

func (fe *funcEmitter) slotPtr(sm *symbols.Struct, obj value.Value, k int) value.Value {
	return fe.cur.NewGetElementPtr(fe.e.structType(sm.Type), obj, i32(0), i32(int64(k)))
}

// destroy calls the destructor of a struct stored at ptr, if destroying it
// has any effect.
func (fe *funcEmitter) destroy(t *types.Type, ptr value.Value) {
	if dtor := fe.e.memberFunc(fe.e.structOf(t), ast.DtorName); dtor != nil {
		fe.cur.NewCall(dtor, ptr)
	}
}

// construct runs the default constructor on the object at ptr. Structs
// without one start zeroed.
func (fe *funcEmitter) construct(t *types.Type, ptr value.Value) {
	sm := fe.e.structOf(t)
	if ctor := fe.e.memberFunc(sm, ast.CtorName); ctor != nil {
		fe.cur.NewCall(ctor, ptr)
		return
	}
	if sm.SpecialMember(ast.CtorName, 0) == nil && fe.e.needsMember(sm, ast.CtorName) {
		fe.ctorPrologue(sm, ptr)
		return
	}
	fe.cur.NewStore(constant.NewZeroInitializer(fe.e.structType(t)), ptr)
}

// copyInto copy-constructs the object at dst from the one at src. A plain
// load and store suffices when no copy constructor has work to do.
func (fe *funcEmitter) copyInto(t *types.Type, dst, src value.Value) {
	if cp := fe.e.memberFunc(fe.e.structOf(t), ast.CopyName); cp != nil {
		fe.cur.NewCall(cp, dst, src)
		return
	}
	fe.cur.NewStore(fe.cur.NewLoad(fe.e.structType(t), src), dst)
}

// specialMember finds the ctor, dtor or copy ctor of sm.
func specialMember(sm *symbols.Struct, name string) *symbols.Function {
	n := 0
	if name == ast.CopyName {
		n = 1
	}
	return sm.SpecialMember(name, n)
}

// memberFunc returns the special member name of sm, or nil when calling it
// would have no effect. Implicit members are declared, and later emitted,
// only on first use.
func (e *Emitter) memberFunc(sm *symbols.Struct, name string) *ir.Func {
	fn := specialMember(sm, name)
	if fn == nil || fn.Implicit && !e.needsMember(sm, name) {
		return nil
	}
	return e.funcFor(fn)
}

// hasMember reports whether sm has a special member with an effect.
func (e *Emitter) hasMember(sm *symbols.Struct, name string) bool {
	fn := specialMember(sm, name)
	return fn != nil && (!fn.Implicit || e.needsMember(sm, name))
}

func (e *Emitter) hasCtor(sm *symbols.Struct) bool { return e.hasMember(sm, ast.CtorName) }

// needsMember reports whether a synthesized member of sm has work to do: a
// ctor stores vtables, defaults or nested objects, a dtor frees heap fields
// or destroys nested objects and a copy ctor deep copies either of them.
func (e *Emitter) needsMember(sm *symbols.Struct, name string) bool {
	if name == ast.CtorName && len(sm.Interfaces) > 0 {
		return true
	}
	for _, f := range sm.Fields() {
		ft := f.Type.Type
		switch {
		case name == ast.CtorName && fieldDefault(f) != nil:
			return true
		case name != ast.CtorName && f.Type.IsHeap() && ft.IsPtr():
			return true
		case ft.Is(types.TyStruct) && e.hasMember(e.structOf(ft), name):
			return true
		}
	}
	return false
}

// emitImplicitMember synthesizes ctor, dtor and copy of a struct that does
// not declare them.
func (fe *funcEmitter) emitImplicitMember(fn *symbols.Function) {
	sm := fn.Receiver
	this := fe.f.Params[0]
	fields := sm.Fields()
	switch fn.Name {
	case ast.CtorName:
		fe.ctorPrologue(sm, this)
	case ast.DtorName:
		for i := len(fields) - 1; i >= 0; i-- {
			f := fields[i]
			ft := f.Type.Type
			switch {
			case f.Type.IsHeap() && ft.IsPtr():
				p := fe.cur.NewLoad(fe.e.llType(ft), fe.fieldPtr(sm, this, f))
				fe.cur.NewCall(fe.e.runtimeFunc("free"), fe.cur.NewBitCast(p, lltypes.I8Ptr))
			case ft.Is(types.TyStruct) && fe.e.hasMember(fe.e.structOf(ft), ast.DtorName):
				fe.destroy(ft, fe.fieldPtr(sm, this, f))
			}
		}
	case ast.CopyName:
		other := fe.f.Params[1]
		fe.cur.NewStore(fe.cur.NewLoad(fe.e.structType(sm.Type), other), this)
		for _, f := range fields {
			ft := f.Type.Type
			switch {
			case f.Type.IsHeap() && ft.IsPtr():
				src := fe.cur.NewLoad(fe.e.llType(ft), fe.fieldPtr(sm, other, f))
				size := fe.e.usize(fe.e.sizeOf(ft.Contained()))
				mem := fe.cur.NewCall(fe.e.runtimeFunc("malloc"), size)
				fe.cur.NewCall(fe.e.runtimeFunc("memcpy"), mem, fe.cur.NewBitCast(src, lltypes.I8Ptr), size)
				fe.cur.NewStore(fe.cur.NewBitCast(mem, fe.e.llType(ft)), fe.fieldPtr(sm, this, f))
			case ft.Is(types.TyStruct) && fe.e.hasMember(fe.e.structOf(ft), ast.CopyName):
				// the shallow store above copied the nested object bitwise
				fe.copyInto(ft, fe.fieldPtr(sm, this, f), fe.fieldPtr(sm, other, f))
			}
		}
	default:
		fe.e.fail(fn.Loc, diag.IRInvalidFunction, "unknown implicit member %s", fn.Name)
	}
}

// sizeOf returns the byte size of t on the target.
func (e *Emitter) sizeOf(t *types.Type) int64 {
	n, err := e.layout.SizeOf(t)
	if err != nil {
		e.fail(noLoc, diag.IRWrongType, "size of %s: %v", t.Name(), err)
	}
	return int64(n)
}
