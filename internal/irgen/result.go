package irgen

import (
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

// exprResult is what an expression lowered to, in one of four forms:
//
//   - value: an SSA value;
//   - constant: a compile-time value. Aggregate literals also carry ptr,
//     their private global, which is never written through;
//   - ptr: the storage of an lvalue;
//   - refPtr: the slot of a reference, holding the address of its referee.
//
// Value, Address and Constant convert between the forms on demand.
type exprResult struct {
	value    value.Value
	constant constant.Constant
	ptr      value.Value
	refPtr   value.Value
	entry    *symbols.Entry
	// t is the Spice type of the value, references removed.
	t *types.Type
}

func valueResult(v value.Value, t *types.Type) exprResult {
	return exprResult{value: v, t: t}
}

func constResult(c constant.Constant, t *types.Type) exprResult {
	return exprResult{constant: c, t: t}
}

// literalResult is an aggregate constant whose storage is the immutable
// global g.
func literalResult(c constant.Constant, g *ir.Global, t *types.Type) exprResult {
	return exprResult{constant: c, ptr: g, t: t}
}

func addrResult(ptr value.Value, t *types.Type, entry *symbols.Entry) exprResult {
	return exprResult{ptr: ptr, t: t, entry: entry}
}

func refResult(slot value.Value, t *types.Type, entry *symbols.Entry) exprResult {
	return exprResult{refPtr: slot, t: t, entry: entry}
}

// Constant returns the compile-time value of r, or nil when it is only
// known at run time.
func (r *exprResult) Constant() constant.Constant {
	if r.constant != nil {
		return r.constant
	}
	c, _ := r.value.(constant.Constant)
	return c
}

// Value returns r as an SSA value. Storage is loaded on every call so a
// store in between is observed. Volatile variables are never cached in a
// register.
func (r *exprResult) Value(fe *funcEmitter) value.Value {
	switch {
	case r.value != nil:
		return r.value
	case r.constant != nil && r.ptr == nil:
		return r.constant
	case r.ptr == nil && r.refPtr == nil:
		fe.e.fail(fe.loc, diag.IRWrongType, "expression has neither value nor address")
	}
	ld := fe.cur.NewLoad(fe.e.llType(r.t), r.location(fe))
	if r.entry != nil && r.entry.IsVolatile() {
		ld.Volatile = true
	}
	return ld
}

// Address returns writable storage holding r. Values and constants are
// spilled to a fresh stack slot, and so are literal globals, since the
// address may escape to code that writes through it.
func (r *exprResult) Address(fe *funcEmitter) value.Value {
	if r.constant == nil {
		if p := r.location(fe); p != nil {
			return p
		}
	}
	name := "tmp"
	if r.ptr != nil {
		name = "literal"
	}
	v := r.Value(fe)
	slot := fe.alloca(v.Type(), name)
	fe.cur.NewStore(v, slot)
	return slot
}

// location returns the storage behind r without copying, or nil for plain
// values. The referee address of a reference is loaded once.
func (r *exprResult) location(fe *funcEmitter) value.Value {
	if r.ptr == nil && r.refPtr != nil {
		r.ptr = fe.cur.NewLoad(lltypes.NewPointer(fe.e.llType(r.t)), r.refPtr)
	}
	return r.ptr
}

// lvalue reports whether r names existing storage of a variable, field or
// item rather than a temporary.
func (r *exprResult) lvalue() bool {
	return r.value == nil && r.constant == nil && (r.ptr != nil || r.refPtr != nil)
}

func (fe *funcEmitter) resolveValue(r exprResult) value.Value { return r.Value(fe) }

func (fe *funcEmitter) resolveAddress(r exprResult) value.Value { return r.Address(fe) }

// readAddress returns storage to read r from. Literal globals are used in
// place.
func (fe *funcEmitter) readAddress(r exprResult) value.Value {
	if p := r.location(fe); p != nil {
		return p
	}
	return r.Address(fe)
}

// store writes v to ptr, honoring volatile entries.
func (fe *funcEmitter) store(v, ptr value.Value, entry *symbols.Entry) {
	st := fe.cur.NewStore(v, ptr)
	if entry != nil && entry.IsVolatile() {
		st.Volatile = true
	}
}

// alloca reserves a stack slot in the entry block so it is allocated once
// per call, not once per loop iteration.
func (fe *funcEmitter) alloca(t lltypes.Type, name string) *ir.InstAlloca {
	a := fe.allocas.NewAlloca(t)
	a.SetName(fe.uniqueLocal(name))
	return a
}

func (fe *funcEmitter) uniqueLocal(name string) string {
	n := fe.names[name]
	fe.names[name] = n + 1
	if n == 0 {
		return name
	}
	return name + "." + strconv.Itoa(n)
}

func i32(n int64) *constant.Int { return constant.NewInt(lltypes.I32, n) }
func i64(n int64) *constant.Int { return constant.NewInt(lltypes.I64, n) }
