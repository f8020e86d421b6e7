package irgen

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"

	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

// llType maps a Spice type to its storage type. References and arrays of
// unknown size are passed around as pointers.
func (e *Emitter) llType(t *types.Type) lltypes.Type {
	switch t.Super() {
	case types.TyDouble:
		return lltypes.Double
	case types.TyInt, types.TyEnum:
		return lltypes.I32
	case types.TyShort:
		return lltypes.I16
	case types.TyLong:
		return lltypes.I64
	case types.TyByte, types.TyChar:
		return lltypes.I8
	case types.TyBool:
		return lltypes.I1
	case types.TyString:
		return lltypes.I8Ptr
	case types.TyPtr, types.TyRef:
		return lltypes.NewPointer(e.llType(t.Contained()))
	case types.TyArray:
		elem := e.llType(t.Contained())
		if t.ArraySize() == types.ArraySizeUnknown {
			return lltypes.NewPointer(elem)
		}
		return lltypes.NewArray(e.arrayLen(t.ArraySize()), elem)
	case types.TyStruct:
		return e.structType(t)
	case types.TyInterface:
		// an interface value is the vtable pointer stored in the object
		return lltypes.NewPointer(e.vtableType(t))
	case types.TyFunction, types.TyProcedure:
		return e.fatType
	}
	e.fail(noLoc, diag.IRUnexpectedDynType, "type %s has no IR representation", t.Name())
	return nil
}

func (e *Emitter) arrayLen(n int) uint64 {
	v, err := safecast.Conv[uint64](n)
	if err != nil {
		e.fail(noLoc, diag.IRWrongType, "array size %d: %v", n, err)
	}
	return v
}

// typeName returns a module-unique name for a type definition.
func (e *Emitter) typeName(base string) string {
	n := e.typeNames[base]
	e.typeNames[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s.%d", base, n)
}

// structType returns %struct.<Mangled>: one vtable pointer per implemented
// interface followed by the fields. The definition is registered before the
// fields are resolved so self-referencing structs terminate.
func (e *Emitter) structType(t *types.Type) *lltypes.StructType {
	if st, ok := e.structs[t]; ok {
		return st
	}
	sm := e.structOf(t)
	st := &lltypes.StructType{}
	e.mod.NewTypeDef(e.typeName("struct."+sm.Mangled), st)
	e.structs[t] = st
	fields := make([]lltypes.Type, 0, len(sm.Interfaces)+len(sm.Fields()))
	for _, iface := range sm.Interfaces {
		fields = append(fields, lltypes.NewPointer(e.vtableType(iface.Type)))
	}
	for _, f := range sm.Fields() {
		fields = append(fields, e.llType(f.Type.Type))
	}
	st.Fields = fields
	return st
}

// vtableType returns %vtable.<Iface> = { this offset, typeinfo, [n x i8*] }.
func (e *Emitter) vtableType(t *types.Type) *lltypes.StructType {
	if st, ok := e.vtables[t]; ok {
		return st
	}
	iface := e.interfaceOf(t)
	st := lltypes.NewStruct(lltypes.I64, lltypes.I8Ptr, lltypes.NewArray(e.arrayLen(len(iface.Methods)), lltypes.I8Ptr))
	e.mod.NewTypeDef(e.typeName("vtable."+iface.Mangled), st)
	e.vtables[t] = st
	return st
}

func (e *Emitter) structOf(t *types.Type) *symbols.Struct {
	sm := e.res.Struct(t)
	if sm == nil {
		e.fail(noLoc, diag.IRVariableNotFound, "no manifestation for struct %s", t.Name())
	}
	return sm
}

func (e *Emitter) interfaceOf(t *types.Type) *symbols.Interface {
	iface := e.res.Interface(t)
	if iface == nil {
		e.fail(noLoc, diag.IRVariableNotFound, "no manifestation for interface %s", t.Name())
	}
	return iface
}

// fieldIndex is the GEP index of a field behind the vtable slots.
func fieldIndex(sm *symbols.Struct, f *symbols.Entry) int {
	return len(sm.Interfaces) + f.Order
}

// signature builds the IR signature of a function manifestation. Methods
// take the receiver pointer first, main returns i32.
func (e *Emitter) signature(fn *symbols.Function) (lltypes.Type, []*ir.Param) {
	var params []*ir.Param
	if fn.Receiver != nil {
		params = append(params, ir.NewParam("this", lltypes.NewPointer(e.structType(fn.Receiver.Type))))
	}
	for _, p := range fn.Params {
		params = append(params, ir.NewParam(p.Name, e.llType(p.Type)))
	}
	return e.returnType(fn.IsProc, fn.Return), params
}

func (e *Emitter) returnType(isProc bool, ret *types.Type) lltypes.Type {
	if isProc || ret == nil {
		return lltypes.Void
	}
	return e.llType(ret)
}

// closureSignature is the signature behind a fat pointer. The capture
// pointer always comes first, null when nothing was captured.
func (e *Emitter) closureSignature(ft *types.Type) *lltypes.FuncType {
	params := []lltypes.Type{lltypes.I8Ptr}
	for _, p := range ft.Params() {
		params = append(params, e.llType(p))
	}
	return lltypes.NewFunc(e.returnType(ft.Is(types.TyProcedure), ft.Return()), params...)
}

// StructFields feeds the layout engine: vtable slots count as byte pointers.
func (e *Emitter) StructFields(t *types.Type) ([]*types.Type, bool) {
	sm := e.res.Struct(t)
	if sm == nil {
		return nil, false
	}
	slot := e.reg.Primitive(types.TyByte).MustPointer()
	out := make([]*types.Type, 0, len(sm.Interfaces)+len(sm.Fields()))
	for range sm.Interfaces {
		out = append(out, slot)
	}
	for _, f := range sm.Fields() {
		out = append(out, f.Type.Type)
	}
	return out, true
}

func isUnsigned(t *types.Type) bool {
	return t.IsOneOf(types.TyByte, types.TyChar, types.TyBool)
}

// intWidth orders the integer types for implicit widening.
func intWidth(t *types.Type) int {
	switch t.Super() {
	case types.TyBool:
		return 1
	case types.TyByte, types.TyChar:
		return 8
	case types.TyShort:
		return 16
	case types.TyInt, types.TyEnum:
		return 32
	case types.TyLong:
		return 64
	}
	return 0
}
