package irgen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

// vtableGlobal returns the vtable of sm for iface. Each module keeps a
// private copy; its slots are filled once every method is declared.
func (e *Emitter) vtableGlobal(sm *symbols.Struct, iface *symbols.Interface) constant.Constant {
	key := vtableKey{strct: sm.Type, iface: iface.Type}
	if g, ok := e.vtableGlobals[key]; ok {
		return g
	}
	vtT := e.vtableType(iface.Type)
	g := e.mod.NewGlobalDef(e.uniqueName("vtable."+sm.Mangled+"."+iface.Mangled), constant.NewZeroInitializer(vtT))
	g.Immutable = true
	g.Linkage = enum.LinkagePrivate
	e.vtableGlobals[key] = g

	k := e.interfaceSlot(sm, iface.Type)
	e.deferred = append(e.deferred, func() {
		slots := make([]constant.Constant, len(iface.Methods))
		for i, m := range iface.Methods {
			impl := e.implementation(sm, m)
			slots[i] = constant.NewBitCast(e.funcFor(impl), lltypes.I8Ptr)
		}
		arrT := vtT.Fields[2].(*lltypes.ArrayType)
		g.Init = constant.NewStruct(vtT,
			e.slotOffset(sm, k),
			constant.NewBitCast(e.typeInfo(sm), lltypes.I8Ptr),
			constant.NewArray(arrT, slots...))
	})
	return g
}

// slotOffset is the byte offset of vtable slot k inside the struct.
func (e *Emitter) slotOffset(sm *symbols.Struct, k int) constant.Constant {
	st := e.structType(sm.Type)
	gep := constant.NewGetElementPtr(st, constant.NewNull(lltypes.NewPointer(st)), i32(0), i32(int64(k)))
	return constant.NewPtrToInt(gep, lltypes.I64)
}

// typeInfo is a private record naming the dynamic type behind a vtable.
func (e *Emitter) typeInfo(sm *symbols.Struct) *ir.Global {
	if g, ok := e.typeInfos[sm.Type]; ok {
		return g
	}
	st := lltypes.NewStruct(lltypes.I8Ptr)
	g := e.mod.NewGlobalDef(e.uniqueName("typeinfo."+sm.Mangled), constant.NewStruct(st, e.stringPtr(sm.Type.Name())))
	g.Immutable = true
	g.Linkage = enum.LinkagePrivate
	e.typeInfos[sm.Type] = g
	return g
}

// implementation finds the method of sm filling an interface slot.
func (e *Emitter) implementation(sm *symbols.Struct, m symbols.Method) *symbols.Function {
	for _, fn := range sm.MethodsNamed(m.Name) {
		if fn.IsProc != m.IsProc || len(fn.Params) != len(m.Params) {
			continue
		}
		if !m.IsProc && fn.Return != m.Return {
			continue
		}
		match := true
		for i, p := range fn.Params {
			if p.Type != m.Params[i] {
				match = false
				break
			}
		}
		if match {
			return fn
		}
	}
	e.fail(sm.Loc, diag.IRInvalidFunction, "%s does not implement %s", sm.Type.Name(), m.Name)
	return nil
}

// interfaceSlot returns the position of the vtable pointer for iface.
func (e *Emitter) interfaceSlot(sm *symbols.Struct, iface *types.Type) int {
	for k, i := range sm.Interfaces {
		if i.Type == iface {
			return k
		}
	}
	e.fail(sm.Loc, diag.IRWrongType, "%s does not implement %s", sm.Type.Name(), iface.Name())
	return -1
}

// toInterface turns a struct pointer into an interface pointer: the address
// of the struct's vtable slot for that interface.
func (fe *funcEmitter) toInterface(v value.Value, st, iface *types.Type) value.Value {
	sm := fe.e.structOf(st)
	k := fe.e.interfaceSlot(sm, iface)
	return fe.cur.NewGetElementPtr(fe.e.structType(st), v, i32(0), i32(int64(k)))
}
