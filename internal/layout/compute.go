package layout

import "spice/internal/types"

func (e *Engine) computeLayout(t *types.Type, state *layoutState) (TypeLayout, *LayoutError) {
	switch t.Super() {
	case types.TyBool, types.TyByte, types.TyChar:
		return scalarLayoutBytes(1), nil
	case types.TyShort:
		return scalarLayoutBytes(2), nil
	case types.TyInt, types.TyEnum:
		return scalarLayoutBytes(4), nil
	case types.TyLong:
		return scalarLayoutBytes(8), nil
	case types.TyDouble:
		if e.Target.Arch == ArchX86 {
			return TypeLayout{Size: 8, Align: 4}, nil
		}
		return scalarLayoutBytes(8), nil
	case types.TyString, types.TyPtr, types.TyRef, types.TyInterface:
		return e.ptrLayout(), nil
	case types.TyFunction, types.TyProcedure:
		// fat pointer: function address plus capture pointer
		p := e.ptrLayout()
		return TypeLayout{Size: 2 * p.Size, Align: p.Align, FieldOffsets: []int{0, p.Size}}, nil
	case types.TyArray:
		if t.ArraySize() == types.ArraySizeUnknown {
			return TypeLayout{Align: 1}, &LayoutError{Kind: LayoutErrUnsizedArray, Type: t}
		}
		return e.arrayFixedLayout(t, state)
	case types.TyStruct:
		return e.structLayout(t, state)
	case types.TyGeneric, types.TyDyn:
		return TypeLayout{Align: 1}, &LayoutError{Kind: LayoutErrGeneric, Type: t}
	default:
		return TypeLayout{Size: 0, Align: 1}, nil
	}
}

func (e *Engine) ptrLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	ptrAlign := e.Target.PtrAlign
	if ptrSize <= 0 {
		ptrSize = 8
	}
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: ptrSize, Align: ptrAlign}
}

func scalarLayoutBytes(size int) TypeLayout {
	if size <= 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: size, Align: size}
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func (e *Engine) arrayFixedLayout(t *types.Type, state *layoutState) (TypeLayout, *LayoutError) {
	elem, err := e.layoutOf(t.Contained(), state)
	if err != nil {
		return TypeLayout{Align: 1}, err
	}
	elemAlign := max(elem.Align, 1)
	stride := roundUp(elem.Size, elemAlign)
	return TypeLayout{Size: stride * t.ArraySize(), Align: elemAlign}, nil
}

func (e *Engine) structLayout(t *types.Type, state *layoutState) (TypeLayout, *LayoutError) {
	if e.Fields == nil {
		return TypeLayout{Align: 1}, &LayoutError{Kind: LayoutErrUnknownStruct, Type: t}
	}
	fields, ok := e.Fields.StructFields(t)
	if !ok {
		return TypeLayout{Align: 1}, &LayoutError{Kind: LayoutErrUnknownStruct, Type: t}
	}
	offsets := make([]int, len(fields))
	size := 0
	align := 1
	for i, ft := range fields {
		fl, err := e.layoutOf(ft, state)
		if err != nil {
			return TypeLayout{Align: 1}, err
		}
		fAlign := max(fl.Align, 1)
		size = roundUp(size, fAlign)
		offsets[i] = size
		size += fl.Size
		align = max(align, fAlign)
	}
	size = roundUp(size, align)
	return TypeLayout{Size: size, Align: align, FieldOffsets: offsets}, nil
}
