// Package layout computes target-dependent sizes, alignments and field
// offsets for sizeof, alignof and struct lowering.
package layout

import (
	"fmt"

	"fortio.org/safecast"

	"spice/internal/types"
)

// TypeLayout is the ABI layout of a type for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Struct-only:
	FieldOffsets []int
}

// FieldSource yields the storage field types of a struct manifestation,
// vtable slots included.
type FieldSource interface {
	StructFields(t *types.Type) ([]*types.Type, bool)
}

// Engine computes memory layout for types.
type Engine struct {
	Target Target
	Fields FieldSource

	cache *cache
}

// New creates a new Engine for the specified target.
func New(target Target, fields FieldSource) *Engine {
	return &Engine{Target: target, Fields: fields, cache: newCache()}
}

type layoutState struct {
	stack []*types.Type
	index map[*types.Type]int
}

// LayoutOf computes and caches the layout of a type.
func (e *Engine) LayoutOf(t *types.Type) (TypeLayout, error) {
	if e.cache == nil {
		e.cache = newCache()
	}
	state := &layoutState{index: make(map[*types.Type]int, 8)}
	l, err := e.layoutOf(t, state)
	if err != nil {
		return l, err
	}
	return l, nil
}

func (e *Engine) layoutOf(t *types.Type, state *layoutState) (TypeLayout, *LayoutError) {
	if cached, ok := e.cache.get(t); ok {
		return cached.Layout, cached.Err
	}
	if idx, ok := state.index[t]; ok {
		cycle := append(append([]*types.Type(nil), state.stack[idx:]...), t)
		err := &LayoutError{Kind: LayoutErrRecursiveUnsized, Type: t, Cycle: cycle}
		e.cache.put(t, &cacheEntry{Layout: TypeLayout{Align: 1}, Err: err})
		return TypeLayout{Align: 1}, err
	}
	state.index[t] = len(state.stack)
	state.stack = append(state.stack, t)
	l, err := e.computeLayout(t, state)
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, t)

	e.cache.put(t, &cacheEntry{Layout: l, Err: err})
	return l, err
}

// SizeOf returns the size of a type in bytes.
func (e *Engine) SizeOf(t *types.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// SizeOfBits returns the size in bits, the unit `sizeof` reports.
func (e *Engine) SizeOfBits(t *types.Type) (uint64, error) {
	size, err := e.SizeOf(t)
	if err != nil {
		return 0, err
	}
	bits, err := safecast.Conv[uint64](size * 8)
	if err != nil {
		return 0, fmt.Errorf("size of %s overflows: %w", t.Name(), err)
	}
	return bits, nil
}

// AlignOf returns the alignment requirement of a type in bytes.
func (e *Engine) AlignOf(t *types.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// FieldOffset returns the byte offset of a struct field.
func (e *Engine) FieldOffset(structT *types.Type, fieldIdx int) (int, error) {
	l, err := e.LayoutOf(structT)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, fmt.Errorf("struct %s has no field #%d", structT.Name(), fieldIdx)
	}
	return l.FieldOffsets[fieldIdx], nil
}
