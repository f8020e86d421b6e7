package ast

import "spice/internal/types"

// Slot holds what the analyzer resolved for one node in one manifestation.
// Ref carries pass-specific data such as the chosen callee.
type Slot struct {
	Type  *types.Type
	Ref   any
	Const *Const
}

// Slots is embedded into nodes that need per-manifestation annotations.
// A non-generic body only ever uses index 0.
type Slots struct {
	slots []Slot
}

func (s *Slots) at(i int) *Slot {
	for len(s.slots) <= i {
		s.slots = append(s.slots, Slot{})
	}
	return &s.slots[i]
}

func (s *Slots) TypeAt(i int) *types.Type {
	if i < len(s.slots) {
		return s.slots[i].Type
	}
	return nil
}

func (s *Slots) SetType(i int, t *types.Type) { s.at(i).Type = t }

func (s *Slots) RefAt(i int) any {
	if i < len(s.slots) {
		return s.slots[i].Ref
	}
	return nil
}

func (s *Slots) SetRef(i int, v any) { s.at(i).Ref = v }

// ConstAt returns the compile-time value folded for the node, if any.
func (s *Slots) ConstAt(i int) *Const {
	if i < len(s.slots) {
		return s.slots[i].Const
	}
	return nil
}

func (s *Slots) SetConst(i int, c *Const) { s.at(i).Const = c }

// SlotCount reports how many manifestations touched the node.
func (s *Slots) SlotCount() int { return len(s.slots) }

// ConstKind tags Const.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstDouble
	ConstBool
	ConstString
	ConstChar
)

// Const is a compile-time literal value. Integers of every width live in Int.
type Const struct {
	Kind   ConstKind
	Int    int64
	Double float64
	Bool   bool
	Str    string
}
