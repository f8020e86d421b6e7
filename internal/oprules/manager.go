// Package oprules validates operator applications against ordered rule
// tables and yields the result type.
package oprules

import (
	"fmt"

	"spice/internal/diag"
	"spice/internal/source"
	"spice/internal/types"
)

// BinaryRule maps an (lhs, rhs) pair of primitive types to a result type.
type BinaryRule struct {
	Lhs, Rhs, Result types.SuperType
	Unsafe           bool
}

// UnaryRule maps an operand type to a result type.
type UnaryRule struct {
	Operand, Result types.SuperType
	Unsafe          bool
}

// Site describes where an operator is applied.
type Site struct {
	Loc source.CodeLoc
	// Unsafe is set inside unsafe blocks.
	Unsafe bool
}

// Manager looks operators up in the rule tables. Special cases that the
// tables cannot express are checked first.
type Manager struct {
	reg *types.Registry
	// Implements reports whether a struct type implements an interface type.
	// When nil, struct-to-interface pointer conversion is rejected.
	Implements func(structType, ifaceType *types.Type) bool
}

func NewManager(reg *types.Registry) *Manager {
	return &Manager{reg: reg}
}

func isPrim(t *types.Type, s types.SuperType) bool {
	return t.Depth() == 1 && t.Is(s)
}

func (m *Manager) validateBinary(site Site, rules []BinaryRule, name string, lhs, rhs *types.Type) (*types.Type, error) {
	for _, r := range rules {
		if isPrim(lhs, r.Lhs) && isPrim(rhs, r.Rhs) {
			if r.Unsafe && !site.Unsafe {
				return nil, unsafeError(site, name, lhs, rhs)
			}
			return m.reg.Primitive(r.Result), nil
		}
	}
	return nil, binaryError(site, name, lhs, rhs)
}

func (m *Manager) validateUnary(site Site, rules []UnaryRule, name string, operand *types.Type) (*types.Type, error) {
	for _, r := range rules {
		if isPrim(operand, r.Operand) {
			if r.Unsafe && !site.Unsafe {
				return nil, diag.NewSemanticError(site.Loc, diag.SemUnsafeOperationInSafeCtx,
					fmt.Sprintf("Cannot apply '%s' operator on type %s as this is an unsafe operation. Please use unsafe blocks if you know what you are doing.", name, operand.Name()))
			}
			return m.reg.Primitive(r.Result), nil
		}
	}
	return nil, unaryError(site, name, operand)
}

func binaryError(site Site, name string, lhs, rhs *types.Type) error {
	return diag.NewSemanticError(site.Loc, diag.SemOperatorWrongDataType,
		fmt.Sprintf("Cannot apply '%s' operator on types %s and %s", name, lhs.Name(), rhs.Name()))
}

func unaryError(site Site, name string, operand *types.Type) error {
	return diag.NewSemanticError(site.Loc, diag.SemOperatorWrongDataType,
		fmt.Sprintf("Cannot apply '%s' operator on type %s", name, operand.Name()))
}

func unsafeError(site Site, name string, lhs, rhs *types.Type) error {
	return diag.NewSemanticError(site.Loc, diag.SemUnsafeOperationInSafeCtx,
		fmt.Sprintf("Cannot apply '%s' operator on types %s and %s as this is an unsafe operation. Please use unsafe blocks if you know what you are doing.", name, lhs.Name(), rhs.Name()))
}

func isOffset(t *types.Type) bool {
	return t.Depth() == 1 && t.IsOneOf(types.TyInt, types.TyLong, types.TyShort)
}

// pointerArithmetic handles ptr +/- offset and offset +/- ptr.
// ok is false when the operands are not a pointer/offset pair.
func pointerArithmetic(site Site, name string, lhs, rhs *types.Type, allowOffsetFirst bool) (res *types.Type, ok bool, err error) {
	switch {
	case lhs.IsPtr() && isOffset(rhs):
		res = lhs
	case allowOffsetFirst && isOffset(lhs) && rhs.IsPtr():
		res = rhs
	default:
		return nil, false, nil
	}
	if !site.Unsafe {
		return nil, true, unsafeError(site, name, lhs, rhs)
	}
	return res, true, nil
}

// AssignResult validates lhs = rhs.
func (m *Manager) AssignResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	// dyn takes the type of the right side
	if lhs.Is(types.TyDyn) {
		return rhs, nil
	}
	if lhs.IsOneOf(types.TyPtr, types.TyArray, types.TyStruct) && lhs == rhs {
		return rhs, nil
	}
	if lhs.IsPtr() && rhs.IsArray() && lhs.Contained() == rhs.Contained() {
		return lhs, nil
	}
	if lhs.IsPtrOf(types.TyChar) && isPrim(rhs, types.TyString) {
		return lhs, nil
	}
	if lhs.IsPtr() && rhs.IsPtr() && lhs.Contained().Is(types.TyInterface) && rhs.Contained().Is(types.TyStruct) {
		if m.Implements != nil && m.Implements(rhs.Contained(), lhs.Contained()) {
			return lhs, nil
		}
	}
	// functions and procedures with identical signatures
	if lhs.IsOneOf(types.TyFunction, types.TyProcedure) && rhs.Is(lhs.Super()) && lhs.WithCaptures(false) == rhs.WithCaptures(false) {
		return rhs, nil
	}
	if lhs.Is(types.TyEnum) && lhs == rhs {
		return lhs, nil
	}
	return m.validateBinary(site, assignRules, "=", lhs, rhs)
}

func (m *Manager) PlusEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	if res, ok, err := pointerArithmetic(site, "+=", lhs, rhs, false); ok {
		return res, err
	}
	return m.validateBinary(site, plusEqualRules, "+=", lhs, rhs)
}

func (m *Manager) MinusEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	if res, ok, err := pointerArithmetic(site, "-=", lhs, rhs, false); ok {
		return res, err
	}
	return m.validateBinary(site, minusEqualRules, "-=", lhs, rhs)
}

func (m *Manager) MulEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, mulEqualRules, "*=", lhs, rhs)
}

func (m *Manager) DivEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, divEqualRules, "/=", lhs, rhs)
}

func (m *Manager) RemEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, remEqualRules, "%=", lhs, rhs)
}

func (m *Manager) ShlEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, shlEqualRules, "<<=", lhs, rhs)
}

func (m *Manager) ShrEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, shrEqualRules, ">>=", lhs, rhs)
}

func (m *Manager) AndEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, andEqualRules, "&=", lhs, rhs)
}

func (m *Manager) OrEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, orEqualRules, "|=", lhs, rhs)
}

func (m *Manager) XorEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, xorEqualRules, "^=", lhs, rhs)
}

func (m *Manager) LogicalAndResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, logicalAndRules, "&&", lhs, rhs)
}

func (m *Manager) LogicalOrResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, logicalOrRules, "||", lhs, rhs)
}

func (m *Manager) BitwiseAndResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, bitwiseAndRules, "&", lhs, rhs)
}

func (m *Manager) BitwiseOrResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, bitwiseOrRules, "|", lhs, rhs)
}

func (m *Manager) BitwiseXorResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, bitwiseXorRules, "^", lhs, rhs)
}

func (m *Manager) pointerCompare(lhs, rhs *types.Type) bool {
	return lhs.IsPtr() && (rhs.IsPtr() || isPrim(rhs, types.TyInt))
}

func (m *Manager) EqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	if m.pointerCompare(lhs, rhs) {
		return m.reg.Primitive(types.TyBool), nil
	}
	if lhs.Is(types.TyEnum) && lhs == rhs {
		return m.reg.Primitive(types.TyBool), nil
	}
	return m.validateBinary(site, equalRules, "==", lhs, rhs)
}

func (m *Manager) NotEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	if m.pointerCompare(lhs, rhs) {
		return m.reg.Primitive(types.TyBool), nil
	}
	if lhs.Is(types.TyEnum) && lhs == rhs {
		return m.reg.Primitive(types.TyBool), nil
	}
	return m.validateBinary(site, notEqualRules, "!=", lhs, rhs)
}

func (m *Manager) LessResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, lessRules, "<", lhs, rhs)
}

func (m *Manager) GreaterResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, greaterRules, ">", lhs, rhs)
}

func (m *Manager) LessEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, lessEqualRules, "<=", lhs, rhs)
}

func (m *Manager) GreaterEqualResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, greaterEqualRules, ">=", lhs, rhs)
}

func (m *Manager) ShiftLeftResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, shiftLeftRules, "<<", lhs, rhs)
}

func (m *Manager) ShiftRightResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, shiftRightRules, ">>", lhs, rhs)
}

func (m *Manager) PlusResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	if res, ok, err := pointerArithmetic(site, "+", lhs, rhs, true); ok {
		return res, err
	}
	return m.validateBinary(site, plusRules, "+", lhs, rhs)
}

func (m *Manager) MinusResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	if res, ok, err := pointerArithmetic(site, "-", lhs, rhs, true); ok {
		return res, err
	}
	return m.validateBinary(site, minusRules, "-", lhs, rhs)
}

func (m *Manager) MulResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, mulRules, "*", lhs, rhs)
}

func (m *Manager) DivResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, divRules, "/", lhs, rhs)
}

func (m *Manager) RemResult(site Site, lhs, rhs *types.Type) (*types.Type, error) {
	return m.validateBinary(site, remRules, "%", lhs, rhs)
}

func (m *Manager) PrefixMinusResult(site Site, operand *types.Type) (*types.Type, error) {
	return m.validateUnary(site, prefixMinusRules, "-", operand)
}

func (m *Manager) PrefixPlusPlusResult(site Site, operand *types.Type) (*types.Type, error) {
	return m.validateUnary(site, prefixPlusPlusRules, "++", operand)
}

func (m *Manager) PrefixMinusMinusResult(site Site, operand *types.Type) (*types.Type, error) {
	return m.validateUnary(site, prefixMinusMinusRules, "--", operand)
}

func (m *Manager) PrefixNotResult(site Site, operand *types.Type) (*types.Type, error) {
	return m.validateUnary(site, prefixNotRules, "!", operand)
}

func (m *Manager) PrefixBitwiseNotResult(site Site, operand *types.Type) (*types.Type, error) {
	return m.validateUnary(site, prefixBitwiseNotRules, "~", operand)
}

// PrefixDerefResult validates *operand.
func (m *Manager) PrefixDerefResult(site Site, operand *types.Type) (*types.Type, error) {
	if !operand.IsPtr() {
		return nil, diag.NewSemanticError(site.Loc, diag.SemOperatorWrongDataType,
			"Cannot apply de-referencing operator on type "+operand.Name())
	}
	return operand.Contained(), nil
}

// PrefixAddressOfResult validates &operand.
func (m *Manager) PrefixAddressOfResult(site Site, operand *types.Type) (*types.Type, error) {
	ptr, err := operand.ToPointer()
	if err != nil {
		code := diag.SemDynPointersNotAllowed
		return nil, diag.NewSemanticError(site.Loc, code, err.Error())
	}
	return ptr, nil
}

func (m *Manager) PostfixPlusPlusResult(site Site, operand *types.Type) (*types.Type, error) {
	return m.validateUnary(site, postfixPlusPlusRules, "++", operand)
}

func (m *Manager) PostfixMinusMinusResult(site Site, operand *types.Type) (*types.Type, error) {
	return m.validateUnary(site, postfixMinusMinusRules, "--", operand)
}

// CastResult validates (dst) src.
func (m *Manager) CastResult(site Site, dst, src *types.Type) (*types.Type, error) {
	if dst.IsOneOf(types.TyPtr, types.TyArray) && dst.Contained().Is(types.TyChar) && isPrim(src, types.TyString) {
		return dst, nil
	}
	if isPrim(dst, types.TyString) && src.IsOneOf(types.TyPtr, types.TyArray) && src.Contained().Is(types.TyChar) {
		return dst, nil
	}
	if dst.IsPtr() && src.IsPtr() {
		if dst == src {
			return dst, nil
		}
		if !site.Unsafe {
			return nil, unsafeError(site, "(cast)", dst, src)
		}
		return dst, nil
	}
	return m.validateBinary(site, castRules, "(cast)", dst, src)
}
