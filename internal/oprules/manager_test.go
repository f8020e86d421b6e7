package oprules

import (
	"errors"
	"testing"

	"spice/internal/diag"
	"spice/internal/source"
	"spice/internal/types"
)

var site = Site{Loc: source.CodeLoc{Path: "t.spice", Line: 1, Col: 1}}

func TestTablesResolveExactEntries(t *testing.T) {
	reg := types.NewRegistry()
	m := NewManager(reg)
	tables := []struct {
		name  string
		rules []BinaryRule
		fn    func(Site, *types.Type, *types.Type) (*types.Type, error)
	}{
		{"plus", plusRules, m.PlusResult},
		{"minus", minusRules, m.MinusResult},
		{"mul", mulRules, m.MulResult},
		{"div", divRules, m.DivResult},
		{"rem", remRules, m.RemResult},
		{"equal", equalRules, m.EqualResult},
		{"less", lessRules, m.LessResult},
		{"shl", shiftLeftRules, m.ShiftLeftResult},
		{"plus-equal", plusEqualRules, m.PlusEqualResult},
		{"cast", castRules, m.CastResult},
	}
	for _, tc := range tables {
		for _, r := range tc.rules {
			got, err := tc.fn(site, reg.Primitive(r.Lhs), reg.Primitive(r.Rhs))
			if err != nil {
				t.Fatalf("%s %s,%s: unexpected error %v", tc.name, r.Lhs, r.Rhs, err)
			}
			if got != reg.Primitive(r.Result) {
				t.Fatalf("%s %s,%s: got %s, want %s", tc.name, r.Lhs, r.Rhs, got.Name(), r.Result)
			}
		}
	}
}

func TestAsymmetricRulesArePreserved(t *testing.T) {
	reg := types.NewRegistry()
	m := NewManager(reg)
	intT, shortT, longT := reg.Primitive(types.TyInt), reg.Primitive(types.TyShort), reg.Primitive(types.TyLong)

	// compound assignment keeps the lhs width, the plain operator widens
	got, _ := m.PlusEqualResult(site, shortT, longT)
	if got != shortT {
		t.Fatalf("short += long: got %s", got.Name())
	}
	got, _ = m.PlusResult(site, shortT, longT)
	if got != longT {
		t.Fatalf("short + long: got %s", got.Name())
	}
	got, _ = m.RemResult(site, intT, longT)
	if got != intT {
		t.Fatalf("int %% long: got %s", got.Name())
	}
	got, _ = m.RemResult(site, longT, intT)
	if got != longT {
		t.Fatalf("long %% int: got %s", got.Name())
	}
}

func TestStringRepetition(t *testing.T) {
	reg := types.NewRegistry()
	m := NewManager(reg)
	got, err := m.MulResult(site, reg.Primitive(types.TyInt), reg.Primitive(types.TyChar))
	if err != nil || got != reg.Primitive(types.TyString) {
		t.Fatalf("int * char: got %v, %v", got, err)
	}
	if _, err := m.MulResult(site, reg.Primitive(types.TyChar), reg.Primitive(types.TyInt)); err == nil {
		t.Fatalf("char * int must not be accepted")
	}
}

func TestMissingRuleMessage(t *testing.T) {
	reg := types.NewRegistry()
	m := NewManager(reg)
	_, err := m.PlusResult(site, reg.Primitive(types.TyString), reg.Primitive(types.TyBool))
	var se *diag.SemanticError
	if !errors.As(err, &se) {
		t.Fatalf("expected SemanticError, got %v", err)
	}
	if se.Code != diag.SemOperatorWrongDataType {
		t.Fatalf("unexpected code %v", se.Code)
	}
	if se.Message != "Cannot apply '+' operator on types string and bool" {
		t.Fatalf("unexpected message %q", se.Message)
	}
	_, err = m.PrefixNotResult(site, reg.Primitive(types.TyInt))
	if !errors.As(err, &se) || se.Message != "Cannot apply '!' operator on type int" {
		t.Fatalf("unexpected unary error %v", err)
	}
}

func TestPointerArithmeticNeedsUnsafe(t *testing.T) {
	reg := types.NewRegistry()
	m := NewManager(reg)
	ptr := reg.Primitive(types.TyInt).MustPointer()
	_, err := m.PlusResult(site, ptr, reg.Primitive(types.TyLong))
	var se *diag.SemanticError
	if !errors.As(err, &se) || se.Code != diag.SemUnsafeOperationInSafeCtx {
		t.Fatalf("expected unsafe error, got %v", err)
	}
	got, err := m.PlusResult(Site{Unsafe: true}, reg.Primitive(types.TyInt), ptr)
	if err != nil || got != ptr {
		t.Fatalf("int + int* in unsafe: got %v, %v", got, err)
	}
	got, err = m.MinusEqualResult(Site{Unsafe: true}, ptr, reg.Primitive(types.TyShort))
	if err != nil || got != ptr {
		t.Fatalf("int* -= short in unsafe: got %v, %v", got, err)
	}
}

func TestAssignmentSpecialCases(t *testing.T) {
	reg := types.NewRegistry()
	m := NewManager(reg)
	charT := reg.Primitive(types.TyChar)
	arr, _ := charT.ToArray(4)

	if got, _ := m.AssignResult(site, reg.Primitive(types.TyDyn), arr); got != arr {
		t.Fatalf("dyn must infer the rhs type")
	}
	if got, err := m.AssignResult(site, charT.MustPointer(), arr); err != nil || got != charT.MustPointer() {
		t.Fatalf("array to pointer: %v, %v", got, err)
	}
	if got, err := m.AssignResult(site, charT.MustPointer(), reg.Primitive(types.TyString)); err != nil || got != charT.MustPointer() {
		t.Fatalf("char* = string: %v, %v", got, err)
	}
	if _, err := m.AssignResult(site, reg.Primitive(types.TyInt), reg.Primitive(types.TyLong)); err == nil {
		t.Fatalf("int = long must be rejected")
	}

	shape := reg.Interface("Shape", "main", nil)
	square := reg.Struct("Square", "main", nil)
	if _, err := m.AssignResult(site, shape.MustPointer(), square.MustPointer()); err == nil {
		t.Fatalf("conversion without Implements must fail")
	}
	m.Implements = func(s, i *types.Type) bool { return s == square && i == shape }
	if got, err := m.AssignResult(site, shape.MustPointer(), square.MustPointer()); err != nil || got != shape.MustPointer() {
		t.Fatalf("struct* to interface*: %v, %v", got, err)
	}
}

func TestCastSpecialCases(t *testing.T) {
	reg := types.NewRegistry()
	m := NewManager(reg)
	str := reg.Primitive(types.TyString)
	charPtr := reg.Primitive(types.TyChar).MustPointer()
	if got, err := m.CastResult(site, charPtr, str); err != nil || got != charPtr {
		t.Fatalf("(char*) string: %v, %v", got, err)
	}
	if got, err := m.CastResult(site, str, charPtr); err != nil || got != str {
		t.Fatalf("(string) char*: %v, %v", got, err)
	}
	bytePtr := reg.Primitive(types.TyByte).MustPointer()
	if _, err := m.CastResult(site, bytePtr, charPtr); err == nil {
		t.Fatalf("pointer casts require unsafe")
	}
	if got, err := m.CastResult(Site{Unsafe: true}, bytePtr, charPtr); err != nil || got != bytePtr {
		t.Fatalf("unsafe pointer cast: %v, %v", got, err)
	}
}

func TestDerefAndAddressOf(t *testing.T) {
	reg := types.NewRegistry()
	m := NewManager(reg)
	intT := reg.Primitive(types.TyInt)
	if _, err := m.PrefixDerefResult(site, intT); err == nil {
		t.Fatalf("deref of int must fail")
	}
	ptr, err := m.PrefixAddressOfResult(site, intT)
	if err != nil || ptr != intT.MustPointer() {
		t.Fatalf("address-of: %v, %v", ptr, err)
	}
	back, err := m.PrefixDerefResult(site, ptr)
	if err != nil || back != intT {
		t.Fatalf("deref: %v, %v", back, err)
	}
	if _, err := m.PrefixAddressOfResult(site, reg.Primitive(types.TyDyn)); err == nil {
		t.Fatalf("address of dyn must fail")
	}
}
