package layout

import (
	"errors"
	"testing"

	"spice/internal/types"
)

type fieldMap map[*types.Type][]*types.Type

func (m fieldMap) StructFields(t *types.Type) ([]*types.Type, bool) {
	f, ok := m[t]
	return f, ok
}

func TestScalarAndPointerLayouts(t *testing.T) {
	reg := types.NewRegistry()
	e := New(X86_64Linux(), nil)
	cases := []struct {
		typ         *types.Type
		size, align int
	}{
		{reg.Primitive(types.TyBool), 1, 1},
		{reg.Primitive(types.TyShort), 2, 2},
		{reg.Primitive(types.TyInt), 4, 4},
		{reg.Primitive(types.TyLong), 8, 8},
		{reg.Primitive(types.TyDouble), 8, 8},
		{reg.Primitive(types.TyString), 8, 8},
		{reg.Primitive(types.TyInt).MustPointer(), 8, 8},
		{reg.Function(reg.Primitive(types.TyInt), nil), 16, 8},
	}
	for _, tc := range cases {
		l, err := e.LayoutOf(tc.typ)
		if err != nil {
			t.Fatalf("%s: %v", tc.typ, err)
		}
		if l.Size != tc.size || l.Align != tc.align {
			t.Errorf("%s: got size=%d align=%d, want %d/%d", tc.typ, l.Size, l.Align, tc.size, tc.align)
		}
	}
}

func TestStructPaddingAndOffsets(t *testing.T) {
	reg := types.NewRegistry()
	s := reg.Struct("Rec", "main.spice", nil)
	fields := fieldMap{s: {
		reg.Primitive(types.TyByte),
		reg.Primitive(types.TyLong),
		reg.Primitive(types.TyShort),
	}}
	e := New(X86_64Linux(), fields)
	l, err := e.LayoutOf(s)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if l.Size != 24 || l.Align != 8 {
		t.Fatalf("got size=%d align=%d, want 24/8", l.Size, l.Align)
	}
	if off, _ := e.FieldOffset(s, 2); off != 16 {
		t.Fatalf("third field offset = %d, want 16", off)
	}
	bits, err := e.SizeOfBits(s)
	if err != nil || bits != 192 {
		t.Fatalf("SizeOfBits = %d, %v", bits, err)
	}
}

func TestArrayLayoutNeedsSize(t *testing.T) {
	reg := types.NewRegistry()
	e := New(X86_64Linux(), nil)
	arr, _ := reg.Primitive(types.TyInt).ToArray(5)
	if size, err := e.SizeOf(arr); err != nil || size != 20 {
		t.Fatalf("int[5] size = %d, %v", size, err)
	}
	open, _ := reg.Primitive(types.TyInt).ToArray(types.ArraySizeUnknown)
	_, err := e.SizeOf(open)
	var le *LayoutError
	if !errors.As(err, &le) || le.Kind != LayoutErrUnsizedArray {
		t.Fatalf("expected unsized array error, got %v", err)
	}
}

func TestRecursiveStructReportsCycle(t *testing.T) {
	reg := types.NewRegistry()
	node := reg.Struct("Node", "main.spice", nil)
	e := New(X86_64Linux(), fieldMap{node: {reg.Primitive(types.TyInt), node}})
	_, err := e.LayoutOf(node)
	var le *LayoutError
	if !errors.As(err, &le) || le.Kind != LayoutErrRecursiveUnsized {
		t.Fatalf("expected recursive layout error, got %v", err)
	}
}

func TestParseTarget(t *testing.T) {
	cases := []struct {
		triple  string
		arch    Arch
		os      OS
		ptrSize int
	}{
		{"x86_64-unknown-linux-gnu", ArchX86_64, OSLinux, 8},
		{"i686-pc-linux-gnu", ArchX86, OSLinux, 4},
		{"aarch64-apple-darwin", ArchAArch64, OSDarwin, 8},
		{"arm64-apple-macosx13.0.0", ArchAArch64, OSDarwin, 8},
	}
	for _, tc := range cases {
		got, err := ParseTarget(tc.triple)
		if err != nil {
			t.Fatalf("%s: %v", tc.triple, err)
		}
		if got.Arch != tc.arch || got.OS != tc.os || got.PtrSize != tc.ptrSize || got.DataLayout == "" {
			t.Errorf("%s: got %+v", tc.triple, got)
		}
	}
	if _, err := ParseTarget("riscv64-unknown-linux-gnu"); err == nil {
		t.Fatalf("expected error for unsupported arch")
	}
}
