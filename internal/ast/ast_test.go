package ast

import (
	"testing"

	"spice/internal/types"
)

func TestArenaPointersStayValid(t *testing.T) {
	a := NewArena[Expr](2)
	first := a.New()
	first.Name = "first"
	for i := 0; i < 10; i++ {
		a.New()
	}
	if first.Name != "first" {
		t.Fatalf("first element moved: %q", first.Name)
	}
	if a.Len() != 11 {
		t.Fatalf("expected 11 elements, got %d", a.Len())
	}
	count := 0
	a.Each(func(*Expr) { count++ })
	if count != 11 {
		t.Fatalf("Each visited %d elements", count)
	}
}

func TestSlotsPerManifestation(t *testing.T) {
	reg := types.NewRegistry()
	e := &Expr{Kind: ExprIdent, Name: "a"}
	if e.TypeAt(3) != nil {
		t.Fatalf("unset slot must be nil")
	}
	e.SetType(1, reg.Primitive(types.TyString))
	e.SetType(0, reg.Primitive(types.TyInt))
	if got := e.TypeAt(0).Name(); got != "int" {
		t.Fatalf("slot 0 = %s", got)
	}
	if got := e.TypeAt(1).Name(); got != "string" {
		t.Fatalf("slot 1 = %s", got)
	}
	if e.SlotCount() != 2 {
		t.Fatalf("expected 2 slots, got %d", e.SlotCount())
	}
}

func TestDataTypeString(t *testing.T) {
	inner := &DataType{Base: BaseInt}
	dt := &DataType{
		Base:      BaseNamed,
		Path:      []string{"lib", "Pair"},
		Templates: []*DataType{inner, {Base: BaseString}},
		Suffixes:  []TypeSuffix{{Kind: SuffixPtr}, {Kind: SuffixArray, Size: 4}},
	}
	if got := dt.String(); got != "lib.Pair<int,string>*[4]" {
		t.Fatalf("unexpected rendering %q", got)
	}
	if dt.Qualifier() != "lib" || dt.Name() != "Pair" {
		t.Fatalf("bad path split: %q %q", dt.Qualifier(), dt.Name())
	}
	fn := &DataType{Base: BaseFunction, Return: inner, Params: []*DataType{inner}}
	if got := fn.String(); got != "f<int>(int)" {
		t.Fatalf("unexpected function type %q", got)
	}
}

func TestInspectVisitsNestedNodes(t *testing.T) {
	lit := &Expr{Kind: ExprIntLit}
	call := &Expr{Kind: ExprCall, X: &Expr{Kind: ExprIdent, Name: "f"}, Args: []*Expr{lit}}
	body := &Block{Stmts: []Stmt{
		&IfStmt{Cond: &Expr{Kind: ExprBoolLit}, Then: &Block{Stmts: []Stmt{&ExprStmt{X: call}}}},
		&ReturnStmt{},
	}}
	idents := 0
	returns := 0
	Inspect(body, func(n any) bool {
		switch n := n.(type) {
		case *Expr:
			if n.Kind == ExprIdent {
				idents++
			}
		case *ReturnStmt:
			returns++
		}
		return true
	})
	if idents != 1 || returns != 1 {
		t.Fatalf("idents=%d returns=%d", idents, returns)
	}
}

func TestCompoundOps(t *testing.T) {
	cases := map[Op]Op{OpPlusAssign: OpAdd, OpShrAssign: OpShr, OpXorAssign: OpBitXor, OpAssign: OpInvalid}
	for in, want := range cases {
		if got := in.Compound(); got != want {
			t.Errorf("%s.Compound() = %s, want %s", in, got, want)
		}
	}
	if !OpRemAssign.IsAssign() || OpAdd.IsAssign() {
		t.Fatalf("IsAssign misclassifies")
	}
}
