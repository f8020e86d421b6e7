package types

import "testing"

func TestTypeNames(t *testing.T) {
	r := NewRegistry()
	intT := r.Primitive(TyInt)
	arr, _ := intT.ToArray(3)
	dynArr, _ := r.Primitive(TyChar).ToArray(ArraySizeUnknown)
	pair := r.Struct("Pair", "main", []*Type{intT, r.Primitive(TyString)})
	fn := r.Function(r.Primitive(TyBool), []*Type{intT, intT.MustPointer()})
	proc := r.Procedure(nil).WithCaptures(true)

	cases := []struct {
		typ     *Type
		name    string
		mangled string
	}{
		{intT.MustPointer(), "int*", "intptr"},
		{arr, "int[3]", "intarray3"},
		{dynArr, "char[]", "chararray"},
		{pair, "Pair<int,string>", "Pair__int_string__"},
		{fn, "f<bool>(int,int*)", "fbool_int_intptr"},
		{proc, "p[]()", "p"},
	}
	for _, tc := range cases {
		if got := tc.typ.Name(); got != tc.name {
			t.Errorf("Name: got %q, want %q", got, tc.name)
		}
		if got := tc.typ.Mangled(); got != tc.mangled {
			t.Errorf("Mangled: got %q, want %q", got, tc.mangled)
		}
	}
}

func TestReplaceBaseKeepsWrappers(t *testing.T) {
	r := NewRegistry()
	gen := r.Generic("T")
	genPtrArr, _ := gen.MustPointer().ToArray(2)
	got, err := genPtrArr.ReplaceBase(r.Primitive(TyLong))
	if err != nil {
		t.Fatalf("ReplaceBase: %v", err)
	}
	want, _ := r.Primitive(TyLong).MustPointer().ToArray(2)
	if got != want {
		t.Fatalf("got %s, want %s", got.Name(), want.Name())
	}
	if !genPtrArr.HasGenericParts() || got.HasGenericParts() {
		t.Fatalf("generic detection is off")
	}
}

func TestHasGenericPartsLooksIntoTemplatesAndSignatures(t *testing.T) {
	r := NewRegistry()
	gen := r.Generic("T")
	if !r.Struct("Box", "main", []*Type{gen}).HasGenericParts() {
		t.Fatalf("template argument must count")
	}
	if !r.Function(gen, nil).HasGenericParts() {
		t.Fatalf("return type must count")
	}
	if r.Function(r.Primitive(TyInt), []*Type{r.Primitive(TyChar)}).HasGenericParts() {
		t.Fatalf("concrete signature reported as generic")
	}
}

func TestMatchesIgnoringArraySize(t *testing.T) {
	r := NewRegistry()
	a3, _ := r.Primitive(TyInt).ToArray(3)
	a0, _ := r.Primitive(TyInt).ToArray(ArraySizeUnknown)
	if a3.Matches(a0, false) {
		t.Fatalf("sizes must matter by default")
	}
	if !a3.Matches(a0, true) {
		t.Fatalf("sizes must be ignored on request")
	}
}

func TestQualTypeSpecifiersDoNotAffectIdentity(t *testing.T) {
	r := NewRegistry()
	a := Qual(r.Primitive(TyInt), SpecConst|SpecPublic)
	b := Qual(r.Primitive(TyInt), 0)
	if a.Type != b.Type {
		t.Fatalf("specifiers must not change the type")
	}
	if got := a.String(); got != "public const int" {
		t.Fatalf("got %q", got)
	}
}
