package types

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistryCanonicalizesPrimitives(t *testing.T) {
	r := NewRegistry()
	a, err := r.GetOrInsert([]ChainElement{{Super: TyInt}})
	if err != nil {
		t.Fatalf("GetOrInsert: %v", err)
	}
	if a != r.Primitive(TyInt) {
		t.Fatalf("int must be pointer-identical")
	}
}

func TestRegistryCanonicalizesCompositions(t *testing.T) {
	r := NewRegistry()
	intT := r.Primitive(TyInt)
	p1 := intT.MustPointer()
	p2, err := r.Primitive(TyInt).ToPointer()
	if err != nil {
		t.Fatalf("ToPointer: %v", err)
	}
	if p1 != p2 {
		t.Fatalf("int* must be pointer-identical")
	}
	a1, _ := p1.ToArray(3)
	a2, _ := p2.ToArray(3)
	if a1 != a2 {
		t.Fatalf("int*[3] must be pointer-identical")
	}
	a3, _ := p1.ToArray(4)
	if a1 == a3 {
		t.Fatalf("array sizes must take part in identity")
	}
	if a1.Contained() != p1 || p1.Contained() != intT {
		t.Fatalf("Contained must return canonical types")
	}
	s1 := r.Struct("Pair", "main", []*Type{intT})
	s2 := r.Struct("Pair", "main", []*Type{r.Primitive(TyInt)})
	if s1 != s2 {
		t.Fatalf("template structs must be pointer-identical")
	}
	if r.Struct("Pair", "other", []*Type{intT}) == s1 {
		t.Fatalf("origin must take part in identity")
	}
}

func TestRegistryRejectsDynCompositions(t *testing.T) {
	r := NewRegistry()
	dyn := r.Primitive(TyDyn)
	cases := []struct {
		name string
		mk   func() (*Type, error)
		kind TypeErrorKind
	}{
		{"pointer", dyn.ToPointer, ErrDynPointer},
		{"array", func() (*Type, error) { return dyn.ToArray(2) }, ErrDynArray},
		{"reference", dyn.ToReference, ErrDynReference},
		{"raw chain", func() (*Type, error) {
			return r.GetOrInsert([]ChainElement{{Super: TyDyn}, {Super: TyPtr}})
		}, ErrDynPointer},
	}
	for _, tc := range cases {
		_, err := tc.mk()
		var te *TypeError
		if !errors.As(err, &te) || te.Kind != tc.kind {
			t.Errorf("%s: expected TypeError kind %d, got %v", tc.name, tc.kind, err)
		}
	}
}

func TestRegistryRejectsMalformedChains(t *testing.T) {
	r := NewRegistry()
	if _, err := r.GetOrInsert([]ChainElement{{Super: TyPtr}}); err == nil {
		t.Fatalf("expected error for chain starting with a pointer")
	}
	if _, err := r.GetOrInsert([]ChainElement{{Super: TyInt}, {Super: TyInt}}); err == nil {
		t.Fatalf("expected error for two base elements")
	}
}

func TestRegistryConcurrentInsert(t *testing.T) {
	r := NewRegistry()
	const workers = 8
	results := make([]*Type, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			arr, _ := r.Primitive(TyChar).MustPointer().ToArray(16)
			results[i] = arr
		}(i)
	}
	wg.Wait()
	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d got a different instance", i)
		}
	}
}
