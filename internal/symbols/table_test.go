package symbols

import (
	"testing"

	"spice/internal/source"
	"spice/internal/types"
)

func newTestTable() (*Table, *types.Registry) {
	return NewTable(Hints{}, source.FileID(1), "main.spice"), types.NewRegistry()
}

func loc(line, col uint32) source.CodeLoc {
	return source.CodeLoc{Path: "main.spice", Line: line, Col: col}
}

func TestLookupVisibility(t *testing.T) {
	table, reg := newTestTable()
	intT := types.Qual(reg.Primitive(types.TyInt), 0)

	fn := table.Global.EnsureChild(ScopeFunction, FunctionKey("main"), loc(1, 1))
	if _, ok := fn.Insert("outer", intT, nil, loc(2, 5)); !ok {
		t.Fatalf("insert outer failed")
	}
	inner := fn.EnsureChild(ScopeIf, BlockKey(ScopeIf, loc(3, 5)), loc(3, 5))
	if _, ok := inner.Insert("local", intT, nil, loc(4, 9)); !ok {
		t.Fatalf("insert local failed")
	}

	if got := inner.Lookup("outer"); got == nil || got.Scope != fn {
		t.Fatalf("outer not visible from nested scope: %v", got)
	}
	if got := fn.Lookup("local"); got != nil {
		t.Fatalf("inner local leaked to parent scope")
	}
	if got := inner.LookupStrict("outer"); got != nil {
		t.Fatalf("strict lookup must not walk parents")
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestInsertRejectsDuplicate(t *testing.T) {
	table, reg := newTestTable()
	qt := types.Qual(reg.Primitive(types.TyBool), 0)
	first, ok := table.Global.Insert("flag", qt, nil, loc(1, 1))
	if !ok || !first.Has(FlagGlobal) {
		t.Fatalf("expected fresh global entry")
	}
	again, ok := table.Global.Insert("flag", qt, nil, loc(2, 1))
	if ok || again != first {
		t.Fatalf("duplicate insert must return the existing entry")
	}
}

func TestEntryStateIsOneWay(t *testing.T) {
	table, reg := newTestTable()
	e, _ := table.Global.Insert("x", types.Qual(reg.Primitive(types.TyInt), 0), nil, loc(1, 1))
	if e.State() != Declared {
		t.Fatalf("new entry state = %s, want declared", e.State())
	}
	e.Initialize()
	e.Initialize()
	if !e.IsInitialized() {
		t.Fatalf("entry should stay initialized")
	}
}

func TestEnsureChildReusesKey(t *testing.T) {
	table, _ := newTestTable()
	key := BlockKey(ScopeWhile, loc(7, 3))
	a := table.Global.EnsureChild(ScopeWhile, key, loc(7, 3))
	b := table.Global.EnsureChild(ScopeWhile, key, loc(7, 3))
	if a != b {
		t.Fatalf("second EnsureChild created a new scope")
	}
	if key != "while:L7C3" {
		t.Fatalf("unexpected block key %q", key)
	}
	if len(table.Global.Children()) != 1 {
		t.Fatalf("expected one child, got %d", len(table.Global.Children()))
	}
}

func TestLambdaCapturesOuterLocals(t *testing.T) {
	table, reg := newTestTable()
	intT := types.Qual(reg.Primitive(types.TyInt), 0)
	table.Global.Insert("counter", intT, nil, loc(1, 1))

	fn := table.Global.EnsureChild(ScopeFunction, FunctionKey("main"), loc(2, 1))
	x, _ := fn.Insert("x", intT, nil, loc(3, 5))
	lambda := fn.EnsureChild(ScopeLambda, BlockKey(ScopeLambda, loc(4, 5)), loc(4, 5))
	body := lambda.EnsureChild(ScopeBlock, BlockKey(ScopeBlock, loc(4, 20)), loc(4, 20))
	body.Insert("tmp", intT, nil, loc(5, 9))

	body.Lookup("x")
	body.Lookup("x")
	body.Lookup("counter")
	body.Lookup("tmp")

	caps := lambda.Captures()
	if len(caps) != 1 || caps[0].Entry != x {
		t.Fatalf("expected exactly x captured, got %d captures", len(caps))
	}
	if caps[0].Mode != ByValue {
		t.Fatalf("lambda capture mode = %s, want by-value", caps[0].Mode)
	}
	caps[0].MarkWritten()
	if lambda.CaptureOf(x).Mode != ByReference {
		t.Fatalf("written capture must switch to by-reference")
	}

	thread := fn.EnsureChild(ScopeThread, BlockKey(ScopeThread, loc(8, 5)), loc(8, 5))
	thread.Lookup("x")
	if c := thread.CaptureOf(x); c == nil || c.Mode != ByReference {
		t.Fatalf("thread captures are by reference")
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestInUnsafeStopsAtFunction(t *testing.T) {
	table, _ := newTestTable()
	fn := table.Global.EnsureChild(ScopeFunction, FunctionKey("main"), loc(1, 1))
	un := fn.EnsureChild(ScopeUnsafe, BlockKey(ScopeUnsafe, loc(2, 5)), loc(2, 5))
	loop := un.EnsureChild(ScopeWhile, BlockKey(ScopeWhile, loc(3, 9)), loc(3, 9))
	if !loop.InUnsafe() {
		t.Fatalf("loop inside unsafe block should be unsafe")
	}
	if fn.InUnsafe() {
		t.Fatalf("function scope is not unsafe")
	}
}

func TestFieldsKeepLayoutOrder(t *testing.T) {
	table, reg := newTestTable()
	s := table.Global.EnsureChild(ScopeStruct, StructKey("Point"), loc(1, 1))
	intT := types.Qual(reg.Primitive(types.TyInt), 0)
	for i, name := range []string{"x", "y", "z"} {
		e, _ := s.Insert(name, intT, nil, loc(uint32(i+2), 5))
		e.Flags |= FlagField
	}
	fields := s.Fields()
	if len(fields) != 3 || fields[0].Name != "x" || fields[2].Name != "z" {
		t.Fatalf("unexpected field order")
	}
}

func TestFunctionManifestations(t *testing.T) {
	table, reg := newTestTable()
	gen := reg.Generic("T")
	tmpl := &Function{Name: "id", Return: gen, Params: []Param{{Name: "a", Type: gen}}, Generics: []*types.Type{gen}}
	table.AddFunction("id", tmpl)

	mk := func(bound *types.Type) *Function {
		b := map[string]*types.Type{"T": bound}
		m := &Function{
			Name:     "id",
			Return:   Substitute(tmpl.Return, b),
			Params:   []Param{{Name: "a", Type: Substitute(gen, b)}},
			Bindings: b,
		}
		m.Mangled = MangleFunction(false, nil, "id", nil, m.ParamTypes())
		return m
	}
	intMan, fresh := tmpl.AddManifestation(mk(reg.Primitive(types.TyInt)))
	if !fresh || intMan.ManIdx != 0 {
		t.Fatalf("first manifestation should be fresh with index 0")
	}
	strMan, _ := tmpl.AddManifestation(mk(reg.Primitive(types.TyString)))
	if strMan.ManIdx != 1 || strMan.Mangled == intMan.Mangled {
		t.Fatalf("distinct bindings must yield distinct manifestations")
	}
	again, fresh := tmpl.AddManifestation(mk(reg.Primitive(types.TyInt)))
	if fresh || again != intMan {
		t.Fatalf("same binding must reuse the manifestation")
	}
	if intMan.Mangled != "_f__id__int" {
		t.Fatalf("mangled = %q", intMan.Mangled)
	}
	if !intMan.IsFullySubstantiated() || tmpl.IsFullySubstantiated() {
		t.Fatalf("substantiation state is wrong")
	}
	if intMan.ShouldEmit() {
		t.Fatalf("unused manifestation must not be emitted")
	}
	intMan.Used = true
	if !intMan.ShouldEmit() {
		t.Fatalf("used manifestation must be emitted")
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestUnifyBindsThroughWrappers(t *testing.T) {
	reg := types.NewRegistry()
	gen := reg.Generic("T")
	param := gen.MustPointer()
	intT := reg.Primitive(types.TyInt)
	arg, err := intT.MustPointer().ToPointer()
	if err != nil {
		t.Fatalf("pointer: %v", err)
	}

	b := map[string]*types.Type{}
	if !Unify(param, arg, b) {
		t.Fatalf("T* should unify with int**")
	}
	if b["T"] != intT.MustPointer() {
		t.Fatalf("T bound to %s, want int*", b["T"])
	}
	if Unify(param, intT, map[string]*types.Type{}) {
		t.Fatalf("T* must not unify with int")
	}
	conflict := map[string]*types.Type{"T": reg.Primitive(types.TyLong)}
	if Unify(gen, intT, conflict) {
		t.Fatalf("conflicting binding must fail")
	}
	if got := Substitute(param, b); got != arg {
		t.Fatalf("substitute gave %s, want %s", got, arg)
	}
}

func TestGenericTypeConditions(t *testing.T) {
	reg := types.NewRegistry()
	g := &GenericType{Name: "N", Type: reg.Generic("N"), Conditions: []*types.Type{reg.Primitive(types.TyInt), reg.Primitive(types.TyLong)}}
	if !g.Accepts(reg.Primitive(types.TyLong)) || g.Accepts(reg.Primitive(types.TyString)) {
		t.Fatalf("condition check is wrong")
	}
	anyT := &GenericType{Name: "T", Type: reg.Generic("T")}
	if !anyT.Accepts(reg.Primitive(types.TyString)) {
		t.Fatalf("unconditioned generic accepts every type")
	}
}
