package sema

import (
	"testing"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

func TestExpressionRules(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want diag.Code
	}{
		{"index out of bounds", `f<int> main() { int[3] a = [1, 2, 3]; return a[3]; }`, diag.SemArrayIndexOutOfBounds},
		{"index not integer", `f<int> main() { int[3] a = [1, 2, 3]; return a[true]; }`, diag.SemArrayIndexNotIntOrLong},
		{"index on scalar", `f<int> main() { int a = 1; return a[0]; }`, diag.SemExpectedArrayType},
		{"mixed array items", `f<int> main() { dyn a = [1, "x"]; return 0; }`, diag.SemArrayItemTypeNotMatching},
		{"printf too few args", `f<int> main() { printf("%d %d", 1); return 0; }`, diag.SemPrintfArgCountError},
		{"printf too many args", `f<int> main() { printf("%d", 1, 2); return 0; }`, diag.SemPrintfArgCountError},
		{"printf wrong type", `f<int> main() { printf("%f", 1); return 0; }`, diag.SemPrintfTypeError},
		{"syscall outside unsafe", `f<int> main() { long r = syscall(39); return 0; }`, diag.SemUnsafeOperationInSafeCtx},
		{"join non tid", `f<int> main() { int n = join(1); return n; }`, diag.SemJoinArgMustBeTid},
		{"undefined function", `f<int> main() { return nothing(1); }`, diag.SemReferencedUndefinedFunction},
		{"wrong argument", `f<int> twice(int v) { return v * 2; } f<int> main() { return twice("x"); }`, diag.SemReferencedUndefinedFunction},
		{"unknown field", `type Box struct { int v; } f<int> main() { Box b = Box{1}; return b.w; }`, diag.SemReferencedUndefinedVariable},
		{"too few fields", `type Pair struct { int a; int b; } f<int> main() { Pair x = Pair{1}; return x.a; }`, diag.SemNumberOfFieldsNotMatching},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analyzeErr(t, tc.src, tc.want)
		})
	}
}

func TestOverloadAmbiguity(t *testing.T) {
	analyzeErr(t, `
type T dyn;
type U dyn;
f<int> pick<T>(T a) { return 1; }
f<int> pick<U>(U a) { return 2; }
f<int> main() { return pick(3); }
`, diag.SemFunctionAmbiguity)
}

func TestOverloadPrefersExactMatch(t *testing.T) {
	res := analyze(t, `
f<int> area(int side) { return side * side; }
f<int> area(char* name) { return 0; }
f<int> main() { return area(4); }
`)
	ret := res.Main.Decl.Body.Stmts[0].(*ast.ReturnStmt)
	call := ret.Value.RefAt(0).(*Call)
	if pt := call.Func.Params[0].Type; !pt.Is(types.TyInt) {
		t.Fatalf("picked %s", call.Func.Signature())
	}
}

func TestDefaultArguments(t *testing.T) {
	res := analyze(t, `
f<int> scale(int v, int factor = 3) { return v * factor; }
f<int> main() { return scale(2); }
`)
	ret := res.Main.Decl.Body.Stmts[0].(*ast.ReturnStmt)
	call := ret.Value.RefAt(0).(*Call)
	if len(call.Defaults) != 1 || call.Defaults[0] == nil {
		t.Fatalf("expected one default argument, got %d", len(call.Defaults))
	}
}

func TestLambdaCapturesOuterLocal(t *testing.T) {
	res := analyze(t, `
f<int> main() {
	int base = 2;
	f<int>(int) add = f<int>(int v) { return v + base; };
	return add(3);
}
`)
	decl := res.Main.Decl.Body.Stmts[1].(*ast.DeclStmt)
	inner, ok := decl.Value.RefAt(0).(*symbols.Scope)
	if !ok || inner.Kind != symbols.ScopeLambda {
		t.Fatalf("lambda scope not recorded, got %T", decl.Value.RefAt(0))
	}
	caps := inner.Captures()
	if len(caps) != 1 || caps[0].Entry.Name != "base" || caps[0].Mode != symbols.ByValue {
		t.Fatalf("unexpected captures %v", caps)
	}
	if !decl.Value.TypeAt(0).HasCaptures() {
		t.Fatalf("lambda type should carry captures")
	}
	ret := res.Main.Decl.Body.Stmts[2].(*ast.ReturnStmt)
	if call := ret.Value.RefAt(0).(*Call); call.Kind != CallValue {
		t.Fatalf("expected a value call, got %v", call.Kind)
	}
}

func TestLambdaWriteCapturesByReference(t *testing.T) {
	res := analyze(t, `
f<int> main() {
	int count = 0;
	p() bump = p() { count++; };
	bump();
	return count;
}
`)
	decl := res.Main.Decl.Body.Stmts[1].(*ast.DeclStmt)
	caps := decl.Value.RefAt(0).(*symbols.Scope).Captures()
	if len(caps) != 1 || caps[0].Mode != symbols.ByReference {
		t.Fatalf("count should be captured by reference: %v", caps)
	}
}

func TestEnumSwitch(t *testing.T) {
	res := analyze(t, `
type Color enum { RED, GREEN = 5, BLUE }
f<int> main() {
	Color c = Color.BLUE;
	switch c {
		case Color.RED { return 1; }
		case Color.GREEN, Color.BLUE { return 2; }
	}
	return 0;
}
`)
	decl := res.Main.Decl.Body.Stmts[0].(*ast.DeclStmt)
	c := decl.Value.ConstAt(0)
	// unnumbered items take the lowest free value
	if c == nil || c.Int != 1 {
		t.Fatalf("Color.BLUE folded to %v, want 1", c)
	}
	if !decl.Value.TypeAt(0).Is(types.TyEnum) {
		t.Fatalf("Color.BLUE typed as %s", decl.Value.TypeAt(0).Name())
	}
}

func TestInterfaceConformance(t *testing.T) {
	analyzeErr(t, `
type Shape interface { f<int> area(); }
type Square struct : Shape { int side; }
f<int> main() { Square s = Square{2}; return s.side; }
`, diag.SemInterfaceMethodNotImpl)

	res := analyze(t, `
type Shape interface { f<int> area(); }
type Square struct : Shape { int side; }
f<int> Square.area() { return this.side * this.side; }
f<int> measure(Shape* s) { return s.area(); }
f<int> main() {
	Square sq = Square{2};
	return measure(&sq);
}
`)
	measure := res.Table.Funcs["measure"][0].Manifestations()[0]
	ret := measure.Decl.Body.Stmts[0].(*ast.ReturnStmt)
	call := ret.Value.RefAt(0).(*Call)
	if call.Kind != CallInterface || call.Iface == nil || call.Method != 0 {
		t.Fatalf("expected an interface dispatch, got %+v", call)
	}
}

func TestBuiltinResults(t *testing.T) {
	res := analyze(t, `
f<int> main() {
	int[4] arr = [1, 2, 3, 4];
	int n = len(arr);
	int s = sizeof(int);
	int w = len("four");
	unsafe {
		long r = syscall(39);
		r++;
	}
	return n + s + w;
}
`)
	stmts := res.Main.Decl.Body.Stmts
	if c := stmts[1].(*ast.DeclStmt).Value.ConstAt(0); c == nil || c.Int != 4 {
		t.Fatalf("len(arr) folded to %v", c)
	}
	if c := stmts[3].(*ast.DeclStmt).Value.ConstAt(0); c == nil || c.Int != 4 {
		t.Fatalf("len(\"four\") folded to %v", c)
	}
	if got := stmts[2].(*ast.DeclStmt).Value.TypeAt(0); !got.Is(types.TyInt) {
		t.Fatalf("sizeof typed as %s", got.Name())
	}
}

func TestThreadAndJoin(t *testing.T) {
	res := analyze(t, `
f<int> main() {
	int done = 0;
	byte* t1 = thread { done = 1; };
	int joined = join(t1);
	return joined + done;
}
`)
	decl := res.Main.Decl.Body.Stmts[1].(*ast.DeclStmt)
	inner, ok := decl.Value.RefAt(0).(*symbols.Scope)
	if !ok || inner.Kind != symbols.ScopeThread {
		t.Fatalf("thread scope not recorded")
	}
	if len(inner.Captures()) != 1 || inner.Captures()[0].Mode != symbols.ByReference {
		t.Fatalf("thread should capture done by reference")
	}
}

func TestArrayLiteralWarnings(t *testing.T) {
	bag := diag.NewBag(10)
	res := analyzeWith(t, `
f<int> main() {
	int[2] a = [1, 2, 3];
	return a[0];
}
`, Options{Primary: true, Reporter: diag.BagReporter{Bag: bag}})
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.WarnArrayTooManyValues {
		t.Fatalf("expected one too-many-values warning, got %v", items)
	}
	decl := res.Main.Decl.Body.Stmts[0].(*ast.DeclStmt)
	if size := decl.Value.TypeAt(0).ArraySize(); size != 2 {
		t.Fatalf("literal typed with size %d, want 2", size)
	}
}

func TestUnusedDeclarationsWarn(t *testing.T) {
	bag := diag.NewBag(10)
	analyzeWith(t, `
type Spare struct { int v; }
f<int> helper() { return 1; }
p noop() {}
f<int> main() { return 0; }
`, Options{Primary: true, Reporter: diag.BagReporter{Bag: bag}})
	got := map[diag.Code]int{}
	for _, d := range bag.Items() {
		got[d.Code]++
	}
	for _, code := range []diag.Code{diag.WarnUnusedStruct, diag.WarnUnusedFunction, diag.WarnUnusedProcedure} {
		if got[code] != 1 {
			t.Errorf("expected one warning %d, got %v", code, got)
		}
	}
}
