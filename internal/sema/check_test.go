package sema

import (
	"context"
	"errors"
	"testing"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/parser"
	"spice/internal/source"
	"spice/internal/symbols"
	"spice/internal/types"
)

func parseFile(t *testing.T, name, src string) *ast.File {
	t.Helper()
	f, err := parser.ParseSource(source.NewFileSet(), name, src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return f
}

func analyze(t *testing.T, src string) *Result {
	t.Helper()
	return analyzeWith(t, src, Options{Primary: true})
}

func analyzeWith(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	res, err := Analyze(context.Background(), parseFile(t, "test.spice", src), opts)
	if err != nil {
		t.Fatalf("unexpected analyzer error: %v", err)
	}
	return res
}

func analyzeErr(t *testing.T, src string, want diag.Code) *diag.SemanticError {
	t.Helper()
	_, err := Analyze(context.Background(), parseFile(t, "test.spice", src), Options{Primary: true})
	if err == nil {
		t.Fatalf("expected error %d, analysis succeeded", want)
	}
	var serr *diag.SemanticError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *diag.SemanticError, got %T: %v", err, err)
	}
	if serr.Kind() != want {
		t.Fatalf("expected error %d, got %d: %v", want, serr.Kind(), serr)
	}
	return serr
}

func mainScope(t *testing.T, res *Result) *symbols.Scope {
	t.Helper()
	if res.Main == nil || res.Main.Scope == nil {
		t.Fatalf("main was not analyzed")
	}
	return res.Main.Scope
}

func TestDeclarationWithBinaryInit(t *testing.T) {
	res := analyze(t, `
f<int> main() {
	int x = 5 + 3;
	return x;
}
`)
	x := mainScope(t, res).LookupStrict("x")
	if x == nil {
		t.Fatalf("x not declared in main scope")
	}
	if x.Type.Type != res.Types.Primitive(types.TyInt) {
		t.Fatalf("x: got type %s, want int", x.Type.Type.Name())
	}
	if x.State() != symbols.Initialized {
		t.Fatalf("x: got state %s, want initialized", x.State())
	}
	if !x.IsUsed() {
		t.Fatalf("x should be marked used")
	}
	decl := res.Main.Decl.Body.Stmts[0].(*ast.DeclStmt)
	if got := decl.Value.TypeAt(0); got != res.Types.Primitive(types.TyInt) {
		t.Fatalf("5 + 3 annotated as %s", got.Name())
	}
}

const genericSrc = `
type T dyn;
f<T> ident<T>(T a) { return a; }
f<int> main() {
	int n = ident(5);
	string s = ident("hi");
	printf("%d %s", n, s);
	return 0;
}
`

func TestGenericCallsCreateOneManifestationPerBinding(t *testing.T) {
	res := analyze(t, genericSrc)
	tmpls := res.Table.Funcs["ident"]
	if len(tmpls) != 1 {
		t.Fatalf("expected one template, got %d", len(tmpls))
	}
	mans := tmpls[0].Manifestations()
	if len(mans) != 2 {
		t.Fatalf("expected 2 manifestations, got %d", len(mans))
	}
	if mans[0].Mangled == mans[1].Mangled {
		t.Fatalf("manifestations share mangled name %q", mans[0].Mangled)
	}
	wantRet := []types.SuperType{types.TyInt, types.TyString}
	for i, m := range mans {
		if !m.Analyzed || !m.Used {
			t.Errorf("%s: analyzed=%v used=%v", m.Mangled, m.Analyzed, m.Used)
		}
		if !m.Return.Is(wantRet[i]) || !m.Params[0].Type.Is(wantRet[i]) {
			t.Errorf("%s: got %s", m.Mangled, m.Signature())
		}
		if m.ManIdx != i {
			t.Errorf("%s: manIdx %d, want %d", m.Mangled, m.ManIdx, i)
		}
	}
	// the body is annotated once per manifestation
	ret := tmpls[0].Decl.Body.Stmts[0].(*ast.ReturnStmt)
	if ret.Value.TypeAt(0) == ret.Value.TypeAt(1) {
		t.Fatalf("return value shares one annotation across manifestations")
	}
	if res.Runs < 2 {
		t.Fatalf("expected at least two runs, got %d", res.Runs)
	}
}

func TestReanalyzeIsIdempotent(t *testing.T) {
	res := analyze(t, genericSrc)
	mans := res.Table.Funcs["ident"][0].Manifestations()
	names := []string{mans[0].Mangled, mans[1].Mangled}
	typesBefore := res.Types.Len()

	if err := res.Reanalyze(context.Background()); err != nil {
		t.Fatalf("reanalyze: %v", err)
	}
	if res.Runs != 0 {
		t.Fatalf("converged analysis ran %d more times", res.Runs)
	}
	after := res.Table.Funcs["ident"][0].Manifestations()
	if len(after) != 2 || after[0].Mangled != names[0] || after[1].Mangled != names[1] {
		t.Fatalf("manifestations changed on reanalysis")
	}
	if res.Types.Len() != typesBefore {
		t.Fatalf("reanalysis registered %d new types", res.Types.Len()-typesBefore)
	}
}

func TestImportedStructMethodCall(t *testing.T) {
	reg := types.NewRegistry()
	lib, err := Analyze(context.Background(), parseFile(t, "lib.spice", `
public type Counter struct { public int value; }
public f<int> Counter.get() { return this.value; }
public Counter counter;
`), Options{Registry: reg})
	if err != nil {
		t.Fatalf("lib: %v", err)
	}
	file := parseFile(t, "main.spice", `
import "lib" as lib;
f<int> main() {
	return lib.counter.get();
}
`)
	res, err := Analyze(context.Background(), file, Options{
		Registry: reg,
		Imports:  map[string]*symbols.Table{"lib": lib.Table},
		Primary:  true,
	})
	if err != nil {
		t.Fatalf("main: %v", err)
	}
	ret := res.Main.Decl.Body.Stmts[0].(*ast.ReturnStmt)
	call, ok := ret.Value.RefAt(0).(*Call)
	if !ok {
		t.Fatalf("call node carries %T", ret.Value.RefAt(0))
	}
	if call.Kind != CallMethod || call.Func.Name != "get" || call.Func.Receiver.Name != "Counter" {
		t.Fatalf("resolved %v to %s", call.Kind, call.Func.Signature())
	}
	if call.This == nil || call.This.TypeAt(0) == nil {
		t.Fatalf("receiver not annotated")
	}
	if len(res.Tables()) != 2 {
		t.Fatalf("expected own and imported table, got %d", len(res.Tables()))
	}
}

func TestUndefinedVariable(t *testing.T) {
	serr := analyzeErr(t, `
f<int> main() {
	return missing;
}
`, diag.SemReferencedUndefinedVariable)
	if serr.Loc().Line != 3 {
		t.Fatalf("error reported at line %d", serr.Loc().Line)
	}
}

func TestMissingMain(t *testing.T) {
	analyzeErr(t, `f<int> helper() { return 1; }`, diag.SemMissingMainFunction)
}

func TestResultRules(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want diag.Code
	}{
		{"read before assign", `
f<int> get() { int x = result; return x; }
f<int> main() { return get(); }`, diag.SemReturnWithoutValueResult},
		{"bare return", `
f<int> get() { return; }
f<int> main() { return get(); }`, diag.SemReturnWithoutValueResult},
		{"no return", `
f<int> get() { int x = 1; x++; }
f<int> main() { return get(); }`, diag.SemFunctionWithoutReturnStmt},
		{"value in procedure", `
p run() { return 1; }
f<int> main() { run(); return 0; }`, diag.SemReturnWithValueInProcedure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analyzeErr(t, tc.src, tc.want)
		})
	}
}

func TestResultAssignmentCountsAsReturn(t *testing.T) {
	res := analyze(t, `
f<int> get() { result = 4; }
f<int> main() { return get(); }
`)
	get := res.Table.Funcs["get"][0].Manifestations()[0]
	if r := get.Scope.LookupStrict("result"); r == nil || !r.IsInitialized() {
		t.Fatalf("result should be initialized")
	}
}

func TestStatementRules(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want diag.Code
	}{
		{"break too far", `f<int> main() { while true { break 2; } return 0; }`, diag.SemInvalidBreakNumber},
		{"continue outside loop", `f<int> main() { continue; return 0; }`, diag.SemInvalidContinueNumber},
		{"condition not bool", `f<int> main() { if 1 { } return 0; }`, diag.SemConditionMustBeBool},
		{"assert not bool", `f<int> main() { assert 1; return 0; }`, diag.SemAssertionConditionBool},
		{"const reassign", `f<int> main() { const int x = 1; x = 2; return x; }`, diag.SemReassignConstVariable},
		{"declared twice", `f<int> main() { int x = 1; int x = 2; return x; }`, diag.SemVariableDeclaredTwice},
		{"dyn from procedure", `p run() {} f<int> main() { dyn x = run(); return 0; }`, diag.SemUnexpectedDynType},
		{"fallthrough in last case", `f<int> main() { switch 1 { case 1 { fallthrough; } } return 0; }`, diag.SemFallthroughNotAllowed},
		{"wrong operand", `f<int> main() { int x = 1 + "a"; return x; }`, diag.SemOperatorWrongDataType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			analyzeErr(t, tc.src, tc.want)
		})
	}
}

func TestLoopScopesAreNested(t *testing.T) {
	res := analyze(t, `
f<int> main() {
	int total = 0;
	for int i = 0; i < 3; i++ {
		total += i;
	}
	return total;
}
`)
	scope := mainScope(t, res)
	if scope.LookupStrict("i") != nil {
		t.Fatalf("loop variable leaked into the function scope")
	}
	children := scope.Children()
	if len(children) != 1 || children[0].Kind != symbols.ScopeFor {
		t.Fatalf("expected one for scope, got %d children", len(children))
	}
	if children[0].Lookup("total") == nil {
		t.Fatalf("outer variable not visible from the loop scope")
	}
}

func TestUnusedVariableWarning(t *testing.T) {
	bag := diag.NewBag(10)
	_, err := Analyze(context.Background(), parseFile(t, "test.spice", `
f<int> main() {
	int unused = 1;
	return 0;
}
`), Options{Primary: true, Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.WarnUnusedVariable {
		t.Fatalf("expected one unused variable warning, got %v", items)
	}
}

func TestWarningsDroppedOnFailure(t *testing.T) {
	bag := diag.NewBag(10)
	_, err := Analyze(context.Background(), parseFile(t, "test.spice", `
f<int> main() {
	int[2] a = [1, 2, 3];
	return missing;
}
`), Options{Primary: true, Reporter: diag.BagReporter{Bag: bag}})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if bag.Len() != 0 {
		t.Fatalf("warnings published for a failed file: %v", bag.Items())
	}
}

func TestRunCapExceeded(t *testing.T) {
	_, err := Analyze(context.Background(), parseFile(t, "test.spice", genericSrc), Options{Primary: true, MaxRuns: 1})
	var cerr *diag.CompilerError
	if !errors.As(err, &cerr) || cerr.Kind() != diag.CmpTypeCheckerRunsExceeded {
		t.Fatalf("expected runs exceeded, got %v", err)
	}
}
