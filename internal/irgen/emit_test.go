package irgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"

	"spice/internal/diag"
	"spice/internal/layout"
	"spice/internal/parser"
	"spice/internal/sema"
	"spice/internal/source"
	"spice/internal/symbols"
	"spice/internal/types"
)

func analyze(t *testing.T, src string) *sema.Result {
	t.Helper()
	f, err := parser.ParseSource(source.NewFileSet(), "test.spice", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	res, err := sema.Analyze(context.Background(), f, sema.Options{Primary: true})
	if err != nil {
		t.Fatalf("unexpected analyzer error: %v", err)
	}
	return res
}

func generate(t *testing.T, src string) *ir.Module {
	t.Helper()
	return generateWith(t, src, Options{})
}

func generateWith(t *testing.T, src string, opts Options) *ir.Module {
	t.Helper()
	m, err := Generate(context.Background(), analyze(t, src), opts)
	if err != nil {
		t.Fatalf("unexpected generator error: %v", err)
	}
	return m
}

func funcNamed(t *testing.T, m *ir.Module, name string) *ir.Func {
	t.Helper()
	for _, f := range m.Funcs {
		if f.Name() == name {
			return f
		}
	}
	t.Fatalf("function @%s not found", name)
	return nil
}

func blockNamed(f *ir.Func, name string) *ir.Block {
	for _, b := range f.Blocks {
		if b.Name() == name {
			return b
		}
	}
	return nil
}

func TestGenerateDeclarationWithBinaryInit(t *testing.T) {
	m := generate(t, `
f<int> main() {
	int x = 5 + 3;
	return x;
}
`)
	main := funcNamed(t, m, "main")
	if main.Linkage == enum.LinkageInternal {
		t.Fatalf("main must stay external")
	}
	text := main.LLString()
	if !strings.Contains(text, "add i32 5, 3") {
		t.Fatalf("missing addition in\n%s", text)
	}
	if !strings.Contains(text, "ret i32") {
		t.Fatalf("main does not return i32:\n%s", text)
	}
}

func TestGenerateOneFunctionPerManifestation(t *testing.T) {
	m := generate(t, `
type T dyn;
f<T> ident<T>(T a) { return a; }
f<int> main() {
	int n = ident(5);
	string s = ident("hi");
	printf("%d %s", n, s);
	return 0;
}
`)
	var defined []string
	for _, f := range m.Funcs {
		if strings.Contains(f.Name(), "ident") && len(f.Blocks) > 0 {
			defined = append(defined, f.Name())
		}
	}
	if len(defined) != 2 {
		t.Fatalf("expected two manifestations of ident, got %v", defined)
	}
	if defined[0] == defined[1] {
		t.Fatalf("manifestations share the name %s", defined[0])
	}
	printf := funcNamed(t, m, "printf")
	if !printf.Sig.Variadic || len(printf.Blocks) != 0 {
		t.Fatalf("printf should be a variadic declaration")
	}
}

func TestGenerateBreakLeavesLoop(t *testing.T) {
	m := generate(t, `
f<int> main() {
	int total = 0;
	for int i = 0; i < 10; i++ {
		if i == 5 { break; }
		total += i;
	}
	return total;
}
`)
	main := funcNamed(t, m, "main")
	then := blockNamed(main, "if.then")
	if then == nil {
		t.Fatalf("no if.then block in\n%s", main.LLString())
	}
	br, ok := then.Term.(*ir.TermBr)
	if !ok {
		t.Fatalf("if.then ends with %T, want a branch", then.Term)
	}
	if br.Target.(*ir.Block).Name() != "for.end" {
		t.Fatalf("break jumps to %s, want for.end", br.Target.(*ir.Block).Name())
	}
	for _, b := range main.Blocks {
		if b.Term == nil {
			t.Fatalf("block %s has no terminator", b.Name())
		}
	}
}

func TestGenerateConstantStructLiteral(t *testing.T) {
	m := generate(t, `
type Point struct { int x; int y; }
f<int> main() {
	Point pt = Point{1, 2};
	return pt.x;
}
`)
	var found *ir.Global
	for _, g := range m.Globals {
		if _, ok := g.Init.(*constant.Struct); ok {
			found = g
		}
	}
	if found == nil {
		t.Fatalf("struct literal was not placed in a global:\n%s", m)
	}
	if !found.Immutable || found.Linkage != enum.LinkagePrivate {
		t.Fatalf("literal global should be a private constant: %s", found.LLString())
	}
}

func TestGenerateDistinctArrayConstants(t *testing.T) {
	m := generate(t, `
f<int> first() {
	int[3] a = [1, 2, 3];
	return a[0];
}
f<int> main() {
	int[3] b = [1, 2, 3];
	return b[1] + first();
}
`)
	n := 0
	for _, g := range m.Globals {
		if _, ok := g.Init.(*constant.Array); ok {
			n++
		}
	}
	if n != 2 {
		t.Fatalf("expected one constant per literal, got %d", n)
	}
}

func TestGenerateImportedMethodCall(t *testing.T) {
	reg := types.NewRegistry()
	fset := source.NewFileSet()
	libFile, err := parser.ParseSource(fset, "lib.spice", `
public type Counter struct { public int value; }
public f<int> Counter.get() { return this.value; }
public Counter counter;
`)
	if err != nil {
		t.Fatalf("lib: %v", err)
	}
	lib, err := sema.Analyze(context.Background(), libFile, sema.Options{Registry: reg})
	if err != nil {
		t.Fatalf("lib: %v", err)
	}
	mainFile, err := parser.ParseSource(fset, "main.spice", `
import "lib" as lib;
f<int> main() {
	return lib.counter.get();
}
`)
	if err != nil {
		t.Fatalf("main: %v", err)
	}
	res, err := sema.Analyze(context.Background(), mainFile, sema.Options{
		Registry: reg,
		Imports:  map[string]*symbols.Table{"lib": lib.Table},
		Primary:  true,
	})
	if err != nil {
		t.Fatalf("main: %v", err)
	}
	m, err := Generate(context.Background(), res, Options{})
	if err != nil {
		t.Fatalf("generate main: %v", err)
	}
	var get *ir.Func
	for _, f := range m.Funcs {
		if strings.Contains(f.Name(), "get") {
			get = f
		}
	}
	if get == nil || len(get.Blocks) != 0 {
		t.Fatalf("imported method should be declared, not defined")
	}
	if get.Linkage == enum.LinkageInternal {
		t.Fatalf("imported method must not be internal")
	}
	var counter *ir.Global
	for _, g := range m.Globals {
		if g.Name() == "counter" {
			counter = g
		}
	}
	if counter == nil || counter.Init != nil {
		t.Fatalf("imported global should be an external declaration")
	}

	libMod, err := Generate(context.Background(), lib, Options{})
	if err != nil {
		t.Fatalf("generate lib: %v", err)
	}
	for _, f := range libMod.Funcs {
		if strings.Contains(f.Name(), "get") && len(f.Blocks) == 0 {
			t.Fatalf("home module must define %s", f.Name())
		}
	}
}

func TestGenerateInterfaceDispatch(t *testing.T) {
	m := generate(t, `
type Shape interface { f<int> area(); }
type Square struct : Shape { int side; }
f<int> Square.area() { return this.side * this.side; }
f<int> measure(Shape* s) { return s.area(); }
f<int> main() {
	Square sq = Square{2};
	return measure(&sq);
}
`)
	var vtable *ir.Global
	for _, g := range m.Globals {
		if strings.HasPrefix(g.Name(), "vtable.") {
			vtable = g
		}
	}
	if vtable == nil {
		t.Fatalf("no vtable emitted:\n%s", m)
	}
	init, ok := vtable.Init.(*constant.Struct)
	if !ok || len(init.Fields) != 3 {
		t.Fatalf("vtable not filled: %s", vtable.LLString())
	}
	var measure *ir.Func
	for _, f := range m.Funcs {
		if strings.Contains(f.Name(), "measure") {
			measure = f
		}
	}
	if measure == nil || !strings.Contains(measure.LLString(), "getelementptr i8") {
		t.Fatalf("measure should adjust the object pointer")
	}
}

func TestGenerateLambdaFatPointer(t *testing.T) {
	m := generate(t, `
f<int> main() {
	int base = 10;
	f<int>(int) add = f<int>(int v) { return v + base; };
	return add(5);
}
`)
	var lambda *ir.Func
	for _, f := range m.Funcs {
		if strings.Contains(f.Name(), ".lambda") {
			lambda = f
		}
	}
	if lambda == nil {
		t.Fatalf("lambda body not emitted:\n%s", m)
	}
	if lambda.Linkage != enum.LinkageInternal {
		t.Fatalf("lambda must be internal")
	}
	if len(lambda.Params) != 2 || lambda.Params[0].Name() != "captures" {
		t.Fatalf("lambda should take the capture pointer first, got %s", lambda.Sig)
	}
	if !strings.Contains(funcNamed(t, m, "main").LLString(), "extractvalue") {
		t.Fatalf("call through the fat pointer missing")
	}
}

func TestGenerateSyscallPerTarget(t *testing.T) {
	src := `
f<int> main() {
	unsafe {
		long r = syscall(39);
		r++;
	}
	return 0;
}
`
	tests := []struct {
		triple string
		want   string
	}{
		{"x86_64-unknown-linux-gnu", `"syscall"`},
		{"x86_64-apple-darwin", "u0x2000000"},
		{"aarch64-unknown-linux-gnu", "svc #0"},
		{"arm64-apple-darwin", "svc #0x80"},
		{"i686-pc-linux-gnu", "int $$0x80"},
	}
	for _, tt := range tests {
		target, err := layout.ParseTarget(tt.triple)
		if err != nil {
			t.Fatalf("%s: %v", tt.triple, err)
		}
		m := generateWith(t, src, Options{Target: target})
		if !strings.Contains(m.String(), tt.want) {
			t.Errorf("%s: missing %q in\n%s", tt.triple, tt.want, m)
		}
		if m.TargetTriple != tt.triple {
			t.Errorf("%s: module triple %q", tt.triple, m.TargetTriple)
		}
	}

	target, err := layout.ParseTarget("i386-apple-darwin")
	if err != nil {
		t.Fatalf("i386-apple-darwin: %v", err)
	}
	_, err = Generate(context.Background(), analyze(t, src), Options{Target: target})
	var ierr *diag.IRError
	if !errors.As(err, &ierr) || ierr.Kind() != diag.IRTargetNotAvailable {
		t.Fatalf("expected IRTargetNotAvailable, got %v", err)
	}
}

func TestGenerateCanceled(t *testing.T) {
	res := analyze(t, `f<int> main() { return 0; }`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Generate(ctx, res, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func definedFunc(m *ir.Module, parts ...string) *ir.Func {
	for _, f := range m.Funcs {
		match := len(f.Blocks) > 0
		for _, p := range parts {
			match = match && strings.Contains(f.Name(), p)
		}
		if match {
			return f
		}
	}
	return nil
}

func callsTo(b *ir.Block, part string) int {
	n := 0
	for _, inst := range b.Insts {
		if call, ok := inst.(*ir.InstCall); ok && strings.Contains(call.Callee.Ident(), part) {
			n++
		}
	}
	return n
}

func TestGenerateImportedGlobalIsExternal(t *testing.T) {
	reg := types.NewRegistry()
	lf, err := parser.ParseSource(source.NewFileSet(), "lib.spice", `
public type Counter struct { public int value; }
public f<int> Counter.get() { return this.value; }
public Counter counter;
`)
	if err != nil {
		t.Fatalf("lib: %v", err)
	}
	lib, err := sema.Analyze(context.Background(), lf, sema.Options{Registry: reg})
	if err != nil {
		t.Fatalf("lib: %v", err)
	}
	mf, err := parser.ParseSource(source.NewFileSet(), "main.spice", `
import "lib" as lib;
f<int> main() {
	return lib.counter.get();
}
`)
	if err != nil {
		t.Fatalf("main: %v", err)
	}
	res, err := sema.Analyze(context.Background(), mf, sema.Options{
		Registry: reg,
		Imports:  map[string]*symbols.Table{"lib": lib.Table},
		Primary:  true,
	})
	if err != nil {
		t.Fatalf("main: %v", err)
	}
	m, err := Generate(context.Background(), res, Options{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var counter *ir.Global
	for _, g := range m.Globals {
		if g.Name() == "counter" {
			counter = g
		}
	}
	if counter == nil || counter.Init != nil || counter.Linkage != enum.LinkageExternal {
		t.Fatalf("imported global should be an external declaration:\n%s", m)
	}
	if _, err := asm.ParseString("main.ll", m.String()); err != nil {
		t.Fatalf("emitted IR does not parse back: %v\n%s", err, m)
	}
}

func TestGenerateNestedCopyConstructor(t *testing.T) {
	m := generate(t, `
type Inner struct { heap int* data; }
type Outer struct { Inner inner; }
f<int> main() {
	Outer a;
	Outer b = a;
	return 0;
}
`)
	outer := definedFunc(m, "Outer", "copy")
	if outer == nil {
		t.Fatalf("copy constructor of Outer not emitted:\n%s", m)
	}
	if n := callsTo(outer.Blocks[1], "Inner"); n != 1 {
		t.Fatalf("Outer copy should call the copy constructor of Inner once, got %d:\n%s", n, outer.LLString())
	}
	inner := definedFunc(m, "Inner", "copy")
	if inner == nil || !strings.Contains(inner.LLString(), "@malloc") {
		t.Fatalf("Inner copy should deep copy its heap field:\n%s", m)
	}
	if definedFunc(m, "Outer", "dtor") == nil || definedFunc(m, "Inner", "dtor") == nil {
		t.Fatalf("both destructors should be emitted:\n%s", m)
	}
}

func TestGenerateTrivialStructHasNoMembers(t *testing.T) {
	m := generate(t, `
type Point struct { int x; int y; }
f<int> main() {
	Point a;
	Point b = a;
	return b.x;
}
`)
	for _, f := range m.Funcs {
		if strings.Contains(f.Name(), "Point") {
			t.Fatalf("no special member of Point has work to do, got @%s", f.Name())
		}
	}
	zeroed := false
	for _, b := range funcNamed(t, m, "main").Blocks {
		for _, inst := range b.Insts {
			st, ok := inst.(*ir.InstStore)
			if !ok {
				continue
			}
			if _, ok := st.Src.(*constant.ZeroInitializer); ok {
				_, isStruct := st.Src.Type().(*lltypes.StructType)
				zeroed = zeroed || isStruct
			}
		}
	}
	if !zeroed {
		t.Fatalf("default constructed Point should start zeroed")
	}
}

func TestGenerateDestroysBlockLocals(t *testing.T) {
	m := generate(t, `
type Buf struct { heap int* data; }
f<int> main() {
	int i = 0;
	while i < 3 {
		Buf b;
		if i == 1 { break; }
		i++;
	}
	return i;
}
`)
	main := funcNamed(t, m, "main")
	body := blockNamed(main, "while.body")
	then := blockNamed(main, "if.then")
	if body == nil || then == nil {
		t.Fatalf("missing loop blocks:\n%s", main.LLString())
	}
	if n := callsTo(then, "dtor"); n != 1 {
		t.Fatalf("break should destroy b once, got %d:\n%s", n, main.LLString())
	}
	end := blockNamed(main, "if.end")
	if end == nil || callsTo(end, "dtor") != 1 {
		t.Fatalf("end of the iteration should destroy b:\n%s", main.LLString())
	}
	if callsTo(blockNamed(main, "while.end"), "dtor") != 0 {
		t.Fatalf("b is out of scope after the loop:\n%s", main.LLString())
	}
	if definedFunc(m, "Buf", "dtor") == nil {
		t.Fatalf("destructor of Buf not emitted")
	}
}

func TestGenerateLogicalChainSinglePhi(t *testing.T) {
	m := generate(t, `
f<bool> every(bool a, bool b, bool c) { return a && b && c; }
f<int> main() {
	if every(true, false, true) { return 1; }
	return 0;
}
`)
	f := definedFunc(m, "every")
	if f == nil {
		t.Fatalf("every not emitted:\n%s", m)
	}
	var phis []*ir.InstPhi
	for _, b := range f.Blocks {
		for _, inst := range b.Insts {
			if phi, ok := inst.(*ir.InstPhi); ok {
				phis = append(phis, phi)
			}
		}
	}
	if len(phis) != 1 || len(phis[0].Incs) != 3 {
		t.Fatalf("expected one phi with three incoming values:\n%s", f.LLString())
	}
	if blockNamed(f, "land.end") == nil || blockNamed(f, "land.end.1") != nil {
		t.Fatalf("the chain should share one end block:\n%s", f.LLString())
	}
}

func TestGenerateThreadSinglePointerCapture(t *testing.T) {
	m := generate(t, `
f<int> main() {
	int done = 0;
	byte* t1 = thread { done = 1; };
	int joined = join(t1);
	return joined + done;
}
`)
	main := funcNamed(t, m, "main").LLString()
	if strings.Contains(main, "@malloc") {
		t.Fatalf("a single reference capture needs no record:\n%s", main)
	}
	if !strings.Contains(main, "bitcast i32* %done to i8*") {
		t.Fatalf("the captured slot should be passed directly:\n%s", main)
	}
	routine := definedFunc(m, ".thread")
	if routine == nil || !strings.Contains(routine.LLString(), "bitcast i8* %captures to i32*") {
		t.Fatalf("thread routine should use the capture argument as the slot:\n%s", m)
	}
}

func TestGenerateLiteralCopiedWhenAddressEscapes(t *testing.T) {
	m := generate(t, `
p fill(int* xs) {}
f<int> main() {
	fill([1, 2, 3]);
	return 0;
}
`)
	main := funcNamed(t, m, "main").LLString()
	if !strings.Contains(main, "%literal = alloca [3 x i32]") {
		t.Fatalf("escaping literal should be copied to the stack:\n%s", main)
	}
	if !strings.Contains(main, "getelementptr [3 x i32], [3 x i32]* %literal, i64 0, i64 0") {
		t.Fatalf("fill should receive a pointer into the copy:\n%s", main)
	}
	if !strings.Contains(main, "load [3 x i32], [3 x i32]* @const.") {
		t.Fatalf("the copy should read the constant global:\n%s", main)
	}
}

func TestExprResultAccessors(t *testing.T) {
	e := newEmitter(analyze(t, `f<int> main() { return 0; }`), layout.X86_64Linux())
	intT := e.reg.Primitive(types.TyInt)
	fe := e.newFuncEmitter(e.mod.NewFunc("scratch", lltypes.Void), 0, noLoc)

	k := i32(7)
	c := constResult(k, intT)
	if c.Constant() != k || c.Value(fe) != k {
		t.Fatalf("constant result should yield its constant")
	}
	if len(fe.cur.Insts) != 0 {
		t.Fatalf("a constant value needs no instructions")
	}
	if _, ok := c.Address(fe).(*ir.InstAlloca); !ok || len(fe.cur.Insts) != 1 {
		t.Fatalf("the address of a constant is a spilled stack slot")
	}

	ref := fe.alloca(lltypes.NewPointer(lltypes.I32), "ref")
	r := refResult(ref, intT, nil)
	if r.Constant() != nil || !r.lvalue() {
		t.Fatalf("a reference is a run time lvalue")
	}
	before := len(fe.cur.Insts)
	r.Address(fe)
	r.Value(fe)
	if got := len(fe.cur.Insts) - before; got != 2 {
		t.Fatalf("expected one load of the referee address and one of the value, got %d", got)
	}

	g := e.constGlobal(i32(3))
	l := literalResult(g.Init, g, intT)
	if fe.readAddress(l) != g {
		t.Fatalf("reads should use the literal global in place")
	}
	if l.Address(fe) == g || l.lvalue() {
		t.Fatalf("the writable address of a literal must be a copy")
	}
}

func TestVerifyNewFunctions(t *testing.T) {
	e := newEmitter(analyze(t, `f<int> main() { return 0; }`), layout.X86_64Linux())
	n := len(e.mod.Funcs)
	broken := e.mod.NewFunc("broken", lltypes.Void)
	broken.NewBlock("entry")
	err := e.verifyFrom(n)
	var ierr *diag.IRError
	if !errors.As(err, &ierr) || ierr.Kind() != diag.IRInvalidFunction || !strings.Contains(err.Error(), "@broken") {
		t.Fatalf("expected IRInvalidFunction for @broken, got %v", err)
	}
	if err := e.verifyFrom(len(e.mod.Funcs)); err != nil {
		t.Fatalf("no new functions: %v", err)
	}
}

func TestGenerateFallthroughDestroysCaseLocals(t *testing.T) {
	m := generate(t, `
type Buf struct { heap int* data; }
f<int> main() {
	int n = 0;
	switch n {
		case 0 { Buf b; fallthrough; }
		case 1 { n = 2; }
	}
	return n;
}
`)
	main := funcNamed(t, m, "main")
	first := blockNamed(main, "switch.case")
	if first == nil {
		t.Fatalf("no case block in\n%s", main.LLString())
	}
	br, ok := first.Term.(*ir.TermBr)
	if !ok || br.Target.(*ir.Block).Name() != "switch.case.1" {
		t.Fatalf("fallthrough should jump to the next case:\n%s", main.LLString())
	}
	if callsTo(first, "dtor") != 1 {
		t.Fatalf("fallthrough should destroy the locals of its case:\n%s", main.LLString())
	}
}
