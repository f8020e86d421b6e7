package parser

import (
	"errors"
	"testing"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/source"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, err := ParseSource(source.NewFileSet(), "test.spice", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return f
}

func parseErr(t *testing.T, src string) *diag.ParserError {
	t.Helper()
	_, err := ParseSource(source.NewFileSet(), "test.spice", src)
	if err == nil {
		t.Fatalf("expected a parse error for %q", src)
	}
	var perr *diag.ParserError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *diag.ParserError, got %T: %v", err, err)
	}
	return perr
}

func mainBody(t *testing.T, f *ast.File) []ast.Stmt {
	t.Helper()
	for _, fn := range f.Funcs() {
		if fn.Name == "main" {
			return fn.Body.Stmts
		}
	}
	t.Fatalf("no main function")
	return nil
}

func TestParseTopLevelDecls(t *testing.T) {
	f := parse(t, `
import "std/io" as io;
public const int LIMIT = 10;
type T dyn;
type N int|long;
type Pair<T> struct : Printable {
	T first;
	heap int* data;
	string name = "pair";
}
type Printable interface {
	p print();
	f<int> size(int);
}
type Color enum { RED, GREEN = 5, BLUE }
ext f<int> puts(char*, ...);
f<T> identity<T>(T value) { return value; }
f<int> Pair.getSize() { return 1; }
p Pair.ctor(int n = 3) {}
f<int> main() { return 0; }
`)
	if len(f.Decls) != 12 {
		t.Fatalf("expected 12 decls, got %d", len(f.Decls))
	}
	imp, ok := f.Decls[0].(*ast.ImportDecl)
	if !ok || imp.Path != "std/io" || imp.Alias != "io" {
		t.Fatalf("bad import %#v", f.Decls[0])
	}
	global := f.Decls[1].(*ast.GlobalVarDecl)
	if global.Name != "LIMIT" || global.Type.Base != ast.BaseInt || global.Value == nil {
		t.Fatalf("bad global %#v", global)
	}
	if !f.Decls[2].(*ast.GenericTypeDecl).IsAnyType() {
		t.Fatalf("type T dyn should have no conditions")
	}
	if n := len(f.Decls[3].(*ast.GenericTypeDecl).Conditions); n != 2 {
		t.Fatalf("expected 2 conditions, got %d", n)
	}
	st := f.Decls[4].(*ast.StructDecl)
	if st.Name != "Pair" || len(st.Templates) != 1 || len(st.Interfaces) != 1 || len(st.Fields) != 3 {
		t.Fatalf("bad struct %#v", st)
	}
	if st.Fields[2].Default == nil {
		t.Fatalf("field default missing")
	}
	iface := f.Decls[5].(*ast.InterfaceDecl)
	if len(iface.Methods) != 2 || !iface.Methods[0].IsProc || iface.Methods[1].Return == nil {
		t.Fatalf("bad interface %#v", iface)
	}
	enum := f.Decls[6].(*ast.EnumDecl)
	if len(enum.Items) != 3 || !enum.Items[1].HasValue || enum.Items[1].Value != 5 {
		t.Fatalf("bad enum %#v", enum)
	}
	ext := f.Decls[7].(*ast.ExtDecl)
	if !ext.Variadic || len(ext.Params) != 1 {
		t.Fatalf("bad ext %#v", ext)
	}
	generic := f.Decls[8].(*ast.FuncDecl)
	if !generic.IsGeneric() || generic.Return.Name() != "T" {
		t.Fatalf("bad generic function %#v", generic)
	}
	method := f.Decls[9].(*ast.FuncDecl)
	if method.Receiver != "Pair" || method.Name != "getSize" {
		t.Fatalf("bad method %s", method.QualifiedName())
	}
	ctor := f.Decls[10].(*ast.FuncDecl)
	if !ctor.IsProc || ctor.Name != ast.CtorName || ctor.RequiredParams() != 0 {
		t.Fatalf("bad ctor %#v", ctor)
	}
}

func TestParseStatements(t *testing.T) {
	f := parse(t, `
f<int> main() {
	int x = 5 + 3;
	int[3] arr = [1, 2, 3];
	Point pt = Point{1, 2};
	x += 2;
	if x > 3 { x = 1; } else if x < 0 { x = 2; } else { x = 3; }
	while x < 10 { x++; }
	do { x--; } while x > 0;
	for (int i = 0; i < 3; i = i + 1) { break; }
	for int j = 0; j < 3; j++ { continue; }
	foreach int idx, int item : arr { printf("%d", item); }
	switch x { case 1, 2 { fallthrough; } default { } }
	unsafe { x = 1; }
	assert x == 1;
	{ int inner; }
	return x;
}
`)
	stmts := mainBody(t, f)
	wantTypes := []string{
		"*ast.DeclStmt", "*ast.DeclStmt", "*ast.DeclStmt", "*ast.ExprStmt", "*ast.IfStmt",
		"*ast.WhileStmt", "*ast.DoWhileStmt", "*ast.ForStmt", "*ast.ForStmt", "*ast.ForeachStmt",
		"*ast.SwitchStmt", "*ast.UnsafeStmt", "*ast.AssertStmt", "*ast.Block", "*ast.ReturnStmt",
	}
	if len(stmts) != len(wantTypes) {
		t.Fatalf("expected %d statements, got %d", len(wantTypes), len(stmts))
	}
	for i, s := range stmts {
		if got := typeName(s); got != wantTypes[i] {
			t.Errorf("stmt %d: got %s, want %s", i, got, wantTypes[i])
		}
	}
	decl := stmts[0].(*ast.DeclStmt)
	if decl.Value.Kind != ast.ExprBinary || decl.Value.Op != ast.OpAdd {
		t.Fatalf("expected binary add, got %s", decl.Value.Kind)
	}
	if lit := stmts[2].(*ast.DeclStmt).Value; lit.Kind != ast.ExprStructLit || len(lit.Args) != 2 {
		t.Fatalf("expected struct literal")
	}
	ifs := stmts[4].(*ast.IfStmt)
	if _, ok := ifs.Else.(*ast.IfStmt); !ok {
		t.Fatalf("expected else-if chain")
	}
	forStmt := stmts[7].(*ast.ForStmt)
	if _, ok := forStmt.Init.(*ast.DeclStmt); !ok || forStmt.Cond == nil || forStmt.Step == nil {
		t.Fatalf("bad for header %#v", forStmt)
	}
	fe := stmts[9].(*ast.ForeachStmt)
	if fe.Index == nil || fe.Item.Name != "item" {
		t.Fatalf("bad foreach %#v", fe)
	}
	sw := stmts[10].(*ast.SwitchStmt)
	if len(sw.Cases) != 1 || len(sw.Cases[0].Values) != 2 || sw.Default == nil {
		t.Fatalf("bad switch %#v", sw)
	}
	if as := stmts[12].(*ast.AssertStmt); as.Text != "x == 1" {
		t.Fatalf("assert text %q", as.Text)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *ast.DeclStmt:
		return "*ast.DeclStmt"
	case *ast.ExprStmt:
		return "*ast.ExprStmt"
	case *ast.IfStmt:
		return "*ast.IfStmt"
	case *ast.WhileStmt:
		return "*ast.WhileStmt"
	case *ast.DoWhileStmt:
		return "*ast.DoWhileStmt"
	case *ast.ForStmt:
		return "*ast.ForStmt"
	case *ast.ForeachStmt:
		return "*ast.ForeachStmt"
	case *ast.SwitchStmt:
		return "*ast.SwitchStmt"
	case *ast.UnsafeStmt:
		return "*ast.UnsafeStmt"
	case *ast.AssertStmt:
		return "*ast.AssertStmt"
	case *ast.Block:
		return "*ast.Block"
	case *ast.ReturnStmt:
		return "*ast.ReturnStmt"
	default:
		return "?"
	}
}

func exprOf(t *testing.T, src string) *ast.Expr {
	t.Helper()
	f := parse(t, "f<int> main() { "+src+"; return 0; }")
	stmts := mainBody(t, f)
	es, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("%q did not parse as an expression statement", src)
	}
	return es.X
}

func TestParsePrecedence(t *testing.T) {
	e := exprOf(t, "a = b + c * d == e && k || g")
	if e.Kind != ast.ExprAssign {
		t.Fatalf("expected assignment at the root, got %s", e.Kind)
	}
	or := e.Y
	if or.Op != ast.OpLogicalOr {
		t.Fatalf("expected ||, got %s", or.Op)
	}
	and := or.X
	if and.Op != ast.OpLogicalAnd {
		t.Fatalf("expected &&, got %s", and.Op)
	}
	eq := and.X
	if eq.Op != ast.OpEq || eq.X.Op != ast.OpAdd || eq.X.Y.Op != ast.OpMul {
		t.Fatalf("bad precedence below ==")
	}
}

func TestParseLeftAssociative(t *testing.T) {
	e := exprOf(t, "a - b - c")
	if e.Op != ast.OpSub || e.X.Op != ast.OpSub || e.Y.Kind != ast.ExprIdent {
		t.Fatalf("subtraction must be left-associative")
	}
}

func TestParseGenericCallAndComparison(t *testing.T) {
	call := exprOf(t, "identity<int>(5)")
	if call.Kind != ast.ExprCall || len(call.Templates) != 1 || len(call.Args) != 1 {
		t.Fatalf("expected generic call, got %s", call.Kind)
	}
	cmp := exprOf(t, "a < b")
	if cmp.Kind != ast.ExprBinary || cmp.Op != ast.OpLess {
		t.Fatalf("expected comparison, got %s", cmp.Kind)
	}
}

func TestParseNestedTemplatesSplitShr(t *testing.T) {
	f := parse(t, "f<int> main() { Vec<Pair<int>> v; return 0; }")
	decl := mainBody(t, f)[0].(*ast.DeclStmt)
	if got := decl.Type.String(); got != "Vec<Pair<int>>" {
		t.Fatalf("unexpected type %q", got)
	}
}

func TestParseCastAndParens(t *testing.T) {
	cast := exprOf(t, "x = (long) 5")
	if cast.Y.Kind != ast.ExprCast || cast.Y.Type.Base != ast.BaseLong {
		t.Fatalf("expected cast, got %s", cast.Y.Kind)
	}
	sub := exprOf(t, "x = (a) - b")
	if sub.Y.Kind != ast.ExprBinary || sub.Y.Op != ast.OpSub {
		t.Fatalf("(a) - b must stay a subtraction, got %s", sub.Y.Kind)
	}
}

func TestParseMemberChainAndMethodCall(t *testing.T) {
	call := exprOf(t, "a.b.c()")
	if call.Kind != ast.ExprCall || call.X.Kind != ast.ExprMember || call.X.Name != "c" {
		t.Fatalf("expected member call")
	}
	if call.X.X.Kind != ast.ExprMember || call.X.X.Name != "b" || call.X.X.X.Name != "a" {
		t.Fatalf("bad member chain")
	}
}

func TestParseLiterals(t *testing.T) {
	cases := []struct {
		src  string
		kind ast.ExprKind
		val  int64
	}{
		{"x = 42", ast.ExprIntLit, 42},
		{"x = 7s", ast.ExprShortLit, 7},
		{"x = 9l", ast.ExprLongLit, 9},
		{"x = 0x1F", ast.ExprIntLit, 31},
		{"x = 0b101", ast.ExprIntLit, 5},
		{"x = '\\n'", ast.ExprCharLit, 10},
	}
	for _, tc := range cases {
		e := exprOf(t, tc.src).Y
		if e.Kind != tc.kind || e.Lit.Int != tc.val {
			t.Errorf("%s: got %s %d", tc.src, e.Kind, e.Lit.Int)
		}
	}
	s := exprOf(t, `x = "a\tb"`).Y
	if s.Lit.Str != "a\tb" {
		t.Fatalf("string not unescaped: %q", s.Lit.Str)
	}
}

func TestParseBuiltinsAndLambdas(t *testing.T) {
	f := parse(t, `
f<int> main() {
	int s = sizeof(int);
	int l = len(arr);
	f<int>(int) sq = f<int>(int v) { return v * v; };
	byte* t = thread { printf("hi"); };
	int j = join(t);
	int n = tid();
	long* q = nil<long*>;
	panic("boom");
	return 0;
}
`)
	stmts := mainBody(t, f)
	if k := stmts[0].(*ast.DeclStmt).Value.Kind; k != ast.ExprSizeof {
		t.Fatalf("sizeof: %s", k)
	}
	lambda := stmts[2].(*ast.DeclStmt)
	if lambda.Type.Base != ast.BaseFunction || lambda.Value.Kind != ast.ExprLambda {
		t.Fatalf("bad lambda declaration")
	}
	if k := stmts[3].(*ast.DeclStmt).Value.Kind; k != ast.ExprThread {
		t.Fatalf("thread: %s", k)
	}
	if k := stmts[6].(*ast.DeclStmt).Value.Kind; k != ast.ExprNil {
		t.Fatalf("nil: %s", k)
	}
}

func TestNoStructLiteralInCondition(t *testing.T) {
	f := parse(t, "f<int> main() { if ready { return 1; } return 0; }")
	ifs := mainBody(t, f)[0].(*ast.IfStmt)
	if ifs.Cond.Kind != ast.ExprIdent {
		t.Fatalf("condition parsed as %s", ifs.Cond.Kind)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
	}{
		{"f<int> main() { int x = 5 }", diag.SynExpectSemicolon},
		{"f<int> main() { int if = 5; }", diag.SynUnexpectedToken},
		{"while", diag.SynUnexpectedTopLevel},
		{"f<int> main() { int x = 99999999999; }", diag.SynBadLiteral},
	}
	for _, tc := range cases {
		perr := parseErr(t, tc.src)
		if perr.Code != tc.code {
			t.Errorf("%q: got %s, want %s (%v)", tc.src, perr.Code.ID(), tc.code.ID(), perr)
		}
	}
}

func TestParseErrorLocation(t *testing.T) {
	perr := parseErr(t, "f<int> main() {\n  return 0\n}")
	if perr.Where.Line != 3 || perr.Where.Col != 1 {
		t.Fatalf("unexpected location %s", perr.Where)
	}
}
