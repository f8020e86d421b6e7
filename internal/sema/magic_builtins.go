package sema

import (
	"strings"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

// checkSizeof accepts a written type or an expression. A bare name that is
// no variable is taken as a type; its slot type then holds that type and its
// ref stays empty.
func (tc *typeChecker) checkSizeof(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	var t *types.Type
	switch {
	case e.Type != nil:
		t = tc.resolveType(e.Type, bc.table, bc.bindings)
		e.Type.SetType(bc.manIdx, t)
	case e.X.Kind == ast.ExprIdent && tc.namesType(scope, e.X.Name):
		dt := &ast.DataType{Span: e.X.Span, Loc: e.X.Loc, Base: ast.BaseNamed, Path: []string{e.X.Name}}
		t = tc.resolveType(dt, bc.table, bc.bindings)
		e.X.SetType(bc.manIdx, t)
		tc.markUsed(t)
	default:
		t = tc.checkExpr(bc, scope, e.X, nil).RemoveReference()
	}
	if t.Is(types.TyDyn) {
		tc.failf(e.Loc, diag.SemUnexpectedDynType, "Cannot get the size of type dyn")
	}
	if t.IsArray() && t.ArraySize() == types.ArraySizeUnknown {
		tc.failf(e.Loc, diag.SemSizeofDynamicSizedArray, "Cannot get sizeof dynamically sized array at compile time")
	}
	return tc.prim(types.TyInt)
}

func (tc *typeChecker) namesType(scope *symbols.Scope, name string) bool {
	if entry := scope.Lookup(name); entry != nil {
		return entry.Has(symbols.FlagStruct)
	}
	return true
}

// checkLen returns the element count of an array or the length of a string.
func (tc *typeChecker) checkLen(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	t := tc.checkExpr(bc, scope, e.X, nil).RemoveReference()
	switch {
	case t.IsArray():
		if t.ArraySize() == types.ArraySizeUnknown {
			tc.failf(e.X.Loc, diag.SemSizeofDynamicSizedArray, "Cannot get the length of a dynamically sized array")
		}
		e.SetConst(bc.manIdx, &ast.Const{Kind: ast.ConstInt, Int: int64(t.ArraySize())})
	case t.Is(types.TyString), t.IsPtrOf(types.TyChar):
		if c := e.X.ConstAt(bc.manIdx); c != nil && c.Kind == ast.ConstString {
			e.SetConst(bc.manIdx, &ast.Const{Kind: ast.ConstInt, Int: int64(len(c.Str))})
		}
	default:
		tc.failf(e.X.Loc, diag.SemExpectedArrayType, "len() expects an array or a string, got %s", t.Name())
	}
	return tc.prim(types.TyInt)
}

// printfLengthModifiers are skipped between '%' and the conversion.
const printfLengthModifiers = "hlLqjzt"

// checkPrintf matches the placeholders of the template string against the
// argument types.
func (tc *typeChecker) checkPrintf(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	if len(e.Args) == 0 || e.Args[0].Kind != ast.ExprStringLit {
		tc.failf(e.Loc, diag.SemPrintfArgCountError, "printf expects a string literal as template")
	}
	tc.checkExpr(bc, scope, e.Args[0], nil)
	args := e.Args[1:]
	argTypes := make([]*types.Type, len(args))
	for i, a := range args {
		argTypes[i] = tc.checkExpr(bc, scope, a, nil).RemoveReference()
	}

	tmpl := e.Args[0].Lit.Str
	next := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		i++
		// flags, width and precision
		for i < len(tmpl) && strings.IndexByte("-+ #0123456789.*", tmpl[i]) >= 0 {
			i++
		}
		for i < len(tmpl) && strings.IndexByte(printfLengthModifiers, tmpl[i]) >= 0 {
			i++
		}
		if i >= len(tmpl) {
			break
		}
		conv := tmpl[i]
		if conv == '%' {
			continue
		}
		if next >= len(argTypes) {
			tc.failf(e.Loc, diag.SemPrintfArgCountError, "The placeholder string contains more placeholders than arguments were passed")
		}
		at := argTypes[next]
		if want, ok := tc.printfAccepts(conv, at); !ok {
			tc.failf(args[next].Loc, diag.SemPrintfTypeError, "Template string expects %s, but got %s", want, at.Name())
		}
		next++
	}
	if next < len(argTypes) {
		tc.failf(e.Loc, diag.SemPrintfArgCountError, "The placeholder string contains less placeholders than arguments were passed")
	}
	return tc.prim(types.TyInt)
}

// printfAccepts reports whether t fits conversion conv and, if not, names
// what was expected.
func (tc *typeChecker) printfAccepts(conv byte, t *types.Type) (string, bool) {
	switch conv {
	case 'c':
		return "char", t.Is(types.TyChar)
	case 'd', 'i', 'o', 'u', 'x', 'X':
		return "int, short, long, byte or bool", t.IsOneOf(types.TyInt, types.TyShort, types.TyLong, types.TyByte, types.TyBool)
	case 'a', 'A', 'f', 'F', 'e', 'E', 'g', 'G':
		return "double", t.Is(types.TyDouble)
	case 's':
		return "string", t.Is(types.TyString) || t.IsPtrOf(types.TyChar) || t.IsArrayOf(types.TyChar)
	case 'p':
		return "pointer", t.IsPtr() || t.IsArray()
	}
	return "a valid placeholder", false
}

// checkPanic accepts one string message. The call never returns.
func (tc *typeChecker) checkPanic(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	if len(e.Args) != 1 {
		tc.failf(e.Loc, diag.SemOperatorWrongDataType, "panic expects exactly one message argument")
	}
	if t := tc.checkExpr(bc, scope, e.Args[0], nil).RemoveReference(); !t.Is(types.TyString) && !t.IsPtrOf(types.TyChar) {
		tc.failf(e.Args[0].Loc, diag.SemOperatorWrongDataType, "panic expects a string message, got %s", t.Name())
	}
	return tc.prim(types.TyDyn)
}

// maxSyscallArgs is the syscall number plus six register arguments.
const maxSyscallArgs = 7

// checkSyscall requires an unsafe context, an integer syscall number and
// integer or pointer arguments.
func (tc *typeChecker) checkSyscall(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	if !scope.InUnsafe() {
		tc.failf(e.Loc, diag.SemUnsafeOperationInSafeCtx, "syscall is only allowed inside unsafe blocks")
	}
	if len(e.Args) == 0 || len(e.Args) > maxSyscallArgs {
		tc.failf(e.Loc, diag.SemOperatorWrongDataType, "syscall expects between 1 and %d arguments, got %d", maxSyscallArgs, len(e.Args))
	}
	for i, a := range e.Args {
		t := tc.checkExpr(bc, scope, a, nil).RemoveReference()
		if i == 0 && !t.IsInteger() {
			tc.failf(a.Loc, diag.SemOperatorWrongDataType, "The syscall number must be an integer, got %s", t.Name())
		}
		if !t.IsInteger() && !t.IsPtr() && !t.IsArray() && !t.Is(types.TyString) && !t.Is(types.TyBool) {
			tc.failf(a.Loc, diag.SemOperatorWrongDataType, "Cannot pass a value of type %s to syscall", t.Name())
		}
	}
	return tc.prim(types.TyLong)
}

// checkJoin waits for the given thread ids and returns how many were joined.
func (tc *typeChecker) checkJoin(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	if len(e.Args) == 0 {
		tc.failf(e.Loc, diag.SemJoinArgMustBeTid, "join expects at least one thread id")
	}
	tidT := tc.prim(types.TyByte).MustPointer()
	for _, a := range e.Args {
		t := tc.checkExpr(bc, scope, a, nil).RemoveReference()
		if t != tidT && !(t.IsArray() && t.Contained() == tidT) {
			tc.failf(a.Loc, diag.SemJoinArgMustBeTid, "You can only pass a tid or an array of tids to join, got %s", t.Name())
		}
	}
	return tc.prim(types.TyInt)
}
