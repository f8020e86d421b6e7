package sema

import (
	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

// collectWarnings reports unused imports, structs, functions and local
// variables of the analyzed file.
func (tc *typeChecker) collectWarnings() {
	tbl := tc.table
	for _, imp := range tbl.ImportList() {
		if !imp.Entry.IsUsed() {
			tc.warn(diag.WarnUnusedImport, imp.Loc, "The import '%s' is unused", imp.Alias)
		}
	}
	for _, s := range tbl.StructTemplates() {
		if !s.Used && !s.Spec.Has(types.SpecPublic) {
			tc.warn(diag.WarnUnusedStruct, s.Loc, "The struct '%s' is unused", s.Name)
		}
	}
	for _, fn := range tbl.FunctionTemplates() {
		if fn.Used || fn.IsExtern() || fn.Spec.Has(types.SpecPublic) || fn.Name == "main" {
			continue
		}
		if fn.Decl != nil && fn.Decl.IsMethod() && isSpecialMember(fn.Name) {
			continue
		}
		if fn.IsProc {
			tc.warn(diag.WarnUnusedProcedure, fn.Loc, "The procedure '%s' is unused", fn.Decl.QualifiedName())
		} else {
			tc.warn(diag.WarnUnusedFunction, fn.Loc, "The function '%s' is unused", fn.Decl.QualifiedName())
		}
	}
	tc.unusedLocals(tbl.Global)
}

func isSpecialMember(name string) bool {
	return name == ast.CtorName || name == ast.DtorName || name == ast.CopyName
}

func (tc *typeChecker) unusedLocals(scope *symbols.Scope) {
	if scope.Kind != symbols.ScopeGlobal && scope.Kind != symbols.ScopeStruct && scope.Kind != symbols.ScopeEnum {
		for _, e := range scope.Entries() {
			if e.IsUsed() || !e.IsLocal() || e.Has(symbols.FlagParam|symbols.FlagThis|symbols.FlagResult) {
				continue
			}
			tc.warn(diag.WarnUnusedVariable, e.Loc, "The variable '%s' is unused", e.Name)
		}
	}
	for _, c := range scope.Children() {
		tc.unusedLocals(c)
	}
}
