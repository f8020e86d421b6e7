package sema

import (
	"context"
	"fmt"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/oprules"
	"spice/internal/source"
	"spice/internal/symbols"
	"spice/internal/types"
)

// DefaultMaxRuns bounds the fixed point when Options.MaxRuns is zero.
const DefaultMaxRuns = 10

// Options configure a semantic pass over a file.
type Options struct {
	// Registry is shared by every file of one compilation.
	Registry *types.Registry
	Reporter diag.Reporter
	// Imports maps the path written in an import declaration to the table
	// of the already analyzed file.
	Imports map[string]*symbols.Table
	MaxRuns int
	// Primary files must define main and publish their warnings.
	Primary bool
	Hints   symbols.Hints
}

// Result stores the semantic artefacts of one file. The annotations live on
// the AST slots; Result gives access to the tables behind them.
type Result struct {
	File  *ast.File
	Table *symbols.Table
	Types *types.Registry
	Main  *symbols.Function
	// Runs counts the analyzer runs including the declaration run.
	Runs int

	checker *typeChecker
}

// Analyze declares and checks file. The first violation aborts the pass and
// is returned as *diag.SemanticError.
func Analyze(ctx context.Context, file *ast.File, opts Options) (*Result, error) {
	if file == nil {
		return nil, diag.NewCompilerError(diag.CmpInternalError, "no file to analyze")
	}
	if opts.Registry == nil {
		opts.Registry = types.NewRegistry()
	}
	if opts.MaxRuns <= 0 {
		opts.MaxRuns = DefaultMaxRuns
	}
	tc := newTypeChecker(file, opts)
	res := &Result{
		File:    file,
		Table:   tc.table,
		Types:   tc.reg,
		checker: tc,
	}
	if err := tc.run(ctx); err != nil {
		tc.warnings.Discard()
		return nil, err
	}
	res.Runs = tc.runs
	res.Main = tc.main
	if opts.Primary {
		tc.warnings.Flush(opts.Reporter)
	} else {
		tc.warnings.Discard()
	}
	return res, nil
}

// Reanalyze runs the fixed point again. On a converged result it analyzes
// nothing and creates nothing.
func (r *Result) Reanalyze(ctx context.Context) error {
	before := r.checker.runs
	if err := r.checker.run(ctx); err != nil {
		return err
	}
	r.Runs = r.checker.runs - before
	r.checker.warnings.Discard()
	return nil
}

// Struct returns the struct manifestation behind a struct type, or nil.
func (r *Result) Struct(t *types.Type) *symbols.Struct { return r.checker.lookupStruct(t) }

// Interface returns the interface manifestation behind an interface type, or nil.
func (r *Result) Interface(t *types.Type) *symbols.Interface { return r.checker.lookupInterface(t) }

// Tables returns the own table followed by every transitively imported one.
func (r *Result) Tables() []*symbols.Table { return r.checker.tableOrder }

type typeChecker struct {
	file     *ast.File
	table    *symbols.Table
	reg      *types.Registry
	ops      *oprules.Manager
	opts     Options
	warnings diag.Pending

	tables     map[string]*symbols.Table
	tableOrder []*symbols.Table
	main       *symbols.Function

	declared        bool
	methodsDeclared bool
	reAnalyze       bool
	runs            int
}

func newTypeChecker(file *ast.File, opts Options) *typeChecker {
	tc := &typeChecker{
		file:   file,
		table:  symbols.NewTable(opts.Hints, file.ID, file.Path),
		reg:    opts.Registry,
		ops:    oprules.NewManager(opts.Registry),
		opts:   opts,
		tables: make(map[string]*symbols.Table),
	}
	tc.ops.Implements = tc.implements
	tc.addTable(tc.table)
	return tc
}

func (tc *typeChecker) addTable(t *symbols.Table) {
	if _, ok := tc.tables[t.Path]; ok {
		return
	}
	tc.tables[t.Path] = t
	tc.tableOrder = append(tc.tableOrder, t)
	for _, imp := range t.ImportList() {
		if imp.Table != nil {
			tc.addTable(imp.Table)
		}
	}
}

// run executes the declaration run once and then the fixed point.
func (tc *typeChecker) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case *diag.SemanticError:
				err = e
			case *diag.CompilerError:
				err = e
			default:
				panic(r)
			}
		}
	}()

	if !tc.declared {
		tc.declareFile()
		tc.declared = true
		tc.runs++
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tc.reAnalyze = false
		progressed := tc.analyzePending()
		if !progressed && !tc.reAnalyze {
			break
		}
		tc.runs++
		if tc.runs > tc.opts.MaxRuns {
			return diag.NewCompilerError(diag.CmpTypeCheckerRunsExceeded,
				fmt.Sprintf("Number of type checker runs for %s exceeds %d", tc.file.Path, tc.opts.MaxRuns))
		}
		if !tc.reAnalyze {
			break
		}
	}
	tc.finish()
	return nil
}

// analyzePending checks every struct and function manifestation that was not
// analyzed yet, in declaration order. New manifestations created on the way
// set reAnalyze and are picked up by the next run.
func (tc *typeChecker) analyzePending() bool {
	progressed := false
	for _, tbl := range tc.tableOrder {
		for _, s := range tbl.StructManifestations() {
			if s.Analyzed || s.Type.HasGenericParts() {
				continue
			}
			tc.checkStruct(s)
			progressed = true
		}
		for _, fn := range tbl.FunctionManifestations() {
			if fn.Analyzed || fn.IsExtern() || fn.Implicit || !fn.IsFullySubstantiated() {
				continue
			}
			tc.checkFunction(fn)
			progressed = true
		}
	}
	return progressed
}

func (tc *typeChecker) finish() {
	if tc.opts.Primary && tc.main == nil {
		tc.failf(source.CodeLoc{Path: tc.file.Path, Line: 1, Col: 1}, diag.SemMissingMainFunction, "No main function found")
	}
	tc.collectWarnings()
}

// failf aborts the pass with a semantic error.
func (tc *typeChecker) failf(loc source.CodeLoc, code diag.Code, format string, args ...any) {
	panic(diag.NewSemanticError(loc, code, fmt.Sprintf(format, args...)))
}

// check aborts the pass when a rule lookup failed.
func (tc *typeChecker) check(t *types.Type, err error) *types.Type {
	if err != nil {
		panic(err)
	}
	return t
}

func (tc *typeChecker) warn(code diag.Code, loc source.CodeLoc, format string, args ...any) {
	diag.Warn(&tc.warnings, code, loc, fmt.Sprintf(format, args...))
}

func (tc *typeChecker) prim(s types.SuperType) *types.Type { return tc.reg.Primitive(s) }
