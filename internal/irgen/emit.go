// Package irgen lowers an analyzed Spice file to an LLVM IR module.
//
// The generator walks the annotated AST once per function manifestation and
// reads everything it needs from the analyzer: the slot of every node for the
// manifestation index, the scope tree for locals and the symbol table for
// callees. It never changes analyzer state apart from Entry.Address of the
// file's own locals and globals.
package irgen

import (
	"context"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/layout"
	"spice/internal/sema"
	"spice/internal/source"
	"spice/internal/symbols"
	"spice/internal/types"
)

// Options configure code generation for one file.
type Options struct {
	// Target selects data layout and syscall convention. The zero value
	// means x86_64 Linux.
	Target layout.Target
}

var noLoc source.CodeLoc

type vtableKey struct {
	strct *types.Type
	iface *types.Type
}

// Emitter holds the module-wide state of one Generate call.
type Emitter struct {
	res    *sema.Result
	file   *ast.File
	tbl    *symbols.Table
	reg    *types.Registry
	target layout.Target
	layout *layout.Engine
	mod    *ir.Module

	funcs         map[*symbols.Function]*ir.Func
	globals       map[*symbols.Entry]*ir.Global
	structs       map[*types.Type]*lltypes.StructType
	vtables       map[*types.Type]*lltypes.StructType
	vtableGlobals map[vtableKey]*ir.Global
	typeInfos     map[*types.Type]*ir.Global
	strs          map[string]*ir.Global
	runtime       map[string]value.Value
	thunks        map[*symbols.Function]*ir.Func
	typeNames     map[string]int
	fatType       *lltypes.StructType

	// deferred runs after every body is emitted, when all callees exist.
	deferred []func()
	// pending are implicit members declared since the last emission.
	pending []*symbols.Function
	consts  int
}

// Generate builds the IR module of res. Internal inconsistencies come back
// as *diag.IRError.
func Generate(ctx context.Context, res *sema.Result, opts Options) (mod *ir.Module, err error) {
	if res == nil || res.File == nil {
		return nil, diag.NewCompilerError(diag.CmpInternalError, "no analyzed file to generate")
	}
	target := opts.Target
	if target.Arch == 0 {
		target = layout.X86_64Linux()
	}
	e := newEmitter(res, target)

	defer func() {
		if r := recover(); r != nil {
			ierr, ok := r.(*diag.IRError)
			if !ok {
				panic(r)
			}
			mod, err = nil, ierr
		}
	}()

	e.declareGlobals()
	// externs first, so runtime helpers of the same name reuse them
	for _, fn := range e.tbl.FunctionManifestations() {
		if fn.IsExtern() {
			e.funcFor(fn)
		}
	}
	set := e.emitSet()
	for _, fn := range set {
		e.funcFor(fn)
	}
	done := make(map[*symbols.Function]bool, len(set))
	for _, fn := range set {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		done[fn] = true
		if err := e.emitChecked(fn); err != nil {
			return nil, err
		}
	}
	// implicit members called from the bodies above, and from each other
	for len(e.pending) > 0 {
		fn := e.pending[0]
		e.pending = e.pending[1:]
		if done[fn] {
			continue
		}
		done[fn] = true
		if err := e.emitChecked(fn); err != nil {
			return nil, err
		}
	}
	for _, fn := range e.deferred {
		fn()
	}
	if err := Verify(e.mod); err != nil {
		return nil, err
	}
	return e.mod, nil
}

func newEmitter(res *sema.Result, target layout.Target) *Emitter {
	e := &Emitter{
		res:           res,
		file:          res.File,
		tbl:           res.Table,
		reg:           res.Types,
		target:        target,
		mod:           ir.NewModule(),
		funcs:         make(map[*symbols.Function]*ir.Func),
		globals:       make(map[*symbols.Entry]*ir.Global),
		structs:       make(map[*types.Type]*lltypes.StructType),
		vtables:       make(map[*types.Type]*lltypes.StructType),
		vtableGlobals: make(map[vtableKey]*ir.Global),
		typeInfos:     make(map[*types.Type]*ir.Global),
		strs:          make(map[string]*ir.Global),
		runtime:       make(map[string]value.Value),
		thunks:        make(map[*symbols.Function]*ir.Func),
		typeNames:     make(map[string]int),
	}
	e.layout = layout.New(target, e)
	e.mod.SourceFilename = res.File.Path
	e.mod.TargetTriple = target.Triple
	e.mod.DataLayout = target.DataLayout
	e.fatType = lltypes.NewStruct(lltypes.I8Ptr, lltypes.I8Ptr)
	e.mod.NewTypeDef(e.typeName("fat"), e.fatType)
	return e
}

// emitChecked emits fn and verifies it together with the lambdas, thread
// routines and thunks created for its body.
func (e *Emitter) emitChecked(fn *symbols.Function) error {
	n := len(e.mod.Funcs)
	e.emitFunction(fn)
	if err := verifyFunc(e.funcFor(fn)); err != nil {
		return err
	}
	return e.verifyFrom(n)
}

// verifyFrom checks the functions added to the module since it held n.
func (e *Emitter) verifyFrom(n int) error {
	for _, f := range e.mod.Funcs[n:] {
		if err := verifyFunc(f); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) fail(loc source.CodeLoc, code diag.Code, format string, args ...any) {
	panic(diag.NewIRError(loc, code, fmt.Sprintf(format, args...)))
}

// emitSet lists the manifestations this file defines: every fully
// substantiated function that is reachable or exported, every method of a
// used struct and the synthesized special members importers may call.
// Other synthesized members are emitted once something calls them.
func (e *Emitter) emitSet() []*symbols.Function {
	var out []*symbols.Function
	seen := make(map[*symbols.Function]bool)
	add := func(fn *symbols.Function) {
		if !seen[fn] {
			seen[fn] = true
			out = append(out, fn)
		}
	}
	for _, fn := range e.tbl.FunctionManifestations() {
		if fn.IsExtern() || !fn.Analyzed || !fn.IsFullySubstantiated() {
			continue
		}
		if fn.ShouldEmit() || fn.Receiver != nil && fn.Receiver.Used {
			add(fn)
		}
	}
	for _, sm := range e.tbl.StructManifestations() {
		if !sm.Used || sm.Type.HasGenericParts() {
			continue
		}
		for _, m := range sm.Methods {
			if m.Implicit && e.exported(m) && e.needsMember(sm, m.Name) {
				add(m)
			}
		}
	}
	return out
}

// isOwn reports whether fn is defined by this module.
func (e *Emitter) isOwn(fn *symbols.Function) bool {
	if fn.IsExtern() {
		return false
	}
	if fn.Receiver != nil {
		return fn.Receiver.Scope.Table == e.tbl
	}
	return fn.Scope != nil && fn.Scope.Table == e.tbl
}

// funcFor declares the IR function of a manifestation on first use. Externs
// and functions of other files become declarations.
func (e *Emitter) funcFor(fn *symbols.Function) *ir.Func {
	if f, ok := e.funcs[fn]; ok {
		return f
	}
	var f *ir.Func
	if fn.IsExtern() {
		params := make([]*ir.Param, 0, len(fn.Params))
		for _, p := range fn.Params {
			params = append(params, ir.NewParam("", e.llType(p.Type)))
		}
		f = e.mod.NewFunc(fn.Mangled, e.returnType(fn.IsProc, fn.Return), params...)
		f.Sig.Variadic = fn.Variadic
	} else {
		ret, params := e.signature(fn)
		if fn.Name == "main" && fn.Receiver == nil {
			ret = lltypes.I32
		}
		f = e.mod.NewFunc(fn.Mangled, ret, params...)
		if e.isOwn(fn) && !e.exported(fn) {
			f.Linkage = enum.LinkageInternal
		}
		if fn.Implicit && e.isOwn(fn) {
			e.pending = append(e.pending, fn)
		}
	}
	e.funcs[fn] = f
	return f
}

// exported reports whether other modules may reference fn.
func (e *Emitter) exported(fn *symbols.Function) bool {
	if fn.Name == "main" && fn.Receiver == nil {
		return true
	}
	if fn.Spec.Has(types.SpecPublic) {
		return true
	}
	// importers construct, copy and dispatch to public structs directly
	return fn.Receiver != nil && fn.Receiver.Spec.Has(types.SpecPublic)
}

// uniqueName derives a module-unique symbol name for helper functions and
// anonymous constants.
func (e *Emitter) uniqueName(base string) string {
	e.consts++
	return fmt.Sprintf("%s.%d", base, e.consts)
}
