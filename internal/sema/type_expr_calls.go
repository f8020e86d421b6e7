package sema

import (
	"maps"
	"strings"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/symbols"
	"spice/internal/types"
)

// candidate is one template that accepts the arguments of a call.
type candidate struct {
	tmpl     *symbols.Function
	bindings map[string]*types.Type
	exact    bool
}

// callSite bundles what the overload resolution needs to know about a call.
type callSite struct {
	e         *ast.Expr
	table     *symbols.Table
	templates []*symbols.Function
	recv      *symbols.Struct
	explicit  []*types.Type
	this      *ast.Expr
	thisIsPtr bool
}

func (tc *typeChecker) checkCall(bc *bodyContext, scope *symbols.Scope, e *ast.Expr) *types.Type {
	explicit := tc.resolveTypes(e.Templates, bc.table, bc.bindings)
	x := e.X
	switch x.Kind {
	case ast.ExprIdent:
		if entry := scope.Lookup(x.Name); entry != nil && !entry.Has(symbols.FlagImport|symbols.FlagStruct) {
			return tc.callValue(bc, scope, e, tc.checkExpr(bc, scope, x, nil))
		}
		return tc.callFunction(bc, scope, callSite{e: e, table: bc.table, templates: bc.table.Funcs[x.Name], explicit: explicit})
	case ast.ExprMember:
		parent := tc.resolvePath(bc, scope, x.X)
		switch parent.kind {
		case pathImport:
			var public []*symbols.Function
			for _, fn := range parent.table.Funcs[x.Name] {
				if fn.Spec.Has(types.SpecPublic) {
					public = append(public, fn)
				}
			}
			if len(public) == 0 && len(parent.table.Funcs[x.Name]) > 0 {
				tc.failf(x.Loc, diag.SemInsufficientVisibility, "Cannot access function '%s' due to its private visibility", x.Name)
			}
			return tc.callFunction(bc, scope, callSite{e: e, table: parent.table, templates: public, explicit: explicit})
		case pathEnum:
			tc.failf(x.Loc, diag.SemMemberAccessOnlyStructs, "Enum items cannot be called")
		}
		return tc.callMember(bc, scope, e, parent.t, explicit)
	}
	return tc.callValue(bc, scope, e, tc.checkExpr(bc, scope, x, nil))
}

// callMember dispatches `recv.name(...)` to a method, an interface slot or a
// field of function type.
func (tc *typeChecker) callMember(bc *bodyContext, scope *symbols.Scope, e *ast.Expr, recvT *types.Type, explicit []*types.Type) *types.Type {
	x := e.X
	t := recvT.RemoveReference()
	isPtr := false
	if t.IsPtr() {
		t = t.Contained()
		isPtr = true
	}
	switch {
	case t.Is(types.TyStruct):
		sm := tc.lookupStruct(t)
		if sm == nil {
			tc.failf(x.Loc, diag.SemReferencedUndefinedStruct, "Struct '%s' was used before declared", t.Name())
		}
		if f := sm.Field(x.Name); f != nil && f.Type.Type.IsOneOf(types.TyFunction, types.TyProcedure) {
			ft := tc.memberOn(bc, x, recvT)
			return tc.callValue(bc, scope, e, ft)
		}
		tbl := sm.Scope.Table
		return tc.callFunction(bc, scope, callSite{
			e:         e,
			table:     tbl,
			templates: tbl.Funcs[sm.Name+"."+x.Name],
			recv:      sm,
			explicit:  explicit,
			this:      x.X,
			thisIsPtr: isPtr,
		})
	case t.Is(types.TyInterface) && isPtr:
		iface := tc.lookupInterface(t)
		if iface == nil {
			tc.failf(x.Loc, diag.SemReferencedUndefinedStruct, "Interface '%s' was used before declared", t.Name())
		}
		mi := iface.MethodIndex(x.Name)
		if mi < 0 {
			tc.failf(x.Loc, diag.SemReferencedUndefinedFunction, "Interface '%s' has no method '%s'", t.Name(), x.Name)
		}
		m := iface.Methods[mi]
		args := tc.checkArgs(bc, scope, e.Args, m.Params)
		if len(args) != len(m.Params) {
			tc.failf(e.Loc, diag.SemReferencedUndefinedFunction, "Method '%s' expects %d arguments, got %d", x.Name, len(m.Params), len(args))
		}
		for i, at := range args {
			if !tc.compatible(m.Params[i], at) {
				tc.failf(e.Args[i].Loc, diag.SemReferencedUndefinedFunction, "Argument %d of '%s' expects %s, got %s", i+1, x.Name, m.Params[i].Name(), at.Name())
			}
		}
		iface.Used = true
		e.SetRef(bc.manIdx, &Call{Kind: CallInterface, Iface: iface, Method: mi, This: x.X, ThisIsPtr: true})
		if m.IsProc {
			return tc.prim(types.TyDyn)
		}
		return m.Return
	}
	tc.failf(x.Loc, diag.SemMemberAccessOnlyStructs, "Cannot call a method on a value of type %s", recvT.Name())
	return nil
}

// checkArgs visits every argument exactly once. Parameter types serve as
// hints where they are known.
func (tc *typeChecker) checkArgs(bc *bodyContext, scope *symbols.Scope, args []*ast.Expr, hints []*types.Type) []*types.Type {
	out := make([]*types.Type, len(args))
	for i, a := range args {
		var hint *types.Type
		if i < len(hints) && !hints[i].HasGenericParts() {
			hint = hints[i]
		}
		out[i] = tc.checkExpr(bc, scope, a, hint)
	}
	return out
}

// callFunction resolves the overload, substantiates it if it is generic and
// records the call on the node.
func (tc *typeChecker) callFunction(bc *bodyContext, scope *symbols.Scope, cs callSite) *types.Type {
	e := cs.e
	var hints []*types.Type
	if len(cs.templates) == 1 {
		hints = cs.templates[0].ParamTypes()
	}
	args := tc.checkArgs(bc, scope, e.Args, hints)

	var cands []candidate
	for _, tmpl := range cs.templates {
		if c, ok := tc.matchCall(cs, tmpl, args); ok {
			cands = append(cands, c)
		}
	}
	var picked *candidate
	var exact []candidate
	for _, c := range cands {
		if c.exact {
			exact = append(exact, c)
		}
	}
	switch {
	case len(exact) == 1:
		picked = &exact[0]
	case len(exact) == 0 && len(cands) == 1:
		picked = &cands[0]
	case len(cands) > 1:
		tc.failf(e.Loc, diag.SemFunctionAmbiguity, "More than one function matches your requested signature criteria: %s", callSignature(cs, args))
	default:
		tc.failf(e.Loc, diag.SemReferencedUndefinedFunction, "Function/procedure '%s' could not be found", callSignature(cs, args))
	}

	fn := tc.manifestFunction(cs.table, picked.tmpl, cs.recv, picked.bindings)
	markCalled(fn)
	kind := CallFunction
	if cs.recv != nil {
		kind = CallMethod
	}
	call := &Call{Kind: kind, Func: fn, This: cs.this, ThisIsPtr: cs.thisIsPtr, DefaultsIdx: fn.ManIdx}
	for _, p := range fn.Params[min(len(args), len(fn.Params)):] {
		call.Defaults = append(call.Defaults, p.Default)
	}
	e.SetRef(bc.manIdx, call)
	if fn.IsProc {
		return tc.prim(types.TyDyn)
	}
	return fn.Return
}

// matchCall checks the arguments against one template and infers the
// bindings of its generic parameters.
func (tc *typeChecker) matchCall(cs callSite, tmpl *symbols.Function, args []*types.Type) (candidate, bool) {
	if len(args) < tmpl.RequiredParams() || len(args) > len(tmpl.Params) && !tmpl.Variadic {
		return candidate{}, false
	}
	bindings := make(map[string]*types.Type)
	if cs.recv != nil {
		maps.Copy(bindings, cs.recv.Bindings)
	}
	if len(cs.explicit) > 0 {
		if len(cs.explicit) != len(tmpl.Generics) {
			return candidate{}, false
		}
		for i, g := range tmpl.Generics {
			bindings[g.SubType()] = cs.explicit[i]
		}
	}
	exact := true
	for i, at := range args {
		if i >= len(tmpl.Params) {
			exact = false
			continue
		}
		pt := symbols.Substitute(tmpl.Params[i].Type, bindings)
		if pt.HasGenericParts() {
			if !symbols.Unify(pt, at.RemoveReference(), bindings) {
				return candidate{}, false
			}
			continue
		}
		if pt != at {
			exact = false
			if !tc.compatible(pt, at) {
				return candidate{}, false
			}
		}
	}
	for _, g := range tmpl.Generics {
		b, ok := bindings[g.SubType()]
		if !ok {
			return candidate{}, false
		}
		if gt, ok := cs.table.Generics[g.SubType()]; ok && !gt.Accepts(b) {
			return candidate{}, false
		}
	}
	return candidate{tmpl: tmpl, bindings: bindings, exact: exact}, true
}

func callSignature(cs callSite, args []*types.Type) string {
	var sb strings.Builder
	if cs.recv != nil {
		sb.WriteString(cs.recv.Type.Name() + ".")
	}
	switch cs.e.X.Kind {
	case ast.ExprIdent, ast.ExprMember:
		sb.WriteString(cs.e.X.Name)
	}
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.Name())
	}
	sb.WriteByte(')')
	return sb.String()
}

// callValue invokes a lambda, function pointer or function-typed field.
func (tc *typeChecker) callValue(bc *bodyContext, scope *symbols.Scope, e *ast.Expr, ft *types.Type) *types.Type {
	ft = ft.RemoveReference()
	if !ft.IsOneOf(types.TyFunction, types.TyProcedure) {
		tc.failf(e.Loc, diag.SemOperatorWrongDataType, "Cannot call a value of type %s", ft.Name())
	}
	params := ft.Params()
	args := tc.checkArgs(bc, scope, e.Args, params)
	if len(args) != len(params) {
		tc.failf(e.Loc, diag.SemReferencedUndefinedFunction, "Function value of type %s expects %d arguments, got %d", ft.Name(), len(params), len(args))
	}
	for i, at := range args {
		if !tc.compatible(params[i], at) {
			tc.failf(e.Args[i].Loc, diag.SemReferencedUndefinedFunction, "Argument %d expects %s, got %s", i+1, params[i].Name(), at.Name())
		}
	}
	e.SetRef(bc.manIdx, &Call{Kind: CallValue})
	if ft.Is(types.TyProcedure) {
		return tc.prim(types.TyDyn)
	}
	return ft.Return()
}
