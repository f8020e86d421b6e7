package sema

import (
	"maps"

	"spice/internal/symbols"
	"spice/internal/types"
)

// manifestFunction returns the manifestation of tmpl for the given receiver
// and bindings. A fresh one gets its own scope below the global scope of tbl
// and schedules another analyzer run.
func (tc *typeChecker) manifestFunction(tbl *symbols.Table, tmpl *symbols.Function, recv *symbols.Struct, bindings map[string]*types.Type) *symbols.Function {
	params := make([]symbols.Param, len(tmpl.Params))
	for i, p := range tmpl.Params {
		p.Type = symbols.Substitute(p.Type, bindings)
		params[i] = p
	}
	ret := symbols.Substitute(tmpl.Return, bindings)

	var own []*types.Type
	for _, g := range tmpl.Generics {
		if b, ok := bindings[g.SubType()]; ok {
			own = append(own, b)
		} else {
			own = append(own, g)
		}
	}
	m := &symbols.Function{
		Name:     tmpl.Name,
		Decl:     tmpl.Decl,
		Ext:      tmpl.Ext,
		Spec:     tmpl.Spec,
		IsProc:   tmpl.IsProc,
		Return:   ret,
		Params:   params,
		Variadic: tmpl.Variadic,
		Bindings: maps.Clone(bindings),
		Receiver: recv,
		Loc:      tmpl.Loc,
	}
	var recvType *types.Type
	if recv != nil {
		recvType = recv.Type
	}
	if tmpl.IsExtern() {
		m.Mangled = tmpl.Name
	} else {
		m.Mangled = symbols.MangleFunction(tmpl.IsProc, recvType, tmpl.Name, own, m.ParamTypes())
	}
	m, fresh := tmpl.AddManifestation(m)
	if !fresh {
		return m
	}
	if !m.IsExtern() && m.IsFullySubstantiated() {
		kind := symbols.ScopeFunction
		if m.IsProc {
			kind = symbols.ScopeProcedure
		}
		m.Scope = tbl.Global.EnsureChild(kind, symbols.FunctionKey(m.Mangled), m.Loc)
	}
	if recv != nil {
		recv.Methods = append(recv.Methods, m)
	}
	if tc.declared {
		tc.reAnalyze = true
	}
	return m
}

// markCalled flags a manifestation and its template as referenced.
func markCalled(fn *symbols.Function) {
	fn.Used = true
	if fn.Template != nil {
		fn.Template.Used = true
	}
	if fn.Receiver != nil {
		fn.Receiver.Used = true
		if fn.Receiver.Template != nil {
			fn.Receiver.Template.Used = true
		}
	}
}
