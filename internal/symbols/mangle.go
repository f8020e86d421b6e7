package symbols

import (
	"strings"

	"spice/internal/types"
)

// MangleFunction builds the symbol name of a function manifestation:
// _f__[Recv__]name[_Bindings]__param_param. main and external functions
// keep their source names.
func MangleFunction(isProc bool, receiver *types.Type, name string, bindings, params []*types.Type) string {
	if name == "main" && receiver == nil {
		return name
	}
	var sb strings.Builder
	if isProc {
		sb.WriteString("_p__")
	} else {
		sb.WriteString("_f__")
	}
	if receiver != nil {
		sb.WriteString(receiver.Mangled())
		sb.WriteString("__")
	}
	sb.WriteString(name)
	for _, b := range bindings {
		sb.WriteByte('_')
		sb.WriteString(b.Mangled())
	}
	if len(params) > 0 {
		sb.WriteString("__")
		for i, p := range params {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteString(p.Mangled())
		}
	}
	return sb.String()
}

// MangleStruct names a struct manifestation, e.g. Pair__int_string__.
func MangleStruct(t *types.Type) string { return t.Mangled() }

// Substitute replaces every generic placeholder in t that has a binding.
// Unbound placeholders stay in place.
func Substitute(t *types.Type, bindings map[string]*types.Type) *types.Type {
	if t == nil || len(bindings) == 0 || !t.HasGenericParts() {
		return t
	}
	reg := t.Registry()
	chain := t.Chain()
	for i := range chain {
		el := &chain[i]
		if el.Super == types.TyGeneric {
			if bound, ok := bindings[el.SubType]; ok {
				// the binding may itself be a chain; splice it in as the base
				rest := chain[i+1:]
				merged := append(bound.Chain(), rest...)
				out, err := reg.GetOrInsert(merged)
				if err != nil {
					return t
				}
				return Substitute(out, bindings)
			}
			continue
		}
		el.Templates = substituteAll(el.Templates, bindings)
		el.Params = substituteAll(el.Params, bindings)
		if el.Return != nil {
			el.Return = Substitute(el.Return, bindings)
		}
	}
	out, err := reg.GetOrInsert(chain)
	if err != nil {
		return t
	}
	return out
}

func substituteAll(ts []*types.Type, bindings map[string]*types.Type) []*types.Type {
	if len(ts) == 0 {
		return ts
	}
	out := make([]*types.Type, len(ts))
	for i, t := range ts {
		out[i] = Substitute(t, bindings)
	}
	return out
}

// Unify matches a possibly generic parameter type against a concrete type and
// records the bindings it implies. It reports false on a structural mismatch
// or a conflicting binding.
func Unify(param, actual *types.Type, bindings map[string]*types.Type) bool {
	if !param.HasGenericParts() {
		return param == actual || param.Matches(actual, true)
	}
	pc, ac := param.Chain(), actual.Chain()
	// the generic base absorbs any extra inner elements of the actual type
	if pc[0].Super == types.TyGeneric {
		wrappers := len(pc) - 1
		if len(ac) <= wrappers {
			return false
		}
		split := len(ac) - wrappers
		for i := 0; i < wrappers; i++ {
			if !unifyElem(pc[1+i], ac[split+i], bindings) {
				return false
			}
		}
		inner, err := param.Registry().GetOrInsert(ac[:split])
		if err != nil {
			return false
		}
		name := pc[0].SubType
		if prev, ok := bindings[name]; ok {
			return prev == inner
		}
		bindings[name] = inner
		return true
	}
	if len(pc) != len(ac) {
		return false
	}
	for i := range pc {
		if !unifyElem(pc[i], ac[i], bindings) {
			return false
		}
	}
	return true
}

func unifyElem(p, a types.ChainElement, bindings map[string]*types.Type) bool {
	if p.Super != a.Super || p.SubType != a.SubType {
		return false
	}
	if p.Super == types.TyArray && p.ArraySize != a.ArraySize && p.ArraySize != types.ArraySizeUnknown {
		return false
	}
	if len(p.Templates) != len(a.Templates) || len(p.Params) != len(a.Params) {
		return false
	}
	for i := range p.Templates {
		if !Unify(p.Templates[i], a.Templates[i], bindings) {
			return false
		}
	}
	for i := range p.Params {
		if !Unify(p.Params[i], a.Params[i], bindings) {
			return false
		}
	}
	if (p.Return == nil) != (a.Return == nil) {
		return false
	}
	if p.Return != nil {
		return Unify(p.Return, a.Return, bindings)
	}
	return true
}
