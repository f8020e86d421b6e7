package types

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry hash-conses type chains: structurally identical chains map to the
// same *Type. It is safe for concurrent use and must outlive its types.
type Registry struct {
	mu     sync.Mutex
	byHash map[uint64]*Type
	prims  map[SuperType]*Type
}

func NewRegistry() *Registry {
	r := &Registry{
		byHash: make(map[uint64]*Type, 128),
		prims:  make(map[SuperType]*Type, 12),
	}
	for _, s := range []SuperType{TyDouble, TyInt, TyShort, TyLong, TyByte, TyChar, TyString, TyBool, TyDyn, TyInvalid} {
		r.prims[s] = r.mustInsert([]ChainElement{{Super: s}})
	}
	return r
}

// GetOrInsert returns the canonical type for chain.
func (r *Registry) GetOrInsert(chain []ChainElement) (*Type, error) {
	if err := validateChain(chain); err != nil {
		return nil, err
	}
	key := encodeChain(chain)
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	sum := h.Sum64()

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byHash[sum]; ok {
		if existing.key != key {
			panic(fmt.Sprintf("types: hash collision between %q and %q", existing.key, key))
		}
		return existing, nil
	}
	owned := make([]ChainElement, len(chain))
	copy(owned, chain)
	t := &Type{chain: owned, key: key, hash: sum, reg: r}
	r.byHash[sum] = t
	return t, nil
}

func (r *Registry) mustInsert(chain []ChainElement) *Type {
	t, err := r.GetOrInsert(chain)
	if err != nil {
		panic(err)
	}
	return t
}

// Primitive returns the canonical type of a builtin scalar, dyn or invalid.
func (r *Registry) Primitive(s SuperType) *Type {
	if t, ok := r.prims[s]; ok {
		return t
	}
	return r.mustInsert([]ChainElement{{Super: s}})
}

// Named builds a struct, interface, enum, generic or import type.
func (r *Registry) Named(s SuperType, name string, templates []*Type) *Type {
	return r.mustInsert([]ChainElement{{Super: s, SubType: name, Templates: templates}})
}

// Struct builds a struct type that belongs to the file identified by origin.
func (r *Registry) Struct(name, origin string, templates []*Type) *Type {
	return r.mustInsert([]ChainElement{{Super: TyStruct, SubType: name, Origin: origin, Templates: templates}})
}

// Interface builds an interface type that belongs to the file identified by origin.
func (r *Registry) Interface(name, origin string, templates []*Type) *Type {
	return r.mustInsert([]ChainElement{{Super: TyInterface, SubType: name, Origin: origin, Templates: templates}})
}

// Enum builds an enum type.
func (r *Registry) Enum(name, origin string) *Type {
	return r.mustInsert([]ChainElement{{Super: TyEnum, SubType: name, Origin: origin}})
}

func (r *Registry) Generic(name string) *Type {
	return r.mustInsert([]ChainElement{{Super: TyGeneric, SubType: name}})
}

// Function builds the type of a function returning ret.
func (r *Registry) Function(ret *Type, params []*Type) *Type {
	return r.mustInsert([]ChainElement{{Super: TyFunction, Return: ret, Params: params}})
}

// Procedure builds the type of a procedure.
func (r *Registry) Procedure(params []*Type) *Type {
	return r.mustInsert([]ChainElement{{Super: TyProcedure, Params: params}})
}

// Len returns the number of canonical types.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHash)
}

// Dump lists the names of all registered types, sorted.
func (r *Registry) Dump() string {
	r.mu.Lock()
	names := make([]string, 0, len(r.byHash))
	for _, t := range r.byHash {
		names = append(names, t.Name())
	}
	r.mu.Unlock()
	sort.Strings(names)
	return strings.Join(names, "\n")
}

func isWrapper(s SuperType) bool {
	return s == TyPtr || s == TyRef || s == TyArray
}

func validateChain(chain []ChainElement) error {
	if len(chain) == 0 {
		return &TypeError{Kind: ErrMalformedChain, Message: "empty type chain"}
	}
	if isWrapper(chain[0].Super) {
		return &TypeError{Kind: ErrMalformedChain, Message: "type chain starts with a wrapper"}
	}
	for i := 1; i < len(chain); i++ {
		if !isWrapper(chain[i].Super) {
			return &TypeError{Kind: ErrMalformedChain, Message: "base type in the middle of a type chain"}
		}
		if chain[i-1].Super != TyDyn {
			continue
		}
		switch chain[i].Super {
		case TyPtr:
			return &TypeError{Kind: ErrDynPointer, Message: "Just use the dyn type without '*' instead"}
		case TyArray:
			return &TypeError{Kind: ErrDynArray, Message: "Just use the dyn type without '[]' instead"}
		default:
			return &TypeError{Kind: ErrDynReference, Message: "Just use the dyn type without '&' instead"}
		}
	}
	return nil
}

func encodeChain(chain []ChainElement) string {
	var sb strings.Builder
	for i := range chain {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(encodeElem(chain[i]))
	}
	return sb.String()
}

func encodeElem(el ChainElement) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(el.Super)))
	if el.SubType != "" {
		sb.WriteByte(':')
		sb.WriteString(el.SubType)
	}
	if el.Origin != "" {
		sb.WriteByte('@')
		sb.WriteString(el.Origin)
	}
	if el.Super == TyArray {
		sb.WriteByte('#')
		sb.WriteString(strconv.Itoa(el.ArraySize))
	}
	if el.HasCaptures {
		sb.WriteString("!c")
	}
	writeKeys := func(open, closing byte, list []*Type) {
		sb.WriteByte(open)
		for j, t := range list {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(t.key)
		}
		sb.WriteByte(closing)
	}
	if len(el.Templates) > 0 {
		writeKeys('<', '>', el.Templates)
	}
	if el.Super == TyFunction || el.Super == TyProcedure {
		writeKeys('(', ')', el.Params)
		if el.Return != nil {
			sb.WriteString("->")
			sb.WriteString(el.Return.key)
		}
	}
	return sb.String()
}
