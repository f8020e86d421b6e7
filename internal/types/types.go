package types

import (
	"fmt"
	"strconv"
	"strings"
)

// SuperType tags one element of a type chain.
type SuperType uint8

const (
	TyInvalid SuperType = iota
	TyDouble
	TyInt
	TyShort
	TyLong
	TyByte
	TyChar
	TyString
	TyBool
	TyStruct
	TyInterface
	TyEnum
	TyGeneric
	TyDyn
	TyPtr
	TyRef
	TyArray
	TyFunction
	TyProcedure
	TyImport
)

var superTypeNames = [...]string{
	TyInvalid:   "invalid",
	TyDouble:    "double",
	TyInt:       "int",
	TyShort:     "short",
	TyLong:      "long",
	TyByte:      "byte",
	TyChar:      "char",
	TyString:    "string",
	TyBool:      "bool",
	TyStruct:    "struct",
	TyInterface: "interface",
	TyEnum:      "enum",
	TyGeneric:   "generic",
	TyDyn:       "dyn",
	TyPtr:       "ptr",
	TyRef:       "ref",
	TyArray:     "array",
	TyFunction:  "function",
	TyProcedure: "procedure",
	TyImport:    "import",
}

func (s SuperType) String() string {
	if int(s) < len(superTypeNames) {
		return superTypeNames[s]
	}
	return fmt.Sprintf("SuperType(%d)", s)
}

// ArraySizeUnknown marks arrays whose length is not known at compile time.
const ArraySizeUnknown = 0

// ChainElement is one link of a type chain. Which fields are meaningful
// depends on Super.
type ChainElement struct {
	Super SuperType
	// SubType is the struct, interface, enum, generic or import name.
	SubType string
	// Origin disambiguates equally named structs from different files.
	Origin    string
	ArraySize int
	// Templates holds the concrete or generic template arguments of a struct
	// or interface.
	Templates []*Type
	// Params and Return describe function and procedure types.
	// Return is nil for procedures.
	Params      []*Type
	Return      *Type
	HasCaptures bool
}

// Type is a canonical, immutable type chain owned by a Registry.
// The chain starts at the base type; wrappers (ptr, ref, array) follow,
// so the last element is the outermost one.
type Type struct {
	chain []ChainElement
	key   string
	hash  uint64
	reg   *Registry
}

func (t *Type) outer() *ChainElement {
	return &t.chain[len(t.chain)-1]
}

// Super returns the super type of the outermost chain element.
func (t *Type) Super() SuperType {
	if t == nil || len(t.chain) == 0 {
		return TyInvalid
	}
	return t.outer().Super
}

func (t *Type) Is(s SuperType) bool { return t.Super() == s }

func (t *Type) IsOneOf(supers ...SuperType) bool {
	cur := t.Super()
	for _, s := range supers {
		if cur == s {
			return true
		}
	}
	return false
}

func (t *Type) IsPtr() bool   { return t.Is(TyPtr) }
func (t *Type) IsRef() bool   { return t.Is(TyRef) }
func (t *Type) IsArray() bool { return t.Is(TyArray) }

// IsPrimitive reports the scalar builtin types, string included.
func (t *Type) IsPrimitive() bool {
	return t.IsOneOf(TyDouble, TyInt, TyShort, TyLong, TyByte, TyChar, TyString, TyBool)
}

// IsInteger reports int, short, long and byte.
func (t *Type) IsInteger() bool {
	return t.IsOneOf(TyInt, TyShort, TyLong, TyByte)
}

// IsBase reports whether the innermost element has the given super type.
func (t *Type) IsBase(s SuperType) bool {
	if t == nil || len(t.chain) == 0 {
		return false
	}
	return t.chain[0].Super == s
}

// IsPtrOf reports a pointer whose pointee is s.
func (t *Type) IsPtrOf(s SuperType) bool {
	return t.IsPtr() && t.Contained().Is(s)
}

// IsArrayOf reports an array whose item type is s.
func (t *Type) IsArrayOf(s SuperType) bool {
	return t.IsArray() && t.Contained().Is(s)
}

// IsStringLike reports string, char* and char[].
func (t *Type) IsStringLike() bool {
	return t.Is(TyString) || t.IsPtrOf(TyChar) || t.IsArrayOf(TyChar)
}

func (t *Type) SubType() string { return t.outer().SubType }
func (t *Type) Origin() string  { return t.outer().Origin }
func (t *Type) ArraySize() int  { return t.outer().ArraySize }

func (t *Type) Templates() []*Type { return t.outer().Templates }

// Params returns the parameter types of a function or procedure type.
func (t *Type) Params() []*Type { return t.outer().Params }

// Return returns the return type of a function type, nil for procedures.
func (t *Type) Return() *Type { return t.outer().Return }

func (t *Type) HasCaptures() bool { return t.outer().HasCaptures }

// Depth is the number of chain elements.
func (t *Type) Depth() int { return len(t.chain) }

// Chain returns a copy of the chain elements.
func (t *Type) Chain() []ChainElement {
	out := make([]ChainElement, len(t.chain))
	copy(out, t.chain)
	return out
}

// Registry returns the registry that owns the type.
func (t *Type) Registry() *Registry { return t.reg }

// Hash returns the cached structural hash.
func (t *Type) Hash() uint64 { return t.hash }

// Equals compares canonical types. Canonical types are pointer-identical.
func (t *Type) Equals(other *Type) bool { return t == other }

// Contained strips the outermost wrapper. It panics on a chain of length one.
func (t *Type) Contained() *Type {
	if len(t.chain) < 2 {
		panic(fmt.Sprintf("types: cannot get contained type of %s", t.Name()))
	}
	return t.reg.mustInsert(t.chain[:len(t.chain)-1])
}

// Base returns the innermost chain element as a type of its own.
func (t *Type) Base() *Type {
	if len(t.chain) == 1 {
		return t
	}
	return t.reg.mustInsert(t.chain[:1])
}

// RemoveReference returns the referenced type for references, t otherwise.
func (t *Type) RemoveReference() *Type {
	if t.IsRef() {
		return t.Contained()
	}
	return t
}

// ToPointer returns *t. Pointers of dyn and of references are rejected.
func (t *Type) ToPointer() (*Type, error) {
	if t.Is(TyDyn) {
		return nil, &TypeError{Kind: ErrDynPointer, Message: "Just use the dyn type without '*' instead"}
	}
	if t.IsRef() {
		return nil, &TypeError{Kind: ErrRefPointer, Message: "Pointers to references are not allowed. Use pointer instead"}
	}
	return t.reg.GetOrInsert(appendElem(t.chain, ChainElement{Super: TyPtr}))
}

// ToReference returns &t.
func (t *Type) ToReference() (*Type, error) {
	if t.Is(TyDyn) {
		return nil, &TypeError{Kind: ErrDynReference, Message: "Just use the dyn type without '&' instead"}
	}
	if t.IsRef() {
		return nil, &TypeError{Kind: ErrRefPointer, Message: "References to references are not allowed"}
	}
	return t.reg.GetOrInsert(appendElem(t.chain, ChainElement{Super: TyRef}))
}

// ToArray returns t[size]. Use ArraySizeUnknown for arrays of unknown length.
func (t *Type) ToArray(size int) (*Type, error) {
	if t.Is(TyDyn) {
		return nil, &TypeError{Kind: ErrDynArray, Message: "Just use the dyn type without '[]' instead"}
	}
	return t.reg.GetOrInsert(appendElem(t.chain, ChainElement{Super: TyArray, ArraySize: size}))
}

// MustPointer is ToPointer for callers that already validated t.
func (t *Type) MustPointer() *Type {
	p, err := t.ToPointer()
	if err != nil {
		panic(err)
	}
	return p
}

// ReplaceBase swaps the innermost element for the chain of newBase and keeps
// all wrappers: replacing the base of T*[2] with int yields int*[2].
func (t *Type) ReplaceBase(newBase *Type) (*Type, error) {
	chain := make([]ChainElement, 0, len(newBase.chain)+len(t.chain)-1)
	chain = append(chain, newBase.chain...)
	chain = append(chain, t.chain[1:]...)
	return t.reg.GetOrInsert(chain)
}

// WithTemplates returns the outermost struct or interface element with the
// given template types.
func (t *Type) WithTemplates(templates []*Type) *Type {
	chain := t.Chain()
	chain[len(chain)-1].Templates = templates
	return t.reg.mustInsert(chain)
}

// WithBaseTemplates replaces the template types of the base element.
func (t *Type) WithBaseTemplates(templates []*Type) *Type {
	chain := t.Chain()
	chain[0].Templates = templates
	return t.reg.mustInsert(chain)
}

// WithCaptures marks a function or procedure type as a closure.
func (t *Type) WithCaptures(enabled bool) *Type {
	chain := t.Chain()
	chain[len(chain)-1].HasCaptures = enabled
	return t.reg.mustInsert(chain)
}

// IsSameContainerTypeAs reports whether both types are pointers, references,
// or arrays.
func (t *Type) IsSameContainerTypeAs(other *Type) bool {
	return (t.IsPtr() && other.IsPtr()) || (t.IsRef() && other.IsRef()) || (t.IsArray() && other.IsArray())
}

// HasGenericParts reports whether any generic placeholder remains anywhere
// in the type, including template, parameter and return types.
func (t *Type) HasGenericParts() bool {
	for i := range t.chain {
		el := &t.chain[i]
		if el.Super == TyGeneric {
			return true
		}
		for _, tt := range el.Templates {
			if tt.HasGenericParts() {
				return true
			}
		}
		for _, p := range el.Params {
			if p.HasGenericParts() {
				return true
			}
		}
		if el.Return != nil && el.Return.HasGenericParts() {
			return true
		}
	}
	return false
}

// Matches compares two types structurally, optionally ignoring array sizes.
func (t *Type) Matches(other *Type, ignoreArraySize bool) bool {
	if t == other {
		return true
	}
	if !ignoreArraySize || len(t.chain) != len(other.chain) {
		return false
	}
	for i := range t.chain {
		a, b := t.chain[i], other.chain[i]
		if a.Super == TyArray && b.Super == TyArray {
			continue
		}
		if encodeElem(a) != encodeElem(b) {
			return false
		}
	}
	return true
}

// Name returns the spelling shown to users, e.g. int*, char[4], Pair<int>.
func (t *Type) Name() string {
	if t == nil {
		return "<nil>"
	}
	var sb strings.Builder
	for i := range t.chain {
		writeElemName(&sb, &t.chain[i])
	}
	return sb.String()
}

func (t *Type) String() string { return t.Name() }

func writeElemName(sb *strings.Builder, el *ChainElement) {
	switch el.Super {
	case TyPtr:
		sb.WriteByte('*')
	case TyRef:
		sb.WriteByte('&')
	case TyArray:
		sb.WriteByte('[')
		if el.ArraySize != ArraySizeUnknown {
			sb.WriteString(strconv.Itoa(el.ArraySize))
		}
		sb.WriteByte(']')
	case TyStruct, TyInterface, TyEnum:
		sb.WriteString(el.SubType)
		writeTemplateList(sb, el.Templates)
	case TyGeneric:
		sb.WriteString(el.SubType)
	case TyFunction, TyProcedure:
		if el.Super == TyFunction {
			sb.WriteByte('f')
		} else {
			sb.WriteByte('p')
		}
		if el.HasCaptures {
			sb.WriteString("[]")
		}
		if el.Return != nil {
			sb.WriteByte('<')
			sb.WriteString(el.Return.Name())
			sb.WriteByte('>')
		}
		sb.WriteByte('(')
		for i, p := range el.Params {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(p.Name())
		}
		sb.WriteByte(')')
	case TyImport:
		sb.WriteString("import")
	default:
		sb.WriteString(el.Super.String())
	}
}

func writeTemplateList(sb *strings.Builder, templates []*Type) {
	if len(templates) == 0 {
		return
	}
	sb.WriteByte('<')
	for i, tt := range templates {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(tt.Name())
	}
	sb.WriteByte('>')
}

// Mangled returns an identifier-safe spelling for symbol names:
// int* becomes intptr, char[3] becomes chararray3.
func (t *Type) Mangled() string {
	var sb strings.Builder
	for i := range t.chain {
		el := &t.chain[i]
		switch el.Super {
		case TyPtr:
			sb.WriteString("ptr")
		case TyRef:
			sb.WriteString("ref")
		case TyArray:
			sb.WriteString("array")
			if el.ArraySize != ArraySizeUnknown {
				sb.WriteString(strconv.Itoa(el.ArraySize))
			}
		case TyStruct, TyInterface, TyEnum, TyGeneric:
			sb.WriteString(el.SubType)
			if len(el.Templates) > 0 {
				sb.WriteString("__")
				for j, tt := range el.Templates {
					if j > 0 {
						sb.WriteByte('_')
					}
					sb.WriteString(tt.Mangled())
				}
				sb.WriteString("__")
			}
		case TyFunction, TyProcedure:
			if el.Super == TyFunction {
				sb.WriteString("f")
				sb.WriteString(el.Return.Mangled())
			} else {
				sb.WriteString("p")
			}
			for _, p := range el.Params {
				sb.WriteByte('_')
				sb.WriteString(p.Mangled())
			}
		default:
			sb.WriteString(el.Super.String())
		}
	}
	return sb.String()
}

func appendElem(chain []ChainElement, el ChainElement) []ChainElement {
	out := make([]ChainElement, len(chain), len(chain)+1)
	copy(out, chain)
	return append(out, el)
}
