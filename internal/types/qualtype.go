package types

import "strings"

// Specifiers are declaration qualifiers. They never affect type identity.
type Specifiers uint8

const (
	SpecConst Specifiers = 1 << iota
	SpecPublic
	SpecHeap
	SpecVolatile
	SpecInline
)

func (s Specifiers) Has(flag Specifiers) bool { return s&flag != 0 }

func (s Specifiers) String() string {
	var parts []string
	for _, p := range []struct {
		flag Specifiers
		name string
	}{
		{SpecPublic, "public"},
		{SpecInline, "inline"},
		{SpecConst, "const"},
		{SpecVolatile, "volatile"},
		{SpecHeap, "heap"},
	} {
		if s.Has(p.flag) {
			parts = append(parts, p.name)
		}
	}
	return strings.Join(parts, " ")
}

// QualType is a canonical type plus its specifiers.
type QualType struct {
	Type *Type
	Spec Specifiers
}

func Qual(t *Type, spec Specifiers) QualType {
	return QualType{Type: t, Spec: spec}
}

func (q QualType) IsConst() bool    { return q.Spec.Has(SpecConst) }
func (q QualType) IsPublic() bool   { return q.Spec.Has(SpecPublic) }
func (q QualType) IsHeap() bool     { return q.Spec.Has(SpecHeap) }
func (q QualType) IsVolatile() bool { return q.Spec.Has(SpecVolatile) }
func (q QualType) IsInline() bool   { return q.Spec.Has(SpecInline) }

// Is compares the type part only.
func (q QualType) Is(t *Type) bool { return q.Type == t }

func (q QualType) String() string {
	if q.Spec == 0 {
		return q.Type.Name()
	}
	return q.Spec.String() + " " + q.Type.Name()
}
