package ast

import (
	"strconv"
	"strings"

	"spice/internal/source"
	"spice/internal/types"
)

// BaseKind classifies the innermost element of a written type.
type BaseKind uint8

const (
	BaseInvalid BaseKind = iota
	BaseDouble
	BaseInt
	BaseShort
	BaseLong
	BaseByte
	BaseChar
	BaseString
	BaseBool
	BaseDyn
	BaseNamed     // struct, interface, enum, generic or alias; Path holds the name
	BaseFunction  // f<R>(T..)
	BaseProcedure // p(T..)
)

// SuffixKind is one wrapper written after the base type.
type SuffixKind uint8

const (
	SuffixPtr SuffixKind = iota
	SuffixRef
	SuffixArray
)

// TypeSuffix is `*`, `&` or `[N]`. Size is zero for `[]`.
type TypeSuffix struct {
	Kind SuffixKind
	Size int
}

// DataType is a type as written in the source, e.g. `const Pair<int,string>*[4]`.
type DataType struct {
	Slots
	Span source.Span
	Loc  source.CodeLoc

	Spec      types.Specifiers
	Base      BaseKind
	Path      []string // a.B for a type from an import
	Templates []*DataType
	Suffixes  []TypeSuffix

	// function and procedure types
	Return *DataType
	Params []*DataType
}

// Name is the last path fragment of a named type.
func (dt *DataType) Name() string {
	if len(dt.Path) == 0 {
		return ""
	}
	return dt.Path[len(dt.Path)-1]
}

// Qualifier returns the import alias for `alias.Type`, or "".
func (dt *DataType) Qualifier() string {
	if len(dt.Path) < 2 {
		return ""
	}
	return dt.Path[0]
}

func (dt *DataType) IsDyn() bool {
	return dt.Base == BaseDyn && len(dt.Suffixes) == 0
}

var baseNames = [...]string{
	BaseInvalid: "<invalid>",
	BaseDouble:  "double",
	BaseInt:     "int",
	BaseShort:   "short",
	BaseLong:    "long",
	BaseByte:    "byte",
	BaseChar:    "char",
	BaseString:  "string",
	BaseBool:    "bool",
	BaseDyn:     "dyn",
}

// String renders the type the way it was written, without specifiers.
func (dt *DataType) String() string {
	var sb strings.Builder
	switch dt.Base {
	case BaseNamed:
		sb.WriteString(strings.Join(dt.Path, "."))
		writeTypeList(&sb, "<", ">", dt.Templates)
	case BaseFunction:
		sb.WriteString("f")
		if dt.Return != nil {
			sb.WriteString("<" + dt.Return.String() + ">")
		}
		writeTypeList(&sb, "(", ")", dt.Params)
	case BaseProcedure:
		sb.WriteString("p")
		writeTypeList(&sb, "(", ")", dt.Params)
	default:
		sb.WriteString(baseNames[dt.Base])
	}
	for _, s := range dt.Suffixes {
		switch s.Kind {
		case SuffixPtr:
			sb.WriteByte('*')
		case SuffixRef:
			sb.WriteByte('&')
		case SuffixArray:
			sb.WriteByte('[')
			if s.Size > 0 {
				sb.WriteString(strconv.Itoa(s.Size))
			}
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

func writeTypeList(sb *strings.Builder, open, closing string, list []*DataType) {
	if len(list) == 0 && open == "<" {
		return
	}
	sb.WriteString(open)
	for i, t := range list {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(t.String())
	}
	sb.WriteString(closing)
}
