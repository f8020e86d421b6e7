package ast

import (
	"spice/internal/source"
	"spice/internal/types"
)

// Decl is implemented by every top-level declaration.
type Decl interface {
	Pos() source.CodeLoc
	declNode()
}

type (
	// ImportDecl is `import "path" as Alias;`.
	ImportDecl struct {
		Loc   source.CodeLoc
		Path  string
		Alias string
	}

	// GlobalVarDecl is `[public] [const] T name [= value];` at file level.
	GlobalVarDecl struct {
		Loc   source.CodeLoc
		Type  *DataType
		Name  string
		Value *Expr
	}

	// GenericTypeDecl is `type T dyn;` or `type T int|long;`.
	GenericTypeDecl struct {
		Loc        source.CodeLoc
		Name       string
		Conditions []*DataType // empty means any type
	}

	// StructDecl is `type S<T..> struct : I1, I2 { fields }`.
	StructDecl struct {
		Loc        source.CodeLoc
		Span       source.Span
		Spec       types.Specifiers
		Name       string
		Templates  []*DataType
		Interfaces []*DataType
		Fields     []*FieldDecl
	}

	FieldDecl struct {
		Loc     source.CodeLoc
		Type    *DataType
		Name    string
		Default *Expr
	}

	// InterfaceDecl lists method signatures.
	InterfaceDecl struct {
		Loc       source.CodeLoc
		Spec      types.Specifiers
		Name      string
		Templates []*DataType
		Methods   []*Signature
	}

	// Signature is one interface method.
	Signature struct {
		Loc       source.CodeLoc
		IsProc    bool
		Return    *DataType
		Name      string
		Templates []*DataType
		Params    []*DataType
	}

	EnumDecl struct {
		Loc   source.CodeLoc
		Spec  types.Specifiers
		Name  string
		Items []*EnumItem
	}

	// EnumItem gets Value when HasValue, otherwise the next free number.
	EnumItem struct {
		Loc      source.CodeLoc
		Name     string
		Value    int64
		HasValue bool
	}

	// FuncDecl covers functions, procedures, methods and the special
	// members ctor, dtor and copy. Receiver is empty for free functions.
	FuncDecl struct {
		Loc       source.CodeLoc
		Span      source.Span
		Spec      types.Specifiers
		IsProc    bool
		Return    *DataType
		Receiver  string
		Name      string
		Templates []*DataType
		Params    []*Param
		Body      *Block
	}

	// Param is `T name [= default]`.
	Param struct {
		Loc     source.CodeLoc
		Type    *DataType
		Name    string
		Default *Expr
	}

	// ExtDecl is an external C function: `ext f<int> puts(char*);`.
	ExtDecl struct {
		Loc      source.CodeLoc
		IsProc   bool
		Return   *DataType
		Name     string
		Params   []*DataType
		Variadic bool
	}
)

// Special member names recognized on methods.
const (
	CtorName = "ctor"
	DtorName = "dtor"
	CopyName = "copy"
)

// IsMethod reports whether the function is declared on a struct.
func (d *FuncDecl) IsMethod() bool { return d.Receiver != "" }

// IsGeneric reports whether the function declares its own templates.
func (d *FuncDecl) IsGeneric() bool { return len(d.Templates) > 0 }

// QualifiedName is `S.name` for methods and `name` otherwise.
func (d *FuncDecl) QualifiedName() string {
	if d.Receiver == "" {
		return d.Name
	}
	return d.Receiver + "." + d.Name
}

// RequiredParams counts parameters without defaults.
func (d *FuncDecl) RequiredParams() int {
	n := 0
	for _, p := range d.Params {
		if p.Default == nil {
			n++
		}
	}
	return n
}

func (d *ImportDecl) Pos() source.CodeLoc      { return d.Loc }
func (d *GlobalVarDecl) Pos() source.CodeLoc   { return d.Loc }
func (d *GenericTypeDecl) Pos() source.CodeLoc { return d.Loc }
func (d *StructDecl) Pos() source.CodeLoc      { return d.Loc }
func (d *InterfaceDecl) Pos() source.CodeLoc   { return d.Loc }
func (d *EnumDecl) Pos() source.CodeLoc        { return d.Loc }
func (d *FuncDecl) Pos() source.CodeLoc        { return d.Loc }
func (d *ExtDecl) Pos() source.CodeLoc         { return d.Loc }

func (*ImportDecl) declNode()      {}
func (*GlobalVarDecl) declNode()   {}
func (*GenericTypeDecl) declNode() {}
func (*StructDecl) declNode()      {}
func (*InterfaceDecl) declNode()   {}
func (*EnumDecl) declNode()        {}
func (*FuncDecl) declNode()        {}
func (*ExtDecl) declNode()         {}

// IsAnyType reports whether the generic type accepts every type (`type T dyn;`).
func (d *GenericTypeDecl) IsAnyType() bool { return len(d.Conditions) == 0 }
