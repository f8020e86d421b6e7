package ast

import "spice/internal/source"

// File is one parsed source file. Decls keep source order.
type File struct {
	ID    source.FileID
	Path  string
	Span  source.Span
	Decls []Decl
}

// Imports returns the import declarations in source order.
func (f *File) Imports() []*ImportDecl {
	var out []*ImportDecl
	for _, d := range f.Decls {
		if imp, ok := d.(*ImportDecl); ok {
			out = append(out, imp)
		}
	}
	return out
}

// Funcs returns every function, procedure and method declaration.
func (f *File) Funcs() []*FuncDecl {
	var out []*FuncDecl
	for _, d := range f.Decls {
		if fn, ok := d.(*FuncDecl); ok {
			out = append(out, fn)
		}
	}
	return out
}

// Structs returns the struct declarations.
func (f *File) Structs() []*StructDecl {
	var out []*StructDecl
	for _, d := range f.Decls {
		if s, ok := d.(*StructDecl); ok {
			out = append(out, s)
		}
	}
	return out
}

// Hints sizes the builder's arenas.
type Hints struct{ Exprs, Types uint }

// Builder allocates nodes for one file.
type Builder struct {
	Exprs *Arena[Expr]
	Types *Arena[DataType]
}

func NewBuilder(hints Hints) *Builder {
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Types == 0 {
		hints.Types = 1 << 6
	}
	return &Builder{
		Exprs: NewArena[Expr](hints.Exprs),
		Types: NewArena[DataType](hints.Types),
	}
}

func (b *Builder) NewExpr(kind ExprKind, sp source.Span, loc source.CodeLoc) *Expr {
	e := b.Exprs.New()
	e.Kind = kind
	e.Span = sp
	e.Loc = loc
	return e
}

func (b *Builder) NewType(base BaseKind, sp source.Span, loc source.CodeLoc) *DataType {
	t := b.Types.New()
	t.Base = base
	t.Span = sp
	t.Loc = loc
	return t
}
