package sema

import (
	"spice/internal/ast"
	"spice/internal/symbols"
)

// The analyzer leaves these records in the Ref slot of AST nodes. Identifiers
// carry a *symbols.Entry, or a *symbols.Function when a function is used as a
// value. Struct literals carry their *symbols.Struct manifestation.

// CallKind tells the generator how a call node dispatches.
type CallKind uint8

const (
	CallFunction CallKind = iota
	CallMethod
	CallInterface
	// CallValue invokes a function value: a lambda, a function pointer or a
	// struct field of function type.
	CallValue
)

// Call is the resolved target of a call node.
type Call struct {
	Kind CallKind
	Func *symbols.Function

	Iface  *symbols.Interface
	Method int

	// This is the receiver expression of method and interface calls.
	This *ast.Expr
	// ThisIsPtr is set when This already evaluates to a pointer.
	ThisIsPtr bool

	// Defaults fill the parameters the call site left out. They are
	// annotated under the callee's manifestation index.
	Defaults    []*ast.Expr
	DefaultsIdx int
}

// FieldRef is the selected field of a member node.
type FieldRef struct {
	Struct     *symbols.Struct
	Field      *symbols.Entry
	ThroughPtr bool
}
