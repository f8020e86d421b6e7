package symbols

import (
	"strings"

	"github.com/llir/llvm/ir/value"

	"spice/internal/ast"
	"spice/internal/source"
	"spice/internal/types"
)

// QualType is the resolved type of an entry together with its specifiers.
type QualType = types.QualType

// EntryState tracks whether a value was ever assigned to the entry.
type EntryState uint8

const (
	Declared EntryState = iota
	Initialized
)

func (s EntryState) String() string {
	if s == Initialized {
		return "initialized"
	}
	return "declared"
}

// EntryFlags encode entry attributes.
type EntryFlags uint16

const (
	FlagGlobal EntryFlags = 1 << iota
	FlagUsed
	FlagParam
	FlagField
	FlagCaptured
	FlagImport
	FlagFunction
	FlagStruct
	FlagEnumItem
	FlagThis
	FlagResult
)

// Strings renders the flags for debug output.
func (f EntryFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	var out []string
	for _, p := range []struct {
		flag EntryFlags
		name string
	}{
		{FlagGlobal, "global"},
		{FlagUsed, "used"},
		{FlagParam, "param"},
		{FlagField, "field"},
		{FlagCaptured, "captured"},
		{FlagImport, "import"},
		{FlagFunction, "function"},
		{FlagStruct, "struct"},
		{FlagEnumItem, "enum-item"},
		{FlagThis, "this"},
		{FlagResult, "result"},
	} {
		if f&p.flag != 0 {
			out = append(out, p.name)
		}
	}
	return out
}

func (f EntryFlags) String() string { return strings.Join(f.Strings(), "|") }

// Entry is one declared name.
type Entry struct {
	Name  string
	Type  QualType
	Decl  any
	Loc   source.CodeLoc
	Scope *Scope
	// Order is the declaration index inside the owning scope and the field
	// position for struct fields.
	Order int
	Flags EntryFlags
	// Const holds the compile-time value of enum items and constant globals.
	Const *ast.Const
	// Target is the imported file's global scope for import entries.
	Target *Scope

	// Address is the storage location assigned during code generation.
	Address value.Value

	state EntryState
}

// State returns the entry's declaration state.
func (e *Entry) State() EntryState { return e.state }

// Initialize moves the entry to Initialized. It never moves back.
func (e *Entry) Initialize() { e.state = Initialized }

func (e *Entry) IsInitialized() bool { return e.state == Initialized }

// Use marks the entry as referenced.
func (e *Entry) Use() { e.Flags |= FlagUsed }

func (e *Entry) IsUsed() bool { return e.Flags&FlagUsed != 0 }

func (e *Entry) Has(flag EntryFlags) bool { return e.Flags&flag != 0 }

// IsVolatile reports whether loads and stores must not be elided.
func (e *Entry) IsVolatile() bool { return e.Type.IsVolatile() }

// IsLocal reports whether the entry lives on the stack of some function.
func (e *Entry) IsLocal() bool {
	return e.Flags&(FlagGlobal|FlagField|FlagImport|FlagFunction|FlagStruct|FlagEnumItem) == 0
}

// SetType replaces the resolved type, keeping the specifiers.
func (e *Entry) SetType(t *types.Type) { e.Type.Type = t }
