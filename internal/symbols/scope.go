package symbols

import (
	"fmt"
	"sort"

	"spice/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeGlobal
	ScopeFunction
	ScopeProcedure
	ScopeStruct
	ScopeInterface
	ScopeEnum
	ScopeIf
	ScopeElse
	ScopeWhile
	ScopeFor
	ScopeForeach
	ScopeDo
	ScopeSwitch
	ScopeCase
	ScopeUnsafe
	ScopeBlock
	ScopeLambda
	ScopeThread
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeProcedure:
		return "procedure"
	case ScopeStruct:
		return "struct"
	case ScopeInterface:
		return "interface"
	case ScopeEnum:
		return "enum"
	case ScopeIf:
		return "if"
	case ScopeElse:
		return "else"
	case ScopeWhile:
		return "while"
	case ScopeFor:
		return "for"
	case ScopeForeach:
		return "foreach"
	case ScopeDo:
		return "do"
	case ScopeSwitch:
		return "switch"
	case ScopeCase:
		return "case"
	case ScopeUnsafe:
		return "unsafe"
	case ScopeBlock:
		return "block"
	case ScopeLambda:
		return "lambda"
	case ScopeThread:
		return "thread"
	default:
		return "invalid"
	}
}

// IsCaptureBoundary reports whether outer locals referenced from inside
// the scope must be captured.
func (k ScopeKind) IsCaptureBoundary() bool {
	return k == ScopeLambda || k == ScopeThread
}

// IsCallable reports whether the scope is a function-like body.
func (k ScopeKind) IsCallable() bool {
	return k == ScopeFunction || k == ScopeProcedure || k == ScopeLambda || k == ScopeThread
}

// FunctionKey names the child scope of a function manifestation.
func FunctionKey(mangled string) string { return "fct:" + mangled }

// StructKey names the child scope of a struct manifestation.
func StructKey(mangled string) string { return "struct:" + mangled }

// BlockKey names the child scope of a control construct at loc.
func BlockKey(kind ScopeKind, loc source.CodeLoc) string {
	return kind.String() + ":" + loc.Key()
}

// Scope is one node of the symbol table tree.
type Scope struct {
	Kind   ScopeKind
	Key    string
	Parent *Scope
	Loc    source.CodeLoc
	Table  *Table

	entries    map[string]*Entry
	order      []*Entry
	children   map[string]*Scope
	childOrder []*Scope
	captures   map[*Entry]*Capture
	capOrder   []*Capture
}

func newScope(t *Table, kind ScopeKind, key string, parent *Scope, loc source.CodeLoc) *Scope {
	return &Scope{
		Kind:     kind,
		Key:      key,
		Parent:   parent,
		Loc:      loc,
		Table:    t,
		entries:  make(map[string]*Entry),
		children: make(map[string]*Scope),
	}
}

// Insert declares name in this scope. It returns the existing entry and
// false when the name is already taken here.
func (s *Scope) Insert(name string, qt QualType, decl any, loc source.CodeLoc) (*Entry, bool) {
	if prev, ok := s.entries[name]; ok {
		return prev, false
	}
	e := &Entry{
		Name:  name,
		Type:  qt,
		Decl:  decl,
		Loc:   loc,
		Scope: s,
		Order: len(s.order),
	}
	if s.Kind == ScopeGlobal {
		e.Flags |= FlagGlobal
	}
	s.entries[name] = e
	s.order = append(s.order, e)
	return e, true
}

// LookupStrict finds name in this scope only.
func (s *Scope) LookupStrict(name string) *Entry {
	return s.entries[name]
}

// Lookup walks the parent chain. When the entry is found outside a
// lambda or thread scope that was crossed on the way, it is recorded as a
// capture of that scope. Globals are never captured.
func (s *Scope) Lookup(name string) *Entry {
	var crossed []*Scope
	for cur := s; cur != nil; cur = cur.Parent {
		if e, ok := cur.entries[name]; ok {
			if !e.Has(FlagGlobal) && e.Scope.Kind != ScopeStruct {
				for _, boundary := range crossed {
					boundary.addCapture(e)
				}
			}
			return e
		}
		if cur.Kind.IsCaptureBoundary() {
			crossed = append(crossed, cur)
		}
	}
	return nil
}

// Child returns the child scope registered under key.
func (s *Scope) Child(key string) *Scope {
	return s.children[key]
}

// EnsureChild returns the child under key, creating it on first use. The
// analyzer may revisit a construct on later runs and must land in the same scope.
func (s *Scope) EnsureChild(kind ScopeKind, key string, loc source.CodeLoc) *Scope {
	if c, ok := s.children[key]; ok {
		return c
	}
	c := newScope(s.Table, kind, key, s, loc)
	s.children[key] = c
	s.childOrder = append(s.childOrder, c)
	return c
}

// MustChild returns the child under key or panics; the generator relies on
// the analyzer having created every scope it re-enters.
func (s *Scope) MustChild(key string) *Scope {
	c, ok := s.children[key]
	if !ok {
		panic(fmt.Sprintf("scope %q has no child %q", s.Key, key))
	}
	return c
}

// Children returns child scopes in creation order.
func (s *Scope) Children() []*Scope { return s.childOrder }

// Entries returns the entries in declaration order.
func (s *Scope) Entries() []*Entry { return s.order }

// Fields returns the field entries sorted by their order index.
func (s *Scope) Fields() []*Entry {
	var out []*Entry
	for _, e := range s.order {
		if e.Has(FlagField) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Global returns the root scope.
func (s *Scope) Global() *Scope {
	cur := s
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// InUnsafe reports whether the scope is nested inside an unsafe block.
func (s *Scope) InUnsafe() bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == ScopeUnsafe {
			return true
		}
		if cur.Kind == ScopeFunction || cur.Kind == ScopeProcedure {
			return false
		}
	}
	return false
}

// EnclosingCallable returns the nearest function, procedure, lambda or thread scope.
func (s *Scope) EnclosingCallable() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind.IsCallable() {
			return cur
		}
	}
	return nil
}

// IsWithin reports whether s equals other or is nested inside it.
func (s *Scope) IsWithin(other *Scope) bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur == other {
			return true
		}
	}
	return false
}

func (s *Scope) addCapture(e *Entry) {
	if e.Scope.IsWithin(s) {
		return
	}
	if s.captures == nil {
		s.captures = make(map[*Entry]*Capture)
	}
	if _, ok := s.captures[e]; ok {
		return
	}
	mode := ByValue
	if s.Kind == ScopeThread {
		mode = ByReference
	}
	c := &Capture{Entry: e, Mode: mode, Order: len(s.capOrder)}
	s.captures[e] = c
	s.capOrder = append(s.capOrder, c)
	e.Flags |= FlagCaptured
}

// Captures returns the captures of a lambda or thread scope in capture order.
func (s *Scope) Captures() []*Capture { return s.capOrder }

// CaptureOf returns the capture record for e, if s captures it.
func (s *Scope) CaptureOf(e *Entry) *Capture {
	return s.captures[e]
}

func (s *Scope) String() string {
	if s.Key == "" {
		return s.Kind.String()
	}
	return s.Key
}
