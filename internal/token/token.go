package token

import (
	"spice/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a numeric, char or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, DoubleLit, CharLit, StringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

func (t Token) IsIdent() bool { return t.Kind == Ident }

func (t Token) String() string {
	if t.Text != "" && (t.Kind == Ident || t.IsLiteral()) {
		return t.Kind.String() + "(" + t.Text + ")"
	}
	return t.Kind.String()
}
