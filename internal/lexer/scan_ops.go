package lexer

import (
	"fmt"

	"spice/internal/diag"
	"spice/internal/token"
)

// operators sorted so that longer spellings win.
var operators = []struct {
	text string
	kind token.Kind
}{
	{"<<=", token.ShlAssign}, {">>=", token.ShrAssign}, {"...", token.Ellipsis},
	{"+=", token.PlusAssign}, {"-=", token.MinusAssign}, {"*=", token.StarAssign},
	{"/=", token.SlashAssign}, {"%=", token.PercentAssign}, {"&=", token.AmpAssign},
	{"|=", token.PipeAssign}, {"^=", token.CaretAssign}, {"==", token.EqEq},
	{"!=", token.BangEq}, {"<=", token.LtEq}, {">=", token.GtEq}, {"<<", token.Shl},
	{">>", token.Shr}, {"&&", token.AndAnd}, {"||", token.OrOr}, {"++", token.PlusPlus},
	{"--", token.MinusMinus},
	{"+", token.Plus}, {"-", token.Minus}, {"*", token.Star}, {"/", token.Slash},
	{"%", token.Percent}, {"=", token.Assign}, {"<", token.Lt}, {">", token.Gt},
	{"&", token.Amp}, {"|", token.Pipe}, {"^", token.Caret}, {"~", token.Tilde},
	{"!", token.Bang}, {"?", token.Question}, {":", token.Colon}, {";", token.Semicolon},
	{",", token.Comma}, {".", token.Dot}, {"(", token.LParen}, {")", token.RParen},
	{"{", token.LBrace}, {"}", token.RBrace}, {"[", token.LBracket}, {"]", token.RBracket},
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	for _, op := range operators {
		if lx.matches(op.text) {
			for range len(op.text) {
				lx.cursor.Bump()
			}
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: op.kind, Span: sp, Text: op.text}
		}
	}
	ch := lx.cursor.Bump()
	lx.fail(lx.cursor.SpanFrom(start), diag.LexUnknownChar, fmt.Sprintf("unexpected character %q", ch))
	return lx.invalid(start)
}

func (lx *Lexer) matches(text string) bool {
	for i := 0; i < len(text); i++ {
		if lx.cursor.PeekAt(uint32(i)) != text[i] {
			return false
		}
	}
	return true
}
