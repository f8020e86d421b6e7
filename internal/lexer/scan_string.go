package lexer

import (
	"spice/internal/diag"
	"spice/internal/token"
)

// scanString keeps the raw text including quotes and escapes.
// Unescaping happens in the parser.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			lx.fail(lx.cursor.SpanFrom(start), diag.LexUnterminatedString, "missing closing '\"'")
			return lx.invalid(start)
		}
		b := lx.cursor.Bump()
		if b == '\\' {
			lx.cursor.Bump()
			continue
		}
		if b == '"' {
			break
		}
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) scanChar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	if lx.cursor.Peek() == '\\' {
		lx.cursor.Bump()
	}
	if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
		lx.fail(lx.cursor.SpanFrom(start), diag.LexUnterminatedChar, "missing closing '''")
		return lx.invalid(start)
	}
	lx.cursor.Bump()
	if !lx.cursor.Eat('\'') {
		lx.fail(lx.cursor.SpanFrom(start), diag.LexUnterminatedChar, "missing closing '''")
		return lx.invalid(start)
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.CharLit, Span: sp, Text: lx.text(sp)}
}
