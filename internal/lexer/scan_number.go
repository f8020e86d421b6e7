package lexer

import (
	"spice/internal/diag"
	"spice/internal/token"
)

// scanNumber accepts 123, 0x7F, 0b101, 0o17, 1.5 and the width suffixes
// s (short) and l (long). The suffix stays in Text.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' {
		var digit func(byte) bool
		switch lx.cursor.PeekAt(1) {
		case 'x', 'X', 'h', 'H':
			digit = isHex
		case 'b', 'B':
			digit = func(b byte) bool { return b == '0' || b == '1' }
		case 'o', 'O':
			digit = func(b byte) bool { return b >= '0' && b <= '7' }
		}
		if digit != nil {
			lx.cursor.Bump()
			lx.cursor.Bump()
			if !digit(lx.cursor.Peek()) {
				lx.fail(lx.cursor.SpanFrom(start), diag.LexBadNumber, "expected digits after the radix prefix")
				return lx.invalid(start)
			}
			for digit(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.scanIntSuffix()
			return lx.number(start, kind)
		}
	}

	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.DoubleLit
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
			lx.cursor.Bump()
			if b := lx.cursor.Peek(); b == '+' || b == '-' {
				lx.cursor.Bump()
			}
			if !isDec(lx.cursor.Peek()) {
				lx.fail(lx.cursor.SpanFrom(start), diag.LexBadNumber, "expected exponent digits")
				return lx.invalid(start)
			}
			for isDec(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
		}
		return lx.number(start, kind)
	}
	lx.scanIntSuffix()
	return lx.number(start, kind)
}

func (lx *Lexer) scanIntSuffix() {
	if b := lx.cursor.Peek(); (b == 's' || b == 'l') && !isIdentContinueByte(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) number(start Mark, kind token.Kind) token.Token {
	if isIdentStartByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		lx.fail(lx.cursor.SpanFrom(start), diag.LexBadNumber, "invalid suffix on number literal '"+lx.text(lx.cursor.SpanFrom(start))+"'")
		return lx.invalid(start)
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}
