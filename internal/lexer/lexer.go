// Package lexer turns source files into token streams.
package lexer

import (
	"spice/internal/diag"
	"spice/internal/source"
	"spice/internal/token"
)

type Lexer struct {
	file   *source.File
	fs     *source.FileSet
	cursor Cursor
	err    error
}

func New(fs *source.FileSet, file *source.File) *Lexer {
	return &Lexer{file: file, fs: fs, cursor: NewCursor(file)}
}

// Tokenize lexes the whole file. The returned slice always ends with EOF.
// The first lexical error aborts lexing.
func Tokenize(fs *source.FileSet, file *source.File) ([]token.Token, error) {
	lx := New(fs, file)
	toks := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		if lx.err != nil {
			return nil, lx.err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}

// Next returns the next significant token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	lx.skipTrivia()
	if lx.err != nil {
		return lx.invalid(lx.cursor.Mark())
	}
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.cursor.SpanFrom(lx.cursor.Mark())}
	}
	ch := lx.cursor.Peek()
	switch {
	case isIdentStartByte(ch):
		return lx.scanIdentOrKeyword()
	case isDec(ch):
		return lx.scanNumber()
	case ch == '"':
		return lx.scanString()
	case ch == '\'':
		return lx.scanChar()
	default:
		return lx.scanOperatorOrPunct()
	}
}

// Err returns the first lexical error.
func (lx *Lexer) Err() error {
	return lx.err
}

func (lx *Lexer) fail(sp source.Span, code diag.Code, msg string) {
	if lx.err != nil {
		return
	}
	lx.err = diag.NewParserError(lx.loc(sp), code, msg)
}

func (lx *Lexer) loc(sp source.Span) source.CodeLoc {
	if lx.fs != nil {
		return lx.fs.Loc(sp)
	}
	return source.CodeLoc{Path: lx.file.Path}
}

func (lx *Lexer) invalid(m Mark) token.Token {
	sp := lx.cursor.SpanFrom(m)
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		switch ch := lx.cursor.Peek(); {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			lx.cursor.Bump()
		case ch == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		case ch == '/' && lx.cursor.PeekAt(1) == '*':
			start := lx.cursor.Mark()
			lx.cursor.Bump()
			lx.cursor.Bump()
			closed := false
			for !lx.cursor.EOF() {
				if lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) == '/' {
					lx.cursor.Bump()
					lx.cursor.Bump()
					closed = true
					break
				}
				lx.cursor.Bump()
			}
			if !closed {
				lx.fail(lx.cursor.SpanFrom(start), diag.LexUnterminatedBlock, "block comment is not closed")
				return
			}
		default:
			return
		}
	}
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDec(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
