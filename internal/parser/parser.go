// Package parser builds the AST for one Spice source file.
package parser

import (
	"fmt"
	"slices"

	"spice/internal/ast"
	"spice/internal/diag"
	"spice/internal/lexer"
	"spice/internal/source"
	"spice/internal/token"
)

// Parser holds the state for one file. It works on the full token slice so
// that ambiguous constructs can be tried and rolled back.
type Parser struct {
	fs     *source.FileSet
	file   *source.File
	nodes  *ast.Builder
	toks   []token.Token
	orig   []token.Token // pristine copy; split '>>' tokens are restored from it
	pos    int
	err    *diag.ParserError
	trying int // >0 while speculating; errors are not recorded

	noStructLit bool // set while parsing conditions of if/while/for/switch
}

type mark struct {
	pos int
	tok token.Token
}

// ParseFile lexes and parses a file already registered in fs.
// The first syntax error aborts parsing.
func ParseFile(fs *source.FileSet, id source.FileID, nodes *ast.Builder) (*ast.File, error) {
	file := fs.Get(id)
	if file == nil {
		return nil, diag.NewCompilerError(diag.CmpSourceFileNotFound, fmt.Sprintf("file id %d is not loaded", id))
	}
	toks, err := lexer.Tokenize(fs, file)
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = ast.NewBuilder(ast.Hints{Exprs: uint(len(toks))})
	}
	p := &Parser{
		fs:    fs,
		file:  file,
		nodes: nodes,
		toks:  toks,
		orig:  slices.Clone(toks),
	}
	out := &ast.File{ID: id, Path: file.Path}
	for !p.at(token.EOF) {
		d, ok := p.parseDecl()
		if !ok {
			return nil, p.error()
		}
		out.Decls = append(out.Decls, d)
	}
	if len(toks) > 0 {
		out.Span = toks[0].Span.Cover(toks[len(toks)-1].Span)
	}
	return out, nil
}

// ParseSource registers content under name and parses it. Used by tests
// and by the driver for in-memory inputs.
func ParseSource(fs *source.FileSet, name, content string) (*ast.File, error) {
	id := fs.AddVirtual(name, []byte(content))
	return ParseFile(fs, id, nil)
}

func (p *Parser) peek() token.Token { return p.toks[p.pos] }

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) at(k token.Kind) bool { return p.toks[p.pos].Kind == k }

func (p *Parser) atAny(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.toks[p.pos].Kind)
}

func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return p.peek(), p.fail(code, msg)
}

func (p *Parser) expectSemicolon() bool {
	_, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';'")
	return ok
}

func (p *Parser) expectIdent(what string) (token.Token, bool) {
	if p.peek().Kind.IsKeyword() {
		return p.peek(), p.fail(diag.SynReservedKeyword, fmt.Sprintf("'%s' is a reserved keyword and cannot be used as %s", p.peek().Text, what))
	}
	return p.expect(token.Ident, diag.SynExpectIdentifier, "expected "+what)
}

// expectCloseAngle consumes one '>' and splits '>>' or '>=' so nested
// template lists like Vec<Pair<int>> close correctly.
func (p *Parser) expectCloseAngle() bool {
	tok := p.peek()
	switch tok.Kind {
	case token.Gt:
		p.advance()
		return true
	case token.Shr, token.GtEq:
		rest := token.Gt
		if tok.Kind == token.GtEq {
			rest = token.Assign
		}
		tok.Span.Start++
		tok.Kind = rest
		tok.Text = tok.Text[1:]
		p.toks[p.pos] = tok
		return true
	default:
		return p.fail(diag.SynUnexpectedToken, "expected '>'")
	}
}

// fail records the first error and returns false so callers can
// `return nil, p.fail(...)`.
func (p *Parser) fail(code diag.Code, msg string) bool {
	if p.trying > 0 || p.err != nil {
		return false
	}
	tok := p.peek()
	if tok.Kind == token.EOF {
		msg += ", found end of file"
	} else if tok.Text != "" {
		msg += fmt.Sprintf(", found '%s'", tok.Text)
	} else {
		msg += fmt.Sprintf(", found '%s'", tok.Kind)
	}
	p.err = diag.NewParserError(p.loc(tok.Span), code, msg)
	return false
}

func (p *Parser) error() error {
	if p.err != nil {
		return p.err
	}
	return diag.NewParserError(p.loc(p.peek().Span), diag.SynUnexpectedToken, "unexpected token")
}

func (p *Parser) mark() mark { return mark{pos: p.pos, tok: p.toks[p.pos]} }

// reset rewinds to m and undoes any token splits made since.
func (p *Parser) reset(m mark) {
	end := min(p.pos+1, len(p.toks))
	copy(p.toks[m.pos:end], p.orig[m.pos:end])
	p.toks[m.pos] = m.tok
	p.pos = m.pos
}

// try runs fn speculatively. On failure the position is rewound and no
// error is recorded.
func try[T any](p *Parser, fn func() (T, bool)) (T, bool) {
	m := p.mark()
	p.trying++
	v, ok := fn()
	p.trying--
	if !ok {
		p.reset(m)
	}
	return v, ok
}

// lookahead reports whether fn succeeds and always rewinds.
func (p *Parser) lookahead(fn func() bool) bool {
	m := p.mark()
	p.trying++
	ok := fn()
	p.trying--
	p.reset(m)
	return ok
}

func (p *Parser) loc(sp source.Span) source.CodeLoc {
	return p.fs.Loc(sp)
}

func (p *Parser) here() (source.Span, source.CodeLoc) {
	sp := p.peek().Span
	return sp, p.loc(sp)
}

// spanFrom covers everything from start up to the last consumed token.
func (p *Parser) spanFrom(start source.Span) source.Span {
	if p.pos == 0 {
		return start
	}
	return start.Cover(p.toks[p.pos-1].Span)
}

func (p *Parser) text(sp source.Span) string {
	return string(p.file.Content[sp.Start:sp.End])
}

// withStructLit runs fn with struct literals enabled or disabled.
func withStructLit[T any](p *Parser, allowed bool, fn func() (T, bool)) (T, bool) {
	saved := p.noStructLit
	p.noStructLit = !allowed
	v, ok := fn()
	p.noStructLit = saved
	return v, ok
}
