package lexer

import (
	"errors"
	"testing"

	"spice/internal/diag"
	"spice/internal/source"
	"spice/internal/token"
)

func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.spice", []byte(src))
	toks, err := Tokenize(fs, fs.Get(id))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexFunctionHeader(t *testing.T) {
	toks := lex(t, "f<int> main() { return 0; }")
	want := []token.Kind{
		token.KwF, token.Lt, token.KwInt, token.Gt, token.Ident, token.LParen, token.RParen,
		token.LBrace, token.KwReturn, token.IntLit, token.Semicolon, token.RBrace, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexOperatorsPreferLongest(t *testing.T) {
	toks := lex(t, "a <<= b >> c ... d->")
	got := kinds(toks)
	// "->" is not an operator: it lexes as '-' '>'
	want := []token.Kind{token.Ident, token.ShlAssign, token.Ident, token.Shr, token.Ident, token.Ellipsis, token.Ident, token.Minus, token.Gt, token.EOF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexNumberSuffixes(t *testing.T) {
	toks := lex(t, "5s 7l 0x1F 3.25 1.5e3 0b101")
	cases := []struct {
		kind token.Kind
		text string
	}{
		{token.IntLit, "5s"},
		{token.IntLit, "7l"},
		{token.IntLit, "0x1F"},
		{token.DoubleLit, "3.25"},
		{token.DoubleLit, "1.5e3"},
		{token.IntLit, "0b101"},
	}
	for i, tc := range cases {
		if toks[i].Kind != tc.kind || toks[i].Text != tc.text {
			t.Errorf("token %d: got %s %q, want %s %q", i, toks[i].Kind, toks[i].Text, tc.kind, tc.text)
		}
	}
}

func TestLexSkipsComments(t *testing.T) {
	toks := lex(t, "// line\nint /* block\n comment */ x;")
	got := kinds(toks)
	want := []token.Kind{token.KwInt, token.Ident, token.Semicolon, token.EOF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexStringAndChar(t *testing.T) {
	toks := lex(t, `"a\"b" '\n' 'x'`)
	if toks[0].Kind != token.StringLit || toks[0].Text != `"a\"b"` {
		t.Fatalf("string: %v", toks[0])
	}
	if toks[1].Kind != token.CharLit || toks[2].Kind != token.CharLit {
		t.Fatalf("chars: %v %v", toks[1], toks[2])
	}
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
	}{
		{`"open`, diag.LexUnterminatedString},
		{"/* never closed", diag.LexUnterminatedBlock},
		{"int $x;", diag.LexUnknownChar},
		{"12abc", diag.LexBadNumber},
	}
	for _, tc := range cases {
		fs := source.NewFileSet()
		id := fs.AddVirtual("bad.spice", []byte(tc.src))
		_, err := Tokenize(fs, fs.Get(id))
		var pe *diag.ParserError
		if !errors.As(err, &pe) || pe.Code != tc.code {
			t.Errorf("%q: expected %v, got %v", tc.src, tc.code, err)
		}
	}
}
