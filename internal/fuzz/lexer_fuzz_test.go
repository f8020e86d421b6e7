package fuzztests

import (
	"testing"

	"spice/internal/lexer"
	"spice/internal/source"
	"spice/internal/token"
)

const maxFuzzInput = 1 << 16

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.spice", input))

		toks, err := lexer.Tokenize(fs, file)
		if err != nil {
			return
		}
		if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
			t.Fatalf("token stream does not end with EOF")
		}
		for i, tok := range toks {
			if tok.Span.End < tok.Span.Start || int(tok.Span.End) > len(file.Content) {
				t.Fatalf("token %d has span %v outside the %d byte input", i, tok.Span, len(file.Content))
			}
		}
	})
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
