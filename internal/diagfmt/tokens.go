package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"spice/internal/source"
	"spice/internal/token"
)

type TokenOutput struct {
	Kind  string       `json:"kind"`
	Text  string       `json:"text,omitempty"`
	Start LocationJSON `json:"start"`
	End   LocationJSON `json:"end"`
}

// FormatTokensPretty prints one token per line with its source range.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	for i, tok := range tokens {
		start, end := fs.Resolve(tok.Span)
		if _, err := fmt.Fprintf(w, "%3d: %-15s", i+1, tok.Kind.String()); err != nil {
			return err
		}
		if tok.Text != "" {
			fmt.Fprintf(w, " %q", tok.Text)
		}
		fmt.Fprintf(w, " at %d:%d-%d:%d\n", start.Line, start.Col, end.Line, end.Col)
		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}

// FormatTokensJSON writes the tokens as an indented JSON array.
func FormatTokensJSON(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		start, end := fs.Resolve(tok.Span)
		path := fs.Get(tok.Span.File).Path
		output = append(output, TokenOutput{
			Kind:  tok.Kind.String(),
			Text:  tok.Text,
			Start: LocationJSON{File: path, Line: start.Line, Col: start.Col},
			End:   LocationJSON{File: path, Line: end.Line, Col: end.Col},
		})
		if tok.Kind == token.EOF {
			break
		}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
