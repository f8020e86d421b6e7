package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"spice/internal/lexer"
	"spice/internal/source"
)

func TestFormatTokens(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.spice", []byte("int x = 5;\n"))
	toks, err := lexer.Tokenize(fs, fs.Get(id))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	var pretty bytes.Buffer
	if err := FormatTokensPretty(&pretty, toks, fs); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(pretty.String(), `"x" at 1:5-1:6`) {
		t.Fatalf("unexpected pretty output:\n%s", pretty.String())
	}

	var raw bytes.Buffer
	if err := FormatTokensJSON(&raw, toks, fs); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(raw.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != len(toks) {
		t.Fatalf("expected %d tokens, got %d", len(toks), len(out))
	}
	if out[1].Text != "x" || out[1].Start.Line != 1 || out[1].Start.Col != 5 {
		t.Fatalf("unexpected identifier token %+v", out[1])
	}
}
