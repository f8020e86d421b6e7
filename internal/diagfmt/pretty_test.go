package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"spice/internal/diag"
	"spice/internal/source"
)

func TestPrettyWarningWithSnippet(t *testing.T) {
	fs := source.NewFileSet()
	fs.AddVirtual("/proj/src/main.spice", []byte("f<int> main() {\n  int unused = 1;\n}\n"))

	items := []diag.Diagnostic{{
		Severity: diag.SevWarning,
		Code:     diag.WarnUnusedVariable,
		Message:  "The variable 'unused' is unused",
		Loc:      source.CodeLoc{Path: "/proj/src/main.spice", Line: 2, Col: 7},
	}}
	var buf bytes.Buffer
	Pretty(&buf, items, fs, PrettyOpts{PathMode: PathModeBasename, Snippet: true})
	out := buf.String()

	if !strings.Contains(out, "Warning[WRN6005] at main.spice:2:7: Unused variable: The variable 'unused' is unused") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "   2 |   int unused = 1;") {
		t.Fatalf("missing snippet:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	caret := lines[len(lines)-1]
	if strings.Index(caret, "^") != len("   2 | ")+6 {
		t.Fatalf("caret misplaced: %q", caret)
	}
}

func TestCaretPadWideRunes(t *testing.T) {
	// "日" occupies two terminal cells and three bytes.
	line := "日x"
	if got := caretPad(line, 4); got != "  " {
		t.Fatalf("got %q", got)
	}
	if got := caretPad("\tx", 2); got != "\t" {
		t.Fatalf("tabs must be preserved, got %q", got)
	}
}

func TestPrettyErrorInternal(t *testing.T) {
	var buf bytes.Buffer
	PrettyError(&buf, diag.NewIRError(source.CodeLoc{}, diag.IRInvalidModule, "dangling branch"), nil, PrettyOpts{})
	if got := strings.TrimSpace(buf.String()); got != "internal compiler error: Invalid module: dangling branch" {
		t.Fatalf("got %q", got)
	}
}

func TestJSONIncludesFatal(t *testing.T) {
	var buf bytes.Buffer
	fatal := diag.NewSemanticError(source.CodeLoc{Path: "a.spice", Line: 1, Col: 2}, diag.SemMissingMainFunction, "No main function found")
	if err := JSON(&buf, nil, fatal, JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Error == nil || out.Error.Code != "SEM3024" || out.Error.Location.Line != 1 {
		t.Fatalf("unexpected fatal entry: %+v", out.Error)
	}
}
