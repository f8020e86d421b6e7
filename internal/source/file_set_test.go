package source

import "testing"

func TestFileSetLocResolvesLineAndColumn(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("main.spice", []byte("f<int> main() {\n  int x = 1;\n}\n"))

	loc := fs.Loc(Span{File: id, Start: 18, End: 21})
	if loc.Line != 2 || loc.Col != 3 {
		t.Fatalf("expected 2:3, got %d:%d", loc.Line, loc.Col)
	}
	if loc.String() != "main.spice:2:3" {
		t.Fatalf("unexpected pretty location %q", loc.String())
	}
	if loc.Key() != "L2C3" {
		t.Fatalf("unexpected scope key %q", loc.Key())
	}
}

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()
	id1 := fs.Add("a.spice", []byte("one"), 0)
	id2 := fs.Add("a.spice", []byte("two"), 0)
	if id1 == id2 {
		t.Fatalf("expected a fresh id for the second add")
	}
	latest, ok := fs.GetLatest("a.spice")
	if !ok || latest != id2 {
		t.Fatalf("expected latest id %d, got %d (ok=%v)", id2, latest, ok)
	}
	if string(fs.Get(id1).Content) != "one" {
		t.Fatalf("old version must stay readable")
	}
}

func TestAddNormalizedStripsBOMAndCRLF(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddNormalized("w.spice", []byte("\xEF\xBB\xBFa\r\nb\r\n"), FileImported)
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if f.IsPrimary() {
		t.Fatalf("imported file must not be primary")
	}
	if f.GetLine(2) != "b" {
		t.Fatalf("unexpected line 2 %q", f.GetLine(2))
	}
}
