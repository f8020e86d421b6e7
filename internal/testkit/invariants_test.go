package testkit

import (
	"path/filepath"
	"testing"

	"spice/internal/ast"
	"spice/internal/parser"
	"spice/internal/source"
)

func TestTestdataProgramsKeepSpanInvariants(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "testdata", "programs", "*.spice"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Skip("no testdata programs")
	}
	for _, path := range paths {
		fs := source.NewFileSet()
		id, err := fs.Load(path, 0)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		f, err := parser.ParseFile(fs, id, nil)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if err := CheckSpanInvariants(f, fs.Get(id)); err != nil {
			t.Errorf("%s: %v", path, err)
		}
	}
}

func TestSpanInvariantsRejectOutOfOrderDecls(t *testing.T) {
	src := "f<int> a() { return 1; }\nf<int> b() { return 2; }\n"
	fs := source.NewFileSet()
	id := fs.AddVirtual("order.spice", []byte(src))
	f, err := parser.ParseFile(fs, id, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := CheckSpanInvariants(f, fs.Get(id)); err != nil {
		t.Fatalf("valid file rejected: %v", err)
	}
	f.Decls[0], f.Decls[1] = f.Decls[1], f.Decls[0]
	if err := CheckSpanInvariants(f, fs.Get(id)); err == nil {
		t.Fatalf("swapped declarations should fail")
	}
}

func TestSpanInvariantsNil(t *testing.T) {
	if err := CheckSpanInvariants(nil, nil); err == nil {
		t.Fatalf("nil input should fail")
	}
	if err := CheckSpanInvariants(&ast.File{}, &source.File{}); err != nil {
		t.Fatalf("empty file should pass: %v", err)
	}
}
