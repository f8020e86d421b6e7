package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"spice/internal/diag"
)

const libSrc = `
public type Counter struct { public int value; }
public f<int> Counter.get() { return this.value; }
public Counter counter;
`

const mainSrc = `
import "lib" as lib;
f<int> main() {
	return lib.counter.get();
}
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestCompileImportsBeforeImporters(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.spice": mainSrc, "lib.spice": libSrc})
	res, err := Compile(context.Background(), filepath.Join(dir, "main.spice"), Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(res.Files) != 2 {
		t.Fatalf("expected two files, got %d", len(res.Files))
	}
	if filepath.Base(res.Files[0].Path) != "lib.spice" || filepath.Base(res.Files[1].Path) != "main.spice" {
		t.Fatalf("wrong order: %s, %s", res.Files[0].Path, res.Files[1].Path)
	}
	if res.Main != res.Files[1] || !res.Main.Primary || res.Files[0].Primary {
		t.Fatalf("entry file should be the only primary file")
	}
	if len(res.Modules) != 2 {
		t.Fatalf("expected a module per file, got %d", len(res.Modules))
	}
	mainIR := res.Modules[res.Main.Path].String()
	if !strings.Contains(mainIR, "define i32 @main") {
		t.Fatalf("main not defined:\n%s", mainIR)
	}
	if !strings.Contains(mainIR, "declare") {
		t.Fatalf("imported method should be declared in main:\n%s", mainIR)
	}
	if res.Files[0].Meta.Hash == res.Files[1].Meta.Hash {
		t.Fatalf("files should hash differently")
	}
}

func TestCompileMissingEntry(t *testing.T) {
	_, err := Compile(context.Background(), filepath.Join(t.TempDir(), "nope.spice"), Options{})
	var cerr *diag.CompilerError
	if !errors.As(err, &cerr) || cerr.Kind() != diag.CmpSourceFileNotFound {
		t.Fatalf("expected source file not found, got %v", err)
	}
}

func TestCompileMissingImport(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.spice": mainSrc})
	_, err := Compile(context.Background(), filepath.Join(dir, "main.spice"), Options{})
	var serr *diag.SemanticError
	if !errors.As(err, &serr) || serr.Kind() != diag.SemImportedFileNotExisting {
		t.Fatalf("expected missing import error, got %v", err)
	}
	if serr.Loc().Line != 2 {
		t.Fatalf("error should point at the import line, got %s", serr.Loc())
	}
}

func TestCompileImportCycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.spice": "import \"a\" as a;\nf<int> main() { return 0; }\n",
		"a.spice":    "import \"b\" as b;\n",
		"b.spice":    "import \"a\" as a;\n",
	})
	_, err := Compile(context.Background(), filepath.Join(dir, "main.spice"), Options{})
	var serr *diag.SemanticError
	if !errors.As(err, &serr) || serr.Kind() != diag.SemCircularDependency {
		t.Fatalf("expected circular dependency, got %v", err)
	}
}

func TestCompileCheckOnly(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.spice": mainSrc, "lib.spice": libSrc})
	res, err := Compile(context.Background(), filepath.Join(dir, "main.spice"), Options{SkipIR: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(res.Modules) != 0 {
		t.Fatalf("no IR expected, got %d modules", len(res.Modules))
	}
	if res.Main.Sema == nil || res.Main.Sema.Main == nil {
		t.Fatalf("entry should be analyzed")
	}
}

func TestCompileWarningsOfEntryOnly(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.spice": "import \"lib\" as lib;\nf<int> main() { int unused = 1; return lib.counter.get(); }\n",
		"lib.spice":  libSrc + "f<int> helper() { return 1; }\n",
	})
	bag := diag.NewBag(0)
	_, err := Compile(context.Background(), filepath.Join(dir, "main.spice"), Options{
		Reporter: diag.BagReporter{Bag: bag},
		SkipIR:   true,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, d := range bag.Items() {
		if filepath.Base(d.Loc.Path) != "main.spice" {
			t.Fatalf("warning from an imported file leaked: %v", d)
		}
	}
	if !bag.HasWarnings() {
		t.Fatalf("expected the unused variable warning")
	}
}

func TestCompileUsesCache(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.spice": mainSrc, "lib.spice": libSrc})
	cache, err := NewCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	entry := filepath.Join(dir, "main.spice")
	first, err := Compile(context.Background(), entry, Options{Cache: cache})
	if err != nil {
		t.Fatalf("first compile: %v", err)
	}
	if first.CacheHits() != 0 {
		t.Fatalf("cold cache reported %d hits", first.CacheHits())
	}
	second, err := Compile(context.Background(), entry, Options{Cache: cache})
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}
	if second.CacheHits() != 2 {
		t.Fatalf("expected both modules from cache, got %d", second.CacheHits())
	}
	if first.BuildID == second.BuildID {
		t.Fatalf("every compilation needs its own build id")
	}
	if got := second.Modules[second.Main.Path]; got == nil || len(got.Funcs) == 0 {
		t.Fatalf("cached module is empty")
	}

	if err := os.WriteFile(filepath.Join(dir, "lib.spice"), []byte(libSrc+"public int extra = 2;\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	third, err := Compile(context.Background(), entry, Options{Cache: cache})
	if err != nil {
		t.Fatalf("third compile: %v", err)
	}
	if third.CacheHits() != 0 {
		t.Fatalf("changing an import must invalidate its importers, got %d hits", third.CacheHits())
	}
}

func TestCompileReportsPhases(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.spice": mainSrc, "lib.spice": libSrc})
	var mu sync.Mutex
	ends := map[string]int{}
	_, err := Compile(context.Background(), filepath.Join(dir, "main.spice"), Options{
		Observer: func(ev PhaseEvent) {
			if ev.Status != PhaseEnd {
				return
			}
			mu.Lock()
			ends[ev.Name]++
			mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, phase := range []string{"parse", "analyze", "generate"} {
		if ends[phase] != 2 {
			t.Fatalf("phase %s ended %d times, want 2", phase, ends[phase])
		}
	}
}

func TestCompileCanceled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.spice": mainSrc, "lib.spice": libSrc})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Compile(ctx, filepath.Join(dir, "main.spice"), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWriteIR(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.spice": mainSrc, "lib.spice": libSrc})
	res, err := Compile(context.Background(), filepath.Join(dir, "main.spice"), Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	out := filepath.Join(t.TempDir(), "build")
	paths, err := res.WriteIR(out)
	if err != nil {
		t.Fatalf("WriteIR: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "lib.ll" || filepath.Base(paths[1]) != "main.ll" {
		t.Fatalf("unexpected outputs %v", paths)
	}
	data, err := os.ReadFile(paths[1])
	if err != nil || !strings.Contains(string(data), "@main") {
		t.Fatalf("main.ll not written correctly: %v", err)
	}
}
