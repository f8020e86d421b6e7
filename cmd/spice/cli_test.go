package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"spice/internal/buildpipeline"
	"spice/internal/diag"
	"spice/internal/driver"
	"spice/internal/layout"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Bool("quiet", false, "")
	cmd.Flags().Bool("timings", false, "")
	cmd.Flags().String("target", "", "")
	cmd.Flags().Int("max-runs", 0, "")
	cmd.Flags().String("output", "", "")
	return cmd
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("readUIMode(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("readUIMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if !shouldUseTUI(uiModeOn, true) || shouldUseTUI(uiModeOff, false) {
		t.Fatalf("explicit modes must win")
	}
}

func TestColorEnabled(t *testing.T) {
	if on, err := colorEnabled("on", os.Stderr); err != nil || !on {
		t.Fatalf("on: %v %v", on, err)
	}
	if on, err := colorEnabled("off", os.Stderr); err != nil || on {
		t.Fatalf("off: %v %v", on, err)
	}
	if _, err := colorEnabled("rainbow", os.Stderr); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
	t.Setenv("NO_COLOR", "1")
	if on, _ := colorEnabled("auto", os.Stderr); on {
		t.Fatalf("NO_COLOR must disable auto color")
	}
}

func TestResolveTarget(t *testing.T) {
	got, err := resolveTarget("")
	if err != nil || got.Triple != layout.DefaultTriple {
		t.Fatalf("default target = %q, %v", got.Triple, err)
	}
	got, err = resolveTarget("aarch64-unknown-linux-gnu")
	if err != nil || got.Arch != layout.ArchAArch64 {
		t.Fatalf("aarch64: %+v, %v", got, err)
	}
	_, err = resolveTarget("sparc-sun-solaris")
	if code, ok := diag.KindOf(err); !ok || code != diag.CmpTargetNotAvailable {
		t.Fatalf("expected CmpTargetNotAvailable, got %v", err)
	}
}

func TestLoadSettingsFromManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "spice.toml"), `
[package]
name = "demo"
main = "src/main.spice"

[build]
target = "arm64-apple-darwin"
output_dir = "out"
max_runs = 7
warnings_as_errors = true
`)
	writeFile(t, filepath.Join(dir, "src", "main.spice"), "f<int> main() { return 0; }\n")

	cmd := newSettingsCmd()
	s, err := loadSettings(cmd, []string{filepath.Join(dir, "src", "main.spice")})
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if s.target.Triple != "arm64-apple-darwin" {
		t.Errorf("target = %q", s.target.Triple)
	}
	if s.maxRuns != 7 || !s.warningsAsErrors {
		t.Errorf("manifest build settings not applied: %+v", s)
	}
	if s.outputDir != filepath.Join(dir, "out") {
		t.Errorf("outputDir = %q", s.outputDir)
	}

	if err := cmd.Flags().Set("target", "i686-pc-linux-gnu"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("max-runs", "3"); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("output", "elsewhere"); err != nil {
		t.Fatal(err)
	}
	s, err = loadSettings(cmd, []string{filepath.Join(dir, "src", "main.spice")})
	if err != nil {
		t.Fatalf("loadSettings with flags: %v", err)
	}
	if s.target.Triple != "i686-pc-linux-gnu" || s.maxRuns != 3 || s.outputDir != "elsewhere" {
		t.Errorf("flags must override the manifest: %+v", s)
	}
}

func TestLoadSettingsWithoutEntry(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := loadSettings(newSettingsCmd(), nil); err == nil {
		t.Fatalf("expected an error without input file or manifest")
	}
	if _, err := loadSettings(newSettingsCmd(), []string{"main.txt"}); err == nil {
		t.Fatalf("expected an error for a non-.spice file")
	}
}

func TestRelevantEvents(t *testing.T) {
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "/p/main.spice", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/p/spice.toml", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/p/main.spice", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/p/main.ll", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := relevant(tt.ev); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
}

func TestWatchDirsIncludesImports(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.spice")
	lib := filepath.Join(dir, "lib", "util.spice")
	res := buildpipeline.Result{Compile: &driver.Result{Files: []*driver.File{{Path: lib}, {Path: entry}}}}
	dirs := watchDirs(&settings{entry: entry}, res)
	if len(dirs) != 2 || dirs[0] != dir || dirs[1] != filepath.Join(dir, "lib") {
		t.Fatalf("watchDirs = %v", dirs)
	}
}

func TestPrintModules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib.spice"), "public f<int> one() { return 1; }\n")
	entry := filepath.Join(dir, "main.spice")
	writeFile(t, entry, "import \"lib\" as lib;\nf<int> main() { return lib.one(); }\n")

	res, err := driver.Compile(context.Background(), entry, driver.Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var buf bytes.Buffer
	if err := printModules(&buf, res, false); err != nil {
		t.Fatalf("printModules: %v", err)
	}
	if !strings.Contains(buf.String(), "define i32 @main()") || strings.Contains(buf.String(), "; file:") {
		t.Fatalf("unexpected entry output:\n%s", buf.String())
	}
	buf.Reset()
	if err := printModules(&buf, res, true); err != nil {
		t.Fatalf("printModules --all: %v", err)
	}
	if strings.Count(buf.String(), "; file:") != 2 {
		t.Fatalf("expected both modules:\n%s", buf.String())
	}
}

func TestPrintWarningsAsErrors(t *testing.T) {
	bag := diag.NewBag(0)
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.WarnUnusedVariable, Message: "x is unused"})
	var buf bytes.Buffer
	if err := printWarnings(&buf, bag, nil, false); err != nil {
		t.Fatalf("plain warnings must not fail: %v", err)
	}
	if !strings.Contains(buf.String(), "x is unused") {
		t.Fatalf("warning not printed: %q", buf.String())
	}
	err := printWarnings(&bytes.Buffer{}, bag, nil, true)
	if err == nil || !reported(err) {
		t.Fatalf("expected a reported error, got %v", err)
	}
}
