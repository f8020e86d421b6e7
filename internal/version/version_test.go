package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersionDefaults(t *testing.T) {
	if Version == "" {
		t.Fatal("Version should have a default value")
	}
	_ = GitCommit
	_ = BuildDate
}

func TestColoredWithoutTerminal(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	tests := []struct {
		version string
		want    string
	}{
		{"1.2.3", "1.2.3"},
		{"0.1.0-dev", "0.1.0-dev"},
		{"unknown", "unknown"},
	}
	orig := Version
	defer func() { Version = orig }()
	for _, tt := range tests {
		Version = tt.version
		if got := Colored(); got != tt.want {
			t.Errorf("Colored() with %q = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	orig := Version
	defer func() { Version = orig }()
	Version = "1.2.3"
	if got := Colored(); got == "1.2.3" {
		t.Fatalf("expected colored output, got plain %q", got)
	}
}
