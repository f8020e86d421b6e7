package dag

import (
	"errors"
	"testing"

	"spice/internal/diag"
	"spice/internal/project"
	"spice/internal/source"
)

func idsToPaths(idx Index, ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToPath[int(id)]
	}
	return out
}

func imports(paths ...string) []project.ImportMeta {
	out := make([]project.ImportMeta, len(paths))
	for i, p := range paths {
		out[i] = project.ImportMeta{Written: p, Path: p, Loc: source.CodeLoc{Path: "x", Line: uint32(i + 1), Col: 1}}
	}
	return out
}

func TestBuildIndexIncludesImports(t *testing.T) {
	metas := []project.FileMeta{
		{Path: "main.spice", Imports: imports("math.spice", "util.spice")},
		{Path: "util.spice"},
	}
	idx := BuildIndex(metas)
	want := []string{"main.spice", "math.spice", "util.spice"}
	if len(idx.IDToPath) != len(want) {
		t.Fatalf("unexpected file count: %d", len(idx.IDToPath))
	}
	for i, p := range want {
		if idx.IDToPath[i] != p {
			t.Fatalf("IDToPath[%d] = %q, want %q", i, idx.IDToPath[i], p)
		}
		if id := idx.PathToID[p]; int(id) != i {
			t.Fatalf("PathToID[%q] = %d, want %d", p, id, i)
		}
	}
}

func TestBuildGraphMissingImport(t *testing.T) {
	metas := []project.FileMeta{
		{Path: "main.spice", Imports: imports("lib.spice")},
	}
	_, _, err := BuildGraph(BuildIndex(metas), metas)
	var serr *diag.SemanticError
	if !errors.As(err, &serr) || serr.Kind() != diag.SemImportedFileNotExisting {
		t.Fatalf("expected missing import error, got %v", err)
	}
	if serr.Loc().Line != 1 {
		t.Fatalf("error should point at the import, got %s", serr.Loc())
	}
}

func TestBuildGraphSelfImport(t *testing.T) {
	metas := []project.FileMeta{
		{Path: "main.spice", Imports: imports("main.spice")},
	}
	_, _, err := BuildGraph(BuildIndex(metas), metas)
	var serr *diag.SemanticError
	if !errors.As(err, &serr) || serr.Kind() != diag.SemCircularDependency {
		t.Fatalf("expected circular dependency, got %v", err)
	}
}

func TestLevelsPutImportsFirst(t *testing.T) {
	metas := []project.FileMeta{
		{Path: "main.spice", Imports: imports("a.spice", "b.spice")},
		{Path: "a.spice", Imports: imports("b.spice")},
		{Path: "b.spice"},
		{Path: "c.spice"},
	}
	idx := BuildIndex(metas)
	g, slots, err := BuildGraph(idx, metas)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}
	if err := CycleError(idx, slots, topo); err != nil {
		t.Fatalf("unexpected cycle error: %v", err)
	}
	levels := topo.Levels()
	want := [][]string{{"b.spice"}, {"a.spice"}, {"c.spice", "main.spice"}}
	if len(levels) != len(want) {
		t.Fatalf("levels = %v", levels)
	}
	for i := range want {
		got := idsToPaths(idx, levels[i])
		if len(got) != len(want[i]) {
			t.Fatalf("level %d = %v, want %v", i, got, want[i])
		}
		for j := range got {
			if got[j] != want[i][j] {
				t.Fatalf("level %d = %v, want %v", i, got, want[i])
			}
		}
	}
}

func TestCycleError(t *testing.T) {
	metas := []project.FileMeta{
		{Path: "main.spice", Imports: imports("a.spice")},
		{Path: "a.spice", Imports: imports("b.spice")},
		{Path: "b.spice", Imports: imports("a.spice")},
	}
	idx := BuildIndex(metas)
	g, slots, err := BuildGraph(idx, metas)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	topo := ToposortKahn(g)
	if !topo.Cyclic || len(topo.Cycles) != 2 {
		t.Fatalf("expected a two file cycle, got %+v", topo)
	}
	err = CycleError(idx, slots, topo)
	var serr *diag.SemanticError
	if !errors.As(err, &serr) || serr.Kind() != diag.SemCircularDependency {
		t.Fatalf("expected circular dependency, got %v", err)
	}
}
