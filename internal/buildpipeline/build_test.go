package buildpipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeMain(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.spice")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildWritesModulesAndReportsProgress(t *testing.T) {
	entry := writeMain(t, "f<int> main() { printf(\"hi\\n\"); return 0; }\n")
	out := filepath.Join(t.TempDir(), "out")

	var mu sync.Mutex
	var events []Event
	res, err := Build(context.Background(), &Request{
		Entry:     entry,
		OutputDir: out,
		Progress: FuncSink(func(ev Event) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		}),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Outputs) != 1 || filepath.Base(res.Outputs[0]) != "main.ll" {
		t.Fatalf("unexpected outputs %v", res.Outputs)
	}
	for _, stage := range Stages {
		if !res.Timings.Has(stage) {
			t.Errorf("no timing for %s", stage)
		}
	}

	done := map[Stage]bool{}
	for _, ev := range events {
		if ev.File != "" && ev.Status == StatusDone {
			done[ev.Stage] = true
		}
	}
	for _, stage := range []Stage{StageParse, StageAnalyze, StageGenerate} {
		if !done[stage] {
			t.Errorf("no per-file done event for %s", stage)
		}
	}
	last := events[len(events)-1]
	if last.Stage != StageWrite || last.Status != StatusDone {
		t.Fatalf("last event = %+v, want write done", last)
	}
}

func TestBuildReportsFailure(t *testing.T) {
	entry := writeMain(t, "f<int> main() { return undefinedVar; }\n")
	var got []Event
	_, err := Build(context.Background(), &Request{
		Entry:    entry,
		Progress: FuncSink(func(ev Event) { got = append(got, ev) }),
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	last := got[len(got)-1]
	if last.Status != StatusError || last.Err == nil {
		t.Fatalf("last event = %+v, want an error", last)
	}
}

func TestTimingsAccumulate(t *testing.T) {
	var tm Timings
	tm.Add(StageParse, 2)
	tm.Add(StageParse, 3)
	tm.Add(StageAnalyze, 4)
	if tm.Duration(StageParse) != 5 {
		t.Fatalf("parse = %v, want 5", tm.Duration(StageParse))
	}
	if tm.Sum(StageParse, StageAnalyze, StageWrite) != 9 {
		t.Fatalf("sum = %v, want 9", tm.Sum(StageParse, StageAnalyze, StageWrite))
	}
	if tm.Has(StageWrite) {
		t.Fatal("write was never recorded")
	}
}
