package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"spice/internal/buildpipeline"
)

func newTestModel(files ...string) *progressModel {
	return NewProgressModel("build main.spice", files, nil).(*progressModel)
}

func TestApplyEventAddsUnknownFiles(t *testing.T) {
	m := newTestModel("main.spice")
	m.applyEvent(buildpipeline.Event{File: "lib.spice", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusWorking})
	if len(m.items) != 2 {
		t.Fatalf("expected lib.spice to be added, got %d items", len(m.items))
	}
	if m.items[1].status != "parsing" {
		t.Fatalf("status = %q, want parsing", m.items[1].status)
	}
}

func TestPercentFollowsStages(t *testing.T) {
	m := newTestModel("a.spice", "b.spice")
	if m.percent() != 0 {
		t.Fatalf("queued files should be at zero, got %v", m.percent())
	}
	m.applyEvent(buildpipeline.Event{File: "a.spice", Stage: buildpipeline.StageGenerate, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{File: "b.spice", Stage: buildpipeline.StageAnalyze, Status: buildpipeline.StatusWorking})
	if got, want := m.percent(), (1.0+0.5)/2; got != want {
		t.Fatalf("percent = %v, want %v", got, want)
	}
	if m.items[0].status != "done" || m.items[1].status != "analyzing" {
		t.Fatalf("unexpected statuses %+v", m.items)
	}
}

func TestPipelineEventsSetHeader(t *testing.T) {
	m := newTestModel("main.spice")
	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageWrite, Status: buildpipeline.StatusWorking})
	if !strings.Contains(m.View(), "(writing)") {
		t.Fatalf("header should show the pipeline stage:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short.spice", 20); got != "short.spice" {
		t.Fatalf("short names must stay intact, got %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Fatalf("zero width disables truncation, got %q", got)
	}
	for _, in := range []string{"a/very/long/path/main.spice", "日本語/日本語/main.spice"} {
		got := truncate(in, 12)
		if runewidth.StringWidth(got) > 12 || !strings.HasSuffix(got, "...") {
			t.Errorf("truncate(%q, 12) = %q", in, got)
		}
	}
}

func TestQueuedFilesHaveNoStage(t *testing.T) {
	m := newTestModel("a.spice", "b.spice")
	for _, item := range m.items {
		if item.stage != "" || item.status != "queued" {
			t.Fatalf("fresh item %+v should be queued without a stage", item)
		}
		if progressFromStage(item.stage) != 0 {
			t.Fatalf("queued item %s counts as progress", item.path)
		}
	}
}
