package observ

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestTimerPhases(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("parse")
	tm.End(idx, "3 files")
	if err := tm.Track("analyze", func() error { return errors.New("boom") }); err == nil {
		t.Fatal("Track must return the phase error")
	}
	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("expected two phases, got %d", len(rep.Phases))
	}
	if rep.Phases[0].Note != "3 files" || rep.Phases[1].Note != "failed" {
		t.Fatalf("unexpected notes: %+v", rep.Phases)
	}
	sum := tm.Summary()
	for _, want := range []string{"parse", "analyze", "total", "// 3 files"} {
		if !strings.Contains(sum, want) {
			t.Fatalf("summary misses %q:\n%s", want, sum)
		}
	}
}

func TestTimerIgnoresBadIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "x")
	if len(tm.Report().Phases) != 0 {
		t.Fatal("End with an unknown index must not add phases")
	}
	var nilTimer *Timer
	nilTimer.End(nilTimer.Begin("x"), "")
	if nilTimer.Report().TotalMS != 0 {
		t.Fatal("nil timer should report nothing")
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("generate"), "")
		}()
	}
	wg.Wait()
	if got := len(tm.Report().Phases); got != 8 {
		t.Fatalf("expected 8 phases, got %d", got)
	}
}
