package buildpipeline

import (
	"context"
	"sync"
	"time"

	"spice/internal/driver"
)

// Request describes one build.
type Request struct {
	Entry string
	// OutputDir receives the .ll files. Empty skips writing.
	OutputDir string
	Options   driver.Options
	Progress  ProgressSink
}

// Result is a finished build.
type Result struct {
	Compile *driver.Result
	Outputs []string
	Timings Timings
}

// Build compiles req.Entry and writes its modules. Per-file progress and
// stage timings are derived from the driver's phase events.
func Build(ctx context.Context, req *Request) (Result, error) {
	var (
		mu      sync.Mutex
		timings Timings
	)
	opts := req.Options
	user := opts.Observer
	opts.Observer = func(ev driver.PhaseEvent) {
		if user != nil {
			user(ev)
		}
		stage := Stage(ev.Name)
		status := StatusWorking
		if ev.Status == driver.PhaseEnd {
			status = StatusDone
			if ev.Err != nil {
				status = StatusError
			}
			mu.Lock()
			timings.Add(stage, ev.Elapsed)
			mu.Unlock()
		}
		emit(req.Progress, Event{File: ev.Path, Stage: stage, Status: status, Err: ev.Err, Elapsed: ev.Elapsed})
	}

	res, err := driver.Compile(ctx, req.Entry, opts)
	if err != nil {
		emit(req.Progress, Event{Status: StatusError, Err: err})
		return Result{Timings: timings}, err
	}
	out := Result{Compile: res, Timings: timings}
	if req.OutputDir == "" || opts.SkipIR {
		emit(req.Progress, Event{Stage: StageAnalyze, Status: StatusDone})
		return out, nil
	}

	emit(req.Progress, Event{Stage: StageWrite, Status: StatusWorking})
	began := time.Now()
	out.Outputs, err = res.WriteIR(req.OutputDir)
	out.Timings.Add(StageWrite, time.Since(began))
	if err != nil {
		emit(req.Progress, Event{Stage: StageWrite, Status: StatusError, Err: err})
		return out, err
	}
	emit(req.Progress, Event{Stage: StageWrite, Status: StatusDone, Elapsed: time.Since(began)})
	return out, nil
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
