package main

import (
	"fmt"
	"io"
	"time"

	"spice/internal/buildpipeline"
	"spice/internal/observ"
)

// printStageTimings prints the time spent per stage, summed over files.
func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	for _, stage := range buildpipeline.Stages {
		if !timings.Has(stage) {
			continue
		}
		fmt.Fprintf(out, "%-9s %.1f ms\n", stage, toMillis(timings.Duration(stage)))
	}
}

// printPhaseSummary prints the wall-clock phases of the driver.
func printPhaseSummary(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	fmt.Fprint(out, timer.Summary())
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
