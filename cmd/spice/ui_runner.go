package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"spice/internal/buildpipeline"
	"spice/internal/ui"
)

type buildOutcome struct {
	result buildpipeline.Result
	err    error
}

// runBuildWithUI runs the build in the background while a bubbletea
// program renders its progress events.
func runBuildWithUI(ctx context.Context, title string, req *buildpipeline.Request) (buildpipeline.Result, error) {
	if req == nil {
		return buildpipeline.Result{}, fmt.Errorf("missing build request")
	}
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Build(ctx, &reqCopy)
		outcomeCh <- buildOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// The view may quit early; keep the sink unblocked.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
