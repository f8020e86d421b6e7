package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"spice/internal/buildpipeline"
	"spice/internal/diag"
	"spice/internal/driver"
	"spice/internal/source"
)

var buildCmd = &cobra.Command{
	Use:   "build [file.spice]",
	Short: "Compile a Spice program to LLVM IR",
	Long: `Compile the given file and everything it imports. One .ll file is written
per source file. Without an argument the [package].main of spice.toml is built.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "output directory for .ll files")
	buildCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	buildCmd.Flags().Bool("watch", false, "rebuild when a source file changes")
	buildCmd.Flags().Bool("no-cache", false, "do not read or write the IR cache")
	buildCmd.Flags().Int("jobs", 0, "parallel workers (0 uses all CPUs)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args)
	if err != nil {
		return reportFailure(cmd.ErrOrStderr(), err, nil)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}

	var cache *driver.Cache
	if !noCache {
		if cache, err = driver.OpenCache("spice"); err != nil {
			// A missing cache only costs speed.
			if !s.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "cache disabled: %v\n", err)
			}
			cache = nil
		}
	}

	b := &builder{
		settings: s,
		cache:    cache,
		jobs:     jobs,
		useTUI:   !watch && shouldUseTUI(mode, s.quiet),
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if !watch {
		_, err := b.run(ctx)
		return err
	}
	return watchAndRebuild(ctx, b)
}

// builder runs one build with fixed settings. Watch mode reuses it.
type builder struct {
	settings *settings
	cache    *driver.Cache
	jobs     int
	useTUI   bool
	out      io.Writer
	errOut   io.Writer
}

func (b *builder) request(fs *source.FileSet, bag *diag.Bag) *buildpipeline.Request {
	return &buildpipeline.Request{
		Entry:     b.settings.entry,
		OutputDir: b.settings.outputDir,
		Options: driver.Options{
			Target:   b.settings.target,
			MaxRuns:  b.settings.maxRuns,
			Jobs:     b.jobs,
			Reporter: diag.BagReporter{Bag: bag},
			Cache:    b.cache,
			FileSet:  fs,
		},
	}
}

// run builds once and prints diagnostics, outputs and timings.
func (b *builder) run(ctx context.Context) (buildpipeline.Result, error) {
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	req := b.request(fs, bag)

	var (
		res buildpipeline.Result
		err error
	)
	if b.useTUI {
		res, err = runBuildWithUI(ctx, "spice build "+filepath.Base(b.settings.entry), req)
	} else {
		res, err = buildpipeline.Build(ctx, req)
	}
	if werr := printWarnings(b.errOut, bag, fs, b.settings.warningsAsErrors); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return res, reportFailure(b.errOut, err, fs)
	}
	if !b.settings.quiet {
		for _, path := range res.Outputs {
			fmt.Fprintf(b.out, "wrote %s\n", displayPath(path))
		}
		if res.Compile != nil && b.cache != nil {
			fmt.Fprintf(b.out, "%d of %d module(s) from cache\n", res.Compile.CacheHits(), len(res.Compile.Files))
		}
	}
	if b.settings.timings {
		printStageTimings(b.out, res.Timings)
		if res.Compile != nil {
			printPhaseSummary(b.out, res.Compile.Timer)
		}
	}
	return res, nil
}

// displayPath shortens path relative to the working directory when possible.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
