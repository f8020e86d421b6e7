package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spice/internal/diag"
	"spice/internal/driver"
	"spice/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [file.spice]",
	Short: "Run semantic analysis without generating IR",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args)
	if err != nil {
		return reportFailure(cmd.ErrOrStderr(), err, nil)
	}
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	res, err := driver.Compile(cmd.Context(), s.entry, driver.Options{
		Target:   s.target,
		MaxRuns:  s.maxRuns,
		Reporter: diag.BagReporter{Bag: bag},
		SkipIR:   true,
		FileSet:  fs,
	})
	if werr := printWarnings(cmd.ErrOrStderr(), bag, fs, s.warningsAsErrors); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return reportFailure(cmd.ErrOrStderr(), err, fs)
	}
	if !s.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d file(s) checked\n", len(res.Files))
	}
	if s.timings {
		printPhaseSummary(cmd.OutOrStdout(), res.Timer)
	}
	return nil
}
