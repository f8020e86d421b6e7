package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"spice/internal/diag"
	"spice/internal/driver"
	"spice/internal/source"
)

var irCmd = &cobra.Command{
	Use:   "ir [file.spice]",
	Short: "Print the LLVM IR of a file",
	Long:  "Compile the file and print its textual LLVM IR. With --all the IR of every imported file is printed as well.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIR,
}

func init() {
	irCmd.Flags().Bool("all", false, "print the modules of imported files too")
}

func runIR(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, args)
	if err != nil {
		return reportFailure(cmd.ErrOrStderr(), err, nil)
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	res, err := driver.Compile(cmd.Context(), s.entry, driver.Options{
		Target:   s.target,
		MaxRuns:  s.maxRuns,
		Reporter: diag.BagReporter{Bag: bag},
		FileSet:  fs,
	})
	if werr := printWarnings(cmd.ErrOrStderr(), bag, fs, s.warningsAsErrors); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return reportFailure(cmd.ErrOrStderr(), err, fs)
	}
	return printModules(cmd.OutOrStdout(), res, all)
}

// printModules writes the IR of the entry file, or of every file in
// dependency order when all is set.
func printModules(w io.Writer, res *driver.Result, all bool) error {
	files := []*driver.File{res.Main}
	if all {
		files = res.Files
	}
	for i, f := range files {
		m, ok := res.Modules[f.Path]
		if !ok {
			return fmt.Errorf("no module generated for %s", f.Path)
		}
		if all {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "; file: %s\n", f.Path)
		}
		if _, err := fmt.Fprint(w, m.String()); err != nil {
			return err
		}
	}
	return nil
}
