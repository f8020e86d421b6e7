package main

import (
	"errors"
	"fmt"
	"io"

	"spice/internal/diag"
	"spice/internal/diagfmt"
	"spice/internal/source"
)

// reportedError marks an error whose diagnostics were already printed.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

func prettyOpts() diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{Color: useColor, Snippet: true}
}

// printWarnings writes the collected warnings. With warningsAsErrors set it
// turns their presence into a failure.
func printWarnings(w io.Writer, bag *diag.Bag, fs *source.FileSet, warningsAsErrors bool) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	bag.Dedup()
	bag.Sort()
	diagfmt.Pretty(w, bag.Items(), fs, prettyOpts())
	if warningsAsErrors && bag.HasWarnings() {
		return reportedError{fmt.Errorf("%d warning(s) treated as errors", bag.Len())}
	}
	return nil
}

// reportFailure prints err with a source snippet when it carries a location.
func reportFailure(w io.Writer, err error, fs *source.FileSet) error {
	if err == nil || reported(err) {
		return err
	}
	diagfmt.PrettyError(w, err, fs, prettyOpts())
	return reportedError{err}
}
