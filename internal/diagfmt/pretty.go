package diagfmt

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"spice/internal/diag"
	"spice/internal/source"
)

type palette struct {
	err, warn, info, loc, caret, dim *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:   color.New(color.FgRed, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		info:  color.New(color.FgCyan),
		loc:   color.New(color.Bold),
		caret: color.New(color.FgGreen, color.Bold),
		dim:   color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.loc, p.caret, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty prints warnings and other non-fatal diagnostics.
// Expects bag.Sort() to have been called when ordering matters.
func Pretty(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range items {
		sevColor := p.severity(d.Severity)
		label := "Warning"
		if d.Severity >= diag.SevError {
			label = "Error"
		} else if d.Severity == diag.SevInfo {
			label = "Info"
		}
		if d.Loc.IsValid() {
			fmt.Fprintf(w, "%s %s %s: %s\n",
				sevColor.Sprintf("%s[%s]", label, d.Code.ID()),
				p.loc.Sprint("at "+formatLoc(d.Loc, opts.PathMode)+":"),
				d.Code.Title(), d.Message)
		} else {
			fmt.Fprintf(w, "%s: %s: %s\n", sevColor.Sprintf("%s[%s]", label, d.Code.ID()), d.Code.Title(), d.Message)
		}
		if opts.Snippet {
			writeSnippet(w, p, fs, d.Loc)
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.dim.Sprint("note:"), formatLoc(n.Loc, opts.PathMode), n.Msg)
		}
	}
}

// PrettyError prints a fatal error. Internal errors get their own color so a
// compiler bug is never mistaken for a mistake in user code.
func PrettyError(w io.Writer, err error, fs *source.FileSet, opts PrettyOpts) {
	if err == nil {
		return
	}
	p := newPalette(opts.Color)
	head := p.err
	if diag.IsInternal(err) {
		head = color.New(color.FgMagenta, color.Bold)
		if !opts.Color {
			head.DisableColor()
		} else {
			head.EnableColor()
		}
	}
	fmt.Fprintln(w, head.Sprint(err.Error()))
	var located diag.Located
	if opts.Snippet && errors.As(err, &located) {
		writeSnippet(w, p, fs, located.Loc())
	}
}

func formatLoc(loc source.CodeLoc, mode PathMode) string {
	if mode == PathModeBasename && loc.Path != "" {
		loc.Path = filepath.Base(loc.Path)
	}
	return loc.String()
}

func writeSnippet(w io.Writer, p palette, fs *source.FileSet, loc source.CodeLoc) {
	if fs == nil || !loc.IsValid() {
		return
	}
	id, ok := fs.GetLatest(loc.Path)
	if !ok {
		return
	}
	line := fs.Get(id).GetLine(loc.Line)
	if line == "" {
		return
	}
	gutter := fmt.Sprintf("%4d | ", loc.Line)
	fmt.Fprintf(w, "%s%s\n", p.dim.Sprint(gutter), line)
	fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", len(gutter)), p.caret.Sprint(caretPad(line, loc.Col)+"^"))
}

// caretPad returns the whitespace that puts a caret under the 1-based byte
// column col, accounting for wide runes and keeping tabs as tabs.
func caretPad(line string, col uint32) string {
	if col <= 1 {
		return ""
	}
	end := int(col - 1)
	if end > len(line) {
		end = len(line)
	}
	var sb strings.Builder
	for _, r := range line[:end] {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}
