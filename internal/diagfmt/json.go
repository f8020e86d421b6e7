package diagfmt

import (
	"encoding/json"
	"io"

	"spice/internal/diag"
)

// LocationJSON is a resolved position for JSON output.
type LocationJSON struct {
	File string `json:"file"`
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON document.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Error       *DiagnosticJSON  `json:"error,omitempty"`
}

// JSON writes the diagnostics plus an optional fatal error as one document.
func JSON(w io.Writer, items []diag.Diagnostic, fatal error, opts JSONOpts) error {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(items))}
	for i, d := range items {
		if opts.Max > 0 && i >= opts.Max {
			break
		}
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: LocationJSON{File: formatPath(d.Loc.Path, opts.PathMode), Line: d.Loc.Line, Col: d.Loc.Col},
		}
		for _, n := range d.Notes {
			dj.Notes = append(dj.Notes, NoteJSON{
				Message:  n.Msg,
				Location: LocationJSON{File: formatPath(n.Loc.Path, opts.PathMode), Line: n.Loc.Line, Col: n.Loc.Col},
			})
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	if fatal != nil {
		fj := DiagnosticJSON{Severity: diag.SevError.String(), Message: fatal.Error()}
		if code, ok := diag.KindOf(fatal); ok {
			fj.Code = code.ID()
			fj.Title = code.Title()
		}
		var located diag.Located
		if asLocated(fatal, &located) {
			loc := located.Loc()
			fj.Location = LocationJSON{File: formatPath(loc.Path, opts.PathMode), Line: loc.Line, Col: loc.Col}
		}
		out.Error = &fj
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
