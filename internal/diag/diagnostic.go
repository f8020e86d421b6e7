package diag

import (
	"spice/internal/source"
)

type Note struct {
	Loc source.CodeLoc
	Msg string
}

// Diagnostic is a non-fatal finding, warnings mostly.
// Fatal findings travel as typed errors instead (see errors.go).
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Loc      source.CodeLoc
	Primary  source.Span
	Notes    []Note
}

// Error renders the diagnostic the way warnings are printed on the console.
func (d Diagnostic) Error() string {
	prefix := "Warning"
	if d.Severity >= SevError {
		prefix = "Error"
	}
	if d.Loc.IsValid() {
		return prefix + " at " + d.Loc.String() + ": " + d.Code.Title() + ": " + d.Message
	}
	return prefix + ": " + d.Code.Title() + ": " + d.Message
}
