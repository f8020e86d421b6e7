package source

import (
	"fmt"
	"strings"
)

// CodeLoc is the resolved, human-facing form of a span start.
// It is the location half of every diagnostic triple.
type CodeLoc struct {
	Path string
	Line uint32
	Col  uint32
}

// Key returns the compact "L<line>C<col>" form used to name child scopes.
func (l CodeLoc) Key() string {
	return fmt.Sprintf("L%dC%d", l.Line, l.Col)
}

func (l CodeLoc) String() string {
	if l.Path == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", strings.ReplaceAll(l.Path, "\\", "/"), l.Line, l.Col)
}

// IsValid reports whether the location points into a file.
func (l CodeLoc) IsValid() bool {
	return l.Line > 0
}
