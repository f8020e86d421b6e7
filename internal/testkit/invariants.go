// Package testkit holds checks shared by tests across the front end.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"spice/internal/ast"
	"spice/internal/source"
)

// CheckSpanInvariants verifies the positions of a parsed file:
// the file span lies inside the content, declarations appear in source
// order on existing lines, and every non-empty expression span is
// contained in the file span.
func CheckSpanInvariants(f *ast.File, sf *source.File) error {
	if f == nil || sf == nil {
		return fmt.Errorf("nil file")
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("file too large: %w", err)
	}
	if f.Span.End < f.Span.Start || f.Span.End > size {
		return fmt.Errorf("file span %v outside content of %d bytes", f.Span, size)
	}
	lines, err := safecast.Conv[uint32](len(sf.LineIdx) + 1)
	if err != nil {
		return fmt.Errorf("too many lines: %w", err)
	}

	var prev source.CodeLoc
	for i, d := range f.Decls {
		loc := d.Pos()
		if loc.Line == 0 || loc.Line > lines {
			return fmt.Errorf("decl %d at line %d, file has %d lines", i, loc.Line, lines)
		}
		if loc.Line < prev.Line || loc.Line == prev.Line && loc.Col < prev.Col {
			return fmt.Errorf("decl %d at %d:%d precedes decl %d at %d:%d", i, loc.Line, loc.Col, i-1, prev.Line, prev.Col)
		}
		prev = loc
	}

	var bad error
	for _, fn := range f.Funcs() {
		ast.Inspect(fn.Body, func(n any) bool {
			if bad != nil {
				return false
			}
			e, ok := n.(*ast.Expr)
			if !ok || e.Span.Empty() {
				return true
			}
			if e.Span.End < e.Span.Start || e.Span.Start < f.Span.Start || e.Span.End > f.Span.End {
				bad = fmt.Errorf("%s: expression span %v escapes file span %v", fn.Name, e.Span, f.Span)
				return false
			}
			return true
		})
		if bad != nil {
			return bad
		}
	}
	return nil
}
