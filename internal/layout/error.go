package layout

import (
	"fmt"
	"strings"

	"spice/internal/types"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized indicates a struct that contains itself by value.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	LayoutErrUnsizedArray
	LayoutErrUnknownStruct
	LayoutErrGeneric
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  *types.Type
	Cycle []*types.Type // for LayoutErrRecursiveUnsized
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		parts := make([]string, 0, len(e.Cycle))
		for _, t := range e.Cycle {
			parts = append(parts, t.Name())
		}
		return fmt.Sprintf("recursive struct has infinite size (cycle: %s)", strings.Join(parts, " -> "))
	case LayoutErrUnsizedArray:
		return fmt.Sprintf("array type %s has no compile-time size", e.Type.Name())
	case LayoutErrUnknownStruct:
		return fmt.Sprintf("no field list known for %s", e.Type.Name())
	case LayoutErrGeneric:
		return fmt.Sprintf("type %s is not fully substantiated", e.Type.Name())
	default:
		return fmt.Sprintf("layout error kind=%d type %s", e.Kind, e.Type.Name())
	}
}
