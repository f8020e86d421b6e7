package symbols

// CaptureMode tells how a closure accesses a captured variable.
type CaptureMode uint8

const (
	ByValue CaptureMode = iota
	ByReference
)

func (m CaptureMode) String() string {
	if m == ByReference {
		return "by-reference"
	}
	return "by-value"
}

// Capture is an outer entry referenced from a lambda or thread scope.
// The inner scope owns the record, never the entry.
type Capture struct {
	Entry *Entry
	Mode  CaptureMode
	Order int
}

// MarkWritten switches the capture to by-reference because the closure
// assigns to it.
func (c *Capture) MarkWritten() { c.Mode = ByReference }
