package diag

import "spice/internal/source"

// Reporter receives non-fatal diagnostics from the phases.
type Reporter interface {
	Report(code Code, sev Severity, loc source.CodeLoc, msg string)
}

// BagReporter stores everything it receives in a Bag.
type BagReporter struct {
	Bag *Bag
}

func (r BagReporter) Report(code Code, sev Severity, loc source.CodeLoc, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{Severity: sev, Code: code, Message: msg, Loc: loc})
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, source.CodeLoc, string) {}

// Warn is a shortcut for SevWarning diagnostics.
func Warn(r Reporter, code Code, loc source.CodeLoc, msg string) {
	if r == nil {
		return
	}
	r.Report(code, SevWarning, loc, msg)
}

// Pending buffers warnings until the caller decides to flush them.
// The analyzer only publishes its warnings after a successful run.
type Pending struct {
	items []Diagnostic
}

func (p *Pending) Report(code Code, sev Severity, loc source.CodeLoc, msg string) {
	p.items = append(p.items, Diagnostic{Severity: sev, Code: code, Message: msg, Loc: loc})
}

func (p *Pending) Len() int { return len(p.items) }

// Flush forwards the buffered diagnostics to r and empties the buffer.
func (p *Pending) Flush(r Reporter) {
	if r != nil {
		for _, d := range p.items {
			r.Report(d.Code, d.Severity, d.Loc, d.Message)
		}
	}
	p.items = nil
}

// Discard empties the buffer without forwarding.
func (p *Pending) Discard() {
	p.items = nil
}
