package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a compilation phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary. Path is set for per-file phases.
type PhaseEvent struct {
	Name    string
	Path    string
	Status  PhaseStatus
	Elapsed time.Duration
	Err     error
}

// PhaseObserver receives phase events emitted during Compile. It may be
// called from several goroutines at once.
type PhaseObserver func(PhaseEvent)

func (o PhaseObserver) start(name, path string) time.Time {
	if o != nil {
		o(PhaseEvent{Name: name, Path: path, Status: PhaseStart})
	}
	return time.Now()
}

func (o PhaseObserver) end(name, path string, began time.Time, err error) {
	if o != nil {
		o(PhaseEvent{Name: name, Path: path, Status: PhaseEnd, Elapsed: time.Since(began), Err: err})
	}
}
