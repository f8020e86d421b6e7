package types

// TypeErrorKind classifies illegal type compositions.
type TypeErrorKind uint8

const (
	ErrDynPointer TypeErrorKind = iota + 1
	ErrDynArray
	ErrDynReference
	ErrRefPointer
	ErrMalformedChain
)

// TypeError reports an illegal composition such as a pointer of dyn.
// The analyzer turns it into a located semantic error.
type TypeError struct {
	Kind    TypeErrorKind
	Message string
}

func (e *TypeError) Error() string {
	return e.Message
}
