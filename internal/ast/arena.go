package ast

import "fortio.org/safecast"

// Arena hands out nodes from fixed-size chunks. Pointers stay valid for the
// arena's lifetime because chunks are never reallocated.
type Arena[T any] struct {
	chunks [][]T
	size   int
	n      uint32
}

// NewArena creates an arena whose chunks hold chunkHint elements; zero picks a default.
func NewArena[T any](chunkHint uint) *Arena[T] {
	size, err := safecast.Conv[int](chunkHint)
	if err != nil || size == 0 {
		size = 256
	}
	return &Arena[T]{size: size}
}

// New returns a pointer to a zeroed slot.
func (a *Arena[T]) New() *T {
	if len(a.chunks) == 0 || len(a.chunks[len(a.chunks)-1]) == a.size {
		a.chunks = append(a.chunks, make([]T, 0, a.size))
	}
	last := len(a.chunks) - 1
	var zero T
	a.chunks[last] = append(a.chunks[last], zero)
	a.n++
	return &a.chunks[last][len(a.chunks[last])-1]
}

// Allocate copies value into a fresh slot.
func (a *Arena[T]) Allocate(value T) *T {
	p := a.New()
	*p = value
	return p
}

func (a *Arena[T]) Len() uint32 {
	return a.n
}

// Each visits every allocated element in allocation order.
func (a *Arena[T]) Each(fn func(*T)) {
	for _, c := range a.chunks {
		for i := range c {
			fn(&c[i])
		}
	}
}
