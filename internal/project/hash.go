package project

import (
	"crypto/sha256"
)

// Digest is a SHA-256 sum, the same shape as source.File.Hash.
type Digest [32]byte

// Combine builds a file hash from its content and its imports:
// H(content || dep1 || dep2 ...). Callers pass deps in a stable order.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Salt mixes build settings into d, so that the same sources compiled for
// another target or by another compiler get another key.
func Salt(d Digest, parts ...string) Digest {
	h := sha256.New()
	_, _ = h.Write(d[:])
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
