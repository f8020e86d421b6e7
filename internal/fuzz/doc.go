// Package fuzztests holds fuzz harnesses for the front end. They feed
// arbitrary bytes through the lexer and parser and fail on panics or hangs.
package fuzztests
