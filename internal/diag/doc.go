// Package diag defines the error taxonomy and the diagnostic model shared by
// all compiler phases.
//
// Fatal findings are typed errors: SemanticError for user mistakes found by
// the analyzer, ParserError for lexing and parsing, IRError for malformed
// generator state and CompilerError for operational failures. Each carries a
// Code and, where it makes sense, a source.CodeLoc.
//
// Non-fatal findings (warnings) are Diagnostic values delivered through a
// Reporter, usually into a Bag. Rendering lives in internal/diagfmt.
package diag
