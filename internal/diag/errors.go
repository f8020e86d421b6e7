package diag

import (
	"errors"
	"fmt"

	"spice/internal/source"
)

// SemanticError is a user-facing error raised by the analyzer.
type SemanticError struct {
	Code    Code
	Where   source.CodeLoc
	Message string
}

func NewSemanticError(loc source.CodeLoc, code Code, msg string) *SemanticError {
	return &SemanticError{Code: code, Where: loc, Message: msg}
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("Semantic error in %s: %s: %s", e.Where, e.Code.Title(), e.Message)
}

func (e *SemanticError) Kind() Code          { return e.Code }
func (e *SemanticError) Loc() source.CodeLoc { return e.Where }

// ParserError is raised by the lexer and the parser.
type ParserError struct {
	Code    Code
	Where   source.CodeLoc
	Message string
}

func NewParserError(loc source.CodeLoc, code Code, msg string) *ParserError {
	return &ParserError{Code: code, Where: loc, Message: msg}
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("Syntax error in %s: %s: %s", e.Where, e.Code.Title(), e.Message)
}

func (e *ParserError) Kind() Code          { return e.Code }
func (e *ParserError) Loc() source.CodeLoc { return e.Where }

// IRError signals malformed generator state. It always points at a compiler bug.
type IRError struct {
	Code    Code
	Where   source.CodeLoc
	Message string
}

func NewIRError(loc source.CodeLoc, code Code, msg string) *IRError {
	return &IRError{Code: code, Where: loc, Message: msg}
}

func (e *IRError) Error() string {
	if e.Where.IsValid() {
		return fmt.Sprintf("internal compiler error in %s: %s: %s", e.Where, e.Code.Title(), e.Message)
	}
	return fmt.Sprintf("internal compiler error: %s: %s", e.Code.Title(), e.Message)
}

func (e *IRError) Kind() Code          { return e.Code }
func (e *IRError) Loc() source.CodeLoc { return e.Where }

// CompilerError is an operational failure with no source location.
type CompilerError struct {
	Code    Code
	Message string
	Err     error
}

func NewCompilerError(code Code, msg string) *CompilerError {
	return &CompilerError{Code: code, Message: msg}
}

// WrapCompilerError keeps the cause reachable through errors.Unwrap.
func WrapCompilerError(code Code, msg string, err error) *CompilerError {
	return &CompilerError{Code: code, Message: msg, Err: err}
}

func (e *CompilerError) Error() string {
	prefix := "Error"
	if e.Code == CmpInternalError || e.Code == CmpUnhandledBranch {
		prefix = "internal compiler error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Code.Title(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", prefix, e.Code.Title(), e.Message)
}

func (e *CompilerError) Unwrap() error       { return e.Err }
func (e *CompilerError) Kind() Code          { return e.Code }
func (e *CompilerError) Loc() source.CodeLoc { return source.CodeLoc{} }

// Located is implemented by every typed error of this package.
type Located interface {
	error
	Kind() Code
	Loc() source.CodeLoc
}

// KindOf extracts the code of a typed error anywhere in the chain.
func KindOf(err error) (Code, bool) {
	var located Located
	if errors.As(err, &located) {
		return located.Kind(), true
	}
	return UnknownCode, false
}

// IsInternal reports whether err indicates a bug in the compiler itself.
func IsInternal(err error) bool {
	var irErr *IRError
	if errors.As(err, &irErr) {
		return true
	}
	var cmpErr *CompilerError
	if errors.As(err, &cmpErr) {
		return cmpErr.Code == CmpInternalError || cmpErr.Code == CmpUnhandledBranch
	}
	return false
}
