// Package diag defines the structured error type shared by the Paw front
// end, type checker, and evaluator.
package diag

import (
	"fmt"
	"strings"
)

// Kind partitions errors by the stage and severity of the failure.
type Kind int

const (
	// KindSyntax is produced by the front end; it is part of the shared
	// type so hosts render every stage the same way.
	KindSyntax Kind = iota
	KindType
	KindUndefinedVariable
	KindDuplicateDefinition
	KindRuntime
	// KindInternal covers I/O and module-resolution failures. Internal
	// errors are never catchable by sniff/snatch.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindType:
		return "type error"
	case KindUndefinedVariable:
		return "undefined variable"
	case KindDuplicateDefinition:
		return "duplicate definition"
	case KindRuntime:
		return "runtime error"
	case KindInternal:
		return "internal error"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// Error is the user-facing diagnostic carried out of the semantic core.
type Error struct {
	Kind    Kind
	Code    string
	File    string
	Message string
	Line    int
	Column  int
	Snippet string
	Hint    string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.File != "" {
		fmt.Fprintf(&b, "%s:", e.File)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "%d:%d:", e.Line, e.Column)
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "%s [%s]: %s", e.Kind, e.Code, e.Message)
	return b.String()
}

// Catchable reports whether a sniff block may intercept this error.
func (e *Error) Catchable() bool {
	return e.Kind != KindInternal
}

// WithHint attaches a remediation hint and returns the error.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// Diagnostic codes. The range-bound mismatch gets its own code so hosts
// can distinguish it from the general type mismatch.
const (
	CodeSyntax      = "E-SYNTAX"
	CodeType        = "E-TYPE"
	CodeUndefined   = "E-UNDEF"
	CodeDuplicate   = "E-DUP"
	CodeRangeBounds = "E-RANGE"
	CodeNoMethod    = "E-NO-METHOD"
	CodeReturn      = "E-RETURN"
	CodeRuntime     = "E-RUNTIME"
	CodeArity       = "E-ARITY"
	CodeNotCallable = "E-NOT-CALLABLE"
	CodeInternal    = "E-INTERNAL"
)

// Typef builds a type error at the given position.
func Typef(line, column int, format string, args ...any) *Error {
	return &Error{
		Kind:    KindType,
		Code:    CodeType,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}

// Undefinedf builds an undefined-variable error.
func Undefinedf(line, column int, format string, args ...any) *Error {
	return &Error{
		Kind:    KindUndefinedVariable,
		Code:    CodeUndefined,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}

// Duplicatef builds a duplicate-definition error.
func Duplicatef(line, column int, format string, args ...any) *Error {
	return &Error{
		Kind:    KindDuplicateDefinition,
		Code:    CodeDuplicate,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}

// Runtimef builds a catchable runtime error.
func Runtimef(line, column int, format string, args ...any) *Error {
	return &Error{
		Kind:    KindRuntime,
		Code:    CodeRuntime,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}

// Internalf builds an uncatchable internal error.
func Internalf(format string, args ...any) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    CodeInternal,
		Message: fmt.Sprintf(format, args...),
	}
}
