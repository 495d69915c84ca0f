// Package errors implements the engine's error taxonomy (spec §7): ParseError,
// TypeError, DomainError, BudgetExceeded and InternalError. Each carries a
// source offset so the CLI front-end can point at the offending character,
// the way a compiler error carries file:line:column.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind is one of the five error categories of spec §7.
type Kind string

const (
	KindParse          Kind = "ParseError"
	KindType           Kind = "TypeError"
	KindDomain         Kind = "DomainError"
	KindBudgetExceeded Kind = "BudgetExceeded"
	KindInternal       Kind = "InternalError"
)

// Location pinpoints where in the relation text an error occurred.
type Location struct {
	Offset int // byte offset into the source text, -1 if not applicable
	Line   int
	Column int
}

// EngineError is the concrete error type returned by the parser, compiler
// and evaluator.
type EngineError struct {
	Kind     Kind
	Message  string
	Location Location
	Expected string // populated for ParseError: spec §4.1's ParseError{offset, expected}
	Source   string // the offending source line, if known
	cause    error
}

func (e *EngineError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Kind, e.Message))
	if e.Expected != "" {
		sb.WriteString(fmt.Sprintf(" (expected %s)", e.Expected))
	}
	if e.Location.Offset >= 0 {
		sb.WriteString(fmt.Sprintf("\n  at offset %d", e.Location.Offset))
		if e.Location.Line > 0 {
			sb.WriteString(fmt.Sprintf(" (line %d, col %d)", e.Location.Line, e.Location.Column))
		}
		if e.Source != "" {
			sb.WriteString(fmt.Sprintf("\n  %s\n  %s^", e.Source, strings.Repeat(" ", max(0, e.Location.Column-1))))
		}
	}
	return sb.String()
}

func (e *EngineError) Unwrap() error { return e.cause }

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Parse builds a ParseError{offset, expected} per spec §4.1.
func Parse(offset int, expected, message string) *EngineError {
	return &EngineError{
		Kind:     KindParse,
		Message:  message,
		Location: Location{Offset: offset},
		Expected: expected,
		cause:    pkgerrors.New(message),
	}
}

// Type builds a scalar/boolean mismatch or polar/Cartesian-mix error (spec §4.2, §7).
func Type(offset int, message string) *EngineError {
	return &EngineError{Kind: KindType, Message: message, Location: Location{Offset: offset}, cause: pkgerrors.New(message)}
}

// Domain builds a static domain error, e.g. Γ(a,x) with non-exact a (spec §7).
func Domain(offset int, message string) *EngineError {
	return &EngineError{Kind: KindDomain, Message: message, Location: Location{Offset: offset}, cause: pkgerrors.New(message)}
}

// BudgetExceeded marks a non-fatal completion: the run stopped before every
// pixel settled. It is returned alongside a valid, partially-decided image,
// never in place of one (spec §4.5, §7).
func BudgetExceeded(message string) *EngineError {
	return &EngineError{Kind: KindBudgetExceeded, Message: message, Location: Location{Offset: -1}, cause: pkgerrors.New(message)}
}

// Internal wraps a primitive failure (numeric overflow, unexpected NaN, ...).
// When the evaluator returns one, the search treats that box as UU and
// drops the error rather than ending the run.
func Internal(cause error, context string) *EngineError {
	return &EngineError{
		Kind:     KindInternal,
		Message:  context,
		Location: Location{Offset: -1},
		cause:    pkgerrors.WithStack(cause),
	}
}

// StackTrace exposes the pkg/errors stack of the wrapped cause, if any.
func (e *EngineError) StackTrace() pkgerrors.StackTrace {
	type stackTracer interface {
		StackTrace() pkgerrors.StackTrace
	}
	if st, ok := e.cause.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// IsFatal reports whether the error must abort plotting before any work
// begins (spec §7): ParseError, TypeError and DomainError are fatal;
// BudgetExceeded and InternalError are not.
func (e *EngineError) IsFatal() bool {
	switch e.Kind {
	case KindParse, KindType, KindDomain:
		return true
	default:
		return false
	}
}
