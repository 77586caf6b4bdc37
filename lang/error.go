package lang

import (
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors returned by this package are derived from these sentinels with
// [Error.With], [Error.WithLine], and [Error.Wrap], and remain comparable to
// them with [errors.Is].
var (
	ErrStructural         = NewError("structural error")
	ErrNoActiveContext    = ErrStructural.Extend("no active context")
	ErrContextAlreadyOpen = ErrStructural.Extend("context already open")
	ErrUnclosedContext    = ErrStructural.Extend("context not closed at end of input")

	ErrUnknownVariable         = NewError("unknown variable")
	ErrUnknownDirective        = NewError("unknown directive")
	ErrExpressionEvaluation    = NewError("expression evaluation failed")
	ErrNonTerminatingExpansion = NewError("expansion did not terminate")
	ErrSnapshotLimit           = NewError("snapshot limit exceeded")
	ErrReadInput               = NewError("failed to read input")
	ErrInvalidDirective        = NewError("invalid directive kind")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg    string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	parent *Error      // Broader sentinel this one refines
	origin *Error      // Sentinel this error was derived from
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.origin = e

	return e
}

// Extend creates a new sentinel that refines e.
// The new sentinel matches e with [errors.Is].
func (e *Error) Extend(msg string) *Error {
	child := NewError(msg)
	child.parent = e.origin

	return child
}

// WrapError returns err itself if it is an *Error, and otherwise wraps it
// in a new Error. An *Error nested inside another wrapper stays reachable
// with [errors.Is] and [errors.As] through the wrapper.
func WrapError(err error) *Error {
	if ee, ok := err.(*Error); ok {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from, or any
// sentinel that one refines.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.origin == nil {
		return false
	}

	for s := e.origin; s != nil; s = s.parent {
		if s == t.origin {
			return true
		}
	}

	return false
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns a copy of the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr {
	return append([]slog.Attr(nil), e.attrs...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:    e.msg,
		err:    err,
		attrs:  e.attrs, // Share attrs
		parent: e.parent,
		origin: e.origin,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:    e.msg,
		err:    e.err,
		attrs:  newAttrs,
		parent: e.parent,
		origin: e.origin,
	}
}

// WithLine attaches the 1-based source line number and its text.
func (e *Error) WithLine(line int, text string) *Error {
	return e.With(
		slog.Int("line", line),
		slog.String("text", text),
	)
}
