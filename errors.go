// Package gerber implements a Gerber Layer Format (Ucamco 2022-02/2023-08/
// 2024-05) reader: a streaming tokenizer, a graphics-state interpreter, an
// aperture model (standard templates, macros, blocks, step-and-repeat),
// and a 2D geometry kernel, producing an ordered image graphics stream of
// GraphicalObjects.
package gerber

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a GerberFormatError.
type ErrorKind int

const (
	// KindUnsupportedFormat covers a format specifier or deprecated
	// command given in a non-default form.
	KindUnsupportedFormat ErrorKind = iota
	// KindInvalidCommand covers an unknown or malformed extended or word
	// command, including a '%' without a preceding '*'.
	KindInvalidCommand
	// KindInvalidAperture covers a wrong parameter count, bad template
	// name, or bad aperture id.
	KindInvalidAperture
	// KindInvalidMacro covers an unknown macro primitive, wrong parameter
	// count, variable redefinition, or a malformed expression.
	KindInvalidMacro
	// KindInvalidCoordinate covers a malformed coordinate literal or one
	// consumed before the coordinate format was set.
	KindInvalidCoordinate
	// KindInvalidArc covers an arc with no surviving single-quadrant
	// candidate, or an arc requested outside of an arc plot state.
	KindInvalidArc
	// KindInvalidSR covers a Step-and-Repeat with a non-positive count or
	// a zero step alongside a count greater than one.
	KindInvalidSR
	// KindStateError covers a plot/flash before required state was set,
	// illegal block nesting, or an unclosed region/block at EOF.
	KindStateError
	// KindTruncated covers a missing M00/M02.
	KindTruncated
	// KindIO covers an underlying reader failure.
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindInvalidCommand:
		return "InvalidCommand"
	case KindInvalidAperture:
		return "InvalidAperture"
	case KindInvalidMacro:
		return "InvalidMacro"
	case KindInvalidCoordinate:
		return "InvalidCoordinate"
	case KindInvalidArc:
		return "InvalidArc"
	case KindInvalidSR:
		return "InvalidSR"
	case KindStateError:
		return "StateError"
	case KindTruncated:
		return "Truncated"
	case KindIO:
		return "IO"
	default:
		return "Unknown"
	}
}

// LineRange is the source line span a fault occurred over, as tracked by
// the tokenizer.
type LineRange struct {
	Start, End int
}

// GerberFormatError is the single structured error kind all faults are
// surfaced as. It wraps the originating error (via
// github.com/pkg/errors, which attaches a stack trace at the point the
// fault was raised) along with its Kind and source LineRange.
type GerberFormatError struct {
	kind  ErrorKind
	lines LineRange
	msg   string
	cause error
}

// newFault builds a GerberFormatError, capturing a stack trace at the call
// site via pkg/errors.
func newFault(kind ErrorKind, lines LineRange, format string, args ...interface{}) *GerberFormatError {
	msg := fmt.Sprintf(format, args...)
	return &GerberFormatError{
		kind:  kind,
		lines: lines,
		msg:   msg,
		cause: errors.New(msg),
	}
}

// wrapFault builds a GerberFormatError around an existing error, preserving
// it as the Cause().
func wrapFault(kind ErrorKind, lines LineRange, cause error, format string, args ...interface{}) *GerberFormatError {
	msg := fmt.Sprintf(format, args...)
	return &GerberFormatError{
		kind:  kind,
		lines: lines,
		msg:   msg,
		cause: errors.Wrap(cause, msg),
	}
}

func (e *GerberFormatError) Error() string {
	return fmt.Sprintf("gerber: %s at line %d-%d: %s", e.kind, e.lines.Start, e.lines.End, e.msg)
}

// Kind reports the fault category.
func (e *GerberFormatError) Kind() ErrorKind { return e.kind }

// Lines reports the source line range the fault occurred over.
func (e *GerberFormatError) Lines() LineRange { return e.lines }

// Cause returns the wrapped error, following the github.com/pkg/errors
// convention.
func (e *GerberFormatError) Cause() error { return e.cause }

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *GerberFormatError) Unwrap() error { return e.cause }

// WrapIOError surfaces an underlying reader failure as a KindIO fault,
// used by the driver when the input cannot be read at all.
func WrapIOError(err error, path string) *GerberFormatError {
	return wrapFault(KindIO, LineRange{}, err, "read %s", path)
}
