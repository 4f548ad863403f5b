// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
)

// Kind classifies failures per the inference error taxonomy
// Values are stable; add sparingly
type Kind uint16

const (
	// KindUnknown is for unclassified errors
	KindUnknown Kind = iota

	// KindInitialization is for malformed, truncated, or shape-inconsistent
	// model data; the resulting model object is permanently invalid
	KindInitialization

	// KindInvalidModel is for operations attempted against an invalid model
	KindInvalidModel

	// KindExtractionInput is for null/missing buffers handed to feature
	// extraction; reported to the immediate caller, never a crash
	KindExtractionInput

	// KindDegradedFeature is for locally-recovered feature failures
	// (regex that failed to compile, out-of-range bucket lookups)
	KindDegradedFeature

	// KindInvalidArgument is for bad input parameters
	KindInvalidArgument
)

// String returns the stable lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindInitialization:
		return "initialization"
	case KindInvalidModel:
		return "invalid_model"
	case KindExtractionInput:
		return "extraction_input"
	case KindDegradedFeature:
		return "degraded_feature"
	case KindInvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; kind is machine facing
// op is an optional operation tag; orig is the wrapped cause
type Error struct {
	orig error
	msg  string
	kind Kind
	op   string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Kind returns the error kind
func (e *Error) Kind() Kind { return e.kind }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// KindOf extracts a Kind from any error, defaulting to Unknown
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.kind
	}
	return KindUnknown
}

// IsKind reports whether err has the given kind
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given kind and message
func New(kind Kind, msg string) error { return &Error{kind: kind, msg: msg} }

// Newf returns a new *Error with kind and formatted message
func Newf(kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with kind and message
func Wrap(orig error, kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with kind and formatted message
func Wrapf(orig error, kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...), orig: orig}
}

// WrapIf wraps only when err != nil (helper for 1-liners)
func WrapIf(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, kind, msg)
}

// Sugar

// Initf returns an initialization failure
func Initf(format string, a ...any) error { return Newf(KindInitialization, format, a...) }

// InvalidModelf returns an invalid model error
func InvalidModelf(format string, a ...any) error { return Newf(KindInvalidModel, format, a...) }

// ExtractionInputf returns an extraction input error
func ExtractionInputf(format string, a ...any) error { return Newf(KindExtractionInput, format, a...) }

// DegradedFeaturef returns a degraded feature error
func DegradedFeaturef(format string, a ...any) error { return Newf(KindDegradedFeature, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(KindInvalidArgument, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(KindUnknown, format, a...) }
