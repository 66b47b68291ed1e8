package sbom

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the category of a conversion failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindParse
	KindValidation
	KindUnsupportedFormat
	KindUnsupportedVersion
	KindUnsupportedFeature
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindValidation:
		return "ValidationError"
	case KindUnsupportedFormat:
		return "UnsupportedFormatError"
	case KindUnsupportedVersion:
		return "UnsupportedVersionError"
	case KindUnsupportedFeature:
		return "UnsupportedFeatureError"
	default:
		return "UnknownError"
	}
}

// Error is the single error type surfaced by the engine. Every failure of a
// read, write or conversion is reported as an *Error whose Kind names the
// taxonomy entry.
type Error struct {
	// Kind is the taxonomy entry.
	Kind Kind

	// Op is the operation that failed (e.g. "spdx.Read").
	Op string

	// Message is a human-readable description.
	Message string

	// Details lists individual violations when one error aggregates many,
	// e.g. every dangling edge found by a validation pass.
	Details []string

	// Err is the underlying error, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if len(e.Details) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Details, "; "))
		b.WriteString("]")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind, so the package sentinels work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrParse              = &Error{Kind: KindParse}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrUnsupportedFormat  = &Error{Kind: KindUnsupportedFormat}
	ErrUnsupportedVersion = &Error{Kind: KindUnsupportedVersion}
	ErrUnsupportedFeature = &Error{Kind: KindUnsupportedFeature}
)

// E builds an *Error of the given kind. A nil cause is allowed.
func E(kind Kind, op string, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// WithOp returns err with its Op replaced when err is an *Error that does not
// carry one yet. Any other error is wrapped as a ParseError.
func WithOp(err error, op string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Op != "" {
			return err
		}
		c := *e
		c.Op = op
		return &c
	}
	return &Error{Kind: KindParse, Op: op, Err: err}
}
