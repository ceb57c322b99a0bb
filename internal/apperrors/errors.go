package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an import failure so callers can decide how to report it.
type Kind string

const (
	KindProfile    Kind = "ProfileError"
	KindMetadata   Kind = "MetadataError"
	KindLineItem   Kind = "LineItemError"
	KindValidation Kind = "ValidationError"
	KindConstraint Kind = "ConstraintError"
	KindIntegrity  Kind = "IntegrityError"
	KindNotFound   Kind = "NotFound"
	KindInternal   Kind = "InternalError"
)

// Context carries the operator-facing details (file, line, field, invoice number).
type Context map[string]interface{}

// Error is the base error type returned across the import pipeline.
type Error struct {
	Kind       Kind
	Message    string
	Context    Context
	Cause      error
	StackTrace pkgerrors.StackTrace
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString("]")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds a key/value pair to the error context and returns the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		StackTrace: pkgerrors.New("").(stackTracer).StackTrace(),
	}
}

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap attaches a kind and message to err. A nil err yields nil.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:       kind,
		Message:    message,
		Cause:      err,
		StackTrace: pkgerrors.WithStack(err).(stackTracer).StackTrace(),
	}
}

func Profile(message string, cause error) *Error    { return build(KindProfile, message, cause) }
func Metadata(message string, cause error) *Error   { return build(KindMetadata, message, cause) }
func Validation(message string, cause error) *Error { return build(KindValidation, message, cause) }
func Constraint(message string, cause error) *Error { return build(KindConstraint, message, cause) }
func Integrity(message string, cause error) *Error  { return build(KindIntegrity, message, cause) }
func NotFound(message string) *Error                { return New(KindNotFound, message) }

func build(kind Kind, message string, cause error) *Error {
	if cause == nil {
		return New(kind, message)
	}
	return Wrap(cause, kind, message)
}

// Kinded is implemented by typed errors defined outside this package that
// belong to one of the kinds above.
type Kinded interface {
	ErrorKind() Kind
}

func kindOf(err error) (Kind, bool) {
	switch e := err.(type) {
	case *Error:
		return e.Kind, true
	case Kinded:
		return e.ErrorKind(), true
	}
	return "", false
}

// Is reports whether any error in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if k, ok := kindOf(err); ok && k == kind {
			return true
		}
	}
	return false
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	for ; err != nil; err = errors.Unwrap(err) {
		if k, ok := kindOf(err); ok {
			return k
		}
	}
	return KindInternal
}

// ExitCode maps an error to a process exit status for the CLI.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindProfile, KindMetadata, KindLineItem, KindValidation:
		return 3
	case KindConstraint:
		return 4
	case KindIntegrity:
		return 5
	case KindNotFound:
		return 6
	default:
		return 1
	}
}
