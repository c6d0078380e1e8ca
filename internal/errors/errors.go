package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// Meta keys shared between packages
const (
	MetaMissing          = "missing"
	MetaValidationErrors = "validation_errors"
)

// Error is the structured error returned across package boundaries. The
// Code survives wrapping; Meta carries machine readable context.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so errors.Is(err, errors.Aborted(""))
// works without sentinel values.
func (e *Error) Is(target error) bool {
	var other *Error
	if !stderrors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithMeta sets key on the error and returns it for chaining
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[key] = value
	return e
}

// New creates an error with no cause
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a format string
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap adds context to err. An *Error anywhere in the chain keeps its code
// and meta; anything else becomes CodeInternal.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	code := CodeInternal
	if inner := find(err); inner != nil {
		code = inner.Code
	}
	return wrap(err, code, message)
}

// Wrapf is Wrap with a format string
func Wrapf(err error, format string, args ...any) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode adds context to err and replaces its code
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return wrap(err, code, message)
}

// wrap copies the inner meta so the outer error can be annotated without
// touching the original
func wrap(err error, code Code, message string) *Error {
	out := &Error{Code: code, Message: message, Cause: err}
	if inner := find(err); inner != nil && len(inner.Meta) > 0 {
		out.Meta = maps.Clone(inner.Meta)
	}
	return out
}

func find(err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return nil
}

// As is errors.As for callers that import this package under the std name
func As(err error, target **Error) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is for callers that import this package under the std name
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// GetCode returns CodeOK for nil, the code of the first *Error in the chain,
// or CodeInternal for foreign errors.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	if e := find(err); e != nil {
		return e.Code
	}
	return CodeInternal
}

// GetMeta returns the meta of the first *Error in the chain
func GetMeta(err error) map[string]any {
	if e := find(err); e != nil {
		return e.Meta
	}
	return nil
}
