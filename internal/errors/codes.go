package errors

import "fmt"

// Code classifies an error for callers. The generic codes mirror gRPC; the
// last two are specific to advancement.
type Code string

const (
	CodeOK                 Code = "OK"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeAborted            Code = "ABORTED"
	CodeInternal           Code = "INTERNAL"
	CodeUnavailable        Code = "UNAVAILABLE"

	// The character does not qualify yet; Meta[MetaMissing] says why
	CodeRequirementsNotMet Code = "REQUIREMENTS_NOT_MET"

	// No mapping connects the two classes
	CodeNoAdvancementPath Code = "NO_ADVANCEMENT_PATH"
)

func (c Code) String() string {
	return string(c)
}

// Retryable reports whether the same call may succeed later without any
// change to the data
func (c Code) Retryable() bool {
	return c == CodeAborted || c == CodeUnavailable
}

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func NotFoundf(format string, args ...any) *Error { return Newf(CodeNotFound, format, args...) }

func InvalidArgument(message string) *Error { return New(CodeInvalidArgument, message) }

func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

func AlreadyExistsf(format string, args ...any) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

func Internal(message string) *Error { return New(CodeInternal, message) }

func Unavailable(message string) *Error { return New(CodeUnavailable, message) }

func FailedPrecondition(message string) *Error { return New(CodeFailedPrecondition, message) }

func FailedPreconditionf(format string, args ...any) *Error {
	return Newf(CodeFailedPrecondition, format, args...)
}

// InvalidState reports that the character's current state forbids the
// action, e.g. awakening a character that already has a class. It shares
// CodeFailedPrecondition.
func InvalidState(message string) *Error { return FailedPrecondition(message) }

func InvalidStatef(format string, args ...any) *Error { return FailedPreconditionf(format, args...) }

// Aborted means a concurrent writer won; the caller may retry
func Aborted(message string) *Error { return New(CodeAborted, message) }

func Abortedf(format string, args ...any) *Error { return Newf(CodeAborted, format, args...) }

// RequirementsNotMet is returned with the diagnostics attached under
// MetaMissing
func RequirementsNotMet(message string) *Error { return New(CodeRequirementsNotMet, message) }

func NoAdvancementPath(fromClassID, toClassID string) *Error {
	return New(CodeNoAdvancementPath, fmt.Sprintf("no advancement path from %q to %q", fromClassID, toClassID)).
		WithMeta("from_class_id", fromClassID).
		WithMeta("to_class_id", toClassID)
}

func IsNotFound(err error) bool { return GetCode(err) == CodeNotFound }

func IsInvalidArgument(err error) bool { return GetCode(err) == CodeInvalidArgument }

func IsAlreadyExists(err error) bool { return GetCode(err) == CodeAlreadyExists }

func IsFailedPrecondition(err error) bool { return GetCode(err) == CodeFailedPrecondition }

func IsInvalidState(err error) bool { return IsFailedPrecondition(err) }

func IsAborted(err error) bool { return GetCode(err) == CodeAborted }

func IsRequirementsNotMet(err error) bool { return GetCode(err) == CodeRequirementsNotMet }

func IsNoAdvancementPath(err error) bool { return GetCode(err) == CodeNoAdvancementPath }

// IsRetryable reports whether err carries a retryable code
func IsRetryable(err error) bool { return err != nil && GetCode(err).Retryable() }
