package interfaces

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthorized is returned when the caller lacks the privilege an operation requires
	// (administrator, verifier, owner, creator or contributor, depending on the operation).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a referenced record identifier does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for arguments rejected before any state is touched,
	// such as an empty sequence payload.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error codes carried in tagged results. They follow the HTTP status numbering.
const (
	CodeInvalidArgument = http.StatusBadRequest
	CodeUnauthenticated = http.StatusUnauthorized
	CodeUnauthorized    = http.StatusForbidden
	CodeNotFound        = http.StatusNotFound
	CodeInternal        = http.StatusInternalServerError
)

// ErrorCode maps an error from the registry taxonomy to its result code.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	default:
		return CodeInternal
	}
}

// ErrorFromCode is the inverse of ErrorCode, used by clients decoding tagged results.
// Unknown codes return nil.
func ErrorFromCode(code int) error {
	switch code {
	case CodeUnauthorized:
		return ErrUnauthorized
	case CodeNotFound:
		return ErrNotFound
	case CodeInvalidArgument:
		return ErrInvalidArgument
	default:
		return nil
	}
}
