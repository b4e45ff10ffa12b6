package errors

import (
	// Go internal packages
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Error defines a standard application error.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	// Wrapped underlying error.
	WrappedErr error `json:"-"`
}

// Error returns the string representation of the error message.
func (e *Error) Error() string {
	parts := []string{e.Kind.String()}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.WrappedErr != nil {
		parts = append(parts, e.WrappedErr.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.WrappedErr
}

// Kind defines the kind or class of an error.
type Kind uint8

// Transport agnostic error "kinds"
const (
	Other           Kind = iota // Unclassified error
	Internal                    // Internal error
	Conflict                    // Conflict when an entity already exists
	Invalid                     // Invalid input, validation error etc
	NotFound                    // Entity does not exist
	FetchFailed                 // Remote read failed (transport, status or decode)
	PartialFailure              // Some operations of a batch failed
	AmbiguousSource             // No single current counsellor to replace from
	WriteFailed                 // Remote write failed (transport, status or success=false)
)

// ValidationFailed is the workflow name for Invalid.
const ValidationFailed = Invalid

func (k Kind) String() string {
	switch k {
	case Other:
		return "unclassified error"
	case Internal:
		return "internal error"
	case Conflict:
		return "conflict"
	case Invalid:
		return "invalid input"
	case NotFound:
		return "entity not found"
	case FetchFailed:
		return "fetch failed"
	case PartialFailure:
		return "partial failure"
	case AmbiguousSource:
		return "ambiguous source counsellor"
	case WriteFailed:
		return "write failed"
	default:
		return "unknown error kind"
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case error:
			e.WrappedErr = arg
		case string:
			e.Message = arg
		}
	}
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// HTTPStatus maps an error kind onto the status code the console API answers with.
func HTTPStatus(k Kind) int {
	switch k {
	case Invalid, AmbiguousSource:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case FetchFailed, WriteFailed:
		return http.StatusBadGateway
	case PartialFailure:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string) error {
	return E(NotFound, msg)
}

// NewFetchFailedError wraps a failed remote read.
func NewFetchFailedError(msg string, err error) error {
	return E(FetchFailed, msg, err)
}

var (
	As = errors.As
	Is = errors.Is
)
