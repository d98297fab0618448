package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
)

// Sentinel errors for dispatch failures. A *DispatchError matches the
// sentinel for its Kind under errors.Is.
var (
	ErrNoResourceFound  = errors.New("no resource found")
	ErrNoHandlerFound   = errors.New("no handler found")
	ErrNoWriterFound    = errors.New("no writer found")
	ErrInvocationFailed = errors.New("invocation failed")
	ErrWriteFailed      = errors.New("write failed")

	ErrInvalidRegistration = errors.New("invalid registration")
	ErrUnsupportedType     = errors.New("unsupported type")
)

// Kind classifies where in the dispatch pipeline a request failed.
type Kind int

// Dispatch failure kinds, in pipeline order.
const (
	KindNoResource Kind = iota + 1
	KindNoHandler
	KindInvocation
	KindNoWriter
	KindWrite
)

func (k Kind) String() string {
	switch k {
	case KindNoResource:
		return "NoResourceFound"
	case KindNoHandler:
		return "NoHandlerFound"
	case KindNoWriter:
		return "NoWriterFound"
	case KindInvocation:
		return "InvocationFailure"
	case KindWrite:
		return "WriteFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNoResource:
		return ErrNoResourceFound
	case KindNoHandler:
		return ErrNoHandlerFound
	case KindNoWriter:
		return ErrNoWriterFound
	case KindInvocation:
		return ErrInvocationFailed
	case KindWrite:
		return ErrWriteFailed
	default:
		return nil
	}
}

// DispatchError reports a failed dispatch. Err is the underlying cause,
// if any (a handler error, a panic, or an I/O failure).
type DispatchError struct {
	Kind   Kind
	Method string
	Path   string
	Type   reflect.Type
	Allow  []string
	Err    error
}

func (e *DispatchError) Error() string {
	msg := e.Kind.String()
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		msg = sentinel.Error()
	}
	msg += ": " + e.Method + " " + e.Path
	if e.Type != nil {
		msg += " (" + e.Type.String() + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind's sentinel and the underlying cause.
func (e *DispatchError) Unwrap() []error {
	var errs []error
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// StatusCode maps the failure to an HTTP status. Invocation failures
// keep the status of a handler error that carries one.
func (e *DispatchError) StatusCode() int {
	switch e.Kind {
	case KindNoResource:
		return http.StatusNotFound
	case KindNoHandler:
		return http.StatusMethodNotAllowed
	case KindInvocation:
		var sc StatusCoder
		if errors.As(e.Err, &sc) && isErrorStatus(sc.StatusCode()) {
			return sc.StatusCode()
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ProblemDetail is an RFC 9457 problem details response.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// HTTPError is an error with an HTTP status code. Handlers return it to
// choose the status of a failed invocation.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder
// or reports a status outside 400-599.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) && isErrorStatus(sc.StatusCode()) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

func isErrorStatus(code int) bool {
	return code >= http.StatusBadRequest && code <= 599
}
