package dispatch

import (
	"context"
	"net/http"
)

// Handlers receive only a context. Middleware hands them request data
// through typed context values.

type contextKey[T any] struct{}

// requestID is the context value type set by the RequestID middleware.
type requestID string

// SetValue returns r with val stored under its type T. A later SetValue
// of the same T shadows the earlier one.
func SetValue[T any](r *http.Request, val T) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), contextKey[T]{}, val))
}

// GetValue returns the value of type T stored by SetValue.
func GetValue[T any](ctx context.Context) (T, bool) {
	val, ok := ctx.Value(contextKey[T]{}).(T)
	return val, ok
}

// RequestIDFrom returns the request ID assigned by the RequestID
// middleware, or "" outside it.
func RequestIDFrom(ctx context.Context) string {
	id, _ := GetValue[requestID](ctx)
	return string(id)
}

// GetRequestID is RequestIDFrom for the request's context.
func GetRequestID(r *http.Request) string {
	return RequestIDFrom(r.Context())
}
