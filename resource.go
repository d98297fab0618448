package dispatch

import (
	"context"
	"net/http"
	"reflect"
)

// Handler is the zero-argument resource method signature. The context
// carries cancellation and middleware-provided values, never request data.
type Handler[T any] func(ctx context.Context) (T, error)

// invoker is the type-erased form of a Handler.
type invoker func(ctx context.Context) (any, error)

// Method binds an HTTP verb to a handler and its declared return type.
type Method struct {
	Verb    string
	Returns reflect.Type

	invoke invoker
}

// Resource is a registered handler unit: a route path and its methods.
type Resource struct {
	Path    string
	Methods []Method
}

// NewResource declares a resource at path. Methods are matched in the
// order given.
func NewResource(path string, methods ...Method) Resource {
	return Resource{Path: path, Methods: methods}
}

// Handle binds h to an arbitrary verb.
func Handle[T any](verb string, h Handler[T]) Method {
	return Method{
		Verb:    verb,
		Returns: reflect.TypeFor[T](),
		invoke: func(ctx context.Context) (any, error) {
			return h(ctx)
		},
	}
}

// Get binds h to GET.
func Get[T any](h Handler[T]) Method { return Handle(http.MethodGet, h) }

// Post binds h to POST.
func Post[T any](h Handler[T]) Method { return Handle(http.MethodPost, h) }

// Put binds h to PUT.
func Put[T any](h Handler[T]) Method { return Handle(http.MethodPut, h) }

// Patch binds h to PATCH.
func Patch[T any](h Handler[T]) Method { return Handle(http.MethodPatch, h) }

// Delete binds h to DELETE.
func Delete[T any](h Handler[T]) Method { return Handle(http.MethodDelete, h) }

// method returns the first method whose verb equals verb.
func (res Resource) method(verb string) (Method, bool) {
	for _, m := range res.Methods {
		if m.Verb == verb {
			return m, true
		}
	}
	return Method{}, false
}

// Allowed lists the verbs the resource answers, in registration order.
func (res Resource) Allowed() []string {
	verbs := make([]string, len(res.Methods))
	for i, m := range res.Methods {
		verbs[i] = m.Verb
	}
	return verbs
}
