package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
)

// Result describes a successful dispatch.
type Result struct {
	Path      string
	Method    string
	Type      reflect.Type
	Writer    Writer
	MediaType string
	Size      int
}

// ErrorHandler is a custom error response writer.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Dispatcher routes requests to registry resources and serializes their
// results. It implements http.Handler.
type Dispatcher struct {
	registry     *Registry
	logger       *slog.Logger
	errorHandler ErrorHandler
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger used to report failed dispatches.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithErrorHandler sets a custom error handler for failed dispatches.
// The default writes an RFC 9457 problem response.
func WithErrorHandler(h ErrorHandler) DispatcherOption {
	return func(d *Dispatcher) {
		if h != nil {
			d.errorHandler = h
		}
	}
}

// NewDispatcher creates a Dispatcher over reg.
func NewDispatcher(reg *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry:     reg,
		logger:       slog.Default(),
		errorHandler: problemErrorHandler,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle dispatches method and path to a resource and writes the
// serialized result to w. On any failure it returns a *DispatchError and
// w is left untouched.
func (d *Dispatcher) Handle(ctx context.Context, method, path string, w io.Writer) (*Result, error) {
	var buf bytes.Buffer
	res, err := d.render(ctx, method, path, &buf)
	if err != nil {
		return nil, err
	}

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return nil, &DispatchError{Kind: KindWrite, Method: method, Path: path, Type: res.Type, Err: err}
	}
	res.Size = n
	return res, nil
}

// render runs the pipeline up to serialization into buf.
func (d *Dispatcher) render(ctx context.Context, method, path string, buf *bytes.Buffer) (*Result, error) {
	resource, ok := d.registry.Lookup(path)
	if !ok {
		return nil, &DispatchError{Kind: KindNoResource, Method: method, Path: path}
	}

	m, ok := resource.method(method)
	if !ok {
		return nil, &DispatchError{Kind: KindNoHandler, Method: method, Path: path, Allow: resource.Allowed()}
	}

	v, err := invoke(ctx, m)
	if err != nil {
		return nil, &DispatchError{Kind: KindInvocation, Method: method, Path: path, Type: m.Returns, Err: err}
	}

	// A nil interface result has no runtime type; fall back to the
	// declared one.
	t := reflect.TypeOf(v)
	if t == nil {
		t = m.Returns
	}

	wr, err := d.registry.WriterFor(t, "")
	if err != nil {
		return nil, &DispatchError{Kind: KindNoWriter, Method: method, Path: path, Type: t}
	}

	if err := wr.WriteTo(buf, v, t, ""); err != nil {
		return nil, &DispatchError{Kind: KindWrite, Method: method, Path: path, Type: t, Err: err}
	}

	return &Result{
		Path:      path,
		Method:    method,
		Type:      t,
		Writer:    wr,
		MediaType: wr.MediaType(),
	}, nil
}

// invoke calls the method, converting a panic into an error.
func invoke(ctx context.Context, m Method) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return m.invoke(ctx)
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	res, err := d.render(r.Context(), r.Method, r.URL.Path, &buf)
	if err != nil {
		d.fail(w, r, err)
		return
	}

	h := w.Header()
	if res.MediaType != "" {
		h.Set("Content-Type", res.MediaType)
	}
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		d.logger.LogAttrs(r.Context(), slog.LevelWarn, "response write failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

func (d *Dispatcher) fail(w http.ResponseWriter, r *http.Request, err error) {
	attrs := []slog.Attr{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	}
	if id := GetRequestID(r); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}

	level := slog.LevelError
	if ErrorStatus(err) < http.StatusInternalServerError {
		level = slog.LevelInfo
	}
	d.logger.LogAttrs(r.Context(), level, "dispatch failed", attrs...)

	var de *DispatchError
	if errors.As(err, &de) && de.Kind == KindNoHandler {
		w.Header().Set("Allow", strings.Join(de.Allow, ", "))
	}

	d.errorHandler(w, r, err)
}
