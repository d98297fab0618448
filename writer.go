package dispatch

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"mime"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Writer serializes handler results of the types it accepts.
//
// IsWriteable reports whether the writer can serialize a value of type t
// for mediaType. The dispatcher always passes an empty media type, which
// every built-in writer treats as "any".
type Writer interface {
	MediaType() string
	IsWriteable(t reflect.Type, mediaType string) bool
	WriteTo(w io.Writer, v any, t reflect.Type, mediaType string) error
}

// WriterFunc returns a Writer bound to exactly one declared type.
func WriterFunc[T any](mediaType string, fn func(w io.Writer, v T) error) Writer {
	return &typedWriter[T]{
		mediaType: mediaType,
		typ:       reflect.TypeFor[T](),
		fn:        fn,
	}
}

type typedWriter[T any] struct {
	mediaType string
	typ       reflect.Type
	fn        func(io.Writer, T) error
}

func (tw *typedWriter[T]) MediaType() string { return tw.mediaType }

func (tw *typedWriter[T]) IsWriteable(t reflect.Type, mediaType string) bool {
	return t == tw.typ && mediaMatches(tw.mediaType, mediaType)
}

func (tw *typedWriter[T]) WriteTo(w io.Writer, v any, _ reflect.Type, _ string) error {
	val, ok := v.(T)
	if !ok {
		return fmt.Errorf("%w: %T is not %s", ErrUnsupportedType, v, tw.typ)
	}
	return tw.fn(w, val)
}

// StringWriter writes string results verbatim as text/plain.
func StringWriter() Writer {
	return WriterFunc("text/plain; charset=utf-8", func(w io.Writer, s string) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// BytesWriter writes []byte results verbatim as application/octet-stream.
func BytesWriter() Writer {
	return WriterFunc("application/octet-stream", func(w io.Writer, b []byte) error {
		_, err := w.Write(b)
		return err
	})
}

// NeverWriter accepts no type. It is a placeholder for a writer slot that
// should not be selected.
func NeverWriter() Writer { return neverWriter{} }

type neverWriter struct{}

func (neverWriter) MediaType() string { return "" }

func (neverWriter) IsWriteable(reflect.Type, string) bool { return false }

func (neverWriter) WriteTo(io.Writer, any, reflect.Type, string) error {
	return ErrUnsupportedType
}

// jsonWriter encodes composite values as JSON.
type jsonWriter struct{}

// JSONWriter encodes structs, maps, slices, and json.Marshaler values.
func JSONWriter() Writer { return jsonWriter{} }

func (jsonWriter) MediaType() string { return "application/json" }

func (jsonWriter) IsWriteable(t reflect.Type, mediaType string) bool {
	if !mediaMatches("application/json", mediaType) {
		return false
	}
	if t.Implements(jsonMarshalerType) {
		return true
	}
	return isComposite(t)
}

func (jsonWriter) WriteTo(w io.Writer, v any, _ reflect.Type, _ string) error {
	return json.NewEncoder(w).Encode(v)
}

// xmlWriter encodes struct values as XML.
type xmlWriter struct{}

// XMLWriter encodes structs and pointers to structs as XML.
func XMLWriter() Writer { return xmlWriter{} }

func (xmlWriter) MediaType() string { return "application/xml" }

func (xmlWriter) IsWriteable(t reflect.Type, mediaType string) bool {
	if !mediaMatches("application/xml", mediaType) {
		return false
	}
	return derefType(t).Kind() == reflect.Struct
}

func (xmlWriter) WriteTo(w io.Writer, v any, _ reflect.Type, _ string) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(v)
}

// yamlWriter encodes composite values as YAML.
type yamlWriter struct{}

// YAMLWriter encodes structs, maps, and slices as YAML.
func YAMLWriter() Writer { return yamlWriter{} }

func (yamlWriter) MediaType() string { return "application/yaml" }

func (yamlWriter) IsWriteable(t reflect.Type, mediaType string) bool {
	if !mediaMatches("application/yaml", mediaType) {
		return false
	}
	return isComposite(t)
}

func (yamlWriter) WriteTo(w io.Writer, v any, _ reflect.Type, _ string) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

var jsonMarshalerType = reflect.TypeFor[json.Marshaler]()

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isComposite(t reflect.Type) bool {
	switch derefType(t).Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// mediaMatches reports whether a writer producing own can serve requested.
// An empty or wildcard request matches anything.
func mediaMatches(own, requested string) bool {
	if requested == "" || requested == "*/*" {
		return true
	}
	want, _, err := mime.ParseMediaType(requested)
	if err != nil {
		return false
	}
	have, _, err := mime.ParseMediaType(own)
	if err != nil {
		return false
	}
	return want == have
}
