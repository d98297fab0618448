package dispatch_test

import (
	"context"
	"net/http"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/dispatch"
)

func TestNewRegistry_rejects_invalid_registrations(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		resources []dispatch.Resource
		writers   []dispatch.Writer
		wantMsg   string
	}{
		"relative path": {
			resources: []dispatch.Resource{dispatch.NewResource("hello", dispatch.Get(hello))},
			wantMsg:   "must start with /",
		},
		"empty path": {
			resources: []dispatch.Resource{dispatch.NewResource("", dispatch.Get(hello))},
			wantMsg:   "must start with /",
		},
		"no methods": {
			resources: []dispatch.Resource{dispatch.NewResource("/hello")},
			wantMsg:   "has no methods",
		},
		"duplicate path": {
			resources: []dispatch.Resource{
				dispatch.NewResource("/hello", dispatch.Get(hello)),
				dispatch.NewResource("/hello", dispatch.Post(hello)),
			},
			wantMsg: "duplicate resource path",
		},
		"duplicate verb": {
			resources: []dispatch.Resource{dispatch.NewResource("/hello", dispatch.Get(hello), dispatch.Get(hello))},
			wantMsg:   "declares GET twice",
		},
		"zero method": {
			resources: []dispatch.Resource{dispatch.NewResource("/hello", dispatch.Method{Verb: http.MethodGet})},
			wantMsg:   "unbound method",
		},
		"nil writer": {
			resources: []dispatch.Resource{dispatch.NewResource("/hello", dispatch.Get(hello))},
			writers:   []dispatch.Writer{dispatch.StringWriter(), nil},
			wantMsg:   "writer 1 is nil",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			reg, err := dispatch.NewRegistry(dispatch.NewApplication(tc.resources, tc.writers))
			require.ErrorIs(t, err, dispatch.ErrInvalidRegistration)
			assert.ErrorContains(t, err, tc.wantMsg)
			assert.Nil(t, reg)
		})
	}
}

func TestNewRegistry_strict_writers(t *testing.T) {
	t.Parallel()

	type report struct{ Total int }

	resources := []dispatch.Resource{
		dispatch.NewResource("/hello", dispatch.Get(hello)),
		dispatch.NewResource("/report", dispatch.Get(func(context.Context) (report, error) {
			return report{}, nil
		})),
		dispatch.NewResource("/dynamic", dispatch.Get(func(context.Context) (any, error) {
			return "x", nil
		})),
	}

	t.Run("missing writer fails", func(t *testing.T) {
		t.Parallel()

		_, err := dispatch.NewRegistry(
			dispatch.NewApplication(resources, []dispatch.Writer{dispatch.StringWriter()}),
			dispatch.WithStrictWriters(),
		)
		require.ErrorIs(t, err, dispatch.ErrInvalidRegistration)
		require.ErrorIs(t, err, dispatch.ErrNoWriterFound)
		assert.ErrorContains(t, err, "GET /report")
	})

	t.Run("all declared types writable", func(t *testing.T) {
		t.Parallel()

		reg, err := dispatch.NewRegistry(
			dispatch.NewApplication(resources, []dispatch.Writer{dispatch.StringWriter(), dispatch.JSONWriter()}),
			dispatch.WithStrictWriters(),
		)
		require.NoError(t, err)
		assert.Len(t, reg.ListResources(), 3)
	})

	t.Run("lenient by default", func(t *testing.T) {
		t.Parallel()

		_, err := dispatch.NewRegistry(dispatch.NewApplication(resources, nil))
		require.NoError(t, err)
	})
}

func TestRegistry_lists_in_registration_order(t *testing.T) {
	t.Parallel()

	str, js := dispatch.StringWriter(), dispatch.JSONWriter()
	reg, err := dispatch.NewRegistry(dispatch.NewApplication(
		[]dispatch.Resource{
			dispatch.NewResource("/b", dispatch.Get(hello)),
			dispatch.NewResource("/a", dispatch.Get(hello)),
		},
		[]dispatch.Writer{js, str},
	))
	require.NoError(t, err)

	resources := reg.ListResources()
	require.Len(t, resources, 2)
	assert.Equal(t, "/b", resources[0].Path)
	assert.Equal(t, "/a", resources[1].Path)

	writers := reg.ListWriters()
	require.Len(t, writers, 2)
	assert.Equal(t, js.MediaType(), writers[0].MediaType())
	assert.Same(t, str, writers[1])
}

func TestRegistry_is_immutable(t *testing.T) {
	t.Parallel()

	resources := []dispatch.Resource{dispatch.NewResource("/hello", dispatch.Get(hello))}
	writers := []dispatch.Writer{dispatch.StringWriter()}

	reg, err := dispatch.NewRegistry(dispatch.NewApplication(resources, writers))
	require.NoError(t, err)

	resources[0].Path = "/changed"
	writers[0] = dispatch.NeverWriter()

	listed := reg.ListResources()
	listed[0].Methods[0].Verb = http.MethodDelete

	res, ok := reg.Lookup("/hello")
	require.True(t, ok)
	assert.Equal(t, []string{http.MethodGet}, res.Allowed())

	w, err := reg.WriterFor(reflect.TypeFor[string](), "")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", w.MediaType())
}

func TestRegistry_Lookup_exact_path(t *testing.T) {
	t.Parallel()

	reg, err := dispatch.NewRegistry(dispatch.NewApplication(
		[]dispatch.Resource{dispatch.NewResource("/hello", dispatch.Get(hello))},
		nil,
	))
	require.NoError(t, err)

	tests := map[string]struct {
		path string
		want bool
	}{
		"exact":          {path: "/hello", want: true},
		"trailing slash": {path: "/hello/", want: false},
		"prefix":         {path: "/hell", want: false},
		"root":           {path: "/", want: false},
		"case differs":   {path: "/Hello", want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, ok := reg.Lookup(tc.path)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestRegistry_WriterFor(t *testing.T) {
	t.Parallel()

	reg, err := dispatch.NewRegistry(dispatch.NewApplication(nil, []dispatch.Writer{
		dispatch.NeverWriter(),
		dispatch.StringWriter(),
		dispatch.JSONWriter(),
	}))
	require.NoError(t, err)

	w, err := reg.WriterFor(reflect.TypeFor[string](), "")
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", w.MediaType())

	w, err = reg.WriterFor(reflect.TypeFor[[]int](), "")
	require.NoError(t, err)
	assert.Equal(t, "application/json", w.MediaType())

	_, err = reg.WriterFor(reflect.TypeFor[float64](), "")
	require.ErrorIs(t, err, dispatch.ErrNoWriterFound)
}
