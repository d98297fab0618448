package dispatch_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/dispatchtest"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg       []dispatch.RequestIDConfig
		reqHeader http.Header
		checkID   func(t *testing.T, h http.Header)
	}{
		"generates a UUID when none provided": {
			checkID: func(t *testing.T, h http.Header) {
				t.Helper()
				_, err := uuid.Parse(h.Get("X-Request-ID"))
				require.NoError(t, err)
			},
		},
		"preserves existing X-Request-ID": {
			reqHeader: http.Header{"X-Request-Id": {"my-custom-id-123"}},
			checkID: func(t *testing.T, h http.Header) {
				t.Helper()
				assert.Equal(t, "my-custom-id-123", h.Get("X-Request-ID"))
			},
		},
		"custom header name": {
			cfg: []dispatch.RequestIDConfig{{Header: "X-Trace-ID"}},
			checkID: func(t *testing.T, h http.Header) {
				t.Helper()
				assert.NotEmpty(t, h.Get("X-Trace-ID"))
				assert.Empty(t, h.Get("X-Request-ID"))
			},
		},
		"custom generator": {
			cfg: []dispatch.RequestIDConfig{{Generator: func() string { return "fixed-id-42" }}},
			checkID: func(t *testing.T, h http.Header) {
				t.Helper()
				assert.Equal(t, "fixed-id-42", h.Get("X-Request-ID"))
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := dispatch.NewServer(helloDispatcher(t))
			srv.Use(dispatch.RequestID(tc.cfg...))
			c := dispatchtest.NewClient(t, srv)

			resp := c.Do(t, http.MethodGet, "/hello", tc.reqHeader)
			assert.Equal(t, http.StatusOK, resp.Status)
			tc.checkID(t, resp.Headers)
		})
	}
}

func TestRequestIDFrom_in_handler(t *testing.T) {
	t.Parallel()

	d := newDispatcher(t,
		[]dispatch.Resource{dispatch.NewResource("/id", dispatch.Get(func(ctx context.Context) (string, error) {
			return dispatch.RequestIDFrom(ctx), nil
		}))},
		[]dispatch.Writer{dispatch.StringWriter()},
	)
	srv := dispatch.NewServer(d)
	srv.Use(dispatch.RequestID())
	c := dispatchtest.NewClient(t, srv)

	resp := c.Do(t, http.MethodGet, "/id", http.Header{"X-Request-Id": {"ctx-test-id"}})
	assert.Equal(t, "ctx-test-id", resp.String())
}

func TestGetRequestID_without_middleware(t *testing.T) {
	t.Parallel()

	r, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil)
	require.NoError(t, err)
	assert.Empty(t, dispatch.GetRequestID(r))
}
