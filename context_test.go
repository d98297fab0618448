package dispatch_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/dispatchtest"
)

func TestGetValue_missing_returns_zero(t *testing.T) {
	t.Parallel()

	val, ok := dispatch.GetValue[int](context.Background())
	assert.False(t, ok)
	assert.Equal(t, 0, val)
}

func TestSetValueGetValue_custom_types_no_collision(t *testing.T) {
	t.Parallel()

	type tenantID string
	type userID string

	r, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/test", nil)
	require.NoError(t, err)

	r = dispatch.SetValue[tenantID](r, "tenant-1")
	r = dispatch.SetValue[userID](r, "user-9")

	tenant, ok := dispatch.GetValue[tenantID](r.Context())
	assert.True(t, ok)
	assert.Equal(t, tenantID("tenant-1"), tenant)

	user, ok := dispatch.GetValue[userID](r.Context())
	assert.True(t, ok)
	assert.Equal(t, userID("user-9"), user)
}

func TestSetValue_reaches_handler_through_server(t *testing.T) {
	t.Parallel()

	type caller struct{ Name string }

	d := newDispatcher(t,
		[]dispatch.Resource{dispatch.NewResource("/whoami", dispatch.Get(func(ctx context.Context) (string, error) {
			c, ok := dispatch.GetValue[caller](ctx)
			if !ok {
				return "", dispatch.Error(http.StatusUnauthorized, "anonymous")
			}
			return c.Name, nil
		}))},
		[]dispatch.Writer{dispatch.StringWriter()},
	)

	srv := dispatch.NewServer(d)
	srv.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if name := r.Header.Get("X-Caller"); name != "" {
				r = dispatch.SetValue(r, caller{Name: name})
			}
			next.ServeHTTP(w, r)
		})
	})

	c := dispatchtest.NewClient(t, srv)

	resp := c.Do(t, http.MethodGet, "/whoami", http.Header{"X-Caller": {"alice"}})
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "alice", resp.String())

	resp = c.Get(t, "/whoami")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func TestRequestIDFrom_ignores_plain_string_values(t *testing.T) {
	t.Parallel()

	r, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/test", nil)
	require.NoError(t, err)

	r = dispatch.SetValue(r, "not-an-id")
	assert.Empty(t, dispatch.GetRequestID(r))
}
