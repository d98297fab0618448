package dispatchtest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/dispatch/dispatchtest"
)

func TestClient_Do(t *testing.T) {
	t.Parallel()

	c := dispatchtest.NewClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Echo", r.Header.Get("X-In"))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(r.Method)) //nolint:errcheck
	}))

	resp := c.Do(t, http.MethodPut, "/x", http.Header{"X-In": {"v"}})
	assert.Equal(t, http.StatusAccepted, resp.Status)
	assert.Equal(t, "v", resp.Headers.Get("X-Echo"))
	assert.Equal(t, "PUT", resp.String())

	assert.Equal(t, "GET", c.Get(t, "/").String())
}
