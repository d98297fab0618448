// Package dispatchtest provides test helpers for exercising a dispatch
// Server or Dispatcher over real HTTP.
package dispatchtest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Client wraps an httptest.Server for convenient end-to-end testing.
type Client struct {
	Server *httptest.Server
}

// NewClient starts a test server for h and closes it when the test ends.
func NewClient(t testing.TB, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response holds a fully read response.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// String returns the body as a string.
func (r *Response) String() string { return string(r.Body) }

// Get sends a GET request.
func (c *Client) Get(t testing.TB, path string) *Response {
	t.Helper()
	return c.Do(t, http.MethodGet, path, nil)
}

// Do sends a request with the given method and headers and reads the whole body.
func (c *Client) Do(t testing.TB, method, path string, header http.Header) *Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, nil)
	if err != nil {
		t.Fatalf("dispatchtest: create request: %v", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("dispatchtest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("dispatchtest: close body: %v", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("dispatchtest: read body: %v", err)
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    body,
	}
}
