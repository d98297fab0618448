package dispatch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// ETagConfig configures the ETag middleware.
type ETagConfig struct {
	Weak bool // use weak ETags
}

// ETag returns middleware that tags successful GET and HEAD responses with
// a hash of their body and answers matching If-None-Match with 304.
// Dispatch is deterministic, so repeated identical requests carry the
// same tag. The tag hashes the bytes sent, so mount ETag outside Compress.
func ETag(cfg ...ETagConfig) Middleware {
	c := ETagConfig{}
	if len(cfg) > 0 {
		c = cfg[0]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			rec := &bufferedRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status < 200 || rec.status >= 300 {
				rec.flush()
				return
			}

			tag := bodyTag(rec.buf.Bytes(), c.Weak)
			w.Header().Set("ETag", tag)

			if match := r.Header.Get("If-None-Match"); match != "" && etagListContains(match, tag) {
				w.Header().Del("Content-Length")
				w.WriteHeader(http.StatusNotModified)
				return
			}

			rec.flush()
		})
	}
}

func bodyTag(body []byte, weak bool) string {
	hash := sha256.Sum256(body)
	tag := `"` + hex.EncodeToString(hash[:8]) + `"`
	if weak {
		tag = "W/" + tag
	}
	return tag
}

func etagListContains(list, tag string) bool {
	if strings.TrimSpace(list) == "*" {
		return true
	}
	opaque := strings.TrimPrefix(tag, "W/")
	for candidate := range strings.SplitSeq(list, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == opaque {
			return true
		}
	}
	return false
}

// bufferedRecorder captures the status and body so headers can be added
// after the handler has finished.
type bufferedRecorder struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (b *bufferedRecorder) WriteHeader(code int) {
	b.status = code
}

func (b *bufferedRecorder) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

func (b *bufferedRecorder) flush() {
	b.ResponseWriter.WriteHeader(b.status)
	//nolint:errcheck,gosec // best-effort write
	b.ResponseWriter.Write(b.buf.Bytes())
}
