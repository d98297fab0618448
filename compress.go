package dispatch

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// CompressConfig configures the Compress middleware.
type CompressConfig struct {
	Level   int      // gzip level (1-9, default: 5)
	MinSize int      // minimum first-write size to compress (default: 1024)
	Types   []string // content type prefixes to compress (default: JSON, problem JSON, YAML, XML, text/*)
}

// Compress returns middleware that gzip-compresses responses whose body
// is written in one piece of at least MinSize bytes. The Dispatcher
// always writes a buffered body in a single call.
func Compress(cfg ...CompressConfig) Middleware {
	c := CompressConfig{
		Level:   5,
		MinSize: 1024,
		Types: []string{
			"application/json",
			"application/problem+json",
			"application/yaml",
			"application/xml",
			"text/",
		},
	}
	if len(cfg) > 0 {
		if cfg[0].Level > 0 && cfg[0].Level <= gzip.BestCompression {
			c.Level = cfg[0].Level
		}
		if cfg[0].MinSize > 0 {
			c.MinSize = cfg[0].MinSize
		}
		if len(cfg[0].Types) > 0 {
			c.Types = cfg[0].Types
		}
	}

	pool := &sync.Pool{
		New: func() any {
			gz, _ := gzip.NewWriterLevel(io.Discard, c.Level) //nolint:errcheck // level is pre-validated
			return gz
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Accept-Encoding")
			gw := &gzipResponseWriter{
				ResponseWriter: w,
				pool:           pool,
				minSize:        c.MinSize,
				types:          c.Types,
				status:         http.StatusOK,
			}
			defer gw.finish()

			next.ServeHTTP(gw, r)
		})
	}
}

// gzipResponseWriter holds back the status line until the first write so
// the encoding headers can still be changed.
type gzipResponseWriter struct {
	http.ResponseWriter
	pool    *sync.Pool
	minSize int
	types   []string

	gz          *gzip.Writer
	status      int
	wroteHeader bool
	started     bool
}

func (g *gzipResponseWriter) WriteHeader(code int) {
	if g.wroteHeader {
		return
	}
	g.wroteHeader = true
	g.status = code
}

func (g *gzipResponseWriter) Write(b []byte) (int, error) {
	if !g.started {
		g.start(len(b))
	}
	if g.gz != nil {
		return g.gz.Write(b)
	}
	return g.ResponseWriter.Write(b)
}

func (g *gzipResponseWriter) start(firstWrite int) {
	g.started = true
	h := g.Header()
	if firstWrite >= g.minSize && g.shouldCompress(h.Get("Content-Type")) {
		gz := g.pool.Get().(*gzip.Writer) //nolint:errcheck,forcetypeassert // pool.New always returns *gzip.Writer
		gz.Reset(g.ResponseWriter)
		g.gz = gz
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
	}
	g.ResponseWriter.WriteHeader(g.status)
}

func (g *gzipResponseWriter) finish() {
	if !g.started {
		if g.wroteHeader {
			g.ResponseWriter.WriteHeader(g.status)
		}
		return
	}
	if g.gz != nil {
		//nolint:errcheck,gosec // best-effort flush
		g.gz.Close()
		g.pool.Put(g.gz)
		g.gz = nil
	}
}

func (g *gzipResponseWriter) shouldCompress(contentType string) bool {
	if contentType == "" || g.Header().Get("Content-Encoding") != "" {
		return false
	}
	for _, t := range g.types {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

func (g *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}
