package server

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// compressionResponseWriter sends the body through a gzip writer.
type compressionResponseWriter struct {
	http.ResponseWriter
	writer io.Writer
}

func (crw *compressionResponseWriter) Write(b []byte) (int, error) {
	return crw.writer.Write(b)
}

// compressionMiddleware gzips GET responses for clients that accept it.
// POST is left alone: it only ever answers with a redirect or a short error.
func compressionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !acceptsGzip(r) || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		gz := gzip.NewWriter(w)
		defer func() { _ = gz.Close() }()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		w.Header().Del("Content-Length")

		next.ServeHTTP(&compressionResponseWriter{ResponseWriter: w, writer: gz}, r)
	})
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}
