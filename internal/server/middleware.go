package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"vidresolve/internal/httputil"
)

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// logging logs each request with its status and duration. Health checks
// are not logged; query strings are redacted.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("source", httputil.RedactURL(r.URL.Query().Get("url"))),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		}
		if sw.status >= 500 {
			s.log.Warn("request completed with error", fields...)
		} else {
			s.log.Info("request completed", fields...)
		}
	})
}

// recovery turns a panicking handler into a 500.
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				s.log.Error("panic recovered",
					zap.Any("panic", p),
					zap.String("path", r.URL.Path))
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"status": "error",
					"reason": "internal error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
