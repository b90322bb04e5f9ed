package api

import (
	"net/http"
	"time"

	"cvrp-optimizer/internal/platform/logger"
	"cvrp-optimizer/internal/platform/metrics"
)

// statusWriter captures the final HTTP status code and number of bytes
// written, distinguishing "handler returned 200" from "client received
// a response".
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// loggingMiddleware logs end-to-end request duration and response size,
// and records the same observation against the request-duration
// histogram so /metrics and the logs agree on what happened.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, status: 0}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)

		logger.Log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.bytes,
			"duration_ms", duration.Milliseconds(),
		)
		metrics.Default().ObserveHTTPRequest(r.Method, r.URL.Path, sw.status, duration)
	})
}
