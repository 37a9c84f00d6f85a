package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Transport logs every outbound request once it completes. The logger
// stored in the request context is preferred over base so callers can
// attach fields (command name, attempt number) per call.
//
// Query strings and headers are never logged; they may carry tokens.
func Transport(base *slog.Logger) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			logger := base
			if l, ok := r.Context().Value(ctxKey{}).(*slog.Logger); ok {
				logger = l
			}
			logger = logger.With(
				"method", r.Method,
				"host", r.URL.Host,
				"path", r.URL.Path,
			)
			if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
				logger = logger.With("req_id", reqID)
			}

			resp, err := next.RoundTrip(r)
			duration := time.Since(start).Milliseconds()

			if err != nil {
				logger.Warn("http_request",
					"error", err,
					"duration_ms", duration,
				)
				return nil, err
			}

			level := slog.LevelDebug
			if resp.StatusCode >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "http_request",
				"status", resp.StatusCode,
				"duration_ms", duration,
			)
			return resp, nil
		})
	}
}
