package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the id assigned to each HTTP request.
const RequestIDHeader = "X-Request-ID"

// responseWriter remembers the status so it can be logged and counted.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// originAllowed reports whether a request may act on this server. Requests
// without an Origin header (CLI tools, same-origin GETs) and same-origin
// requests always pass. Cross-origin requests pass only when corsOrigin is "*"
// or names that origin exactly.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if s.corsOrigin == "*" || (s.corsOrigin != "" && origin == s.corsOrigin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host != "" && u.Host == r.Host
}

// corsMiddleware refuses foreign origins and advertises the configured one.
// With no origin configured the server is same-origin only and sends no CORS
// headers.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.originAllowed(r) {
			slog.Warn("Rejected cross-origin request", "origin", r.Header.Get("Origin"), "path", r.URL.Path)
			s.writeErrorResponse(w, "Origin not allowed", http.StatusForbidden)
			return
		}

		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			w.Header().Set("Access-Control-Max-Age", "86400")
			if s.corsOrigin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

// instrument tags the request with an id, then logs and counts it under route.
// A client supplied id is kept so calls can be traced across services.
func instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()
		next(rw, r)
		elapsed := time.Since(start)

		status := strconv.Itoa(rw.statusCode)
		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
		slog.Debug("HTTP request",
			"request_id", id,
			"method", r.Method,
			"route", route,
			"status", rw.statusCode,
			"duration", elapsed.Round(time.Microsecond))
	}
}
