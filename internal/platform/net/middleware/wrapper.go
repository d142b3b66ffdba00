// Package middleware provides thin adapters over chi middleware without leaking chi types
package middleware

import (
	"net/http"
	"time"

	pstrings "rategrid/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// RequestID attaches or propagates X-Request-ID and stores it on context
func RequestID() func(http.Handler) http.Handler { return chimw.RequestID }

// RealIP sets RemoteAddr from X-Forwarded-For / X-Real-IP
func RealIP() func(http.Handler) http.Handler { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

func NoCache() func(http.Handler) http.Handler { return chimw.NoCache }

// Compress gzips/deflates responses at level
func Compress(level int) func(http.Handler) http.Handler {
	c := chimw.NewCompressor(level)
	return c.Handler
}

func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// JSONOnly rejects bodies that are not application/json with 415
// requests without a body pass
func JSONOnly() func(http.Handler) http.Handler { return chimw.AllowContentType("application/json") }

// Throttle caps in flight requests; the overflow gets 429 once it has waited backlogTimeout
// a non-positive timeout falls back to chi's default wait
func Throttle(limit int, backlogTimeout time.Duration) func(http.Handler) http.Handler {
	if backlogTimeout <= 0 {
		return chimw.Throttle(limit)
	}
	return chimw.ThrottleBacklog(limit, limit, backlogTimeout)
}

// Heartbeat answers GET path with 200 before any other handler runs
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS wraps go-chi/cors; empty methods and headers fall back to what the api uses
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}),
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
