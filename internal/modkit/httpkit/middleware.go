package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	phttp "rategrid/internal/platform/net/http"
	"rategrid/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack; zero values take the defaults
type StackOptions struct {
	CORSOrigins []string
	Timeout     time.Duration // default 30s
	Slow        time.Duration // access log warns above this, default 1s
}

// CommonStack is the middleware every api scope runs, outermost first
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Slow <= 0 {
		o.Slow = time.Second
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.Slow}),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
		middleware.JSONOnly(),
	}
}

// Auth answers rejected tokens with the json error envelope
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.JSON)
}
