package middleware

import (
	"net/http"

	"rategrid/internal/platform/logger"
	pnet "rategrid/internal/platform/net"
)

// AuthPort resolves the caller behind a request
type AuthPort interface {
	Parse(r *http.Request) (principal string, err error)
}

// Auth rejects requests the port cannot resolve and writes the error envelope through write
// a nil port lets everything through
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := pnet.RequestID(r.Context())
			who, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, reqID)
				write(w, status, body)
				return
			}
			ctx := pnet.WithPrincipal(r.Context(), who)
			ctx = logger.WithRequest(ctx, reqID, who)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
