// Package net holds request scoped context values and the response envelope shared by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type principalKey struct{}

// WithRequestID stores reqID where chi's RequestID middleware would
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// RequestID returns the request id on ctx or ""
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithPrincipal records who the bearer token resolved to
func WithPrincipal(ctx context.Context, principal string) context.Context {
	if principal == "" {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, principal)
}

// Principal returns the authenticated caller or ""
func Principal(ctx context.Context) string {
	p, _ := ctx.Value(principalKey{}).(string)
	return p
}
