package modkit

import (
	"net/http"

	"rategrid/internal/modkit/httpkit"
	"rategrid/internal/platform/net/middleware"
)

// Option mutates build configuration for a module
type Option func(*Built)

// WithName sets a module name used in logs and registry
func WithName(name string) Option {
	return func(b *Built) { b.Name = name }
}

// WithPrefix mounts a module under a path prefix
func WithPrefix(prefix string) Option {
	return func(b *Built) { b.Prefix = prefix }
}

// WithMiddlewares attaches per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// Built is the resolved module wiring
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	b.Mw = append([]func(http.Handler) http.Handler(nil), b.Mw...)
	return b
}

// Mount registers routes under b.Prefix with b.Mw applied
// a non nil auth guards every route and marks it secured in the api docs
func (b Built) Mount(r httpkit.Router, auth middleware.AuthPort, register func(httpkit.Router)) {
	r.Route(b.Prefix, func(rr httpkit.Router) {
		if len(b.Mw) > 0 {
			rr.Use(b.Mw...)
		}
		if auth != nil {
			httpkit.ProtectedAt(rr, b.Prefix, auth, register)
			return
		}
		register(rr)
	})
}
