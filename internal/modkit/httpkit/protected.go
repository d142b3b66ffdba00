package httpkit

import (
	"path"

	"rategrid/internal/modkit/swaggerkit"
	"rategrid/internal/platform/net/middleware"

	phttp "rategrid/internal/platform/net/http"
)

// ProtectedAt runs fn on a group behind bearer auth; base is where r is mounted and
// every route fn adds is marked as secured in the api docs
func ProtectedAt(r Router, base string, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(&securedRouter{Router: gr, base: base})
	})
}

type securedRouter struct {
	Router
	base string
}

func (s *securedRouter) at(p string) string { return path.Join("/", s.base, p) }

func (s *securedRouter) Get(p string, h phttp.Handler) {
	swaggerkit.MarkSecurePath(s.at(p), "get")
	s.Router.Get(p, h)
}

func (s *securedRouter) Post(p string, h phttp.Handler) {
	swaggerkit.MarkSecurePath(s.at(p), "post")
	s.Router.Post(p, h)
}

func (s *securedRouter) Route(prefix string, fn func(Router)) {
	base := s.at(prefix)
	s.Router.Route(prefix, func(sub Router) { fn(&securedRouter{Router: sub, base: base}) })
}

func (s *securedRouter) Group(fn func(Router)) {
	s.Router.Group(func(g Router) { fn(&securedRouter{Router: g, base: s.base}) })
}
