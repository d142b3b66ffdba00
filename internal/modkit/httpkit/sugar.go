package httpkit

import (
	"net/http"

	phttp "rategrid/internal/platform/net/http"
)

// PostJSON mounts a bound json handler under POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, JSON(h))
}

// Get mounts a handler that never reads the body
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.NoBody(h))
}

// Post is Get for POST
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, phttp.NoBody(h))
}
