package httpkit

import (
	"net/http"
	"strings"

	perrs "rategrid/internal/platform/errors"
)

// TokenFunc resolves a bearer token to the principal it belongs to
type TokenFunc func(token string) (principal string, err error)

// Port implements middleware.AuthPort over a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from fn
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// Parse reads the Authorization header; any failure is unauthorized
func (p *Port) Parse(r *http.Request) (string, error) {
	raw, ok := bearer(r.Header.Get("Authorization"))
	if !ok {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	if p == nil || p.parse == nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	who, err := p.parse(raw)
	if err != nil || who == "" {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	return who, nil
}

// bearer accepts the scheme in any case
func bearer(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
