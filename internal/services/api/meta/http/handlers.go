// Package http serves liveness, readiness and build info
package http

import (
	"context"
	"net/http"
	"time"

	"rategrid/internal/core/version"
	"rategrid/internal/modkit/httpkit"
)

// Pinger is satisfied by backends that can report readiness
type Pinger interface {
	Ping(context.Context) error
}

// Dependency is one backend the readiness probe checks; a nil Seam is not configured
type Dependency struct {
	Name string
	Seam any
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName  string
	StartedAt    time.Time
	Dependencies []Dependency
	ReadyTimeout time.Duration
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	h := &handlers{deps: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Service string `json:"service" example:"rategrid-api"`
	Started string `json:"started" example:"2026-03-02T08:00:00Z"`
	Uptime  int64  `json:"uptime_seconds" example:"300"`
}

// ReadyCheck is the result of pinging one dependency
type ReadyCheck struct {
	Name   string `json:"name" example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped unknown
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness; status is ok, degraded or fail
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
}

// @Summary Liveness and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
	}, nil
}

// @Summary Readiness probe across configured backends
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} httpkit.Envelope
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.deps.ReadyTimeout)
	defer cancel()

	out := ReadyResponse{Status: "ok", Checks: make([]ReadyCheck, 0, len(h.deps.Dependencies))}
	for _, d := range h.deps.Dependencies {
		c := ping(ctx, d)
		switch {
		case c.Status == "fail":
			out.Status = "fail"
		case c.Status == "unknown" && out.Status == "ok":
			out.Status = "degraded"
		}
		out.Checks = append(out.Checks, c)
	}
	if out.Status == "fail" {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: out}, nil
	}
	return out, nil
}

func ping(ctx context.Context, d Dependency) ReadyCheck {
	if d.Seam == nil {
		return ReadyCheck{Name: d.Name, Status: "skipped"}
	}
	p, ok := d.Seam.(Pinger)
	if !ok {
		return ReadyCheck{Name: d.Name, Status: "unknown"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: d.Name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: d.Name, Status: "ok"}
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}
