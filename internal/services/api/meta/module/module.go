// Package module mounts the meta endpoints
package module

import (
	"time"

	modkit "rategrid/internal/modkit"
	"rategrid/internal/modkit/httpkit"
	str "rategrid/internal/platform/strings"

	metahttp "rategrid/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	built modkit.Built
	deps  metahttp.Deps
}

// New builds the meta module; readiness pings whichever of postgres and clickhouse deps carries
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	md := metahttp.Deps{
		ServiceName:  "rategrid-api",
		StartedAt:    time.Now(),
		ReadyTimeout: deps.Cfg.Prefix("META_").MayDuration("READY_TIMEOUT", 2*time.Second),
		Dependencies: []metahttp.Dependency{
			{Name: "pg", Seam: deps.PG},
			{Name: "ch", Seam: deps.CH},
		},
	}
	return &Module{built: b, deps: md}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, nil, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Prefix is the mount point
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
