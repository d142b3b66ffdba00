// Package module wires commissions into the API using modkit
package module

import (
	"crypto/subtle"

	"rategrid/internal/adapters/commissionapi"
	modkit "rategrid/internal/modkit"
	"rategrid/internal/modkit/httpkit"
	perr "rategrid/internal/platform/errors"
	"rategrid/internal/platform/logger"
	"rategrid/internal/platform/net/middleware"
	str "rategrid/internal/platform/strings"
	"rategrid/internal/services/api/commissions/domain"
	commhttp "rategrid/internal/services/api/commissions/http"
	commrepo "rategrid/internal/services/api/commissions/repo"
	commsvc "rategrid/internal/services/api/commissions/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps  modkit.Deps
	built modkit.Built

	auth  middleware.AuthPort
	svc   *commsvc.Svc
	audit domain.AuditPort
	local bool
	ports Ports
}

// New constructs a commissions module with the provided dependencies and options
func New(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	base := []modkit.Option{modkit.WithName("commissions"), modkit.WithPrefix("/commissions")}
	if o.MaxInflight > 0 {
		base = append(base, modkit.WithMiddlewares(middleware.Throttle(o.MaxInflight, o.ThrottleWait)))
	}
	b := modkit.Build(append(base, opts...)...)

	audit := NewAudit(deps)
	svc := commsvc.New(NewStore(deps, o), audit, commsvc.Options{
		BulkConcurrency: o.BulkConcurrency,
		SessionTTL:      o.SessionTTL,
	})

	m := &Module{
		deps:  deps,
		built: b,
		svc:   svc,
		audit: audit,
		local: o.UpstreamURL == "",
	}
	if o.APIToken != "" {
		m.auth = tokenPort(o.APIToken)
	}
	m.ports = Ports{Service: svc, Janitor: svc, Schema: m}
	return m
}

// NewStore picks the record store: remote api when configured, then postgres, then in-memory
func NewStore(deps modkit.Deps, o Options) domain.Store {
	log := logger.Named("commissions")
	switch {
	case o.UpstreamURL != "":
		log.Info().Str("upstream", o.UpstreamURL).Msg("commissions use remote api")
		return commissionapi.NewClient(commissionapi.Options{
			BaseURL:    o.UpstreamURL,
			Token:      o.UpstreamToken,
			Timeout:    o.UpstreamTimeout,
			MaxRetries: o.UpstreamRetries,
		})
	case deps.PG != nil:
		return commsvc.NewPGStore(deps.PG, commrepo.NewPG())
	default:
		log.Warn().Msg("no postgres and no upstream configured; commissions live in memory")
		return commrepo.NewMemory()
	}
}

// NewAudit returns the clickhouse audit sink when clickhouse is wired, else the log sink
func NewAudit(deps modkit.Deps) domain.AuditPort {
	if deps.CH != nil {
		return commrepo.NewCHAudit(deps.CH)
	}
	return commrepo.LogAudit{}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, m.auth, func(rr httpkit.Router) { commhttp.Register(rr, m.svc) })
}

// tokenPort accepts exactly one shared bearer token; the caller is logged as api
func tokenPort(token string) *httpkit.Port {
	want := []byte(token)
	return httpkit.NewPortFunc(func(raw string) (string, error) {
		if subtle.ConstantTimeCompare([]byte(raw), want) != 1 {
			return "", perr.Unauthorizedf("invalid bearer token")
		}
		return "api", nil
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.built.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }
