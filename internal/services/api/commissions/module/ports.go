package module

import (
	"context"

	"rategrid/internal/services/api/commissions/domain"
	commrepo "rategrid/internal/services/api/commissions/repo"
)

// Ports holds the ports exposed by the commissions module
type Ports struct {
	Service domain.ServicePort
	Janitor domain.JanitorPort
	Schema  domain.SchemaPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Run evicts idle sessions until ctx is done
func (m *Module) Run(ctx context.Context) error { return m.ports.Janitor.Run(ctx) }

// EnsureSchema creates commission_rates when postgres backs the store and the audit table when clickhouse is wired
func (m *Module) EnsureSchema(ctx context.Context) error {
	if m.local && m.deps.PG != nil {
		if err := commrepo.EnsureSchema(ctx, m.deps.PG); err != nil {
			return err
		}
	}
	if a, ok := m.audit.(*commrepo.CHAudit); ok {
		return a.EnsureSchema(ctx)
	}
	return nil
}
