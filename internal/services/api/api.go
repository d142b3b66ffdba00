// Package api provides the HTTP API for the application
package api

import (
	"time"

	"rategrid/internal/platform/config"
	"rategrid/internal/platform/logger"
	phttp "rategrid/internal/platform/net/http"
	"rategrid/internal/platform/store"

	"rategrid/internal/modkit"
	"rategrid/internal/modkit/httpkit"
	"rategrid/internal/modkit/module"
	"rategrid/internal/modkit/swaggerkit"

	commmod "rategrid/internal/services/api/commissions/module"
	metamod "rategrid/internal/services/api/meta/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router and returns the commissions ports
// so main can run the session janitor and schema setup
func Mount(r phttp.Router, opt Options) commmod.Ports {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	mods := []module.Module{
		metamod.New(deps),
		commmod.New(deps, commmod.FromConfig(deps.Cfg)),
	}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, httpkit.CommonStack(StackFromConfig(opt.Config)), func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	return module.MustPortsAs[commmod.Ports]("commissions")
}

// StackFromConfig reads the CORE_API_ middleware knobs
func StackFromConfig(cfg config.Conf) httpkit.StackOptions {
	c := cfg.Prefix("CORE_API_")
	return httpkit.StackOptions{
		CORSOrigins: c.MayCSV("CORS_ORIGINS", []string{"*"}),
		Timeout:     c.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		Slow:        c.MayDuration("SLOW_REQUEST", time.Second),
	}
}
