// @title         Rategrid API
// @version       0.1.0
// @description   Commission rate records and matrix edit sessions

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"rategrid/internal/modkit/repokit"
	"rategrid/internal/platform/config"
	"rategrid/internal/platform/logger"
	phttp "rategrid/internal/platform/net/http"
	"rategrid/internal/platform/store"

	"rategrid/internal/services/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // pgCfg lives under SERVICE_PGSQL_*
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // chCfg lives under SERVICE_CLICKHOUSE_*
	// bring up logging early
	l := logger.Get()

	// postgres is optional when sessions talk to an upstream api
	pgURL := pgCfg.MayString("DBURL", "")
	chOn := chCfg.MayBool("ENABLED", false)
	chURL := ""
	if chOn {
		chURL = chCfg.MustString("DBURL")
	}

	st, err := store.Open(
		ctx,
		store.Config{
			AppName: "rategrid",
			PG: store.PGConfig{
				Enabled:     pgURL != "",
				URL:         pgURL,
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),

				ConnectRetries: pgCfg.MayInt("CONNECT_RETRIES", 20),
				PingTimeout:    pgCfg.MayDuration("PING_TIMEOUT", 3*time.Second),
			},
			CH: store.CHConfig{
				Enabled:    chOn,
				URL:        chURL,
				ClientName: "rategrid",
				ClientTag:  "api",
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	// http server (reads CORE_API_API_PORT and the CORE_API_ timeouts)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	ports := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	if err := ports.Schema.EnsureSchema(ctx); err != nil {
		l.Panic().Err(err).Msg("commission schema setup failed")
	}

	go func() {
		if err := ports.Janitor.Run(ctx); err != nil && ctx.Err() == nil {
			l.Error().Err(err).Msg("session janitor stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			l.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	// run
	if err := srv.Run(); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
