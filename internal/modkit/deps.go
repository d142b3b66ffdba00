package modkit

import (
	"rategrid/internal/modkit/repokit"
	"rategrid/internal/platform/config"
	"rategrid/internal/platform/logger"
	"rategrid/internal/platform/store"
)

// Deps holds the shared dependencies handed to every module
// PG and CH stay nil when their backend is disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}
