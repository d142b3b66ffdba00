package ch

import (
	"os"
	"strings"

	"rategrid/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo tags every query with the binary that sent it, visible in system.query_log
// name is the product ("rategrid"), tag the binary role ("api", "bulk")
func BuildClientInfo(name, tag string) clickhouse.ClientInfo {
	bi := version.Info()
	host, _ := os.Hostname()
	return clickhouse.ClientInfo{Products: []struct{ Name, Version string }{
		{Name: orUnknown(name), Version: orUnknown(tag)},
		{Name: "build", Version: orUnknown(bi.Version) + "+" + orUnknown(bi.Commit)},
		{Name: "host", Version: orUnknown(host)},
	}}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
