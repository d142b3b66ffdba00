package module

import (
	"time"

	"rategrid/internal/platform/config"
)

// Options controls the commissions module
type Options struct {
	// UpstreamURL switches sessions to a remote commissions api instead of local postgres
	UpstreamURL     string
	UpstreamToken   string
	UpstreamTimeout time.Duration
	UpstreamRetries int

	// APIToken guards the routes with a bearer token when set
	APIToken string

	// MaxInflight caps concurrent requests into the module; extra callers wait up to ThrottleWait
	MaxInflight  int
	ThrottleWait time.Duration

	BulkConcurrency int
	SessionTTL      time.Duration
}

// FromConfig reads with COMMISSIONS_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("COMMISSIONS_")
	return Options{
		UpstreamURL:     c.MayString("UPSTREAM_URL", ""),
		UpstreamToken:   c.MayString("UPSTREAM_TOKEN", ""),
		UpstreamTimeout: c.MayDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamRetries: c.MayInt("UPSTREAM_RETRIES", 3),
		APIToken:        c.MayString("API_TOKEN", ""),
		MaxInflight:     c.MayInt("MAX_INFLIGHT", 0),
		ThrottleWait:    c.MayDuration("THROTTLE_WAIT", 5*time.Second),
		BulkConcurrency: c.MayInt("BULK_CONCURRENCY", 8),
		SessionTTL:      c.MayDuration("SESSION_TTL", 2*time.Hour),
	}
}
