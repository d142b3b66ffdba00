// Package module defines the minimal contract for a modkit module and the port registry
package module

import (
	phttp "rategrid/internal/platform/net/http"
)

// Module defines the minimal contract used by modkit
// kept apart from modkit so modules exporting their own ports type avoid import cycles
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
