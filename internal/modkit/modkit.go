// Package modkit provides module wiring and core deps
package modkit

import "rategrid/internal/modkit/module"

// Module is the surface every API module implements
type Module = module.Module
