//go:build swag

package swaggerkit

import docs "rategrid/internal/services/api/docs"

// docReader reads the swag generated document
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }
