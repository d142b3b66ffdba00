package swaggerkit

import (
	"strings"
	"sync"
)

var (
	secMu   sync.Mutex
	secured = map[string]bool{}
)

func init() {
	Register(applySecurity)
}

func opKey(path, method string) string { return strings.ToLower(method) + " " + path }

// MarkSecurePath flags the operation at path as requiring the bearer token
// path is relative to the /api/v1 server url
func MarkSecurePath(path, method string) {
	secMu.Lock()
	secured[opKey(path, method)] = true
	secMu.Unlock()
}

func applySecurity(spec map[string]any) {
	secMu.Lock()
	defer secMu.Unlock()
	if len(secured) == 0 {
		return
	}
	d := doc(spec)
	d.obj("components", "securitySchemes")["bearerAuth"] = map[string]any{"type": "http", "scheme": "bearer"}
	d.operations(func(path, method string, op map[string]any) {
		if secured[opKey(path, method)] {
			op["security"] = []any{map[string]any{"bearerAuth": []any{}}}
		}
	})
}
