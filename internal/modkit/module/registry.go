package module

import (
	"fmt"
	"sync"
)

// process wide registry filled while the api mounts; main reads ports back out of it
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register stores a port set for a module name, replacing any earlier one
func Register(name string, ports any) {
	mu.Lock()
	reg[name] = ports
	mu.Unlock()
}

// PortsAs fetches and type asserts a port set for name
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	out, ok2 := v.(T)
	return out, ok && ok2
}

// MustPortsAs is PortsAs that panics when the module never registered a T
func MustPortsAs[T any](name string) T {
	v, ok := PortsAs[T](name)
	if !ok {
		panic(fmt.Sprintf("module: no %T ports registered for %q", v, name))
	}
	return v
}

// Reset clears the registry for tests
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
