// Package strings holds the string checks module wiring leans on
package strings

import std "strings"

// IfEmpty returns def when in has no items
func IfEmpty[T any](in, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustString panics with "<name> is required" when s is blank
func MustString(s, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix returns s as a route prefix with one leading slash and no trailing one
// the bare root panics since a module cannot own it
func MustPrefix(s string) string {
	p := "/" + std.Trim(std.TrimSpace(s), "/")
	if p == "/" {
		panic("route prefix is required")
	}
	return p
}
