// Package raw reads environment settings before the logger exists
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Env is an environment prefix such as "LOG_"
type Env string

func (e Env) lookup(key string) string {
	return strings.TrimSpace(os.Getenv(string(e) + key))
}

// Get returns the trimmed value or def
func (e Env) Get(key, def string) string {
	if v := e.lookup(key); v != "" {
		return v
	}
	return def
}

// Bool parses the value with strconv.ParseBool and also accepts yes and no
func (e Env) Bool(key string, def bool) bool {
	switch v := strings.ToLower(e.lookup(key)); v {
	case "":
		return def
	case "yes":
		return true
	case "no":
		return false
	default:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
}

// Int parses a non negative int; anything else is def
func (e Env) Int(key string, def int) int {
	n, err := strconv.Atoi(e.lookup(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}
