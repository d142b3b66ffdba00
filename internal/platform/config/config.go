// Package config reads settings from the environment under nested prefixes
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"rategrid/internal/platform/logger"
)

// Conf is a prefix scoped view of the environment; the zero value reads unprefixed keys
type Conf struct{ prefix string }

// New returns the unprefixed root view
func New() Conf { return Conf{} }

// Prefix nests p under the current prefix, so New().Prefix("CORE_").Prefix("API_") reads CORE_API_*
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) get(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// may parses a set value; unparsable values are logged and replaced by def
func may[T any](c Conf, k string, def T, parse func(string) (T, error)) T {
	s := c.get(k)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(k)).Str("value", s).Interface("default", def).Msg("unparsable env value, using default")
		return def
	}
	return v
}

// MustString panics when the key is unset or blank
func (c Conf) MustString(k string) string {
	v := c.get(k)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
	}
	return v
}

// MayString returns the trimmed value or def
func (c Conf) MayString(k, def string) string {
	return may(c, k, def, func(s string) (string, error) { return s, nil })
}

func (c Conf) MayInt(k string, def int) int { return may(c, k, def, strconv.Atoi) }

func (c Conf) MayBool(k string, def bool) bool { return may(c, k, def, strconv.ParseBool) }

// MayDuration takes time.ParseDuration syntax such as 250ms or 2h
func (c Conf) MayDuration(k string, def time.Duration) time.Duration {
	return may(c, k, def, time.ParseDuration)
}

// MayCSV splits on commas and drops blank items; a value with no items is def
func (c Conf) MayCSV(k string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.get(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value lower cased when it is one of allowed and panics otherwise
func (c Conf) MayEnum(k, def string, allowed ...string) string {
	v := strings.ToLower(c.MayString(k, def))
	for _, a := range allowed {
		if v == strings.ToLower(a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", c.key(k)).Str("value", v).Strs("allowed", allowed).Msg("env value not allowed")
	return ""
}
