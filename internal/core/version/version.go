// Package version provides information about the build version of the service.
package version

import "runtime/debug"

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go,omitempty"`
}

// Info returns the build information. The variables below are intended to be set at build time:
// -ldflags "-X 'rategrid/internal/core/version.version=v0.1.0' -X 'rategrid/internal/core/version.commit=abcd'"
// without ldflags the commit falls back to the vcs stamp of the binary
func Info() BuildInfo {
	bi := BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
	if info, ok := readBuildInfo(); ok {
		bi.Go = info.GoVersion
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "none" && s.Value != "" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.Date == "unknown" && s.Value != "" {
					bi.Date = s.Value
				}
			}
		}
	}
	return bi
}

var (
	service = "rategrid-api"
	version = "dev"
	commit  = "none"
	date    = "unknown"

	readBuildInfo = debug.ReadBuildInfo
)
