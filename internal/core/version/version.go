// Package version reports the build stamp of the running binary
package version

// BuildInfo is served by /meta/version and printed by the cli
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the stamp for service; the values are set at link time:
//
//	-ldflags "-X 'opsroute/internal/core/version.version=v0.3.0' -X 'opsroute/internal/core/version.commit=abcd'"
func Info(service string) BuildInfo {
	if service == "" {
		service = "opsroute-api"
	}
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// String renders "service version (commit, date)"
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
