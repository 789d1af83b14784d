// Package version provides information about the build version of the binaries
package version

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information for service. The version, commit and date
// variables are set at build time with -ldflags, e.g.
// -X 'glolotto/internal/core/version.version=v0.1.0'
func Info(service string) BuildInfo {
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// Version returns the release tag, "dev" for local builds
func Version() string { return version }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
