// Package version holds the build version reported by /health and the binaries.
// Override at build time: -ldflags '-X github.com/invisible-tech/aicompliance/internal/version.Version=1.2.3'
package version

// Version is set at build time; default for local builds.
var Version = "0.1.0"

// UserAgent is sent by the HTTP clients in this module.
func UserAgent(component string) string {
	return "aicompliance-" + component + "/" + Version
}
