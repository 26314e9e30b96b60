package app

// Build information populated via -ldflags at build time.
var (
	// BuildVersion is the semantic version of the built binary.
	BuildVersion = "0.0.0-dev"

	// BuildCommit is the VCS commit SHA associated with the build.
	BuildCommit = "unknown"

	// BuildDate is the ISO-8601 timestamp of the build.
	BuildDate = "unknown"
)

// VersionInfo is the payload served on /version and printed by -version.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Version returns the current build information.
func Version() VersionInfo {
	return VersionInfo{Version: BuildVersion, Commit: BuildCommit, Date: BuildDate}
}
