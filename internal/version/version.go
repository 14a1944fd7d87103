// Package version holds build metadata injected at link time.
package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/wowa/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/wowa/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/wowa/internal/version.Date={{.Date}}
)

// UserAgent is sent with every provider request.
func UserAgent() string {
	return "wowa/" + Version
}

// String is the one-line build description printed by `wowa version`.
func String() string {
	return fmt.Sprintf("wowa %s (commit %s, built %s)", Version, Commit, Date)
}
