// Package buildinfo carries the version stamped in at link time.
package buildinfo

import "fmt"

var (
	// Version is the release number for this build
	Version = "dev"

	// Commit is the specific git hash
	Commit = "UNKNOWN"

	// BuildDate is the build timestamp
	BuildDate = "UNKNOWN"
)

// Summary is a one line description of the build.
func Summary() string {
	return fmt.Sprintf("parker %s (%s, built %s)", Version, Commit, BuildDate)
}
