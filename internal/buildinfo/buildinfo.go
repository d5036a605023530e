// Package buildinfo exposes version metadata stamped into release binaries.
package buildinfo

import "strings"

// Injected at build time via ldflags.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Summary returns a human-readable version string.
func Summary() string {
	version := Version
	if version == "" {
		version = "dev"
	}
	detail := strings.TrimSpace(Commit + " " + Date)
	if detail == "" {
		return version
	}
	return version + " (" + detail + ")"
}
