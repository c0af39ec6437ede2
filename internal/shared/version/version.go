// Package version carries the build version stamped at link time.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Set with -ldflags "-X github.com/fundhive/fundhive/internal/shared/version.Version=1.2.3".
var (
	Version = "dev"
	Commit  = ""
)

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	if version == "" {
		return ""
	}
	version = strings.TrimSpace(version)
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// String renders the build version, canonicalized when it is valid semver.
func String() string {
	v := Version
	if normalized := Normalize(v); semver.IsValid(normalized) {
		v = semver.Canonical(normalized)
	}
	if Commit != "" {
		return v + "+" + Commit
	}
	return v
}
