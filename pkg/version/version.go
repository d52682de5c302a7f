// Package version reports the build of the usbctl binary.
package version

import "fmt"

// Set via ldflags:
//
//	-X github.com/carverauto/vmusb/pkg/version.version=v0.3.0
//
//nolint:gochecknoglobals // ldflags injection
var (
	version   = "dev"
	buildID   = "dev"
	buildDate = "unknown"
)

// GetVersion returns the release version.
func GetVersion() string {
	return version
}

// GetBuildID returns the commit the binary was built from.
func GetBuildID() string {
	return buildID
}

// GetFullVersion returns the version with build ID and date.
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, date: %s)", version, buildID, buildDate)
}
