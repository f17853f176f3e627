package report

import (
	"go.jacobcolvin.com/humane/version"
)

// Environment returns the platform snapshot embedded in every report:
// operating system, architecture, Go runtime, combined platform string, and
// build version and revision.
func Environment() map[string]string {
	return map[string]string{
		"os":       version.GoOS,
		"arch":     version.GoArch,
		"runtime":  version.GoVersion,
		"platform": version.Platform(),
		"version":  version.Info(),
		"revision": version.Revision,
	}
}
