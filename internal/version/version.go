// Package version carries the build fingerprint of the silica binary.
// The variables are plain strings so release builds can stamp them via
// -ldflags; a plain source build reports the dev version.
package version

import "github.com/fatih/color"

var (
	major = color.New(color.FgYellow, color.Bold).Sprint("0")
	minor = color.New(color.FgGreen, color.Bold).Sprint("1")
	patch = color.New(color.FgBlue, color.Bold).Sprint("0")

	// Version is the semantic version of the compiler.
	Version = major + "." + minor + "." + patch + "-dev"

	// GitCommit is the commit the binary was built from, when stamped.
	GitCommit = ""

	// GitMessage is that commit's subject line, when stamped.
	GitMessage = ""

	// BuildDate is the build timestamp in ISO-8601, when stamped.
	BuildDate = ""
)
