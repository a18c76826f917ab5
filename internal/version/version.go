// Package version carries build metadata set with -ldflags "-X".
package version

import (
	"runtime"
	"strings"
)

var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// String renders "qrshield <version> (<commit>, built <date>, <go version>)",
// leaving out whatever the build did not stamp.
func String() string {
	details := make([]string, 0, 3)
	if Commit != "" {
		details = append(details, shortCommit(Commit))
	}
	if BuildDate != "" {
		details = append(details, "built "+BuildDate)
	}
	details = append(details, runtime.Version())
	return "qrshield " + Version + " (" + strings.Join(details, ", ") + ")"
}

func shortCommit(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
