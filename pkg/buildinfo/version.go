// Package buildinfo holds version metadata stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/renoma/pkg/buildinfo.Version=v0.4.0 \
//	    -X github.com/matzehuels/renoma/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/renoma/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"strings"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// InformationURI is the project home, reported in SARIF output.
const InformationURI = "https://github.com/matzehuels/renoma"

// Short returns the version without a leading "v", as SARIF expects.
func Short() string { return strings.TrimPrefix(Version, "v") }

// String returns the multi-line build description.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + Version + " (" + Commit + ", " + Date + ")\n"
}
