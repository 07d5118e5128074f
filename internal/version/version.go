// Package version holds build information set with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/dgallion1/pdfoutline/internal/version.Version=v1.2.0"
package version

import "runtime"

var (
	Version    = "dev"
	Commit     = "unknown"
	CommitDate = "unknown"
	GoInfo     = runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH
)
