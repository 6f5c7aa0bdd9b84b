package version

import (
	"fmt"
	"runtime"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/san-kum/windsim/internal/version.Version=1.2.0"
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String is the one-line version banner.
func String() string {
	return fmt.Sprintf("windsim v%s (commit %s, built %s, %s)", Version, GitCommit, BuildTime, runtime.Version())
}
