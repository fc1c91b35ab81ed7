package version

import "fmt"

var (
	Version             string = "0.1.0" // updated by hand at each release, follows SemVer
	GitCommit, GitState string // set by the build system through -ldflags
	BuildDate           string // set by the build system through -ldflags
)

func ToDetailVersion() string {
	return fmt.Sprintf("version=%s git=%s build=%s", Version, GitCommit, BuildDate)
}
