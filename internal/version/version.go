// Package version exposes build metadata for the taps binary. The values are
// set at link time with -ldflags "-X".
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"

	sigsyaml "sigs.k8s.io/yaml"
)

// Populated via -ldflags.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// Info holds the build metadata for the binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetInfo returns the current build information. When no version was linked
// in, the main module version recorded by the Go toolchain is used if it is
// a tagged release.
func GetInfo() Info {
	v := version
	if v == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}

	return Info{
		Version:   v,
		GitCommit: shortCommit(gitCommit),
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a single-line description.
func (i Info) String() string {
	return fmt.Sprintf("taps %s (commit: %s, built: %s, %s %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

// JSON returns the info as a JSON document.
func (i Info) JSON() (string, error) {
	data, err := sigsyaml.Marshal(i)
	if err != nil {
		return "", fmt.Errorf("marshaling version info: %w", err)
	}

	j, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return "", fmt.Errorf("marshaling version info: %w", err)
	}

	return string(j), nil
}

func shortCommit(commit string) string {
	const n = 7
	if len(commit) > n {
		return commit[:n]
	}

	return commit
}
