// Package version reports build metadata for the mdwatch binary.
// The values are injected at link time via -ldflags.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set via -ldflags "-X github.com/hupe1980/mdwatch/internal/version.version=...".
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

// Info holds the build metadata for the binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"gitCommit" yaml:"gitCommit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the current build information.
func Get() Info {
	commit := gitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}

	return Info{
		Version:   version,
		GitCommit: commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a human-readable single-line version string.
func (i Info) String() string {
	return fmt.Sprintf("mdwatch %s (commit: %s, built: %s, %s %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}

// Encode renders the info as "text", "json" or "yaml".
func (i Info) Encode(format string) (string, error) {
	switch format {
	case "", "text":
		return i.String(), nil
	case "json":
		data, err := json.MarshalIndent(i, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling version info: %w", err)
		}

		return string(data), nil
	case "yaml":
		data, err := yaml.Marshal(i)
		if err != nil {
			return "", fmt.Errorf("marshaling version info: %w", err)
		}

		return strings.TrimSuffix(string(data), "\n"), nil
	default:
		return "", fmt.Errorf("unknown format %q: must be one of text, json, yaml", format)
	}
}
