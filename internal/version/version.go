/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package version holds build metadata injected via ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Version is the autodark release, injected at build time via ldflags.
var Version = "dev"

// CommitHash is the git commit hash, injected at build time via ldflags.
var CommitHash = "unknown"

// Info is the build metadata as printed by --version and `autodarkctl version --json`.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit"`
	GoVersion  string `json:"goVersion"`
}

// Get returns the build metadata of the running binary.
func Get() Info {
	return Info{Version: Version, CommitHash: CommitHash, GoVersion: runtime.Version()}
}

// GetVersion returns the full version string.
func GetVersion() string {
	return fmt.Sprintf("v%s (commit: %s)", Version, CommitHash)
}
