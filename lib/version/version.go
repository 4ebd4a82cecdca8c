// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package version exposes build identity for JSONLens binaries.
// The variables are overridden at build time via -ldflags.
package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "0.1.0-dev"

	// Commit is the git commit the build was produced from.
	Commit = "unknown"
)

// Info returns the one-line version string printed by --version.
func Info() string {
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
