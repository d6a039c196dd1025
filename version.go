// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package parabuild holds the build metadata for the parabuild binary.
package parabuild

import "fmt"

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)

// VersionString returns the version and commit in the form shown by `parabuild --version`.
func VersionString() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
