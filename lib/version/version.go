// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for the cuemesh
// binaries. Every binary accepts a --version flag that prints
// Info() and exits, so field units can be audited without a package
// manager (binaries are copied onto nodes, not installed).
package version

import "runtime/debug"

// Info returns a human-readable version string derived from the build
// info embedded by the Go toolchain: the module version when built
// from a tagged release, otherwise the VCS revision, otherwise
// "(devel)".
func Info() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "(devel)"
	}
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		return buildInfo.Main.Version
	}
	for _, setting := range buildInfo.Settings {
		if setting.Key == "vcs.revision" {
			revision := setting.Value
			if len(revision) > 12 {
				revision = revision[:12]
			}
			return revision
		}
	}
	return "(devel)"
}
