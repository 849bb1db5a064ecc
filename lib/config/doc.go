// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for cuemesh
// binaries.
//
// Configuration is loaded from a single file specified by either the
// CUEMESH_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. Nodes are flashed identically from one
// image; deterministic configuration with no hidden overrides is what
// makes "every unit rejoins the same cell" auditable.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Cell, Sync, Boot sections
//   - [Default] -- the deployment defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other cuemesh packages.
package config
