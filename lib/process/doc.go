// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the cuemesh
// binaries. Fatal is the standard handler for errors from run() in
// main(), where the structured logger may not be initialized yet
// (flag parsing, config loading, log file creation all happen before
// the logger exists).
package process
