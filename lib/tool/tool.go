// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package tool resolves the external system tools the bring-up and
// sync chains shell out to. Resolution checks PATH first and then the
// standard sbin directories, because boot jobs commonly run with
// PATH=/usr/bin:/bin while ip, iw, mount, and friends live in sbin.
package tool

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// sbinDirs are checked after PATH when resolving a tool.
var sbinDirs = []string{"/usr/sbin", "/sbin"}

// FindBinary resolves a system tool by name, checking PATH first and
// then the standard sbin directories. Returns the path to the binary.
func FindBinary(name string) (string, error) {
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	for _, dir := range sbinDirs {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s not found on PATH or in %s", name, strings.Join(sbinDirs, ", "))
}
