// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package wifi provides typed access to ip(8) and iw(8) for ad-hoc
// interface configuration. All operations resolve the binary at call
// time and fold captured stderr into error messages.
//
// Teardown and join operations tolerate the states a previous boot can
// leave behind: a missing interface is not an error to delete, an
// existing interface is not an error to create, a joined cell is not
// an error to join. Running the whole sequence twice produces the same
// single interface as running it once.
package wifi

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cuemesh-project/cuemesh/lib/tool"
)

// run resolves the named binary, executes it with the given arguments,
// and returns captured stderr alongside any error. Stdout is discarded;
// none of the configuration commands produce meaningful stdout.
func run(ctx context.Context, binaryName string, args ...string) (string, error) {
	binaryPath, err := tool.FindBinary(binaryName)
	if err != nil {
		return "", err
	}

	var stderr bytes.Buffer
	command := exec.CommandContext(ctx, binaryPath, args...)
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return strings.TrimSpace(stderr.String()), fmt.Errorf("%s %s: %w (%s)",
			binaryName, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stderr.String()), nil
}

// stderrContains reports whether stderr mentions any of the given
// fragments, case-insensitively.
func stderrContains(stderr string, fragments ...string) bool {
	lowered := strings.ToLower(stderr)
	for _, fragment := range fragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}

// DeleteInterface removes a wireless interface. A nonexistent
// interface is not an error: teardown of prior state must be
// idempotent, and on first boot there is nothing to tear down.
func DeleteInterface(ctx context.Context, name string) error {
	stderr, err := run(ctx, "iw", "dev", name, "del")
	if err != nil {
		if stderrContains(stderr, "no such device", "does not exist") {
			return nil
		}
		return fmt.Errorf("deleting interface %q: %w", name, err)
	}
	return nil
}

// CreateIBSS creates an independent-cell (IBSS) interface on the given
// radio. An interface that already exists with that name is not an
// error; a crashed earlier run may have created it before dying.
func CreateIBSS(ctx context.Context, radio, name string) error {
	stderr, err := run(ctx, "iw", "phy", radio, "interface", "add", name, "type", "ibss")
	if err != nil {
		if stderrContains(stderr, "exists") {
			return nil
		}
		return fmt.Errorf("creating IBSS interface %q on %q: %w", name, radio, err)
	}
	return nil
}

// SetUp brings an interface administratively up with the given MTU.
func SetUp(ctx context.Context, name string, mtu int) error {
	if _, err := run(ctx, "ip", "link", "set", name, "up", "mtu", strconv.Itoa(mtu)); err != nil {
		return fmt.Errorf("bringing up %q (mtu %d): %w", name, mtu, err)
	}
	return nil
}

// JoinCell joins the interface to the named independent cell on the
// given frequency. An interface already joined to a cell is not an
// error; a second run must converge, not fail.
func JoinCell(ctx context.Context, name, cell string, frequencyMHz int) error {
	stderr, err := run(ctx, "iw", "dev", name, "ibss", "join", cell, strconv.Itoa(frequencyMHz))
	if err != nil {
		if stderrContains(stderr, "already") {
			return nil
		}
		return fmt.Errorf("joining cell %q on %q: %w", cell, name, err)
	}
	return nil
}

// InterfaceExists reports whether a network interface with the given
// name is registered with the kernel.
func InterfaceExists(name string) bool {
	_, err := os.Stat(filepath.Join("/sys/class/net", name))
	return err == nil
}

// InterfaceUp reports whether the interface's administrative state is
// up, by reading its sysfs flags (bit 0 is IFF_UP).
func InterfaceUp(name string) (bool, error) {
	data, err := os.ReadFile(filepath.Join("/sys/class/net", name, "flags"))
	if err != nil {
		return false, fmt.Errorf("reading flags for %q: %w", name, err)
	}
	flags, err := strconv.ParseInt(strings.TrimSpace(string(data)), 0, 64)
	if err != nil {
		return false, fmt.Errorf("parsing flags for %q: %w", name, err)
	}
	return flags&1 != 0, nil
}
