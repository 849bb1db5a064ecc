// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package batman binds an ad-hoc interface to the batman-adv mesh
// overlay. The overlay is a black box here: this package loads the
// kernel module, attaches the port, and brings the resulting virtual
// interface up. Route computation across link flaps belongs entirely
// to the routing engine.
//
// Every operation converges rather than fails when the state it wants
// already exists: modprobe is idempotent by design, and an
// already-attached port is treated as success. That makes the whole
// bring-up sequence safe to rerun after a partial earlier attempt.
package batman

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cuemesh-project/cuemesh/lib/tool"
	"github.com/cuemesh-project/cuemesh/lib/wifi"
)

// ModuleName is the mesh routing kernel module.
const ModuleName = "batman-adv"

// run resolves and executes a tool, returning captured stderr
// alongside any error.
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

// EnsureModule loads the batman-adv kernel module. modprobe succeeds
// when the module is already loaded, so no special handling is needed
// for reruns.
func EnsureModule(ctx context.Context) error {
	if _, err := run(ctx, "modprobe", ModuleName); err != nil {
		return fmt.Errorf("loading %s: %w", ModuleName, err)
	}
	return nil
}

// AttachPort adds the ad-hoc interface to the mesh as a port of
// meshIface. A port that is already attached is success.
func AttachPort(ctx context.Context, meshIface, port string) error {
	stderr, err := run(ctx, "batctl", "meshif", meshIface, "interface", "add", port)
	if err != nil {
		if strings.Contains(strings.ToLower(stderr), "already") {
			return nil
		}
		return fmt.Errorf("attaching %q to mesh %q: %w", port, meshIface, err)
	}
	return nil
}

// OverlayUp brings the mesh overlay interface administratively up. The
// overlay presents a standard 1500-byte MTU; the encapsulation
// headroom lives on the underlying link.
func OverlayUp(ctx context.Context, meshIface string) error {
	return wifi.SetUp(ctx, meshIface, 1500)
}
