// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package mount mounts and unmounts the removable code-sync device.
// Mounting shells out to mount(8) so the kernel's filesystem
// auto-detection applies: crew sticks are FAT in practice, but the
// node does not assume it. Ownership options are applied at mount time
// so the non-privileged sync step can write without a chown pass.
//
// Mount-state queries use device-ID comparison instead of parsing the
// mount table: a mount point sits on a different device than its
// parent directory.
package mount

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/cuemesh-project/cuemesh/lib/tool"
)

// Mount mounts device at mountPoint with the given numeric ownership,
// creating the mount point if needed.
func Mount(ctx context.Context, device, mountPoint string, uid, gid int) error {
	if err := os.MkdirAll(mountPoint, 0755); err != nil {
		return fmt.Errorf("creating mount point %s: %w", mountPoint, err)
	}

	binaryPath, err := tool.FindBinary("mount")
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	command := exec.CommandContext(ctx, binaryPath,
		"-o", fmt.Sprintf("uid=%d,gid=%d", uid, gid),
		device, mountPoint,
	)
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		return fmt.Errorf("mounting %s at %s: %w (%s)",
			device, mountPoint, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Unmount unmounts mountPoint. A mount point that is not mounted is
// not an error: the symmetry guarantee (always released on return)
// must hold even when the mount never happened.
func Unmount(ctx context.Context, mountPoint string) error {
	binaryPath, err := tool.FindBinary("umount")
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	command := exec.CommandContext(ctx, binaryPath, mountPoint)
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		stderrText := strings.TrimSpace(stderr.String())
		if strings.Contains(stderrText, "not mounted") ||
			strings.Contains(stderrText, "no mount point specified") {
			return nil
		}
		return fmt.Errorf("unmounting %s: %w (%s)", mountPoint, err, stderrText)
	}
	return nil
}

// Mounted reports whether mountPoint currently has a filesystem
// mounted on it. A missing mount point is simply not mounted.
func Mounted(mountPoint string) (bool, error) {
	var pointStat unix.Stat_t
	if err := unix.Stat(mountPoint, &pointStat); err != nil {
		if err == unix.ENOENT {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", mountPoint, err)
	}

	parent := filepath.Dir(mountPoint)
	var parentStat unix.Stat_t
	if err := unix.Stat(parent, &parentStat); err != nil {
		return false, fmt.Errorf("stat %s: %w", parent, err)
	}

	return pointStat.Dev != parentStat.Dev, nil
}

// DevicePresent reports whether the removable device node exists.
func DevicePresent(device string) bool {
	_, err := os.Stat(device)
	return err == nil
}
