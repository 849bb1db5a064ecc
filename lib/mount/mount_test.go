// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

package mount

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// stubTools installs stub mount and umount binaries on the front of
// PATH and returns the command log path.
func stubTools(t *testing.T, mountBody, umountBody string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{"mount": mountBody, "umount": umountBody} {
		script := "#!/bin/sh\necho \"" + name + " $@\" >> \"$CUEMESH_TEST_CMDLOG\"\n" + body + "\n"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}

	logPath := filepath.Join(dir, "commands.log")
	t.Setenv("CUEMESH_TEST_CMDLOG", logPath)
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return logPath
}

func TestMountArguments(t *testing.T) {
	logPath := stubTools(t, "exit 0", "exit 0")
	mountPoint := filepath.Join(t.TempDir(), "stick")

	if err := Mount(context.Background(), "/dev/sda1", mountPoint, 1000, 1000); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read command log: %v", err)
	}
	invocation := strings.TrimSpace(string(data))
	want := "mount -o uid=1000,gid=1000 /dev/sda1 " + mountPoint
	if invocation != want {
		t.Errorf("invocation = %q, want %q", invocation, want)
	}

	// The mount point must have been created.
	if _, err := os.Stat(mountPoint); err != nil {
		t.Errorf("mount point not created: %v", err)
	}
}

func TestMountFailureCarriesStderr(t *testing.T) {
	stubTools(t, `echo "mount: /mnt/stick: special device /dev/sda1 does not exist." >&2; exit 32`, "exit 0")

	err := Mount(context.Background(), "/dev/sda1", filepath.Join(t.TempDir(), "stick"), 1000, 1000)
	if err == nil {
		t.Fatal("expected error for missing device")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error = %v, want to carry stderr", err)
	}
}

func TestUnmountNotMountedIsNotAnError(t *testing.T) {
	stubTools(t, "exit 0", `echo "umount: /mnt/stick: not mounted." >&2; exit 32`)

	if err := Unmount(context.Background(), "/mnt/stick"); err != nil {
		t.Errorf("Unmount on unmounted point: %v", err)
	}
}

func TestUnmountRealFailure(t *testing.T) {
	stubTools(t, "exit 0", `echo "umount: /mnt/stick: target is busy." >&2; exit 32`)

	err := Unmount(context.Background(), "/mnt/stick")
	if err == nil {
		t.Fatal("expected error for busy target")
	}
	if !strings.Contains(err.Error(), "busy") {
		t.Errorf("error = %v, want to carry stderr", err)
	}
}

func TestMountedFalseForPlainDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inner := filepath.Join(dir, "inner")
	if err := os.Mkdir(inner, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	mounted, err := Mounted(inner)
	if err != nil {
		t.Fatalf("Mounted: %v", err)
	}
	if mounted {
		t.Error("Mounted = true for a plain directory")
	}
}

func TestMountedFalseForMissingPath(t *testing.T) {
	t.Parallel()

	mounted, err := Mounted(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("Mounted: %v", err)
	}
	if mounted {
		t.Error("Mounted = true for a missing path")
	}
}

func TestDevicePresent(t *testing.T) {
	t.Parallel()

	present := filepath.Join(t.TempDir(), "sda1")
	if err := os.WriteFile(present, nil, 0644); err != nil {
		t.Fatalf("create fake device node: %v", err)
	}

	if !DevicePresent(present) {
		t.Error("DevicePresent = false for existing node")
	}
	if DevicePresent(present + "-absent") {
		t.Error("DevicePresent = true for missing node")
	}
}
