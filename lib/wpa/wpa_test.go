// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

package wpa

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// stubSupplicant installs a stub wpa_supplicant on the front of PATH.
func stubSupplicant(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	script := "#!/bin/sh\necho \"wpa_supplicant $@\" >> \"$CUEMESH_TEST_CMDLOG\"\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(dir, "wpa_supplicant"), []byte(script), 0755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	logPath := filepath.Join(dir, "commands.log")
	t.Setenv("CUEMESH_TEST_CMDLOG", logPath)
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return logPath
}

func TestStartReturnsWithoutWaiting(t *testing.T) {
	stubSupplicant(t, "sleep 60")

	started := time.Now()
	handle, err := Start(context.Background(), "wlan0", "/etc/cuemesh/wpa.conf")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer handle.cmd.Process.Kill()

	if elapsed := time.Since(started); elapsed > 5*time.Second {
		t.Errorf("Start blocked for %v, want immediate return", elapsed)
	}
	if !handle.Running() {
		t.Error("Running() = false for a live process")
	}
	if handle.PID() <= 0 {
		t.Errorf("PID() = %d, want a real pid", handle.PID())
	}
}

func TestHandleObservesExit(t *testing.T) {
	stubSupplicant(t, "exit 1")

	handle, err := Start(context.Background(), "wlan0", "/etc/cuemesh/wpa.conf")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-handle.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("Done() not closed after process exit")
	}
	if handle.Running() {
		t.Error("Running() = true after process exit")
	}
}

func TestStartPassesInterfaceAndConfig(t *testing.T) {
	logPath := stubSupplicant(t, "exit 0")

	handle, err := Start(context.Background(), "wlan1", "/etc/cuemesh/stage.conf")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-handle.Done()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read command log: %v", err)
	}
	invocation := strings.TrimSpace(string(data))
	for _, want := range []string{"-i wlan1", "-c /etc/cuemesh/stage.conf", "-D nl80211"} {
		if !strings.Contains(invocation, want) {
			t.Errorf("invocation %q missing %q", invocation, want)
		}
	}
}
