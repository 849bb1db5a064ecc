// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

package boot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/cuemesh-project/cuemesh/lib/codesync"
	"github.com/cuemesh-project/cuemesh/lib/config"
)

// stubSyncer returns a canned report and counts invocations.
type stubSyncer struct {
	report *codesync.Report
	calls  int
}

func (s *stubSyncer) Run(ctx context.Context, logger *slog.Logger) *codesync.Report {
	s.calls++
	return s.report
}

// newSupervisor builds a Supervisor whose application appends a line
// to launches.log in the working copy, so tests can count launches.
func newSupervisor(t *testing.T, report *codesync.Report) (*Supervisor, string) {
	t.Helper()
	root := t.TempDir()
	workingCopy := filepath.Join(root, "cuenode")
	if err := os.Mkdir(workingCopy, 0755); err != nil {
		t.Fatalf("mkdir working copy: %v", err)
	}

	configuration := config.Default()
	configuration.Sync.WorkingCopy = workingCopy
	configuration.Boot.LogFile = filepath.Join(root, "log", "boot.log")
	configuration.Boot.AppCommand = []string{"sh", "-c", "echo launched >> launches.log; echo 'cue app output'"}

	supervisor := &Supervisor{
		Config:  configuration,
		Sync:    &stubSyncer{report: report},
		Console: io.Discard,
	}
	return supervisor, workingCopy
}

func launchCount(t *testing.T, workingCopy string) int {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(workingCopy, "launches.log"))
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("read launches.log: %v", err)
	}
	return strings.Count(string(data), "launched")
}

func cleanReport() *codesync.Report {
	return &codesync.Report{DevicePresent: false}
}

func TestRunLaunchesAfterCleanSync(t *testing.T) {
	supervisor, workingCopy := newSupervisor(t, cleanReport())

	if err := supervisor.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := launchCount(t, workingCopy); got != 1 {
		t.Errorf("launch count = %d, want 1", got)
	}
}

// Every sync failure injection still reaches the launch, exactly once.
func TestRunFailOpen(t *testing.T) {
	failures := map[string]*codesync.Report{
		"device absent": {DevicePresent: false},
		"mount failed": {
			DevicePresent: true,
			MountErr:      errors.New("mount: wrong fs type"),
		},
		"update refused": {
			DevicePresent: true,
			Mounted:       true,
			UpdateErr:     errors.New("not a fast-forward"),
		},
		"unmount failed": {
			DevicePresent: true,
			Mounted:       true,
			Updated:       true,
			UnmountErr:    errors.New("target is busy"),
		},
	}

	for name, report := range failures {
		t.Run(name, func(t *testing.T) {
			supervisor, workingCopy := newSupervisor(t, report)

			if err := supervisor.Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got := launchCount(t, workingCopy); got != 1 {
				t.Errorf("launch count = %d, want exactly 1", got)
			}
		})
	}
}

func TestRunSecondInvocationRefused(t *testing.T) {
	supervisor, workingCopy := newSupervisor(t, cleanReport())

	if err := supervisor.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := supervisor.Run(context.Background()); err == nil {
		t.Fatal("second Run succeeded, want one launch per boot")
	}
	if got := launchCount(t, workingCopy); got != 1 {
		t.Errorf("launch count = %d, want 1 after refused rerun", got)
	}
}

func TestRunRestoresWorkingDirectory(t *testing.T) {
	supervisor, _ := newSupervisor(t, cleanReport())

	before, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := supervisor.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	after, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if after != before {
		t.Errorf("working directory = %s, want restored %s", after, before)
	}
}

func TestRunRestoresWorkingDirectoryOnLaunchFailure(t *testing.T) {
	supervisor, _ := newSupervisor(t, cleanReport())
	supervisor.Config.Boot.AppCommand = []string{"/does/not/exist"}

	before, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := supervisor.Run(context.Background()); err == nil {
		t.Fatal("Run succeeded with an unstartable application")
	}
	after, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if after != before {
		t.Errorf("working directory = %s, want restored %s", after, before)
	}
}

func TestRunCapturesApplicationOutput(t *testing.T) {
	supervisor, _ := newSupervisor(t, cleanReport())

	if err := supervisor.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	logData, err := os.ReadFile(supervisor.Config.Boot.LogFile)
	if err != nil {
		t.Fatalf("read boot log: %v", err)
	}
	if !strings.Contains(string(logData), "cue app output") {
		t.Error("application output missing from the boot log")
	}
	if !strings.Contains(string(logData), "code sync finished") {
		t.Error("sync report missing from the boot log")
	}
}

func TestRunApplicationCrashIsNotAnError(t *testing.T) {
	supervisor, _ := newSupervisor(t, cleanReport())
	supervisor.Config.Boot.AppCommand = []string{"sh", "-c", "echo launched >> launches.log; exit 3"}

	if err := supervisor.Run(context.Background()); err != nil {
		t.Errorf("Run = %v for a crashing application, want nil", err)
	}
}

func TestRunRotatesPreviousLog(t *testing.T) {
	supervisor, _ := newSupervisor(t, cleanReport())
	logPath := supervisor.Config.Boot.LogFile

	previous := "last boot's story\n"
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if err := os.WriteFile(logPath, []byte(previous), 0644); err != nil {
		t.Fatalf("write previous log: %v", err)
	}

	if err := supervisor.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	archive, err := os.Open(logPath + ".1.gz")
	if err != nil {
		t.Fatalf("open rotated log: %v", err)
	}
	defer archive.Close()
	decompressor, err := gzip.NewReader(archive)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	restored, err := io.ReadAll(decompressor)
	if err != nil {
		t.Fatalf("decompress rotated log: %v", err)
	}
	if string(restored) != previous {
		t.Errorf("rotated log = %q, want %q", restored, previous)
	}

	// The fresh log holds only this boot.
	current, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read current log: %v", err)
	}
	if strings.Contains(string(current), "last boot's story") {
		t.Error("previous boot's content leaked into the fresh log")
	}
}

func TestRunRotationDisabled(t *testing.T) {
	supervisor, _ := newSupervisor(t, cleanReport())
	supervisor.Config.Boot.RotateLogs = false
	logPath := supervisor.Config.Boot.LogFile

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if err := os.WriteFile(logPath, []byte("previous\n"), 0644); err != nil {
		t.Fatalf("write previous log: %v", err)
	}

	if err := supervisor.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(logPath + ".1.gz"); err == nil {
		t.Error("rotation ran with RotateLogs disabled")
	}
	// Without rotation the log appends.
	current, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.HasPrefix(string(current), "previous\n") {
		t.Error("append-mode log lost the previous content")
	}
}

func TestRunSyncCalledExactlyOnce(t *testing.T) {
	supervisor, _ := newSupervisor(t, cleanReport())
	syncer := supervisor.Sync.(*stubSyncer)

	if err := supervisor.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if syncer.calls != 1 {
		t.Errorf("sync calls = %d, want 1", syncer.calls)
	}
}

func TestPhaseStrings(t *testing.T) {
	t.Parallel()

	want := map[Phase]string{
		PhaseStart:     "start",
		PhaseSyncing:   "syncing",
		PhaseLaunching: "launching",
		PhaseRunning:   "running",
		PhaseExited:    "exited",
		Phase(99):      "unknown",
	}
	for phase, name := range want {
		if got := phase.String(); got != name {
			t.Errorf("Phase(%d).String() = %q, want %q", int(phase), got, name)
		}
	}
	// The log line for a transition reads naturally.
	if got := fmt.Sprintf("%s -> %s", PhaseSyncing, PhaseLaunching); got != "syncing -> launching" {
		t.Errorf("transition = %q", got)
	}
}
