// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package codesync advances the node's working copy from a replica on
// removable media, best effort. The working copy is never left worse
// than before the attempt: the update is fast-forward only, and every
// failure (device absent, mount refused, diverged replica, unmount
// refused) is recorded in a Report instead of returned as an error.
// The device is unmounted on every path that mounted it, so a power
// cycle never finds the stick held.
package codesync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/cuemesh-project/cuemesh/lib/clock"
	"github.com/cuemesh-project/cuemesh/lib/config"
	"github.com/cuemesh-project/cuemesh/lib/devwait"
	"github.com/cuemesh-project/cuemesh/lib/git"
	"github.com/cuemesh-project/cuemesh/lib/mount"
)

// ManifestName is the optional per-device sync manifest at the mount
// root. Operators hand-edit it on the stick, so it is JSONC: comments
// and trailing commas allowed.
const ManifestName = "cuemesh.jsonc"

// Manifest overrides the configured sync source for the device
// carrying it. Empty fields keep the configured value, so a partial
// manifest is fine and a device without one syncs from the defaults.
type Manifest struct {
	ReplicaPath string `json:"replica_path"`
	Branch      string `json:"branch"`
}

// Manager runs the sync attempt.
type Manager struct {
	// Config is the node's sync configuration.
	Config config.SyncConfig

	// Clock drives the optional device wait.
	Clock clock.Clock
}

// Run performs one sync attempt and reports what happened. It never
// returns an error: the caller launches the application either way,
// and the Report is how failures reach the log. The logger is passed
// in rather than held because the boot supervisor creates it only
// after the log file is open; nil gets a text handler on stderr.
func (m *Manager) Run(ctx context.Context, logger *slog.Logger) *Report {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	report := &Report{
		ReplicaPath: m.Config.ReplicaPath,
		Branch:      m.Config.Branch,
	}

	present, err := devwait.Wait(ctx, m.Clock, m.Config.Device, m.Config.DeviceWait.Value())
	if err != nil {
		report.WaitErr = err
	}
	report.DevicePresent = present
	if !present {
		// The stick is only brought when an update is being pushed.
		logger.Info("removable device absent, no sync this boot", "device", m.Config.Device)
		return report
	}

	logger.Info("mounting removable device",
		"device", m.Config.Device, "mount_point", m.Config.MountPoint)
	if err := mount.Mount(ctx, m.Config.Device, m.Config.MountPoint, m.Config.UID, m.Config.GID); err != nil {
		report.MountErr = err
		logger.Error("mount failed", "error", err)
		return report
	}
	report.Mounted = true

	// Release the device no matter how the update goes. Leaving it
	// mounted across a power cycle risks the operator pulling a dirty
	// filesystem.
	defer func() {
		logger.Info("unmounting removable device", "mount_point", m.Config.MountPoint)
		if err := mount.Unmount(ctx, m.Config.MountPoint); err != nil {
			report.UnmountErr = err
			logger.Error("unmount failed", "error", err)
		}
	}()

	m.applyManifest(report, logger)
	m.update(ctx, report, logger)
	return report
}

// applyManifest overlays the device's optional manifest onto the
// report's sync source. A malformed manifest is recorded and the
// configured defaults stand.
func (m *Manager) applyManifest(report *Report, logger *slog.Logger) {
	manifestPath := filepath.Join(m.Config.MountPoint, ManifestName)
	data, err := os.ReadFile(manifestPath)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		report.ManifestErr = fmt.Errorf("reading manifest: %w", err)
		return
	}

	var manifest Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &manifest); err != nil {
		report.ManifestErr = fmt.Errorf("parsing %s: %w", ManifestName, err)
		logger.Error("manifest unusable, syncing from configured defaults", "error", report.ManifestErr)
		return
	}

	if manifest.ReplicaPath != "" {
		report.ReplicaPath = manifest.ReplicaPath
	}
	if manifest.Branch != "" {
		report.Branch = manifest.Branch
	}
	logger.Info("device manifest applied",
		"replica_path", report.ReplicaPath, "branch", report.Branch)
}

// update fast-forwards the working copy from the mounted replica.
func (m *Manager) update(ctx context.Context, report *Report, logger *slog.Logger) {
	replicaDir := filepath.Join(m.Config.MountPoint, report.ReplicaPath)
	if _, err := os.Stat(replicaDir); err != nil {
		report.UpdateErr = fmt.Errorf("replica %s not on device: %w", report.ReplicaPath, err)
		logger.Error("no replica on device", "error", report.UpdateErr)
		return
	}

	repo := git.NewRepository(m.Config.WorkingCopy)
	if !repo.IsRepository(ctx) {
		report.UpdateErr = fmt.Errorf("working copy %s is not a git repository", m.Config.WorkingCopy)
		logger.Error("working copy unusable for sync", "error", report.UpdateErr)
		return
	}

	headBefore, err := repo.Head(ctx)
	if err != nil {
		report.UpdateErr = err
		return
	}

	logger.Info("fast-forwarding working copy",
		"working_copy", m.Config.WorkingCopy, "replica", replicaDir, "branch", report.Branch)
	output, err := repo.FastForward(ctx, replicaDir, report.Branch)
	report.Output = output
	if err != nil {
		report.UpdateErr = err
		report.Head = headBefore
		logger.Error("update refused, working copy unchanged", "error", err)
		return
	}

	headAfter, err := repo.Head(ctx)
	if err != nil {
		report.UpdateErr = err
		return
	}
	report.Head = headAfter
	report.Updated = headAfter != headBefore
	if report.Updated {
		logger.Info("working copy updated", "from", headBefore, "to", headAfter)
	} else {
		logger.Info("working copy already current", "head", headAfter)
	}
}
