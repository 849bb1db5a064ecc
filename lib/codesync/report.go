// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

package codesync

import (
	"errors"
	"log/slog"
)

// Report is the explicit outcome of one sync attempt. The boot
// supervisor logs it and then launches regardless; the fields exist
// so the non-fatal decision stays visible and testable, not so anyone
// branches on them.
type Report struct {
	// DevicePresent is false for the common no-update boot: nobody
	// plugged in a stick. Absence is indistinguishable in severity
	// from success.
	DevicePresent bool

	// Mounted is true when the device was mounted; the symmetry
	// guarantee says it was also unmounted by the time Run returned
	// (UnmountErr records the attempt's failure if the release
	// itself failed).
	Mounted bool

	// ReplicaPath and Branch are the effective sync source after any
	// manifest override.
	ReplicaPath string
	Branch      string

	// Updated is true when the working copy advanced to new content.
	Updated bool

	// Head is the working copy's commit after the attempt, when it
	// could be read.
	Head string

	// Output is the update step's combined git output, for the log.
	Output string

	// Step failures, each nil on success. A failed step never stops
	// the unmount, and none of them stop the launch.
	WaitErr     error
	MountErr    error
	ManifestErr error
	UpdateErr   error
	UnmountErr  error
}

// Err aggregates the step failures, nil when the attempt was clean.
// Exists for logging; the supervisor deliberately ignores it for
// control flow.
func (r *Report) Err() error {
	return errors.Join(r.WaitErr, r.MountErr, r.ManifestErr, r.UpdateErr, r.UnmountErr)
}

// LogValue summarizes the report as one structured record.
func (r *Report) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Bool("device_present", r.DevicePresent),
		slog.Bool("updated", r.Updated),
	}
	if r.Head != "" {
		attrs = append(attrs, slog.String("head", r.Head))
	}
	if r.DevicePresent {
		attrs = append(attrs,
			slog.String("replica_path", r.ReplicaPath),
			slog.String("branch", r.Branch))
	}
	if err := r.Err(); err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	return slog.GroupValue(attrs...)
}
