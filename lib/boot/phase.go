// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

package boot

// Phase is the supervisor's position in the boot sequence. The
// Syncing → Launching transition is unconditional: no sync outcome
// can prevent the launch. Exited is terminal; the only way back to
// Start is a full reboot, which happens outside the supervisor.
type Phase int

const (
	// PhaseStart is the initial state, before the sync attempt.
	PhaseStart Phase = iota

	// PhaseSyncing covers the code sync attempt.
	PhaseSyncing

	// PhaseLaunching covers application start.
	PhaseLaunching

	// PhaseRunning means the application process is alive. This is
	// the node's state for its whole operational life.
	PhaseRunning

	// PhaseExited means the application process terminated. It is not
	// restarted, and a crash is not distinguished from a clean exit.
	PhaseExited
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseSyncing:
		return "syncing"
	case PhaseLaunching:
		return "launching"
	case PhaseRunning:
		return "running"
	case PhaseExited:
		return "exited"
	default:
		return "unknown"
	}
}
