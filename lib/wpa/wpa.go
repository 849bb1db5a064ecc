// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package wpa starts the link authentication daemon for the ad-hoc
// interface. wpa_supplicant runs for the life of the node with a
// pre-shared configuration; only nodes holding the matching secret can
// exchange traffic over the cell.
//
// The process is started in the background and never gates bring-up:
// an authentication failure is observable as mesh partition (the node
// sees no peers), not as a boot error. The caller holds the returned
// Handle so the child stays supervised. Nothing waits on it today,
// but monitoring can be added without changing how it is started.
package wpa

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/cuemesh-project/cuemesh/lib/tool"
)

// Handle is a started authentication process. It is retained by the
// bring-up sequence but deliberately never waited on for control flow.
type Handle struct {
	cmd  *exec.Cmd
	done chan struct{}
}

// Start launches wpa_supplicant bound to the interface with the given
// pre-shared configuration file and returns immediately. The child is
// reaped in the background so it can never zombie.
func Start(ctx context.Context, iface, confPath string) (*Handle, error) {
	binaryPath, err := tool.FindBinary("wpa_supplicant")
	if err != nil {
		return nil, err
	}

	command := exec.CommandContext(ctx, binaryPath,
		"-i", iface,
		"-c", confPath,
		"-D", "nl80211",
	)
	if err := command.Start(); err != nil {
		return nil, fmt.Errorf("starting wpa_supplicant on %q: %w", iface, err)
	}

	handle := &Handle{
		cmd:  command,
		done: make(chan struct{}),
	}
	go func() {
		// Exit status intentionally discarded: see the package note.
		_ = command.Wait()
		close(handle.done)
	}()
	return handle, nil
}

// PID returns the authentication process's PID.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Running reports whether the authentication process is still alive.
func (h *Handle) Running() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Done returns a channel closed when the process exits. Provided for
// future monitoring; bring-up never selects on it.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
