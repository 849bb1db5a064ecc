// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package meshup sequences mesh network bring-up: it turns a node's
// radio into a joined, authenticated, mesh-attached interface. It runs
// once, early in boot, and carries no retries: a failed or partial
// configuration is corrected by the next boot's fresh
// teardown-and-recreate, not by looping during this one. That keeps a
// misconfigured node reachable by power cycle instead of wedged in a
// retry loop.
package meshup

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cuemesh-project/cuemesh/lib/batman"
	"github.com/cuemesh-project/cuemesh/lib/clock"
	"github.com/cuemesh-project/cuemesh/lib/config"
	"github.com/cuemesh-project/cuemesh/lib/wifi"
	"github.com/cuemesh-project/cuemesh/lib/wpa"
)

// BringUp holds the fixed cell identity and the collaborators for one
// bring-up run.
type BringUp struct {
	// Cell is the mesh cell identity and radio layout.
	Cell config.CellConfig

	// Clock provides the settle delay between joining the cell and
	// attaching the overlay.
	Clock clock.Clock

	// Logger receives one record per step. If nil, a text handler on
	// stderr is used.
	Logger *slog.Logger
}

// Run performs the bring-up sequence:
//
//  1. Deletes any pre-existing managed interface binding (absence is
//     not an error).
//  2. Creates the independent-cell interface on the radio.
//  3. Brings it up with the cell's link MTU.
//  4. Joins the cell by name and frequency.
//  5. Starts the link authenticator in the background and keeps its
//     handle; bring-up never waits on it.
//  6. Sleeps the settle delay so the join takes before overlay attach.
//  7. Loads the mesh routing module.
//  8. Attaches the interface to the mesh as a port.
//  9. Brings the overlay interface up.
//
// A step error aborts the sequence; the returned handle is non-nil
// whenever the authenticator was started, even if a later step failed,
// so the caller can keep supervising it.
func (b *BringUp) Run(ctx context.Context) (*wpa.Handle, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	logger.Info("deleting managed interface", "interface", b.Cell.Interface)
	if err := wifi.DeleteInterface(ctx, b.Cell.Interface); err != nil {
		return nil, fmt.Errorf("interface teardown: %w", err)
	}

	logger.Info("creating ad-hoc interface", "radio", b.Cell.Radio, "interface", b.Cell.Interface)
	if err := wifi.CreateIBSS(ctx, b.Cell.Radio, b.Cell.Interface); err != nil {
		return nil, fmt.Errorf("interface creation: %w", err)
	}

	logger.Info("bringing interface up", "interface", b.Cell.Interface, "mtu", b.Cell.MTU)
	if err := wifi.SetUp(ctx, b.Cell.Interface, b.Cell.MTU); err != nil {
		return nil, fmt.Errorf("interface up: %w", err)
	}

	logger.Info("joining cell", "cell", b.Cell.Name, "frequency_mhz", b.Cell.FrequencyMHz)
	if err := wifi.JoinCell(ctx, b.Cell.Interface, b.Cell.Name, b.Cell.FrequencyMHz); err != nil {
		return nil, fmt.Errorf("cell join: %w", err)
	}

	logger.Info("starting link authenticator", "interface", b.Cell.Interface, "conf", b.Cell.WPAConf)
	handle, err := wpa.Start(ctx, b.Cell.Interface, b.Cell.WPAConf)
	if err != nil {
		return nil, fmt.Errorf("link authenticator: %w", err)
	}
	logger.Info("link authenticator running", "pid", handle.PID())

	if settle := b.Cell.Settle.Value(); settle > 0 {
		b.Clock.Sleep(settle)
	}

	logger.Info("loading mesh module", "module", batman.ModuleName)
	if err := batman.EnsureModule(ctx); err != nil {
		return handle, fmt.Errorf("mesh module: %w", err)
	}

	logger.Info("attaching mesh port", "mesh_interface", b.Cell.MeshInterface, "port", b.Cell.Interface)
	if err := batman.AttachPort(ctx, b.Cell.MeshInterface, b.Cell.Interface); err != nil {
		return handle, fmt.Errorf("mesh port attach: %w", err)
	}

	logger.Info("bringing overlay up", "mesh_interface", b.Cell.MeshInterface)
	if err := batman.OverlayUp(ctx, b.Cell.MeshInterface); err != nil {
		return handle, fmt.Errorf("overlay up: %w", err)
	}

	logger.Info("mesh bring-up complete", "cell", b.Cell.Name, "mesh_interface", b.Cell.MeshInterface)
	return handle, nil
}
