// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package devwait waits for a removable device node to appear. USB
// storage enumerates asynchronously after power-on, so the boot job
// can reach the sync step before /dev has the stick. The wait is
// bounded and opt-in: the zero timeout reduces it to a single
// existence check, and expiry reports absence rather than failure;
// an absent device is an expected outcome, not an error.
package devwait

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cuemesh-project/cuemesh/lib/clock"
)

// Wait reports whether the device node exists, watching its directory
// for up to timeout when it does not yet. Returns false with a nil
// error on timeout or context cancellation: the caller treats absence
// as the normal no-update boot.
func Wait(ctx context.Context, clk clock.Clock, device string, timeout time.Duration) (bool, error) {
	if _, err := os.Stat(device); err == nil {
		return true, nil
	}
	if timeout <= 0 {
		return false, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, fmt.Errorf("creating device watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(device)); err != nil {
		return false, fmt.Errorf("watching %s: %w", filepath.Dir(device), err)
	}

	// The node may have appeared between the stat and the watch.
	if _, err := os.Stat(device); err == nil {
		return true, nil
	}

	deadline := clk.After(timeout)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return false, nil
			}
			if event.Name == device && event.Has(fsnotify.Create) {
				return true, nil
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return false, nil
			}
			return false, fmt.Errorf("device watcher: %w", watchErr)
		case <-deadline:
			return false, nil
		case <-ctx.Done():
			return false, nil
		}
	}
}
