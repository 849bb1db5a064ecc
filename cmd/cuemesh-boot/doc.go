// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Cuemesh-boot is the node's boot job: it attempts a best-effort code
// sync from removable media, then launches the cue application in the
// foreground and stays its parent until reboot or power loss.
//
// Register it to run once at system start, for example:
//
//	@reboot cuemesh-boot >> /var/log/cuemesh/job.log 2>&1
//
// The sync step can never prevent the launch: an absent stick, a
// refused update, even a failed unmount all land in the boot log and
// the application starts on the working copy as it stands. The exit
// status reflects only whether the job itself could start; the
// application's own exit is recorded in the log and propagated
// nowhere.
package main
