// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code
// injects Real(); tests inject Fake() and advance time explicitly, so
// no test ever sleeps for wall-clock durations.
//
// Every production function that would call time.Now, time.Sleep, or
// time.After takes a Clock parameter (or is a method on a struct with
// a Clock field) instead of calling the time package directly. The
// settle delay in mesh bring-up and the device-wait timeout in code
// sync are the two places that would otherwise make tests slow.
package clock

import "time"

// Clock abstracts the time operations used by cuemesh components.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep pauses the current goroutine for at least duration d.
	// Equivalent to time.Sleep.
	Sleep(d time.Duration)

	// After returns a channel that receives the current time after
	// duration d elapses. Equivalent to time.After. If d <= 0, the
	// channel receives immediately.
	After(d time.Duration) <-chan time.Time
}
