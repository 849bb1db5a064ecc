// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Cuemesh-meshup forms the node's mesh network stack: it recreates
// the ad-hoc interface on the fixed cell identity, starts link
// authentication, and attaches the interface to the mesh overlay. It
// runs once, early in boot, as root, and exits; the authenticator it
// started keeps running for the node's life.
//
// There is no retry anywhere in the sequence. A failed bring-up exits
// non-zero and the next power cycle's fresh teardown-and-recreate is
// the recovery path: a field node that can be fixed by cycling power
// is better than one wedged in a retry loop.
//
// Note on ordering: nothing synchronizes this chain with the boot
// chain (cuemesh-boot). The application may start before the overlay
// interface is up; it is expected to keep looking for the mesh by
// interface name.
package main
