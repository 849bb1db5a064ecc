// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Cuemesh-state-check evaluates one assertion about node state, for
// scripts and for crew diagnosing a unit in the field. It is the
// after-the-fact answer to the bring-up chains being deliberately
// unsynchronized: it cannot make the mesh come up before the app, but
// it can tell you which half didn't.
//
// Usage:
//
//	cuemesh-state-check interface-up <name>
//	cuemesh-state-check cell-joined <interface> [cell]
//	cuemesh-state-check working-copy <path>
//	cuemesh-state-check device-released <mount-point>
//	cuemesh-state-check authenticated <interface>
//
// Exit codes:
//
//	0  condition holds
//	1  condition does not hold (actual state printed to stderr)
//	2  error (bad arguments, state unreadable)
package main
