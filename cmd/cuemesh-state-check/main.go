// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cuemesh-project/cuemesh/lib/git"
	"github.com/cuemesh-project/cuemesh/lib/mount"
	"github.com/cuemesh-project/cuemesh/lib/tool"
	"github.com/cuemesh-project/cuemesh/lib/version"
	"github.com/cuemesh-project/cuemesh/lib/wifi"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	for _, argument := range args {
		if argument == "--version" {
			fmt.Printf("cuemesh-state-check %s\n", version.Info())
			return 0
		}
	}

	if len(args) < 2 {
		printUsage()
		return 2
	}

	check, name := args[0], args[1]
	switch check {
	case "interface-up":
		return checkInterfaceUp(name)
	case "cell-joined":
		cell := ""
		if len(args) > 2 {
			cell = args[2]
		}
		return checkCellJoined(name, cell)
	case "working-copy":
		return checkWorkingCopy(name)
	case "device-released":
		return checkDeviceReleased(name)
	case "authenticated":
		return checkAuthenticated("/proc", name)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown check %q\n", check)
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `usage:
  cuemesh-state-check interface-up <name>
  cuemesh-state-check cell-joined <interface> [cell]
  cuemesh-state-check working-copy <path>
  cuemesh-state-check device-released <mount-point>
  cuemesh-state-check authenticated <interface>
`)
}

func checkInterfaceUp(name string) int {
	if !wifi.InterfaceExists(name) {
		fmt.Fprintf(os.Stderr, "interface %s does not exist\n", name)
		return 1
	}
	up, err := wifi.InterfaceUp(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if !up {
		fmt.Fprintf(os.Stderr, "interface %s is down\n", name)
		return 1
	}
	return 0
}

// checkCellJoined inspects "iw dev <interface> info". A joined IBSS
// interface reports "type IBSS" and its ssid line carries the cell.
func checkCellJoined(iface, cell string) int {
	binaryPath, err := tool.FindBinary("iw")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	var output bytes.Buffer
	command := exec.CommandContext(context.Background(), binaryPath, "dev", iface, "info")
	command.Stdout = &output
	command.Stderr = &output
	if err := command.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: iw dev %s info: %v (%s)\n",
			iface, err, strings.TrimSpace(output.String()))
		return 2
	}

	info := output.String()
	if !strings.Contains(info, "type IBSS") {
		fmt.Fprintf(os.Stderr, "interface %s is not in IBSS mode\n", iface)
		return 1
	}
	if cell != "" && !strings.Contains(info, "ssid "+cell) {
		fmt.Fprintf(os.Stderr, "interface %s is not joined to cell %q\n", iface, cell)
		return 1
	}
	return 0
}

// checkDeviceReleased reports whether the sync mount point has been
// given back. A stick held mounted across power-off is pulled dirty,
// so a held mount after boot is worth an alarm.
func checkDeviceReleased(mountPoint string) int {
	mounted, err := mount.Mounted(mountPoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if mounted {
		fmt.Fprintf(os.Stderr, "%s is still mounted\n", mountPoint)
		return 1
	}
	return 0
}

func checkWorkingCopy(path string) int {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "working copy %s does not exist\n", path)
		return 1
	}
	if !git.NewRepository(path).IsRepository(context.Background()) {
		fmt.Fprintf(os.Stderr, "working copy %s is not a git repository\n", path)
		return 1
	}
	return 0
}

// checkAuthenticated scans procRoot for a wpa_supplicant process bound
// to the interface. The authenticator is fire-and-forget, so the
// process table is the only place its liveness shows.
func checkAuthenticated(procRoot, iface string) int {
	entries, err := os.ReadDir(procRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: reading %s: %v\n", procRoot, err)
		return 2
	}

	for _, entry := range entries {
		if !entry.IsDir() || !isNumeric(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(procRoot, entry.Name(), "cmdline"))
		if err != nil {
			// The process exited between ReadDir and ReadFile.
			continue
		}
		if cmdlineMatches(data, iface) {
			return 0
		}
	}
	fmt.Fprintf(os.Stderr, "no wpa_supplicant running for %s\n", iface)
	return 1
}

// cmdlineMatches reports whether a NUL-separated /proc cmdline is a
// wpa_supplicant bound to the interface.
func cmdlineMatches(cmdline []byte, iface string) bool {
	fields := strings.Split(string(bytes.TrimRight(cmdline, "\x00")), "\x00")
	if len(fields) == 0 || !strings.Contains(filepath.Base(fields[0]), "wpa_supplicant") {
		return false
	}
	for i, field := range fields[1:] {
		if field == "-i"+iface {
			return true
		}
		if field == "-i" && i+2 < len(fields) && fields[i+2] == iface {
			return true
		}
	}
	return false
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
