// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cuemesh-project/cuemesh/lib/clock"
	"github.com/cuemesh-project/cuemesh/lib/config"
	"github.com/cuemesh-project/cuemesh/lib/logging"
	"github.com/cuemesh-project/cuemesh/lib/meshup"
	"github.com/cuemesh-project/cuemesh/lib/process"
	"github.com/cuemesh-project/cuemesh/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "path to node config (default: $CUEMESH_CONFIG, else built-in defaults)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("cuemesh-meshup %s\n", version.Info())
		return nil
	}

	configuration, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(os.Stderr)

	bringUp := &meshup.BringUp{
		Cell:   configuration.Cell,
		Clock:  clock.Real(),
		Logger: logger,
	}
	handle, err := bringUp.Run(context.Background())
	if err != nil {
		return err
	}

	// The authenticator outlives this process; it is reparented to
	// init when we exit. An authenticator that already died inside
	// the settle window shows up here, not as a bring-up error.
	logger.Info("mesh bring-up done, leaving authenticator running",
		"wpa_pid", handle.PID(), "wpa_running", handle.Running())
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
