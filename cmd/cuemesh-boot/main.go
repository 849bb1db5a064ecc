// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/cuemesh-project/cuemesh/lib/boot"
	"github.com/cuemesh-project/cuemesh/lib/clock"
	"github.com/cuemesh-project/cuemesh/lib/codesync"
	"github.com/cuemesh-project/cuemesh/lib/config"
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
		fmt.Printf("cuemesh-boot %s\n", version.Info())
		return nil
	}

	configuration, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	supervisor := &boot.Supervisor{
		Config: configuration,
		Sync: &codesync.Manager{
			Config: configuration.Sync,
			Clock:  clock.Real(),
		},
	}
	return supervisor.Run(context.Background())
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
