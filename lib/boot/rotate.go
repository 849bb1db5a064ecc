// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

package boot

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// rotateLog compresses the previous boot's log to path + ".1.gz",
// replacing any earlier rotation. One compressed generation is enough:
// the log exists for "what happened last boot" diagnosis, and the SD
// card is small. A missing previous log means a first boot; nothing
// to do.
func rotateLog(path string) error {
	previous, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening previous log: %w", err)
	}
	defer previous.Close()

	archive, err := os.Create(path + ".1.gz")
	if err != nil {
		return fmt.Errorf("creating rotated log: %w", err)
	}
	defer archive.Close()

	compressor := gzip.NewWriter(archive)
	if _, err := io.Copy(compressor, previous); err != nil {
		return fmt.Errorf("compressing previous log: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("finishing rotated log: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing previous log: %w", err)
	}
	return nil
}
