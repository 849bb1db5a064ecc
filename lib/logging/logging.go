// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging creates the standard cuemesh logger. Nodes run
// headless: under the boot job, output goes to a log file as JSON for
// post-hoc diagnosis. When an operator runs a binary by hand on an
// attached console, the same call produces a text handler instead,
// because a tty reader should not have to parse JSON.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewLogger creates the standard cuemesh logger on w at Info level:
// a text handler when w is a terminal, a JSON handler otherwise. It
// also sets the default slog logger so that any code using slog.Info
// etc. gets the same handler.
func NewLogger(w io.Writer) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
