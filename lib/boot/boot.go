// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package boot sequences the per-boot supervision chain: attempt a
// code sync, then launch the resident application, unconditionally.
// The one guarantee that matters in the field is fail-open: a sync
// failure must never keep a node from running its last-known-good
// code. The sync result is an explicit report that the supervisor
// logs and then deliberately ignores for control flow.
//
// The supervisor runs exactly once per boot. All of its output, the
// sync step's, and the application's lands in one fixed log file,
// because the node is headless and the log is the only error surface
// an operator gets.
package boot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/cuemesh-project/cuemesh/lib/codesync"
	"github.com/cuemesh-project/cuemesh/lib/config"
	"github.com/cuemesh-project/cuemesh/lib/logging"
)

// Syncer is the code sync step. Implemented by codesync.Manager;
// tests substitute failure injections. The logger is handed to the
// step so its output lands in the boot log the supervisor opened.
type Syncer interface {
	Run(ctx context.Context, logger *slog.Logger) *codesync.Report
}

// Supervisor runs the boot chain.
type Supervisor struct {
	// Config is the node configuration.
	Config *config.Config

	// Sync performs the best-effort code sync.
	Sync Syncer

	// Console additionally receives supervisor output alongside the
	// log file. If nil, os.Stderr.
	Console io.Writer

	phase    Phase
	launched bool
}

// Run executes one boot: capture the starting directory, open the log,
// sync, launch, wait for the application to exit, restore the starting
// directory. The returned error covers only failures to start the job
// itself (log file unopenable, application not startable); the
// application's exit status is recorded in the log and propagated
// nowhere else.
func (s *Supervisor) Run(ctx context.Context) error {
	if s.launched {
		return fmt.Errorf("boot supervisor already ran: one launch per boot")
	}

	startDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("recording starting directory: %w", err)
	}
	defer func() {
		// Restore even when launch failed partway.
		if err := os.Chdir(startDir); err != nil {
			fmt.Fprintf(s.console(), "restoring working directory: %v\n", err)
		}
	}()

	logFile, rotateErr, err := s.openLog()
	if err != nil {
		return err
	}
	defer logFile.Close()

	output := io.MultiWriter(s.console(), logFile)
	logger := logging.NewLogger(output)
	logger.Info("boot supervisor starting", "phase", s.phase.String())
	if rotateErr != nil {
		// Rotation failure costs history, not this boot.
		logger.Error("log rotation failed", "error", rotateErr)
	}

	s.setPhase(logger, PhaseSyncing)
	report := s.Sync.Run(ctx, logger)
	logger.Info("code sync finished", "report", report)

	// Unconditional: the report above is for the log, not for control
	// flow. Whatever happened, the node launches its working copy.
	s.setPhase(logger, PhaseLaunching)
	return s.launch(ctx, logger, output)
}

// launch starts the application in the working copy and waits for it
// to exit. The application gets no arguments and no environment
// injection; locating the mesh interface is its own job.
func (s *Supervisor) launch(ctx context.Context, logger *slog.Logger, output io.Writer) error {
	s.launched = true

	workingCopy := s.Config.Sync.WorkingCopy
	if err := os.Chdir(workingCopy); err != nil {
		return fmt.Errorf("entering working copy %s: %w", workingCopy, err)
	}

	argv := s.Config.Boot.AppCommand
	command := exec.CommandContext(ctx, argv[0], argv[1:]...)
	command.Stdout = output
	command.Stderr = output

	logger.Info("launching application", "command", argv, "dir", workingCopy)
	if err := command.Start(); err != nil {
		return fmt.Errorf("starting application %q: %w", argv[0], err)
	}
	s.setPhase(logger, PhaseRunning)

	// The application is the node's workload until reboot. Its exit,
	// clean or crash, ends the boot job; there is
	// no restart.
	err := command.Wait()
	s.setPhase(logger, PhaseExited)
	if err != nil {
		logger.Info("application exited", "error", err)
	} else {
		logger.Info("application exited cleanly")
	}
	return nil
}

// openLog rotates the previous boot's log if configured, then opens
// the fixed log file. The rotation error is returned separately so the
// caller can log it once the logger exists.
func (s *Supervisor) openLog() (*os.File, error, error) {
	path := s.Config.Boot.LogFile
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	var rotateErr error
	if s.Config.Boot.RotateLogs {
		rotateErr = rotateLog(path)
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, rotateErr, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return logFile, rotateErr, nil
}

// setPhase advances the phase machine, logging the transition.
func (s *Supervisor) setPhase(logger *slog.Logger, next Phase) {
	logger.Info("phase transition", "from", s.phase.String(), "to", next.String())
	s.phase = next
}

func (s *Supervisor) console() io.Writer {
	if s.Console != nil {
		return s.Console
	}
	return os.Stderr
}
