// Copyright 2026 The Cuemesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package git provides typed access to the git CLI for the code sync
// step. The working copy advances by fast-forward only: the replica on
// the removable device must be a strict continuation of local history,
// or the attempt is refused and the working copy is left exactly as it
// was. All commands target a specific repository directory via the -C
// flag, which is injected by all Repository methods.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Repository represents a git repository at a specific directory. All
// operations target this directory via "git -C <dir>". There is no
// default directory: callers must always specify which repository
// they mean.
type Repository struct {
	dir string
}

// NewRepository returns a Repository targeting the given directory.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Dir returns the repository directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Run executes a git command targeting this repository and returns
// stdout. Stderr is captured separately and included in error messages
// on failure.
func (r *Repository) Run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// IsRepository reports whether the directory is inside a git working
// tree. A working copy that is not a repository cannot be synced, but
// it can still be launched.
func (r *Repository) IsRepository(ctx context.Context) bool {
	output, err := r.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(output) == "true"
}

// Head returns the commit hash the working copy is currently at.
func (r *Repository) Head(ctx context.Context) (string, error) {
	output, err := r.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// FastForward advances the working copy's current branch to match the
// named branch of the replica at remotePath. The update is
// fast-forward only: a diverged replica makes git refuse the pull and
// leave the working copy untouched, which is the property the boot
// guarantee relies on. Returns the combined output because git writes
// progress to stderr.
func (r *Repository) FastForward(ctx context.Context, remotePath, branch string) (string, error) {
	fullArgs := []string{"-C", r.dir, "pull", "--ff-only", remotePath, branch}
	var output bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &output
	command.Stderr = &output

	if err := command.Run(); err != nil {
		return strings.TrimSpace(output.String()), fmt.Errorf("git pull --ff-only %s %s in %s: %w (%s)",
			remotePath, branch, r.dir, err, strings.TrimSpace(output.String()))
	}
	return strings.TrimSpace(output.String()), nil
}
