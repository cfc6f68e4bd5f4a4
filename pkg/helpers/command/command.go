// Zaparoo Jacket
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Jacket.
//
// Zaparoo Jacket is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Jacket is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Jacket.  If not, see <http://www.gnu.org/licenses/>.

// Package command describes external tool invocations and provides an
// abstraction over exec.Command for testability.
package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrEmptyInvocation is returned when an invocation has no executable path.
var ErrEmptyInvocation = errors.New("invocation has no executable path")

// Invocation is one configured external tool call: an executable path plus
// the raw option and argument strings exactly as they appear in the config.
type Invocation struct {
	Path      string
	Options   string
	Arguments string
	// Dir is the working directory. Empty inherits the launcher's.
	Dir  string
	Wait bool
	// HideWindow prevents a console window from appearing (Windows-only).
	HideWindow bool
}

// Empty reports whether the invocation has no executable configured.
func (inv Invocation) Empty() bool {
	return strings.TrimSpace(inv.Path) == ""
}

// BaseName returns the executable's file name, used for by-name termination.
func (inv Invocation) BaseName() string {
	if inv.Empty() {
		return ""
	}
	// Config files written on Windows carry backslashes even when read elsewhere.
	p := strings.ReplaceAll(inv.Path, "\\", "/")
	return filepath.Base(p)
}

// CommandLine renders the full command line: the quoted executable path,
// then the option string, then the argument string. Empty parts are omitted.
func (inv Invocation) CommandLine() string {
	parts := make([]string, 0, 3)
	if !inv.Empty() {
		parts = append(parts, `"`+strings.TrimSpace(inv.Path)+`"`)
	}
	if o := strings.TrimSpace(inv.Options); o != "" {
		parts = append(parts, o)
	}
	if a := strings.TrimSpace(inv.Arguments); a != "" {
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Argv returns the executable followed by the split option and argument
// strings. The executable path itself is never split.
func (inv Invocation) Argv() ([]string, error) {
	if inv.Empty() {
		return nil, ErrEmptyInvocation
	}
	argv := []string{strings.TrimSpace(inv.Path)}
	for _, s := range []string{inv.Options, inv.Arguments} {
		if strings.TrimSpace(s) == "" {
			continue
		}
		split, err := splitArgs(s)
		if err != nil {
			return nil, fmt.Errorf("failed to split %q: %w", s, err)
		}
		argv = append(argv, split...)
	}
	return argv, nil
}

// Cmd builds an unstarted exec.Cmd for the invocation. Process lifetime is
// managed by the caller, so no context is attached.
func (inv Invocation) Cmd() (*exec.Cmd, error) {
	if inv.Empty() {
		return nil, ErrEmptyInvocation
	}
	cmd, err := buildCmd(inv)
	if err != nil {
		return nil, err
	}
	cmd.Dir = inv.Dir
	return cmd, nil
}

// Quote wraps a value in double quotes for inclusion in an option string.
func Quote(s string) string {
	return `"` + s + `"`
}

// Join concatenates non-empty option fragments with single spaces.
func Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// Executor runs short-lived helper commands whose output or exit status
// matters, such as disc mount tools and the OS file opener. Long-lived
// tracked processes go through the supervisor instead.
type Executor interface {
	// Run executes a command and waits for it to complete.
	// Returns an error if the command fails to start or exits with non-zero status.
	Run(ctx context.Context, name string, args ...string) error

	// Output runs a command and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Start starts a command without waiting for it to complete (fire-and-forget).
	Start(ctx context.Context, name string, args ...string) error
}

// RealExecutor uses actual exec.Command to execute system commands.
type RealExecutor struct{}

// Run executes a system command using exec.CommandContext.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Output runs a command and returns its standard output.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Start starts a command without waiting for it to complete. The process is
// reaped in the background so it never lingers as a zombie.
func (*RealExecutor) Start(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// RunInvocation runs a configured invocation through an Executor, returning
// its standard output. Used where a tool's output carries a result, such as a
// mount point.
func RunInvocation(ctx context.Context, ex Executor, inv Invocation) ([]byte, error) {
	argv, err := inv.Argv()
	if err != nil {
		return nil, err
	}
	out, err := ex.Output(ctx, argv[0], argv[1:]...)
	if err != nil {
		return out, fmt.Errorf("%s: %w", inv.BaseName(), err)
	}
	return out, nil
}
