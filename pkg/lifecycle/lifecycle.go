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

// Package lifecycle keeps a single launcher instance per install root and
// owns the cleanup that must run however a run ends.
package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/config"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Guard struct {
	fs       afero.Fs
	platform platforms.Platform
	running  func(pid int) bool
	path     string
	// stateFile receives [State] PID= once the marker is held.
	stateFile string
	cleanups  []func()
	pid       int
	mu        syncutil.Mutex
	held      bool
	bypass    bool
	cleaned   bool
}

type Option func(*Guard)

// WithMultiInstance skips the marker entirely.
func WithMultiInstance(enabled bool) Option {
	return func(g *Guard) {
		g.bypass = enabled
	}
}

// WithStateFile persists the owning PID into the config file's [State]
// section after a successful acquire.
func WithStateFile(path string) Option {
	return func(g *Guard) {
		g.stateFile = path
	}
}

// WithPlatform sets the platform queried by IsAdmin.
func WithPlatform(pl platforms.Platform) Option {
	return func(g *Guard) {
		g.platform = pl
	}
}

// WithLiveness replaces the process liveness check.
func WithLiveness(fn func(pid int) bool) Option {
	return func(g *Guard) {
		g.running = fn
	}
}

// New returns a guard for the marker at path, owned by the current process.
func New(fs afero.Fs, path string, opts ...Option) *Guard {
	g := &Guard{
		fs:      fs,
		path:    path,
		pid:     os.Getpid(),
		running: helpers.PidRunning,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Pid returns the PID recorded in the marker, or 0 when there is none.
func (g *Guard) Pid() (int, error) {
	data, err := afero.ReadFile(g.fs, g.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("error reading pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("error parsing pid: %w", err)
	}
	return pid, nil
}

// Acquire takes the single-instance marker. It returns false, without
// side effects, when the marker names a process that is still alive. A
// marker left by a dead process is replaced.
func (g *Guard) Acquire() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.bypass {
		log.Info().Msg("multi-instance enabled, skipping instance check")
		return true, nil
	}

	for attempt := 0; attempt < 2; attempt++ {
		err := g.create()
		if err == nil {
			g.held = true
			log.Info().Int("pid", g.pid).Str("path", g.path).Msg("instance marker created")
			g.persist()
			return true, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return false, err
		}

		pid, err := g.Pid()
		if err == nil && pid > 0 && g.running(pid) {
			log.Warn().Int("pid", pid).Msg("another instance is running")
			return false, nil
		}
		log.Info().Int("pid", pid).Msg("removing stale instance marker")
		if err := g.fs.Remove(g.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("failed to remove stale pid file: %w", err)
		}
	}
	return false, fmt.Errorf("failed to create pid file: %w", os.ErrExist)
}

func (g *Guard) create() error {
	f, err := g.fs.OpenFile(g.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create pid file: %w", err)
	}
	_, werr := f.WriteString(strconv.Itoa(g.pid))
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = g.fs.Remove(g.path)
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}

func (g *Guard) persist() {
	if g.stateFile == "" {
		return
	}
	err := config.SetValue(g.fs, g.stateFile, config.SectionState, config.KeyPID, strconv.Itoa(g.pid))
	if err != nil {
		log.Warn().Err(err).Str("path", g.stateFile).Msg("failed to record pid in config")
	}
}

// Release deletes the marker if this guard holds it.
func (g *Guard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.release()
}

func (g *Guard) release() error {
	if !g.held {
		return nil
	}
	g.held = false
	if err := g.fs.Remove(g.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove pid file: %w", err)
	}
	log.Debug().Str("path", g.path).Msg("instance marker removed")
	return nil
}

// OnCleanup registers fn to run during Cleanup. Functions run in reverse
// registration order.
func (g *Guard) OnCleanup(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cleanups = append(g.cleanups, fn)
}

// Cleanup runs every registered cleanup function once and then releases
// the marker. Later calls do nothing. A panicking cleanup function does not
// stop the rest.
func (g *Guard) Cleanup() {
	g.mu.Lock()
	if g.cleaned {
		g.mu.Unlock()
		return
	}
	g.cleaned = true
	fns := slices.Clone(g.cleanups)
	g.cleanups = nil
	g.mu.Unlock()

	slices.Reverse(fns)
	for _, fn := range fns {
		runCleanup(fn)
	}

	if err := g.Release(); err != nil {
		log.Warn().Err(err).Msg("failed to release instance marker")
	}
}

func runCleanup(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("panic during cleanup")
		}
	}()
	fn()
}

// IsAdmin reports whether the process already has administrator rights.
// It only informs whether RunAsAdmin launches need elevation.
func (g *Guard) IsAdmin() bool {
	if g.platform == nil {
		return false
	}
	return g.platform.IsAdmin()
}
