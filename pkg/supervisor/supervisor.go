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

// Package supervisor starts external processes, keeps the set of tracked
// background processes for a run and terminates whole process trees.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyCommand is returned by Run when the invocation has no executable.
var ErrEmptyCommand = errors.New("empty command")

const (
	// TerminateTimeout is how long a tree gets to exit after a graceful
	// terminate before it is killed.
	TerminateTimeout = 3 * time.Second
	// ReleaseTimeout bounds how long cleanup waits for a killed handle to be
	// reaped before moving on.
	ReleaseTimeout = 2 * time.Second
	pollInterval   = 100 * time.Millisecond
)

// Handle is a started process. Done is closed once the process has exited
// and its OS resources have been released.
type Handle struct {
	err  error
	done chan struct{}
	Name string
	Pid  int
}

func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the process exits and returns its exit error.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Exited reports whether the process has already exited.
func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Supervisor owns the tracked process set. All methods are safe for
// concurrent use, so cleanup can be requested from the tray while the main
// sequence is blocked on the game.
type Supervisor struct {
	clock   clockwork.Clock
	tracked map[string]*Handle
	mu      syncutil.Mutex
}

func New(clock clockwork.Clock) *Supervisor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Supervisor{
		clock:   clock,
		tracked: make(map[string]*Handle),
	}
}

// Run starts inv. When inv.Wait is set it blocks until the process exits;
// otherwise it returns straight away and the caller decides whether to
// Track the handle. There is no timeout on the wait.
func (s *Supervisor) Run(ctx context.Context, name string, inv command.Invocation) (*Handle, error) {
	if inv.Empty() {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyCommand)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	cmd, err := inv.Cmd()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	log.Info().Str("name", name).Str("dir", inv.Dir).Msgf("starting: %s", inv.CommandLine())
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	h := &Handle{
		Name: name,
		Pid:  cmd.Process.Pid,
		done: make(chan struct{}),
	}
	go h.reap(cmd)

	if inv.Wait {
		err := h.Wait()
		log.Info().Str("name", name).Err(err).Msg("process finished")
	}
	return h, nil
}

func (h *Handle) reap(cmd *exec.Cmd) {
	h.err = cmd.Wait()
	log.Debug().Str("name", h.Name).Int("pid", h.Pid).Err(h.err).Msg("process exited")
	close(h.done)
}

// Track registers h under its name. A handle already tracked under the same
// name is terminated first so the set never loses a live process.
func (s *Supervisor) Track(h *Handle) {
	if h == nil {
		return
	}
	s.mu.Lock()
	prev := s.tracked[h.Name]
	s.tracked[h.Name] = h
	s.mu.Unlock()

	if prev != nil && prev != h && !prev.Exited() {
		log.Warn().Str("name", h.Name).Int("pid", prev.Pid).Msg("replacing tracked process")
		s.terminateHandle(prev)
	}
}

func (s *Supervisor) Lookup(name string) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.tracked[name]
	return h, ok
}

// Untrack removes and returns the handle tracked under name, if any.
func (s *Supervisor) Untrack(name string) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.tracked[name]
	delete(s.tracked, name)
	return h
}

// Tracked returns the names currently tracked.
func (s *Supervisor) Tracked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tracked))
	for name := range s.tracked {
		names = append(names, name)
	}
	return names
}

// TerminateTracked terminates the tree of the process tracked under name
// and removes it from the set. It reports whether a handle was found.
func (s *Supervisor) TerminateTracked(name string) bool {
	h := s.Untrack(name)
	if h == nil {
		return false
	}
	s.terminateHandle(h)
	return true
}

// Terminate stops an untracked handle's whole tree and waits for it to be
// released.
func (s *Supervisor) Terminate(h *Handle) {
	if h == nil {
		return
	}
	s.terminateHandle(h)
}

func (s *Supervisor) terminateHandle(h *Handle) {
	if !h.Exited() {
		s.TerminateTree(h.Pid)
	}
	select {
	case <-h.done:
	case <-s.clock.After(ReleaseTimeout):
		log.Warn().Str("name", h.Name).Int("pid", h.Pid).Msg("process not released after kill")
	}
}

// KillAllTracked terminates every tracked process tree, waits for each
// handle to be released and empties the set. Calling it again is a no-op.
func (s *Supervisor) KillAllTracked() {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.tracked))
	for _, h := range s.tracked {
		handles = append(handles, h)
	}
	clear(s.tracked)
	s.mu.Unlock()

	if len(handles) == 0 {
		return
	}
	log.Info().Int("count", len(handles)).Msg("terminating tracked processes")

	var g errgroup.Group
	for _, h := range handles {
		g.Go(func() error {
			s.terminateHandle(h)
			return nil
		})
	}
	_ = g.Wait()
}
