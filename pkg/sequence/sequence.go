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

// Package sequence dispatches the symbolic actions of a launch or exit
// sequence to their handlers, in list order and one at a time.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/config"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/discmount"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/supervisor"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrActionPanic   = errors.New("action panicked")
)

// suggestThreshold is the minimum Jaro-Winkler similarity for a "did you
// mean" hint on an unknown action name.
const suggestThreshold = 0.8

type Phase int

const (
	PhaseLaunch Phase = iota
	PhaseExit
)

func (p Phase) String() string {
	if p == PhaseExit {
		return "exit"
	}
	return "launch"
}

// Handler performs one action for the given phase. Returning nil for an
// action that has nothing to do in a phase is normal.
type Handler func(ctx context.Context, phase Phase) error

// Observer is told about every action just before its handler runs.
type Observer func(action string, phase Phase)

// Mounter is the part of the disc mount orchestrator used by the
// Mount-Disc and Unmount-Disc actions.
type Mounter interface {
	Mount(ctx context.Context, image string, mode discmount.Mode) (discmount.MountRecord, error)
	Unmount(ctx context.Context) error
}

// Backuper archives a save directory, keeping the newest keep archives.
type Backuper interface {
	Backup(saveDir, backupDir string, keep int) (string, error)
}

// Env is everything a run's actions act on. It is built once at startup
// and shared by the executor and the launcher.
type Env struct {
	Fs         afero.Fs
	Config     *config.Values
	Supervisor *supervisor.Supervisor
	Platform   platforms.Platform
	Mounter    Mounter
	Backup     Backuper
	// Game returns the running game's handle, nil when none is running.
	Game func() *supervisor.Handle
}

type entry struct {
	handler Handler
	name    string
}

type Executor struct {
	env      *Env
	observer Observer
	actions  map[string]entry
	names    []string

	// borderless holds an untracked borderless helper started in
	// kill-on-exit mode.
	borderless    *supervisor.Handle
	taskbarHidden bool
}

type Option func(*Executor)

func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

// NewExecutor returns an executor with every built-in action and its
// legacy aliases registered.
func NewExecutor(env *Env, opts ...Option) *Executor {
	e := &Executor{
		env:     env,
		actions: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.registerBuiltins()
	return e
}

// Register binds name, and any aliases, to h. Matching is case-insensitive.
// Registering an existing name replaces its handler.
func (e *Executor) Register(name string, h Handler, aliases ...string) {
	ent := entry{name: name, handler: h}
	key := strings.ToLower(name)
	if _, ok := e.actions[key]; !ok {
		e.names = append(e.names, name)
	}
	e.actions[key] = ent
	for _, alias := range aliases {
		e.actions[strings.ToLower(alias)] = ent
	}
}

// Canonical returns the registered name for an action or alias.
func (e *Executor) Canonical(name string) (string, bool) {
	ent, ok := e.actions[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	return ent.name, true
}

// Run dispatches names in order. Action errors are logged and never stop
// the sequence; only a cancelled context does.
func (e *Executor) Run(ctx context.Context, phase Phase, names []string) error {
	log.Info().Str("phase", phase.String()).Strs("actions", names).Msg("running sequence")
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s sequence interrupted: %w", phase, err)
		}
		if err := e.Fire(ctx, name, phase); err != nil {
			log.Warn().Err(err).Str("action", name).Str("phase", phase.String()).
				Msg("action failed, skipping")
		}
	}
	return nil
}

// Fire runs a single action. It is used directly for the hooks around the
// game process.
func (e *Executor) Fire(ctx context.Context, name string, phase Phase) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	ent, ok := e.actions[strings.ToLower(name)]
	if !ok {
		ev := log.Warn().Str("action", name)
		if s := e.suggest(name); s != "" {
			ev = ev.Str("suggestion", s)
		}
		ev.Msg("unknown action, skipping")
		return nil
	}

	if e.observer != nil {
		e.observer(ent.name, phase)
	}
	log.Info().Str("action", ent.name).Str("phase", phase.String()).Msg("action")
	return e.call(ctx, ent, phase)
}

func (e *Executor) call(ctx context.Context, ent entry, phase Phase) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("action", ent.name).Bytes("stack", debug.Stack()).Msg("panic in action")
			err = fmt.Errorf("%w: %s: %v", ErrActionPanic, ent.name, r)
		}
	}()
	return ent.handler(ctx, phase)
}

func (e *Executor) suggest(name string) string {
	best := ""
	var bestScore float32
	lower := strings.ToLower(name)
	for _, candidate := range e.names {
		score := edlib.JaroWinklerSimilarity(lower, strings.ToLower(candidate))
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}

// RestoreTaskbar shows the taskbar if an action hid it and nothing has
// shown it since.
func (e *Executor) RestoreTaskbar() {
	if !e.taskbarHidden {
		return
	}
	if err := e.env.Platform.SetTaskbarVisible(true); err != nil {
		log.Warn().Err(err).Msg("failed to restore taskbar")
		return
	}
	e.taskbarHidden = false
}

// KillList terminates every process named in the kill list when
// UseKillList is set. It reports how many processes were matched.
func (e *Executor) KillList() int {
	if !e.env.Config.Options.UseKillList {
		log.Debug().Msg("kill list disabled")
		return 0
	}
	n := 0
	for _, name := range e.env.Config.Options.KillList {
		n += e.env.Supervisor.TerminateByName(name)
	}
	return n
}
