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

// Package launcher drives one complete run: the launch sequence, the game
// itself, the exit sequence and final cleanup.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/config"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/sequence"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/supervisor"
	"github.com/rs/zerolog/log"
)

// ErrGameLaunch is returned when the game process could not be started.
var ErrGameLaunch = errors.New("failed to launch game")

// ActionGame is reported to the observer when the game starts.
const ActionGame = "Game"

// Controller is what the tray uses to act on a run in progress. Every
// method is safe to call while Run is blocked on the game.
type Controller interface {
	// Stop ends the game; the exit sequence still runs.
	Stop()
	// Kill ends the game, every tracked process and the kill list, and
	// skips the exit sequence.
	Kill()
	// Restart stops the run and asks for the launcher to be started again.
	Restart()
	ConfigPath() string
}

type Runner struct {
	env      *sequence.Env
	exec     *sequence.Executor
	observer sequence.Observer
	isAdmin  func() bool
	game     *supervisor.Handle
	stop     *syncutil.Latch
	mu       syncutil.Mutex
	cleanup  sync.Once
	killed   syncutil.Flag
	restart  syncutil.Flag
}

type Option func(*Runner)

// WithObserver reports every dispatched action, and the game start, to o.
func WithObserver(o sequence.Observer) Option {
	return func(r *Runner) {
		r.observer = o
	}
}

// WithAdminCheck sets how the runner decides whether RunAsAdmin launches
// still need elevation. The platform query is used by default.
func WithAdminCheck(fn func() bool) Option {
	return func(r *Runner) {
		r.isAdmin = fn
	}
}

func New(env *sequence.Env, opts ...Option) *Runner {
	r := &Runner{
		env:  env,
		stop: syncutil.NewLatch(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.isAdmin == nil {
		r.isAdmin = env.Platform.IsAdmin
	}
	env.Game = r.Game

	var execOpts []sequence.Option
	if r.observer != nil {
		execOpts = append(execOpts, sequence.WithObserver(r.observer))
	}
	r.exec = sequence.NewExecutor(env, execOpts...)
	return r
}

func (r *Runner) Executor() *sequence.Executor {
	return r.exec
}

// Game returns the running game's handle, or nil.
func (r *Runner) Game() *supervisor.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game
}

// Run executes the whole run. A failed game launch still runs the exit
// sequence and cleanup before ErrGameLaunch is returned.
func (r *Runner) Run(ctx context.Context) error {
	cfg := r.env.Config
	defer r.Cleanup()

	// The exit side must complete even when ctx was cancelled to stop the
	// game.
	exitCtx := context.WithoutCancel(ctx)

	if err := r.exec.Run(ctx, sequence.PhaseLaunch, cfg.Sequences.Launch); err != nil {
		log.Warn().Err(err).Msg("launch sequence interrupted")
	}

	var launchErr error
	switch {
	case r.stop.Tripped() || ctx.Err() != nil:
		log.Info().Msg("stop requested before game start")
	default:
		launchErr = r.playGame(ctx)
	}

	if r.killed.IsSet() {
		log.Info().Msg("killed, skipping exit sequence")
		return launchErr
	}
	if err := r.exec.Run(exitCtx, sequence.PhaseExit, cfg.Sequences.Exit); err != nil {
		log.Warn().Err(err).Msg("exit sequence interrupted")
	}
	return launchErr
}

func (r *Runner) playGame(ctx context.Context) error {
	cfg := r.env.Config
	inv := cfg.GameInvocation()
	inv.Wait = false

	if cfg.Options.RunAsAdmin && !r.isAdmin() {
		if elevated, ok := r.env.Platform.ElevatedInvocation(inv); ok {
			log.Info().Msg("launching game with elevation")
			inv = elevated
			inv.Wait = false
		} else {
			log.Warn().Msg("elevation not available, launching game normally")
		}
	}

	if r.observer != nil {
		r.observer(ActionGame, sequence.PhaseLaunch)
	}
	h, err := r.env.Supervisor.Run(ctx, ActionGame, inv)
	if err != nil {
		log.Error().Err(err).Msg("game failed to start")
		return fmt.Errorf("%w: %w", ErrGameLaunch, err)
	}
	r.mu.Lock()
	r.game = h
	r.mu.Unlock()
	log.Info().Int("pid", h.Pid).Str("game", cfg.Game.Name).Msg("game started")

	if !cfg.JustAfter.Empty() {
		r.fire(ctx, config.ActionJustAfterLaunch, sequence.PhaseLaunch)
	}

	select {
	case <-h.Done():
	case <-r.stop.Done():
		r.env.Supervisor.Terminate(h)
	case <-ctx.Done():
		log.Info().Msg("run cancelled, stopping game")
		r.env.Supervisor.Terminate(h)
	}
	log.Info().Err(h.Wait()).Msg("game exited")

	r.mu.Lock()
	r.game = nil
	r.mu.Unlock()

	if !cfg.JustBefore.Empty() {
		r.fire(context.WithoutCancel(ctx), config.ActionJustBeforeExit, sequence.PhaseExit)
	}
	return nil
}

func (r *Runner) fire(ctx context.Context, name string, phase sequence.Phase) {
	if err := r.exec.Fire(ctx, name, phase); err != nil {
		log.Warn().Err(err).Str("action", name).Msg("action failed, skipping")
	}
}

// Cleanup runs the kill list when enabled, terminates every tracked
// process and restores the taskbar. It runs once however often it is
// called.
func (r *Runner) Cleanup() {
	r.cleanup.Do(func() {
		log.Info().Msg("ensuring cleanup")
		r.exec.KillList()
		r.env.Supervisor.KillAllTracked()
		r.exec.RestoreTaskbar()
	})
}

func (r *Runner) Stop() {
	log.Info().Msg("stop requested")
	r.stop.Trip()
	if h := r.Game(); h != nil {
		r.env.Supervisor.Terminate(h)
	}
}

func (r *Runner) Kill() {
	log.Info().Msg("kill requested")
	r.killed.Set()
	r.Stop()
	r.env.Supervisor.KillAllTracked()
	r.exec.KillList()
}

func (r *Runner) Restart() {
	log.Info().Msg("restart requested")
	r.restart.Set()
	r.Stop()
}

// RestartRequested reports whether the launcher should be started again
// once this run has been cleaned up.
func (r *Runner) RestartRequested() bool {
	return r.restart.IsSet()
}

func (r *Runner) ConfigPath() string {
	return r.env.Config.Source
}

var _ Controller = (*Runner)(nil)
