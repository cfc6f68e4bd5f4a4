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

package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/backup"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/config"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/discmount"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrNotConfigured = errors.New("not configured")
	ErrFileNotFound  = errors.New("file not found")
)

func (e *Executor) registerBuiltins() {
	e.Register(config.ActionCloudSync, e.cloudSync)
	e.Register(config.ActionLocalBackup, e.localBackup)
	e.Register(config.ActionControllerMapper, e.controllerMapper)
	e.Register(config.ActionMonitorConfig, e.monitorConfig)
	e.Register(config.ActionHideTaskbar, e.hideTaskbar, "No-TB")
	e.Register(config.ActionShowTaskbar, e.showTaskbar, "Taskbar")
	e.Register(config.ActionMountDisc, e.mountDisc)
	e.Register(config.ActionUnmountDisc, e.unmountDisc)
	e.Register(config.ActionBorderless, e.borderlessAction)
	e.Register(config.ActionKillList, e.killList)
	e.Register(config.ActionKillGame, e.killGame)

	cfg := e.env.Config
	slots := []struct {
		app  *config.App
		name string
	}{
		{name: config.ActionPre1, app: &cfg.PreLaunch[0]},
		{name: config.ActionPre2, app: &cfg.PreLaunch[1]},
		{name: config.ActionPre3, app: &cfg.PreLaunch[2]},
		{name: config.ActionPost1, app: &cfg.PostLaunch[0]},
		{name: config.ActionPost2, app: &cfg.PostLaunch[1]},
		{name: config.ActionPost3, app: &cfg.PostLaunch[2]},
		{name: config.ActionJustAfterLaunch, app: &cfg.JustAfter},
		{name: config.ActionJustBeforeExit, app: &cfg.JustBefore},
	}
	for _, s := range slots {
		e.Register(s.name, e.appSlot(s.name, s.app))
	}
}

// start runs inv under name and tracks it when it was not waited on.
func (e *Executor) start(ctx context.Context, name string, inv command.Invocation) error {
	h, err := e.env.Supervisor.Run(ctx, name, inv)
	if err != nil {
		return err
	}
	if !inv.Wait {
		e.env.Supervisor.Track(h)
	}
	return nil
}

func (e *Executor) exists(path string) bool {
	if e.env.Fs == nil {
		return true
	}
	ok, err := afero.Exists(e.env.Fs, path)
	return err == nil && ok
}

func (e *Executor) appSlot(name string, app *config.App) Handler {
	return func(ctx context.Context, _ Phase) error {
		if app.Empty() {
			log.Debug().Str("action", name).Msg("no app configured")
			return nil
		}
		return e.start(ctx, name, e.env.Config.ResolveInvocation(*app))
	}
}

func (e *Executor) cloudSync(ctx context.Context, phase Phase) error {
	cs := e.env.Config.CloudSync
	if (phase == PhaseLaunch && !cs.OnLaunch) || (phase == PhaseExit && !cs.OnExit) {
		return nil
	}
	if cs.Tool.Empty() {
		log.Debug().Str("phase", phase.String()).Msg("no cloud sync tool configured")
		return nil
	}
	return e.start(ctx, config.ActionCloudSync, e.env.Config.ResolveInvocation(cs.Tool))
}

func (e *Executor) localBackup(_ context.Context, phase Phase) error {
	cfg := e.env.Config
	lb := cfg.LocalBackup
	if (phase == PhaseLaunch && !lb.OnLaunch) || (phase == PhaseExit && !lb.OnExit) {
		return nil
	}
	if e.env.Backup == nil {
		return fmt.Errorf("local backup: %w", ErrNotConfigured)
	}
	_, err := e.env.Backup.Backup(cfg.Resolve(lb.SaveDir), cfg.Resolve(lb.BackupDir), cfg.Options.MaxBackups)
	if errors.Is(err, backup.ErrNoSaves) {
		log.Info().Str("dir", cfg.Resolve(lb.SaveDir)).Msg("no saves to back up")
		return nil
	}
	return err
}

func (e *Executor) controllerMapper(ctx context.Context, phase Phase) error {
	cfg := e.env.Config
	mapper := cfg.ResolveInvocation(cfg.Paths.ControllerMapper)
	if mapper.Empty() {
		return nil
	}

	if phase == PhaseExit {
		if !e.env.Supervisor.TerminateTracked(config.ActionControllerMapper) {
			n := e.env.Supervisor.TerminateByName(mapper.BaseName())
			log.Debug().Int("count", n).Msg("no tracked controller mapper, terminated by name")
		}
		media := cfg.Resolve(cfg.Paths.MediaCenterProfile)
		if media == "" {
			return nil
		}
		if !e.exists(media) {
			return fmt.Errorf("media center profile %s: %w", media, ErrFileNotFound)
		}
		// Left running after the launcher exits.
		mapper.Wait = false
		_, err := e.env.Supervisor.Run(ctx, config.ActionControllerMapper, mapperInvocation(mapper, media, ""))
		return err
	}

	p1 := cfg.Resolve(cfg.Paths.Player1Profile)
	if p1 == "" {
		return fmt.Errorf("player 1 profile: %w", ErrNotConfigured)
	}
	if !e.exists(p1) {
		return fmt.Errorf("player 1 profile %s: %w", p1, ErrFileNotFound)
	}
	mapper.Wait = false
	inv := mapperInvocation(mapper, p1, cfg.Resolve(cfg.Paths.Player2Profile))
	return e.start(ctx, config.ActionControllerMapper, inv)
}

func (e *Executor) monitorConfig(ctx context.Context, phase Phase) error {
	cfg := e.env.Config
	tool := cfg.ResolveInvocation(cfg.Paths.MultiMonitor)
	layout := cfg.Paths.MonitorGamingConfig
	if phase == PhaseExit {
		layout = cfg.Paths.MonitorDesktopConfig
	}
	layout = cfg.Resolve(layout)
	if tool.Empty() || layout == "" {
		return nil
	}
	if !e.exists(layout) {
		return fmt.Errorf("monitor layout %s: %w", layout, ErrFileNotFound)
	}
	tool.Options = command.Join(tool.Options, "/load", command.Quote(layout))
	tool.Wait = true
	_, err := e.env.Supervisor.Run(ctx, config.ActionMonitorConfig, tool)
	return err
}

func (e *Executor) hideTaskbar(_ context.Context, phase Phase) error {
	if phase != PhaseLaunch || !e.env.Config.Options.HideTaskbar {
		return nil
	}
	if err := e.env.Platform.SetTaskbarVisible(false); err != nil {
		return fmt.Errorf("failed to hide taskbar: %w", err)
	}
	e.taskbarHidden = true
	return nil
}

func (e *Executor) showTaskbar(_ context.Context, phase Phase) error {
	if phase != PhaseExit || !e.env.Config.Options.HideTaskbar {
		return nil
	}
	if err := e.env.Platform.SetTaskbarVisible(true); err != nil {
		return fmt.Errorf("failed to show taskbar: %w", err)
	}
	e.taskbarHidden = false
	return nil
}

func (e *Executor) mountDisc(ctx context.Context, phase Phase) error {
	image := e.env.Config.IsoPath()
	if phase != PhaseLaunch || image == "" {
		return nil
	}
	if e.env.Mounter == nil {
		return fmt.Errorf("disc mount: %w", ErrNotConfigured)
	}
	mode := discmount.ParseMode(e.env.Config.Options.DiscMountMode)
	rec, err := e.env.Mounter.Mount(ctx, image, mode)
	if err != nil {
		return fmt.Errorf("failed to mount %s: %w", image, err)
	}
	log.Info().Str("backend", rec.Backend).Str("id", rec.ID).Msg("disc ready")
	return nil
}

func (e *Executor) unmountDisc(ctx context.Context, phase Phase) error {
	if phase != PhaseExit || e.env.Config.IsoPath() == "" {
		return nil
	}
	if e.env.Mounter == nil {
		return fmt.Errorf("disc unmount: %w", ErrNotConfigured)
	}
	err := e.env.Mounter.Unmount(ctx)
	if errors.Is(err, discmount.ErrNotMounted) {
		log.Info().Msg("no disc mounted, nothing to unmount")
		return nil
	}
	return err
}

func (e *Executor) borderlessAction(ctx context.Context, phase Phase) error {
	cfg := e.env.Config
	mode := cfg.Options.Borderless
	tool := cfg.ResolveInvocation(cfg.Paths.Borderless)

	if phase == PhaseExit {
		if !cfg.Options.TerminateBorderlessOnExit {
			return nil
		}
		switch {
		case e.borderless != nil:
			e.env.Supervisor.Terminate(e.borderless)
			e.borderless = nil
		case e.env.Supervisor.TerminateTracked(config.ActionBorderless):
		case !tool.Empty():
			e.env.Supervisor.TerminateByName(tool.BaseName())
		}
		return nil
	}

	if !mode.Enabled() || tool.Empty() {
		log.Debug().Str("mode", mode.String()).Msg("borderless windowing not enabled")
		return nil
	}
	tool.Wait = false
	h, err := e.env.Supervisor.Run(ctx, config.ActionBorderless, tool)
	if err != nil {
		return err
	}
	if mode == config.BorderlessPersist {
		e.env.Supervisor.Track(h)
	} else {
		e.borderless = h
	}
	return nil
}

func (e *Executor) killList(_ context.Context, _ Phase) error {
	e.KillList()
	return nil
}

func (e *Executor) killGame(_ context.Context, _ Phase) error {
	if e.env.Game != nil {
		if h := e.env.Game(); h != nil {
			e.env.Supervisor.Terminate(h)
		}
	}
	game := e.env.Config.GameInvocation()
	if !game.Empty() {
		e.env.Supervisor.TerminateByName(game.BaseName())
	}
	return nil
}
