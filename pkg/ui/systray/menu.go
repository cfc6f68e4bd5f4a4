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

package systray

import (
	"context"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/config"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/launcher"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Item int

const (
	ItemRestart Item = iota
	ItemStop
	ItemKill
	ItemShowConfig
	ItemChangeConfig
	ItemViewLog
	ItemExit
)

// RestartHint is appended to the tooltip once the config has been edited.
const RestartHint = " (restart to apply changes)"

// UI is the part of the desktop the menu talks to.
type UI interface {
	Info(title, text string)
	Error(title, text string)
	SetTooltip(text string)
	Quit()
}

type Args struct {
	Controller launcher.Controller
	Cmd        command.Executor
	Fs         afero.Fs
	Home       string
	LogPath    string
	// Title names the game in the tooltip.
	Title string
}

// Menu carries out tray menu clicks against a running launcher.
type Menu struct {
	args    Args
	ui      UI
	watcher *ConfigWatcher
	mu      syncutil.Mutex
}

func NewMenu(args Args, ui UI) *Menu {
	return &Menu{args: args, ui: ui}
}

func (m *Menu) Tooltip() string {
	return m.args.Title + " - " + config.AppName
}

func (m *Menu) Handle(ctx context.Context, item Item) {
	ctrl := m.args.Controller
	switch item {
	case ItemRestart:
		ctrl.Restart()
	case ItemStop:
		ctrl.Stop()
	case ItemKill:
		ctrl.Kill()
	case ItemShowConfig:
		m.showConfig()
	case ItemChangeConfig:
		m.changeConfig(ctx)
	case ItemViewLog:
		if err := helpers.OpenFile(ctx, m.args.Cmd, m.args.LogPath); err != nil {
			log.Error().Err(err).Msg("failed to open log file")
		}
	case ItemExit:
		ctrl.Stop()
		m.ui.Quit()
	}
}

// Clicks are the menu item channels the loop listens on.
type Clicks struct {
	Restart      <-chan struct{}
	Stop         <-chan struct{}
	Kill         <-chan struct{}
	ShowConfig   <-chan struct{}
	ChangeConfig <-chan struct{}
	ViewLog      <-chan struct{}
	Exit         <-chan struct{}
}

// Loop handles clicks until done is closed, then quits the UI. It keeps
// running after ctx is cancelled so a late done still closes the tray.
func (m *Menu) Loop(ctx context.Context, c Clicks, done <-chan struct{}) {
	for {
		select {
		case <-done:
			log.Debug().Msg("run finished, closing tray")
			m.ui.Quit()
			return
		case <-c.Restart:
			m.Handle(ctx, ItemRestart)
		case <-c.Stop:
			m.Handle(ctx, ItemStop)
		case <-c.Kill:
			m.Handle(ctx, ItemKill)
		case <-c.ShowConfig:
			// Dialogs block until dismissed.
			go m.Handle(ctx, ItemShowConfig)
		case <-c.ChangeConfig:
			m.Handle(ctx, ItemChangeConfig)
		case <-c.ViewLog:
			m.Handle(ctx, ItemViewLog)
		case <-c.Exit:
			m.Handle(ctx, ItemExit)
		}
	}
}

func (m *Menu) showConfig() {
	path := m.args.Controller.ConfigPath()
	v, err := config.Load(m.args.Fs, path, m.args.Home)
	if err != nil {
		log.Error().Err(err).Msg("failed to load config for display")
		m.ui.Error("Configuration", err.Error())
		return
	}
	text, err := config.Dump(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to render config")
		m.ui.Error("Configuration", err.Error())
		return
	}
	m.ui.Info(path, text)
}

func (m *Menu) changeConfig(ctx context.Context) {
	path := m.args.Controller.ConfigPath()
	if err := helpers.OpenFile(ctx, m.args.Cmd, path); err != nil {
		log.Error().Err(err).Msg("failed to open config file")
		m.ui.Error("Configuration", err.Error())
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher != nil {
		return
	}
	w, err := WatchConfig(path, func() {
		m.ui.SetTooltip(m.Tooltip() + RestartHint)
	})
	if err != nil {
		log.Warn().Err(err).Msg("config changes will not be detected")
		return
	}
	m.watcher = w
}

// Close stops any config watch started by Change Config.
func (m *Menu) Close() {
	m.mu.Lock()
	w := m.watcher
	m.watcher = nil
	m.mu.Unlock()
	if w == nil {
		return
	}
	if err := w.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to stop config watcher")
	}
}
