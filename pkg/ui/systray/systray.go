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

// Package systray is the launcher's tray icon: a menu to restart, stop or
// kill the running game and to inspect or edit its configuration.
package systray

import (
	"context"
	"runtime"

	"fyne.io/systray"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/assets"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/config"
	"github.com/nixinwang/dialog"
	"github.com/rs/zerolog/log"
)

type desktopUI struct{}

func (desktopUI) Info(title, text string) {
	dialog.Message("%s", text).Title(title).Info()
}

func (desktopUI) Error(title, text string) {
	dialog.Message("%s", text).Title(title).Error()
}

func (desktopUI) SetTooltip(text string) {
	systray.SetTooltip(text)
}

func (desktopUI) Quit() {
	systray.Quit()
}

func icon() []byte {
	var (
		data []byte
		err  error
	)
	if runtime.GOOS == "windows" {
		data, err = assets.IconICO()
	} else {
		data, err = assets.IconPNG()
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to build tray icon")
	}
	return data
}

func onReady(ctx context.Context, menu *Menu, done <-chan struct{}) func() {
	return func() {
		systray.SetIcon(icon())
		if runtime.GOOS != "darwin" {
			systray.SetTitle(config.AppName)
		}
		systray.SetTooltip(menu.Tooltip())

		mRestart := systray.AddMenuItem("Restart", "Stop the game and start the launcher again")
		mStop := systray.AddMenuItem("Stop", "Stop the game and run the exit sequence")
		mKill := systray.AddMenuItem("Kill", "Kill the game and every helper process")
		systray.AddSeparator()
		mShowConfig := systray.AddMenuItem("Show Config", "Show the loaded configuration")
		mChangeConfig := systray.AddMenuItem("Change Config", "Edit the configuration file")
		mViewLog := systray.AddMenuItem("View Log", "View the launcher log file")
		systray.AddSeparator()
		mVersion := systray.AddMenuItem("Version "+config.AppVersion, "")
		mVersion.Disable()
		systray.AddSeparator()
		mExit := systray.AddMenuItem("Exit", "Stop the game and exit the launcher")

		go menu.Loop(ctx, Clicks{
			Restart:      mRestart.ClickedCh,
			Stop:         mStop.ClickedCh,
			Kill:         mKill.ClickedCh,
			ShowConfig:   mShowConfig.ClickedCh,
			ChangeConfig: mChangeConfig.ClickedCh,
			ViewLog:      mViewLog.ClickedCh,
			Exit:         mExit.ClickedCh,
		}, done)
	}
}

// Run shows the tray and blocks until it is closed, either from the Exit
// item or because done was closed. It must be called from the main
// goroutine. The tray is only ever quit from inside its ready callback, so
// closing done before the tray is up is safe.
func Run(ctx context.Context, args Args, done <-chan struct{}, exit func()) {
	menu := NewMenu(args, desktopUI{})
	systray.Run(onReady(ctx, menu, done), func() {
		menu.Close()
		if exit != nil {
			exit()
		}
	})
}
