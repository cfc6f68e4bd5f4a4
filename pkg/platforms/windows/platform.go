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

//go:build windows

package windows

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows"
)

type Platform struct {
	cmd command.Executor
}

func NewPlatform(cmd command.Executor) *Platform {
	return &Platform{cmd: cmd}
}

func (*Platform) ID() string {
	return platforms.PlatformIDWindows
}

func (*Platform) SetTaskbarVisible(visible bool) error {
	return setTaskbarVisible(visible)
}

func (*Platform) IsAdmin() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// ElevatedInvocation starts the target through PowerShell with the RunAs
// verb. -Wait keeps the PowerShell process alive until the target exits so
// it can be supervised like the target itself.
func (*Platform) ElevatedInvocation(inv command.Invocation) (command.Invocation, bool) {
	script := "Start-Process -FilePath " + platforms.PowerShellQuote(inv.Path) + " -Verb RunAs -Wait"
	if args := command.Join(inv.Options, inv.Arguments); args != "" {
		script += " -ArgumentList " + platforms.PowerShellQuote(args)
	}
	if inv.Dir != "" {
		script += " -WorkingDirectory " + platforms.PowerShellQuote(inv.Dir)
	}
	return command.Invocation{
		Path:       "powershell.exe",
		Options:    "-NoProfile -NonInteractive -WindowStyle Hidden",
		Arguments:  "-Command " + command.Quote(script),
		Dir:        inv.Dir,
		Wait:       inv.Wait,
		HideWindow: true,
	}, true
}

func (p *Platform) powershell(ctx context.Context, script string) ([]byte, error) {
	out, err := p.cmd.Output(ctx, "powershell.exe", "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return out, fmt.Errorf("powershell: %w", err)
	}
	return out, nil
}

// MountImage mounts with Mount-DiskImage and returns the assigned drive
// letter. Windows picks the letter itself.
func (p *Platform) MountImage(ctx context.Context, image, letter string) (string, error) {
	if letter != "" {
		log.Debug().Str("letter", letter).Msg("native mount ignores drive letter requests")
	}
	script := "(Mount-DiskImage -ImagePath " + platforms.PowerShellQuote(image) +
		" -PassThru | Get-Volume).DriveLetter"
	out, err := p.powershell(ctx, script)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (p *Platform) UnmountImage(ctx context.Context, id, image string) error {
	var script string
	switch {
	case image != "":
		script = "Dismount-DiskImage -ImagePath " + platforms.PowerShellQuote(image)
	case id != "":
		script = "Get-Volume -DriveLetter " + platforms.PowerShellQuote(id) +
			" | Get-DiskImage | Dismount-DiskImage"
	default:
		return fmt.Errorf("%w: nothing to dismount", platforms.ErrNotSupported)
	}
	_, err := p.powershell(ctx, script)
	return err
}
