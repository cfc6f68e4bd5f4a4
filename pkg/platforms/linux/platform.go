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

//go:build !windows

package linux

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms"
	"github.com/rs/zerolog/log"
)

var loopDeviceRe = regexp.MustCompile(`(/dev/loop\d+)`)

var errNoLoopDevice = errors.New("no loop device in udisksctl output")

type Platform struct {
	cmd command.Executor
}

func NewPlatform(cmd command.Executor) *Platform {
	return &Platform{cmd: cmd}
}

func (*Platform) ID() string {
	return platforms.PlatformIDLinux
}

// SetTaskbarVisible is a no-op, desktop panels are owned by the session.
func (*Platform) SetTaskbarVisible(visible bool) error {
	log.Debug().Bool("visible", visible).Msg("taskbar toggle not supported on linux")
	return nil
}

func (*Platform) IsAdmin() bool {
	return platforms.IsRootUser()
}

func (*Platform) ElevatedInvocation(inv command.Invocation) (command.Invocation, bool) {
	return inv, false
}

// MountImage sets up a loop device with udisksctl, which also triggers the
// desktop automounter. The loop device path is returned.
func (p *Platform) MountImage(ctx context.Context, image, _ string) (string, error) {
	out, err := p.cmd.Output(ctx, "udisksctl", "loop-setup", "-f", image)
	if err != nil {
		return "", fmt.Errorf("udisksctl loop-setup: %w", err)
	}
	m := loopDeviceRe.FindStringSubmatch(string(out))
	if m == nil {
		return "", fmt.Errorf("%w: %q", errNoLoopDevice, out)
	}
	return m[1], nil
}

func (p *Platform) UnmountImage(ctx context.Context, id, _ string) error {
	if id == "" {
		return fmt.Errorf("%w: loop device unknown", platforms.ErrNotSupported)
	}
	if err := p.cmd.Run(ctx, "udisksctl", "loop-delete", "-b", id); err != nil {
		return fmt.Errorf("udisksctl loop-delete: %w", err)
	}
	return nil
}
