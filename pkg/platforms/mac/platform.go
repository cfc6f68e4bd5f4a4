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

package mac

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms"
)

var errNoDevice = errors.New("no device in hdiutil output")

type Platform struct {
	cmd command.Executor
}

func NewPlatform(cmd command.Executor) *Platform {
	return &Platform{cmd: cmd}
}

func (*Platform) ID() string {
	return platforms.PlatformIDMac
}

func (*Platform) SetTaskbarVisible(bool) error {
	return nil
}

func (*Platform) IsAdmin() bool {
	return platforms.IsRootUser()
}

func (*Platform) ElevatedInvocation(inv command.Invocation) (command.Invocation, bool) {
	return inv, false
}

// MountImage attaches the image with hdiutil and returns the first device
// node it reports.
func (p *Platform) MountImage(ctx context.Context, image, _ string) (string, error) {
	out, err := p.cmd.Output(ctx, "hdiutil", "attach", image)
	if err != nil {
		return "", fmt.Errorf("hdiutil attach: %w", err)
	}
	return firstDevice(out)
}

func (p *Platform) UnmountImage(ctx context.Context, id, _ string) error {
	if id == "" {
		return fmt.Errorf("%w: device unknown", platforms.ErrNotSupported)
	}
	if err := p.cmd.Run(ctx, "hdiutil", "detach", id); err != nil {
		return fmt.Errorf("hdiutil detach: %w", err)
	}
	return nil
}

func firstDevice(out []byte) (string, error) {
	s := bufio.NewScanner(bytes.NewReader(out))
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) > 0 && strings.HasPrefix(fields[0], "/dev/") {
			return fields[0], nil
		}
	}
	return "", fmt.Errorf("%w: %q", errNoDevice, out)
}
