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

// Package platforms abstracts the host desktop: shell chrome, privilege
// checks and the OS-native disc image facility.
package platforms

import (
	"context"
	"errors"
	"strings"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
)

const (
	PlatformIDWindows = "windows"
	PlatformIDLinux   = "linux"
	PlatformIDMac     = "mac"
)

var ErrNotSupported = errors.New("operation not supported on this platform")

// Platform is the per-OS integration used by the launcher.
type Platform interface {
	// ID returns the unique ID of this platform.
	ID() string
	// SetTaskbarVisible shows or hides the desktop taskbar. Platforms
	// without a taskbar return nil.
	SetTaskbarVisible(visible bool) error
	// IsAdmin reports whether the current process runs with administrator
	// rights. It never prompts.
	IsAdmin() bool
	// ElevatedInvocation wraps inv so the target starts with administrator
	// rights. ok is false when the platform has no elevation path.
	ElevatedInvocation(inv command.Invocation) (elevated command.Invocation, ok bool)
	// MountImage attaches a disc image with the OS facility and returns an
	// identifier for the mounted device. letter is a best-effort request.
	MountImage(ctx context.Context, image, letter string) (string, error)
	// UnmountImage reverses MountImage. Either id or image may be empty.
	UnmountImage(ctx context.Context, id, image string) error
}

// PowerShellQuote escapes s for use inside a single-quoted PowerShell
// string literal.
func PowerShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
