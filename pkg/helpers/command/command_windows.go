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

package command

import (
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// splitArgs splits an option string with the same rules CreateProcess uses,
// so backslashes in paths survive.
func splitArgs(s string) ([]string, error) {
	args, err := windows.DecomposeCommandLine(s)
	if err != nil {
		return nil, fmt.Errorf("decompose command line: %w", err)
	}
	return args, nil
}

// buildCmd hands the rendered command line to CreateProcess verbatim, which
// is how the configured option strings were always interpreted.
func buildCmd(inv Invocation) (*exec.Cmd, error) {
	//nolint:gosec,noctx // configured tool paths are the whole point; lifetime owned by supervisor
	cmd := exec.Command(inv.Path)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine:    inv.CommandLine(),
		HideWindow: inv.HideWindow,
	}
	return cmd, nil
}
