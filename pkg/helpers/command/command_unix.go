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

package command

import (
	"fmt"
	"os/exec"

	"github.com/google/shlex"
)

// splitArgs splits a POSIX-style option string, honouring quotes.
func splitArgs(s string) ([]string, error) {
	args, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("shlex: %w", err)
	}
	return args, nil
}

func buildCmd(inv Invocation) (*exec.Cmd, error) {
	argv, err := inv.Argv()
	if err != nil {
		return nil, err
	}
	//nolint:gosec,noctx // configured tool paths are the whole point; lifetime owned by supervisor
	return exec.Command(argv[0], argv[1:]...), nil
}
