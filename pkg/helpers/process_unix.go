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

package helpers

import (
	"slices"

	"github.com/shirou/gopsutil/v4/process"
)

// PidRunning reports whether pid maps to a live process. Zombies waiting
// to be reaped are treated as exited.
func PidRunning(pid int) bool {
	if pid <= 0 {
		return false
	}

	//nolint:gosec // G115 pids fit in int32 on every supported platform
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}

	status, err := p.Status()
	if err != nil {
		running, runErr := p.IsRunning()
		return runErr == nil && running
	}
	return !slices.Contains(status, process.Zombie)
}
