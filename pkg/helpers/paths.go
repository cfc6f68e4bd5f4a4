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

package helpers

import (
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/config"
)

func ExeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}

	return filepath.Dir(exe)
}

// Home returns the install root: the explicit override, then the
// JACKET_HOME environment variable, then the executable's directory.
func Home(override string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv(config.HomeEnv); env != "" {
		return env
	}
	return ExeDir()
}

// PidMarkerPath is the single-instance marker inside the install root.
func PidMarkerPath(home string) string {
	return filepath.Join(home, config.PidFile)
}
