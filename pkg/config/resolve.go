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

package config

import (
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
)

// Substitution variables recognised in path-bearing values.
const (
	VarGameName = "$GAMENAME"
	VarGameDir  = "$GAMEDIR"
	VarGameExe  = "$GAMEEXE"
	VarHome     = "$HOME"
	VarISO      = "$ISO"
)

func (v *Values) gameDir() string {
	if v.Game.Directory != "" {
		return v.Game.Directory
	}
	if v.Game.Executable != "" {
		return filepath.Dir(v.Game.Executable)
	}
	return ""
}

func (v *Values) replacer() *strings.Replacer {
	pairs := []string{
		VarGameName, v.Game.Name,
		VarGameDir, v.gameDir(),
		VarGameExe, v.Game.Executable,
		VarHome, v.Home,
	}
	iso := strings.NewReplacer(pairs...).Replace(v.Game.IsoPath)
	return strings.NewReplacer(append(pairs, VarISO, iso)...)
}

// Resolve expands the substitution variables in s. Unknown $-words are
// left untouched.
func (v *Values) Resolve(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}
	return v.replacer().Replace(s)
}

// ResolveInvocation returns a copy of inv with every string field resolved.
func (v *Values) ResolveInvocation(inv command.Invocation) command.Invocation {
	inv.Path = v.Resolve(inv.Path)
	inv.Options = v.Resolve(inv.Options)
	inv.Arguments = v.Resolve(inv.Arguments)
	inv.Dir = v.Resolve(inv.Dir)
	return inv
}

// IsoPath is the configured disc image with substitutions applied.
func (v *Values) IsoPath() string {
	return v.Resolve(v.Game.IsoPath)
}

// GameInvocation describes how to start the target game.
func (v *Values) GameInvocation() command.Invocation {
	return command.Invocation{
		Path: v.Resolve(v.Game.Executable),
		Dir:  v.Resolve(v.gameDir()),
		Wait: true,
	}
}
