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

package sequence

import (
	"strings"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
)

type mapperFamily int

const (
	familyGeneric mapperFamily = iota
	familyAntiMicro
	familyJoyToKey
)

// familyOf picks the argument convention from the mapper's file name.
func familyOf(inv command.Invocation) mapperFamily {
	name := strings.ToLower(inv.BaseName())
	switch {
	case strings.Contains(name, "antimicro"):
		return familyAntiMicro
	case strings.Contains(name, "joyxoff"),
		strings.Contains(name, "joy2key"),
		strings.Contains(name, "keysticks"):
		return familyJoyToKey
	default:
		return familyGeneric
	}
}

// mapperInvocation binds the player profiles to the mapper's own syntax.
// Unrecognised mappers get their configured options and arguments only.
func mapperInvocation(inv command.Invocation, p1, p2 string) command.Invocation {
	switch familyOf(inv) {
	case familyAntiMicro:
		inv.Options = command.Join(inv.Options, "--tray --hidden --profile", command.Quote(p1))
		if p2 != "" {
			inv.Arguments = command.Join(inv.Arguments,
				"--next --profile-controller 2 --profile", command.Quote(p2))
		}
	case familyJoyToKey:
		inv.Options = command.Join("-load", command.Quote(p1), inv.Options)
	case familyGeneric:
	}
	return inv
}
