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

package discmount

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Mode selects how a mount request is run. The zero value is automatic:
// every available backend in default order, each with its own wait default.
type Mode struct {
	// Wait overrides the backend's wait behaviour when set.
	Wait *bool
	// Backend forces a single backend by name.
	Backend string
	// Letter is the requested drive letter, upper case.
	Letter string
	// Priority selects exactly one backend position, 1-based. Zero tries all.
	Priority int
	// Exclusive fails immediately when another mount holds a lock.
	Exclusive bool
}

// Auto reports whether every backend is tried in default order.
func (m Mode) Auto() bool {
	return m.Backend == "" && m.Priority == 0
}

// ParseMode parses a DiscMountMode value. Tokens may be combined with
// commas, e.g. "2,E,nowait". Recognised tokens are "auto", a priority digit
// 1-3, a single drive letter, a backend name, "wait", "nowait" and
// "exclusive". Any other token is treated as automatic.
func ParseMode(s string) Mode {
	var m Mode
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		lower := strings.ToLower(tok)
		switch {
		case lower == "" || lower == "auto":
		case lower == "wait":
			m.Wait = boolPtr(true)
		case lower == "nowait":
			m.Wait = boolPtr(false)
		case lower == "exclusive":
			m.Exclusive = true
		case lower == BackendNative || lower == BackendEmulator || lower == BackendGeneric:
			m.Backend = lower
		case len(tok) == 1 && tok[0] >= '1' && tok[0] <= '9':
			n, _ := strconv.Atoi(tok)
			m.Priority = n
		case len(tok) == 1 && isLetter(tok[0]):
			m.Letter = strings.ToUpper(tok)
		default:
			log.Debug().Str("token", tok).Msg("unrecognised disc mount mode, using automatic")
		}
	}
	return m
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func boolPtr(b bool) *bool {
	return &b
}

func waitOr(w *bool, def bool) bool {
	if w == nil {
		return def
	}
	return *w
}
