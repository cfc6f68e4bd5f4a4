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

//go:build darwin

package main

import (
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms/mac"
)

func newPlatform(cmd command.Executor) platforms.Platform {
	return mac.NewPlatform(cmd)
}
