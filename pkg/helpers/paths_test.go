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
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestHome(t *testing.T) {
	t.Setenv(config.HomeEnv, "")

	assert.Equal(t, "/explicit", Home("/explicit"))
	assert.Equal(t, ExeDir(), Home(""))

	t.Setenv(config.HomeEnv, "/from/env")
	assert.Equal(t, "/from/env", Home(""))
	assert.Equal(t, "/explicit", Home("/explicit"))
}

func TestPidMarkerPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("/opt/jacket", config.PidFile), PidMarkerPath("/opt/jacket"))
}
