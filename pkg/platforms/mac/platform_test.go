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

package mac

import (
	"context"
	"testing"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMountImage(t *testing.T) {
	t.Parallel()

	out := "/dev/disk4          \tGUID_partition_scheme\n" +
		"/dev/disk4s1        \tApple_HFS                      \t/Volumes/Game\n"
	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "hdiutil", []string{"attach", "/g.dmg"}).Return([]byte(out), nil)
	cmd.On("Run", mock.Anything, "hdiutil", []string{"detach", "/dev/disk4"}).Return(nil)

	p := NewPlatform(cmd)
	id, err := p.MountImage(context.Background(), "/g.dmg", "")
	require.NoError(t, err)
	assert.Equal(t, "/dev/disk4", id)
	require.NoError(t, p.UnmountImage(context.Background(), id, ""))
	cmd.AssertExpectations(t)
}

func TestFirstDeviceMissing(t *testing.T) {
	t.Parallel()

	_, err := firstDevice([]byte("hdiutil: attach failed\n"))
	require.ErrorIs(t, err, errNoDevice)
}
