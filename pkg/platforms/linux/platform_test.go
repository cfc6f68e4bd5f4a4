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

package linux

import (
	"context"
	"errors"
	"testing"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMountImage(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "udisksctl", []string{"loop-setup", "-f", "/games/a.iso"}).
		Return([]byte("Mapped file /games/a.iso as /dev/loop7.\n"), nil)

	id, err := NewPlatform(cmd).MountImage(context.Background(), "/games/a.iso", "")
	require.NoError(t, err)
	assert.Equal(t, "/dev/loop7", id)
	cmd.AssertExpectations(t)
}

func TestMountImageFailures(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Output", mock.Anything, "udisksctl", mock.Anything).
		Return([]byte("garbage"), nil).Once()
	cmd.On("Output", mock.Anything, "udisksctl", mock.Anything).
		Return(nil, errors.New("exit status 1")).Once()

	p := NewPlatform(cmd)
	_, err := p.MountImage(context.Background(), "/a.iso", "")
	require.ErrorIs(t, err, errNoLoopDevice)
	_, err = p.MountImage(context.Background(), "/a.iso", "")
	require.Error(t, err)
}

func TestUnmountImage(t *testing.T) {
	t.Parallel()

	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Run", mock.Anything, "udisksctl", []string{"loop-delete", "-b", "/dev/loop7"}).Return(nil)

	p := NewPlatform(cmd)
	require.NoError(t, p.UnmountImage(context.Background(), "/dev/loop7", "/a.iso"))
	require.ErrorIs(t, p.UnmountImage(context.Background(), "", "/a.iso"), platforms.ErrNotSupported)
	cmd.AssertExpectations(t)
}

func TestElevatedInvocationUnsupported(t *testing.T) {
	t.Parallel()

	p := NewPlatform(mocks.NewMockCommandExecutor())
	assert.Equal(t, platforms.PlatformIDLinux, p.ID())
	_, ok := p.ElevatedInvocation(command.Invocation{Path: "/bin/true"})
	assert.False(t, ok)
	assert.NoError(t, p.SetTaskbarVisible(false))
}
