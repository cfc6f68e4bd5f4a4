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

package mocks

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms"
	"github.com/stretchr/testify/mock"
)

// MockPlatform is a mock implementation of the Platform interface using testify/mock
type MockPlatform struct {
	mock.Mock
	// TaskbarErr is returned from every SetTaskbarVisible call.
	TaskbarErr error
	// Elevate replaces ElevatedInvocation when set.
	Elevate func(command.Invocation) (command.Invocation, bool)
	taskbar []bool // Track taskbar toggles for verification
	mu      syncutil.Mutex
}

// NewMockPlatform creates a MockPlatform with permissive defaults: a visible
// taskbar toggle that succeeds, no admin rights and no elevation path.
func NewMockPlatform() *MockPlatform {
	m := &MockPlatform{}
	m.On("ID").Return(platforms.PlatformIDLinux).Maybe()
	m.On("IsAdmin").Return(false).Maybe()
	return m
}

func (m *MockPlatform) ID() string {
	args := m.Called()
	return args.String(0)
}

// SetTaskbarVisible records the toggle and returns TaskbarErr.
func (m *MockPlatform) SetTaskbarVisible(visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.taskbar = append(m.taskbar, visible)
	return m.TaskbarErr
}

// TaskbarToggles returns every visibility change requested so far.
func (m *MockPlatform) TaskbarToggles() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.taskbar...)
}

func (m *MockPlatform) IsAdmin() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPlatform) ElevatedInvocation(inv command.Invocation) (command.Invocation, bool) {
	if m.Elevate != nil {
		return m.Elevate(inv)
	}
	return inv, false
}

func (m *MockPlatform) MountImage(ctx context.Context, image, letter string) (string, error) {
	args := m.Called(ctx, image, letter)
	if err := args.Error(1); err != nil {
		return "", fmt.Errorf("mock mount failed: %w", err)
	}
	return args.String(0), nil
}

func (m *MockPlatform) UnmountImage(ctx context.Context, id, image string) error {
	args := m.Called(ctx, id, image)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock unmount failed: %w", err)
	}
	return nil
}
