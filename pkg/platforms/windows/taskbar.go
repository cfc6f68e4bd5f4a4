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

//go:build windows

package windows

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	swHide = 0
	swShow = 5
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW = user32.NewProc("FindWindowW")
	procShowWindow  = user32.NewProc("ShowWindow")
)

func setTaskbarVisible(visible bool) error {
	class, err := windows.UTF16PtrFromString("Shell_TrayWnd")
	if err != nil {
		return fmt.Errorf("failed to encode window class: %w", err)
	}

	hwnd, _, callErr := procFindWindowW.Call(uintptr(unsafe.Pointer(class)), 0)
	if hwnd == 0 {
		return fmt.Errorf("taskbar window not found: %w", callErr)
	}

	show := uintptr(swHide)
	if visible {
		show = swShow
	}
	// ShowWindow returns the previous visibility, not an error.
	_, _, _ = procShowWindow.Call(hwnd, show)
	return nil
}
