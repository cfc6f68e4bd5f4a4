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
	"context"
	"fmt"
	"runtime"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
)

// OpenerCommand is the OS program that opens a file with its default
// handler.
func OpenerCommand() string {
	switch runtime.GOOS {
	case "windows":
		return "explorer"
	case "darwin":
		return "open"
	default:
		return "xdg-open"
	}
}

// OpenFile opens path with the desktop's default application. This is a
// fire-and-forget operation: the handler is started but not waited on.
func OpenFile(ctx context.Context, ex command.Executor, path string) error {
	if err := ex.Start(ctx, OpenerCommand(), path); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return nil
}
