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
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms"
)

const (
	BackendNative   = "native"
	BackendEmulator = "emulator"
	BackendGeneric  = "generic"
)

var errToolNotConfigured = errors.New("mount tool not configured")

// Request is one mount attempt handed to a backend.
type Request struct {
	Wait   *bool
	Image  string `validate:"required"`
	Letter string `validate:"omitempty,len=1,alpha"`
}

// Result is what a backend reports after a successful mount.
type Result struct {
	// ID identifies the mounted device: a drive letter, loop device or
	// device node. It may be empty when the tool reports nothing.
	ID string
	// Waited is false when the tool was started without waiting.
	Waited bool
}

// Backend is one strategy able to satisfy a mount request.
type Backend interface {
	Name() string
	// Available reports whether the backend is configured at all.
	Available() bool
	Mount(ctx context.Context, req Request) (Result, error)
	Unmount(ctx context.Context, rec MountRecord) error
}

// NativeBackend uses the operating system's own image facility.
type NativeBackend struct {
	Platform platforms.Platform
}

func (*NativeBackend) Name() string {
	return BackendNative
}

func (n *NativeBackend) Available() bool {
	return n.Platform != nil
}

func (n *NativeBackend) Mount(ctx context.Context, req Request) (Result, error) {
	id, err := n.Platform.MountImage(ctx, req.Image, req.Letter)
	if err != nil {
		return Result{}, fmt.Errorf("native mount: %w", err)
	}
	return Result{ID: id, Waited: true}, nil
}

func (n *NativeBackend) Unmount(ctx context.Context, rec MountRecord) error {
	if err := n.Platform.UnmountImage(ctx, rec.ID, rec.Image); err != nil {
		return fmt.Errorf("native unmount: %w", err)
	}
	return nil
}

// EmulatorBackend drives a virtual drive tool that takes explicit
// --mount/--unmount, --letter and --path flags.
type EmulatorBackend struct {
	Cmd  command.Executor
	Tool command.Invocation
}

func (*EmulatorBackend) Name() string {
	return BackendEmulator
}

func (e *EmulatorBackend) Available() bool {
	return !e.Tool.Empty()
}

func (e *EmulatorBackend) Mount(ctx context.Context, req Request) (Result, error) {
	inv := e.Tool
	flags := []string{"--mount"}
	if req.Letter != "" {
		flags = append(flags, "--letter", req.Letter)
	}
	flags = append(flags, "--path", command.Quote(req.Image))
	inv.Options = command.Join(inv.Options, strings.Join(flags, " "))

	waited := waitOr(req.Wait, true)
	if err := run(ctx, e.Cmd, inv, waited); err != nil {
		return Result{}, fmt.Errorf("emulator mount: %w", err)
	}
	return Result{ID: req.Letter, Waited: waited}, nil
}

func (e *EmulatorBackend) Unmount(ctx context.Context, rec MountRecord) error {
	inv := e.Tool
	flags := "--unmount --path " + command.Quote(rec.Image)
	if rec.ID != "" {
		flags = "--unmount --letter " + rec.ID
	}
	inv.Options = command.Join(inv.Options, flags)
	if err := run(ctx, e.Cmd, inv, true); err != nil {
		return fmt.Errorf("emulator unmount: %w", err)
	}
	return nil
}

// GenericBackend passes the image to a third-party mounter as
// "app" options "image" arguments. Unmounting uses the dedicated unmount
// tool when one is configured, otherwise the mount tool with --unmount.
type GenericBackend struct {
	Cmd         command.Executor
	MountTool   command.Invocation
	UnmountTool command.Invocation
}

func (*GenericBackend) Name() string {
	return BackendGeneric
}

func (g *GenericBackend) Available() bool {
	return !g.MountTool.Empty()
}

func (g *GenericBackend) Mount(ctx context.Context, req Request) (Result, error) {
	inv := g.MountTool
	inv.Options = command.Join(inv.Options, command.Quote(req.Image))

	waited := waitOr(req.Wait, g.MountTool.Wait)
	if err := run(ctx, g.Cmd, inv, waited); err != nil {
		return Result{}, fmt.Errorf("generic mount: %w", err)
	}
	return Result{ID: req.Letter, Waited: waited}, nil
}

func (g *GenericBackend) Unmount(ctx context.Context, rec MountRecord) error {
	inv := g.UnmountTool
	if inv.Empty() {
		inv = g.MountTool
		inv.Options = command.Join(inv.Options, "--unmount")
	}
	if inv.Empty() {
		return errToolNotConfigured
	}
	inv.Options = command.Join(inv.Options, command.Quote(rec.Image))
	if err := run(ctx, g.Cmd, inv, true); err != nil {
		return fmt.Errorf("generic unmount: %w", err)
	}
	return nil
}

func run(ctx context.Context, ex command.Executor, inv command.Invocation, wait bool) error {
	if !wait {
		argv, err := inv.Argv()
		if err != nil {
			return err
		}
		//nolint:wrapcheck // callers wrap with the backend name
		return ex.Start(ctx, argv[0], argv[1:]...)
	}
	_, err := command.RunInvocation(ctx, ex, inv)
	return err
}
