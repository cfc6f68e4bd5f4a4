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

package launcher

import (
	"github.com/ZaparooProject/zaparoo-jacket/pkg/backup"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/config"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/discmount"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/sequence"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/supervisor"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
)

// EnvArgs are the collaborators a run is built from.
type EnvArgs struct {
	Fs       afero.Fs
	Clock    clockwork.Clock
	Config   *config.Values
	Platform platforms.Platform
	Cmd      command.Executor
	// WorkDir holds the disc mount result and lock files.
	WorkDir string
}

// NewEnv wires the supervisor, disc mount backends and backup archiver for
// one run. Backends are tried native first, then the emulation tool, then
// the generic mounter.
func NewEnv(args EnvArgs) *sequence.Env {
	cfg := args.Config
	clock := args.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	mounter := discmount.New(args.Fs, clock, args.WorkDir,
		&discmount.NativeBackend{Platform: args.Platform},
		&discmount.EmulatorBackend{
			Cmd:  args.Cmd,
			Tool: cfg.ResolveInvocation(cfg.Paths.DiscEmulator),
		},
		&discmount.GenericBackend{
			Cmd:         args.Cmd,
			MountTool:   cfg.ResolveInvocation(cfg.Paths.DiscMount),
			UnmountTool: cfg.ResolveInvocation(cfg.Paths.DiscUnmount),
		},
	)

	return &sequence.Env{
		Fs:         args.Fs,
		Config:     cfg,
		Supervisor: supervisor.New(clock),
		Platform:   args.Platform,
		Mounter:    mounter,
		Backup:     backup.New(args.Fs, clock),
	}
}
