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

package config

import (
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"gopkg.in/ini.v1"
)

// CloudSync configures the Cloud-Sync action. Tool defaults to the
// [Paths] CloudApp binding when the section does not name its own app.
type CloudSync struct {
	Tool     command.Invocation `yaml:"tool"`
	OnLaunch bool               `yaml:"on_launch"`
	OnExit   bool               `yaml:"on_exit"`
}

// LocalBackup configures the Local-Backup action.
type LocalBackup struct {
	SaveDir   string `yaml:"save_dir"`
	BackupDir string `yaml:"backup_dir"`
	OnLaunch  bool   `yaml:"on_launch"`
	OnExit    bool   `yaml:"on_exit"`
}

func loadCloudSync(f *ini.File, legacy command.Invocation) CloudSync {
	sec, err := f.GetSection(SectionCloudSync)
	if err != nil {
		// Legacy configs only set [Paths] CloudApp and expect a sync on
		// both sides of the game.
		return CloudSync{
			Tool:     legacy,
			OnLaunch: !legacy.Empty(),
			OnExit:   !legacy.Empty(),
		}
	}

	cs := CloudSync{
		Tool:     legacy,
		OnLaunch: boolean(sec, "OnLaunch"),
		OnExit:   boolean(sec, "OnExit"),
	}
	if app := str(sec, "App"); app != "" {
		cs.Tool = command.Invocation{
			Path:      app,
			Options:   str(sec, "Options"),
			Arguments: str(sec, "Arguments"),
			Wait:      booleanDefault(sec, "Wait", true),
		}
	}
	return cs
}

func loadLocalBackup(f *ini.File, backupSaves bool) LocalBackup {
	lb := LocalBackup{
		SaveDir:   filepath.Join("$HOME", "Saves"),
		BackupDir: filepath.Join("$HOME", "Backups"),
		OnLaunch:  backupSaves,
	}
	sec, err := f.GetSection(SectionLocalBackup)
	if err != nil {
		return lb
	}
	if v := str(sec, "SaveDir"); v != "" {
		lb.SaveDir = v
	}
	if v := str(sec, "BackupDir"); v != "" {
		lb.BackupDir = v
	}
	lb.OnLaunch = booleanDefault(sec, "OnLaunch", backupSaves)
	lb.OnExit = boolean(sec, "OnExit")
	return lb
}
