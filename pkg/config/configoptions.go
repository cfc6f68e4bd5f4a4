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
	"strings"

	"gopkg.in/ini.v1"
)

// BorderlessMode is the [Options] Borderless setting.
type BorderlessMode int

const (
	BorderlessDisabled BorderlessMode = iota
	// BorderlessKillOnExit ("K") runs the tool untracked for the session.
	BorderlessKillOnExit
	// BorderlessPersist ("E") runs the tool as a tracked process.
	BorderlessPersist
)

// ParseBorderless maps the config letters to a mode. Anything unrecognised,
// including "0" and empty, disables borderless windowing.
func ParseBorderless(s string) BorderlessMode {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "K":
		return BorderlessKillOnExit
	case "E":
		return BorderlessPersist
	default:
		return BorderlessDisabled
	}
}

func (m BorderlessMode) String() string {
	switch m {
	case BorderlessKillOnExit:
		return "K"
	case BorderlessPersist:
		return "E"
	case BorderlessDisabled:
		return "0"
	}
	return "0"
}

// Enabled reports whether the borderless tool should be started at all.
func (m BorderlessMode) Enabled() bool {
	return m != BorderlessDisabled
}

func (m BorderlessMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

type Options struct {
	KillList                  []string       `yaml:"kill_list,omitempty"`
	DiscMountMode             string         `yaml:"disc_mount_mode,omitempty"`
	Borderless                BorderlessMode `yaml:"borderless"`
	MaxBackups                int            `yaml:"max_backups"`
	RunAsAdmin                bool           `yaml:"run_as_admin"`
	HideTaskbar               bool           `yaml:"hide_taskbar"`
	UseKillList               bool           `yaml:"use_kill_list"`
	TerminateBorderlessOnExit bool           `yaml:"terminate_borderless_on_exit"`
	BackupSaves               bool           `yaml:"backup_saves"`
	MultiInstance             bool           `yaml:"multi_instance"`
	DebugLogging              bool           `yaml:"debug_logging"`
	ShowTray                  bool           `yaml:"show_tray"`
}

func loadOptionsSection(sec *ini.Section) Options {
	return Options{
		RunAsAdmin:                boolean(sec, "RunAsAdmin"),
		HideTaskbar:               boolean(sec, "HideTaskbar"),
		Borderless:                ParseBorderless(str(sec, "Borderless")),
		UseKillList:               boolean(sec, "UseKillList"),
		KillList:                  splitList(str(sec, "KillList"), true),
		TerminateBorderlessOnExit: boolean(sec, "TerminateBorderlessOnExit"),
		BackupSaves:               boolean(sec, "BackupSaves"),
		MaxBackups:                integer(sec, "MaxBackups"),
		MultiInstance:             boolean(sec, "MultiInstance"),
		DiscMountMode:             str(sec, "DiscMountMode"),
		DebugLogging:              boolean(sec, "DebugLogging"),
		ShowTray:                  booleanDefault(sec, "ShowTray", true),
	}
}
