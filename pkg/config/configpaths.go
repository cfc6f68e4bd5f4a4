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
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"gopkg.in/ini.v1"
)

// Paths holds the auxiliary tool bindings from the [Paths] section. A tool
// with an empty Path is unconfigured and its actions are silent no-ops.
type Paths struct {
	ControllerMapper   command.Invocation `yaml:"controller_mapper"`
	Player1Profile     string             `yaml:"player1_profile,omitempty"`
	Player2Profile     string             `yaml:"player2_profile,omitempty"`
	MediaCenterProfile string             `yaml:"mediacenter_profile,omitempty"`

	Borderless command.Invocation `yaml:"borderless"`

	MultiMonitor         command.Invocation `yaml:"multimonitor"`
	MonitorGamingConfig  string             `yaml:"monitor_gaming_config,omitempty"`
	MonitorDesktopConfig string             `yaml:"monitor_desktop_config,omitempty"`

	CloudApp command.Invocation `yaml:"cloud_app"`

	DiscMount    command.Invocation `yaml:"disc_mount"`
	DiscUnmount  command.Invocation `yaml:"disc_unmount"`
	DiscEmulator command.Invocation `yaml:"disc_emulator"`
}

func loadPaths(sec *ini.Section) Paths {
	p := Paths{
		ControllerMapper:   slot(sec, "ControllerMapperApp", "ControllerMapper"),
		Player1Profile:     str(sec, "Player1Profile"),
		Player2Profile:     str(sec, "Player2Profile"),
		MediaCenterProfile: str(sec, "MediaCenterProfile"),

		Borderless: slot(sec, "BorderlessWindowingApp", "BorderlessWindowing"),

		MultiMonitor:         slot(sec, "MultiMonitorTool", "MultiMonitor"),
		MonitorGamingConfig:  str(sec, "MultiMonitorGamingConfig"),
		MonitorDesktopConfig: str(sec, "MultiMonitorDesktopConfig"),

		CloudApp: slot(sec, "CloudApp", "CloudApp"),

		DiscMount:    slot(sec, "DiscMountApp", "DiscMount"),
		DiscUnmount:  slot(sec, "DiscUnmountApp", "DiscUnmount"),
		DiscEmulator: slot(sec, "DiscEmulatorApp", "DiscEmulator"),
	}
	// Monitor layouts are always applied synchronously, and cloud sync
	// historically blocked until the client finished.
	p.MultiMonitor.Wait = true
	p.CloudApp.Wait = booleanDefault(sec, "CloudAppWait", true)
	return p
}
