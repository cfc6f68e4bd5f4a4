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

import "gopkg.in/ini.v1"

// Canonical action names used by the default sequences.
const (
	ActionCloudSync        = "Cloud-Sync"
	ActionLocalBackup      = "Local-Backup"
	ActionControllerMapper = "Controller-Mapper"
	ActionMonitorConfig    = "Monitor-Config"
	ActionHideTaskbar      = "Hide-Taskbar"
	ActionShowTaskbar      = "Show-Taskbar"
	ActionMountDisc        = "Mount-Disc"
	ActionUnmountDisc      = "Unmount-Disc"
	ActionBorderless       = "Borderless"
	ActionPre1             = "Pre1"
	ActionPre2             = "Pre2"
	ActionPre3             = "Pre3"
	ActionPost1            = "Post1"
	ActionPost2            = "Post2"
	ActionPost3            = "Post3"
	ActionJustAfterLaunch  = "JustAfterLaunch"
	ActionJustBeforeExit   = "JustBeforeExit"
	ActionKillList         = "Kill-List"
	ActionKillGame         = "Kill-Game"
)

// DefaultLaunchSequence is used when LaunchSequence is absent or empty.
func DefaultLaunchSequence() []string {
	return []string{
		ActionCloudSync,
		ActionLocalBackup,
		ActionControllerMapper,
		ActionMonitorConfig,
		ActionHideTaskbar,
		ActionMountDisc,
		ActionPre1,
		ActionPre2,
		ActionPre3,
		ActionBorderless,
	}
}

// DefaultExitSequence is used when ExitSequence is absent or empty.
func DefaultExitSequence() []string {
	return []string{
		ActionPost1,
		ActionPost2,
		ActionPost3,
		ActionUnmountDisc,
		ActionMonitorConfig,
		ActionShowTaskbar,
		ActionControllerMapper,
		ActionLocalBackup,
		ActionCloudSync,
	}
}

type Sequences struct {
	Launch []string `yaml:"launch"`
	Exit   []string `yaml:"exit"`
}

func loadSequences(sec *ini.Section) Sequences {
	s := Sequences{
		Launch: splitList(str(sec, "LaunchSequence"), false),
		Exit:   splitList(str(sec, "ExitSequence"), false),
	}
	if len(s.Launch) == 0 {
		s.Launch = DefaultLaunchSequence()
	}
	if len(s.Exit) == 0 {
		s.Exit = DefaultExitSequence()
	}
	return s
}
