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
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIni = `; generated by the jacket editor
[Game]
Executable=C:\Games\Quake\quake.exe
Directory=C:\Games\Quake
Name=Quake
IsoPath=$HOME\Images\quake.iso

[paths]
ControllerMapperApp=C:\Tools\antimicrox.exe
ControllerMapperOptions=--tray
Player1Profile=$HOME\Profiles\p1.gamecontroller.amgp
BorderlessWindowingApp=C:\Tools\borderless.exe
MultiMonitorTool=C:\Tools\MultiMonitorTool.exe
MultiMonitorGamingConfig=$HOME\gaming.cfg
DiscMountApp=C:\Tools\mount.exe
DiscMountWait=1

[Options]
RunAsAdmin=true
HideTaskbar=1
Borderless=K
UseKillList=True
KillList=steam.exe, Steam.exe ,,launcher.exe
MaxBackups=3
MultiInstance=yes
SomethingNew=1

[PreLaunch]
App1=/bin/echo
App1Options=pre
App1Wait=1

[PostLaunch]
App2=/bin/echo
App2Arguments=post
JustAfterLaunchApp=hook.exe
JustBeforeExitWait=1

[Sequences]
LaunchSequence=Pre1, Borderless
ExitSequence=Post1

[Unknown]
Key=Value
`

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	path := filepath.Join("games", "quake", GameIniFile)
	writeFile(t, fs, path, sampleIni)

	v, err := Load(fs, path, "/opt/jacket")
	require.NoError(t, err)

	assert.Equal(t, `C:\Games\Quake\quake.exe`, v.Game.Executable)
	assert.Equal(t, "Quake", v.Game.Name)
	assert.Equal(t, path, v.Source)
	assert.Equal(t, "/opt/jacket", v.Home)

	assert.Equal(t, `C:\Tools\antimicrox.exe`, v.Paths.ControllerMapper.Path)
	assert.Equal(t, "--tray", v.Paths.ControllerMapper.Options)
	assert.Equal(t, `C:\Tools\mount.exe`, v.Paths.DiscMount.Path)
	assert.True(t, v.Paths.DiscMount.Wait)
	assert.True(t, v.Paths.MultiMonitor.Wait)
	assert.True(t, v.Paths.DiscUnmount.Empty())

	assert.True(t, v.Options.RunAsAdmin)
	assert.True(t, v.Options.HideTaskbar)
	assert.Equal(t, BorderlessKillOnExit, v.Options.Borderless)
	assert.True(t, v.Options.UseKillList)
	assert.Equal(t, []string{"steam.exe", "launcher.exe"}, v.Options.KillList)
	assert.Equal(t, 3, v.Options.MaxBackups)
	assert.False(t, v.Options.MultiInstance, "only 1/true/True are true")
	assert.True(t, v.Options.ShowTray)

	assert.Equal(t, App{Path: "/bin/echo", Options: "pre", Wait: true}, v.PreLaunch[0])
	assert.True(t, v.PreLaunch[1].Empty())
	assert.Equal(t, App{Path: "/bin/echo", Arguments: "post"}, v.PostLaunch[1])
	assert.Equal(t, "hook.exe", v.JustAfter.Path)
	assert.True(t, v.JustBefore.Wait)

	assert.Equal(t, []string{"Pre1", "Borderless"}, v.Sequences.Launch)
	assert.Equal(t, []string{"Post1"}, v.Sequences.Exit)
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/cfg/Game.ini", "[Game]\nExecutable=/bin/true\n")

	v, err := Load(fs, "/cfg/Game.ini", "/home")
	require.NoError(t, err)

	assert.Equal(t, DefaultLaunchSequence(), v.Sequences.Launch)
	assert.Equal(t, DefaultExitSequence(), v.Sequences.Exit)
	assert.Equal(t, BorderlessDisabled, v.Options.Borderless)
	assert.Equal(t, 0, v.Options.MaxBackups)
	assert.Equal(t, 0, v.State.PID)
	assert.False(t, v.CloudSync.OnLaunch)
	assert.False(t, v.CloudSync.OnExit)
	assert.False(t, v.LocalBackup.OnLaunch)
	assert.Equal(t, filepath.Join("$HOME", "Saves"), v.LocalBackup.SaveDir)
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(afero.NewMemMapFs(), "/nope/Game.ini", "")
	require.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadCloudSyncAndBackup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		ini         string
		wantTool    string
		wantLaunch  bool
		wantExit    bool
		wantBackup  bool
		wantBackupX bool
	}{
		{
			name:       "legacy cloud app syncs both phases",
			ini:        "[Paths]\nCloudApp=sync.exe\n",
			wantTool:   "sync.exe",
			wantLaunch: true,
			wantExit:   true,
		},
		{
			name:     "section overrides app and flags",
			ini:      "[Paths]\nCloudApp=old.exe\n[CloudSync]\nApp=new.exe\nOnExit=1\n",
			wantTool: "new.exe",
			wantExit: true,
		},
		{
			name:       "backup saves enables launch backup",
			ini:        "[Options]\nBackupSaves=1\n",
			wantBackup: true,
		},
		{
			name:        "local backup section flags",
			ini:         "[Options]\nBackupSaves=1\n[LocalBackup]\nOnLaunch=0\nOnExit=1\n",
			wantBackupX: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			writeFile(t, fs, "/c/Game.ini", tt.ini)
			v, err := Load(fs, "/c/Game.ini", "/h")
			require.NoError(t, err)

			assert.Equal(t, tt.wantTool, v.CloudSync.Tool.Path)
			assert.Equal(t, tt.wantLaunch, v.CloudSync.OnLaunch)
			assert.Equal(t, tt.wantExit, v.CloudSync.OnExit)
			assert.Equal(t, tt.wantBackup, v.LocalBackup.OnLaunch)
			assert.Equal(t, tt.wantBackupX, v.LocalBackup.OnExit)
		})
	}
}

func TestParseBool(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1", "true", "True", " 1 "} {
		assert.True(t, ParseBool(s), s)
	}
	for _, s := range []string{"", "0", "TRUE", "yes", "on", "2"} {
		assert.False(t, ParseBool(s), s)
	}
}

func TestParseBorderless(t *testing.T) {
	t.Parallel()

	assert.Equal(t, BorderlessKillOnExit, ParseBorderless("k"))
	assert.Equal(t, BorderlessPersist, ParseBorderless("E"))
	assert.Equal(t, BorderlessDisabled, ParseBorderless("0"))
	assert.Equal(t, BorderlessDisabled, ParseBorderless(""))
	assert.False(t, BorderlessDisabled.Enabled())
	assert.True(t, BorderlessPersist.Enabled())
}

func TestApplyTarget(t *testing.T) {
	t.Parallel()

	v := &Values{}
	v.ApplyTarget(`C:\Games\Doom\doom.exe`)
	assert.Equal(t, "doom", v.Game.Name)
	assert.Equal(t, `C:\Games\Doom\doom.exe`, v.Game.Executable)

	v = &Values{Game: Game{Name: "Keep", Executable: "/bin/keep"}}
	v.ApplyTarget("/games/other.lnk")
	assert.Equal(t, "Keep", v.Game.Name)
	assert.Equal(t, "/bin/keep", v.Game.Executable)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	v := &Values{
		Home: "/opt/jacket",
		Game: Game{
			Name:       "Quake",
			Executable: "/games/quake/quake",
			IsoPath:    "$HOME/images/$GAMENAME.iso",
		},
	}

	assert.Equal(t, "/opt/jacket/profiles/Quake.amgp", v.Resolve("$HOME/profiles/$GAMENAME.amgp"))
	assert.Equal(t, "/opt/jacket/images/Quake.iso", v.Resolve("$ISO"))
	assert.Equal(t, "/games/quake", v.Resolve("$GAMEDIR"))
	assert.Equal(t, "/games/quake/quake", v.Resolve("$GAMEEXE"))
	assert.Equal(t, "$UNKNOWN stays", v.Resolve("$UNKNOWN stays"))
	assert.Equal(t, "/opt/jacket/images/Quake.iso", v.IsoPath())

	inv := v.ResolveInvocation(App{Path: "$HOME/tool", Options: "-p $GAMENAME", Arguments: "$ISO"})
	assert.Equal(t, App{
		Path:      "/opt/jacket/tool",
		Options:   "-p Quake",
		Arguments: "/opt/jacket/images/Quake.iso",
	}, inv)

	game := v.GameInvocation()
	assert.Equal(t, "/games/quake/quake", game.Path)
	assert.Equal(t, "/games/quake", game.Dir)
	assert.True(t, game.Wait)
}

func TestLocate(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/games/quake/Game.ini", "")
	writeFile(t, fs, "/opt/jacket/config.ini", "")
	t.Setenv(CfgEnv, "")

	got, err := Locate(fs, "/games/quake/quake.lnk", "/opt/jacket", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/games/quake", GameIniFile), got)

	got, err = Locate(fs, "/games/doom/doom.lnk", "/opt/jacket", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/opt/jacket", FallbackIniFile), got)

	got, err = Locate(fs, "/games/doom/doom.lnk", "/opt/jacket", "/explicit.ini")
	require.NoError(t, err)
	assert.Equal(t, "/explicit.ini", got)

	_, err = Locate(fs, "/games/doom/doom.lnk", "/empty", "")
	require.ErrorIs(t, err, ErrConfigNotFound)

	t.Setenv(CfgEnv, "/from/env.ini")
	got, err = Locate(fs, "/games/doom/doom.lnk", "/empty", "")
	require.NoError(t, err)
	assert.Equal(t, "/from/env.ini", got)
}

func TestDump(t *testing.T) {
	t.Parallel()

	v := &Values{
		Game:    Game{Name: "Quake", Executable: "/games/quake"},
		Options: Options{Borderless: BorderlessPersist},
	}
	out, err := Dump(v)
	require.NoError(t, err)
	assert.Contains(t, out, "name: Quake")
	assert.Contains(t, out, "borderless: E")
}
