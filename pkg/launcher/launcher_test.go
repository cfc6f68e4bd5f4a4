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
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/config"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/lifecycle"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/sequence"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/testing/mocks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	seen []string
	mu   syncutil.Mutex
}

func (r *recorder) observe(action string, _ sequence.Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, action)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func skipWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires posix tools")
	}
}

type fixture struct {
	fs     afero.Fs
	pl     *mocks.MockPlatform
	rec    *recorder
	runner *Runner
	dir    string
}

func newFixture(t *testing.T, ini string) *fixture {
	t.Helper()
	dir := t.TempDir()
	fs := afero.NewOsFs()
	cfgPath := filepath.Join(dir, config.GameIniFile)
	require.NoError(t, afero.WriteFile(fs, cfgPath, []byte(ini), 0o600))
	v, err := config.Load(fs, cfgPath, dir)
	require.NoError(t, err)

	pl := mocks.NewMockPlatform()
	env := NewEnv(EnvArgs{
		Fs:       fs,
		Config:   v,
		Platform: pl,
		Cmd:      mocks.NewMockCommandExecutor(),
		WorkDir:  dir,
	})
	rec := &recorder{}
	return &fixture{
		fs:     fs,
		pl:     pl,
		rec:    rec,
		dir:    dir,
		runner: New(env, WithObserver(rec.observe)),
	}
}

// sleeper writes an executable game that runs until killed.
func sleeper(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "game.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexec sleep 30\n"), 0o700)) //nolint:gosec // test script
	return path
}

func runAsync(t *testing.T, r *Runner) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- r.Run(context.Background())
	}()
	require.Eventually(t, func() bool { return r.Game() != nil }, 5*time.Second, 10*time.Millisecond)
	return done
}

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		require.FailNow(t, "run did not finish")
		return nil
	}
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	dir := t.TempDir()
	out := filepath.Join(dir, "order.log")
	ini := "[Game]\n" +
		"Executable=/bin/true\n" +
		"Name=Quick\n" +
		"[PreLaunch]\n" +
		"App1=/bin/sh\n" +
		"App1Arguments=-c \"echo pre >> " + out + "\"\n" +
		"App1Wait=1\n" +
		"[PostLaunch]\n" +
		"App1=/bin/sh\n" +
		"App1Arguments=-c \"echo post >> " + out + "\"\n" +
		"App1Wait=1\n" +
		"[Sequences]\n" +
		"LaunchSequence=Pre1,Borderless\n" +
		"ExitSequence=Post1\n"
	f := newFixture(t, ini)

	guard := lifecycle.New(f.fs, filepath.Join(f.dir, config.PidFile))
	ok, err := guard.Acquire()
	require.NoError(t, err)
	require.True(t, ok)
	guard.OnCleanup(f.runner.Cleanup)

	err = f.runner.Run(context.Background())
	guard.Cleanup()
	require.NoError(t, err)

	assert.Equal(t, []string{
		config.ActionPre1,
		config.ActionBorderless,
		ActionGame,
		config.ActionPost1,
	}, f.rec.actions())

	data, err := os.ReadFile(out) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Equal(t, "pre\npost\n", string(data))

	exists, err := afero.Exists(f.fs, filepath.Join(f.dir, config.PidFile))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, f.runner.Game())
}

func TestRun_GameLaunchFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "[Game]\nExecutable=/nonexistent/game\n"+
		"[Sequences]\nLaunchSequence=Pre1\nExitSequence=Post1\n")

	err := f.runner.Run(context.Background())
	require.ErrorIs(t, err, ErrGameLaunch)
	assert.Equal(t, []string{config.ActionPre1, ActionGame, config.ActionPost1}, f.rec.actions())
}

func TestRun_NoExecutable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "[Sequences]\nLaunchSequence=Pre1\nExitSequence=Post1\n")
	err := f.runner.Run(context.Background())
	require.ErrorIs(t, err, ErrGameLaunch)
	assert.Equal(t, []string{config.ActionPre1, ActionGame, config.ActionPost1}, f.rec.actions())
}

func TestRun_Hooks(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	f := newFixture(t, "[Game]\nExecutable=/bin/true\n"+
		"[PostLaunch]\nJustAfterLaunchApp=/bin/true\nJustAfterLaunchWait=1\n"+
		"JustBeforeExitApp=/bin/true\nJustBeforeExitWait=1\n"+
		"[Sequences]\nLaunchSequence=Pre1\nExitSequence=Post1\n")

	require.NoError(t, f.runner.Run(context.Background()))
	assert.Equal(t, []string{
		config.ActionPre1,
		ActionGame,
		config.ActionJustAfterLaunch,
		config.ActionJustBeforeExit,
		config.ActionPost1,
	}, f.rec.actions())
}

func TestStop_EndsGameAndRunsExitSequence(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	dir := t.TempDir()
	f := newFixture(t, "[Game]\nExecutable="+sleeper(t, dir)+"\n"+
		"[Sequences]\nLaunchSequence=Pre1\nExitSequence=Post1\n")

	done := runAsync(t, f.runner)
	h := f.runner.Game()
	f.runner.Stop()

	require.NoError(t, waitRun(t, done))
	assert.True(t, h.Exited())
	assert.Equal(t, []string{config.ActionPre1, ActionGame, config.ActionPost1}, f.rec.actions())
	assert.False(t, f.runner.RestartRequested())
}

func TestKill_SkipsExitSequence(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	dir := t.TempDir()
	f := newFixture(t, "[Game]\nExecutable="+sleeper(t, dir)+"\n"+
		"[PreLaunch]\nApp1=/bin/sleep\nApp1Arguments=30\n"+
		"[Sequences]\nLaunchSequence=Pre1\nExitSequence=Post1\n")

	done := runAsync(t, f.runner)
	pre, ok := f.runner.env.Supervisor.Lookup(config.ActionPre1)
	require.True(t, ok)

	f.runner.Kill()

	require.NoError(t, waitRun(t, done))
	assert.Equal(t, []string{config.ActionPre1, ActionGame}, f.rec.actions())
	assert.Empty(t, f.runner.env.Supervisor.Tracked())
	assert.True(t, pre.Exited())
}

// startNamed runs a copy of sleep under name so it can be matched by the
// kill list. The returned channel closes when the process exits.
func startNamed(t *testing.T, dir, name string) <-chan struct{} {
	t.Helper()
	bin, err := os.ReadFile("/bin/sleep")
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, bin, 0o700)) //nolint:gosec // test binary

	cmd := exec.Command(path, "30") //nolint:gosec // test binary
	require.NoError(t, cmd.Start())
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		<-exited
	})
	return exited
}

func TestKill_KillListGatedByOption(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	tests := []struct {
		name     string
		victim   string
		useList  string
		wantDead bool
	}{
		{name: "disabled leaves listed process", victim: "jkoffvictim", useList: "0"},
		{name: "enabled terminates listed process", victim: "jkonvictim", useList: "1", wantDead: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			exited := startNamed(t, dir, tt.victim)
			f := newFixture(t, "[Game]\nExecutable="+sleeper(t, dir)+"\n"+
				"[Options]\nUseKillList="+tt.useList+"\nKillList="+tt.victim+"\n"+
				"[Sequences]\nLaunchSequence=Pre1\nExitSequence=Post1\n")

			done := runAsync(t, f.runner)
			f.runner.Kill()
			require.NoError(t, waitRun(t, done))

			if tt.wantDead {
				select {
				case <-exited:
				case <-time.After(5 * time.Second):
					require.FailNow(t, "kill list process still running")
				}
				return
			}
			select {
			case <-exited:
				require.FailNow(t, "kill list process terminated with UseKillList=0")
			case <-time.After(300 * time.Millisecond):
			}
		})
	}
}

func TestRestart_MarksRestart(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	dir := t.TempDir()
	f := newFixture(t, "[Game]\nExecutable="+sleeper(t, dir)+"\n")

	done := runAsync(t, f.runner)
	f.runner.Restart()

	require.NoError(t, waitRun(t, done))
	assert.True(t, f.runner.RestartRequested())
	assert.Equal(t, filepath.Join(f.dir, config.GameIniFile), f.runner.ConfigPath())
}

func TestStop_BeforeGameStarts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "[Game]\nExecutable=/nonexistent/game\n"+
		"[Sequences]\nLaunchSequence=Pre1\nExitSequence=Post1\n")
	f.runner.Stop()

	require.NoError(t, f.runner.Run(context.Background()))
	assert.Equal(t, []string{config.ActionPre1, config.ActionPost1}, f.rec.actions())
}

func TestRun_Elevation(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	f := newFixture(t, "[Game]\nExecutable=/nonexistent/game\n"+
		"[Options]\nRunAsAdmin=1\n"+
		"[Sequences]\nLaunchSequence=Pre1\nExitSequence=Post1\n")

	var elevated command.Invocation
	f.pl.Elevate = func(inv command.Invocation) (command.Invocation, bool) {
		elevated = inv
		return command.Invocation{Path: "/bin/true", Wait: true}, true
	}

	require.NoError(t, f.runner.Run(context.Background()))
	assert.Equal(t, "/nonexistent/game", elevated.Path)
}

func TestRun_AdminCheckFromGuard(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	f := newFixture(t, "[Game]\nExecutable=/bin/true\n"+
		"[Options]\nRunAsAdmin=1\n"+
		"[Sequences]\nLaunchSequence=Pre1\nExitSequence=Post1\n")

	admin := &mocks.MockPlatform{}
	admin.On("IsAdmin").Return(true)
	guard := lifecycle.New(f.fs, filepath.Join(f.dir, config.PidFile), lifecycle.WithPlatform(admin))

	elevations := 0
	f.pl.Elevate = func(inv command.Invocation) (command.Invocation, bool) {
		elevations++
		return inv, true
	}

	r := New(f.runner.env, WithAdminCheck(guard.IsAdmin))
	require.NoError(t, r.Run(context.Background()))
	assert.Zero(t, elevations)
	admin.AssertExpectations(t)
}

func TestCleanup_RestoresTaskbarOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "[Options]\nHideTaskbar=1\n"+
		"[Sequences]\nLaunchSequence=Hide-Taskbar\nExitSequence=Post1\n")

	require.ErrorIs(t, f.runner.Run(context.Background()), ErrGameLaunch)
	f.runner.Cleanup()
	assert.Equal(t, []bool{false, true}, f.pl.TaskbarToggles())
}
