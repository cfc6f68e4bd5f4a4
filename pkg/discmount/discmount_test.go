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
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMountFailed = errors.New("mount failed")

type fakeBackend struct {
	mountErr   error
	unmountErr error
	name       string
	id         string
	mounts     []Request
	unmounts   []MountRecord
	mu         syncutil.Mutex
	disabled   bool
	noWait     bool
}

func (f *fakeBackend) Name() string    { return f.name }
func (f *fakeBackend) Available() bool { return !f.disabled }

func (f *fakeBackend) Mount(_ context.Context, req Request) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mounts = append(f.mounts, req)
	if f.mountErr != nil {
		return Result{}, f.mountErr
	}
	return Result{ID: f.id, Waited: !f.noWait}, nil
}

func (f *fakeBackend) Unmount(_ context.Context, rec MountRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unmounts = append(f.unmounts, rec)
	return f.unmountErr
}

func (f *fakeBackend) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.mounts), len(f.unmounts)
}

func newBackends() (native, emulator, generic *fakeBackend) {
	return &fakeBackend{name: BackendNative, id: "D", mountErr: errMountFailed},
		&fakeBackend{name: BackendEmulator, id: "E", mountErr: errMountFailed},
		&fakeBackend{name: BackendGeneric, id: "G"}
}

func TestMountFallsBackToThirdBackend(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	dir := t.TempDir()
	native, emulator, generic := newBackends()
	o := New(fs, clockwork.NewFakeClock(), dir, native, emulator, generic)

	rec, err := o.Mount(context.Background(), "/games/a.iso", Mode{})
	require.NoError(t, err)
	assert.Equal(t, MountRecord{Backend: BackendGeneric, ID: "G", Image: "/games/a.iso"}, rec)

	got, ok := o.Record()
	require.True(t, ok)
	assert.Equal(t, rec, got)

	data, err := afero.ReadFile(fs, filepath.Join(dir, ResultFile))
	require.NoError(t, err)
	assert.Equal(t, "generic\nG\n/games/a.iso\n", string(data))

	require.NoError(t, o.Unmount(context.Background()))

	_, nativeUnmounts := native.calls()
	_, emulatorUnmounts := emulator.calls()
	_, genericUnmounts := generic.calls()
	assert.Equal(t, 0, nativeUnmounts)
	assert.Equal(t, 0, emulatorUnmounts)
	assert.Equal(t, 1, genericUnmounts)
	assert.Equal(t, rec, generic.unmounts[0])

	exists, err := afero.Exists(fs, filepath.Join(dir, ResultFile))
	require.NoError(t, err)
	assert.False(t, exists, "result file removed after unmount")
	_, ok = o.Record()
	assert.False(t, ok)

	markers, err := afero.Glob(fs, filepath.Join(dir, markerPattern))
	require.NoError(t, err)
	assert.Empty(t, markers, "lock markers released")
}

func TestMountAllBackendsFail(t *testing.T) {
	t.Parallel()

	native, emulator, generic := newBackends()
	generic.mountErr = errMountFailed
	o := New(afero.NewMemMapFs(), nil, t.TempDir(), native, emulator, generic)

	_, err := o.Mount(context.Background(), "/a.iso", Mode{})
	require.ErrorIs(t, err, ErrNoBackend)
	require.ErrorIs(t, err, errMountFailed)
	_, ok := o.Record()
	assert.False(t, ok)
}

func TestMountSkipsUnavailable(t *testing.T) {
	t.Parallel()

	native, emulator, generic := newBackends()
	native.mountErr = nil
	native.disabled = true
	emulator.mountErr = nil
	o := New(afero.NewMemMapFs(), nil, t.TempDir(), native, emulator, generic)

	rec, err := o.Mount(context.Background(), "/a.iso", Mode{})
	require.NoError(t, err)
	assert.Equal(t, BackendEmulator, rec.Backend)
	mounts, _ := native.calls()
	assert.Equal(t, 0, mounts)
}

func TestMountPriorityAndForcedBackend(t *testing.T) {
	t.Parallel()

	native, emulator, generic := newBackends()
	emulator.mountErr = nil
	o := New(afero.NewMemMapFs(), nil, t.TempDir(), native, emulator, generic)

	rec, err := o.Mount(context.Background(), "/a.iso", ParseMode("2"))
	require.NoError(t, err)
	assert.Equal(t, BackendEmulator, rec.Backend)
	mounts, _ := native.calls()
	assert.Equal(t, 0, mounts, "priority tries exactly one backend")

	_, err = o.Mount(context.Background(), "/a.iso", ParseMode("native"))
	require.ErrorIs(t, err, ErrNoBackend)
	mounts, _ = generic.calls()
	assert.Equal(t, 0, mounts, "forced backend does not fall back")

	_, err = o.Mount(context.Background(), "/a.iso", ParseMode("9"))
	require.ErrorIs(t, err, ErrNoBackend)
}

func TestMountPassesLetterAndWait(t *testing.T) {
	t.Parallel()

	native, emulator, generic := newBackends()
	o := New(afero.NewMemMapFs(), nil, t.TempDir(), native, emulator, generic)

	_, err := o.Mount(context.Background(), "/a.iso", ParseMode("x,wait"))
	require.NoError(t, err)
	for _, b := range []*fakeBackend{native, emulator, generic} {
		require.Len(t, b.mounts, 1, b.name)
		assert.Equal(t, "X", b.mounts[0].Letter)
		require.NotNil(t, b.mounts[0].Wait)
		assert.True(t, *b.mounts[0].Wait)
	}
}

func TestMountRejectsEmptyImage(t *testing.T) {
	t.Parallel()

	native, emulator, generic := newBackends()
	o := New(afero.NewMemMapFs(), nil, t.TempDir(), native, emulator, generic)
	_, err := o.Mount(context.Background(), "", Mode{})
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestMountSettleDelay(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	native, emulator, generic := newBackends()
	generic.noWait = true
	o := New(afero.NewMemMapFs(), clock, t.TempDir(), native, emulator, generic)

	done := make(chan error, 1)
	go func() {
		_, err := o.Mount(context.Background(), "/a.iso", Mode{})
		done <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	select {
	case <-done:
		t.Fatal("mount returned before the settle delay")
	default:
	}

	clock.Advance(SettleDelay)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("mount did not finish after the settle delay")
	}
}

func TestUnmountFromResultFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	dir := t.TempDir()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, ResultFile), []byte("emulator\nE\n"), 0o644))

	native, emulator, generic := newBackends()
	o := New(fs, nil, dir, native, emulator, generic)

	require.NoError(t, o.Unmount(context.Background()))
	require.Len(t, emulator.unmounts, 1)
	assert.Equal(t, MountRecord{Backend: BackendEmulator, ID: "E"}, emulator.unmounts[0])
}

func TestUnmountFallsBackToNative(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	dir := t.TempDir()
	native, emulator, generic := newBackends()
	generic.unmountErr = errMountFailed
	o := New(fs, nil, dir, native, emulator, generic)

	_, err := o.Mount(context.Background(), "/a.iso", Mode{})
	require.NoError(t, err)
	require.NoError(t, o.Unmount(context.Background()))

	assert.Len(t, generic.unmounts, 1)
	assert.Len(t, native.unmounts, 1)
	assert.Empty(t, emulator.unmounts)
}

func TestUnmountNothingMounted(t *testing.T) {
	t.Parallel()

	native, emulator, generic := newBackends()
	o := New(afero.NewMemMapFs(), nil, t.TempDir(), native, emulator, generic)
	require.ErrorIs(t, o.Unmount(context.Background()), ErrNotMounted)
}

func TestExclusiveMountFailsWhenBusy(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	dir := t.TempDir()
	other := filepath.Join(dir, "discmount-0b1d7c52-6f0e-4f5c-9d1c-1f1f4c1ad0a1.lock")
	require.NoError(t, afero.WriteFile(fs, other, []byte("1"), 0o644))

	native, emulator, generic := newBackends()
	o := New(fs, nil, dir, native, emulator, generic)

	_, err := o.Mount(context.Background(), "/a.iso", ParseMode("exclusive"))
	require.ErrorIs(t, err, ErrMountBusy)
	mounts, _ := generic.calls()
	assert.Equal(t, 0, mounts)

	// Non-exclusive requests queue on the shared lock instead.
	rec, err := o.Mount(context.Background(), "/a.iso", Mode{})
	require.NoError(t, err)
	assert.Equal(t, BackendGeneric, rec.Backend)
}
