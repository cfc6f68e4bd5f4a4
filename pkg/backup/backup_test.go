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

package backup

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSaves(t *testing.T, fs afero.Fs) {
	t.Helper()
	require.NoError(t, fs.MkdirAll("/saves/slot1", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/saves/profile.dat", []byte("profile"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/saves/slot1/game.sav", []byte("progress"), 0o644))
}

func TestBackup(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	seedSaves(t, fs)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC))

	path, err := New(fs, clock).Backup("/saves", "/backups", 3)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/backups", "SaveBackup_2026-03-04_05-06-07.zip"), path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := map[string]string{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		files[f.Name] = string(b)
	}
	assert.Equal(t, map[string]string{
		"profile.dat":    "profile",
		"slot1/game.sav": "progress",
	}, files)
}

func TestBackupMissingSaves(t *testing.T) {
	t.Parallel()

	_, err := New(afero.NewMemMapFs(), nil).Backup("/nope", "/backups", 1)
	require.ErrorIs(t, err, ErrNoSaves)
}

func TestBackupRotation(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	seedSaves(t, fs)
	require.NoError(t, afero.WriteFile(fs, "/backups/notes.txt", []byte("keep me"), 0o644))
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	l := New(fs, clock)

	var made []string
	for range 4 {
		p, err := l.Backup("/saves", "/backups", 2)
		require.NoError(t, err)
		made = append(made, filepath.Base(p))
		clock.Advance(time.Minute)
	}

	entries, err := afero.ReadDir(fs, "/backups")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{made[2], made[3], "notes.txt"}, names)
}

func TestPruneDefault(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	for i := range 7 {
		name := filepath.Join("/b", "SaveBackup_2026-01-0"+string(rune('1'+i))+"_00-00-00.zip")
		require.NoError(t, afero.WriteFile(fs, name, nil, 0o644))
	}

	require.NoError(t, New(fs, nil).Prune("/b", 0))
	entries, err := afero.ReadDir(fs, "/b")
	require.NoError(t, err)
	require.Len(t, entries, DefaultMaxBackups)
	assert.Equal(t, "SaveBackup_2026-01-03_00-00-00.zip", entries[0].Name())
}
