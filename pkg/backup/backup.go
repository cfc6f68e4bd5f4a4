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

// Package backup archives a game's save directory into timestamped zip
// files and prunes old archives.
package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	FilePrefix = "SaveBackup_"
	FileSuffix = ".zip"
	TimeFormat = "2006-01-02_15-04-05"
	// DefaultMaxBackups applies when no positive retention is configured.
	DefaultMaxBackups = 5
)

// ErrNoSaves is returned when the save directory does not exist.
var ErrNoSaves = errors.New("save directory not found")

type Local struct {
	fs    afero.Fs
	clock clockwork.Clock
}

func New(fs afero.Fs, clock clockwork.Clock) *Local {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Local{fs: fs, clock: clock}
}

// Backup zips saveDir into backupDir as SaveBackup_<timestamp>.zip and
// then keeps only the newest keep archives. It returns the archive path.
func (l *Local) Backup(saveDir, backupDir string, keep int) (string, error) {
	info, err := l.fs.Stat(saveDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNoSaves, saveDir)
	}
	if err := l.fs.MkdirAll(backupDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := FilePrefix + l.clock.Now().Format(TimeFormat) + FileSuffix
	dest := filepath.Join(backupDir, name)
	if err := l.archive(saveDir, dest); err != nil {
		if rmErr := l.fs.Remove(dest); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Debug().Err(rmErr).Msg("failed to remove partial backup")
		}
		return "", err
	}
	log.Info().Str("path", dest).Msg("backed up saves")

	if err := l.Prune(backupDir, keep); err != nil {
		log.Warn().Err(err).Msg("failed to prune old backups")
	}
	return dest, nil
}

func (l *Local) archive(src, dest string) (err error) {
	out, err := l.fs.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close archive: %w", closeErr)
		}
	}()

	zw := zip.NewWriter(out)
	walkErr := afero.Walk(l.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil || rel == "." {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("zip header for %s: %w", rel, err)
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
			_, err = zw.CreateHeader(hdr)
			return err
		}
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", rel, err)
		}
		f, err := l.fs.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(w, f); err != nil {
			return fmt.Errorf("failed to archive %s: %w", path, err)
		}
		return nil
	})
	if walkErr != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to archive saves: %w", walkErr)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

// Prune deletes the oldest SaveBackup archives until at most keep remain.
// A non-positive keep uses DefaultMaxBackups.
func (l *Local) Prune(backupDir string, keep int) error {
	if keep <= 0 {
		keep = DefaultMaxBackups
	}
	entries, err := afero.ReadDir(l.fs, backupDir)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	var backups []string
	for _, e := range entries {
		n := e.Name()
		if !e.IsDir() && strings.HasPrefix(n, FilePrefix) && strings.HasSuffix(n, FileSuffix) {
			backups = append(backups, n)
		}
	}
	// The timestamp format sorts chronologically.
	sort.Strings(backups)

	for len(backups) > keep {
		oldest := backups[0]
		backups = backups[1:]
		if err := l.fs.Remove(filepath.Join(backupDir, oldest)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", oldest, err)
		}
		log.Info().Str("name", oldest).Msg("removed old backup")
	}
	return nil
}
