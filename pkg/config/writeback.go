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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrInvalidEdit = errors.New("invalid config edit")

// SetValue rewrites key in section to value. An existing key line keeps
// its left-hand side and line ending; a missing key is appended to the end
// of the section; a missing section is appended to the file. All other
// bytes are preserved. The file is replaced atomically.
func SetValue(fs afero.Fs, path, section, key, value string) error {
	return edit(fs, path, func(data string) string {
		return setLine(data, section, key, &value)
	})
}

// ClearValue removes key from section. Missing keys are not an error.
func ClearValue(fs afero.Fs, path, section, key string) error {
	return edit(fs, path, func(data string) string {
		return setLine(data, section, key, nil)
	})
}

// ApplyEdits applies command line edits of the form "Section.Key=Value"
// (sets) and "Section.Key" (clears), in that order.
func ApplyEdits(fs afero.Fs, path string, sets, clears []string) error {
	for _, s := range sets {
		ref, value, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("%w: %q is missing '='", ErrInvalidEdit, s)
		}
		section, key, err := splitRef(ref)
		if err != nil {
			return err
		}
		if err := SetValue(fs, path, section, key, value); err != nil {
			return err
		}
		log.Info().Msgf("set %s.%s=%s", section, key, value)
	}
	for _, c := range clears {
		section, key, err := splitRef(c)
		if err != nil {
			return err
		}
		if err := ClearValue(fs, path, section, key); err != nil {
			return err
		}
		log.Info().Msgf("cleared %s.%s", section, key)
	}
	return nil
}

func splitRef(ref string) (section, key string, err error) {
	section, key, ok := strings.Cut(strings.TrimSpace(ref), ".")
	section = strings.TrimSpace(section)
	key = strings.TrimSpace(key)
	if !ok || section == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q is not Section.Key", ErrInvalidEdit, ref)
	}
	return section, key, nil
}

func edit(fs afero.Fs, path string, fn func(string) string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	updated := fn(string(data))
	if updated == string(data) {
		return nil
	}
	return writeAtomic(fs, path, []byte(updated))
}

func writeAtomic(fs afero.Fs, path string, data []byte) error {
	mode := os.FileMode(0o644)
	if fi, err := fs.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = fs.Chmod(name, mode)
	}
	if err == nil {
		err = fs.Rename(name, path)
	}
	if err != nil {
		if rmErr := fs.Remove(name); rmErr != nil {
			log.Debug().Err(rmErr).Msg("failed to remove temp config file")
		}
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// sectionHeader recognises "[Name]", optionally preceded by a UTF-8 BOM and
// followed by a ; or # comment.
func sectionHeader(line string) (string, bool) {
	t := strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
	if len(t) < 2 || t[0] != '[' {
		return "", false
	}
	end := strings.IndexByte(t, ']')
	if end < 0 {
		return "", false
	}
	rest := strings.TrimSpace(t[end+1:])
	if rest != "" && rest[0] != ';' && rest[0] != '#' {
		return "", false
	}
	return strings.TrimSpace(t[1:end]), true
}

func lineEnding(line string) string {
	return line[len(strings.TrimRight(line, "\r\n")):]
}

// setLine returns data with key set to *value, or removed when value is nil.
func setLine(data, section, key string, value *string) string {
	eol := "\n"
	if strings.Contains(data, "\r\n") {
		eol = "\r\n"
	}

	lines := strings.SplitAfter(data, "\n")
	inSection := false
	found := false
	last := -1

	for i, line := range lines {
		if name, ok := sectionHeader(line); ok {
			if inSection {
				break
			}
			inSection = strings.EqualFold(name, section)
			if inSection {
				found = true
				last = i
			}
			continue
		}
		if !inSection {
			continue
		}
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		last = i
		if t[0] == ';' || t[0] == '#' {
			continue
		}
		k, rest, ok := strings.Cut(line, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(k), key) {
			continue
		}
		if value == nil {
			return strings.Join(append(lines[:i:i], lines[i+1:]...), "")
		}
		pad := rest[:len(rest)-len(strings.TrimLeft(rest, " \t"))]
		lines[i] = k + "=" + pad + *value + lineEnding(line)
		return strings.Join(lines, "")
	}

	if value == nil {
		return data
	}
	entry := key + "=" + *value + eol

	if found {
		if lineEnding(lines[last]) == "" {
			lines[last] += eol
		}
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:last+1]...)
		out = append(out, entry)
		out = append(out, lines[last+1:]...)
		return strings.Join(out, "")
	}

	if data != "" && !strings.HasSuffix(data, "\n") {
		data += eol
	}
	return data + "[" + section + "]" + eol + entry
}
