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

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrNoTarget = errors.New("no target specified")

// Locate finds the configuration file for a run. An explicit override or
// the JACKET_CFG environment variable wins; otherwise Game.ini next to the
// target is used, falling back to config.ini in the install root.
func Locate(fs afero.Fs, target, home, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env := os.Getenv(CfgEnv); env != "" {
		log.Debug().Str("path", env).Msgf("using config from %s", CfgEnv)
		return env, nil
	}

	var candidates []string
	if target != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(target), GameIniFile))
	}
	if home != "" {
		candidates = append(candidates, filepath.Join(home, FallbackIniFile))
	}

	for _, c := range candidates {
		ok, err := afero.Exists(fs, c)
		if err != nil {
			log.Debug().Err(err).Str("path", c).Msg("failed to stat config candidate")
			continue
		}
		if ok {
			return c, nil
		}
	}

	return "", fmt.Errorf("%w: tried %v", ErrConfigNotFound, candidates)
}

// LogPath is the launcher log placed alongside the configuration file.
func LogPath(cfgPath string) string {
	return filepath.Join(filepath.Dir(cfgPath), LogFile)
}
