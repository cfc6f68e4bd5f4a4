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

// Package config loads the INI game configuration consumed by the launcher.
// Values are read once per run and are not mutated afterwards; the only
// write path is the in-place key rewrite in writeback.go.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

var (
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidConfig  = errors.New("invalid configuration file")
)

// Section names as they appear in Game.ini. Matching is case-insensitive.
const (
	SectionGame        = "Game"
	SectionPaths       = "Paths"
	SectionOptions     = "Options"
	SectionPreLaunch   = "PreLaunch"
	SectionPostLaunch  = "PostLaunch"
	SectionSequences   = "Sequences"
	SectionCloudSync   = "CloudSync"
	SectionLocalBackup = "LocalBackup"
	SectionState       = "State"
	KeyPID             = "PID"
)

type Game struct {
	Executable string `yaml:"executable"`
	Directory  string `yaml:"directory"`
	Name       string `yaml:"name"`
	IsoPath    string `yaml:"iso_path,omitempty"`
}

type State struct {
	PID int `yaml:"pid,omitempty"`
}

// Values is the typed form of a game configuration file.
type Values struct {
	Game        Game        `yaml:"game"`
	Paths       Paths       `yaml:"paths"`
	Options     Options     `yaml:"options"`
	PreLaunch   [3]App      `yaml:"pre_launch"`
	PostLaunch  [3]App      `yaml:"post_launch"`
	JustAfter   App         `yaml:"just_after_launch"`
	JustBefore  App         `yaml:"just_before_exit"`
	Sequences   Sequences   `yaml:"sequences"`
	CloudSync   CloudSync   `yaml:"cloud_sync"`
	LocalBackup LocalBackup `yaml:"local_backup"`
	State       State       `yaml:"state"`

	// Home is the install root substituted for $HOME.
	Home string `yaml:"home"`
	// Source is the file the values were loaded from.
	Source string `yaml:"source"`
}

// App is a generic phase slot (PreLaunch/PostLaunch apps and the two hooks).
type App = command.Invocation

var loadOptions = ini.LoadOptions{
	Insensitive:             true,
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	SkipUnrecognizableLines: true,
}

// Load reads and parses the configuration at path. home is the install root
// used for $HOME substitution. Unknown sections and keys are ignored.
func Load(fs afero.Fs, path, home string) (*Values, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	v := &Values{
		Home:   home,
		Source: path,
	}

	game := f.Section(SectionGame)
	v.Game = Game{
		Executable: str(game, "Executable"),
		Directory:  str(game, "Directory"),
		Name:       str(game, "Name"),
		IsoPath:    str(game, "IsoPath"),
	}

	v.Paths = loadPaths(f.Section(SectionPaths))
	v.Options = loadOptionsSection(f.Section(SectionOptions))

	pre := f.Section(SectionPreLaunch)
	post := f.Section(SectionPostLaunch)
	for i := range 3 {
		prefix := "App" + strconv.Itoa(i+1)
		v.PreLaunch[i] = slot(pre, prefix, prefix)
		v.PostLaunch[i] = slot(post, prefix, prefix)
	}
	v.JustAfter = slot(post, "JustAfterLaunchApp", "JustAfterLaunch")
	v.JustBefore = slot(post, "JustBeforeExitApp", "JustBeforeExit")

	v.Sequences = loadSequences(f.Section(SectionSequences))
	v.CloudSync = loadCloudSync(f, v.Paths.CloudApp)
	v.LocalBackup = loadLocalBackup(f, v.Options.BackupSaves)
	v.State = State{PID: integer(f.Section(SectionState), KeyPID)}

	log.Debug().Str("path", path).Msg("configuration loaded")
	return v, nil
}

// ApplyTarget fills game fields the config left empty from the target the
// launcher was invoked with.
func (v *Values) ApplyTarget(target string) {
	if target == "" {
		return
	}
	base := command.Invocation{Path: target}.BaseName()
	if v.Game.Name == "" {
		v.Game.Name = strings.TrimSuffix(base, extOf(base))
	}
	if v.Game.Executable == "" {
		v.Game.Executable = target
	}
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i:]
	}
	return ""
}

// slot reads a (path, options, arguments, wait) tuple. pathKey names the
// path key; prefix is used for the Options/Arguments/Wait keys.
func slot(sec *ini.Section, pathKey, prefix string) App {
	return App{
		Path:      str(sec, pathKey),
		Options:   str(sec, prefix+"Options"),
		Arguments: str(sec, prefix+"Arguments"),
		Wait:      boolean(sec, prefix+"Wait"),
	}
}

func str(sec *ini.Section, key string) string {
	if !sec.HasKey(key) {
		return ""
	}
	return strings.TrimSpace(sec.Key(key).String())
}

// ParseBool implements the config boolean rule: "1", "true" and "True" are
// true, everything else is false.
func ParseBool(s string) bool {
	switch strings.TrimSpace(s) {
	case "1", "true", "True":
		return true
	default:
		return false
	}
}

func boolean(sec *ini.Section, key string) bool {
	return ParseBool(str(sec, key))
}

// booleanDefault is boolean with a fallback for absent keys.
func booleanDefault(sec *ini.Section, key string, def bool) bool {
	if !sec.HasKey(key) {
		return def
	}
	return boolean(sec, key)
}

func integer(sec *ini.Section, key string) int {
	n, err := strconv.Atoi(str(sec, key))
	if err != nil {
		return 0
	}
	return n
}

// splitList splits a comma-separated value, trimming entries and dropping
// empty ones. Duplicates are removed when dedupe is set, keeping first order.
func splitList(s string, dedupe bool) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if dedupe {
			k := strings.ToLower(item)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}
