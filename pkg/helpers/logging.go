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

package helpers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogTimeFormat is the bracketed timestamp used on every log line.
const LogTimeFormat = time.DateTime

func lineWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: LogTimeFormat,
		FormatTimestamp: func(i any) string {
			return fmt.Sprintf("[%v]", i)
		},
		FormatLevel: func(i any) string {
			if s, ok := i.(string); ok {
				return strings.ToUpper(s)
			}
			return "???"
		},
	}
}

// InitLogging points the global logger at a rotating log file plus any
// extra writers (usually stdout). Lines are formatted as
// "[2006-01-02 15:04:05] LEVEL message key=value". A failing writer never
// stops the others and write errors are discarded.
func InitLogging(logPath string, debug bool, writers []io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logWriters := []io.Writer{lineWriter(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    1,
		MaxBackups: 2,
	})}
	for _, w := range writers {
		logWriters = append(logWriters, lineWriter(w))
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.ErrorHandler = func(error) {}
	zerolog.TimeFieldFormat = LogTimeFormat

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(logWriters...)).
		With().Timestamp().Logger()

	return nil
}

// SetDebug adjusts the global level after the config has been read.
func SetDebug(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
