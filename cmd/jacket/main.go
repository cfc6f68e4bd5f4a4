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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/config"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/launcher"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/lifecycle"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-jacket/pkg/ui/systray"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// listFlag collects every occurrence of a repeatable flag.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(s string) error {
	*l = append(*l, s)
	return nil
}

type flags struct {
	home    string
	config  string
	sets    listFlag
	clears  listFlag
	noTray  bool
	debug   bool
	dump    bool
	version bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, *flag.FlagSet, error) {
	f := &flags{}
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: %s [flags] <game executable>\n", config.AppName)
		fs.PrintDefaults()
	}
	fs.StringVar(&f.home, "home", "", "install root (default: executable directory)")
	fs.StringVar(&f.config, "config", "", "configuration file (default: Game.ini next to the target)")
	fs.Var(&f.sets, "set", "set a config value before running, as Section.Key=Value")
	fs.Var(&f.clears, "clear", "remove a config value before running, as Section.Key")
	fs.BoolVar(&f.noTray, "notray", false, "run without the tray icon")
	fs.BoolVar(&f.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&f.dump, "dump", false, "print the loaded configuration and exit")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	return f, fs, nil
}

// run is the whole program. It returns the process exit code; cleanup has
// always finished by the time it returns.
func run(args []string, stdout, stderr io.Writer) int {
	f, fset, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if f.version {
		_, _ = fmt.Fprintf(stdout, "%s v%s\n", config.AppName, config.AppVersion)
		return 0
	}

	target := fset.Arg(0)
	if target == "" && f.config == "" && os.Getenv(config.CfgEnv) == "" {
		_, _ = fmt.Fprintf(stderr, "Error: %s\n", config.ErrNoTarget)
		fset.Usage()
		return 1
	}

	fs := afero.NewOsFs()
	home := helpers.Home(f.home)

	cfgPath, err := config.Locate(fs, target, home, f.config)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	err = helpers.InitLogging(config.LogPath(cfgPath), f.debug, []io.Writer{stdout})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error initializing logging: %v\n", err)
		return 1
	}
	log.Info().Msgf("%s v%s starting", config.AppName, config.AppVersion)

	if err := config.ApplyEdits(fs, cfgPath, f.sets, f.clears); err != nil {
		log.Error().Err(err).Msg("error applying config edits")
		_, _ = fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	cfg, err := config.Load(fs, cfgPath, home)
	if err != nil {
		log.Error().Err(err).Msg("error loading config")
		_, _ = fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	cfg.ApplyTarget(target)
	helpers.SetDebug(cfg.Options.DebugLogging)

	if f.dump {
		text, err := config.Dump(cfg)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %s\n", err)
			return 1
		}
		_, _ = fmt.Fprint(stdout, text)
		return 0
	}

	cmd := &command.RealExecutor{}
	pl := newPlatform(cmd)
	log.Info().Str("platform", pl.ID()).Str("config", cfgPath).Str("game", cfg.Game.Name).Msg("run starting")

	guard := lifecycle.New(fs, helpers.PidMarkerPath(home),
		lifecycle.WithMultiInstance(cfg.Options.MultiInstance),
		lifecycle.WithStateFile(cfgPath),
		lifecycle.WithPlatform(pl),
	)
	ok, err := guard.Acquire()
	if err != nil {
		log.Error().Err(err).Msg("error acquiring instance marker")
		_, _ = fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	if !ok {
		log.Info().Msg("another instance is already running, exiting")
		return 0
	}

	code, restart := launch(fs, cfg, pl, cmd, guard, f.noTray, stderr)
	if restart {
		reexec(cmd, args)
	}
	return code
}

func launch(
	fs afero.Fs,
	cfg *config.Values,
	pl platforms.Platform,
	cmd command.Executor,
	guard *lifecycle.Guard,
	noTray bool,
	stderr io.Writer,
) (code int, restart bool) {
	defer guard.Cleanup()

	workDir, err := os.Getwd()
	if err != nil {
		workDir = helpers.ExeDir()
	}

	runner := launcher.New(launcher.NewEnv(launcher.EnvArgs{
		Fs:       fs,
		Config:   cfg,
		Platform: pl,
		Cmd:      cmd,
		WorkDir:  workDir,
	}), launcher.WithAdminCheck(guard.IsAdmin))
	guard.OnCleanup(runner.Cleanup)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info().Str("signal", sig.String()).Msg("received signal, stopping")
			cancel()
		case <-ctx.Done():
		}
	}()

	runErr := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("recovered from panic in run")
				runErr <- fmt.Errorf("panic: %v", r)
			}
		}()
		runErr <- runner.Run(ctx)
	}()

	var result error
	if cfg.Options.ShowTray && !noTray {
		finished := make(chan struct{})
		go func() {
			result = <-runErr
			close(finished)
		}()
		// Blocks until the run ends or the Exit item stops the runner.
		systray.Run(ctx, systray.Args{
			Controller: runner,
			Cmd:        cmd,
			Fs:         fs,
			Home:       cfg.Home,
			LogPath:    config.LogPath(cfg.Source),
			Title:      cfg.Game.Name,
		}, finished, nil)
		<-finished
	} else {
		result = <-runErr
	}

	return exitCode(result, stderr), result == nil && runner.RestartRequested()
}

// exitCode maps the run result to the process exit code. A game that fails
// to start is reported but is not an error exit; the exit sequence and
// cleanup have already run.
func exitCode(result error, stderr io.Writer) int {
	switch {
	case result == nil:
		log.Info().Msg("run completed")
		return 0
	case errors.Is(result, launcher.ErrGameLaunch):
		log.Error().Err(result).Msg("game launch failed")
		_, _ = fmt.Fprintf(stderr, "Failed to launch game: %s\n", result)
		return 0
	default:
		log.Error().Err(result).Msg("run failed")
		_, _ = fmt.Fprintf(stderr, "Error: %s\n", result)
		return 1
	}
}

func reexec(cmd command.Executor, args []string) {
	exe, err := os.Executable()
	if err != nil {
		log.Error().Err(err).Msg("error finding executable for restart")
		return
	}
	log.Info().Str("exe", exe).Msg("restarting")
	if err := cmd.Start(context.Background(), exe, args...); err != nil {
		log.Error().Err(err).Msg("error restarting")
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
