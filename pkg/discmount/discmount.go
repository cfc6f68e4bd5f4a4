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

// Package discmount mounts disc images through an ordered list of backends
// and replays the winning backend on unmount.
package discmount

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers/syncutil"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrNoBackend   = errors.New("no mount backend succeeded")
	ErrMountBusy   = errors.New("another disc mount is in progress")
	ErrNotMounted  = errors.New("no disc image is mounted")
	ErrInvalidMode = errors.New("invalid disc mount request")
)

const (
	// ResultFile holds the last mount result in the working directory.
	ResultFile = "drvltr"
	// LockFile is the shared lock serialising mounts across processes.
	LockFile = "discmount.lock"
	// SettleDelay gives the OS time to surface a drive after a mount tool
	// was started without waiting.
	SettleDelay = 2 * time.Second

	markerPattern = "discmount-*.lock"
)

// MountRecord remembers which backend satisfied a mount so the unmount
// mirrors it.
type MountRecord struct {
	Backend string
	ID      string
	Image   string
}

// Orchestrator tries backends in order until one mounts the image.
type Orchestrator struct {
	fs       afero.Fs
	clock    clockwork.Clock
	validate *validator.Validate
	record   *MountRecord
	workDir  string
	backends []Backend
	mu       syncutil.Mutex
}

// New returns an orchestrator keeping its result and lock files in
// workDir. backends are tried in the order given.
func New(fs afero.Fs, clock clockwork.Clock, workDir string, backends ...Backend) *Orchestrator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Orchestrator{
		fs:       fs,
		clock:    clock,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		workDir:  workDir,
		backends: backends,
	}
}

func (o *Orchestrator) candidates(mode Mode) ([]Backend, error) {
	switch {
	case mode.Backend != "":
		for _, b := range o.backends {
			if b.Name() == mode.Backend {
				return []Backend{b}, nil
			}
		}
		return nil, fmt.Errorf("%w: backend %q not registered", ErrNoBackend, mode.Backend)
	case mode.Priority > 0:
		if mode.Priority > len(o.backends) {
			return nil, fmt.Errorf("%w: priority %d out of range", ErrNoBackend, mode.Priority)
		}
		return []Backend{o.backends[mode.Priority-1]}, nil
	default:
		return o.backends, nil
	}
}

// Mount attaches image using the backends selected by mode. The first
// backend to succeed wins and is recorded both in memory and in the result
// file.
func (o *Orchestrator) Mount(ctx context.Context, image string, mode Mode) (MountRecord, error) {
	req := Request{Image: image, Letter: mode.Letter, Wait: mode.Wait}
	if err := o.validate.Struct(req); err != nil {
		return MountRecord{}, fmt.Errorf("%w: %w", ErrInvalidMode, err)
	}

	backends, err := o.candidates(mode)
	if err != nil {
		return MountRecord{}, err
	}

	unlock, err := o.lock(mode.Exclusive)
	if err != nil {
		return MountRecord{}, err
	}
	defer unlock()

	var errs []error
	for _, b := range backends {
		if !b.Available() {
			log.Debug().Str("backend", b.Name()).Msg("mount backend not configured, skipping")
			continue
		}
		if err := ctx.Err(); err != nil {
			return MountRecord{}, fmt.Errorf("mount cancelled: %w", err)
		}

		log.Info().Str("backend", b.Name()).Str("image", image).Msg("mounting disc image")
		res, err := b.Mount(ctx, req)
		if err != nil {
			log.Warn().Err(err).Str("backend", b.Name()).Msg("mount backend failed")
			errs = append(errs, err)
			continue
		}

		rec := MountRecord{Backend: b.Name(), ID: res.ID, Image: image}
		o.mu.Lock()
		o.record = &rec
		o.mu.Unlock()
		if err := o.writeResult(rec); err != nil {
			log.Warn().Err(err).Msg("failed to write mount result file")
		}
		if !res.Waited {
			o.clock.Sleep(SettleDelay)
		}
		log.Info().Str("backend", rec.Backend).Str("id", rec.ID).Msg("disc image mounted")
		return rec, nil
	}

	return MountRecord{}, errors.Join(append([]error{ErrNoBackend}, errs...)...)
}

// Record returns the active mount, if any.
func (o *Orchestrator) Record() (MountRecord, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.record == nil {
		return MountRecord{}, false
	}
	return *o.record, true
}

// Unmount reverses the last mount with the backend that performed it,
// falling back to the native backend. Without an in-memory record the
// result file left by an earlier run is used.
func (o *Orchestrator) Unmount(ctx context.Context) error {
	rec, ok := o.Record()
	if !ok {
		var err error
		rec, err = o.readResult()
		if err != nil {
			return err
		}
	}

	unlock, err := o.lock(false)
	if err != nil {
		return err
	}
	defer unlock()

	var tried []Backend
	if b := o.backend(rec.Backend); b != nil && b.Available() {
		tried = append(tried, b)
	}
	if rec.Backend != BackendNative {
		if b := o.backend(BackendNative); b != nil && b.Available() {
			tried = append(tried, b)
		}
	}

	var errs []error
	for _, b := range tried {
		log.Info().Str("backend", b.Name()).Str("image", rec.Image).Msg("unmounting disc image")
		if err := b.Unmount(ctx, rec); err != nil {
			log.Warn().Err(err).Str("backend", b.Name()).Msg("unmount backend failed")
			errs = append(errs, err)
			continue
		}
		o.mu.Lock()
		o.record = nil
		o.mu.Unlock()
		if err := o.fs.Remove(o.resultPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Msg("failed to remove mount result file")
		}
		return nil
	}

	return errors.Join(append([]error{ErrNoBackend}, errs...)...)
}

func (o *Orchestrator) backend(name string) Backend {
	for _, b := range o.backends {
		if b.Name() == name {
			return b
		}
	}
	return nil
}

func (o *Orchestrator) resultPath() string {
	return filepath.Join(o.workDir, ResultFile)
}

// writeResult stores backend, id and image on separate lines.
func (o *Orchestrator) writeResult(rec MountRecord) error {
	data := rec.Backend + "\n" + rec.ID + "\n" + rec.Image + "\n"
	if err := afero.WriteFile(o.fs, o.resultPath(), []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ResultFile, err)
	}
	return nil
}

func (o *Orchestrator) readResult() (MountRecord, error) {
	data, err := afero.ReadFile(o.fs, o.resultPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return MountRecord{}, ErrNotMounted
		}
		return MountRecord{}, fmt.Errorf("failed to read %s: %w", ResultFile, err)
	}

	var lines []string
	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if len(lines) == 0 || lines[0] == "" {
		return MountRecord{}, ErrNotMounted
	}
	for len(lines) < 3 {
		lines = append(lines, "")
	}
	return MountRecord{Backend: lines[0], ID: lines[1], Image: lines[2]}, nil
}

// lock registers a per-invocation marker and takes the shared file lock.
// In exclusive mode any other marker, or a held lock, fails immediately.
func (o *Orchestrator) lock(exclusive bool) (func(), error) {
	if exclusive {
		others, err := afero.Glob(o.fs, filepath.Join(o.workDir, markerPattern))
		if err != nil {
			return nil, fmt.Errorf("failed to list mount locks: %w", err)
		}
		if len(others) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrMountBusy, filepath.Base(others[0]))
		}
	}

	marker := filepath.Join(o.workDir, "discmount-"+uuid.NewString()+".lock")
	if err := afero.WriteFile(o.fs, marker, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write mount lock: %w", err)
	}
	removeMarker := func() {
		if err := o.fs.Remove(marker); err != nil {
			log.Debug().Err(err).Msg("failed to remove mount lock marker")
		}
	}

	fl := flock.New(filepath.Join(o.workDir, LockFile))
	if exclusive {
		ok, err := fl.TryLock()
		if err != nil || !ok {
			removeMarker()
			if err != nil {
				return nil, fmt.Errorf("failed to take mount lock: %w", err)
			}
			return nil, ErrMountBusy
		}
	} else if err := fl.Lock(); err != nil {
		removeMarker()
		return nil, fmt.Errorf("failed to take mount lock: %w", err)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			log.Debug().Err(err).Msg("failed to release mount lock")
		}
		removeMarker()
	}, nil
}
