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

// Package syncutil holds the locking primitives shared by the launcher, the
// supervisor and the tray. Build with -tags=deadlock to back Mutex with
// go-deadlock.
package syncutil

// Flag is a boolean that can only be raised. Kill and restart requests from
// the tray are recorded with it.
type Flag struct {
	mu  Mutex
	set bool
}

// Set raises the flag and reports whether this call raised it.
func (f *Flag) Set() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.set {
		return false
	}
	f.set = true
	return true
}

func (f *Flag) IsSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set
}

// Latch is a channel that is closed at most once, however many callers
// trip it.
type Latch struct {
	ch chan struct{}
	mu Mutex
}

func NewLatch() *Latch {
	return &Latch{ch: make(chan struct{})}
}

// Trip closes the latch and reports whether this call closed it.
func (l *Latch) Trip() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.ch:
		return false
	default:
		close(l.ch)
		return true
	}
}

func (l *Latch) Done() <-chan struct{} {
	return l.ch
}

func (l *Latch) Tripped() bool {
	select {
	case <-l.ch:
		return true
	default:
		return false
	}
}
