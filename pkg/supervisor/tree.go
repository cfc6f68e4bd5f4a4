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

package supervisor

import (
	"errors"
	"os"
	"strings"

	"github.com/ZaparooProject/zaparoo-jacket/pkg/helpers"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// getProcessTree returns the process and all its descendants, found by
// walking parent ids over a snapshot of every live process.
// Descendants are ordered before their parents for proper termination order.
func getProcessTree(pid int32) []*process.Process {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil
	}

	children := make(map[int32][]*process.Process)
	all, err := process.Processes()
	if err != nil {
		log.Debug().Err(err).Msg("failed to list processes, terminating root only")
	}
	for _, p := range all {
		ppid, err := p.Ppid()
		if err != nil || ppid == p.Pid {
			continue
		}
		children[ppid] = append(children[ppid], p)
	}

	descendants := getAllDescendants(pid, children, map[int32]bool{pid: true})
	result := make([]*process.Process, 0, len(descendants)+1)
	result = append(result, descendants...)
	result = append(result, proc)
	return result
}

// getAllDescendants recursively collects descendants (depth-first). seen
// guards against pid reuse producing a cycle.
func getAllDescendants(
	pid int32,
	children map[int32][]*process.Process,
	seen map[int32]bool,
) []*process.Process {
	descendants := make([]*process.Process, 0, len(children[pid]))
	for _, child := range children[pid] {
		if seen[child.Pid] {
			continue
		}
		seen[child.Pid] = true
		descendants = append(descendants, getAllDescendants(child.Pid, children, seen)...)
		descendants = append(descendants, child)
	}
	return descendants
}

func alreadyGone(err error) bool {
	return errors.Is(err, process.ErrorProcessNotRunning) || errors.Is(err, os.ErrProcessDone)
}

// terminateProcessTree asks every process in the tree to exit, leaves first.
func terminateProcessTree(procs []*process.Process) {
	for _, proc := range procs {
		if err := proc.Terminate(); err != nil {
			if !alreadyGone(err) {
				log.Debug().Err(err).Int32("pid", proc.Pid).Msg("failed to terminate process")
			}
		} else {
			log.Debug().Int32("pid", proc.Pid).Msg("sent terminate to process")
		}
	}
}

// killProcessTree force-kills every process in the tree still running.
func killProcessTree(procs []*process.Process) {
	for _, proc := range procs {
		if !helpers.PidRunning(int(proc.Pid)) {
			continue
		}
		if err := proc.Kill(); err != nil {
			if !alreadyGone(err) {
				log.Debug().Err(err).Int32("pid", proc.Pid).Msg("failed to kill process")
			}
		} else {
			log.Debug().Int32("pid", proc.Pid).Msg("sent kill to process")
		}
	}
}

func anyRunning(procs []*process.Process) bool {
	for _, proc := range procs {
		if helpers.PidRunning(int(proc.Pid)) {
			return true
		}
	}
	return false
}

// TerminateTree terminates pid and all of its descendants, deepest first.
// Processes that have already exited are ignored. Survivors of the graceful
// pass are killed after TerminateTimeout.
func (s *Supervisor) TerminateTree(pid int) {
	if pid <= 0 || pid == os.Getpid() {
		return
	}

	//nolint:gosec // G115 pids fit in int32 on every supported platform
	procs := getProcessTree(int32(pid))
	if len(procs) == 0 {
		log.Debug().Int("pid", pid).Msg("process not found, may have already exited")
		return
	}
	log.Debug().Int("count", len(procs)).Int("rootPid", pid).Msg("terminating process tree")

	terminateProcessTree(procs)
	if s.waitGone(procs) {
		return
	}

	log.Debug().Int("rootPid", pid).Msg("terminate timeout, killing process tree")
	killProcessTree(procs)
	if !s.waitGone(procs) {
		log.Warn().Int("rootPid", pid).Msg("process tree still running after kill")
	}
}

// waitGone polls until no process in procs is running or TerminateTimeout
// passes. It reports whether the tree is gone.
func (s *Supervisor) waitGone(procs []*process.Process) bool {
	deadline := s.clock.After(TerminateTimeout)
	ticker := s.clock.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if !anyRunning(procs) {
			return true
		}
		select {
		case <-ticker.Chan():
		case <-deadline:
			return !anyRunning(procs)
		}
	}
}

// normalizeImageName lowercases a process image name and strips a trailing
// .exe so "Steam.exe" and "steam" compare equal.
func normalizeImageName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".exe")
}

// TerminateByName terminates the tree of every running process whose image
// name matches name, case-insensitively. It returns the number of matches.
func (s *Supervisor) TerminateByName(name string) int {
	want := normalizeImageName(name)
	if want == "" {
		return 0
	}

	procs, err := process.Processes()
	if err != nil {
		log.Warn().Err(err).Msg("failed to list processes")
		return 0
	}

	self := os.Getpid()
	var matches []int
	for _, p := range procs {
		if int(p.Pid) == self {
			continue
		}
		pname, err := p.Name()
		if err != nil {
			continue
		}
		if normalizeImageName(pname) == want {
			matches = append(matches, int(p.Pid))
		}
	}

	for _, pid := range matches {
		log.Info().Str("name", name).Int("pid", pid).Msg("terminating process by name")
		s.TerminateTree(pid)
	}
	return len(matches)
}
