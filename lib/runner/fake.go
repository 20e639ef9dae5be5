// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Fake returns a FakeRunner with no scripted responses. Register
// responses with Script and ScriptError before use; an unscripted
// command returns an error, which surfaces in tests as an unexpected
// failure naming the exact invocation.
func Fake() *FakeRunner {
	return &FakeRunner{}
}

// FakeRunner is a deterministic Runner for testing. It matches each
// incoming command against registered argv prefixes and replays the
// scripted results, recording every call for later assertions.
//
// FakeRunner is safe for concurrent use by multiple goroutines.
type FakeRunner struct {
	mu      sync.Mutex
	scripts []*fakeScript
	calls   []Command
}

type fakeScript struct {
	prefix  []string
	results []Result
	err     error
	next    int
}

// Script registers results for commands whose argv begins with the
// space-separated tokens of prefix. Results are consumed in order;
// after the queue is exhausted the last result repeats, so a single
// Result scripts an idempotent command and a [fail, fail, ok] queue
// scripts a flaky one. When several prefixes match a call, the longest
// wins, so "git push" can be scripted independently of a catch-all
// "git".
func (f *FakeRunner) Script(prefix string, results ...Result) {
	if len(results) == 0 {
		panic("runner: Script requires at least one result")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, &fakeScript{
		prefix:  strings.Fields(prefix),
		results: results,
	})
}

// ScriptError registers a launch failure for commands matching prefix,
// simulating a binary that cannot be started. Pass exec.ErrNotFound to
// exercise tool-missing handling.
func (f *FakeRunner) ScriptError(prefix string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, &fakeScript{
		prefix: strings.Fields(prefix),
		err:    err,
	})
}

// Run implements Runner.
func (f *FakeRunner) Run(_ context.Context, command Command) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, command)

	argv := append([]string{command.Name}, command.Args...)
	match := f.longestMatch(argv)
	if match == nil {
		return Result{ExitCode: -1}, fmt.Errorf("fake runner: no script for %q", command.String())
	}
	if match.err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("run %s: %w", command.Name, match.err)
	}
	result := match.results[match.next]
	if match.next < len(match.results)-1 {
		match.next++
	}
	return result, nil
}

func (f *FakeRunner) longestMatch(argv []string) *fakeScript {
	var best *fakeScript
	for _, script := range f.scripts {
		if len(script.prefix) > len(argv) {
			continue
		}
		if !slices.Equal(argv[:len(script.prefix)], script.prefix) {
			continue
		}
		if best == nil || len(script.prefix) > len(best.prefix) {
			best = script
		}
	}
	return best
}

// Calls returns a copy of every command run so far, in order. Env and
// Dir are preserved, so tests can assert that a secret traveled in the
// per-call environment and nowhere else.
func (f *FakeRunner) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Lines returns each call as a single argv line, in order. Convenient
// for asserting whole command sequences with slices.Equal.
func (f *FakeRunner) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.calls))
	for index, call := range f.calls {
		lines[index] = call.String()
	}
	return lines
}
