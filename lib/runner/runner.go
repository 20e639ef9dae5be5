// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command describes a single external tool invocation. Name and Args
// form the argv vector; there is no shell between Loom and the tool.
type Command struct {
	// Name is the binary name (resolved via PATH) or an absolute path.
	Name string

	// Args are the arguments, one element per argument.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds KEY=VALUE pairs appended to the inherited environment
	// for this invocation only. This is the only sanctioned way to pass
	// a secret to a tool: the variable exists for the lifetime of the
	// child process and never enters Loom's own environment.
	Env []string

	// Stdin is the process's standard input. Nil means no input.
	Stdin io.Reader
}

// String returns the invocation as a single line for logs and error
// messages. Env is deliberately excluded so secret-bearing variables
// can never leak through a message.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result captures the outcome of a completed invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Ok reports whether the invocation exited with status zero.
func (r Result) Ok() bool { return r.ExitCode == 0 }

// Output returns stdout with surrounding whitespace trimmed. Most of
// the tools Loom drives print a single value followed by a newline.
func (r Result) Output() string { return strings.TrimSpace(r.Stdout) }

// Contains reports whether stdout or stderr contains substr,
// case-insensitively. Tool error messages are matched by signature
// strings ("already exists", "TF401019") whose casing varies across
// tool versions.
func (r Result) Contains(substr string) bool {
	needle := strings.ToLower(substr)
	return strings.Contains(strings.ToLower(r.Stdout), needle) ||
		strings.Contains(strings.ToLower(r.Stderr), needle)
}

// Runner executes external commands. Implementations must honor the
// contract documented on the package: non-zero exits are returned as a
// Result with a nil error, and the error return is reserved for
// invocations that never produced an exit status.
type Runner interface {
	Run(ctx context.Context, command Command) (Result, error)
}

// Real returns a Runner backed by os/exec.
func Real() Runner { return execRunner{} }

type execRunner struct{}

func (execRunner) Run(ctx context.Context, command Command) (Result, error) {
	var stdout, stderr bytes.Buffer
	process := exec.CommandContext(ctx, command.Name, command.Args...)
	process.Stdout = &stdout
	process.Stderr = &stderr
	process.Stdin = command.Stdin
	process.Dir = command.Dir
	if len(command.Env) > 0 {
		process.Env = append(os.Environ(), command.Env...)
	}

	err := process.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}

	// The process never ran: missing binary, permission problem, or
	// cancelled context. These are the only failures reported as errors.
	return Result{ExitCode: -1}, fmt.Errorf("run %s: %w", command.Name, err)
}

// IsNotFound reports whether err from Run indicates the command's
// binary was not found on PATH. Callers map this to a tool-missing
// diagnosis with an install hint.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
