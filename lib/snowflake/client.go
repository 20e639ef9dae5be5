// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package snowflake provides typed access to the Snowflake CLI (snow)
// for connection verification and single-statement SQL execution. All
// commands run through lib/runner, so flows built on this package are
// testable with scripted fakes.
//
// Statement construction lives in statements.go. Every object name
// placed in a statement passes through the quoting helpers in ident.go;
// no caller-supplied string is ever concatenated raw into SQL.
package snowflake

import (
	"context"

	"github.com/moderndatateam/loom/lib/runner"
	"github.com/moderndatateam/loom/lib/secret"
)

// PasswordEnvVar is the environment variable the Snowflake CLI reads
// the connection password from. Loom sets it exclusively through the
// per-invocation Env slice of a single command, never in the process
// environment.
const PasswordEnvVar = "SNOWFLAKE_PASSWORD"

// PasswordEnv builds the single-entry environment slice carrying the
// passphrase to one CLI invocation. The heap copy made here lives only
// as long as the child process setup; the authoritative copy stays in
// the protected buffer.
func PasswordEnv(passphrase *secret.Buffer) []string {
	return []string{PasswordEnvVar + "=" + passphrase.String()}
}

// Client wraps the Snowflake CLI. All operations target one named CLI
// connection; an empty connection name uses the CLI's default.
type Client struct {
	runner     runner.Runner
	binary     string
	connection string
}

// NewClient returns a Client invoking binary (usually "snow") via run,
// against the named connection.
func NewClient(run runner.Runner, binary, connection string) *Client {
	return &Client{runner: run, binary: binary, connection: connection}
}

// Connection returns the configured connection name.
func (c *Client) Connection() string { return c.connection }

// TestConnection verifies the CLI can authenticate and reach the
// warehouse. extraEnv carries the passphrase for exactly this
// invocation.
func (c *Client) TestConnection(ctx context.Context, extraEnv []string) (runner.Result, error) {
	return c.run(ctx, extraEnv, c.withConnection("connection", "test")...)
}

// Exec runs one SQL statement. Callers issue one statement per call:
// every invocation is its own CLI session, which is why the statement
// builders fully qualify every object name instead of relying on USE.
func (c *Client) Exec(ctx context.Context, statement string, extraEnv []string) (runner.Result, error) {
	return c.run(ctx, extraEnv, c.withConnection("sql", "-q", statement)...)
}

// Version asks the CLI for its version. Doctor uses it as the
// installed-and-runnable probe.
func (c *Client) Version(ctx context.Context) (runner.Result, error) {
	return c.run(ctx, nil, "--version")
}

func (c *Client) withConnection(args ...string) []string {
	if c.connection == "" {
		return args
	}
	return append(args, "-c", c.connection)
}

func (c *Client) run(ctx context.Context, extraEnv []string, args ...string) (runner.Result, error) {
	return c.runner.Run(ctx, runner.Command{
		Name: c.binary,
		Args: args,
		Env:  extraEnv,
	})
}
