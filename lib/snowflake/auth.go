// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package snowflake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/moderndatateam/loom/lib/prompt"
	"github.com/moderndatateam/loom/lib/secret"
)

// passphraseAttempts bounds interactive passphrase entry. A failed
// connection test closes the buffer before the next prompt, so no
// rejected passphrase outlives its attempt.
const passphraseAttempts = 3

// Authenticate produces a passphrase buffer verified against the
// client's connection. The caller owns the buffer and must Close it.
//
// With passphraseFile set (a path, or "-" for stdin) the passphrase is
// read once and tested once: re-reading the same file cannot produce a
// different answer. Otherwise the prompter asks up to the attempt
// bound, closing each rejected buffer before the next prompt.
func Authenticate(ctx context.Context, client *Client, prompter *prompt.Prompter, logger *slog.Logger, passphraseFile string) (*secret.Buffer, error) {
	if passphraseFile != "" {
		passphrase, err := secret.ReadFromPath(passphraseFile)
		if err != nil {
			return nil, err
		}
		ok, stderr, err := testPassphrase(ctx, client, passphrase)
		if err != nil {
			passphrase.Close()
			return nil, err
		}
		if !ok {
			passphrase.Close()
			return nil, fmt.Errorf("connection test failed: %s", stderr)
		}
		return passphrase, nil
	}

	label := "Snowflake password"
	if connection := client.Connection(); connection != "" {
		label = fmt.Sprintf("Snowflake password (connection %s)", connection)
	}

	lastStderr := ""
	for attempt := 1; attempt <= passphraseAttempts; attempt++ {
		passphrase, err := prompter.Secret(label)
		if err != nil {
			return nil, err
		}
		ok, stderr, err := testPassphrase(ctx, client, passphrase)
		if err != nil {
			// Launch failure: retyping the passphrase cannot help.
			passphrase.Close()
			return nil, err
		}
		if ok {
			logger.Info("warehouse connection verified")
			return passphrase, nil
		}
		passphrase.Close()
		lastStderr = stderr
		logger.Warn("connection test failed", "attempt", attempt, "of", passphraseAttempts, "stderr", stderr)
	}
	return nil, fmt.Errorf("connection test failed after %d attempts: %s", passphraseAttempts, lastStderr)
}

// testPassphrase runs the connection probe with the passphrase scoped
// to that single invocation's environment. A false ok with nil err is
// a failed test; err is reserved for the CLI failing to launch.
func testPassphrase(ctx context.Context, client *Client, passphrase *secret.Buffer) (bool, string, error) {
	result, err := client.TestConnection(ctx, PasswordEnv(passphrase))
	if err != nil {
		return false, "", err
	}
	if result.Ok() {
		return true, "", nil
	}
	return false, strings.TrimSpace(result.Stderr), nil
}
