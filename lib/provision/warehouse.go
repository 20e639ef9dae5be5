// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/moderndatateam/loom/lib/profile"
	"github.com/moderndatateam/loom/lib/prompt"
	"github.com/moderndatateam/loom/lib/snowflake"
)

// Warehouse links the provisioned repository into Snowflake: a git
// repository object under the utility database, and a schema per eager
// environment. Its failure never aborts the run; the orchestrator
// records the outcome and moves on.
type Warehouse struct {
	Snowflake *snowflake.Client
	Prompter  *prompt.Prompter
	Logger    *slog.Logger
	Profile   *profile.Profile

	// PassphraseFile optionally reads the passphrase from a file, or
	// stdin with "-", for scripted runs. A passphrase from a file gets
	// one connection test, no retry loop: re-reading the same file
	// cannot produce a different answer.
	PassphraseFile string
}

// Link authenticates against the warehouse and applies the linking
// statements. Every statement is attempted even when an earlier one
// fails; the joined failures become the integration's reason.
func (w *Warehouse) Link(ctx context.Context, provCtx *Context) error {
	if provCtx.RemoteURL == "" {
		return fmt.Errorf("warehouse linking requires the repository remote URL")
	}

	passphrase, err := snowflake.Authenticate(ctx, w.Snowflake, w.Prompter, w.Logger, w.PassphraseFile)
	if err != nil {
		return err
	}
	defer passphrase.Close()

	sf := w.Profile.Snowflake
	repoName := snowflake.NormalizeName(provCtx.RepoName)
	var failures []error

	apply := func(statement string) bool {
		result, err := w.Snowflake.Exec(ctx, statement, snowflake.PasswordEnv(passphrase))
		if err != nil {
			w.Logger.Error("statement could not run", "error", err)
			failures = append(failures, err)
			return false
		}
		if !result.Ok() {
			stderr := strings.TrimSpace(result.Stderr)
			w.Logger.Error("statement failed", "statement", statement, "stderr", stderr)
			failures = append(failures, fmt.Errorf("%s: %s", statement, stderr))
			return false
		}
		return true
	}

	if apply(snowflake.CreateAPIIntegration(sf.APIIntegration, provCtx.Organization)) {
		w.Logger.Info("api integration ensured", "integration", sf.APIIntegration)
	}
	if apply(snowflake.CreateGitRepository(sf.UtilityDatabase, sf.GitSchema, repoName, sf.APIIntegration, provCtx.RemoteURL)) {
		w.Logger.Info("git repository registered",
			"repository", repoName,
			"database", sf.UtilityDatabase,
			"schema", sf.GitSchema)
	}

	for _, environment := range w.Profile.EagerEnvironments() {
		if !apply(snowflake.CreateSchema(environment.Database, repoName)) {
			continue
		}
		w.Logger.Info("schema ensured", "environment", environment.Name, "database", environment.Database, "schema", repoName)
		if apply(snowflake.GrantAllOnSchema(environment.Database, repoName, sf.Role)) {
			w.Logger.Info("schema granted", "environment", environment.Name, "role", sf.Role)
		}
	}

	// The remaining environments are a promotion policy, not an
	// omission: their schemas appear when a deployment pipeline first
	// targets them.
	for _, environment := range w.Profile.Environments {
		if environment.EagerSchema || environment.Database == "" {
			continue
		}
		w.Logger.Info("schema creation deferred to deployment",
			"environment", environment.Name, "database", environment.Database)
	}

	return errors.Join(failures...)
}
