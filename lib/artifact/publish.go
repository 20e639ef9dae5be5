// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/moderndatateam/loom/lib/azdevops"
	"github.com/moderndatateam/loom/lib/git"
	"github.com/moderndatateam/loom/lib/profile"
	"github.com/moderndatateam/loom/lib/prompt"
	"github.com/moderndatateam/loom/lib/snowflake"
)

const (
	remoteName           = "origin"
	defaultCommitMessage = "Add artifacts"
)

// Publisher lands local artifacts in the warehouse: it pushes the
// current branch, syncs the git repository object, and registers every
// artifact against one environment. The repository identity comes from
// the origin remote, never from prompts, so a publish run can only
// touch the warehouse objects of the repository it runs inside.
type Publisher struct {
	Repo      *git.Repository
	Snowflake *snowflake.Client
	Prompter  *prompt.Prompter
	Logger    *slog.Logger
	Profile   *profile.Profile

	// PassphraseFile optionally reads the warehouse passphrase from a
	// file, or stdin with "-", for scripted runs.
	PassphraseFile string

	// AllowAnyBranch bypasses the profile's publish branch restriction.
	AllowAnyBranch bool

	// Message pre-answers the commit message prompt (--message flag).
	Message string
}

// Publish pushes the working tree and registers descriptors in the
// named environment. An empty environmentName selects the profile's
// first eager environment. Registration failures do not stop the run;
// every artifact is attempted and the failures come back joined.
func (p *Publisher) Publish(ctx context.Context, environmentName string, descriptors []Descriptor) error {
	if len(descriptors) == 0 {
		return fmt.Errorf("nothing to publish")
	}
	if !p.Repo.IsRepository(ctx) {
		return fmt.Errorf("%s is not a git repository", p.Repo.Dir())
	}

	remote, err := p.Repo.RemoteURL(ctx, remoteName)
	if err != nil {
		return fmt.Errorf("publishing requires an %s remote (provision the repository first): %w", remoteName, err)
	}
	repoName, err := azdevops.RepoNameFromRemote(remote)
	if err != nil {
		return err
	}
	branch, err := p.Repo.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if required := p.Profile.Publish.RequireBranch; required != "" && branch != required {
		if !p.AllowAnyBranch {
			return fmt.Errorf("publishing is restricted to branch %q and the working tree is on %q", required, branch)
		}
		p.Logger.Warn("publishing off the required branch", "required", required, "branch", branch)
	}

	environment, err := p.resolveEnvironment(environmentName)
	if err != nil {
		return err
	}

	if err := p.syncBranch(ctx, branch); err != nil {
		return err
	}

	passphrase, err := snowflake.Authenticate(ctx, p.Snowflake, p.Prompter, p.Logger, p.PassphraseFile)
	if err != nil {
		return err
	}
	defer passphrase.Close()

	sf := p.Profile.Snowflake
	target := Target{
		Database:                   environment.Database,
		Schema:                     snowflake.NormalizeName(repoName),
		Warehouse:                  environment.Warehouse,
		UtilityDatabase:            sf.UtilityDatabase,
		GitSchema:                  sf.GitSchema,
		RepoName:                   snowflake.NormalizeName(repoName),
		Branch:                     branch,
		ExternalAccessIntegrations: sf.ExternalAccessIntegrations,
	}

	var failures []error
	apply := func(statement string) bool {
		result, err := p.Snowflake.Exec(ctx, statement, snowflake.PasswordEnv(passphrase))
		if err != nil {
			p.Logger.Error("statement could not run", "error", err)
			failures = append(failures, err)
			return false
		}
		if !result.Ok() {
			stderr := strings.TrimSpace(result.Stderr)
			p.Logger.Error("statement failed", "statement", statement, "stderr", stderr)
			failures = append(failures, fmt.Errorf("%s: %s", statement, stderr))
			return false
		}
		return true
	}

	// Publishing into a lazily provisioned environment is what creates
	// its schema, so the schema and grant always run first.
	if apply(snowflake.CreateSchema(target.Database, target.Schema)) {
		p.Logger.Info("schema ensured", "environment", environment.Name, "database", target.Database, "schema", target.Schema)
	}
	apply(snowflake.GrantAllOnSchema(target.Database, target.Schema, sf.Role))

	for _, descriptor := range descriptors {
		// A fresh fetch per artifact keeps a long publish run from
		// registering stale stage contents after a concurrent push.
		if !apply(snowflake.FetchGitRepository(sf.UtilityDatabase, sf.GitSchema, target.RepoName)) {
			failures = append(failures, fmt.Errorf("%s %s: skipped, stage fetch failed", descriptor.Kind, descriptor.Path()))
			continue
		}
		registered := true
		for _, statement := range Statements(descriptor, target) {
			if !apply(statement) {
				registered = false
				break
			}
		}
		if registered {
			p.Logger.Info("artifact registered",
				"kind", string(descriptor.Kind),
				"path", descriptor.Path(),
				"environment", environment.Name)
		}
	}

	return errors.Join(failures...)
}

// resolveEnvironment picks the registration target. Named lookups must
// resolve; the default is the first eager environment because that is
// the one whose schema already exists after provisioning.
func (p *Publisher) resolveEnvironment(name string) (profile.Environment, error) {
	if !p.Profile.SnowflakeConfigured() {
		return profile.Environment{}, fmt.Errorf("profile %q has no snowflake section, so there is no warehouse to publish into", p.Profile.Name)
	}

	var environment profile.Environment
	if name != "" {
		found, ok := p.Profile.Environment(name)
		if !ok {
			return profile.Environment{}, fmt.Errorf("profile %q declares no environment %q", p.Profile.Name, name)
		}
		environment = found
	} else {
		eager := p.Profile.EagerEnvironments()
		if len(eager) == 0 {
			return profile.Environment{}, fmt.Errorf("profile %q marks no environment as eager; name the target environment explicitly", p.Profile.Name)
		}
		environment = eager[0]
	}

	if environment.Database == "" {
		return profile.Environment{}, fmt.Errorf("environment %q has no database to publish into", environment.Name)
	}
	if environment.Warehouse == "" {
		return profile.Environment{}, fmt.Errorf("environment %q names no warehouse for registered artifacts", environment.Name)
	}
	return environment, nil
}

// syncBranch lands the working tree on the remote. The pull is
// advisory (a diverged remote surfaces on push anyway); the push is a
// single attempt because a publish failure is recoverable by rerunning.
func (p *Publisher) syncBranch(ctx context.Context, branch string) error {
	pullResult, err := p.Repo.Pull(ctx)
	if err != nil {
		return err
	}
	if !pullResult.Ok() {
		p.Logger.Warn("pull failed, continuing with the local tree", "stderr", strings.TrimSpace(pullResult.Stderr))
	}

	if err := p.Repo.AddAll(ctx); err != nil {
		return err
	}
	if p.Repo.HasStagedChanges(ctx) {
		message := strings.TrimSpace(p.Message)
		if message == "" {
			message, err = p.Prompter.InputDefault("Commit message", defaultCommitMessage)
			if err != nil {
				return err
			}
		}
		if err := p.Repo.Commit(ctx, message); err != nil {
			return err
		}
		p.Logger.Info("changes committed", "message", message)
	}

	pushResult, err := p.Repo.Push(ctx, remoteName, branch, true)
	if err != nil {
		return err
	}
	if !pushResult.Ok() {
		return fmt.Errorf("push %s to %s failed: %s", branch, remoteName, strings.TrimSpace(pushResult.Stderr))
	}
	p.Logger.Info("branch pushed", "branch", branch)
	return nil
}
