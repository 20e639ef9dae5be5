// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/moderndatateam/loom/lib/azdevops"
	"github.com/moderndatateam/loom/lib/clock"
	"github.com/moderndatateam/loom/lib/git"
	"github.com/moderndatateam/loom/lib/profile"
	"github.com/moderndatateam/loom/lib/prompt"
)

const (
	// remoteName is the remote the provisioner manages. Rollback only
	// ever touches this remote.
	remoteName = "origin"

	// nameAttempts bounds the rename loop when a chosen repository name
	// collides with an existing one.
	nameAttempts = 3
)

// ValidateRepoName rejects names the remote would refuse or that would
// be ambiguous on a command line.
func ValidateRepoName(name string) error {
	if name == "" {
		return fmt.Errorf("repository name is empty")
	}
	if strings.ContainsAny(name, " \t") {
		return fmt.Errorf("repository name contains whitespace")
	}
	return nil
}

// SourceControl provisions the remote repository and the local git
// history. This phase is mandatory: its failure aborts the whole run,
// and every later integration keys on the Context it returns.
type SourceControl struct {
	DevOps   *azdevops.Client
	Repo     *git.Repository
	Prompter *prompt.Prompter
	Clock    clock.Clock
	Logger   *slog.Logger

	Organization string
	Project      string
	Branches     profile.Branches

	// SeedName optionally pre-answers the name prompt (--name flag).
	// If it is invalid or taken, the interactive loop takes over.
	SeedName string

	// PushAttempts and PushDelay come from configuration. Every push
	// uses the same bounded retry.
	PushAttempts int
	PushDelay    time.Duration
}

// Run drives provisioning to completion and returns the frozen
// Context. On failure after the remote was wired up, the remote
// reference is rolled back; the local repository and any repository
// already created remotely are kept, never deleted.
func (s *SourceControl) Run(ctx context.Context) (*Context, error) {
	login, err := s.DevOps.LoggedIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("az unavailable: %w", err)
	}
	if !login.Ok() {
		return nil, fmt.Errorf("az is not logged in (run: az login): %s", strings.TrimSpace(login.Stderr))
	}

	name, err := s.chooseName(ctx)
	if err != nil {
		return nil, err
	}

	repo, err := s.DevOps.CreateRepo(ctx, name)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("repository created", "name", name, "url", repo.RemoteURL)

	// Default scoping is operator convenience for later manual az
	// calls; our own calls carry explicit scope flags.
	if err := s.DevOps.ConfigureDefaults(ctx); err != nil {
		s.Logger.Warn("az defaults not configured", "error", err)
	}

	if err := s.prepareLocal(ctx); err != nil {
		return nil, err
	}

	remoteAdded, err := s.wireRemote(ctx, repo.RemoteURL)
	if err != nil {
		return nil, err
	}

	if err := s.publishBranches(ctx); err != nil {
		if remoteAdded {
			s.rollback(ctx)
		}
		return nil, err
	}

	// The exit invariant: the working tree is on the default branch.
	if err := s.Repo.Checkout(ctx, s.Branches.Default); err != nil {
		return nil, err
	}

	return &Context{
		RepoName:      name,
		RemoteURL:     repo.RemoteURL,
		DefaultBranch: s.Branches.Default,
		Organization:  s.Organization,
		Project:       s.Project,
		WorkDir:       s.Repo.Dir(),
	}, nil
}

// chooseName settles on a repository name that is free in the project.
// One loop, bounded: collisions re-prompt, anything else is fatal.
func (s *SourceControl) chooseName(ctx context.Context) (string, error) {
	name := strings.TrimSpace(s.SeedName)
	if name != "" {
		if err := ValidateRepoName(name); err != nil {
			s.Logger.Warn("ignoring invalid seed name", "name", name, "error", err)
			name = ""
		}
	}

	for attempt := 0; attempt < nameAttempts; attempt++ {
		if name == "" {
			input, err := s.Prompter.Input("Repository name", ValidateRepoName)
			if err != nil {
				return "", err
			}
			name = input
		}

		exists, err := s.DevOps.RepoExists(ctx, name)
		if err != nil {
			return "", fmt.Errorf("check repository name %q: %w", name, err)
		}
		if !exists {
			return name, nil
		}

		s.Logger.Warn("repository already exists in project", "name", name)
		retry, err := s.Prompter.Confirm(fmt.Sprintf("%q is taken; choose another name", name), true)
		if err != nil {
			return "", err
		}
		if !retry {
			return "", fmt.Errorf("repository %q already exists", name)
		}
		name = ""
	}
	return "", fmt.Errorf("no available repository name after %d attempts", nameAttempts)
}

// prepareLocal brings the working tree to "committed history on the
// default branch". Every step skips work already done, so rerunning
// against a partially provisioned directory is safe.
func (s *SourceControl) prepareLocal(ctx context.Context) error {
	if s.Repo.IsRepository(ctx) {
		s.Logger.Info("reusing existing local repository", "dir", s.Repo.Dir())
	} else {
		if err := s.Repo.Init(ctx, s.Branches.Default); err != nil {
			return err
		}
		s.Logger.Info("initialized local repository", "dir", s.Repo.Dir(), "branch", s.Branches.Default)
	}

	if err := s.Repo.AddAll(ctx); err != nil {
		return err
	}

	switch {
	case s.Repo.HasCommits(ctx):
		s.Logger.Info("history already present, skipping initial commit")
	case s.Repo.HasStagedChanges(ctx):
		if err := s.Repo.Commit(ctx, "initial commit"); err != nil {
			return err
		}
		s.Logger.Info("initial commit created")
	default:
		// An empty tree almost always means the wrong directory. There
		// is nothing to publish, so stop before touching the remote.
		return fmt.Errorf("nothing to commit in %s: add project files before provisioning", s.Repo.Dir())
	}

	current, err := s.Repo.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if current != s.Branches.Default {
		if err := s.Repo.RenameBranch(ctx, s.Branches.Default); err != nil {
			return err
		}
		s.Logger.Info("renamed branch", "from", current, "to", s.Branches.Default)
	}
	return nil
}

// wireRemote points origin at the created repository, replacing a
// stale URL left over from an earlier aborted run. It reports whether
// this call added or retargeted the remote, which decides whether a
// later failure rolls it back.
func (s *SourceControl) wireRemote(ctx context.Context, remoteURL string) (bool, error) {
	existing, err := s.Repo.RemoteURL(ctx, remoteName)
	if err == nil {
		if existing == remoteURL {
			s.Logger.Info("remote already wired", "remote", remoteName)
			return false, nil
		}
		s.Logger.Warn("replacing stale remote", "remote", remoteName, "old", existing, "new", remoteURL)
		if err := s.Repo.RemoveRemote(ctx, remoteName); err != nil {
			return false, err
		}
	}
	if err := s.Repo.AddRemote(ctx, remoteName, remoteURL); err != nil {
		return false, err
	}
	return true, nil
}

// publishBranches pushes the default branch, then creates and pushes
// each extra branch. Existing extra branches are skipped so reruns
// stay idempotent.
func (s *SourceControl) publishBranches(ctx context.Context) error {
	if err := s.pushWithRetry(ctx, s.Branches.Default); err != nil {
		return err
	}

	for _, branch := range s.Branches.Extra {
		if s.Repo.BranchExists(ctx, branch) {
			s.Logger.Warn("branch already exists, skipping creation", "branch", branch)
		} else {
			if err := s.Repo.CreateBranch(ctx, branch); err != nil {
				return err
			}
			s.Logger.Info("created branch", "branch", branch)
		}
		if err := s.pushWithRetry(ctx, branch); err != nil {
			return err
		}
	}
	return nil
}

// pushWithRetry pushes one branch with upstream tracking, retrying on
// non-zero exits with the configured delay between attempts. A launch
// failure (git missing, context canceled) is not retried.
func (s *SourceControl) pushWithRetry(ctx context.Context, branch string) error {
	attempts := s.PushAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := s.Repo.Push(ctx, remoteName, branch, true)
		if err != nil {
			return fmt.Errorf("push %s: %w", branch, err)
		}
		if result.Ok() {
			s.Logger.Info("pushed branch", "branch", branch, "attempt", attempt)
			return nil
		}
		s.Logger.Warn("push failed",
			"branch", branch,
			"attempt", attempt,
			"of", attempts,
			"stderr", strings.TrimSpace(result.Stderr))
		if attempt < attempts {
			s.Clock.Sleep(s.PushDelay)
		}
	}
	return fmt.Errorf("push %s to %s failed after %d attempts", branch, remoteName, attempts)
}

// rollback undoes the remote wiring after a fatal failure. The remote
// repository itself is never deleted; a transient push failure must
// not destroy a repository that may already hold history.
func (s *SourceControl) rollback(ctx context.Context) {
	if err := s.Repo.RemoveRemote(ctx, remoteName); err != nil {
		s.Logger.Warn("rollback: remove remote", "error", err)
	} else {
		s.Logger.Warn("rollback: removed remote", "remote", remoteName)
	}
	s.Logger.Warn("local repository kept; delete it manually if unwanted", "dir", s.Repo.Dir())
	s.Logger.Warn("remote repository (if created) was not deleted; remove it in the project settings if unwanted")
}
